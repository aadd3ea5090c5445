package database

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { CloseDB(db) })

	return NewStore(db, nil)
}

func saveTestMessage(t *testing.T, store Store, chatID, userID int64, direction, content string, ts time.Time) *Message {
	t.Helper()

	msg := &Message{
		ChatID:    chatID,
		UserID:    userID,
		Direction: direction,
		Content:   content,
		Timestamp: ts,
	}
	if err := store.SaveMessage(context.Background(), msg); err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}
	return msg
}

func TestSaveMessageAssignsID(t *testing.T) {
	store := newTestStore(t)

	msg := saveTestMessage(t, store, 100, 1, DirectionIncoming, "hello", time.Now().UTC())
	if msg.ID == 0 {
		t.Error("expected SaveMessage to assign a non-zero ID")
	}
}

func TestSaveMessageValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cases := []struct {
		name string
		msg  *Message
	}{
		{"nil message", nil},
		{"zero chat_id", &Message{Direction: DirectionIncoming, Content: "x", Timestamp: time.Now()}},
		{"bad direction", &Message{ChatID: 1, Direction: "sideways", Content: "x", Timestamp: time.Now()}},
		{"empty content", &Message{ChatID: 1, Direction: DirectionIncoming, Timestamp: time.Now()}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := store.SaveMessage(ctx, tc.msg); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestRecentMessagesOrdering(t *testing.T) {
	store := newTestStore(t)
	base := time.Now().UTC().Add(-time.Hour)

	saveTestMessage(t, store, 100, 1, DirectionIncoming, "first", base)
	saveTestMessage(t, store, 100, 1, DirectionOutgoing, "second", base.Add(time.Minute))
	saveTestMessage(t, store, 200, 2, DirectionIncoming, "third", base.Add(2*time.Minute))

	msgs, err := store.RecentMessages(context.Background(), 2)
	if err != nil {
		t.Fatalf("RecentMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "third" || msgs[1].Content != "second" {
		t.Errorf("expected newest-first ordering, got %q then %q", msgs[0].Content, msgs[1].Content)
	}
}

func TestRecentMessagesInChatFiltersByChat(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()

	saveTestMessage(t, store, 100, 1, DirectionIncoming, "mine", now)
	saveTestMessage(t, store, 200, 2, DirectionIncoming, "other", now)

	msgs, err := store.RecentMessagesInChat(context.Background(), 100, 10)
	if err != nil {
		t.Fatalf("RecentMessagesInChat: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "mine" {
		t.Errorf("expected only chat 100 messages, got %+v", msgs)
	}
}

func TestDeleteMessagesForUser(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()

	saveTestMessage(t, store, 100, 1, DirectionIncoming, "a", now)
	saveTestMessage(t, store, 100, 1, DirectionIncoming, "b", now)
	saveTestMessage(t, store, 100, 2, DirectionIncoming, "keep", now)

	count, err := store.DeleteMessagesForUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("DeleteMessagesForUser: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 deleted rows, got %d", count)
	}

	remaining, err := store.RecentMessages(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentMessages: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Content != "keep" {
		t.Errorf("expected only user 2's message to remain, got %+v", remaining)
	}
}

func TestPruneMessages(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()

	saveTestMessage(t, store, 100, 1, DirectionIncoming, "old", now.Add(-48*time.Hour))
	saveTestMessage(t, store, 100, 1, DirectionIncoming, "new", now)

	count, err := store.PruneMessages(context.Background(), now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PruneMessages: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 pruned row, got %d", count)
	}
}

func TestUpsertSessionIncrementsCounter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := &UserSession{UserID: 1, ChatID: 100, Username: "alice", FirstName: "Alice"}
	if err := store.UpsertSession(ctx, session); err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}
	firstSeen := session.FirstSeen

	// Second message from the same user with an updated username.
	if err := store.UpsertSession(ctx, &UserSession{UserID: 1, ChatID: 100, Username: "alice2"}); err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}

	got, err := store.GetSession(ctx, 1)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.MessageCount != 2 {
		t.Errorf("expected message_count 2, got %d", got.MessageCount)
	}
	if got.Username != "alice2" {
		t.Errorf("expected refreshed username, got %q", got.Username)
	}
	if !got.FirstSeen.Equal(firstSeen) {
		t.Errorf("expected first_seen preserved (%s), got %s", firstSeen, got.FirstSeen)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetSession(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil session for unknown user, got %+v", got)
	}
}

func TestActiveSessionsOrderedByLastSeen(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.UpsertSession(ctx, &UserSession{UserID: 1, ChatID: 100, Username: "first"}); err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := store.UpsertSession(ctx, &UserSession{UserID: 2, ChatID: 200, Username: "second"}); err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}

	sessions, err := store.ActiveSessions(ctx)
	if err != nil {
		t.Fatalf("ActiveSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].UserID != 2 {
		t.Errorf("expected most recently seen user first, got user %d", sessions[0].UserID)
	}
}

func TestResetSessionCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.UpsertSession(ctx, &UserSession{UserID: 1, ChatID: 100}); err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}
	if err := store.ResetSessionCount(ctx, 1); err != nil {
		t.Fatalf("ResetSessionCount: %v", err)
	}

	got, err := store.GetSession(ctx, 1)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.MessageCount != 0 {
		t.Errorf("expected message_count 0 after reset, got %d", got.MessageCount)
	}
}

func TestStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	saveTestMessage(t, store, 100, 1, DirectionIncoming, "in", now.Add(-time.Minute))
	saveTestMessage(t, store, 100, 0, DirectionOutgoing, "out", now)
	if err := store.UpsertSession(ctx, &UserSession{UserID: 1, ChatID: 100}); err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalMessages != 2 {
		t.Errorf("expected 2 total messages, got %d", stats.TotalMessages)
	}
	if stats.IncomingMessages != 1 || stats.OutgoingMessages != 1 {
		t.Errorf("expected 1 in / 1 out, got %d / %d", stats.IncomingMessages, stats.OutgoingMessages)
	}
	if stats.TotalUsers != 1 {
		t.Errorf("expected 1 user, got %d", stats.TotalUsers)
	}
	if !stats.LastMessageAt.Valid {
		t.Fatal("expected last_message_at to be set")
	}
	if diff := stats.LastMessageAt.Time.Sub(now); diff < -time.Second || diff > time.Second {
		t.Errorf("expected last_message_at near %v, got %v", now, stats.LastMessageAt.Time)
	}
}

func TestStatsEmptyDatabase(t *testing.T) {
	store := newTestStore(t)

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalMessages != 0 || stats.TotalUsers != 0 {
		t.Errorf("expected zero counters, got %d messages / %d users",
			stats.TotalMessages, stats.TotalUsers)
	}
	if stats.LastMessageAt.Valid {
		t.Error("expected last_message_at to be unset")
	}
}

func TestRunMaintenance(t *testing.T) {
	store := newTestStore(t)

	if err := store.RunMaintenance(context.Background()); err != nil {
		t.Fatalf("RunMaintenance: %v", err)
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		name    string
		session UserSession
		want    string
	}{
		{"username", UserSession{Username: "alice", FirstName: "Alice"}, "@alice"},
		{"full name", UserSession{FirstName: "Alice", LastName: "Smith"}, "Alice Smith"},
		{"first name only", UserSession{FirstName: "Alice"}, "Alice"},
		{"anonymous", UserSession{}, "unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.session.DisplayName(); got != tc.want {
				t.Errorf("DisplayName() = %q, want %q", got, tc.want)
			}
		})
	}
}
