package handlers

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/edgard/telegram-mcp/internal/database"
)

func TestFallbackReply(t *testing.T) {
	cases := []struct {
		name      string
		text      string
		firstName string
		want      string
	}{
		{"greeting", "Hello bot", "Alice", "Hello Alice"},
		{"bare hi", "hi", "Alice", "Hello Alice"},
		{"thanks", "thanks a lot", "Alice", "You're welcome"},
		{"farewell", "bye for now", "Bob", "Goodbye Bob"},
		{"question", "what time is it?", "Bob", "Good question"},
		{"default", "random statement", "Carol", "Got it, Carol. Message received"},
		{"anonymous default", "random statement", "", "Got it, there"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := fallbackReply(tc.text, tc.firstName)
			if !strings.Contains(got, tc.want) {
				t.Errorf("fallbackReply(%q, %q) = %q, want it to contain %q",
					tc.text, tc.firstName, got, tc.want)
			}
		})
	}
}

func TestPreviewText(t *testing.T) {
	cases := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a longer sentence", 7, "this is…"},
		{"héllo wörld", 5, "héllo…"},
	}

	for _, tc := range cases {
		if got := previewText(tc.in, tc.maxLen); got != tc.want {
			t.Errorf("previewText(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
		}
	}
}

func TestFormatSessionInfo(t *testing.T) {
	firstSeen := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	lastSeen := time.Date(2025, 3, 2, 18, 30, 0, 0, time.UTC)
	session := &database.UserSession{
		UserID:       1,
		Username:     "alice",
		MessageCount: 12,
		FirstSeen:    firstSeen,
		LastSeen:     lastSeen,
	}
	recent := []database.Message{
		{Direction: database.DirectionOutgoing, Content: "hello back", Timestamp: lastSeen},
		{Direction: database.DirectionIncoming, Content: "hello", Timestamp: lastSeen.Add(-time.Minute)},
	}

	got := formatSessionInfo(session, recent)

	for _, want := range []string{"@alice", "Messages sent: 12", "2025-03-01 10:00 UTC", "bot: hello back", "you: hello"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatSessionInfo output missing %q:\n%s", want, got)
		}
	}
}

func TestFormatSessionInfoWithoutActivity(t *testing.T) {
	session := &database.UserSession{UserID: 1, FirstName: "Alice"}

	got := formatSessionInfo(session, nil)
	if strings.Contains(got, "Recent activity") {
		t.Errorf("expected no activity section for empty history, got:\n%s", got)
	}
}

func TestFormatStats(t *testing.T) {
	stats := &database.Stats{
		TotalMessages:    10,
		IncomingMessages: 7,
		OutgoingMessages: 3,
		TotalUsers:       2,
		LastMessageAt: sql.NullTime{
			Time:  time.Date(2025, 3, 2, 18, 30, 0, 0, time.UTC),
			Valid: true,
		},
	}

	got := formatStats(stats)
	for _, want := range []string{"Total messages: 10", "Received: 7", "Sent: 3", "Known users: 2", "2025-03-02 18:30 UTC"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatStats output missing %q:\n%s", want, got)
		}
	}
}

func TestFormatStatsWithoutLastActivity(t *testing.T) {
	got := formatStats(&database.Stats{})
	if strings.Contains(got, "Last activity") {
		t.Errorf("expected no last-activity line for empty store, got:\n%s", got)
	}
}
