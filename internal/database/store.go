package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveMessage inserts a new message record.
	SaveMessage(ctx context.Context, message *Message) error

	// RecentMessages retrieves the most recent 'limit' messages across all chats,
	// newest first.
	RecentMessages(ctx context.Context, limit int) ([]Message, error)

	// RecentMessagesInChat retrieves the most recent 'limit' messages for a chat,
	// newest first.
	RecentMessagesInChat(ctx context.Context, chatID int64, limit int) ([]Message, error)

	// DeleteMessagesForUser removes all messages stored for a user and returns
	// the number of rows deleted.
	DeleteMessagesForUser(ctx context.Context, userID int64) (int64, error)

	// PruneMessages removes messages older than the cutoff and returns the
	// number of rows deleted.
	PruneMessages(ctx context.Context, olderThan time.Time) (int64, error)

	// RunMaintenance performs database maintenance tasks (VACUUM).
	RunMaintenance(ctx context.Context) error

	// UpsertSession creates the session row for a user or refreshes its
	// identity fields and last_seen, and increments the message counter.
	UpsertSession(ctx context.Context, session *UserSession) error

	// GetSession retrieves a user session by user ID. Returns nil, nil if not found.
	GetSession(ctx context.Context, userID int64) (*UserSession, error)

	// ActiveSessions retrieves all known sessions ordered by most recent activity.
	ActiveSessions(ctx context.Context) ([]UserSession, error)

	// ResetSessionCount zeroes the message counter for a user.
	ResetSessionCount(ctx context.Context, userID int64) error

	// Stats aggregates message and session counters.
	Stats(ctx context.Context) (*Stats, error)
}

// sqlxStore implements Store using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveMessage(ctx context.Context, message *Message) error {
	if message == nil {
		return fmt.Errorf("cannot save nil message")
	}
	if message.ChatID == 0 {
		return fmt.Errorf("message must have a non-zero chat_id")
	}
	if message.Direction != DirectionIncoming && message.Direction != DirectionOutgoing {
		return fmt.Errorf("message has invalid direction %q", message.Direction)
	}
	if message.Content == "" {
		return fmt.Errorf("message must have non-empty content")
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}
	message.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO messages (created_at, chat_id, user_id, direction, content, timestamp)
        VALUES (:created_at, :chat_id, :user_id, :direction, :content, :timestamp);
    `

	result, err := s.db.NamedExecContext(ctx, query, message)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving message",
			"chat_id", message.ChatID, "direction", message.Direction, "error", err)
		return fmt.Errorf("failed to save message (chat %d): %w", message.ChatID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		message.ID = id
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving message",
			"chat_id", message.ChatID, "error", err)
	}

	s.logger.DebugContext(ctx, "Message saved",
		"chat_id", message.ChatID, "direction", message.Direction, "message_id", message.ID)
	return nil
}

func (s *sqlxStore) RecentMessages(ctx context.Context, limit int) ([]Message, error) {
	limit = clampLimit(limit)

	var messages []Message
	query := `
        SELECT id, created_at, chat_id, user_id, direction, content, timestamp
        FROM messages
        ORDER BY timestamp DESC, id DESC
        LIMIT ?;
    `
	if err := s.db.SelectContext(ctx, &messages, query, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error getting recent messages", "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to get recent messages: %w", err)
	}
	return messages, nil
}

func (s *sqlxStore) RecentMessagesInChat(ctx context.Context, chatID int64, limit int) ([]Message, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	limit = clampLimit(limit)

	var messages []Message
	query := `
        SELECT id, created_at, chat_id, user_id, direction, content, timestamp
        FROM messages
        WHERE chat_id = ?
        ORDER BY timestamp DESC, id DESC
        LIMIT ?;
    `
	if err := s.db.SelectContext(ctx, &messages, query, chatID, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error getting recent messages for chat",
			"chat_id", chatID, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to get recent messages for chat %d: %w", chatID, err)
	}
	return messages, nil
}

func (s *sqlxStore) DeleteMessagesForUser(ctx context.Context, userID int64) (int64, error) {
	if userID == 0 {
		return 0, fmt.Errorf("user_id cannot be zero")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE user_id = ?`, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting messages for user", "user_id", userID, "error", err)
		return 0, fmt.Errorf("failed to delete messages for user %d: %w", userID, err)
	}

	count, _ := result.RowsAffected()
	s.logger.InfoContext(ctx, "Deleted messages for user", "user_id", userID, "count", count)
	return count, nil
}

func (s *sqlxStore) PruneMessages(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE timestamp < ?`, olderThan.UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error pruning old messages", "cutoff", olderThan, "error", err)
		return 0, fmt.Errorf("failed to prune messages older than %s: %w", olderThan, err)
	}

	count, _ := result.RowsAffected()
	if count > 0 {
		s.logger.InfoContext(ctx, "Pruned old messages", "cutoff", olderThan, "count", count)
	}
	return count, nil
}

// RunMaintenance executes VACUUM, which SQLite requires to run outside a transaction.
func (s *sqlxStore) RunMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed")
	return nil
}

func (s *sqlxStore) UpsertSession(ctx context.Context, session *UserSession) error {
	if session == nil {
		return fmt.Errorf("cannot save nil session")
	}
	if session.UserID == 0 {
		return fmt.Errorf("session must have a non-zero user_id")
	}

	now := time.Now().UTC()
	if session.FirstSeen.IsZero() {
		session.FirstSeen = now
	}
	session.LastSeen = now

	// Identity fields refresh on every message; first_seen and the counter
	// survive from the original row.
	query := `
        INSERT INTO user_sessions (user_id, chat_id, username, first_name, last_name, message_count, first_seen, last_seen)
        VALUES (:user_id, :chat_id, :username, :first_name, :last_name, 1, :first_seen, :last_seen)
        ON CONFLICT(user_id) DO UPDATE SET
            chat_id = excluded.chat_id,
            username = excluded.username,
            first_name = excluded.first_name,
            last_name = excluded.last_name,
            message_count = user_sessions.message_count + 1,
            last_seen = excluded.last_seen;
    `

	if _, err := s.db.NamedExecContext(ctx, query, session); err != nil {
		s.logger.ErrorContext(ctx, "Error upserting user session", "user_id", session.UserID, "error", err)
		return fmt.Errorf("failed to upsert session for user %d: %w", session.UserID, err)
	}

	s.logger.DebugContext(ctx, "User session updated", "user_id", session.UserID)
	return nil
}

func (s *sqlxStore) GetSession(ctx context.Context, userID int64) (*UserSession, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}

	var session UserSession
	query := `
        SELECT user_id, chat_id, username, first_name, last_name, message_count, first_seen, last_seen
        FROM user_sessions WHERE user_id = ?;
    `

	err := s.db.GetContext(ctx, &session, query, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting user session", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get session for user %d: %w", userID, err)
	}

	return &session, nil
}

func (s *sqlxStore) ActiveSessions(ctx context.Context) ([]UserSession, error) {
	var sessions []UserSession
	query := `
        SELECT user_id, chat_id, username, first_name, last_name, message_count, first_seen, last_seen
        FROM user_sessions
        ORDER BY last_seen DESC;
    `
	if err := s.db.SelectContext(ctx, &sessions, query); err != nil {
		s.logger.ErrorContext(ctx, "Error getting active sessions", "error", err)
		return nil, fmt.Errorf("failed to get active sessions: %w", err)
	}
	return sessions, nil
}

func (s *sqlxStore) ResetSessionCount(ctx context.Context, userID int64) error {
	if userID == 0 {
		return fmt.Errorf("user_id cannot be zero")
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE user_sessions SET message_count = 0 WHERE user_id = ?`, userID); err != nil {
		s.logger.ErrorContext(ctx, "Error resetting session counter", "user_id", userID, "error", err)
		return fmt.Errorf("failed to reset session counter for user %d: %w", userID, err)
	}
	return nil
}

func (s *sqlxStore) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	query := `
        SELECT
            COUNT(*) AS total_messages,
            COALESCE(SUM(CASE WHEN direction = 'in' THEN 1 ELSE 0 END), 0) AS incoming_messages,
            COALESCE(SUM(CASE WHEN direction = 'out' THEN 1 ELSE 0 END), 0) AS outgoing_messages,
            (SELECT COUNT(*) FROM user_sessions) AS total_users
        FROM messages;
    `
	if err := s.db.GetContext(ctx, &stats, query); err != nil {
		s.logger.ErrorContext(ctx, "Error aggregating stats", "error", err)
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}

	// The newest timestamp is read as a plain column rather than MAX():
	// aggregate results lose the column's declared type, so the sqlite
	// driver hands back a raw string that time scanning rejects.
	if stats.TotalMessages > 0 {
		var last time.Time
		err := s.db.GetContext(ctx, &last,
			`SELECT timestamp FROM messages ORDER BY timestamp DESC, id DESC LIMIT 1;`)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// Messages vanished between the two queries; leave the field unset.
		case err != nil:
			s.logger.ErrorContext(ctx, "Error reading newest message timestamp", "error", err)
			return nil, fmt.Errorf("failed to read newest message timestamp: %w", err)
		default:
			stats.LastMessageAt = sql.NullTime{Time: last, Valid: true}
		}
	}
	return &stats, nil
}

// clampLimit keeps query limits within a sane range.
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > 100:
		return 100
	default:
		return limit
	}
}
