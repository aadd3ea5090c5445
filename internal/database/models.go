package database

import (
	"database/sql"
	"time"
)

// Message direction values stored in the messages.direction column.
const (
	DirectionIncoming = "in"  // received from a Telegram user
	DirectionOutgoing = "out" // sent by the bot (including MCP-initiated sends)
)

// Message represents a single relayed chat message.
type Message struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	ChatID    int64     `db:"chat_id"`
	UserID    int64     `db:"user_id"`
	Direction string    `db:"direction"`
	Content   string    `db:"content"`
	Timestamp time.Time `db:"timestamp"`
}

// UserSession tracks per-user interaction state across bot restarts.
// A row is created the first time a user talks to the bot and updated
// on every subsequent message.
type UserSession struct {
	UserID       int64     `db:"user_id"`
	ChatID       int64     `db:"chat_id"`
	Username     string    `db:"username"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	MessageCount int64     `db:"message_count"`
	FirstSeen    time.Time `db:"first_seen"`
	LastSeen     time.Time `db:"last_seen"`
}

// DisplayName returns the best human-readable identifier for the session's user.
func (s *UserSession) DisplayName() string {
	switch {
	case s.Username != "":
		return "@" + s.Username
	case s.FirstName != "":
		name := s.FirstName
		if s.LastName != "" {
			name += " " + s.LastName
		}
		return name
	default:
		return "unknown"
	}
}

// Stats aggregates message and session counters for reporting.
type Stats struct {
	TotalMessages    int64        `db:"total_messages"`
	IncomingMessages int64        `db:"incoming_messages"`
	OutgoingMessages int64        `db:"outgoing_messages"`
	TotalUsers       int64        `db:"total_users"`
	LastMessageAt    sql.NullTime `db:"last_message_at"`
}
