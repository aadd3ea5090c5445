package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

const aboutText = `Telegram MCP relay.

Tools:
  send_telegram_message(text)  - send text to the configured chat
  get_chat_info(chat_id?)      - look up chat metadata
  get_bot_info()               - the bot's own account details
  broadcast_message(text)      - send text to every known chat

Resources:
  telegram://about                     - this text
  telegram://messages/recent/{limit}   - most recent stored messages
  telegram://users/active              - known user sessions
  telegram://stats/summary             - message and user counters
`

const defaultRecentLimit = 20

func (s *Server) registerResources() {
	s.mcp.AddResource(mcp.NewResource(
		"telegram://about",
		"About this relay",
		mcp.WithResourceDescription("Usage overview of the relay's tools and resources"),
		mcp.WithMIMEType("text/plain"),
	), s.readAbout)

	s.mcp.AddResourceTemplate(mcp.NewResourceTemplate(
		"telegram://messages/recent/{limit}",
		"Recent messages",
		mcp.WithTemplateDescription("The most recent stored messages across all chats"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.readRecentMessages)

	s.mcp.AddResource(mcp.NewResource(
		"telegram://users/active",
		"Active users",
		mcp.WithResourceDescription("Known user sessions ordered by most recent activity"),
		mcp.WithMIMEType("application/json"),
	), s.readActiveUsers)

	s.mcp.AddResource(mcp.NewResource(
		"telegram://stats/summary",
		"Usage statistics",
		mcp.WithResourceDescription("Aggregate message and user counters"),
		mcp.WithMIMEType("application/json"),
	), s.readStatsSummary)
}

func (s *Server) readAbout(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     aboutText,
		},
	}, nil
}

func (s *Server) readRecentMessages(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	limit := recentLimitFromURI(req.Params.URI)

	messages, err := s.store.RecentMessages(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent messages: %w", err)
	}

	type entry struct {
		ChatID    int64  `json:"chat_id"`
		UserID    int64  `json:"user_id,omitempty"`
		Direction string `json:"direction"`
		Content   string `json:"content"`
		Timestamp string `json:"timestamp"`
	}
	entries := make([]entry, 0, len(messages))
	for _, m := range messages {
		entries = append(entries, entry{
			ChatID:    m.ChatID,
			UserID:    m.UserID,
			Direction: m.Direction,
			Content:   m.Content,
			Timestamp: m.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	return jsonResourceContents(req.Params.URI, entries)
}

func (s *Server) readActiveUsers(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sessions, err := s.store.ActiveSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load user sessions: %w", err)
	}

	type entry struct {
		UserID       int64  `json:"user_id"`
		ChatID       int64  `json:"chat_id"`
		DisplayName  string `json:"display_name"`
		MessageCount int64  `json:"message_count"`
		FirstSeen    string `json:"first_seen"`
		LastSeen     string `json:"last_seen"`
	}
	entries := make([]entry, 0, len(sessions))
	for i := range sessions {
		sess := &sessions[i]
		entries = append(entries, entry{
			UserID:       sess.UserID,
			ChatID:       sess.ChatID,
			DisplayName:  sess.DisplayName(),
			MessageCount: sess.MessageCount,
			FirstSeen:    sess.FirstSeen.UTC().Format(time.RFC3339),
			LastSeen:     sess.LastSeen.UTC().Format(time.RFC3339),
		})
	}

	return jsonResourceContents(req.Params.URI, entries)
}

func (s *Server) readStatsSummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}

	summary := map[string]any{
		"total_messages":    stats.TotalMessages,
		"incoming_messages": stats.IncomingMessages,
		"outgoing_messages": stats.OutgoingMessages,
		"total_users":       stats.TotalUsers,
	}
	if stats.LastMessageAt.Valid {
		summary["last_message_at"] = stats.LastMessageAt.Time.UTC().Format(time.RFC3339)
	}

	return jsonResourceContents(req.Params.URI, summary)
}

// recentLimitFromURI extracts the {limit} segment from a
// telegram://messages/recent/{limit} URI, falling back to the default on
// anything unparsable.
func recentLimitFromURI(uri string) int {
	idx := strings.LastIndex(uri, "/")
	if idx == -1 || idx == len(uri)-1 {
		return defaultRecentLimit
	}
	limit, err := strconv.Atoi(uri[idx+1:])
	if err != nil || limit <= 0 {
		return defaultRecentLimit
	}
	return limit
}

func jsonResourceContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode resource contents: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
