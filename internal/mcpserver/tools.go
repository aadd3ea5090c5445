package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/edgard/telegram-mcp/internal/database"
	"github.com/edgard/telegram-mcp/internal/telegram"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool(
		"send_telegram_message",
		mcp.WithDescription("Send a text message to the configured Telegram chat"),
		mcp.WithString("text", mcp.Required(), mcp.Description("Message text to send")),
	), s.handleSendMessage)

	s.mcp.AddTool(mcp.NewTool(
		"get_chat_info",
		mcp.WithDescription("Fetch metadata about a Telegram chat (defaults to the configured chat)"),
		mcp.WithString("chat_id", mcp.Description("Chat ID or @username to look up")),
	), s.handleGetChatInfo)

	s.mcp.AddTool(mcp.NewTool(
		"get_bot_info",
		mcp.WithDescription("Fetch the bot's own Telegram account details"),
	), s.handleGetBotInfo)

	s.mcp.AddTool(mcp.NewTool(
		"broadcast_message",
		mcp.WithDescription("Send a text message to every chat with a known user session"),
		mcp.WithString("text", mcp.Required(), mcp.Description("Message text to broadcast")),
	), s.handleBroadcastMessage)
}

func (s *Server) handleSendMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, _ := req.GetArguments()["text"].(string)

	delivery, err := s.sender.Send(ctx, s.chatID, text)
	if err != nil {
		s.logger.WarnContext(ctx, "send_telegram_message failed", "chat_id", s.chatID, "error", err)
		return mcp.NewToolResultError(sendFailureText(err)), nil
	}

	s.recordOutgoing(ctx, s.chatID, text)

	s.logger.InfoContext(ctx, "send_telegram_message delivered",
		"chat_id", s.chatID, "message_id", delivery.MessageID)
	return mcp.NewToolResultText(fmt.Sprintf(
		"Message sent successfully to chat %s (message_id: %d)", s.chatID, delivery.MessageID)), nil
}

func (s *Server) handleGetChatInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chatID, _ := req.GetArguments()["chat_id"].(string)
	if chatID == "" {
		chatID = s.chatID
	}

	chat, err := s.api.GetChat(ctx, &bot.GetChatParams{ChatID: chatID})
	if err != nil {
		s.logger.WarnContext(ctx, "get_chat_info failed", "chat_id", chatID, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch chat info: %v", err)), nil
	}

	info := map[string]any{
		"id":    chat.ID,
		"type":  chat.Type,
		"title": chat.Title,
	}
	if chat.Username != "" {
		info["username"] = chat.Username
	}
	if chat.FirstName != "" {
		info["first_name"] = chat.FirstName
	}
	if chat.LastName != "" {
		info["last_name"] = chat.LastName
	}
	if chat.Description != "" {
		info["description"] = chat.Description
	}

	return jsonToolResult(info)
}

func (s *Server) handleGetBotInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	me, err := s.api.GetMe(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "get_bot_info failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch bot info: %v", err)), nil
	}

	return jsonToolResult(map[string]any{
		"id":         me.ID,
		"username":   me.Username,
		"first_name": me.FirstName,
		"is_bot":     me.IsBot,
	})
}

func (s *Server) handleBroadcastMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, _ := req.GetArguments()["text"].(string)
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError(sendFailureText(telegram.ErrEmptyText)), nil
	}

	sessions, err := s.store.ActiveSessions(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list known chats: %v", err)), nil
	}
	if len(sessions) == 0 {
		return mcp.NewToolResultText("No known chats to broadcast to."), nil
	}

	// Several users may share a chat; send once per chat.
	seen := make(map[int64]bool, len(sessions))
	var sent, failed int
	for _, session := range sessions {
		if seen[session.ChatID] {
			continue
		}
		seen[session.ChatID] = true

		chatID := strconv.FormatInt(session.ChatID, 10)
		if _, err := s.sender.Send(ctx, chatID, text); err != nil {
			s.logger.WarnContext(ctx, "broadcast delivery failed", "chat_id", chatID, "error", err)
			failed++
			continue
		}
		s.recordOutgoing(ctx, chatID, text)
		sent++
	}

	s.logger.InfoContext(ctx, "broadcast_message finished", "sent", sent, "failed", failed)
	return mcp.NewToolResultText(fmt.Sprintf(
		"Broadcast complete: delivered to %d chat(s), %d failed.", sent, failed)), nil
}

// recordOutgoing stores a copy of an MCP-initiated message so it shows up
// in history resources and stats. Storage failures are logged, not surfaced:
// the message already left for Telegram.
func (s *Server) recordOutgoing(ctx context.Context, chatID, text string) {
	if s.store == nil {
		return
	}
	numericID, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		// @username targets have no numeric chat id to record against.
		return
	}

	msg := &database.Message{
		ChatID:    numericID,
		Direction: database.DirectionOutgoing,
		Content:   text,
		Timestamp: time.Now().UTC(),
	}
	if err := s.store.SaveMessage(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to record outgoing message", "chat_id", chatID, "error", err)
	}
}

// sendFailureText renders a sender error as the human-readable text returned
// to the MCP caller.
func sendFailureText(err error) string {
	var deliveryErr *telegram.DeliveryError
	var transportErr *telegram.TransportError

	switch {
	case errors.Is(err, telegram.ErrEmptyText):
		return "Failed to send message: text must not be empty."
	case errors.As(err, &deliveryErr):
		return fmt.Sprintf("Failed to send message: %s (status %d)",
			deliveryErr.Description, deliveryErr.StatusCode)
	case errors.As(err, &transportErr):
		return fmt.Sprintf("Failed to reach Telegram: %v", transportErr.Err)
	default:
		return fmt.Sprintf("Failed to send message: %v", err)
	}
}

func jsonToolResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
