package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/telegram-mcp/internal/database"
)

const aiReplyTimeout = 2 * time.Minute

// NewChatHandler returns the default handler for plain text messages. It
// replies with an AI-generated answer when the Gemini client is configured
// and a deterministic contextual reply otherwise.
func NewChatHandler(deps HandlerDeps) bot.HandlerFunc {
	return chatHandler{deps}.Handle
}

type chatHandler struct {
	deps HandlerDeps
}

func (h chatHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "chat")

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}
	// Unrecognized commands fall through to the default handler; don't chat back.
	if strings.HasPrefix(msg.Text, "/") {
		log.DebugContext(ctx, "Ignoring unknown command", "chat_id", msg.Chat.ID, "text", msg.Text)
		return
	}

	log.InfoContext(ctx, "Handling chat message", "chat_id", msg.Chat.ID, "user_id", msg.From.ID)

	reply := h.generateReply(ctx, msg)

	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: reply}); err != nil {
		log.ErrorContext(ctx, "Failed to send chat reply", "error", err, "chat_id", msg.Chat.ID)
		return
	}

	record := &database.Message{
		ChatID:    msg.Chat.ID,
		Direction: database.DirectionOutgoing,
		Content:   reply,
		Timestamp: time.Now().UTC(),
	}
	if err := h.deps.Store.SaveMessage(ctx, record); err != nil {
		log.WarnContext(ctx, "Failed to record outgoing reply", "chat_id", msg.Chat.ID, "error", err)
	}
}

func (h chatHandler) generateReply(ctx context.Context, msg *models.Message) string {
	log := h.deps.Logger.With("handler", "chat")

	if !h.deps.AIClient.Enabled() {
		return fallbackReply(msg.Text, msg.From.FirstName)
	}

	history, err := h.deps.Store.RecentMessagesInChat(ctx, msg.Chat.ID, h.deps.Config.Database.MaxHistoryMessages)
	if err != nil {
		log.WarnContext(ctx, "Failed to load chat history for AI reply", "chat_id", msg.Chat.ID, "error", err)
	}
	// The store returns newest first; the AI wants chronological order. The
	// tracking middleware already saved the current message, so drop it.
	chronological := make([]database.Message, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Content == msg.Text && history[i].UserID == msg.From.ID && i == 0 {
			continue
		}
		chronological = append(chronological, history[i])
	}

	aiCtx, cancel := context.WithTimeout(ctx, aiReplyTimeout)
	defer cancel()

	reply, err := h.deps.AIClient.GenerateReply(aiCtx, chronological, msg.Text)
	if err != nil {
		log.WarnContext(ctx, "AI reply generation failed, using fallback", "chat_id", msg.Chat.ID, "error", err)
		return fallbackReply(msg.Text, msg.From.FirstName)
	}
	return reply
}

// fallbackReply produces a deterministic contextual reply when AI replies
// are disabled or unavailable.
func fallbackReply(text, firstName string) string {
	name := firstName
	if name == "" {
		name = "there"
	}

	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case containsAny(lower, "hello", "hi ", "hey"), lower == "hi":
		return fmt.Sprintf("Hello %s! I'm relaying your messages. Type /help to see what I can do.", name)
	case containsAny(lower, "thank", "thx"):
		return "You're welcome!"
	case containsAny(lower, "bye", "goodbye", "see you"):
		return fmt.Sprintf("Goodbye %s! Your messages are saved if you come back.", name)
	case strings.HasSuffix(lower, "?"):
		return "Good question. I'm a simple relay, so I can't answer that, but your message has been recorded."
	default:
		return fmt.Sprintf("Got it, %s. Message received and stored. Type /help for available commands.", name)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
