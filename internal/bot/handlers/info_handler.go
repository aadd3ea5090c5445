package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/telegram-mcp/internal/database"
)

const infoRecentLimit = 5

// NewInfoHandler returns a handler for the /info command, which reports the
// caller's session details and recent activity.
func NewInfoHandler(deps HandlerDeps) bot.HandlerFunc {
	return infoHandler{deps}.Handle
}

type infoHandler struct {
	deps HandlerDeps
}

func (h infoHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "info")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Info handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	log.InfoContext(ctx, "Handling /info command", "chat_id", chatID, "user_id", userID)

	session, err := h.deps.Store.GetSession(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load session", "user_id", userID, "error", err)
		sendReply(ctx, b, chatID, h.deps.Config.Messages.GeneralError, log)
		return
	}
	if session == nil {
		sendReply(ctx, b, chatID, "I don't have a session for you yet. Say something first!", log)
		return
	}

	recent, err := h.deps.Store.RecentMessagesInChat(ctx, chatID, infoRecentLimit)
	if err != nil {
		log.WarnContext(ctx, "Failed to load recent activity", "chat_id", chatID, "error", err)
		// Session info alone is still useful.
	}

	sendReply(ctx, b, chatID, formatSessionInfo(session, recent), log)
}

// formatSessionInfo renders the /info reply text.
func formatSessionInfo(session *database.UserSession, recent []database.Message) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Your session, %s:\n", session.DisplayName()))
	sb.WriteString(fmt.Sprintf("• Messages sent: %d\n", session.MessageCount))
	sb.WriteString(fmt.Sprintf("• First seen: %s\n", session.FirstSeen.UTC().Format("2006-01-02 15:04 UTC")))
	sb.WriteString(fmt.Sprintf("• Last seen: %s\n", session.LastSeen.UTC().Format("2006-01-02 15:04 UTC")))

	if len(recent) > 0 {
		sb.WriteString("\nRecent activity:\n")
		for _, m := range recent {
			who := "you"
			if m.Direction == database.DirectionOutgoing {
				who = "bot"
			}
			sb.WriteString(fmt.Sprintf("• [%s] %s: %s\n",
				m.Timestamp.UTC().Format("15:04"), who, previewText(m.Content, 60)))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// previewText shortens s to maxLen runes, appending an ellipsis when truncated.
func previewText(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "…"
}
