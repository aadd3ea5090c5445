package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/telegram-mcp/internal/database"
)

// NewStatsHandler returns a handler for the /stats command, which reports
// global message and user counters.
func NewStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps HandlerDeps
}

func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Stats handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /stats command", "chat_id", chatID, "user_id", update.Message.From.ID)

	stats, err := h.deps.Store.Stats(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to aggregate stats", "error", err)
		sendReply(ctx, b, chatID, h.deps.Config.Messages.GeneralError, log)
		return
	}

	sendReply(ctx, b, chatID, formatStats(stats), log)
}

// formatStats renders the /stats reply text.
func formatStats(stats *database.Stats) string {
	var sb strings.Builder

	sb.WriteString("Relay statistics:\n")
	sb.WriteString(fmt.Sprintf("• Total messages: %d\n", stats.TotalMessages))
	sb.WriteString(fmt.Sprintf("• Received: %d\n", stats.IncomingMessages))
	sb.WriteString(fmt.Sprintf("• Sent: %d\n", stats.OutgoingMessages))
	sb.WriteString(fmt.Sprintf("• Known users: %d", stats.TotalUsers))
	if stats.LastMessageAt.Valid {
		sb.WriteString(fmt.Sprintf("\n• Last activity: %s",
			stats.LastMessageAt.Time.UTC().Format("2006-01-02 15:04 UTC")))
	}

	return sb.String()
}
