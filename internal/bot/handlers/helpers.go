package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
)

// sendReply sends a plain text reply and logs any delivery failure.
func sendReply(ctx context.Context, b *bot.Bot, chatID int64, text string, log *slog.Logger) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}
