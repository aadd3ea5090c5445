// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/telegram-mcp/internal/database"
)

const bookkeepingTimeout = 5 * time.Second

// TrackActivity creates a middleware that records every incoming text
// message and refreshes the sender's session before the handler runs, so
// /info and /stats always see up-to-date counters. Bookkeeping failures
// are logged and never block message handling.
func TrackActivity(deps HandlerDeps) tgbot.Middleware {
	log := deps.Logger.With("middleware", "track_activity")

	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			msg := update.Message
			if msg == nil || msg.From == nil || msg.Text == "" {
				next(ctx, b, update)
				return
			}

			saveCtx, cancel := context.WithTimeout(ctx, bookkeepingTimeout)
			defer cancel()

			session := &database.UserSession{
				UserID:    msg.From.ID,
				ChatID:    msg.Chat.ID,
				Username:  msg.From.Username,
				FirstName: msg.From.FirstName,
				LastName:  msg.From.LastName,
			}
			if err := deps.Store.UpsertSession(saveCtx, session); err != nil {
				log.WarnContext(ctx, "Failed to update user session",
					"user_id", msg.From.ID, "error", err)
			}

			record := &database.Message{
				ChatID:    msg.Chat.ID,
				UserID:    msg.From.ID,
				Direction: database.DirectionIncoming,
				Content:   msg.Text,
				Timestamp: time.Unix(int64(msg.Date), 0).UTC(),
			}
			if err := deps.Store.SaveMessage(saveCtx, record); err != nil {
				log.WarnContext(ctx, "Failed to record incoming message",
					"chat_id", msg.Chat.ID, "error", err)
			}

			next(ctx, b, update)
		}
	}
}
