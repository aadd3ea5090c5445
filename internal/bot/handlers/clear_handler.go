package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewClearHandler returns a handler for the /clear command, which wipes the
// caller's stored message history while keeping the session row.
func NewClearHandler(deps HandlerDeps) bot.HandlerFunc {
	return clearHandler{deps}.Handle
}

type clearHandler struct {
	deps HandlerDeps
}

func (h clearHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "clear")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Clear handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	log.InfoContext(ctx, "Handling /clear command", "chat_id", chatID, "user_id", userID)

	deleted, err := h.deps.Store.DeleteMessagesForUser(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to delete user messages", "user_id", userID, "error", err)
		sendReply(ctx, b, chatID, h.deps.Config.Messages.GeneralError, log)
		return
	}

	if err := h.deps.Store.ResetSessionCount(ctx, userID); err != nil {
		log.WarnContext(ctx, "Failed to reset session counter", "user_id", userID, "error", err)
	}

	log.InfoContext(ctx, "Cleared user history", "user_id", userID, "deleted", deleted)
	sendReply(ctx, b, chatID, h.deps.Config.Messages.HistoryReset, log)
}
