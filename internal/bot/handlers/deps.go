package handlers

import (
	"log/slog"

	"github.com/edgard/telegram-mcp/internal/config"
	"github.com/edgard/telegram-mcp/internal/database"
	"github.com/edgard/telegram-mcp/internal/gemini"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    database.Store
	AIClient gemini.Client
}
