// Package tasks implements the scheduled jobs run by the relay's scheduler:
// task definitions, dependencies, and registration.
package tasks

import (
	"log/slog"

	"github.com/edgard/telegram-mcp/internal/config"
	"github.com/edgard/telegram-mcp/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
}
