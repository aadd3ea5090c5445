// Package config provides configuration loading, validation, and management
// for the relay. It handles reading from an optional YAML file, environment
// variables, and default values.
package config

import (
	"errors"
	"time"

	"github.com/go-telegram/bot/models"
)

// ErrConfiguration indicates invalid or missing configuration. The process
// must not reach a serving state when Load returns an error wrapping it.
var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration parameters for all components:
// logging, the Telegram credentials, the MCP and HTTP listeners, the message
// store, optional AI replies, and scheduled maintenance.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	AI        AIConfig        `mapstructure:"ai"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credentials and destination chat. Token and
// ChatID are the two required secrets; the process refuses to start without
// them.
type TelegramConfig struct {
	Token         string `mapstructure:"token"          validate:"required"`
	ChatID        string `mapstructure:"chat_id"        validate:"required"`
	WebhookURL    string `mapstructure:"webhook_url"    validate:"omitempty,url"`
	WebhookSecret string `mapstructure:"webhook_secret"`

	// BotInfo is populated at runtime via getMe, not from configuration.
	BotInfo *models.User `mapstructure:"-"`
}

// ServerConfig holds the listener addresses. MCPPort is the port of the
// streamable MCP transport; Port serves the informational HTTP API.
type ServerConfig struct {
	Host    string `mapstructure:"host"     validate:"required"`
	Port    int    `mapstructure:"port"     validate:"required,min=1,max=65535"`
	MCPPort int    `mapstructure:"mcp_port" validate:"required,min=1,max=65535"`
}

// DatabaseConfig holds SQLite store settings.
type DatabaseConfig struct {
	Path               string        `mapstructure:"path"                 validate:"required"`
	Retention          time.Duration `mapstructure:"retention"            validate:"min=1h"`
	MaxHistoryMessages int           `mapstructure:"max_history_messages" validate:"min=1,max=1000"`
}

// AIConfig configures optional Gemini-generated replies for the polling bot.
// When APIKey is empty the bot falls back to deterministic replies.
type AIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"       validate:"required"`
	Temperature float32       `mapstructure:"temperature" validate:"min=0,max=2"`
	Instruction string        `mapstructure:"instruction" validate:"required"`
	Timeout     time.Duration `mapstructure:"timeout"     validate:"min=1s,max=10m"`
}

// SchedulerConfig configures the store maintenance job.
type SchedulerConfig struct {
	Enabled             bool   `mapstructure:"enabled"`
	MaintenanceSchedule string `mapstructure:"maintenance_schedule" validate:"required"`
}

// MessagesConfig holds user-facing bot reply templates.
type MessagesConfig struct {
	Welcome      string `mapstructure:"welcome"       validate:"required"`
	Help         string `mapstructure:"help"          validate:"required"`
	HistoryReset string `mapstructure:"history_reset" validate:"required"`
	GeneralError string `mapstructure:"general_error" validate:"required"`
}
