package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load loads and validates configuration from, in order of precedence:
// 1. Default values
// 2. config.yaml in the working directory (optional)
// 3. Environment variables (TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID, and
// BOT_*-prefixed overrides for everything else)
//
// The two Telegram credentials have no defaults: a missing or empty token or
// chat id fails the load so the process never serves without them.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindCredentialEnv(v)

	// Config file is optional, environment alone must be enough.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfiguration, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

// bindCredentialEnv maps the well-known environment variable names onto the
// config keys. These take effect regardless of the BOT_ prefix.
func bindCredentialEnv(v *viper.Viper) {
	_ = v.BindEnv("telegram.token", "TELEGRAM_BOT_TOKEN")
	_ = v.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID")
	_ = v.BindEnv("telegram.webhook_url", "TELEGRAM_WEBHOOK_URL")
	_ = v.BindEnv("telegram.webhook_secret", "WEBHOOK_SECRET")
	_ = v.BindEnv("server.host", "SERVER_HOST")
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.mcp_port", "MCP_PORT")
	_ = v.BindEnv("ai.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("log.level", "LOG_LEVEL")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", true)

	v.SetDefault("server.host", DefaultServerHost)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.mcp_port", DefaultMCPPort)

	v.SetDefault("database.path", DefaultDBPath)
	v.SetDefault("database.retention", DefaultDBRetention)
	v.SetDefault("database.max_history_messages", DefaultMaxHistoryMessages)

	v.SetDefault("ai.model", DefaultAIModel)
	v.SetDefault("ai.temperature", DefaultAITemperature)
	v.SetDefault("ai.timeout", DefaultAITimeout)
	v.SetDefault("ai.instruction", DefaultAIInstruction)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.maintenance_schedule", DefaultMaintenanceSchedule)

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.help", DefaultMessages.Help)
	v.SetDefault("messages.history_reset", DefaultMessages.HistoryReset)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
}
