package config

import (
	"errors"
	"testing"
)

func TestLoadRequiresCredentials(t *testing.T) {
	cases := []struct {
		name   string
		token  string
		chatID string
	}{
		{name: "both missing", token: "", chatID: ""},
		{name: "missing chat id", token: "123:ABC", chatID: ""},
		{name: "missing token", token: "", chatID: "123456789"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TELEGRAM_BOT_TOKEN", tc.token)
			t.Setenv("TELEGRAM_CHAT_ID", tc.chatID)

			_, err := Load()
			if err == nil {
				t.Fatal("Load() succeeded without required credentials")
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("Load() error = %v, want wrapping ErrConfiguration", err)
			}
		})
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:ABC-def")
	t.Setenv("TELEGRAM_CHAT_ID", "987654321")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Telegram.Token != "123:ABC-def" {
		t.Errorf("Telegram.Token = %q, want %q", cfg.Telegram.Token, "123:ABC-def")
	}
	if cfg.Telegram.ChatID != "987654321" {
		t.Errorf("Telegram.ChatID = %q, want %q", cfg.Telegram.ChatID, "987654321")
	}
	if cfg.Server.MCPPort != DefaultMCPPort {
		t.Errorf("Server.MCPPort = %d, want default %d", cfg.Server.MCPPort, DefaultMCPPort)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Server.Port = %d, want default %d", cfg.Server.Port, DefaultServerPort)
	}
	if cfg.Messages.Welcome == "" {
		t.Error("Messages.Welcome is empty, want default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:ABC")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("MCP_PORT", "9001")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.MCPPort != 9001 {
		t.Errorf("Server.MCPPort = %d, want 9001", cfg.Server.MCPPort)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:ABC")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("LOG_LEVEL", "verbose")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted invalid log level")
	}
}
