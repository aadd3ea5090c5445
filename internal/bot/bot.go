// Package bot implements lifecycle management and component orchestration
// for the relay: the Telegram listener, the MCP server, the informational
// HTTP API, and the maintenance scheduler.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/telegram-mcp/internal/config"
	"github.com/edgard/telegram-mcp/internal/database"
	"github.com/edgard/telegram-mcp/internal/httpapi"
	"github.com/edgard/telegram-mcp/internal/mcpserver"
)

// Bot represents the main application and manages its components' lifecycle.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	db        *sqlx.DB
	store     database.Store
	tgBot     *tgbot.Bot
	scheduler *Scheduler
	mcpServer *mcpserver.Server
	apiServer *httpapi.Server
}

// NewBot creates a new instance of the application with all required dependencies.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	db *sqlx.DB,
	store database.Store,
	tgBot *tgbot.Bot,
	scheduler *Scheduler,
	mcpServer *mcpserver.Server,
	apiServer *httpapi.Server,
) *Bot {
	return &Bot{
		logger:    logger.With("component", "orchestrator"),
		cfg:       cfg,
		db:        db,
		store:     store,
		tgBot:     tgBot,
		scheduler: scheduler,
		mcpServer: mcpServer,
		apiServer: apiServer,
	}
}

// Run starts all components and blocks until the context is cancelled or a
// component fails. Shutdown is graceful: each component drains before Run
// returns.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return b.runTelegramListener(gCtx)
	})

	g.Go(func() error {
		addr := fmt.Sprintf("%s:%d", b.cfg.Server.Host, b.cfg.Server.MCPPort)
		return b.mcpServer.Run(gCtx, addr)
	})

	g.Go(func() error {
		addr := fmt.Sprintf("%s:%d", b.cfg.Server.Host, b.cfg.Server.Port)
		return b.apiServer.Run(gCtx, addr)
	})

	g.Go(func() error {
		if err := b.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	b.logger.Info("Orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Orchestrator stopped gracefully.")
	return nil
}

// runTelegramListener runs the bot in webhook mode when a webhook URL is
// configured and long-polling mode otherwise.
func (b *Bot) runTelegramListener(ctx context.Context) error {
	if b.cfg.Telegram.WebhookURL != "" {
		b.logger.Info("Starting Telegram webhook listener...", "url", b.cfg.Telegram.WebhookURL)

		ok, err := b.tgBot.SetWebhook(ctx, &tgbot.SetWebhookParams{
			URL:         b.cfg.Telegram.WebhookURL,
			SecretToken: b.cfg.Telegram.WebhookSecret,
		})
		if err != nil || !ok {
			return fmt.Errorf("failed to register webhook: %w", err)
		}

		b.tgBot.StartWebhook(ctx)
		b.logger.Info("Telegram webhook listener stopped.")
	} else {
		b.logger.Info("Starting Telegram polling listener...")
		b.tgBot.Start(ctx)
		b.logger.Info("Telegram polling listener stopped.")
	}

	if ctx.Err() == nil {
		b.logger.Warn("Telegram listener stopped unexpectedly without context cancellation.")
		return fmt.Errorf("telegram listener stopped unexpectedly")
	}
	return nil
}
