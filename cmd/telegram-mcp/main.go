// Package main contains the entrypoint for the Telegram MCP relay.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/telegram-mcp/internal/bot"
	"github.com/edgard/telegram-mcp/internal/bot/handlers"
	"github.com/edgard/telegram-mcp/internal/bot/tasks"
	"github.com/edgard/telegram-mcp/internal/config"
	"github.com/edgard/telegram-mcp/internal/database"
	"github.com/edgard/telegram-mcp/internal/gemini"
	"github.com/edgard/telegram-mcp/internal/httpapi"
	"github.com/edgard/telegram-mcp/internal/logger"
	"github.com/edgard/telegram-mcp/internal/mcpserver"
	"github.com/edgard/telegram-mcp/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components, handles graceful
// shutdown, and returns the process exit code.
func run(ctx context.Context) int {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	// An optional positional argument overrides the MCP port.
	if args := flag.Args(); len(args) > 0 {
		port, err := strconv.Atoi(args[0])
		if err != nil || port < 1 || port > 65535 {
			slog.Error("Invalid MCP port argument", "arg", args[0])
			return 1
		}
		cfg.Server.MCPPort = port
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	aiClient, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		Instruction: cfg.AI.Instruction,
		Timeout:     cfg.AI.Timeout,
	}, log)
	if err != nil {
		log.Error("Failed to initialize AI client", "error", err)
		return 1
	}

	hDeps := handlers.HandlerDeps{
		Logger:   log,
		Config:   cfg,
		Store:    store,
		AIClient: aiClient,
	}
	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log), handlers.TrackActivity(hDeps)),
		tgbot.WithDefaultHandler(handlers.NewChatHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info",
		"bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	sender, err := telegram.NewClient(cfg.Telegram.Token, log)
	if err != nil {
		log.Error("Failed to create Telegram sender", "error", err)
		return 1
	}

	mcpSrv := mcpserver.New(mcpserver.Deps{
		Logger: log,
		Sender: sender,
		Store:  store,
		API:    tg,
		ChatID: cfg.Telegram.ChatID,
	})

	var webhookHandler http.Handler
	if cfg.Telegram.WebhookURL != "" {
		webhookHandler = tg.WebhookHandler()
	}
	apiSrv := httpapi.New(httpapi.Deps{
		Logger:         log,
		Store:          store,
		Bot:            tg,
		WebhookHandler: webhookHandler,
		WebhookSecret:  cfg.Telegram.WebhookSecret,
	})

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, db, store, tg, sched, mcpSrv, apiSrv)

	log.Info("Starting relay...", "mcp_port", cfg.Server.MCPPort, "api_port", cfg.Server.Port)
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Relay stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Relay stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
