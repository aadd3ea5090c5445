// Package mcpserver exposes the Telegram relay over the Model Context
// Protocol: tools for sending messages, resources for inspecting stored
// history, and prompt templates, served on a streamable HTTP transport.
package mcpserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/mark3labs/mcp-go/server"

	"github.com/edgard/telegram-mcp/internal/database"
	"github.com/edgard/telegram-mcp/internal/telegram"
)

const (
	serverName    = "telegram-mcp"
	serverVersion = "1.0.0"

	endpointPath    = "/mcp"
	shutdownTimeout = 10 * time.Second
)

// TelegramAPI is the slice of the Telegram bot API the MCP server needs
// for informational tools. *bot.Bot satisfies it.
type TelegramAPI interface {
	GetMe(ctx context.Context) (*models.User, error)
	GetChat(ctx context.Context, params *bot.GetChatParams) (*models.ChatFullInfo, error)
}

// Deps carries the collaborators required by the MCP server.
type Deps struct {
	Logger *slog.Logger
	Sender telegram.Sender
	Store  database.Store
	API    TelegramAPI

	// ChatID is the default chat targeted by send_telegram_message.
	ChatID string
}

// Server wraps the MCP server and its streamable HTTP transport.
type Server struct {
	mcp    *server.MCPServer
	logger *slog.Logger
	sender telegram.Sender
	store  database.Store
	api    TelegramAPI
	chatID string
}

// New builds the MCP server and registers all tools, resources, and prompts.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		logger: logger.With("component", "mcp_server"),
		sender: deps.Sender,
		store:  deps.Store,
		api:    deps.API,
		chatID: deps.ChatID,
	}

	s.mcp = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
	)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// Run serves the MCP endpoint on addr until ctx is cancelled, then shuts
// the transport down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := server.NewStreamableHTTPServer(s.mcp, server.WithEndpointPath(endpointPath))

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening", "addr", addr, "endpoint", endpointPath)
		errCh <- httpServer.Start(addr)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down MCP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
