// Package httpapi serves the relay's informational HTTP endpoints and the
// Telegram webhook receiver.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/telegram-mcp/internal/database"
)

const (
	secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

	healthCheckTimeout = 5 * time.Second
	shutdownTimeout    = 10 * time.Second
)

// BotInfoProvider is the slice of the Telegram API the HTTP endpoints need.
// *bot.Bot satisfies it.
type BotInfoProvider interface {
	GetMe(ctx context.Context) (*models.User, error)
}

// Deps carries the collaborators required by the HTTP API.
type Deps struct {
	Logger *slog.Logger
	Store  database.Store
	Bot    BotInfoProvider

	// WebhookHandler receives Telegram webhook updates. Nil when the bot
	// runs in polling mode; POST /webhook then answers 404.
	WebhookHandler http.Handler

	// WebhookSecret, when set, must match the secret token header on every
	// webhook request.
	WebhookSecret string
}

// Server is the informational HTTP API.
type Server struct {
	logger  *slog.Logger
	router  *chi.Mux
	store   database.Store
	bot     BotInfoProvider
	webhook http.Handler
	secret  string
}

// New builds the HTTP API server and its routes.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		logger:  logger.With("component", "http_api"),
		store:   deps.Store,
		bot:     deps.Bot,
		webhook: deps.WebhookHandler,
		secret:  deps.WebhookSecret,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/bot/info", s.handleBotInfo)
	r.Post("/webhook", s.handleWebhook)

	s.router = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves the API on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP API...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
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

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"service": "telegram-mcp",
		"status":  "running",
		"endpoints": map[string]string{
			"health":   "/health",
			"bot_info": "/bot/info",
			"webhook":  "/webhook",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := http.StatusOK
	checks := map[string]string{
		"database": "ok",
		"telegram": "ok",
	}

	if err := s.store.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Health check: database unreachable", "error", err)
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	if _, err := s.bot.GetMe(ctx); err != nil {
		s.logger.WarnContext(ctx, "Health check: telegram unreachable", "error", err)
		checks["telegram"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	s.writeJSON(w, status, map[string]any{"status": overall, "checks": checks})
}

func (s *Server) handleBotInfo(w http.ResponseWriter, r *http.Request) {
	me, err := s.bot.GetMe(r.Context())
	if err != nil {
		s.logger.WarnContext(r.Context(), "Failed to fetch bot info", "error", err)
		s.writeJSON(w, http.StatusBadGateway, map[string]any{"error": "failed to fetch bot info"})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"id":         me.ID,
		"username":   me.Username,
		"first_name": me.FirstName,
		"is_bot":     me.IsBot,
	})
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.webhook == nil {
		http.NotFound(w, r)
		return
	}

	if s.secret != "" && r.Header.Get(secretTokenHeader) != s.secret {
		s.logger.WarnContext(r.Context(), "Webhook request with bad secret token", "remote", r.RemoteAddr)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	s.webhook.ServeHTTP(w, r)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to encode JSON response", "error", err)
	}
}
