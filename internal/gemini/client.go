// Package gemini implements the optional Gemini AI integration used for
// conversational replies to incoming Telegram messages.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/telegram-mcp/internal/database"
)

// ErrDisabled is returned by the noop client when no API key is configured.
var ErrDisabled = errors.New("gemini: AI replies are disabled")

const (
	maxRetries = 2
	retryDelay = 2 * time.Second
)

// Client defines the AI operations used by the message handlers.
type Client interface {
	// GenerateReply produces a conversational reply to prompt, given the
	// recent chat history (oldest first).
	GenerateReply(ctx context.Context, history []database.Message, prompt string) (string, error)

	// Enabled reports whether the client can actually reach the AI backend.
	Enabled() bool
}

type sdkClient struct {
	genaiClient   *genai.Client
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	modelName     string
	timeout       time.Duration
}

// Config carries the settings needed to construct a Client.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	Instruction string
	Timeout     time.Duration
}

// NewClient creates a Gemini-backed Client. When cfg.APIKey is empty it
// returns a disabled noop client, so callers never need a nil check.
func NewClient(ctx context.Context, cfg Config, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		log.Info("No Gemini API key configured, AI replies disabled")
		return disabledClient{}, nil
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Temperature
	contentCfg := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if cfg.Instruction != "" {
		contentCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: cfg.Instruction}}}
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized", "model", cfg.Model)
	return &sdkClient{
		genaiClient:   gi,
		log:           logger,
		contentConfig: contentCfg,
		modelName:     cfg.Model,
		timeout:       cfg.Timeout,
	}, nil
}

func (c *sdkClient) Enabled() bool { return true }

func (c *sdkClient) GenerateReply(ctx context.Context, history []database.Message, prompt string) (string, error) {
	c.log.DebugContext(ctx, "Generating reply", "history_count", len(history))

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var contents []*genai.Content
	for _, m := range history {
		var role genai.Role = genai.RoleUser
		if m.Direction == database.DirectionOutgoing {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	resp, err := c.generateContentWithRetries(ctx, contents)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini reply generation failed", "error", err)
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	return c.extractTextFromResponse(ctx, resp)
}

func (c *sdkClient) generateContentWithRetries(ctx context.Context, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	var err error

	for i := 0; i <= maxRetries; i++ {
		resp, err = c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, c.contentConfig)
		if err == nil {
			return resp, nil
		}

		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) {
			if i < maxRetries {
				c.log.WarnContext(ctx, "Retrying Gemini API call after server error",
					"attempt", i+1, "code", apiErr.Code, "delay", retryDelay)
				select {
				case <-time.After(retryDelay):
					continue
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			return nil, fmt.Errorf("gemini API call failed after %d retries (code %d): %w", maxRetries, apiErr.Code, err)
		}

		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return nil, err
}

func (c *sdkClient) extractTextFromResponse(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reason := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reason = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "reason", reason)
		return "", fmt.Errorf("reply blocked by safety filter: %s", reason)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "finish_reason", finishReason)
		return "", fmt.Errorf("gemini returned no content, finish reason: %s", finishReason)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned empty text")
	}
	return text, nil
}

// disabledClient is the noop implementation used when no API key is set.
type disabledClient struct{}

func (disabledClient) Enabled() bool { return false }

func (disabledClient) GenerateReply(context.Context, []database.Message, string) (string, error) {
	return "", ErrDisabled
}
