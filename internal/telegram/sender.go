// Package telegram implements the outbound message relay to the Telegram Bot
// API, plus setup helpers for the polling bot built on go-telegram/bot.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIURL is the Telegram Bot API base URL.
const DefaultAPIURL = "https://api.telegram.org"

const defaultSendTimeout = 30 * time.Second

// Delivery reports a successfully delivered message.
type Delivery struct {
	// MessageID is the provider-assigned identifier of the sent message.
	MessageID int64
}

// Sender delivers a text message to a Telegram chat. Implementations make
// exactly one provider call per invocation and never retry.
type Sender interface {
	Send(ctx context.Context, chatID, text string) (*Delivery, error)
}

// Client is a thin sendMessage client over the Telegram Bot API. It holds the
// immutable bot token; chat id and text are supplied per call. The zero value
// is not usable, create instances with NewClient.
type Client struct {
	apiURL string
	token  string
	http   *http.Client
	log    *slog.Logger
}

var _ Sender = (*Client)(nil)

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithAPIURL overrides the Bot API base URL. Used by tests to point the
// client at a local server.
func WithAPIURL(url string) ClientOption {
	return func(c *Client) { c.apiURL = strings.TrimSuffix(url, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a sendMessage client for the given bot token.
func NewClient(token string, log *slog.Logger, opts ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram: bot token must not be empty")
	}
	if log == nil {
		log = slog.Default()
	}

	c := &Client{
		apiURL: DefaultAPIURL,
		token:  token,
		http:   &http.Client{Timeout: defaultSendTimeout},
		log:    log.With("component", "telegram_sender"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// sendMessageRequest is the JSON body of the sendMessage call.
type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// apiResponse is the subset of the Bot API response envelope we care about.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

// Send issues one synchronous sendMessage call for the given chat and text.
//
// Empty or whitespace-only text is rejected before any network activity with
// ErrEmptyText. A provider response with a non-2xx status or ok=false yields
// a *DeliveryError carrying the status and description; a connection-level
// failure yields a *TransportError. No retry is performed here, retrying is
// the caller's decision.
func (c *Client) Send(ctx context.Context, chatID, text string) (*Delivery, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if chatID == "" {
		return nil, fmt.Errorf("telegram: chat id must not be empty")
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return nil, fmt.Errorf("telegram: failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.apiURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("telegram: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var apiResp apiResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		// Non-JSON body; still a provider response, surface the status.
		return nil, &DeliveryError{StatusCode: resp.StatusCode, Description: bodySnippet(raw)}
	}

	if resp.StatusCode != http.StatusOK || !apiResp.OK {
		c.log.WarnContext(ctx, "Provider rejected message",
			"status", resp.StatusCode, "description", apiResp.Description)
		return nil, &DeliveryError{StatusCode: resp.StatusCode, Description: apiResp.Description}
	}

	c.log.DebugContext(ctx, "Message delivered",
		"chat_id", chatID, "message_id", apiResp.Result.MessageID)
	return &Delivery{MessageID: apiResp.Result.MessageID}, nil
}

// bodySnippet renders a short, printable form of an unparseable response body.
func bodySnippet(raw []byte) string {
	runes := []rune(strings.TrimSpace(string(raw)))
	if len(runes) > 200 {
		runes = runes[:200]
	}
	return string(runes)
}
