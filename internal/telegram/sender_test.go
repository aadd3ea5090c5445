package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"
)

// newTestClient returns a Client pointed at a httptest server running handler,
// plus a counter of how many requests the server received.
func newTestClient(t *testing.T, token string, handler http.HandlerFunc) (*Client, *atomic.Int64) {
	t.Helper()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(token, nil, WithAPIURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c, &calls
}

func TestSendSuccess(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody sendMessageRequest

	c, calls := newTestClient(t, "T", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"message_id": 42},
		})
	})

	d, err := c.Send(context.Background(), "123", "hello")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if d.MessageID != 42 {
		t.Errorf("MessageID = %d, want 42", d.MessageID)
	}
	if gotPath != "/botT/sendMessage" {
		t.Errorf("request path = %q, want %q", gotPath, "/botT/sendMessage")
	}
	if gotBody.ChatID != "123" || gotBody.Text != "hello" {
		t.Errorf("request body = %+v, want chat_id=123 text=hello", gotBody)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("provider calls = %d, want exactly 1", n)
	}
}

func TestSendProviderRejection(t *testing.T) {
	t.Parallel()

	c, calls := newTestClient(t, "T", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"description": "Forbidden",
		})
	})

	_, err := c.Send(context.Background(), "123", "hello")

	var dErr *DeliveryError
	if !errors.As(err, &dErr) {
		t.Fatalf("Send() error = %v, want *DeliveryError", err)
	}
	if dErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", dErr.StatusCode)
	}
	if dErr.Description != "Forbidden" {
		t.Errorf("Description = %q, want %q", dErr.Description, "Forbidden")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("provider calls = %d, want exactly 1 (no retry)", n)
	}
}

func TestSendOKFalseWithStatus200(t *testing.T) {
	t.Parallel()

	// The Bot API can answer 200 with ok=false; that is still a failed delivery.
	c, _ := newTestClient(t, "T", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"description": "Bad Request: chat not found",
		})
	})

	_, err := c.Send(context.Background(), "123", "hello")

	var dErr *DeliveryError
	if !errors.As(err, &dErr) {
		t.Fatalf("Send() error = %v, want *DeliveryError", err)
	}
	if dErr.Description != "Bad Request: chat not found" {
		t.Errorf("Description = %q", dErr.Description)
	}
}

func TestSendTransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Connection refused from now on.

	c, err := NewClient("T", nil, WithAPIURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = c.Send(context.Background(), "123", "hello")

	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("Send() error = %v, want *TransportError", err)
	}
}

func TestSendRejectsEmptyText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "spaces", text: "   "},
		{name: "whitespace mix", text: " \t\n "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, calls := newTestClient(t, "T", func(w http.ResponseWriter, r *http.Request) {
				t.Error("unexpected provider call for empty text")
			})

			_, err := c.Send(context.Background(), "123", tc.text)
			if !errors.Is(err, ErrEmptyText) {
				t.Errorf("Send(%q) error = %v, want ErrEmptyText", tc.text, err)
			}
			if n := calls.Load(); n != 0 {
				t.Errorf("provider calls = %d, want 0", n)
			}
		})
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("", nil); err == nil {
		t.Fatal("NewClient(\"\") succeeded, want error")
	}
}

func TestBodySnippet(t *testing.T) {
	t.Parallel()

	short := bodySnippet([]byte("  gateway timeout \n"))
	if short != "gateway timeout" {
		t.Errorf("bodySnippet() = %q, want trimmed body", short)
	}

	long := bodySnippet([]byte(strings.Repeat("エラー", 100)))
	if got := len([]rune(long)); got != 200 {
		t.Errorf("snippet length = %d runes, want 200", got)
	}
	if !utf8.ValidString(long) {
		t.Errorf("snippet is invalid UTF-8: %q", long)
	}
}
