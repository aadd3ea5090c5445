package telegram

import (
	"errors"
	"fmt"
)

// ErrEmptyText is returned by Send when the message text is empty or
// whitespace-only. No network call is made in that case.
var ErrEmptyText = errors.New("telegram: message text must not be empty")

// DeliveryError indicates the provider answered the sendMessage call with a
// non-success response. It carries the HTTP status and the provider's
// description so callers can surface both.
type DeliveryError struct {
	StatusCode  int
	Description string
}

func (e *DeliveryError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("telegram: sendMessage failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("telegram: sendMessage failed with status %d: %s", e.StatusCode, e.Description)
}

// TransportError indicates the sendMessage call never produced a provider
// response (connection failure, timeout, malformed reply).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("telegram: transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
