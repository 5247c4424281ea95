package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Client submits a prompt to the text-generation service and returns its reply.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var (
	// ErrRateLimited is wrapped by a StatusError for HTTP 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrTransport indicates the request never produced an HTTP response.
	ErrTransport = errors.New("transport failure")

	// ErrMalformedResponse indicates the reply had no text content to read.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrRetryExhausted is returned when a retryable failure persists past the retry cap.
	ErrRetryExhausted = errors.New("retries exhausted")

	// ErrEmptyAnnotation is returned when the service replies with blank text.
	ErrEmptyAnnotation = errors.New("empty annotation")

	// ErrMissingAPIKey is returned when a client has no credential to send.
	ErrMissingAPIKey = errors.New("API key not configured")
)

// StatusError is a non-2xx response from the service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// Unwrap exposes ErrRateLimited for 429 responses.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	return nil
}

// IsRetryable reports whether a failed request may be retried in sequential mode.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTransport)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, prompt string) (string, error)

func (f ClientFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
