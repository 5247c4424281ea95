package generate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *AnthropicClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := DefaultAnthropicConfig("test-key")
	config.BaseURL = server.URL
	config.Timeout = 5 * time.Second
	return NewAnthropicClient(config, nil)
}

func TestAnthropicClient_RequestShape(t *testing.T) {
	t.Parallel()

	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, DefaultModel, req["model"])
		assert.Equal(t, float64(DefaultMaxTokens), req["max_tokens"])
		assert.Equal(t, []any{map[string]any{"role": "user", "content": "describe this"}}, req["messages"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"/** ok */"}]}`))
	})

	text, err := client.Complete(context.Background(), "describe this")
	require.NoError(t, err)
	assert.Equal(t, "/** ok */", text)
}

func TestAnthropicClient_StatusClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"rate limited", http.StatusTooManyRequests, true},
		{"server error", http.StatusInternalServerError, false},
		{"unauthorized", http.StatusUnauthorized, false},
		{"bad request", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope"}}`))
			})

			_, err := client.Complete(context.Background(), "p")
			require.Error(t, err)

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Contains(t, statusErr.Body, "nope")
			assert.Equal(t, tt.retryable, IsRetryable(err))
		})
	}
}

func TestAnthropicClient_MalformedResponse(t *testing.T) {
	t.Parallel()

	bodies := map[string]string{
		"not json":      `<html>`,
		"no content":    `{"content":[]}`,
		"no text field": `{"content":[{"type":"tool_use"}]}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			_, err := client.Complete(context.Background(), "p")
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.False(t, IsRetryable(err))
		})
	}
}

func TestAnthropicClient_TransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	config := DefaultAnthropicConfig("k")
	config.BaseURL = url
	client := NewAnthropicClient(config, nil)

	_, err := client.Complete(context.Background(), "p")
	assert.ErrorIs(t, err, ErrTransport)
	assert.True(t, IsRetryable(err))
}

func TestAnthropicClient_MissingKey(t *testing.T) {
	t.Parallel()

	client := NewAnthropicClient(AnthropicConfig{}, nil)
	_, err := client.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.False(t, IsRetryable(err))
}
