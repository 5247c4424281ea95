package generate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedClient_ReusesSuccessfulCompletions(t *testing.T) {
	t.Parallel()

	calls := 0
	next := ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "reply to " + prompt, nil
	})

	client, err := NewCachedClient(next, 16, time.Minute)
	require.NoError(t, err)
	defer client.Close()

	first, err := client.Complete(context.Background(), "a")
	require.NoError(t, err)

	// otter applies writes asynchronously; wait until the entry is visible.
	require.Eventually(t, func() bool {
		_, ok := client.cache.Get(promptKey("a"))
		return ok
	}, time.Second, 5*time.Millisecond)

	second, err := client.Complete(context.Background(), "a")
	require.NoError(t, err)

	assert.Equal(t, "reply to a", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	_, err = client.Complete(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCachedClient_DoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	next := ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "", errors.New("boom")
	})

	client, err := NewCachedClient(next, 16, 0)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Complete(context.Background(), "a")
	assert.Error(t, err)
	_, err = client.Complete(context.Background(), "a")
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestNewCachedClient_RejectsZeroSize(t *testing.T) {
	t.Parallel()

	_, err := NewCachedClient(ClientFunc(nil), 0, time.Minute)
	assert.Error(t, err)
}
