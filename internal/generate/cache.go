package generate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/maypok86/otter"
)

// DefaultCacheTTL bounds how long a cached completion is reused.
const DefaultCacheTTL = time.Hour

// CachedClient memoizes successful completions keyed by prompt hash.
// Failures are never cached.
type CachedClient struct {
	next  Client
	cache otter.Cache[string, string]
}

// NewCachedClient wraps next with a cache holding up to size completions.
func NewCachedClient(next Client, size int, ttl time.Duration) (*CachedClient, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", size)
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	cache, err := otter.MustBuilder[string, string](size).
		WithTTL(ttl).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build completion cache: %w", err)
	}

	return &CachedClient{next: next, cache: cache}, nil
}

func (c *CachedClient) Complete(ctx context.Context, prompt string) (string, error) {
	key := promptKey(prompt)
	if text, ok := c.cache.Get(key); ok {
		return text, nil
	}

	text, err := c.next.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	c.cache.Set(key, text)
	return text, nil
}

// Close releases the cache's background resources.
func (c *CachedClient) Close() {
	c.cache.Close()
}

func promptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
