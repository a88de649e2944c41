// Package contentcache bounds repeated file fetches against the provider
// API. The cache is an explicit object handed to the scanner, sized up
// front, with least-recently-used eviction.
package contentcache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"forklens/internal/metrics"
	"forklens/internal/provider"
)

// DefaultSize is the default number of cached file bodies.
const DefaultSize = 100

// Cache wraps a provider's file fetches with a bounded LRU keyed by
// repository and path. Only successful fetches are cached; errors always go
// back to the provider on the next call.
type Cache struct {
	provider provider.Provider
	entries  *lru.Cache[string, string]
}

// New creates a Cache over the given provider. A size of zero or less
// selects DefaultSize.
func New(p provider.Provider, size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating content cache: %w", err)
	}
	return &Cache{provider: p, entries: entries}, nil
}

// GetFileContent returns the file body, from cache when possible.
func (c *Cache) GetFileContent(ctx context.Context, fullName, path string) (string, error) {
	key := fullName + "/" + path
	if content, ok := c.entries.Get(key); ok {
		metrics.CacheHit()
		return content, nil
	}
	metrics.CacheMiss()

	content, err := c.provider.GetFileContent(ctx, fullName, path)
	if err != nil {
		return "", err
	}
	c.entries.Add(key, content)
	return content, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}
