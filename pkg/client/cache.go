package client

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultCacheTTL is how long memoized results stay fresh.
const DefaultCacheTTL = 5 * time.Minute

// Cache memoizes fetch results per key for a fixed TTL.
type Cache struct {
	store *cache.Cache
}

// NewCache creates a cache; ttl <= 0 means DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{store: cache.New(ttl, 2*ttl)}
}

// Invalidate drops key so the next Memo call fetches again.
func (c *Cache) Invalidate(key string) {
	c.store.Delete(key)
}

// Flush drops every entry.
func (c *Cache) Flush() {
	c.store.Flush()
}

// Memo returns the cached value for key or calls fetch and caches its result.
// Errors are never cached.
func Memo[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return fetch(ctx)
	}
	if v, found := c.store.Get(key); found {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	data, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.store.Set(key, data, cache.DefaultExpiration)
	return data, nil
}
