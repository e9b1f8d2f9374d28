package mock

import (
	"context"
	"sync"

	"github.com/fwojciec/warn"
)

var (
	_ warn.CacheStore = (*CacheStore)(nil)
	_ warn.CacheStore = (*MemoryCache)(nil)
)

// CacheStore is a mock implementation of warn.CacheStore.
type CacheStore struct {
	ReadFn  func(ctx context.Context, key warn.CacheKey) ([]byte, error)
	WriteFn func(ctx context.Context, key warn.CacheKey, payload []byte) error
}

func (s *CacheStore) Read(ctx context.Context, key warn.CacheKey) ([]byte, error) {
	return s.ReadFn(ctx, key)
}

func (s *CacheStore) Write(ctx context.Context, key warn.CacheKey, payload []byte) error {
	return s.WriteFn(ctx, key, payload)
}

// MemoryCache is an in-memory warn.CacheStore for tests that need real
// read-after-write behavior.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[warn.CacheKey][]byte
	Writes  int
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[warn.CacheKey][]byte)}
}

func (c *MemoryCache) Read(_ context.Context, key warn.CacheKey) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.entries[key]
	if !ok {
		return nil, warn.Errorf(warn.ENOTFOUND, "cache entry %s not found", key)
	}
	return payload, nil
}

func (c *MemoryCache) Write(_ context.Context, key warn.CacheKey, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = append([]byte(nil), payload...)
	c.Writes++
	return nil
}

// Keys returns the number of stored entries.
func (c *MemoryCache) Keys() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
