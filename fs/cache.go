package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/warn"
)

// Ensure Cache implements warn.CacheStore at compile time.
var _ warn.CacheStore = (*Cache)(nil)

// Cache stores artifacts as files under a root directory, one
// subdirectory per source: key "fl/2020_page_3" lives at
// <root>/fl/2020_page_3.
type Cache struct {
	root string
}

// NewCache creates a Cache rooted at dir.
func NewCache(dir string) *Cache {
	return &Cache{root: dir}
}

// Path returns the local file path of key.
func (c *Cache) Path(key warn.CacheKey) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}
	return filepath.Join(c.root, filepath.FromSlash(string(key))), nil
}

// Read returns the payload stored under key.
func (c *Cache) Read(_ context.Context, key warn.CacheKey) ([]byte, error) {
	path, err := c.Path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, warn.Errorf(warn.ENOTFOUND, "cache entry %s not found", key)
	}
	return data, err
}

// Write stores payload under key. Rewriting an identical payload leaves the
// file untouched.
func (c *Cache) Write(_ context.Context, key warn.CacheKey, payload []byte) error {
	path, err := c.Path(key)
	if err != nil {
		return err
	}
	if existing, err := os.ReadFile(path); err == nil && xxhash.Sum64(existing) == xxhash.Sum64(payload) {
		return nil
	}
	return writeAtomic(path, payload)
}
