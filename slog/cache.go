package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/warn"
)

// Ensure LoggingCache implements warn.CacheStore.
var _ warn.CacheStore = (*LoggingCache)(nil)

// LoggingCache wraps a CacheStore with debug logging of hits, misses and
// writes.
type LoggingCache struct {
	next   warn.CacheStore
	logger *slog.Logger
}

// NewLoggingCache creates a new LoggingCache.
func NewLoggingCache(next warn.CacheStore, logger *slog.Logger) *LoggingCache {
	return &LoggingCache{next: next, logger: logger}
}

// Read delegates to the wrapped store and logs whether the key was cached.
func (c *LoggingCache) Read(ctx context.Context, key warn.CacheKey) (payload []byte, err error) {
	defer func(begin time.Time) {
		attrs := []any{"key", key, "duration", time.Since(begin)}
		switch {
		case err == nil:
			c.logger.Debug("cache hit", append(attrs, "bytes", len(payload))...)
		case warn.ErrorCode(err) == warn.ENOTFOUND:
			c.logger.Debug("cache miss", attrs...)
		default:
			c.logger.Warn("cache read failed", append(attrs, "err", err)...)
		}
	}(time.Now())
	return c.next.Read(ctx, key)
}

// Write delegates to the wrapped store and logs the stored size.
func (c *LoggingCache) Write(ctx context.Context, key warn.CacheKey, payload []byte) (err error) {
	defer func(begin time.Time) {
		c.logger.Debug("cache write",
			"key", key,
			"bytes", len(payload),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Write(ctx, key, payload)
}
