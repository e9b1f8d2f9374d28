package crawl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/warn"
	"golang.org/x/sync/singleflight"
)

// Downloader composes a cache with a fetcher: a cached artifact is served
// without touching the network, a missing one is fetched with retry,
// written, and returned. Concurrent downloads of one key share a single
// fetch.
type Downloader struct {
	Cache   warn.CacheStore
	Fetcher warn.Fetcher
	Retry   warn.RetryPolicy
	Limiter warn.DomainLimiter // applied to network fetches only; may be nil
	Logger  *slog.Logger

	group singleflight.Group
}

// Download returns the artifact stored under key, fetching url on a miss.
func (d *Downloader) Download(ctx context.Context, key warn.CacheKey, url string) (*warn.CacheEntry, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	payload, err := d.Cache.Read(ctx, key)
	if err == nil {
		d.logger().Debug("cache hit", "key", key)
		return &warn.CacheEntry{Key: key, Payload: payload, Hash: ContentHash(payload), FromCache: true}, nil
	}
	if warn.ErrorCode(err) != warn.ENOTFOUND {
		return nil, err
	}

	v, err, _ := d.group.Do(string(key), func() (any, error) {
		return d.fetch(ctx, key, url)
	})
	if err != nil {
		return nil, err
	}
	entry, _ := v.(*warn.CacheEntry)
	return entry, nil
}

func (d *Downloader) fetch(ctx context.Context, key warn.CacheKey, url string) (*warn.CacheEntry, error) {
	if err := waitURL(ctx, d.Limiter, url); err != nil {
		return nil, err
	}

	d.logger().Info("fetching", "key", key, "url", url)
	res, err := FetchWithRetry(ctx, url, d.Fetcher.Fetch, d.Retry, d.logger())
	if err != nil {
		return nil, err
	}

	if err := d.Cache.Write(ctx, key, res.Body); err != nil {
		return nil, err
	}
	return &warn.CacheEntry{Key: key, Payload: res.Body, Hash: ContentHash(res.Body)}, nil
}

func (d *Downloader) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

// ContentHash returns the hex xxhash of payload, as stored in
// warn.CacheEntry.Hash.
func ContentHash(payload []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(payload))
}
