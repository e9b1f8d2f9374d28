// Package slog provides logging decorators for warn interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/warn"
)

// Ensure LoggingFetcher implements warn.Fetcher.
var _ warn.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with request logging.
type LoggingFetcher struct {
	next   warn.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next warn.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (result *warn.FetchResult, err error) {
	defer func(begin time.Time) {
		var n, status int
		if result != nil {
			n, status = len(result.Body), result.StatusCode
		}
		f.logger.Info("fetch",
			"url", url,
			"status", status,
			"bytes", n,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
