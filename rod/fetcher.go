// Package rod provides a headless Chrome implementation of warn.Fetcher for
// sources whose listings only render with JavaScript.
package rod

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/fwojciec/warn"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements warn.Fetcher at compile time.
var _ warn.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager   *BrowserManager
	timeout   time.Duration
	userAgent string
	maxPages  int64
	logger    *slog.Logger
	closed    atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout bounds each navigation. Defaults to warn.DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the browser's User-Agent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithRecycleAfter recycles the browser after n pages.
func WithRecycleAfter(n int64) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// WithLogger sets the logger for browser lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher launches a headless Chrome browser. Close must be called when
// the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:  warn.DefaultFetchTimeout,
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager(WithMaxPages(f.maxPages), WithManagerLogger(f.logger))
	if err != nil {
		return nil, err
	}
	f.manager = manager
	return f, nil
}

// Fetch navigates to url and returns the rendered HTML. The document's
// HTTP status is classified like a plain HTTP fetch.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*warn.FetchResult, error) {
	if f.closed.Load() {
		return nil, warn.Errorf(warn.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pageCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		pageCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, f.classify(ctx, url, err)
	}
	defer func() { _ = page.Close() }()
	defer f.manager.IncrementPageCount()

	page = page.Context(pageCtx)
	if f.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
			return nil, f.classify(ctx, url, err)
		}
	}

	var resp proto.NetworkResponseReceived
	waitResponse := page.WaitEvent(&resp)

	if err := page.Navigate(url); err != nil {
		return nil, f.classify(ctx, url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, f.classify(ctx, url, err)
	}
	waitResponse()

	status := http.StatusOK
	if resp.Response != nil && resp.Response.Status > 0 {
		status = resp.Response.Status
	}
	if status >= 500 || status == http.StatusRequestTimeout || status == http.StatusTooManyRequests {
		return nil, &warn.TransientError{URL: url, StatusCode: status}
	}
	if status < 200 || status > 299 {
		return nil, &warn.PermanentError{URL: url, StatusCode: status}
	}

	html, err := page.HTML()
	if err != nil {
		return nil, f.classify(ctx, url, err)
	}
	return &warn.FetchResult{URL: url, StatusCode: status, Body: []byte(html)}, nil
}

// classify reports the caller's cancellation as is and every browser
// failure, including the per-page timeout, as transient.
func (f *Fetcher) classify(ctx context.Context, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return &warn.TransientError{URL: url, Err: err}
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
