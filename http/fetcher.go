// Package http provides an HTTP implementation of warn.Fetcher for state
// WARN sites that serve plain HTML listings and PDF downloads.
package http

import (
	"context"
	"crypto/tls"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/fwojciec/warn"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = warn.DefaultFetchTimeout

// Ensure Fetcher implements warn.Fetcher at compile time.
var _ warn.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves documents with HTTP GET. It neither caches nor retries;
// every failure is classified as *warn.TransientError or
// *warn.PermanentError for the caller's retry policy.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	headers   http.Header
	retryable []int
	insecure  bool
	logger    *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header. Several state sites reject
// requests without a browser-like one.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.headers.Set("User-Agent", ua)
	}
}

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		for k, v := range headers {
			f.headers.Set(k, v)
		}
	}
}

// WithRetryableStatuses marks additional status codes as transient.
func WithRetryableStatuses(codes ...int) Option {
	return func(f *Fetcher) {
		f.retryable = append(f.retryable, codes...)
	}
}

// WithInsecureSkipVerify disables TLS certificate verification. This
// exposes the connection to interception and must only be enabled for the
// one source whose endpoint serves a broken certificate chain.
func WithInsecureSkipVerify() Option {
	return func(f *Fetcher) {
		f.insecure = true
	}
}

// WithLogger sets the logger used for transport warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
		headers: http.Header{},
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.New(slog.DiscardHandler)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if f.insecure {
		f.logger.Warn("TLS certificate verification disabled")
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in per source
	}
	f.client = &http.Client{
		Timeout:   f.timeout,
		Transport: transport,
	}

	return f
}

// Fetch retrieves the body at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*warn.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &warn.PermanentError{URL: url, Err: err}
	}
	req.Header = f.headers.Clone()

	resp, err := f.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &warn.TransientError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		if f.isTransient(resp.StatusCode) {
			return nil, &warn.TransientError{URL: url, StatusCode: resp.StatusCode}
		}
		return nil, &warn.PermanentError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &warn.TransientError{URL: url, Err: err}
	}

	return &warn.FetchResult{URL: url, StatusCode: resp.StatusCode, Body: body}, nil
}

func (f *Fetcher) isTransient(code int) bool {
	switch {
	case code >= 500:
		return true
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return true
	default:
		return slices.Contains(f.retryable, code)
	}
}

// Close releases idle connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
