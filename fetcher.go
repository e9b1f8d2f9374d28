package warn

import "context"

// FetchResult is the outcome of a single successful GET.
type FetchResult struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Fetcher retrieves a document over the network.
// Fetchers perform no caching and no retries; failures are classified as
// *TransientError or *PermanentError so a caller can apply retry policy.
type Fetcher interface {
	// Fetch issues a GET for url. The context controls timeout and
	// cancellation.
	Fetch(ctx context.Context, url string) (*FetchResult, error)

	// Close releases resources held by the fetcher.
	Close() error
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
