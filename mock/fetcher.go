package mock

import (
	"context"

	"github.com/fwojciec/warn"
)

var (
	_ warn.Fetcher       = (*Fetcher)(nil)
	_ warn.DomainLimiter = (*DomainLimiter)(nil)
)

// Fetcher is a mock implementation of warn.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*warn.FetchResult, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*warn.FetchResult, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

// DomainLimiter is a mock implementation of warn.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
