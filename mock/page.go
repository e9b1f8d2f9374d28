package mock

import (
	"context"

	"github.com/fwojciec/warn"
)

// Compile-time interface verification.
var (
	_ warn.NextLinkFinder = (*NextLinkFinder)(nil)
	_ warn.LinkCollector  = (*LinkCollector)(nil)
	_ warn.GridExtractor  = (*GridExtractor)(nil)
)

// NextLinkFinder is a mock implementation of warn.NextLinkFinder.
type NextLinkFinder struct {
	NextURLFn func(body []byte, pageURL string, number int) (string, bool, error)
}

func (f *NextLinkFinder) NextURL(body []byte, pageURL string, number int) (string, bool, error) {
	return f.NextURLFn(body, pageURL, number)
}

// LinkCollector is a mock implementation of warn.LinkCollector.
type LinkCollector struct {
	CollectLinksFn func(body []byte, pageURL string) ([]string, error)
}

func (c *LinkCollector) CollectLinks(body []byte, pageURL string) ([]string, error) {
	return c.CollectLinksFn(body, pageURL)
}

// GridExtractor is a mock implementation of warn.GridExtractor.
type GridExtractor struct {
	ExtractFn func(ctx context.Context, body []byte) ([]warn.PageGrid, error)
}

func (e *GridExtractor) Extract(ctx context.Context, body []byte) ([]warn.PageGrid, error) {
	return e.ExtractFn(ctx, body)
}
