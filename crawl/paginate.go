package crawl

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/fwojciec/warn"
)

// visitedFalsePositiveRate is the Bloom pre-check's false positive rate.
// Positives are confirmed exactly, so this only trades memory for lookups.
const visitedFalsePositiveRate = 0.01

// Paginator follows "next page" links from a seed URL and returns the full
// page chain of one document.
type Paginator struct {
	Downloader *Downloader
	Links      warn.NextLinkFinder
	MaxHops    int // default warn.DefaultMaxHops
	Logger     *slog.Logger
}

// Crawl fetches the seed page and every page reachable through next links,
// each through the cache, and returns them in ascending page order.
//
// The crawl is iterative. A next link that points back to an already
// visited URL ends the chain. A chain that still advertises a next page on
// page MaxHops fails with *warn.PaginationOverflowError. On cancellation
// the partial chain is discarded.
func (p *Paginator) Crawl(ctx context.Context, seed string, keyFn warn.PageKeyFunc) (warn.PageChain, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxHops := p.MaxHops
	if maxHops <= 0 {
		maxHops = warn.DefaultMaxHops
	}

	frontier := NewFrontier(uint(maxHops), visitedFalsePositiveRate)
	frontier.Push(Hop{Number: 1, URL: seed})

	var chain warn.PageChain
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("crawl %s: %w", seed, err)
		}
		hop, ok := frontier.Pop()
		if !ok {
			break
		}

		key := keyFn(hop.Number)
		entry, err := p.Downloader.Download(ctx, key, hop.URL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("crawl %s: %w", seed, ctxErr)
			}
			return nil, fmt.Errorf("page %d of %s: %w", hop.Number, seed, err)
		}
		logger.Debug("page", "number", hop.Number, "key", key, "bytes", len(entry.Payload), "cached", entry.FromCache)

		chain = append(chain, &warn.Page{
			Number: hop.Number,
			URL:    hop.URL,
			Key:    key,
			Body:   entry.Payload,
		})

		next, ok, err := p.Links.NextURL(entry.Payload, hop.URL, hop.Number)
		if err != nil {
			return nil, fmt.Errorf("page %d of %s: %w", hop.Number, seed, err)
		}
		if !ok {
			continue
		}
		if frontier.Seen(next) {
			logger.Warn("pagination cycle", "page", hop.Number, "next", next)
			continue
		}
		if hop.Number >= maxHops {
			return nil, &warn.PaginationOverflowError{Seed: seed, MaxHops: maxHops, NextURL: next}
		}
		frontier.Push(Hop{Number: hop.Number + 1, URL: next})
	}

	slices.SortFunc(chain, func(a, b *warn.Page) int {
		return cmp.Compare(a.Number, b.Number)
	})
	logger.Debug("chain complete", "seed", seed, "pages", len(chain), "visited", frontier.Visited())
	return chain, nil
}
