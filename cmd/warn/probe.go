package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/warn"
	"github.com/fwojciec/warn/goquery"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Probe is the outcome of probing a listing page.
type Probe struct {
	URL         string
	HTTPRows    int
	BrowserRows int
	HTTPErr     error
	BrowserErr  error

	// Browser is true when the page only yields its table when rendered.
	Browser bool
}

// ProbeTransport decides whether a listing needs a headless browser.
//
// Decision flow:
//   - HTTP fetch fails → use the browser
//   - HTTP page yields rows → plain HTTP suffices
//   - otherwise render with the browser and use it if that yields more rows
//
// browser is only started when the HTTP page is inconclusive.
func ProbeTransport(
	ctx context.Context,
	url string,
	httpFetcher warn.Fetcher,
	browser func() (warn.Fetcher, error),
	extractor warn.GridExtractor,
) *Probe {
	p := &Probe{URL: url}

	p.HTTPRows, p.HTTPErr = countRows(ctx, url, httpFetcher, extractor)
	if p.HTTPErr == nil && p.HTTPRows > 0 {
		return p
	}

	rodFetcher, err := browser()
	if err != nil {
		p.BrowserErr = err
		return p
	}
	defer func() { _ = rodFetcher.Close() }()

	p.BrowserRows, p.BrowserErr = countRows(ctx, url, rodFetcher, extractor)
	p.Browser = p.BrowserErr == nil && (p.HTTPErr != nil || p.BrowserRows > p.HTTPRows)
	return p
}

func countRows(ctx context.Context, url string, fetcher warn.Fetcher, extractor warn.GridExtractor) (int, error) {
	result, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return 0, err
	}
	pages, err := extractor.Extract(ctx, result.Body)
	if err != nil {
		return 0, err
	}
	var n int
	for _, page := range pages {
		for _, t := range page.Tables {
			n += len(t.Rows)
		}
	}
	return n, nil
}

// Run executes the probe command.
func (c *ProbeCmd) Run(deps *Dependencies) error {
	sources, err := selectSources(deps.Sources, []string{c.Source})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", warn.ErrorMessage(err))
		return err
	}
	src := sources[0]

	url := probeURL(src)
	if url == "" {
		err := warn.Errorf(warn.EINVALID, "source %s has no HTML page to probe", src.ID)
		fmt.Fprintf(deps.Stderr, "error: %s\n", warn.ErrorMessage(err))
		return err
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	plain := *src
	plain.Transport.Browser = false
	httpFetcher, err := newFetcher(&plain, logger)
	if err != nil {
		return err
	}
	defer func() { _ = httpFetcher.Close() }()

	rendered := *src
	rendered.Transport.Browser = true
	browser := deps.Browser
	if browser == nil {
		browser = func() (warn.Fetcher, error) { return newFetcher(&rendered, logger) }
	}

	extractor := goquery.NewTableExtractor(goquery.WithSelector(src.Format(warn.KindHTML).Table.Selector))
	p := ProbeTransport(deps.Ctx, url, httpFetcher, browser, extractor)

	t := table.NewWriter()
	t.SetOutputMirror(deps.Stdout)
	t.SetTitle(shortenURL(p.URL, 60))
	t.AppendHeader(table.Row{"Transport", "Rows", "Error"})
	t.AppendRow(table.Row{"http", p.HTTPRows, errString(p.HTTPErr)})
	t.AppendRow(table.Row{"browser", p.BrowserRows, errString(p.BrowserErr)})
	t.SetStyle(table.StyleRounded)
	t.Render()

	fmt.Fprintf(deps.Stdout, "%s: transport.browser: %t\n", src.ID, p.Browser)
	return nil
}

// probeURL returns the first HTML page of src: its first HTML seed, else
// its index page.
func probeURL(src *warn.Source) string {
	for _, seed := range src.Seeds {
		if seed.Kind == warn.KindHTML {
			return seed.URL
		}
	}
	if src.Index != nil {
		return src.Index.URL
	}
	return ""
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return errorText(err)
}
