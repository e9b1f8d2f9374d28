package main

import (
	"fmt"
	"log/slog"

	"github.com/fwojciec/warn"
	"github.com/fwojciec/warn/crawl"
	"github.com/fwojciec/warn/goquery"
	warnhttp "github.com/fwojciec/warn/http"
	"github.com/fwojciec/warn/pdf"
	"github.com/fwojciec/warn/reconstruct"
	"github.com/fwojciec/warn/rod"
	warnslog "github.com/fwojciec/warn/slog"
)

// NewToolkit returns a crawl.ToolkitFunc wiring the production adapters for
// a source: HTTP or headless Chrome fetching, goquery for HTML, pdf for PDF
// documents and the configured row reconstruction.
func NewToolkit(logger *slog.Logger) crawl.ToolkitFunc {
	return func(src *warn.Source) (*crawl.Toolkit, error) {
		logger := logger.With("source", src.ID)

		tk := &crawl.Toolkit{
			Limiter:        crawl.NewDomainLimiter(src.Transport.RequestsPerSecond),
			Links:          goquery.NewPageLinkFinder(src.Pagination.Container, src.Pagination.Param),
			Extractors:     make(map[warn.Kind]warn.GridExtractor),
			Reconstructors: make(map[warn.Kind]warn.RowReconstructor),
		}

		if src.Index != nil {
			index, err := goquery.NewLinkCollector(src.Index.SeedPattern)
			if err != nil {
				return nil, err
			}
			tk.Index = index
		}

		for _, kind := range []warn.Kind{warn.KindHTML, warn.KindPDF} {
			format := src.Format(kind)
			switch kind {
			case warn.KindHTML:
				tk.Extractors[kind] = goquery.NewTableExtractor(goquery.WithSelector(format.Table.Selector))
			case warn.KindPDF:
				opts := []pdf.Option{pdf.WithGapTolerance(format.Table.GapTolerance)}
				if len(format.Table.Columns) > 0 {
					opts = append(opts, pdf.WithColumns(format.Table.Columns...))
				}
				tk.Extractors[kind] = pdf.NewTableExtractor(opts...)
			}

			opts := []reconstruct.Option{reconstruct.WithLogger(logger.With("kind", kind))}
			if len(src.Header) > 0 {
				opts = append(opts, reconstruct.WithWidth(len(src.Header)))
			}
			tk.Reconstructors[kind] = reconstruct.New(format.Layout, opts...)
		}

		fetcher, err := newFetcher(src, logger)
		if err != nil {
			return nil, err
		}
		tk.Fetcher = warnslog.NewLoggingFetcher(fetcher, logger)
		return tk, nil
	}
}

func newFetcher(src *warn.Source, logger *slog.Logger) (warn.Fetcher, error) {
	t := src.Transport
	if t.Browser {
		f, err := rod.NewFetcher(
			rod.WithFetchTimeout(t.Timeout),
			rod.WithUserAgent(t.UserAgent),
			rod.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("starting browser (Chrome or Chromium must be installed): %w", err)
		}
		return f, nil
	}

	opts := []warnhttp.Option{
		warnhttp.WithTimeout(t.Timeout),
		warnhttp.WithUserAgent(t.UserAgent),
		warnhttp.WithHeaders(t.Headers),
		warnhttp.WithRetryableStatuses(t.RetryableStatuses...),
		warnhttp.WithLogger(logger),
	}
	if t.InsecureSkipVerify {
		opts = append(opts, warnhttp.WithInsecureSkipVerify())
	}
	return warnhttp.NewFetcher(opts...), nil
}
