// Package crawl orchestrates WARN notice harvests: seed discovery, cached
// fetching with retry, pagination, grid extraction and row reconstruction,
// ending in a single write of the source's CSV.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/fwojciec/warn"
	"github.com/google/uuid"
)

// Toolkit holds the per-source collaborators of a harvest.
type Toolkit struct {
	Fetcher        warn.Fetcher
	Limiter        warn.DomainLimiter
	Links          warn.NextLinkFinder
	Index          warn.LinkCollector // required when the source has an index
	Extractors     map[warn.Kind]warn.GridExtractor
	Reconstructors map[warn.Kind]warn.RowReconstructor
}

// ToolkitFunc builds the collaborators for a source.
type ToolkitFunc func(src *warn.Source) (*Toolkit, error)

// Harvester runs complete harvests of configured sources.
type Harvester struct {
	Cache   warn.CacheStore
	Toolkit ToolkitFunc
	Writer  warn.RowWriter
	Runs    warn.RunService // optional run ledger
	OutDir  string
	Logger  *slog.Logger
}

// document is one resolved seed of a source.
type document struct {
	seed warn.Seed
	id   string // cache sub-identifier
}

// harvest accumulates the output of one source across its documents.
type harvest struct {
	report *warn.Report
	header []string
	rows   []pendingRow
}

// pendingRow is a reconstructed row waiting for the source header. Rows of
// a layout that elides blanks are strict: their cells have shifted left, so
// padding them would misalign every field after the gap.
type pendingRow struct {
	cells  warn.LogicalRow
	strict bool
}

// Harvest fetches every document of src, rebuilds its rows and writes them
// to the source's CSV file in one call. Nothing is written if the harvest
// fails or src.Timeout expires.
func (h *Harvester) Harvest(ctx context.Context, src *warn.Source) (*warn.Report, error) {
	started := time.Now()
	runID := uuid.NewString()
	logger := h.logger().With("source", src.ID, "run", runID)

	report, err := h.harvest(ctx, src, runID, logger)
	if report == nil {
		report = &warn.Report{RunID: runID, Source: src.ID}
	}
	report.Elapsed = time.Since(started)

	if err != nil {
		logger.Error("harvest failed", "error", err, "elapsed", report.Elapsed)
	} else {
		logger.Info("harvest complete", "rows", report.Rows, "pages", report.Pages, "empty_pages", report.EmptyPages, "malformed", report.MalformedRows, "elapsed", report.Elapsed)
	}
	h.recordRun(ctx, report, started, err, logger)
	return report, err
}

func (h *Harvester) harvest(ctx context.Context, src *warn.Source, runID string, logger *slog.Logger) (*warn.Report, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if src.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, src.Timeout)
		defer cancel()
	}

	tk, err := h.Toolkit(src)
	if err != nil {
		return nil, fmt.Errorf("toolkit for %s: %w", src.ID, err)
	}
	defer func() { _ = tk.Fetcher.Close() }()

	dl := &Downloader{
		Cache:   h.Cache,
		Fetcher: tk.Fetcher,
		Retry:   src.Retry,
		Limiter: tk.Limiter,
		Logger:  logger,
	}

	docs, err := h.resolve(ctx, src, tk, dl)
	if err != nil {
		return nil, deadline(ctx, src, err)
	}

	out := &harvest{report: &warn.Report{
		RunID:  runID,
		Source: src.ID,
		Path:   filepath.Join(h.OutDir, src.Output),
	}}
	for _, doc := range docs {
		if err := h.document(ctx, src, tk, dl, doc, out, logger); err != nil {
			return out.report, deadline(ctx, src, err)
		}
	}

	header := src.Header
	if len(header) == 0 {
		header = out.header
	}
	if len(header) == 0 {
		return out.report, warn.Errorf(warn.EINVALID, "source %s: no header configured and none found in its documents", src.ID)
	}

	table := make([][]string, 0, len(out.rows)+1)
	table = append(table, header)
	for i, row := range out.rows {
		fitted, ok := fit(row, len(header))
		if !ok {
			logger.Warn("row does not match header", "row", i, "cells", len(row.cells), "header", len(header))
			out.report.MalformedRows++
			continue
		}
		table = append(table, fitted)
	}

	if err := ctx.Err(); err != nil {
		return out.report, deadline(ctx, src, err)
	}
	if err := h.Writer.WriteRows(out.report.Path, table); err != nil {
		return out.report, err
	}
	out.report.Rows = len(table) - 1
	return out.report, nil
}

// resolve returns the documents of src: its configured seeds followed by
// those discovered on its index page, without duplicates.
func (h *Harvester) resolve(ctx context.Context, src *warn.Source, tk *Toolkit, dl *Downloader) ([]document, error) {
	seeds := append([]warn.Seed(nil), src.Seeds...)

	if src.Index != nil {
		if tk.Index == nil {
			return nil, warn.Errorf(warn.EINVALID, "source %s has an index but no link collector", src.ID)
		}
		entry, err := dl.Download(ctx, warn.NewCacheKey(src.ID, "index"), src.Index.URL)
		if err != nil {
			return nil, fmt.Errorf("index of %s: %w", src.ID, err)
		}
		links, err := tk.Index.CollectLinks(entry.Payload, src.Index.URL)
		if err != nil {
			return nil, fmt.Errorf("index of %s: %w", src.ID, err)
		}
		var pdf *regexp.Regexp
		if src.Index.PDFPattern != "" {
			pdf = regexp.MustCompile(src.Index.PDFPattern)
		}
		for _, link := range links {
			kind := warn.KindHTML
			if pdf != nil && pdf.MatchString(link) {
				kind = warn.KindPDF
			}
			seeds = append(seeds, warn.Seed{URL: link, Kind: kind})
		}
	}

	var keyPattern *regexp.Regexp
	if src.KeyPattern != "" {
		keyPattern = regexp.MustCompile(src.KeyPattern)
	}

	seen := make(map[string]bool, len(seeds))
	docs := make([]document, 0, len(seeds))
	for i, seed := range seeds {
		if seen[seed.URL] {
			continue
		}
		seen[seed.URL] = true
		if seed.Kind == "" {
			seed.Kind = warn.KindHTML
		}
		docs = append(docs, document{seed: seed, id: documentID(seed, keyPattern, i)})
	}
	return docs, nil
}

// documentID derives the cache sub-identifier of a seed: its explicit key,
// else the key pattern's first capture, else its position.
func documentID(seed warn.Seed, keyPattern *regexp.Regexp, pos int) string {
	if seed.Key != "" {
		return seed.Key
	}
	if keyPattern != nil {
		if m := keyPattern.FindStringSubmatch(seed.URL); len(m) > 1 && m[1] != "" {
			return m[1]
		}
	}
	return strconv.Itoa(pos + 1)
}

// document harvests one seed and appends its rows to out. Continuation
// state never crosses documents.
func (h *Harvester) document(ctx context.Context, src *warn.Source, tk *Toolkit, dl *Downloader, doc document, out *harvest, logger *slog.Logger) error {
	extractor := tk.Extractors[doc.seed.Kind]
	reconstructor := tk.Reconstructors[doc.seed.Kind]
	if extractor == nil || reconstructor == nil {
		return warn.Errorf(warn.EINVALID, "source %s cannot read %s documents", src.ID, doc.seed.Kind)
	}
	logger = logger.With("document", doc.id, "kind", doc.seed.Kind)

	var (
		grids  []warn.PageGrid
		failed = map[int]error{}
	)
	switch doc.seed.Kind {
	case warn.KindPDF:
		entry, err := dl.Download(ctx, warn.NewCacheKey(src.ID, doc.id).WithExt(".pdf"), doc.seed.URL)
		if err != nil {
			return fmt.Errorf("document %s: %w", doc.id, err)
		}
		out.report.Bytes += len(entry.Payload)
		grids, err = extractor.Extract(ctx, entry.Payload)
		if err != nil {
			logger.Warn("extraction failed", "error", err)
			grids = []warn.PageGrid{{Page: 1}}
			failed[1] = err
		}
	default:
		pager := &Paginator{
			Downloader: dl,
			Links:      tk.Links,
			MaxHops:    src.Pagination.MaxHops,
			Logger:     logger,
		}
		chain, err := pager.Crawl(ctx, doc.seed.URL, func(n int) warn.CacheKey {
			return warn.NewCacheKey(src.ID, doc.id, "page", strconv.Itoa(n))
		})
		if err != nil {
			return fmt.Errorf("document %s: %w", doc.id, err)
		}
		for _, page := range chain {
			out.report.Bytes += len(page.Body)
			pageGrids, err := extractor.Extract(ctx, page.Body)
			if err != nil {
				logger.Warn("extraction failed", "page", page.Number, "error", err)
				failed[page.Number] = err
				pageGrids = nil
			}
			tables := make([]warn.Grid, 0, 1)
			for _, pg := range pageGrids {
				tables = append(tables, pg.Tables...)
			}
			grids = append(grids, warn.PageGrid{Page: page.Number, Tables: tables})
		}
	}

	rec, err := reconstructor.Reconstruct(grids)
	if err != nil {
		return fmt.Errorf("document %s: %w", doc.id, err)
	}
	for i, w := range rec.EmptyPages {
		if err, ok := failed[w.Page]; ok {
			rec.EmptyPages[i].Err = err
		}
	}

	if out.header == nil && len(rec.Header) > 0 {
		out.header = rec.Header
	}
	strict := src.Format(doc.seed.Kind).Layout.ElideBlanks
	for _, row := range rec.Rows {
		out.rows = append(out.rows, pendingRow{cells: row, strict: strict})
	}
	out.report.Documents++
	out.report.Pages += len(grids)
	out.report.HeaderRows += rec.HeaderRows
	out.report.Continuations += rec.Continuations
	out.report.EmptyPages += len(rec.EmptyPages)
	out.report.MalformedRows += len(rec.MalformedRows)
	logger.Debug("document reconstructed", "pages", len(grids), "rows", len(rec.Rows))
	return nil
}

// fit pads row to width. Rows wider than width do not fit, and neither do
// short strict rows.
func fit(row pendingRow, width int) ([]string, bool) {
	if len(row.cells) > width || (row.strict && len(row.cells) < width) {
		return nil, false
	}
	out := make([]string, width)
	copy(out, row.cells)
	return out, true
}

// deadline converts an expired source timeout into an ETIMEOUT error.
func deadline(ctx context.Context, src *warn.Source, err error) error {
	if src.Timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return warn.Errorf(warn.ETIMEOUT, "source %s did not finish within %s", src.ID, src.Timeout)
	}
	return err
}

func (h *Harvester) recordRun(ctx context.Context, report *warn.Report, started time.Time, err error, logger *slog.Logger) {
	if h.Runs == nil {
		return
	}
	run := &warn.Run{
		ID:         report.RunID,
		Source:     report.Source,
		StartedAt:  started,
		FinishedAt: started.Add(report.Elapsed),
		Rows:       report.Rows,
		EmptyPages: report.EmptyPages,
		Malformed:  report.MalformedRows,
	}
	if err != nil {
		run.Error = err.Error()
	}
	if err := h.Runs.CreateRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("recording run failed", "error", err)
	}
}

func (h *Harvester) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return h.Logger
}
