package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fwojciec/warn"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/sync/errgroup"
)

// Run executes the scrape command. A failing source never stops the others;
// the command fails if any source did.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	sources, err := selectSources(deps.Sources, c.Sources)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", warn.ErrorMessage(err))
		return err
	}
	if err := os.MkdirAll(c.Out, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	reports := make([]*warn.Report, len(sources))
	errs := make([]error, len(sources))

	var g errgroup.Group
	g.SetLimit(max(1, c.Concurrency))
	for i, src := range sources {
		g.Go(func() error {
			reports[i], errs[i] = deps.Harvester.Harvest(deps.Ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	t := table.NewWriter()
	t.SetOutputMirror(deps.Stdout)
	t.AppendHeader(table.Row{"Source", "Rows", "Docs", "Pages", "Fetched", "Empty", "Malformed", "Elapsed", "Result"})
	var failed int
	for i, src := range sources {
		r := reports[i]
		result := r.Path
		if errs[i] != nil {
			failed++
			result = "FAILED: " + errorText(errs[i])
		}
		t.AppendRow(table.Row{src.ID, r.Rows, r.Documents, r.Pages, byteSize(r.Bytes), r.EmptyPages, r.MalformedRows, r.Elapsed.Round(time.Millisecond), result})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed", failed, len(sources))
	}
	return nil
}

// selectSources returns the sources named by ids, or all of them.
func selectSources(all []*warn.Source, ids []string) ([]*warn.Source, error) {
	if len(ids) == 0 {
		return all, nil
	}
	byID := make(map[string]*warn.Source, len(all))
	for _, src := range all {
		byID[src.ID] = src
	}
	selected := make([]*warn.Source, 0, len(ids))
	for _, id := range ids {
		src, ok := byID[id]
		if !ok {
			return nil, warn.Errorf(warn.ENOTFOUND, "unknown source %q", id)
		}
		selected = append(selected, src)
	}
	return selected, nil
}

func errorText(err error) string {
	if code := warn.ErrorCode(err); code != warn.EINTERNAL {
		return warn.ErrorMessage(err)
	}
	return err.Error()
}
