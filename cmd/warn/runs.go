package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/warn"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	filter := warn.RunFilter{Limit: c.Limit}
	if c.Source != "" {
		filter.Source = &c.Source
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", warn.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded. Use 'warn scrape' to harvest a source.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(deps.Stdout)
	t.AppendHeader(table.Row{"Run", "Source", "Started", "Duration", "Rows", "Empty", "Malformed", "Error"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			shortID(r.ID),
			r.Source,
			r.StartedAt.Local().Format(time.DateTime),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second),
			r.Rows,
			r.EmptyPages,
			r.Malformed,
			r.Error,
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
