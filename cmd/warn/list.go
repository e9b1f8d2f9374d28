package main

import (
	"strings"

	"github.com/fwojciec/warn"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	t := table.NewWriter()
	t.SetOutputMirror(deps.Stdout)
	t.AppendHeader(table.Row{"ID", "Name", "Documents", "Output"})
	for _, src := range deps.Sources {
		t.AppendRow(table.Row{src.ID, src.Name, documents(src), src.Output})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

// documents describes where a source's documents come from.
func documents(src *warn.Source) string {
	var parts []string
	if src.Index != nil {
		parts = append(parts, "index "+src.Index.URL)
	}
	for _, seed := range src.Seeds {
		parts = append(parts, string(seed.Kind)+" "+seed.URL)
	}
	return strings.Join(parts, "\n")
}
