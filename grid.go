package warn

import (
	"context"
	"strings"
)

// Cell is one table cell. Absent cells (the extractor found no cell at that
// position) are distinct from present but empty ones, though both count as
// blank.
type Cell struct {
	Value   string
	Present bool
}

// Text returns a present cell holding s.
func Text(s string) Cell { return Cell{Value: s, Present: true} }

// Null returns an absent cell.
func Null() Cell { return Cell{} }

// Blank reports whether the cell has no visible content.
func (c Cell) Blank() bool {
	return !c.Present || strings.TrimSpace(c.Value) == ""
}

// Cells builds a row from strings; "" stays a present, empty cell.
func Cells(values ...string) []Cell {
	row := make([]Cell, len(values))
	for i, v := range values {
		row[i] = Text(v)
	}
	return row
}

// Grid is one detected table. Rows may be partial or skewed relative to the
// target schema.
type Grid struct {
	Header []string // column labels when the source marks them, e.g. <thead>
	Rows   [][]Cell
}

// PageGrid holds the tables detected on one physical page.
type PageGrid struct {
	Page   int
	Tables []Grid
}

// Empty reports whether the page yielded no rows at all.
func (p PageGrid) Empty() bool {
	for _, t := range p.Tables {
		if len(t.Rows) > 0 {
			return false
		}
	}
	return true
}

// GridExtractor turns a fetched document into per-page cell grids.
// An HTML body yields one PageGrid; a PDF yields one per PDF page.
type GridExtractor interface {
	Extract(ctx context.Context, body []byte) ([]PageGrid, error)
}
