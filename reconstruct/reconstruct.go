// Package reconstruct rebuilds one logical row per WARN notice from the
// per-page cell grids of a document.
//
// Extracted grids are well formed as rasters but not as tables: a notice
// split by a page break shows up as the last row of one page plus a partial
// first row on the next, blank-cell detection adds spurious columns, and
// the column header is repeated wherever the document was paginated. The
// Reconstructor repairs all three using per-source configuration
// (warn.Layout), so the same code serves every source.
package reconstruct

import (
	"log/slog"
	"strings"

	"github.com/fwojciec/warn"
)

// Ensure Reconstructor implements warn.RowReconstructor at compile time.
var _ warn.RowReconstructor = (*Reconstructor)(nil)

// Reconstructor implements warn.RowReconstructor. It holds configuration
// only; all per-document state lives in the Reconstruct call, so one
// Reconstructor may be reused and shared between goroutines.
type Reconstructor struct {
	layout warn.Layout
	width  int
	logger *slog.Logger
}

// Option configures a Reconstructor.
type Option func(*Reconstructor)

// WithWidth sets the target schema width. Grid rows that do not fit it are
// reported as malformed (or padded, when blanks are not elided).
// Zero falls back to the width of the first captured table header, and
// disables the check when the grids carry no header.
func WithWidth(n int) Option {
	return func(r *Reconstructor) {
		r.width = n
	}
}

// WithLogger sets the logger used for anomalies.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconstructor) {
		r.logger = logger
	}
}

// New creates a Reconstructor for the given layout.
func New(layout warn.Layout, opts ...Option) *Reconstructor {
	r := &Reconstructor{layout: layout}
	if r.layout.Mode == "" {
		r.layout.Mode = warn.LayoutGrid
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r
}

// Reconstruct processes pages in order and returns the logical rows.
func (r *Reconstructor) Reconstruct(pages []warn.PageGrid) (*warn.Reconstruction, error) {
	if err := r.layout.Validate(); err != nil {
		return nil, err
	}
	switch r.layout.Mode {
	case warn.LayoutLabels:
		return r.reconstructLabels(pages), nil
	default:
		return r.reconstructGrid(pages), nil
	}
}

// emptyPage records a page without tables.
func (r *Reconstructor) emptyPage(out *warn.Reconstruction, page int) {
	r.logger.Warn("empty page", "page", page)
	out.EmptyPages = append(out.EmptyPages, warn.EmptyPageWarning{Page: page})
}

// malformed records a discarded row.
func (r *Reconstructor) malformed(out *warn.Reconstruction, page, row int, cells []warn.Cell, reason string) {
	w := warn.MalformedRowWarning{Page: page, Row: row, Cells: values(cells), Reason: reason}
	r.logger.Warn("malformed row", "page", page, "row", row, "reason", reason)
	out.MalformedRows = append(out.MalformedRows, w)
}

// isHeader reports whether the row is a repeated column header.
func (r *Reconstructor) isHeader(row []warn.Cell) bool {
	col := r.layout.HeaderColumn
	if col >= len(row) || !row[col].Present {
		return false
	}
	for _, label := range r.layout.HeaderLabels {
		if row[col].Value == label {
			return true
		}
	}
	return false
}

// normalize returns a trimmed copy of the row.
func normalize(row []warn.Cell) []warn.Cell {
	out := make([]warn.Cell, len(row))
	for i, c := range row {
		out[i] = warn.Cell{Value: strings.TrimSpace(c.Value), Present: c.Present}
	}
	return out
}

func allBlank(row []warn.Cell) bool {
	for _, c := range row {
		if !c.Blank() {
			return false
		}
	}
	return true
}

// cellAt returns the cell at idx, or an absent cell past the end of the row.
func cellAt(row []warn.Cell, idx int) warn.Cell {
	if idx < len(row) {
		return row[idx]
	}
	return warn.Null()
}

func values(row []warn.Cell) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = c.Value
	}
	return out
}
