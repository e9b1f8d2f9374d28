// Package pdf extracts table grids from PDF documents using
// github.com/ledongthuc/pdf.
//
// Text is grouped into rows by baseline and split into cells either at
// configured column boundaries or at horizontal gaps. This is a grid
// primitive, not layout analysis: wrapped cell text yields extra rows for
// the reconstructor to repair.
package pdf

import (
	"bytes"
	"cmp"
	"context"
	"math"
	"slices"
	"strings"

	"github.com/fwojciec/warn"
	"github.com/ledongthuc/pdf"
)

// Defaults for grouping text into rows and cells, in points.
const (
	DefaultGapTolerance = 8.0
	DefaultRowTolerance = 2.0
)

// Ensure TableExtractor implements warn.GridExtractor at compile time.
var _ warn.GridExtractor = (*TableExtractor)(nil)

// TableExtractor reads one grid per PDF page.
type TableExtractor struct {
	columns      []float64
	gapTolerance float64
	rowTolerance float64
}

// Option configures a TableExtractor.
type Option func(*TableExtractor)

// WithColumns splits cells at the given left x-coordinates. Text left of
// the first boundary belongs to the first column.
func WithColumns(xs ...float64) Option {
	return func(e *TableExtractor) {
		e.columns = slices.Sorted(slices.Values(xs))
	}
}

// WithGapTolerance sets the horizontal gap that separates two cells when
// no columns are configured.
func WithGapTolerance(points float64) Option {
	return func(e *TableExtractor) {
		if points > 0 {
			e.gapTolerance = points
		}
	}
}

// WithRowTolerance sets how far apart two baselines may be and still form
// one row.
func WithRowTolerance(points float64) Option {
	return func(e *TableExtractor) {
		if points > 0 {
			e.rowTolerance = points
		}
	}
}

// NewTableExtractor creates a TableExtractor.
func NewTableExtractor(opts ...Option) *TableExtractor {
	e := &TableExtractor{
		gapTolerance: DefaultGapTolerance,
		rowTolerance: DefaultRowTolerance,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns one PageGrid per page of the PDF in body. Pages without
// text yield a PageGrid with no tables.
func (e *TableExtractor) Extract(ctx context.Context, body []byte) (pages []warn.PageGrid, err error) {
	// The reader panics on malformed documents.
	defer func() {
		if p := recover(); p != nil {
			pages = nil
			err = warn.Errorf(warn.EINVALID, "failed to read PDF: %v", p)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, warn.Errorf(warn.EINVALID, "failed to open PDF: %v", err)
	}

	texts := make([][]pdf.Text, r.NumPage())
	for n := 1; n <= r.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if page := r.Page(n); !page.V.IsNull() {
			texts[n-1] = page.Content().Text
		}
	}
	return e.Grids(texts), nil
}

// Grids builds one PageGrid per page from the positioned text runs of a
// document, first page first.
//
// Without configured columns, cells are split at gaps and then lined up
// against the cell starts of the document's widest row, so a row with
// empty columns keeps absent cells in their place.
func (e *TableExtractor) Grids(texts [][]pdf.Text) []warn.PageGrid {
	lines := make([][][]glyph, len(texts))
	var anchors []float64
	for i, page := range texts {
		lines[i] = groupRows(glyphsOf(page), e.rowTolerance)
		if len(e.columns) > 0 {
			continue
		}
		for _, line := range lines[i] {
			if spans := splitGaps(line, e.gapTolerance); len(spans) > len(anchors) {
				anchors = starts(spans)
			}
		}
	}

	pages := make([]warn.PageGrid, len(texts))
	for i := range texts {
		pages[i] = warn.PageGrid{Page: i + 1}
		var rows [][]warn.Cell
		for _, line := range lines[i] {
			var cells []warn.Cell
			if len(e.columns) > 0 {
				cells = splitColumns(line, e.columns)
			} else {
				cells = alignSpans(splitGaps(line, e.gapTolerance), anchors, e.gapTolerance)
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		}
		if len(rows) > 0 {
			pages[i].Tables = []warn.Grid{{Rows: rows}}
		}
	}
	return pages
}

func glyphsOf(texts []pdf.Text) []glyph {
	glyphs := make([]glyph, 0, len(texts))
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		glyphs = append(glyphs, glyph{x: t.X, y: t.Y, w: t.W, size: t.FontSize, s: t.S})
	}
	return glyphs
}

// glyph is one positioned text run.
type glyph struct {
	x, y, w, size float64
	s             string
}

func (g glyph) right() float64 { return g.x + g.w }

// groupRows clusters glyphs whose baselines lie within tol of each other,
// top of the page first, each row ordered left to right.
func groupRows(glyphs []glyph, tol float64) [][]glyph {
	sorted := slices.Clone(glyphs)
	slices.SortStableFunc(sorted, func(a, b glyph) int {
		return cmp.Compare(b.y, a.y)
	})

	var rows [][]glyph
	for _, g := range sorted {
		if n := len(rows); n > 0 && math.Abs(rows[n-1][0].y-g.y) <= tol {
			rows[n-1] = append(rows[n-1], g)
			continue
		}
		rows = append(rows, []glyph{g})
	}
	for _, row := range rows {
		slices.SortStableFunc(row, func(a, b glyph) int {
			return cmp.Compare(a.x, b.x)
		})
	}
	return rows
}

// span is the text of one gap-separated cell and its left edge.
type span struct {
	x    float64
	text string
}

// splitGaps starts a new cell wherever the gap to the previous glyph
// exceeds tol.
func splitGaps(row []glyph, tol float64) []span {
	var spans []span
	var b strings.Builder
	var prev *glyph
	left := 0.0
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			spans = append(spans, span{x: left, text: s})
		}
		b.Reset()
	}
	for i := range row {
		g := &row[i]
		if prev != nil && g.x-prev.right() > tol {
			flush()
			prev = nil
		}
		if prev == nil {
			left = g.x
		}
		writeGlyph(&b, prev, g)
		prev = g
	}
	flush()
	return spans
}

func starts(spans []span) []float64 {
	xs := make([]float64, len(spans))
	for i, s := range spans {
		xs[i] = s.x
	}
	return xs
}

// alignSpans places each span in the column of the last anchor at or left
// of its start, allowing tol points of drift. Columns without a span are
// absent. A row that puts two spans in one column cannot be placed and is
// returned compacted.
func alignSpans(spans []span, anchors []float64, tol float64) []warn.Cell {
	if len(spans) == 0 {
		return nil
	}
	cells := make([]warn.Cell, len(anchors))
	for _, s := range spans {
		col := max(0, columnOf(anchors, s.x+tol))
		if cells[col].Present {
			return compact(spans)
		}
		cells[col] = warn.Text(s.text)
	}
	return cells
}

func compact(spans []span) []warn.Cell {
	cells := make([]warn.Cell, len(spans))
	for i, s := range spans {
		cells[i] = warn.Text(s.text)
	}
	return cells
}

// splitColumns assigns each glyph to the column whose boundary precedes
// it. Columns without text are absent cells.
func splitColumns(row []glyph, columns []float64) []warn.Cell {
	texts := make([]strings.Builder, len(columns))
	prevs := make([]*glyph, len(columns))
	for i := range row {
		g := &row[i]
		col := max(0, columnOf(columns, g.x))
		writeGlyph(&texts[col], prevs[col], g)
		prevs[col] = g
	}

	cells := make([]warn.Cell, len(columns))
	for i := range texts {
		if s := strings.TrimSpace(texts[i].String()); s != "" {
			cells[i] = warn.Text(s)
		}
	}
	for i := range cells {
		if cells[i].Present {
			return cells
		}
	}
	return nil
}

// columnOf returns the index of the last boundary at or left of x, or -1.
func columnOf(columns []float64, x float64) int {
	i, found := slices.BinarySearch(columns, x)
	if found {
		return i
	}
	return i - 1
}

// writeGlyph appends g, inserting a space when it sits visibly apart from
// the previous glyph of the same cell.
func writeGlyph(b *strings.Builder, prev, g *glyph) {
	if prev != nil && g.x-prev.right() > wordGap(g) && !strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(g.s, " ") {
		b.WriteByte(' ')
	}
	b.WriteString(g.s)
}

func wordGap(g *glyph) float64 {
	if g.size <= 0 {
		return 1
	}
	return g.size * 0.2
}
