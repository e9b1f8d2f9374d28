package reconstruct

import (
	"fmt"
	"strings"

	"github.com/fwojciec/warn"
)

// rowState is the state of the grid row machine between rows.
type rowState int

const (
	// stateNormal: no row is open, or the open row was started on the
	// current page and will be closed by the next record.
	stateNormal rowState = iota

	// stateContinuing: the last row of a previous page is still open and
	// the first row of the next page may extend it.
	stateContinuing
)

// gridState is the per-call accumulator for grid reconstruction.
type gridState struct {
	state  rowState
	open   []warn.Cell
	openAt [2]int // page, row of the open row's head
}

func (r *Reconstructor) reconstructGrid(pages []warn.PageGrid) *warn.Reconstruction {
	out := &warn.Reconstruction{}
	st := &gridState{}

	for _, pg := range pages {
		if pg.Empty() {
			r.emptyPage(out, pg.Page)
			continue
		}

		// Only the first surviving row of a page may be a continuation.
		leading := true
		for _, table := range pg.Tables {
			if out.Header == nil && len(table.Header) > 0 {
				out.Header = append([]string(nil), table.Header...)
			}
			for i, raw := range table.Rows {
				row := normalize(raw)

				if r.isHeader(row) {
					out.HeaderRows++
					continue
				}
				if allBlank(row) {
					out.BlankRows++
					continue
				}

				first := leading
				leading = false

				if first && st.state == stateContinuing && r.continues(row, st.open) {
					st.open = merge(st.open, r.deskew(row), r.layout.Continuation.Join())
					out.Continuations++
					r.logger.Debug("continuation merged", "page", pg.Page, "into_page", st.openAt[0], "into_row", st.openAt[1])
					continue
				}

				r.closeRow(out, st)
				st.open = row
				st.openAt = [2]int{pg.Page, i}
			}
		}

		if st.open != nil {
			st.state = stateContinuing
		}
	}

	r.closeRow(out, st)
	return out
}

// deskew drops the configured spurious columns from a continuation fragment
// wider than the skew rule's width. Rows that start a record are left alone
// so that a wide row reaches shape intact and is reported if it does not fit.
func (r *Reconstructor) deskew(row []warn.Cell) []warn.Cell {
	rule := r.layout.Skew
	if rule == nil || len(row) <= rule.Width {
		return row
	}
	drop := make(map[int]bool, len(rule.Drop))
	for _, idx := range rule.Drop {
		drop[idx] = true
	}
	out := make([]warn.Cell, 0, len(row))
	for i, c := range row {
		if !drop[i] {
			out = append(out, c)
		}
	}
	return out
}

// continues reports whether row extends the open row. Columns past the end
// of a row count as blank.
func (r *Reconstructor) continues(row, open []warn.Cell) bool {
	c := r.layout.Continuation
	if !c.Enabled() || open == nil {
		return false
	}
	for _, idx := range c.BlankColumns {
		if !cellAt(row, idx).Blank() {
			return false
		}
	}
	for _, idx := range c.PendingColumns {
		if !cellAt(open, idx).Blank() {
			return false
		}
	}
	return true
}

// merge folds the non-blank cells of frag into open, position by position.
func merge(open, frag []warn.Cell, sep string) []warn.Cell {
	for i, c := range frag {
		if c.Blank() {
			continue
		}
		for len(open) <= i {
			open = append(open, warn.Null())
		}
		if open[i].Blank() {
			open[i] = warn.Text(c.Value)
			continue
		}
		open[i] = warn.Text(open[i].Value + sep + c.Value)
	}
	return open
}

// closeRow finalizes the open row, if any.
func (r *Reconstructor) closeRow(out *warn.Reconstruction, st *gridState) {
	if st.open == nil {
		return
	}
	row, at := st.open, st.openAt
	st.open = nil
	st.state = stateNormal

	width := r.width
	if width == 0 {
		width = len(out.Header)
	}
	shaped, reason := r.shape(row, width)
	if reason != "" {
		r.malformed(out, at[0], at[1], row, reason)
		return
	}
	out.Rows = append(out.Rows, shaped)
}

// shape converts a closed row to a schema of the given width; zero means
// unknown. A non-empty reason means the row does not fit and must be
// discarded.
func (r *Reconstructor) shape(row []warn.Cell, width int) (warn.LogicalRow, string) {
	var vals warn.LogicalRow
	if r.layout.ElideBlanks {
		for _, c := range row {
			if !c.Blank() {
				vals = append(vals, strings.TrimSpace(c.Value))
			}
		}
	} else {
		vals = make(warn.LogicalRow, len(row))
		for i, c := range row {
			vals[i] = c.Value
		}
		for len(vals) > width && width > 0 && vals[len(vals)-1] == "" {
			vals = vals[:len(vals)-1]
		}
	}

	if width == 0 {
		return vals, ""
	}
	switch {
	case len(vals) > width:
		return nil, fmt.Sprintf("row has %d cells, schema has %d", len(vals), width)
	case len(vals) < width && r.layout.ElideBlanks:
		return nil, fmt.Sprintf("insufficient cells after skew correction: %d of %d", len(vals), width)
	case len(vals) < width:
		vals = append(vals, make(warn.LogicalRow, width-len(vals))...)
	}
	return vals, ""
}
