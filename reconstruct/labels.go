package reconstruct

import (
	"strings"

	"github.com/fwojciec/warn"
)

// record accumulates one label/value notice.
type record struct {
	subject []string
	slots   []string
	filled  int
}

func (rec *record) empty() bool {
	return len(rec.subject) == 0 && rec.filled == 0
}

func (r *Reconstructor) reconstructLabels(pages []warn.PageGrid) *warn.Reconstruction {
	l := r.layout.Labels
	out := &warn.Reconstruction{}

	slot := make(map[string]int, len(l.Fields))
	for i, f := range l.Fields {
		slot[f] = i
	}

	var rec *record
	current := func() *record {
		if rec == nil {
			rec = &record{slots: make([]string, len(l.Fields))}
		}
		return rec
	}
	flush := func() {
		if rec == nil || rec.empty() {
			rec = nil
			return
		}
		row := make(warn.LogicalRow, 0, l.Width())
		row = append(row, strings.Join(rec.subject, l.Separator))
		row = append(row, rec.slots...)
		out.Rows = append(out.Rows, row)
		rec = nil
	}

	for _, pg := range pages {
		if pg.Empty() {
			r.emptyPage(out, pg.Page)
			continue
		}
		for _, table := range pg.Tables {
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

				label := cellAt(row, l.LabelColumn)
				value := cellAt(row, l.ValueColumn).Value

				if label.Blank() {
					// Unlabelled cells before the first field continue the
					// subject; after it they cannot be placed.
					if rec != nil && rec.filled > 0 {
						r.malformed(out, pg.Page, i, row, "unlabelled cells after record fields")
						continue
					}
					cur := current()
					for _, c := range row {
						if !c.Blank() {
							cur.subject = append(cur.subject, c.Value)
						}
					}
					continue
				}

				if label.Value == l.Subject {
					if rec != nil && rec.filled > 0 {
						flush()
					}
					if value != "" {
						current().subject = append(current().subject, value)
					} else {
						current()
					}
					continue
				}

				idx, ok := slot[label.Value]
				if !ok {
					r.malformed(out, pg.Page, i, row, "unknown label "+label.Value)
					continue
				}
				// A field seen twice means the previous record ended without
				// its terminator.
				if rec != nil && rec.slots[idx] != "" {
					flush()
				}
				cur := current()
				cur.slots[idx] = value
				cur.filled++
				if label.Value == l.Terminator {
					flush()
				}
			}
		}
	}

	flush()
	return out
}
