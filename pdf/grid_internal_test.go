package pdf

import (
	"testing"

	"github.com/fwojciec/warn"
	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// word lays s out as one glyph per character, 5pt wide, starting at x.
func word(s string, x, y float64) []glyph {
	gs := make([]glyph, 0, len(s))
	for i, r := range s {
		gs = append(gs, glyph{x: x + float64(i)*5, y: y, w: 5, size: 10, s: string(r)})
	}
	return gs
}

func line(parts ...[]glyph) []glyph {
	var out []glyph
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestGroupRows(t *testing.T) {
	t.Parallel()

	t.Run("orders rows top to bottom and glyphs left to right", func(t *testing.T) {
		t.Parallel()

		glyphs := line(
			word("Globex", 72, 680),
			word("45", 300, 680.5),
			word("Acme", 72, 700),
			word("120", 300, 699),
		)

		rows := groupRows(glyphs, DefaultRowTolerance)

		require.Len(t, rows, 2)
		assert.Equal(t, 700.0, rows[0][0].y)
		assert.Equal(t, []span{{72, "Acme"}, {300, "120"}}, splitGaps(rows[0], DefaultGapTolerance))
		assert.Equal(t, []span{{72, "Globex"}, {300, "45"}}, splitGaps(rows[1], DefaultGapTolerance))
	})

	t.Run("separates baselines further apart than the tolerance", func(t *testing.T) {
		t.Parallel()

		rows := groupRows(line(word("a", 72, 700), word("b", 72, 696)), DefaultRowTolerance)

		assert.Len(t, rows, 2)
	})

	t.Run("empty input yields no rows", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, groupRows(nil, DefaultRowTolerance))
	})
}

func TestSplitGaps(t *testing.T) {
	t.Parallel()

	t.Run("inserts spaces between visibly separate words", func(t *testing.T) {
		t.Parallel()

		row := line(word("Acme", 72, 700), word("Corp", 95, 700), word("Miami", 200, 700))

		spans := splitGaps(row, DefaultGapTolerance)

		assert.Equal(t, []span{{72, "Acme Corp"}, {200, "Miami"}}, spans)
	})

	t.Run("keeps explicit space glyphs", func(t *testing.T) {
		t.Parallel()

		spans := splitGaps(word("Acme Corp", 72, 700), DefaultGapTolerance)

		assert.Equal(t, []span{{72, "Acme Corp"}}, spans)
	})

	t.Run("whitespace only row yields nothing", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, splitGaps(word("   ", 72, 700), DefaultGapTolerance))
	})
}

func TestSplitColumns(t *testing.T) {
	t.Parallel()

	columns := []float64{50, 200, 300, 400}

	t.Run("assigns text to columns and marks empty ones absent", func(t *testing.T) {
		t.Parallel()

		row := line(word("Acme", 60, 700), word("2016-04-01", 310, 700), word("120", 410, 700))

		cells := splitColumns(row, columns)

		assert.Equal(t, []warn.Cell{warn.Text("Acme"), warn.Null(), warn.Text("2016-04-01"), warn.Text("120")}, cells)
	})

	t.Run("text left of the first boundary joins the first column", func(t *testing.T) {
		t.Parallel()

		cells := splitColumns(word("Inc", 20, 700), columns)

		require.Len(t, cells, 4)
		assert.Equal(t, warn.Text("Inc"), cells[0])
	})

	t.Run("whitespace only row yields nothing", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, splitColumns(word("   ", 60, 700), columns))
	})
}

func TestAlignSpans(t *testing.T) {
	t.Parallel()

	anchors := []float64{72, 180, 290, 380, 480}

	t.Run("keeps empty columns as absent cells", func(t *testing.T) {
		t.Parallel()

		cells := alignSpans([]span{{72, "Holdings"}, {482, "50"}}, anchors, DefaultGapTolerance)

		assert.Equal(t, []warn.Cell{warn.Text("Holdings"), warn.Null(), warn.Null(), warn.Null(), warn.Text("50")}, cells)
	})

	t.Run("tolerates text starting slightly left of its column", func(t *testing.T) {
		t.Parallel()

		cells := alignSpans([]span{{285, "7/1/2020"}}, anchors, DefaultGapTolerance)

		assert.Equal(t, warn.Text("7/1/2020"), cells[2])
	})

	t.Run("falls back to compact cells when two spans share a column", func(t *testing.T) {
		t.Parallel()

		cells := alignSpans([]span{{72, "Acme"}, {120, "Corp"}}, anchors, DefaultGapTolerance)

		assert.Equal(t, []warn.Cell{warn.Text("Acme"), warn.Text("Corp")}, cells)
	})

	t.Run("no spans yields no row", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, alignSpans(nil, anchors, DefaultGapTolerance))
	})
}

// runs lays s out as one text run per character, 5pt wide, starting at x.
func runs(s string, x, y float64) []pdf.Text {
	out := make([]pdf.Text, 0, len(s))
	for i, r := range s {
		out = append(out, pdf.Text{X: x + float64(i)*5, Y: y, W: 5, FontSize: 10, S: string(r)})
	}
	return out
}

func pageOf(parts ...[]pdf.Text) []pdf.Text {
	var out []pdf.Text
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestTableExtractor_Grids(t *testing.T) {
	t.Parallel()

	t.Run("page-split fragment keeps its column positions", func(t *testing.T) {
		t.Parallel()

		// Story: the tail of a notice continues at the top of page 2 with
		// only its company and employee columns filled.
		doc := [][]pdf.Text{
			pageOf(
				runs("COMPANY NAME", 72, 700), runs("ADDRESS", 180, 700), runs("NOTICE", 290, 700), runs("LAYOFF", 380, 700), runs("EMPLOYEES", 480, 700),
				runs("Echo Corp", 72, 680), runs("5 Elm St", 180, 680), runs("6/5/2020", 290, 680), runs("7/5/2020", 380, 680),
			),
			pageOf(
				runs("Holdings", 72, 700), runs("50", 490, 700),
				runs("Foxtrot Ltd", 72, 680), runs("6 Cedar Ct", 180, 680), runs("6/6/2020", 290, 680), runs("7/6/2020", 380, 680), runs("60", 490, 680),
			),
		}

		pages := NewTableExtractor().Grids(doc)

		require.Len(t, pages, 2)
		require.Len(t, pages[1].Tables, 1)
		assert.Equal(t, []warn.Cell{warn.Text("Holdings"), warn.Null(), warn.Null(), warn.Null(), warn.Text("50")}, pages[1].Tables[0].Rows[0])
		assert.Equal(t, []warn.Cell{warn.Text("Echo Corp"), warn.Text("5 Elm St"), warn.Text("6/5/2020"), warn.Text("7/5/2020"), warn.Null()}, pages[0].Tables[0].Rows[1])
	})

	t.Run("configured columns override gap alignment", func(t *testing.T) {
		t.Parallel()

		doc := [][]pdf.Text{pageOf(runs("Acme", 60, 700), runs("120", 410, 700))}

		pages := NewTableExtractor(WithColumns(50, 200, 300, 400)).Grids(doc)

		assert.Equal(t, []warn.Cell{warn.Text("Acme"), warn.Null(), warn.Null(), warn.Text("120")}, pages[0].Tables[0].Rows[0])
	})

	t.Run("pages without text have no tables", func(t *testing.T) {
		t.Parallel()

		pages := NewTableExtractor().Grids([][]pdf.Text{nil, pageOf(runs("Acme", 72, 700))})

		require.Len(t, pages, 2)
		assert.Equal(t, 1, pages[0].Page)
		assert.Empty(t, pages[0].Tables)
		assert.Equal(t, 2, pages[1].Page)
	})
}
