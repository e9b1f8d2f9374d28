package main

import (
	"log/slog"
	"slices"
	"testing"

	"github.com/fwojciec/warn"
	"github.com/fwojciec/warn/pdf"
	"github.com/fwojciec/warn/yaml"
	rawpdf "github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// text lays s out as one 5pt-wide run per character, starting at x.
func text(s string, x, y float64) []rawpdf.Text {
	out := make([]rawpdf.Text, 0, len(s))
	for i, r := range s {
		out = append(out, rawpdf.Text{X: x + float64(i)*5, Y: y, W: 5, FontSize: 10, S: string(r)})
	}
	return out
}

// notice lays out one table row with cells starting at the fl column edges.
// Empty cells print nothing.
func notice(y float64, cells ...string) []rawpdf.Text {
	edges := []float64{72, 180, 290, 380, 480}
	var out []rawpdf.Text
	for i, c := range cells {
		out = append(out, text(c, edges[i], y)...)
	}
	return out
}

func defaultSource(t *testing.T, id string) *warn.Source {
	t.Helper()
	sources, err := yaml.ParseSources(defaultSources)
	require.NoError(t, err)
	for _, src := range sources {
		if src.ID == id {
			return src
		}
	}
	t.Fatalf("no default source %q", id)
	return nil
}

func TestNewToolkit_FloridaPDF(t *testing.T) {
	t.Parallel()

	src := defaultSource(t, "fl")
	tk, err := NewToolkit(slog.New(slog.DiscardHandler))(src)
	require.NoError(t, err)
	extractor, ok := tk.Extractors[warn.KindPDF].(*pdf.TableExtractor)
	require.True(t, ok)

	t.Run("rejoins a notice split across pages", func(t *testing.T) {
		t.Parallel()

		// Story: the last notice on page 1 runs onto page 2, where only the
		// tail of its company name and its employee count are printed.
		texts := [][]rawpdf.Text{
			slices.Concat(
				notice(700, "COMPANY NAME", "ADDRESS", "NOTICE DATE", "LAYOFF DATE", "EMPLOYEES"),
				notice(680, "Delta LLC", "4 Oak Ave", "6/4/2020", "7/4/2020", "40"),
				notice(660, "Echo Corp", "5 Elm St", "6/5/2020", "7/5/2020", ""),
			),
			slices.Concat(
				notice(700, "Holdings", "", "", "", "50"),
				notice(680, "Foxtrot Ltd", "6 Cedar Ct", "6/6/2020", "7/6/2020", "60"),
			),
		}

		rec, err := tk.Reconstructors[warn.KindPDF].Reconstruct(extractor.Grids(texts))

		require.NoError(t, err)
		assert.Equal(t, []warn.LogicalRow{
			{"Delta LLC", "4 Oak Ave", "6/4/2020", "7/4/2020", "40"},
			{"Echo Corp Holdings", "5 Elm St", "6/5/2020", "7/5/2020", "50"},
			{"Foxtrot Ltd", "6 Cedar Ct", "6/6/2020", "7/6/2020", "60"},
		}, rec.Rows)
		assert.Equal(t, 1, rec.Continuations)
		assert.Equal(t, 1, rec.HeaderRows)
		assert.Empty(t, rec.MalformedRows)
	})
}
