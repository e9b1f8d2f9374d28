package yaml_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/warn"
	"github.com/fwojciec/warn/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const floridaYAML = `
sources:
  - id: fl
    name: Florida
    timeout: 20m
    index:
      url: http://floridajobs.org/warn-notices
      seed_pattern: '^http://reactwarn\.floridajobs\.org/WarnList/'
      pdf_pattern: '(?i)pdf'
    key_pattern: '(?i)year=([0-9]{4})'
    transport:
      insecure_skip_verify: true
      timeout: 45s
      retryable_statuses: [403]
    retry:
      max_attempts: 6
      initial_delay: 500ms
    formats:
      pdf:
        layout:
          header_labels: [COMPANY NAME]
          continuation:
            blank_columns: [1, 3]
            separator: ""
          skew:
            width: 5
            drop: [4, 5]
          elide_blanks: true
`

func TestParseSources(t *testing.T) {
	t.Parallel()

	t.Run("decodes a source and applies defaults", func(t *testing.T) {
		t.Parallel()

		sources, err := yaml.ParseSources([]byte(floridaYAML))

		require.NoError(t, err)
		require.Len(t, sources, 1)
		src := sources[0]
		assert.Equal(t, "fl", src.ID)
		assert.Equal(t, "fl.csv", src.Output)
		assert.Equal(t, 20*time.Minute, src.Timeout)
		assert.True(t, src.Transport.InsecureSkipVerify)
		assert.Equal(t, 45*time.Second, src.Transport.Timeout)
		assert.Equal(t, []int{403}, src.Transport.RetryableStatuses)
		assert.Equal(t, warn.DefaultUserAgent, src.Transport.UserAgent)

		assert.Equal(t, 6, src.Retry.MaxAttempts)
		assert.Equal(t, 500*time.Millisecond, src.Retry.InitialDelay)
		assert.Equal(t, warn.DefaultMaxDelay, src.Retry.MaxDelay)
		assert.Equal(t, warn.DefaultRetryMultiplier, src.Retry.Multiplier)
		assert.Equal(t, warn.DefaultMaxHops, src.Pagination.MaxHops)

		pdf := src.Format(warn.KindPDF)
		assert.Equal(t, warn.LayoutGrid, pdf.Layout.Mode)
		assert.Equal(t, []int{1, 3}, pdf.Layout.Continuation.BlankColumns)
		assert.Equal(t, "", pdf.Layout.Continuation.Join())
		assert.Equal(t, &warn.SkewRule{Width: 5, Drop: []int{4, 5}}, pdf.Layout.Skew)
		assert.Equal(t, "table", src.Format(warn.KindHTML).Table.Selector)
	})

	t.Run("decodes label layouts", func(t *testing.T) {
		t.Parallel()

		data := `
sources:
  - id: wv
    seeds:
      - url: https://workforcewv.org/notices.pdf
        kind: pdf
    formats:
      pdf:
        layout:
          mode: labels
          labels:
            subject: Company
            fields: [Address, Number Affected]
            terminator: Number Affected
`
		sources, err := yaml.ParseSources([]byte(data))

		require.NoError(t, err)
		labels := sources[0].Format(warn.KindPDF).Layout.Labels
		require.NotNil(t, labels)
		assert.Equal(t, 1, labels.ValueColumn)
		assert.Equal(t, warn.DefaultLabelSeparator, labels.Separator)
		assert.Equal(t, 3, labels.Width())
	})

	t.Run("rejects invalid documents", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			data string
		}{
			{"empty", ""},
			{"no sources", "sources: []"},
			{"unknown key", "sources:\n  - id: fl\n    seeds: [{url: http://x}]\n    colour: red\n"},
			{"bad id", "sources:\n  - id: FL!\n    seeds: [{url: http://x}]\n"},
			{"no documents", "sources:\n  - id: fl\n"},
			{"duplicate id", "sources:\n  - id: fl\n    seeds: [{url: http://x}]\n  - id: fl\n    seeds: [{url: http://y}]\n"},
			{"bad duration", "sources:\n  - id: fl\n    timeout: soon\n    seeds: [{url: http://x}]\n"},
			{"bad layout", "sources:\n  - id: fl\n    seeds: [{url: http://x}]\n    formats:\n      html:\n        layout:\n          mode: columns\n"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				_, err := yaml.ParseSources([]byte(tt.data))

				assert.Equal(t, warn.EINVALID, warn.ErrorCode(err), "err: %v", err)
			})
		}
	})
}

func TestLoadSources(t *testing.T) {
	t.Parallel()

	t.Run("reads a file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "sources.yaml")
		require.NoError(t, os.WriteFile(path, []byte(floridaYAML), 0o644))

		sources, err := yaml.LoadSources(path)

		require.NoError(t, err)
		assert.Len(t, sources, 1)
	})

	t.Run("reports a missing file as not found", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.LoadSources(filepath.Join(t.TempDir(), "missing.yaml"))

		assert.Equal(t, warn.ENOTFOUND, warn.ErrorCode(err))
	})
}
