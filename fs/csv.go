package fs

import (
	"bytes"
	"encoding/csv"

	"github.com/fwojciec/warn"
)

// Ensure CSVWriter implements warn.RowWriter at compile time.
var _ warn.RowWriter = (*CSVWriter)(nil)

// CSVWriter writes tables as RFC 4180 CSV files.
type CSVWriter struct{}

// NewCSVWriter creates a CSVWriter.
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

// WriteRows writes rows to path, replacing any previous file. rows[0] is
// the header and every row must have its width. The file appears complete
// or not at all.
func (w *CSVWriter) WriteRows(path string, rows [][]string) error {
	if len(rows) == 0 {
		return warn.Errorf(warn.EINVALID, "no header row for %s", path)
	}
	width := len(rows[0])
	if width == 0 {
		return warn.Errorf(warn.EINVALID, "empty header row for %s", path)
	}
	for i, row := range rows {
		if len(row) != width {
			return warn.Errorf(warn.EINVALID, "row %d has %d fields, header has %d", i, len(row), width)
		}
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return writeAtomic(path, buf.Bytes())
}
