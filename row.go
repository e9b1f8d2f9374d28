package warn

import "fmt"

// LogicalRow is one reconstructed notice in target schema order.
type LogicalRow []string

// EmptyPageWarning reports a page on which the extractor found no table.
// The page contributes no rows; the crawl continues.
type EmptyPageWarning struct {
	Page int
	Err  error // extraction error, if that is why the page is empty
}

func (w EmptyPageWarning) String() string {
	if w.Err != nil {
		return fmt.Sprintf("page %d: no table (%v)", w.Page, w.Err)
	}
	return fmt.Sprintf("page %d: no table", w.Page)
}

// MalformedRowWarning reports a row that could not be classified as header,
// continuation or well-formed data. The row is discarded and counted.
type MalformedRowWarning struct {
	Page   int
	Row    int
	Cells  []string
	Reason string
}

func (w MalformedRowWarning) String() string {
	return fmt.Sprintf("page %d row %d: %s %q", w.Page, w.Row, w.Reason, w.Cells)
}

// Reconstruction is the result of rebuilding logical rows from page grids.
type Reconstruction struct {
	Rows []LogicalRow

	// Header is the first table header seen in the input, if any.
	Header []string

	HeaderRows    int // redundant header rows suppressed
	BlankRows     int // rows with no content
	Continuations int // rows merged into the previous page's last row
	EmptyPages    []EmptyPageWarning
	MalformedRows []MalformedRowWarning
}

// RowReconstructor rebuilds one logical row per record from the ordered
// page grids of a single document.
type RowReconstructor interface {
	// Reconstruct processes pages in order. Each call starts from fresh
	// state.
	Reconstruct(pages []PageGrid) (*Reconstruction, error)
}

// RowWriter persists a complete table. rows[0] is the header and every row
// has its width.
type RowWriter interface {
	WriteRows(path string, rows [][]string) error
}
