package goquery

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/warn"
)

// DefaultTableSelector matches every table on the page.
const DefaultTableSelector = "table"

// Ensure TableExtractor implements warn.GridExtractor at compile time.
var _ warn.GridExtractor = (*TableExtractor)(nil)

// TableExtractor reads the HTML tables of a listing page into one grid per
// table. Header labels come from <thead> cells, or from a leading row made
// only of <th> cells. Data rows come from <tbody>.
type TableExtractor struct {
	selector   string
	keepBreaks bool
}

// TableOption configures a TableExtractor.
type TableOption func(*TableExtractor)

// WithSelector restricts extraction to tables matching a CSS selector.
func WithSelector(selector string) TableOption {
	return func(e *TableExtractor) {
		if selector != "" {
			e.selector = selector
		}
	}
}

// WithoutLineBreaks stops <br> elements from becoming newlines in cell
// text.
func WithoutLineBreaks() TableOption {
	return func(e *TableExtractor) {
		e.keepBreaks = false
	}
}

// NewTableExtractor creates a TableExtractor.
func NewTableExtractor(opts ...TableOption) *TableExtractor {
	e := &TableExtractor{selector: DefaultTableSelector, keepBreaks: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns a single PageGrid holding every matching table of body.
func (e *TableExtractor) Extract(ctx context.Context, body []byte) ([]warn.PageGrid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := parse(body)
	if err != nil {
		return nil, err
	}
	if e.keepBreaks {
		doc.Find("br").ReplaceWithHtml("\n")
	}

	page := warn.PageGrid{Page: 1}
	doc.Find(e.selector).Each(func(_ int, table *goquery.Selection) {
		page.Tables = append(page.Tables, readTable(table))
	})
	return []warn.PageGrid{page}, nil
}

func readTable(table *goquery.Selection) warn.Grid {
	var grid warn.Grid

	table.Find("thead th").Each(func(_ int, th *goquery.Selection) {
		grid.Header = append(grid.Header, cellText(th))
	})

	table.Find("tbody tr").Each(func(i int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("td, th")
		if i == 0 && grid.Header == nil && cells.Length() > 0 && cells.Length() == tr.ChildrenFiltered("th").Length() {
			cells.Each(func(_ int, th *goquery.Selection) {
				grid.Header = append(grid.Header, cellText(th))
			})
			return
		}
		row := make([]warn.Cell, 0, cells.Length())
		cells.Each(func(_ int, td *goquery.Selection) {
			row = append(row, warn.Text(cellText(td)))
		})
		grid.Rows = append(grid.Rows, row)
	})

	return grid
}

func cellText(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}
