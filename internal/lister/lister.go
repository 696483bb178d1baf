package lister

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"IndexHarvester/internal/model"
)

var (
	// ErrTableNotFound is returned when the page has no table with the configured id.
	ErrTableNotFound = errors.New("constituents table not found")
	// ErrColumnNotFound is returned when the table has no header with the configured name.
	ErrColumnNotFound = errors.New("symbol column not found")
)

// Lister scrapes index constituents from an HTML table.
type Lister struct {
	Client  *resty.Client
	URL     string
	TableID string
	Column  string
}

// New creates a Lister for the table with the given id and column header.
func New(client *resty.Client, url, tableID, column string) *Lister {
	return &Lister{Client: client, URL: url, TableID: tableID, Column: column}
}

// List fetches the page and returns the normalized tickers in table order.
// Any failure aborts the listing; there is no partial result.
func (l *Lister) List(ctx context.Context) ([]model.Ticker, error) {
	resp, err := l.Client.R().SetContext(ctx).Get(l.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", l.URL, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fetch %s: status %d", l.URL, resp.StatusCode())
	}

	tickers, err := ParseTickers(bytes.NewReader(resp.Body()), l.TableID, l.Column)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] found %d tickers at %s", len(tickers), l.URL)
	return tickers, nil
}

// ParseTickers extracts the named column of the table with id tableID.
// The header row is the first row made only of <th> cells; every later row
// with <td> cells contributes one ticker. Empty cells are skipped.
func ParseTickers(r io.Reader, tableID, column string) ([]model.Ticker, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find(fmt.Sprintf("table[id=%q]", tableID)).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: id %q", ErrTableNotFound, tableID)
	}
	// footnote markers would leak into cell text
	table.Find("sup").Remove()

	col := -1
	var tickers []model.Ticker
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Children().Filter("th, td")
		if col < 0 {
			if row.Children().Filter("td").Length() > 0 {
				return
			}
			cells.EachWithBreak(func(i int, cell *goquery.Selection) bool {
				if strings.EqualFold(strings.TrimSpace(cell.Text()), column) {
					col = i
					return false
				}
				return true
			})
			return
		}
		if row.Children().Filter("td").Length() == 0 || col >= cells.Length() {
			return
		}
		raw := strings.TrimSpace(cells.Eq(col).Text())
		if raw == "" {
			return
		}
		tickers = append(tickers, model.NormalizeTicker(raw))
	})

	if col < 0 {
		return nil, fmt.Errorf("%w: %q in table %q", ErrColumnNotFound, column, tableID)
	}
	return tickers, nil
}
