package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Table is the combined dataset: one row per date, one column per ticker.
// Rows[i][j] is the close of Tickers[j] on Dates[i].
type Table struct {
	Dates   []time.Time
	Tickers []Ticker
	Rows    [][]decimal.NullDecimal
}

// Empty reports whether the table has no rows or no columns.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0 || len(t.Tickers) == 0
}
