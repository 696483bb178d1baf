// Package aligner merges per-ticker series into one table on a shared date index.
package aligner

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"IndexHarvester/internal/model"
)

// Align concatenates series column-wise in the given order. The date index is
// the sorted union of all series dates; a ticker without a close on a date
// gets an absent cell. Rows where every cell is absent are dropped. Values
// are never interpolated or carried forward.
func Align(series []*model.PriceSeries) *model.Table {
	t := &model.Table{Tickers: make([]model.Ticker, 0, len(series))}

	rowOf := make(map[time.Time]int)
	var dates []time.Time
	for _, s := range series {
		t.Tickers = append(t.Tickers, s.Ticker)
		for _, p := range s.Points {
			d := model.Day(p.Date)
			if _, ok := rowOf[d]; !ok {
				rowOf[d] = 0
				dates = append(dates, d)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	for i, d := range dates {
		rowOf[d] = i
	}

	rows := make([][]decimal.NullDecimal, len(dates))
	for i := range rows {
		rows[i] = make([]decimal.NullDecimal, len(series))
	}
	for col, s := range series {
		for _, p := range s.Points {
			if p.Close.Valid {
				rows[rowOf[model.Day(p.Date)]][col] = p.Close
			}
		}
	}

	for i, row := range rows {
		if !allAbsent(row) {
			t.Dates = append(t.Dates, dates[i])
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

func allAbsent(row []decimal.NullDecimal) bool {
	for _, c := range row {
		if c.Valid {
			return false
		}
	}
	return true
}
