package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used in configs and output files.
const DateLayout = "2006-01-02"

// PricePoint is one trading day of a series. Close is invalid when the
// provider returned the day without a price.
type PricePoint struct {
	Date  time.Time
	Close decimal.NullDecimal
}

// PriceSeries holds the daily closes of one ticker.
type PriceSeries struct {
	Ticker    Ticker
	Points    []PricePoint
	FetchedAt time.Time
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Normalize sorts points by date and collapses duplicate dates, keeping the
// last point seen for a date.
func (s *PriceSeries) Normalize() {
	sort.SliceStable(s.Points, func(i, j int) bool { return s.Points[i].Date.Before(s.Points[j].Date) })
	out := s.Points[:0]
	for _, p := range s.Points {
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	s.Points = out
}
