package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"IndexHarvester/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Series map[model.Ticker]*model.PriceSeries
	Errs   map[model.Ticker]error
	Calls  []model.Ticker
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCloses(_ context.Context, ticker model.Ticker, start, end time.Time) (*model.PriceSeries, error) {
	m.Calls = append(m.Calls, ticker)
	if err, ok := m.Errs[ticker]; ok {
		return nil, err
	}
	if s, ok := m.Series[ticker]; ok {
		return s, nil
	}
	return generateMockSeries(ticker, start, end), nil
}

// generateMockSeries produces one close per weekday in [start, end).
func generateMockSeries(ticker model.Ticker, start, end time.Time) *model.PriceSeries {
	s := &model.PriceSeries{Ticker: ticker, FetchedAt: time.Now()}
	base := decimal.NewFromInt(100)
	step := decimal.RequireFromString("0.25")
	for d, i := model.Day(start), 0; d.Before(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		s.Points = append(s.Points, model.PricePoint{
			Date:  d,
			Close: decimal.NewNullDecimal(base.Add(step.Mul(decimal.NewFromInt(int64(i))))),
		})
		i++
	}
	return s
}

// Collector downloads series one ticker at a time, pausing after every request.
type Collector struct {
	Fetcher Fetcher
	Start   time.Time
	End     time.Time
	Pause   time.Duration
}

// NewCollector creates a new Collector for the [start, end) date range.
func NewCollector(fetcher Fetcher, start, end time.Time, pause time.Duration) *Collector {
	return &Collector{Fetcher: fetcher, Start: start, End: end, Pause: pause}
}

// CollectAll fetches every ticker in order. A failing ticker is logged and
// left out of the result; the batch always continues. Repeated tickers are
// fetched once, at their first position. Cancelling ctx stops the loop after
// the current request.
func (c *Collector) CollectAll(ctx context.Context, tickers []model.Ticker) ([]*model.PriceSeries, []model.Failure) {
	var (
		series   []*model.PriceSeries
		failures []model.Failure
	)
	tickers = dedupe(tickers)
	for i, t := range tickers {
		if ctx.Err() != nil {
			log.Printf("[WARN] collection cancelled after %d/%d tickers", i, len(tickers))
			break
		}
		log.Printf("[INFO] [%d/%d] %s", i+1, len(tickers), t)

		s, err := c.Fetcher.FetchCloses(ctx, t, c.Start, c.End)
		if err == nil && s == nil {
			err = ErrNoData
		}
		if err != nil {
			log.Printf("[WARN] failed for %s: %v", t, err)
			failures = append(failures, model.Failure{Ticker: t, Err: fmt.Errorf("%s: %w", c.Fetcher.Name(), err)})
		} else {
			s.Ticker = t
			series = append(series, s)
		}

		c.sleep(ctx)
	}
	return series, failures
}

func dedupe(tickers []model.Ticker) []model.Ticker {
	seen := make(map[model.Ticker]bool, len(tickers))
	out := make([]model.Ticker, 0, len(tickers))
	for _, t := range tickers {
		if seen[t] {
			log.Printf("[WARN] duplicate ticker %s, keeping first occurrence", t)
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func (c *Collector) sleep(ctx context.Context) {
	if c.Pause <= 0 {
		return
	}
	timer := time.NewTimer(c.Pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
