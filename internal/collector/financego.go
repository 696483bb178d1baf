package collector

import (
	"context"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"IndexHarvester/internal/model"
)

// FinanceGoFetcher implements Fetcher with the piquette/finance-go chart client.
// The library has no context support; cancellation is only checked before the call.
type FinanceGoFetcher struct {
	Adjusted bool
}

// NewFinanceGoFetcher creates a finance-go backed fetcher.
func NewFinanceGoFetcher(adjusted bool) *FinanceGoFetcher {
	return &FinanceGoFetcher{Adjusted: adjusted}
}

func (f *FinanceGoFetcher) Name() string { return "financego" }

func (f *FinanceGoFetcher) FetchCloses(ctx context.Context, ticker model.Ticker, start, end time.Time) (*model.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := &chart.Params{
		Symbol:   ticker.String(),
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	series := &model.PriceSeries{Ticker: ticker}
	for iter.Next() {
		series.Points = append(series.Points, barPoint(iter.Bar(), iter.Meta().Gmtoffset, f.Adjusted))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("finance-go chart: %w", err)
	}
	if len(series.Points) == 0 {
		return nil, fmt.Errorf("finance-go: %w", ErrNoData)
	}
	return finish(series)
}

// barPoint converts one chart bar to a point dated in exchange local time.
func barPoint(bar *finance.ChartBar, gmtoffset int, adjusted bool) model.PricePoint {
	price := bar.Close
	if adjusted {
		price = bar.AdjClose
	}
	p := model.PricePoint{Date: model.Day(time.Unix(int64(bar.Timestamp+gmtoffset), 0).UTC())}
	// the library turns null prices into zero
	if !price.IsZero() {
		p.Close = decimal.NewNullDecimal(price)
	}
	return p
}
