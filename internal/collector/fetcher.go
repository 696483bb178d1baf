package collector

import (
	"context"
	"errors"
	"time"

	"IndexHarvester/internal/model"
)

var (
	// ErrNoData is returned when a provider answers without a single close.
	ErrNoData = errors.New("no data returned")
	// ErrNoAdjusted is returned when adjusted closes were requested but the
	// provider sent only raw ones.
	ErrNoAdjusted = errors.New("no adjusted closes in response")
)

// Fetcher defines the interface for fetching daily closes.
// start is inclusive and end is exclusive for every implementation.
type Fetcher interface {
	FetchCloses(ctx context.Context, ticker model.Ticker, start, end time.Time) (*model.PriceSeries, error)
	Name() string
}

// finish normalizes a freshly fetched series and rejects one without closes.
func finish(s *model.PriceSeries) (*model.PriceSeries, error) {
	s.Normalize()
	for _, p := range s.Points {
		if p.Close.Valid {
			s.FetchedAt = time.Now()
			return s, nil
		}
	}
	return nil, ErrNoData
}
