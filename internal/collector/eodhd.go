package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"IndexHarvester/internal/model"
)

// EODHDBaseURL is the EODHD API host.
const EODHDBaseURL = "https://eodhd.com"

// EODHDFetcher implements Fetcher using the EODHD end-of-day API.
type EODHDFetcher struct {
	Client   *resty.Client
	BaseURL  string
	APIKey   string
	Exchange string // EODHD exchange code appended to tickers, e.g. "US"
	Adjusted bool
}

// NewEODHDFetcher creates a new EODHD fetcher.
func NewEODHDFetcher(client *resty.Client, apiKey, exchange string, adjusted bool) *EODHDFetcher {
	return &EODHDFetcher{
		Client:   client,
		BaseURL:  EODHDBaseURL,
		APIKey:   apiKey,
		Exchange: exchange,
		Adjusted: adjusted,
	}
}

func (f *EODHDFetcher) Name() string { return "eodhd" }

// eodhdBar is one element of the /api/eod response.
//
//	{"date": "2024-02-13", "open": 675.066, "close": 668.445, "adjusted_close": 67.705, ...}
type eodhdBar struct {
	Date          string              `json:"date"`
	Close         decimal.NullDecimal `json:"close"`
	AdjustedClose decimal.NullDecimal `json:"adjusted_close"`
}

func (f *EODHDFetcher) symbol(ticker model.Ticker) string {
	if f.Exchange == "" {
		return ticker.String()
	}
	return ticker.String() + "." + f.Exchange
}

func (f *EODHDFetcher) FetchCloses(ctx context.Context, ticker model.Ticker, start, end time.Time) (*model.PriceSeries, error) {
	u := fmt.Sprintf("%s/api/eod/%s", f.BaseURL, url.PathEscape(f.symbol(ticker)))

	// from and to are both inclusive on EODHD
	resp, err := f.Client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api_token": f.APIKey,
			"fmt":       "json",
			"period":    "d",
			"from":      start.Format(model.DateLayout),
			"to":        end.AddDate(0, 0, -1).Format(model.DateLayout),
		}).
		Get(u)
	if err != nil {
		return nil, fmt.Errorf("eodhd fetch: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("eodhd: status %d, body: %s", resp.StatusCode(), resp.String())
	}

	var bars []eodhdBar
	if err := json.Unmarshal(resp.Body(), &bars); err != nil {
		return nil, fmt.Errorf("eodhd decode: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("eodhd: %w", ErrNoData)
	}

	series := &model.PriceSeries{Ticker: ticker, Points: make([]model.PricePoint, 0, len(bars))}
	for _, b := range bars {
		d, err := time.Parse(model.DateLayout, b.Date)
		if err != nil {
			return nil, fmt.Errorf("eodhd: bad date %q: %w", b.Date, err)
		}
		p := model.PricePoint{Date: d, Close: b.Close}
		if f.Adjusted {
			p.Close = b.AdjustedClose
		}
		series.Points = append(series.Points, p)
	}
	return finish(series)
}
