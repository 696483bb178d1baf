package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"IndexHarvester/internal/model"
)

// YahooBaseURL is the public Yahoo Finance chart API host.
const YahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	Client   *resty.Client
	BaseURL  string
	Adjusted bool
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(client *resty.Client, adjusted bool) *YahooFetcher {
	return &YahooFetcher{Client: client, BaseURL: YahooBaseURL, Adjusted: adjusted}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset int64 `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []decimal.NullDecimal `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []decimal.NullDecimal `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (f *YahooFetcher) FetchCloses(ctx context.Context, ticker model.Ticker, start, end time.Time) (*model.PriceSeries, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s", f.BaseURL, url.PathEscape(ticker.String()))

	resp, err := f.Client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"period1":              strconv.FormatInt(start.Unix(), 10),
			"period2":              strconv.FormatInt(end.Unix(), 10),
			"interval":             "1d",
			"events":               "div|split",
			"includeAdjustedClose": "true",
		}).
		Get(u)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}

	var chart yahooChart
	decodeErr := json.Unmarshal(resp.Body(), &chart)
	if decodeErr == nil && chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("yahoo decode: %w", decodeErr)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo: %w", ErrNoData)
	}

	result := chart.Chart.Result[0]
	var closes []decimal.NullDecimal
	if f.Adjusted {
		if len(result.Indicators.AdjClose) == 0 {
			return nil, fmt.Errorf("yahoo: %w", ErrNoAdjusted)
		}
		closes = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}

	series := &model.PriceSeries{Ticker: ticker, Points: make([]model.PricePoint, 0, len(result.Timestamp))}
	for i, ts := range result.Timestamp {
		// shift to exchange local time so the bar lands on its trading date
		p := model.PricePoint{Date: model.Day(time.Unix(ts+result.Meta.GMTOffset, 0).UTC())}
		if i < len(closes) {
			p.Close = closes[i]
		}
		series.Points = append(series.Points, p)
	}
	return finish(series)
}
