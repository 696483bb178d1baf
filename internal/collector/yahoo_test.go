package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"IndexHarvester/internal/httpclient"
)

const yahooBody = `{"chart":{"result":[{
  "meta":{"symbol":"BRK-B","gmtoffset":-18000,"exchangeTimezoneName":"America/New_York"},
  "timestamp":[1704205800,1704292200,1704378600],
  "indicators":{
    "quote":[{"close":[362.5,null,365.25]}],
    "adjclose":[{"adjclose":[360.1,null,363.0]}]
  }}],"error":null}}`

func newYahooServer(t *testing.T, status int, body string, query *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if query != nil {
			*query = r.URL.Path + "?" + r.URL.RawQuery
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestYahooFetcher_AdjustedCloses(t *testing.T) {
	var query string
	srv := newYahooServer(t, http.StatusOK, yahooBody, &query)
	f := NewYahooFetcher(httpclient.New(5*time.Second, "test", ""), true)
	f.BaseURL = srv.URL

	s, err := f.FetchCloses(context.Background(), "BRK-B", date("2024-01-01"), date("2024-01-05"))
	if err != nil {
		t.Fatalf("FetchCloses: %v", err)
	}
	if len(s.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(s.Points))
	}
	if !s.Points[0].Date.Equal(date("2024-01-02")) {
		t.Errorf("first date = %v", s.Points[0].Date)
	}
	if !s.Points[0].Close.Decimal.Equal(decimal.RequireFromString("360.1")) {
		t.Errorf("expected adjusted close 360.1, got %s", s.Points[0].Close.Decimal)
	}
	if s.Points[1].Close.Valid {
		t.Error("null close should stay absent")
	}
	for _, want := range []string{"/v8/finance/chart/BRK-B", "interval=1d", "period1=1704067200", "period2=1704412800"} {
		if !strings.Contains(query, want) {
			t.Errorf("request %q missing %q", query, want)
		}
	}
}

func TestYahooFetcher_RawCloses(t *testing.T) {
	srv := newYahooServer(t, http.StatusOK, yahooBody, nil)
	f := NewYahooFetcher(httpclient.New(5*time.Second, "test", ""), false)
	f.BaseURL = srv.URL

	s, err := f.FetchCloses(context.Background(), "BRK-B", date("2024-01-01"), date("2024-01-05"))
	if err != nil {
		t.Fatalf("FetchCloses: %v", err)
	}
	if !s.Points[2].Close.Decimal.Equal(decimal.RequireFromString("365.25")) {
		t.Errorf("expected raw close 365.25, got %s", s.Points[2].Close.Decimal)
	}
}

func TestYahooFetcher_APIError(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`
	srv := newYahooServer(t, http.StatusNotFound, body, nil)
	f := NewYahooFetcher(httpclient.New(5*time.Second, "test", ""), true)
	f.BaseURL = srv.URL

	_, err := f.FetchCloses(context.Background(), "XXXX", date("2024-01-01"), date("2024-01-05"))
	if err == nil || !strings.Contains(err.Error(), "symbol may be delisted") {
		t.Fatalf("expected provider error description, got %v", err)
	}
}

func TestYahooFetcher_AllNull(t *testing.T) {
	body := `{"chart":{"result":[{"meta":{"gmtoffset":0},"timestamp":[1704205800],
	  "indicators":{"quote":[{"close":[null]}],"adjclose":[{"adjclose":[null]}]}}],"error":null}}`
	srv := newYahooServer(t, http.StatusOK, body, nil)
	f := NewYahooFetcher(httpclient.New(5*time.Second, "test", ""), true)
	f.BaseURL = srv.URL

	if _, err := f.FetchCloses(context.Background(), "X", date("2024-01-01"), date("2024-01-05")); err == nil {
		t.Fatal("expected ErrNoData for a series without closes")
	}
}

var _ Fetcher = (*YahooFetcher)(nil)
var _ Fetcher = (*FinanceGoFetcher)(nil)
var _ Fetcher = (*EODHDFetcher)(nil)
var _ Fetcher = (*MockFetcher)(nil)

func TestYahooFetcher_AdjustedMissing(t *testing.T) {
	body := `{"chart":{"result":[{"meta":{"gmtoffset":-18000},"timestamp":[1704205800],
	  "indicators":{"quote":[{"close":[185.5]}]}}],"error":null}}`
	srv := newYahooServer(t, http.StatusOK, body, nil)

	f := NewYahooFetcher(httpclient.New(5*time.Second, "test", ""), true)
	f.BaseURL = srv.URL
	if _, err := f.FetchCloses(context.Background(), "AAPL", date("2024-01-01"), date("2024-01-05")); !errors.Is(err, ErrNoAdjusted) {
		t.Fatalf("expected ErrNoAdjusted, got %v", err)
	}

	f.Adjusted = false
	s, err := f.FetchCloses(context.Background(), "AAPL", date("2024-01-01"), date("2024-01-05"))
	if err != nil {
		t.Fatalf("raw closes: %v", err)
	}
	if !s.Points[0].Close.Decimal.Equal(decimal.RequireFromString("185.5")) {
		t.Errorf("raw close = %s", s.Points[0].Close.Decimal)
	}
}
