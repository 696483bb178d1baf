package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"IndexHarvester/internal/httpclient"
)

func TestEODHDFetcher(t *testing.T) {
	var gotPath, gotFrom, gotTo, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFrom = r.URL.Query().Get("from")
		gotTo = r.URL.Query().Get("to")
		gotToken = r.URL.Query().Get("api_token")
		w.Write([]byte(`[
			{"date":"2024-01-03","open":1,"close":185.64,"adjusted_close":184.29,"volume":1},
			{"date":"2024-01-02","open":1,"close":184.25,"adjusted_close":182.91,"volume":1}
		]`))
	}))
	defer srv.Close()

	f := NewEODHDFetcher(httpclient.New(5*time.Second, "test", ""), "secret", "US", true)
	f.BaseURL = srv.URL

	s, err := f.FetchCloses(context.Background(), "BRK-B", date("2024-01-01"), date("2024-01-05"))
	if err != nil {
		t.Fatalf("FetchCloses: %v", err)
	}
	if gotPath != "/api/eod/BRK-B.US" {
		t.Errorf("path = %s", gotPath)
	}
	if gotFrom != "2024-01-01" || gotTo != "2024-01-04" {
		t.Errorf("range = %s..%s, want inclusive 2024-01-01..2024-01-04", gotFrom, gotTo)
	}
	if gotToken != "secret" {
		t.Errorf("api_token = %q", gotToken)
	}
	if len(s.Points) != 2 || !s.Points[0].Date.Equal(date("2024-01-02")) {
		t.Fatalf("points not sorted: %+v", s.Points)
	}
	if !s.Points[0].Close.Decimal.Equal(decimal.RequireFromString("182.91")) {
		t.Errorf("expected adjusted close, got %s", s.Points[0].Close.Decimal)
	}
}

func TestEODHDFetcher_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	f := NewEODHDFetcher(httpclient.New(5*time.Second, "test", ""), "k", "US", true)
	f.BaseURL = srv.URL

	_, err := f.FetchCloses(context.Background(), "AAPL", date("2024-01-01"), date("2024-01-05"))
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestEODHDFetcher_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unauthenticated", http.StatusUnauthorized)
	}))
	defer srv.Close()

	f := NewEODHDFetcher(httpclient.New(5*time.Second, "test", ""), "bad", "US", true)
	f.BaseURL = srv.URL

	if _, err := f.FetchCloses(context.Background(), "AAPL", date("2024-01-01"), date("2024-01-05")); err == nil {
		t.Fatal("expected error for 401")
	}
}
