package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"

	"stockcast/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func yahooChartBody(timestamps []int64, closes []*float64) []byte {
	quote := map[string]interface{}{
		"open":   closes,
		"high":   closes,
		"low":    closes,
		"close":  closes,
		"volume": closes,
	}
	resp := map[string]interface{}{
		"chart": map[string]interface{}{
			"result": []interface{}{
				map[string]interface{}{
					"meta":      map[string]interface{}{"symbol": "AAPL", "regularMarketPrice": 190.0},
					"timestamp": timestamps,
					"indicators": map[string]interface{}{
						"quote": []interface{}{quote},
					},
				},
			},
		},
	}
	data, _ := json.Marshal(resp)
	return data
}

func newTestYahooProvider(transport roundTripFunc) *YahooProvider {
	p := NewYahooProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.baseURL = "http://example"
	p.client = &http.Client{Transport: transport}
	p.limiter = NewRateLimiter(10, time.Millisecond)
	return p
}

func f(v float64) *float64 { return &v }

func TestYahooProviderFetchBars(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	timestamps := []int64{base.Unix(), base.AddDate(0, 0, 1).Unix(), base.AddDate(0, 0, 2).Unix()}
	closes := []*float64{f(100), nil, f(102)}

	p := newTestYahooProvider(func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.Path, "/v8/finance/chart/AAPL") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if got := req.URL.Query().Get("range"); got != "6mo" {
			t.Fatalf("unexpected range: %s", got)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(yahooChartBody(timestamps, closes))),
			Header:     make(http.Header),
		}, nil
	})

	bars, err := p.FetchBars(context.Background(), "aapl", "6mo", "1d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The null close row is dropped.
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Symbol != "AAPL" || bars[0].Close != 100 {
		t.Fatalf("unexpected first bar: %+v", bars[0])
	}
	if !bars[1].Timestamp.Equal(base.AddDate(0, 0, 2)) {
		t.Fatalf("unexpected second bar timestamp: %v", bars[1].Timestamp)
	}
}

func TestYahooProviderRejectsBadArguments(t *testing.T) {
	t.Parallel()

	p := newTestYahooProvider(func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request should be made for invalid arguments")
		return nil, nil
	})

	if _, err := p.FetchBars(context.Background(), "AAPL", "7y", "1d"); !errors.Is(err, domain.ErrUnsupportedPeriod) {
		t.Fatalf("expected ErrUnsupportedPeriod, got %v", err)
	}
	if _, err := p.FetchBars(context.Background(), "AAPL", "1y", "2w"); !errors.Is(err, domain.ErrUnsupportedInterval) {
		t.Fatalf("expected ErrUnsupportedInterval, got %v", err)
	}
	if _, err := p.FetchBars(context.Background(), "  ", "1y", "1d"); !errors.Is(err, domain.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable for empty symbol, got %v", err)
	}
}

func TestYahooProviderUnknownSymbol(t *testing.T) {
	t.Parallel()

	p := newTestYahooProvider(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)),
			Header:     make(http.Header),
		}, nil
	})

	if _, err := p.FetchBars(context.Background(), "NOPE", "1y", "1d"); !errors.Is(err, domain.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestYahooProviderAllNullCloses(t *testing.T) {
	t.Parallel()

	timestamps := []int64{1700000000, 1700086400}
	p := newTestYahooProvider(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(yahooChartBody(timestamps, []*float64{nil, nil}))),
			Header:     make(http.Header),
		}, nil
	})

	if _, err := p.FetchBars(context.Background(), "AAPL", "1y", "1d"); !errors.Is(err, domain.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable for empty series, got %v", err)
	}
}
