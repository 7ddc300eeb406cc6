package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	drepo "FinCast/internal/domain/repository"
)

const klinePayload = `[
[1700000000000,"100.5","101","99.5","100.75","12.5",1700003599999,"1256.2",100,"6.25","628.1","0"],
[1700003600000,"100.75","102","100","101.5","8",1700007199999,"812.0",80,"4","406","0"]
]`

func TestHistoricalCandlesParsesKlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			t.Errorf("path = %s, want /api/v3/klines", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("symbol") != "BTCUSDT" {
			t.Errorf("symbol = %s, want BTCUSDT", q.Get("symbol"))
		}
		if q.Get("interval") != "1h" {
			t.Errorf("interval = %s, want 1h", q.Get("interval"))
		}
		if q.Get("startTime") == "" || q.Get("endTime") == "" || q.Get("limit") == "" {
			t.Errorf("missing range params: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(klinePayload))
	}))
	defer srv.Close()

	c := NewRestClient(srv.URL, 2*time.Second)
	candles, err := c.HistoricalCandles(context.Background(), "btcusdt", drepo.TF1h,
		time.UnixMilli(1700000000000), time.UnixMilli(1700007200000), 500)
	if err != nil {
		t.Fatalf("HistoricalCandles: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("got %d candles, want 2", len(candles))
	}

	first := candles[0]
	if first.Symbol != "BTCUSDT" {
		t.Errorf("symbol = %s, want BTCUSDT", first.Symbol)
	}
	if !first.Bucket.Equal(time.UnixMilli(1700000000000).UTC()) {
		t.Errorf("bucket = %s", first.Bucket)
	}
	if first.Open != 100.5 || first.High != 101 || first.Low != 99.5 || first.Close != 100.75 || first.Volume != 12.5 {
		t.Errorf("ohlcv = %+v", first)
	}
	if !candles[1].Bucket.After(first.Bucket) {
		t.Errorf("candles not oldest-first: %s then %s", first.Bucket, candles[1].Bucket)
	}
}

func TestHistoricalCandlesRejectsMalformedRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[1700000000000,"not-a-number","101","99.5","100.75","12.5"]]`))
	}))
	defer srv.Close()

	c := NewRestClient(srv.URL, 2*time.Second)
	if _, err := c.HistoricalCandles(context.Background(), "BTCUSDT", drepo.TF1h,
		time.Unix(0, 0), time.Now(), 10); err == nil {
		t.Fatal("expected parse error for malformed kline row")
	}
}

func TestHistoricalCandlesShortRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[1700000000000,"100"]]`))
	}))
	defer srv.Close()

	c := NewRestClient(srv.URL, 2*time.Second)
	if _, err := c.HistoricalCandles(context.Background(), "BTCUSDT", drepo.TF1h,
		time.Unix(0, 0), time.Now(), 10); err == nil {
		t.Fatal("expected error for short kline row")
	}
}

func TestHistoricalCandlesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewRestClient(srv.URL, 2*time.Second)
	if _, err := c.HistoricalCandles(context.Background(), "BTCUSDT", drepo.TF1h,
		time.Unix(0, 0), time.Now(), 10); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestHistoricalCandlesNoBaseURL(t *testing.T) {
	c := NewRestClient("", time.Second)
	if _, err := c.HistoricalCandles(context.Background(), "BTCUSDT", drepo.TF1h,
		time.Unix(0, 0), time.Now(), 10); err == nil {
		t.Fatal("expected error when rest url is not configured")
	}
}
