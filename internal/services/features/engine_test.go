package features

import (
	"errors"
	"math"
	"testing"
	"time"

	"FinCast/internal/domain/models"
)

func makeCandles(n int, closeAt func(i int) float64) []models.Candle {
	base := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		c := closeAt(i)
		out[i] = models.Candle{
			Bucket: base.Add(time.Duration(i) * time.Hour),
			Symbol: "BTCUSDT",
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 100,
		}
	}
	return out
}

func TestComputeWarmupTooShort(t *testing.T) {
	e := NewEngine(Config{})
	candles := makeCandles(e.MinCandles()-1, func(i int) float64 { return 100 + float64(i) })

	_, err := e.Compute(candles)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestComputeDropsWarmupAndEmitsFiniteRows(t *testing.T) {
	e := NewEngine(Config{})
	n := e.MinCandles() + 10
	candles := makeCandles(n, func(i int) float64 { return 100 + float64(i) })

	rows, err := e.Compute(candles)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(rows) == 0 {
		t.Fatalf("expected defined rows after warm-up")
	}
	if len(rows) > n-e.MinCandles()+1 {
		t.Fatalf("got %d rows, warm-up should drop at least %d candles", len(rows), e.MinCandles()-1)
	}
	for _, row := range rows {
		for _, name := range e.Schema() {
			v, ok := row.Feature(name)
			if !ok {
				t.Fatalf("unknown schema column %q", name)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("row %v column %s is not finite: %v", row.Bucket, name, v)
			}
		}
	}
}

func TestComputeDropsZeroWidthBandRows(t *testing.T) {
	e := NewEngine(Config{})
	// Constant closes give a zero-width Bollinger band and an undefined RSI;
	// every row must be dropped rather than emitted with NaN.
	candles := makeCandles(e.MinCandles()+10, func(int) float64 { return 100 })

	rows, err := e.Compute(candles)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no defined rows for flat closes, got %d", len(rows))
	}
}

func TestComputeRowsKeepSourceCandle(t *testing.T) {
	e := NewEngine(Config{})
	candles := makeCandles(e.MinCandles()+5, func(i int) float64 { return 100 + float64(i) })

	rows, err := e.Compute(candles)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	last := rows[len(rows)-1]
	want := candles[len(candles)-1]
	if last.Close != want.Close || !last.Bucket.Equal(want.Bucket) {
		t.Fatalf("last row candle %v/%v, want %v/%v", last.Bucket, last.Close, want.Bucket, want.Close)
	}
}

func TestAnalyzeBullishBreakout(t *testing.T) {
	e := NewEngine(Config{})
	highs := []float64{10, 12, 10, 9, 13}
	lows := []float64{9, 10, 8, 7, 12}
	base := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, len(highs))
	for i := range highs {
		candles[i] = models.Candle{
			Bucket: base.Add(time.Duration(i) * time.Hour),
			Symbol: "BTCUSDT",
			High:   highs[i],
			Low:    lows[i],
			Close:  (highs[i] + lows[i]) / 2,
		}
	}
	candles[len(candles)-1].Close = 13

	got, err := e.Analyze(candles)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.Pattern != "bullish_breakout" {
		t.Fatalf("pattern %q, want bullish_breakout", got.Pattern)
	}
	if got.LastPeak == nil || got.LastPeak.Price != 12 {
		t.Fatalf("unexpected last peak %+v", got.LastPeak)
	}
	if got.LastTrough == nil || got.LastTrough.Price != 7 {
		t.Fatalf("unexpected last trough %+v", got.LastTrough)
	}
}

func TestAnalyzeNoExtremes(t *testing.T) {
	e := NewEngine(Config{})
	candles := makeCandles(3, func(i int) float64 { return 100 + float64(i) })

	got, err := e.Analyze(candles)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.Pattern != "none" && got.Pattern != "consolidation" {
		// Monotone highs produce no peak, so the pattern stays "none".
		t.Fatalf("pattern %q for monotone series", got.Pattern)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	e := NewEngine(Config{})
	if _, err := e.Analyze(nil); !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}
