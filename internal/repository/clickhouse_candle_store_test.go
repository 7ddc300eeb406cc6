package repository

import (
	"context"
	"testing"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	pkgcache "FinCast/pkg/cache"
)

func testCandles(symbol string, n int) []models.Candle {
	base := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Candle{
			Bucket: base.Add(time.Duration(i) * time.Hour),
			Symbol: symbol,
			Open:   100 + float64(i),
			High:   101 + float64(i),
			Low:    99 + float64(i),
			Close:  100.5 + float64(i),
			Volume: 10,
		})
	}
	return out
}

// A warm cache must answer range reads without touching ClickHouse. The
// store here has no database at all, so any fallthrough to the query path
// fails loudly.
func TestCHCandleStoreRangeReadThrough(t *testing.T) {
	ctx := context.Background()
	store := &CHCandleStore{}
	store.SetCache(pkgcache.NewMemoryCache())

	from := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(48 * time.Hour)
	want := testCandles("BTCUSDT", 3)

	key := pkgcache.GenerateKeyWithParams("candles:range", string(domrepo.TF1h), "BTCUSDT", from.Unix(), to.Unix())
	store.storeCandles(ctx, key, want)

	got, err := store.GetCandles(ctx, "BTCUSDT", from, to, domrepo.TF1h)
	if err != nil {
		t.Fatalf("get candles: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d candles, want %d", len(got), len(want))
	}
	if got[0].Close != want[0].Close || !got[2].Bucket.Equal(want[2].Bucket) {
		t.Fatalf("cached candles differ: %+v", got)
	}
}

func TestCHCandleStoreLatestReadThrough(t *testing.T) {
	ctx := context.Background()
	store := &CHCandleStore{}
	store.SetCache(pkgcache.NewMemoryCache())

	want := testCandles("ETHUSDT", 5)
	key := pkgcache.GenerateKeyWithParams("candles:latest", string(domrepo.TF1d), "ETHUSDT", 5)
	store.storeCandles(ctx, key, want)

	got, err := store.GetLatestNCandles(ctx, "ETHUSDT", 5, domrepo.TF1d)
	if err != nil {
		t.Fatalf("get latest candles: %v", err)
	}
	if len(got) != 5 || got[4].Symbol != "ETHUSDT" {
		t.Fatalf("cached candles differ: %+v", got)
	}
}
