package usecase

import (
	"context"
	"testing"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
)

// pagedSource serves a fixed, oldest-first candle series page by page.
type pagedSource struct {
	candles []*models.Candle
	calls   int
}

var _ CandleSource = (*pagedSource)(nil)

func (s *pagedSource) HistoricalCandles(_ context.Context, symbol string, _ domrepo.Timeframe, from, to time.Time, limit int) ([]*models.Candle, error) {
	s.calls++
	var page []*models.Candle
	for _, c := range s.candles {
		if c.Symbol != symbol || c.Bucket.Before(from) || c.Bucket.After(to) {
			continue
		}
		page = append(page, c)
		if len(page) == limit {
			break
		}
	}
	return page, nil
}

// staleSource keeps returning the same candle regardless of the range.
type staleSource struct{ candle *models.Candle }

func (s *staleSource) HistoricalCandles(context.Context, string, domrepo.Timeframe, time.Time, time.Time, int) ([]*models.Candle, error) {
	return []*models.Candle{s.candle}, nil
}

// memStorage records StoreBatch calls.
type memStorage struct {
	stored  []*models.Candle
	batches int
}

var _ domrepo.Storage = (*memStorage)(nil)

func (m *memStorage) Init(context.Context) error { return nil }
func (m *memStorage) Store(_ context.Context, c *models.Candle) error {
	m.stored = append(m.stored, c)
	return nil
}
func (m *memStorage) StoreBatch(_ context.Context, candles []*models.Candle) error {
	m.batches++
	m.stored = append(m.stored, candles...)
	return nil
}
func (m *memStorage) Query(context.Context, string, time.Time, time.Time, int) ([]*models.Candle, error) {
	return nil, nil
}
func (m *memStorage) Health(context.Context) error { return nil }
func (m *memStorage) Close() error                 { return nil }

func hourlySeries(symbol string, start time.Time, n int) []*models.Candle {
	out := make([]*models.Candle, n)
	for i := range out {
		out[i] = &models.Candle{
			Bucket: start.Add(time.Duration(i) * time.Hour),
			Symbol: symbol,
			Open:   100,
			High:   101,
			Low:    99,
			Close:  100.5,
			Volume: 10,
		}
	}
	return out
}

func TestBackfillPagesThroughRange(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &pagedSource{candles: hourlySeries("BTCUSDT", start, 7)}
	store := &memStorage{}

	b := NewBackfiller(src, store, nil)
	b.SetPageSize(3)

	n, err := b.Run(context.Background(), []string{"BTCUSDT"}, domrepo.TF1h, start, start.Add(7*time.Hour))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 7 {
		t.Fatalf("stored %d candles, want 7", n)
	}
	if len(store.stored) != 7 {
		t.Fatalf("storage has %d candles, want 7", len(store.stored))
	}
	if store.batches != 3 {
		t.Errorf("StoreBatch called %d times, want 3", store.batches)
	}
	for i := 1; i < len(store.stored); i++ {
		if !store.stored[i].Bucket.After(store.stored[i-1].Bucket) {
			t.Fatalf("candles stored out of order at %d", i)
		}
	}
}

func TestBackfillMultipleSymbols(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	series := append(hourlySeries("BTCUSDT", start, 4), hourlySeries("ETHUSDT", start, 4)...)
	src := &pagedSource{candles: series}
	store := &memStorage{}

	b := NewBackfiller(src, store, nil)
	n, err := b.Run(context.Background(), []string{"BTCUSDT", "ETHUSDT"}, domrepo.TF1h, start, start.Add(4*time.Hour))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 8 {
		t.Fatalf("stored %d candles, want 8", n)
	}
}

func TestBackfillStopsOnStaleCursor(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &staleSource{candle: &models.Candle{Bucket: start, Symbol: "BTCUSDT", Open: 1, High: 1, Low: 1, Close: 1, Volume: 1}}
	store := &memStorage{}

	b := NewBackfiller(src, store, nil)
	n, err := b.Run(context.Background(), []string{"BTCUSDT"}, domrepo.TF1h, start, start.Add(100*time.Hour))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 1 {
		t.Fatalf("stored %d candles, want 1 (stale source must not loop)", n)
	}
}

func TestBackfillRejectsBadInput(t *testing.T) {
	b := NewBackfiller(&pagedSource{}, &memStorage{}, nil)
	now := time.Now()

	if _, err := b.Run(context.Background(), nil, domrepo.TF1h, now.Add(-time.Hour), now); err == nil {
		t.Fatal("expected error for empty symbol list")
	}
	if _, err := b.Run(context.Background(), []string{"BTCUSDT"}, domrepo.TF1h, now, now); err == nil {
		t.Fatal("expected error for empty range")
	}
}

func TestBackfillCanceledContext(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &pagedSource{candles: hourlySeries("BTCUSDT", start, 4)}
	b := NewBackfiller(src, &memStorage{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.Run(ctx, []string{"BTCUSDT"}, domrepo.TF1h, start, start.Add(4*time.Hour)); err == nil {
		t.Fatal("expected context error")
	}
}
