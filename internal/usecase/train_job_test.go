package usecase

import (
	"context"
	"testing"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	"FinCast/internal/services/features"
	pkgcache "FinCast/pkg/cache"
)

// memCandleStore serves a fixed candle sequence for every query.
type memCandleStore struct {
	candles []models.Candle
}

func (s *memCandleStore) GetCandles(_ context.Context, _ string, _, _ time.Time, _ domrepo.Timeframe) ([]models.Candle, error) {
	return s.candles, nil
}

func (s *memCandleStore) GetLatestNCandles(_ context.Context, _ string, n int, _ domrepo.Timeframe) ([]models.Candle, error) {
	if n >= len(s.candles) {
		return s.candles, nil
	}
	return s.candles[len(s.candles)-n:], nil
}

var _ domrepo.CandleStore = (*memCandleStore)(nil)

// trainableCandles zig-zags with drift so both label classes occur and
// every indicator stays defined.
func trainableCandles(n int) []models.Candle {
	base := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		c := 100 + float64(i%2)*2 + 0.1*float64(i)
		out[i] = models.Candle{
			Bucket: base.Add(time.Duration(i) * time.Hour),
			Symbol: "BTCUSDT",
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 100 + float64(i%7),
		}
	}
	return out
}

func newTestTrainJob(store domrepo.ArtifactStore, locks pkgcache.Service) *TrainJob {
	trainer := NewTrainer(features.NewEngine(features.Config{}), store, nil, 0.2)
	return NewTrainJob(&memCandleStore{candles: trainableCandles(200)}, trainer, locks, nil)
}

func TestTrainJobTrainsAndSaves(t *testing.T) {
	store := newMemArtifactStore()
	job := newTestTrainJob(store, pkgcache.NewMemoryCache())

	err := job.Handle(context.Background(), TrainJobPayload{
		Instrument: "BTCUSDT",
		Timeframe:  "1h",
		Kind:       models.KindGradientBoosting,
		Candles:    200,
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	if _, err := store.Load(context.Background(), "btcusdt_gbt"); err != nil {
		t.Fatalf("expected artifact saved under the default id: %v", err)
	}
}

func TestTrainJobSkipsWhenLocked(t *testing.T) {
	store := newMemArtifactStore()
	locks := pkgcache.NewMemoryCache()
	job := newTestTrainJob(store, locks)

	ok, err := locks.TryLock(context.Background(), "train:btcusdt_gbt", time.Minute)
	if err != nil || !ok {
		t.Fatalf("prelock: ok=%v err=%v", ok, err)
	}

	err = job.Handle(context.Background(), TrainJobPayload{
		Instrument: "BTCUSDT",
		Kind:       models.KindGradientBoosting,
		Candles:    200,
	})
	if err != nil {
		t.Fatalf("locked handle should skip, got %v", err)
	}
	if _, err := store.Load(context.Background(), "btcusdt_gbt"); err == nil {
		t.Fatalf("locked handle must not train")
	}
}

func TestTrainJobReleasesLock(t *testing.T) {
	store := newMemArtifactStore()
	locks := pkgcache.NewMemoryCache()
	job := newTestTrainJob(store, locks)

	payload := TrainJobPayload{Instrument: "BTCUSDT", Kind: models.KindGradientBoosting, Candles: 200}
	if err := job.Handle(context.Background(), payload); err != nil {
		t.Fatalf("first handle: %v", err)
	}

	ok, err := locks.TryLock(context.Background(), "train:btcusdt_gbt", time.Minute)
	if err != nil {
		t.Fatalf("trylock after handle: %v", err)
	}
	if !ok {
		t.Fatalf("handle finished but lock is still held")
	}
}

func TestTrainJobRejectsEmptyInstrument(t *testing.T) {
	job := newTestTrainJob(newMemArtifactStore(), nil)
	if err := job.Handle(context.Background(), TrainJobPayload{}); err == nil {
		t.Fatalf("expected error for missing instrument")
	}
}
