package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	"FinCast/internal/services/features"
)

// memArtifactStore is an in-memory ArtifactStore for tests.
type memArtifactStore struct {
	mu        sync.Mutex
	artifacts map[string]*models.ModelArtifact
}

func newMemArtifactStore() *memArtifactStore {
	return &memArtifactStore{artifacts: make(map[string]*models.ModelArtifact)}
}

func (s *memArtifactStore) Save(_ context.Context, a *models.ModelArtifact) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.artifacts[a.ID] = &cp
	return "mem://" + a.ID, nil
}

func (s *memArtifactStore) Load(_ context.Context, id string) (*models.ModelArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.artifacts[id]
	if !ok {
		return nil, fmt.Errorf("artifact %q: %w", id, models.ErrArtifactNotFound)
	}
	cp := *a
	return &cp, nil
}

func (s *memArtifactStore) List(_ context.Context) ([]models.ArtifactInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ArtifactInfo, 0, len(s.artifacts))
	for _, a := range s.artifacts {
		out = append(out, a.Info())
	}
	return out, nil
}

var _ domrepo.ArtifactStore = (*memArtifactStore)(nil)

// memResultLog records logged predictions and backtests.
type memResultLog struct {
	mu          sync.Mutex
	predictions []models.PredictionResult
	backtests   []models.BacktestResult
}

func (l *memResultLog) LogPrediction(_ context.Context, p *models.PredictionResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.predictions = append(l.predictions, *p)
	return nil
}

func (l *memResultLog) LogBacktest(_ context.Context, b *models.BacktestResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.backtests = append(l.backtests, *b)
	return nil
}

var _ domrepo.ResultLog = (*memResultLog)(nil)

// memSummaryPublisher records published summaries.
type memSummaryPublisher struct {
	mu        sync.Mutex
	summaries []models.PredictionSummary
}

func (p *memSummaryPublisher) PublishSummary(_ context.Context, s *models.PredictionSummary) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.summaries = append(p.summaries, *s)
	return nil
}

func (p *memSummaryPublisher) Close() error { return nil }

var _ domrepo.SummaryPublisher = (*memSummaryPublisher)(nil)

// makeFeatureRows builds fully defined rows with the given close sequence so
// labels follow the close direction deterministically.
func makeFeatureRows(closes []float64) []models.FeatureRow {
	base := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	rows := make([]models.FeatureRow, len(closes))
	for i, c := range closes {
		rows[i] = models.FeatureRow{
			Candle: models.Candle{
				Bucket: base.Add(time.Duration(i) * time.Hour),
				Symbol: "BTCUSDT",
				Open:   c - 0.5,
				High:   c + 1,
				Low:    c - 1,
				Close:  c,
				Volume: 100 + float64(i%7),
			},
			SMA20:       c - 0.2,
			SMA50:       c - 0.4,
			RSI:         40 + float64(i%30),
			MACD:        0.1 * float64(i%9),
			MACDSignal:  0.05 * float64(i%9),
			MACDHist:    0.05 * float64(i%9),
			BBUpper:     c + 2,
			BBMiddle:    c,
			BBLower:     c - 2,
			BBPosition:  0.5,
			VolumeRatio: 1 + 0.01*float64(i%5),
			HLRatio:     2 / c,
			CORatio:     0.5 / c,
		}
	}
	return rows
}

// alternatingRows yields a balanced two-class label set: closes zig-zag so
// every other transition is up.
func alternatingRows(n int) []models.FeatureRow {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i%2)*2 + 0.1*float64(i)
	}
	return makeFeatureRows(closes)
}

func trainTestArtifact(store domrepo.ArtifactStore, instrument string, kind models.ModelKind) (*models.TrainResult, error) {
	trainer := NewTrainer(features.NewEngine(features.Config{}), store, nil, 0.2)
	return trainer.TrainFromFeatures(context.Background(), instrument, alternatingRows(60), kind, "")
}
