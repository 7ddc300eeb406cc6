package repository

import (
	"context"
	"time"

	"FinCast/internal/domain/models"
)

type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Candle, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type Publisher interface {
	Publish(ctx context.Context, c *models.Candle) error
	PublishBatch(ctx context.Context, candles []*models.Candle) error
	Close() error
}

// SummaryPublisher hands prediction summaries to the alert collaborator.
// Delivery channels (mail, chat, webhooks) live outside this service.
type SummaryPublisher interface {
	PublishSummary(ctx context.Context, s *models.PredictionSummary) error
	Close() error
}

type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, c *models.Candle) error
	StoreBatch(ctx context.Context, candles []*models.Candle) error
	Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Candle, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// ResultLog records predictions and backtest runs for later inspection.
type ResultLog interface {
	LogPrediction(ctx context.Context, p *models.PredictionResult) error
	LogBacktest(ctx context.Context, b *models.BacktestResult) error
}

type Metrics interface {
	RecordMessageSent(backend, symbol string)
	RecordError(kind string)
	RecordLastClose(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordPrediction(symbol, signal string, confidence float64)
}
