package service

import (
	"context"

	"FinCast/internal/domain/models"
)

// ModelTrainer fits, evaluates and persists one classifier artifact per run.
type ModelTrainer interface {
	TrainFromCandles(ctx context.Context, instrument string, candles []models.Candle, kind models.ModelKind, artifactID string) (*models.TrainResult, error)
}

// PredictionEngine scores the most recent feature rows with bound artifacts.
type PredictionEngine interface {
	LoadModel(ctx context.Context, instrument, artifactID string) error
	PredictNextDay(ctx context.Context, rows []models.FeatureRow, instrument string, threshold float64) (*models.PredictionResult, error)
	PredictBatch(ctx context.Context, features map[string][]models.FeatureRow, threshold float64) []models.PredictionResult
	Summarize(results []models.PredictionResult) *models.PredictionSummary
}

// Backtester replays one artifact over a historical feature table.
type Backtester interface {
	Run(ctx context.Context, instrument, artifactID string, rows []models.FeatureRow) (*models.BacktestResult, error)
}
