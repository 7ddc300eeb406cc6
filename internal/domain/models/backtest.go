package models

import "time"

// BacktestResult aggregates a walk-forward replay of one artifact over a
// feature table. Every ratio is 0 when its denominator is 0.
type BacktestResult struct {
	RunID      string    `json:"run_id"`
	Instrument string    `json:"instrument"`
	ArtifactID string    `json:"artifact_id"`
	Kind       ModelKind `json:"model_kind"`
	StartedAt  time.Time `json:"started_at"`
	Duration   float64   `json:"duration_seconds"`

	TotalBacktests int     `json:"total_backtests"`
	Wins           int     `json:"wins"`
	WinRate        float64 `json:"win_rate"`

	BullPredictions int `json:"bull_predictions"`
	BearPredictions int `json:"bear_predictions"`
	BullActuals     int `json:"bull_actuals"`
	BearActuals     int `json:"bear_actuals"`

	BullPrecision float64 `json:"bull_precision"`
	BullRecall    float64 `json:"bull_recall"`
	BearPrecision float64 `json:"bear_precision"`
	BearRecall    float64 `json:"bear_recall"`

	AverageConfidence float64 `json:"average_confidence"`

	HighConfidenceTrades  int     `json:"high_confidence_trades"`
	HighConfidenceWins    int     `json:"high_confidence_wins"`
	HighConfidenceWinRate float64 `json:"high_confidence_win_rate"`

	SkippedRows int `json:"skipped_rows"`
}
