package repository

import (
	"context"
	"database/sql"
	"fmt"

	"FinCast/internal/domain/models"
	"FinCast/internal/domain/repository"
)

// CHResultLog records predictions and backtest runs in ClickHouse for
// later inspection. Logging is best-effort history, not part of the
// forecast contract.
type CHResultLog struct {
	db *sql.DB
}

func NewCHResultLog(db *sql.DB) repository.ResultLog {
	return &CHResultLog{db: db}
}

func (l *CHResultLog) LogPrediction(ctx context.Context, p *models.PredictionResult) error {
	if p == nil {
		return fmt.Errorf("prediction is nil")
	}
	const q = `INSERT INTO fincast.predictions
        (symbol, ts, signal, label, confidence, alert, model_kind, artifact_version)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	alert := uint8(0)
	if p.AlertTriggered {
		alert = 1
	}
	_, err := l.db.ExecContext(ctx, q,
		p.Instrument,
		p.Timestamp,
		string(p.Signal),
		int8(p.Label),
		p.Confidence,
		alert,
		string(p.ModelKind),
		p.ArtifactVersion,
	)
	if err != nil {
		return fmt.Errorf("log prediction: %w", err)
	}
	return nil
}

func (l *CHResultLog) LogBacktest(ctx context.Context, b *models.BacktestResult) error {
	if b == nil {
		return fmt.Errorf("backtest result is nil")
	}
	const q = `INSERT INTO fincast.backtest_runs
        (run_id, symbol, artifact_id, model_kind, started_at, duration_seconds,
         total_backtests, wins, win_rate,
         bull_predictions, bear_predictions, bull_actuals, bear_actuals,
         bull_precision, bull_recall, bear_precision, bear_recall,
         average_confidence, high_conf_trades, high_conf_wins, high_conf_win_rate, skipped_rows)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := l.db.ExecContext(ctx, q,
		b.RunID,
		b.Instrument,
		b.ArtifactID,
		string(b.Kind),
		b.StartedAt,
		b.Duration,
		b.TotalBacktests,
		b.Wins,
		b.WinRate,
		b.BullPredictions,
		b.BearPredictions,
		b.BullActuals,
		b.BearActuals,
		b.BullPrecision,
		b.BullRecall,
		b.BearPrecision,
		b.BearRecall,
		b.AverageConfidence,
		b.HighConfidenceTrades,
		b.HighConfidenceWins,
		b.HighConfidenceWinRate,
		b.SkippedRows,
	)
	if err != nil {
		return fmt.Errorf("log backtest: %w", err)
	}
	return nil
}
