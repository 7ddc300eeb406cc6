package usecase

import (
	"context"
	"fmt"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	domsvc "FinCast/internal/domain/service"
	"FinCast/internal/services/ml"
	applogger "FinCast/pkg/logger"

	"github.com/oklog/ulid/v2"
)

// highConfidenceThreshold is the fixed cut for the high-confidence bucket
// of a backtest run. It is independent of the caller-supplied alert
// threshold on the prediction path.
const highConfidenceThreshold = 0.7

// Backtester replays one fixed artifact over a historical feature table,
// one step ahead at a time.
type Backtester struct {
	store domrepo.ArtifactStore
	l     *applogger.Logger

	resultLog domrepo.ResultLog
}

func NewBacktester(store domrepo.ArtifactStore, l *applogger.Logger) *Backtester {
	return &Backtester{store: store, l: l}
}

var _ domsvc.Backtester = (*Backtester)(nil)

// SetResultLog injects an optional backtest history sink.
func (b *Backtester) SetResultLog(rl domrepo.ResultLog) { b.resultLog = rl }

// Run walks the feature table pairwise: row i is scored exactly as the
// prediction path scores it, row i+1 supplies the actual direction. A
// failing row is logged and skipped; the run itself only fails when the
// artifact cannot be used at all or the table is too short to pair.
func (b *Backtester) Run(ctx context.Context, instrument, artifactID string, rows []models.FeatureRow) (*models.BacktestResult, error) {
	started := time.Now()

	artifact, err := b.store.Load(ctx, artifactID)
	if err != nil {
		return nil, fmt.Errorf("backtest %s: %w", instrument, err)
	}
	if !artifact.SchemaMatches(models.FeatureSchema()) {
		return nil, fmt.Errorf("artifact %s schema drifted from engine schema: %w", artifactID, models.ErrSchemaMismatch)
	}
	clf, err := ml.Restore(artifact.Classifier)
	if err != nil {
		return nil, fmt.Errorf("restore classifier %s: %w", artifactID, err)
	}
	scaler, err := ml.ScalerFromState(artifact.Scaler)
	if err != nil {
		return nil, fmt.Errorf("restore scaler %s: %w", artifactID, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%d feature rows, need 2 to pair: %w", len(rows), models.ErrInsufficientData)
	}

	res := &models.BacktestResult{
		RunID:      ulid.Make().String(),
		Instrument: instrument,
		ArtifactID: artifactID,
		Kind:       artifact.Kind,
		StartedAt:  started.UTC(),
	}

	var (
		confSum        float64
		bullTP, bearTP int
	)
	for i := 0; i < len(rows)-1; i++ {
		actual := 0
		if rows[i+1].Close > rows[i].Close {
			actual = 1
		}

		vec, err := ml.Vector(&rows[i], artifact.Schema)
		if err != nil {
			res.SkippedRows++
			if b.l != nil {
				b.l.Warn("backtest row skipped",
					applogger.String("instrument", instrument),
					applogger.Int("row", i),
					applogger.Error(err),
				)
			}
			continue
		}
		scaled := scaler.TransformRow(vec)

		predicted := clf.Predict(scaled)
		confidence := 0.5
		if proba, ok := clf.PredictProba(scaled); ok {
			confidence = proba[0]
			if proba[1] > confidence {
				confidence = proba[1]
			}
		}

		res.TotalBacktests++
		confSum += confidence
		win := predicted == actual
		if win {
			res.Wins++
		}
		if predicted == 1 {
			res.BullPredictions++
			if actual == 1 {
				bullTP++
			}
		} else {
			res.BearPredictions++
			if actual == 0 {
				bearTP++
			}
		}
		if actual == 1 {
			res.BullActuals++
		} else {
			res.BearActuals++
		}
		if confidence >= highConfidenceThreshold {
			res.HighConfidenceTrades++
			if win {
				res.HighConfidenceWins++
			}
		}
	}

	res.WinRate = safeRatio(res.Wins, res.TotalBacktests)
	res.BullPrecision = safeRatio(bullTP, res.BullPredictions)
	res.BullRecall = safeRatio(bullTP, res.BullActuals)
	res.BearPrecision = safeRatio(bearTP, res.BearPredictions)
	res.BearRecall = safeRatio(bearTP, res.BearActuals)
	if res.TotalBacktests > 0 {
		res.AverageConfidence = confSum / float64(res.TotalBacktests)
	}
	res.HighConfidenceWinRate = safeRatio(res.HighConfidenceWins, res.HighConfidenceTrades)
	res.Duration = time.Since(started).Seconds()

	if b.resultLog != nil {
		if err := b.resultLog.LogBacktest(ctx, res); err != nil && b.l != nil {
			b.l.Warn("backtest log failed", applogger.Error(err))
		}
	}
	if b.l != nil {
		b.l.Info("backtest complete",
			applogger.String("instrument", instrument),
			applogger.String("artifact", artifactID),
			applogger.Int("total", res.TotalBacktests),
			applogger.Any("win_rate", res.WinRate),
		)
	}
	return res, nil
}

func safeRatio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
