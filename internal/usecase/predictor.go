package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	domsvc "FinCast/internal/domain/service"
	"FinCast/internal/services/ml"
	applogger "FinCast/pkg/logger"
)

// boundModel is one restored artifact ready to score rows.
type boundModel struct {
	artifact *models.ModelArtifact
	clf      ml.Classifier
	scaler   *ml.StandardScaler
}

// Predictor scores the newest feature rows against per-instrument artifacts.
// Instruments hold independent artifacts; reads of distinct instruments
// never contend beyond the map lock.
type Predictor struct {
	store domrepo.ArtifactStore
	l     *applogger.Logger

	mu     sync.RWMutex
	models map[string]*boundModel

	resultLog domrepo.ResultLog
	metrics   domrepo.Metrics
}

func NewPredictor(store domrepo.ArtifactStore, l *applogger.Logger) *Predictor {
	return &Predictor{
		store:  store,
		l:      l,
		models: make(map[string]*boundModel),
	}
}

var _ domsvc.PredictionEngine = (*Predictor)(nil)

// SetResultLog injects an optional prediction history sink.
func (p *Predictor) SetResultLog(rl domrepo.ResultLog) { p.resultLog = rl }

// SetMetrics injects an optional metrics recorder.
func (p *Predictor) SetMetrics(m domrepo.Metrics) { p.metrics = m }

// LoadModel binds one persisted artifact to one instrument. An artifact
// whose recorded schema disagrees with the current feature schema is
// rejected as drift, never used silently.
func (p *Predictor) LoadModel(ctx context.Context, instrument, artifactID string) error {
	artifact, err := p.store.Load(ctx, artifactID)
	if err != nil {
		return fmt.Errorf("load model for %s: %w", instrument, err)
	}
	if !artifact.SchemaMatches(models.FeatureSchema()) {
		return fmt.Errorf("artifact %s schema drifted from engine schema: %w", artifactID, models.ErrSchemaMismatch)
	}

	clf, err := ml.Restore(artifact.Classifier)
	if err != nil {
		return fmt.Errorf("restore classifier %s: %w", artifactID, err)
	}
	scaler, err := ml.ScalerFromState(artifact.Scaler)
	if err != nil {
		return fmt.Errorf("restore scaler %s: %w", artifactID, err)
	}
	if len(scaler.Mean) != len(artifact.Schema) {
		return fmt.Errorf("artifact %s scaler has %d columns for %d features: %w",
			artifactID, len(scaler.Mean), len(artifact.Schema), models.ErrSchemaMismatch)
	}

	p.mu.Lock()
	p.models[instrument] = &boundModel{artifact: artifact, clf: clf, scaler: scaler}
	p.mu.Unlock()

	if p.l != nil {
		p.l.Info("model bound",
			applogger.String("instrument", instrument),
			applogger.String("artifact", artifactID),
			applogger.String("kind", string(artifact.Kind)),
		)
	}
	return nil
}

func (p *Predictor) bound(instrument string) (*boundModel, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m, ok := p.models[instrument]
	return m, ok
}

// HasModel reports whether an artifact is already bound for the instrument.
func (p *Predictor) HasModel(instrument string) bool {
	_, ok := p.bound(instrument)
	return ok
}

// PredictNextDay scores the single most recent feature row. Columns are
// selected through the artifact's schema, not the caller's, so training
// and inference can never disagree silently. With no bound artifact the
// call fails; it never falls back to a default signal.
func (p *Predictor) PredictNextDay(ctx context.Context, rows []models.FeatureRow, instrument string, threshold float64) (*models.PredictionResult, error) {
	m, ok := p.bound(instrument)
	if !ok {
		return nil, fmt.Errorf("no model bound for %s: %w", instrument, models.ErrArtifactNotFound)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no feature rows for %s: %w", instrument, models.ErrInsufficientData)
	}

	latest := rows[len(rows)-1]
	vec, err := ml.Vector(&latest, m.artifact.Schema)
	if err != nil {
		return nil, fmt.Errorf("feature vector for %s: %w", instrument, err)
	}
	scaled := m.scaler.TransformRow(vec)

	label := m.clf.Predict(scaled)
	confidence := 0.5 // deliberate uninformative sentinel
	if proba, ok := m.clf.PredictProba(scaled); ok {
		confidence = proba[0]
		if proba[1] > confidence {
			confidence = proba[1]
		}
	}

	result := &models.PredictionResult{
		Instrument:      instrument,
		Signal:          models.SignalFromLabel(label),
		Label:           label,
		Confidence:      confidence,
		Sentiment:       models.Sentiment(confidence),
		AlertTriggered:  confidence >= threshold,
		Threshold:       threshold,
		Timestamp:       latest.Bucket,
		ModelKind:       m.artifact.Kind,
		ArtifactVersion: m.artifact.Version,
		FeaturesUsed:    m.artifact.Schema,
	}

	if p.metrics != nil {
		p.metrics.RecordPrediction(instrument, string(result.Signal), confidence)
	}
	if p.resultLog != nil {
		if err := p.resultLog.LogPrediction(ctx, result); err != nil && p.l != nil {
			p.l.Warn("prediction log failed", applogger.Error(err))
		}
	}
	return result, nil
}

// PredictBatch scores each instrument independently and collects only the
// successes; one instrument's failure never aborts the others.
func (p *Predictor) PredictBatch(ctx context.Context, features map[string][]models.FeatureRow, threshold float64) []models.PredictionResult {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		out []models.PredictionResult
	)
	for instrument, rows := range features {
		wg.Add(1)
		go func(instrument string, rows []models.FeatureRow) {
			defer wg.Done()
			res, err := p.PredictNextDay(ctx, rows, instrument, threshold)
			if err != nil {
				if p.l != nil {
					p.l.Warn("batch prediction skipped",
						applogger.String("instrument", instrument),
						applogger.Error(err),
					)
				}
				return
			}
			mu.Lock()
			out = append(out, *res)
			mu.Unlock()
		}(instrument, rows)
	}
	wg.Wait()
	return out
}

// Summarize aggregates a batch of predictions into the value object handed
// to the alert collaborator.
func (p *Predictor) Summarize(results []models.PredictionResult) *models.PredictionSummary {
	s := &models.PredictionSummary{Details: results}
	if len(results) == 0 {
		return s
	}

	var confSum float64
	for _, r := range results {
		s.TotalPredictions++
		if r.Signal == models.SignalBull {
			s.BullSignals++
		} else {
			s.BearSignals++
		}
		if r.AlertTriggered {
			s.TriggeredAlerts++
		}
		confSum += r.Confidence
		if r.Timestamp.After(s.Timestamp) {
			s.Timestamp = r.Timestamp
		}
	}
	s.AverageConfidence = confSum / float64(len(results))
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now().UTC()
	}
	return s
}
