package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"FinCast/internal/domain/models"
)

func boundPredictor(t *testing.T) (*Predictor, *memArtifactStore) {
	t.Helper()
	store := newMemArtifactStore()
	res, err := trainTestArtifact(store, "BTCUSDT", models.KindGradientBoosting)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	p := NewPredictor(store, nil)
	if err := p.LoadModel(context.Background(), "BTCUSDT", res.ArtifactID); err != nil {
		t.Fatalf("load model: %v", err)
	}
	return p, store
}

func TestPredictWithoutBoundModel(t *testing.T) {
	p := NewPredictor(newMemArtifactStore(), nil)

	_, err := p.PredictNextDay(context.Background(), alternatingRows(10), "BTCUSDT", 0.6)
	if !errors.Is(err, models.ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestLoadModelUnknownArtifact(t *testing.T) {
	p := NewPredictor(newMemArtifactStore(), nil)

	err := p.LoadModel(context.Background(), "BTCUSDT", "missing")
	if !errors.Is(err, models.ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
	if p.HasModel("BTCUSDT") {
		t.Fatalf("failed load must not bind a model")
	}
}

func TestLoadModelRejectsSchemaDrift(t *testing.T) {
	store := newMemArtifactStore()
	res, err := trainTestArtifact(store, "BTCUSDT", models.KindGradientBoosting)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	artifact, err := store.Load(context.Background(), res.ArtifactID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	artifact.Schema = append(artifact.Schema[:len(artifact.Schema)-1], "renamed_column")
	if _, err := store.Save(context.Background(), artifact); err != nil {
		t.Fatalf("save drifted artifact: %v", err)
	}

	p := NewPredictor(store, nil)
	err = p.LoadModel(context.Background(), "BTCUSDT", res.ArtifactID)
	if !errors.Is(err, models.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestPredictNextDayScoresLatestRow(t *testing.T) {
	p, _ := boundPredictor(t)
	rows := alternatingRows(20)

	res, err := p.PredictNextDay(context.Background(), rows, "BTCUSDT", 0.6)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if res.Signal != models.SignalBull && res.Signal != models.SignalBear {
		t.Fatalf("unexpected signal %q", res.Signal)
	}
	if res.Confidence < 0.5 || res.Confidence > 1 {
		t.Fatalf("confidence %v out of [0.5,1]", res.Confidence)
	}
	if !res.Timestamp.Equal(rows[len(rows)-1].Bucket) {
		t.Fatalf("prediction timestamp %v, want latest row %v", res.Timestamp, rows[len(rows)-1].Bucket)
	}
	if res.ArtifactVersion == "" {
		t.Fatalf("expected the artifact version on the result")
	}
}

func TestPredictEmptyRows(t *testing.T) {
	p, _ := boundPredictor(t)

	_, err := p.PredictNextDay(context.Background(), nil, "BTCUSDT", 0.6)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestAlertFollowsThreshold(t *testing.T) {
	p, _ := boundPredictor(t)
	rows := alternatingRows(20)

	for _, threshold := range []float64{0, 0.5, 0.9, 1.01} {
		res, err := p.PredictNextDay(context.Background(), rows, "BTCUSDT", threshold)
		if err != nil {
			t.Fatalf("predict at %v: %v", threshold, err)
		}
		want := res.Confidence >= threshold
		if res.AlertTriggered != want {
			t.Fatalf("threshold %v confidence %v: alert %v", threshold, res.Confidence, res.AlertTriggered)
		}
	}
}

func TestPredictLogsResult(t *testing.T) {
	p, _ := boundPredictor(t)
	log := &memResultLog{}
	p.SetResultLog(log)

	if _, err := p.PredictNextDay(context.Background(), alternatingRows(20), "BTCUSDT", 0.6); err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(log.predictions) != 1 {
		t.Fatalf("logged %d predictions, want 1", len(log.predictions))
	}
}

func TestPredictBatchSkipsFailures(t *testing.T) {
	p, _ := boundPredictor(t)

	results := p.PredictBatch(context.Background(), map[string][]models.FeatureRow{
		"BTCUSDT": alternatingRows(20),
		"ETHUSDT": alternatingRows(20), // no model bound
	}, 0.6)

	if len(results) != 1 {
		t.Fatalf("got %d results, want the unbound instrument skipped", len(results))
	}
	if results[0].Instrument != "BTCUSDT" {
		t.Fatalf("unexpected instrument %q", results[0].Instrument)
	}
}

func TestSummarize(t *testing.T) {
	p := NewPredictor(newMemArtifactStore(), nil)
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)

	s := p.Summarize([]models.PredictionResult{
		{Instrument: "A", Signal: models.SignalBull, Confidence: 0.8, AlertTriggered: true, Timestamp: now},
		{Instrument: "B", Signal: models.SignalBear, Confidence: 0.6, Timestamp: now.Add(time.Hour)},
		{Instrument: "C", Signal: models.SignalBull, Confidence: 0.7, AlertTriggered: true, Timestamp: now.Add(-time.Hour)},
	})

	if s.TotalPredictions != 3 || s.BullSignals != 2 || s.BearSignals != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.TriggeredAlerts != 2 {
		t.Fatalf("triggered alerts %d, want 2", s.TriggeredAlerts)
	}
	if math.Abs(s.AverageConfidence-0.7) > 1e-9 {
		t.Fatalf("average confidence %v, want 0.7", s.AverageConfidence)
	}
	if !s.Timestamp.Equal(now.Add(time.Hour)) {
		t.Fatalf("summary timestamp %v, want newest prediction", s.Timestamp)
	}
}

func TestSummarizeStampsReportTime(t *testing.T) {
	p := NewPredictor(newMemArtifactStore(), nil)
	s := p.Summarize([]models.PredictionResult{
		{Instrument: "A", Signal: models.SignalBull, Confidence: 0.8},
	})
	if s.Timestamp.IsZero() {
		t.Fatalf("summary timestamp left at zero for detail rows without timestamps")
	}
}

func TestSummarizeEmpty(t *testing.T) {
	p := NewPredictor(newMemArtifactStore(), nil)
	s := p.Summarize(nil)
	if s.TotalPredictions != 0 || s.AverageConfidence != 0 {
		t.Fatalf("unexpected summary for empty batch: %+v", s)
	}
}
