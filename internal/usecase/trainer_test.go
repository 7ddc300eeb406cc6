package usecase

import (
	"context"
	"errors"
	"testing"

	"FinCast/internal/domain/models"
	"FinCast/internal/services/features"
)

func TestTrainFromFeaturesPersistsArtifact(t *testing.T) {
	store := newMemArtifactStore()

	res, err := trainTestArtifact(store, "BTCUSDT", models.KindGradientBoosting)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if res.Status != models.TrainStatusSuccess {
		t.Fatalf("status %q", res.Status)
	}
	if res.ArtifactID != "btcusdt_gbt" {
		t.Fatalf("artifact id %q, want btcusdt_gbt", res.ArtifactID)
	}
	if res.Version == "" {
		t.Fatalf("expected a version")
	}
	if res.FeatureRows != 59 {
		t.Fatalf("trained on %d rows, the unlabeled final row should be dropped", res.FeatureRows)
	}
	if res.Metrics.TestSize == 0 || res.Metrics.TrainSize == 0 {
		t.Fatalf("empty split sizes: %+v", res.Metrics)
	}

	artifact, err := store.Load(context.Background(), res.ArtifactID)
	if err != nil {
		t.Fatalf("load saved artifact: %v", err)
	}
	if !artifact.SchemaMatches(models.FeatureSchema()) {
		t.Fatalf("artifact schema %v does not match engine schema", artifact.Schema)
	}
	if len(artifact.Scaler.Mean) != len(artifact.Schema) {
		t.Fatalf("scaler has %d columns for %d features", len(artifact.Scaler.Mean), len(artifact.Schema))
	}
	if artifact.Version != res.Version {
		t.Fatalf("stored version %q, result version %q", artifact.Version, res.Version)
	}
}

func TestTrainEachKind(t *testing.T) {
	for _, kind := range []models.ModelKind{
		models.KindGradientBoosting,
		models.KindRandomForest,
		models.KindKernelSVM,
	} {
		store := newMemArtifactStore()
		res, err := trainTestArtifact(store, "ETHUSDT", kind)
		if err != nil {
			t.Fatalf("train %s: %v", kind, err)
		}
		if res.Kind != kind {
			t.Fatalf("result kind %s, want %s", res.Kind, kind)
		}
	}
}

func TestTrainUnknownKind(t *testing.T) {
	store := newMemArtifactStore()
	trainer := NewTrainer(features.NewEngine(features.Config{}), store, nil, 0.2)

	_, err := trainer.TrainFromFeatures(context.Background(), "BTCUSDT", alternatingRows(60), "perceptron", "")
	if !errors.Is(err, models.ErrUnknownModelKind) {
		t.Fatalf("expected ErrUnknownModelKind, got %v", err)
	}
}

func TestTrainTooFewRows(t *testing.T) {
	store := newMemArtifactStore()
	trainer := NewTrainer(features.NewEngine(features.Config{}), store, nil, 0.2)

	_, err := trainer.TrainFromFeatures(context.Background(), "BTCUSDT", alternatingRows(5), models.KindGradientBoosting, "")
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestTrainExplicitArtifactID(t *testing.T) {
	store := newMemArtifactStore()
	trainer := NewTrainer(features.NewEngine(features.Config{}), store, nil, 0.2)

	res, err := trainer.TrainFromFeatures(context.Background(), "BTCUSDT", alternatingRows(60), models.KindGradientBoosting, "custom_id")
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if res.ArtifactID != "custom_id" {
		t.Fatalf("artifact id %q, want custom_id", res.ArtifactID)
	}
	if _, err := store.Load(context.Background(), "custom_id"); err != nil {
		t.Fatalf("load custom artifact: %v", err)
	}
}

func TestTrainRetrainBumpsVersion(t *testing.T) {
	store := newMemArtifactStore()

	first, err := trainTestArtifact(store, "BTCUSDT", models.KindGradientBoosting)
	if err != nil {
		t.Fatalf("first train: %v", err)
	}
	second, err := trainTestArtifact(store, "BTCUSDT", models.KindGradientBoosting)
	if err != nil {
		t.Fatalf("second train: %v", err)
	}
	if first.Version == second.Version {
		t.Fatalf("retrain reused version %q", first.Version)
	}
}
