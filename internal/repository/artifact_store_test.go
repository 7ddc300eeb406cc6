package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"FinCast/internal/domain/models"
)

func testArtifact(id string, createdAt time.Time) *models.ModelArtifact {
	return &models.ModelArtifact{
		ID:         id,
		Instrument: "BTCUSDT",
		Version:    "01TEST",
		Kind:       models.KindGradientBoosting,
		CreatedAt:  createdAt,
		Schema:     models.FeatureSchema(),
		Scaler: models.ScalerState{
			Mean:  make([]float64, len(models.FeatureSchema())),
			Scale: []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
		},
		Classifier: models.ClassifierState{Kind: models.KindGradientBoosting, Payload: []byte(`{"init":0}`)},
	}
}

func TestFileArtifactStoreRoundTrip(t *testing.T) {
	store, err := NewFileArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	want := testArtifact("btcusdt_gbt", time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC))

	location, err := store.Save(ctx, want)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(location); err != nil {
		t.Fatalf("saved bundle missing: %v", err)
	}

	got, err := store.Load(ctx, "btcusdt_gbt")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ID != want.ID || got.Version != want.Version || got.Kind != want.Kind {
		t.Fatalf("loaded %+v, want %+v", got, want)
	}
	if !got.SchemaMatches(want.Schema) {
		t.Fatalf("loaded schema %v", got.Schema)
	}
}

func TestFileArtifactStoreUnknownID(t *testing.T) {
	store, err := NewFileArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	_, err = store.Load(context.Background(), "missing")
	if !errors.Is(err, models.ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestFileArtifactStoreRejectsPathSeparators(t *testing.T) {
	store, err := NewFileArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	a := testArtifact("../escape", time.Now())
	if _, err := store.Save(context.Background(), a); err == nil {
		t.Fatalf("expected error for id with path separators")
	}
	a.ID = ""
	if _, err := store.Save(context.Background(), a); err == nil {
		t.Fatalf("expected error for empty id")
	}
}

func TestFileArtifactStoreListNewestFirst(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileArtifactStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	base := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		if _, err := store.Save(ctx, testArtifact(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	// Corrupt and foreign files must not hide the registry.
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write foreign file: %v", err)
	}

	infos, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("listed %d artifacts, want 3", len(infos))
	}
	if infos[0].ID != "new" || infos[2].ID != "old" {
		t.Fatalf("unexpected order: %s %s %s", infos[0].ID, infos[1].ID, infos[2].ID)
	}
}

func TestFileArtifactStoreOverwriteIsAtomicReplace(t *testing.T) {
	store, err := NewFileArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	first := testArtifact("btcusdt_gbt", time.Now().UTC())
	if _, err := store.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := testArtifact("btcusdt_gbt", time.Now().UTC())
	second.Version = "02TEST"
	if _, err := store.Save(ctx, second); err != nil {
		t.Fatalf("resave: %v", err)
	}

	got, err := store.Load(ctx, "btcusdt_gbt")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Version != "02TEST" {
		t.Fatalf("version %q after overwrite, want 02TEST", got.Version)
	}
}
