package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	domsvc "FinCast/internal/domain/service"
	"FinCast/internal/services/features"
	"FinCast/internal/services/ml"
	applogger "FinCast/pkg/logger"

	"github.com/oklog/ulid/v2"
)

// Trainer runs the feature -> label -> split -> fit -> evaluate -> persist
// pipeline and produces one immutable artifact per run.
type Trainer struct {
	engine    *features.Engine
	store     domrepo.ArtifactStore
	l         *applogger.Logger
	testRatio float64
	seed      int64
}

// minTrainRows is the smallest feature table the training path accepts.
// Below this a stratified split has no chance of producing a sensible
// held-out set.
const minTrainRows = 10

func NewTrainer(engine *features.Engine, store domrepo.ArtifactStore, l *applogger.Logger, testRatio float64) *Trainer {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	return &Trainer{
		engine:    engine,
		store:     store,
		l:         l,
		testRatio: testRatio,
		seed:      ml.DefaultSeed,
	}
}

var _ domsvc.ModelTrainer = (*Trainer)(nil)

// DefaultArtifactID derives the stable artifact key used when the caller
// does not name one.
func DefaultArtifactID(instrument string, kind models.ModelKind) string {
	return fmt.Sprintf("%s_%s", strings.ToLower(instrument), kind)
}

// TrainFromCandles computes features from the candle sequence and trains on
// them. Candle sequences shorter than the warm-up window fail with
// InsufficientData before any model work starts.
func (t *Trainer) TrainFromCandles(ctx context.Context, instrument string, candles []models.Candle, kind models.ModelKind, artifactID string) (*models.TrainResult, error) {
	rows, err := t.engine.Compute(candles)
	if err != nil {
		return nil, fmt.Errorf("features for %s: %w", instrument, err)
	}
	return t.TrainFromFeatures(ctx, instrument, rows, kind, artifactID)
}

// TrainFromFeatures runs the training pipeline on a prepared feature table.
func (t *Trainer) TrainFromFeatures(ctx context.Context, instrument string, rows []models.FeatureRow, kind models.ModelKind, artifactID string) (*models.TrainResult, error) {
	start := time.Now()
	if !models.IsValidModelKind(kind) {
		return nil, fmt.Errorf("model kind %q: %w", kind, models.ErrUnknownModelKind)
	}
	if artifactID == "" {
		artifactID = DefaultArtifactID(instrument, kind)
	}
	if len(rows) < minTrainRows {
		return nil, fmt.Errorf("%d feature rows, need %d to train: %w", len(rows), minTrainRows, models.ErrInsufficientData)
	}

	// Labels come from the next row's close; the last row has none and is
	// dropped by the alignment.
	labels := ml.BuildLabels(rows)
	rows, labels = ml.Align(rows, labels)

	schema := t.engine.Schema()
	X, err := ml.Matrix(rows, schema)
	if err != nil {
		return nil, fmt.Errorf("feature matrix: %w", err)
	}

	XTrain, XTest, yTrain, yTest, err := ml.StratifiedSplit(X, labels, t.testRatio, t.seed)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", instrument, err)
	}

	// The scaler sees the training split only; the test split is
	// transformed with the parameters fitted there.
	scaler := &ml.StandardScaler{}
	if err := scaler.Fit(XTrain); err != nil {
		return nil, fmt.Errorf("scaler fit: %w", err)
	}
	XTrain = scaler.Transform(XTrain)
	XTest = scaler.Transform(XTest)

	clf, err := ml.New(kind)
	if err != nil {
		return nil, err
	}
	if err := clf.Fit(XTrain, yTrain); err != nil {
		return nil, fmt.Errorf("fit %s %s: %w", instrument, kind, err)
	}

	yPred := make([]int, len(XTest))
	for i := range XTest {
		yPred[i] = clf.Predict(XTest[i])
	}
	metrics := ml.Evaluate(yTest, yPred)
	metrics.TrainSize = len(XTrain)

	state, err := clf.State()
	if err != nil {
		return nil, fmt.Errorf("classifier state: %w", err)
	}
	artifact := &models.ModelArtifact{
		ID:         artifactID,
		Instrument: instrument,
		Version:    ulid.Make().String(),
		Kind:       kind,
		CreatedAt:  time.Now().UTC(),
		Schema:     schema,
		Scaler:     scaler.State(),
		Classifier: state,
		Metrics:    metrics,
	}
	location, err := t.store.Save(ctx, artifact)
	if err != nil {
		return nil, fmt.Errorf("persist artifact %s: %w", artifactID, err)
	}

	if t.l != nil {
		t.l.Info("training complete",
			applogger.String("instrument", instrument),
			applogger.String("artifact", artifactID),
			applogger.String("kind", string(kind)),
			applogger.Int("rows", len(rows)),
			applogger.Any("accuracy", metrics.Accuracy),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}

	return &models.TrainResult{
		Status:       models.TrainStatusSuccess,
		Instrument:   instrument,
		ArtifactID:   artifactID,
		Version:      artifact.Version,
		Kind:         kind,
		Metrics:      metrics,
		ArtifactPath: location,
		FeatureRows:  len(rows),
	}, nil
}
