package ml

import (
	"errors"
	"math"
	"testing"

	"FinCast/internal/domain/models"
)

func TestScalerFitTransform(t *testing.T) {
	X := [][]float64{{1, 10}, {2, 20}, {3, 30}, {4, 40}}

	var s StandardScaler
	if err := s.Fit(X); err != nil {
		t.Fatalf("fit: %v", err)
	}
	out := s.Transform(X)

	for j := 0; j < 2; j++ {
		sum, sumSq := 0.0, 0.0
		for i := range out {
			sum += out[i][j]
			sumSq += out[i][j] * out[i][j]
		}
		mean := sum / float64(len(out))
		variance := sumSq/float64(len(out)) - mean*mean
		if math.Abs(mean) > 1e-9 {
			t.Fatalf("column %d mean %v after transform", j, mean)
		}
		if math.Abs(variance-1) > 1e-9 {
			t.Fatalf("column %d variance %v after transform", j, variance)
		}
	}
}

func TestScalerTransformDoesNotMutateInput(t *testing.T) {
	X := [][]float64{{1}, {3}}
	var s StandardScaler
	if err := s.Fit(X); err != nil {
		t.Fatalf("fit: %v", err)
	}
	_ = s.Transform(X)
	if X[0][0] != 1 || X[1][0] != 3 {
		t.Fatalf("transform mutated its input: %v", X)
	}
}

func TestScalerZeroVarianceColumn(t *testing.T) {
	X := [][]float64{{5, 1}, {5, 2}, {5, 3}}

	var s StandardScaler
	if err := s.Fit(X); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if s.Scale[0] != 1 {
		t.Fatalf("zero-variance column scale %v, want 1", s.Scale[0])
	}
	row := s.TransformRow([]float64{5, 2})
	if row[0] != 0 {
		t.Fatalf("zero-variance column transformed to %v, want 0", row[0])
	}
}

func TestScalerEmpty(t *testing.T) {
	var s StandardScaler
	if err := s.Fit(nil); !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestScalerStateRoundTrip(t *testing.T) {
	X := [][]float64{{1, 10}, {2, 20}, {3, 30}}
	var s StandardScaler
	if err := s.Fit(X); err != nil {
		t.Fatalf("fit: %v", err)
	}

	restored, err := ScalerFromState(s.State())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	in := []float64{2.5, 25}
	a := s.TransformRow(in)
	b := restored.TransformRow(in)
	for j := range a {
		if a[j] != b[j] {
			t.Fatalf("restored scaler differs at column %d: %v vs %v", j, a[j], b[j])
		}
	}
}

func TestScalerFromBadState(t *testing.T) {
	_, err := ScalerFromState(models.ScalerState{Mean: []float64{1, 2}, Scale: []float64{1}})
	if !errors.Is(err, models.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if _, err := ScalerFromState(models.ScalerState{}); !errors.Is(err, models.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch for empty state, got %v", err)
	}
}

// A value that the seeded split assigns to the test set must not influence
// the fitted scaler.
func TestScalerIgnoresTestSplitValues(t *testing.T) {
	const n = 40
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		// first column is a unique marker so rows can be traced across splits
		X[i] = []float64{float64(i), float64(i%7) + 0.5}
		y[i] = i % 2
	}

	_, XTest, _, _, err := StratifiedSplit(X, y, 0.25, DefaultSeed)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(XTest) == 0 {
		t.Fatal("empty test split")
	}
	perturbIdx := int(XTest[0][0])

	X2 := make([][]float64, n)
	for i := range X {
		X2[i] = append([]float64(nil), X[i]...)
	}
	X2[perturbIdx][1] += 1e6

	XTrain1, _, _, _, err := StratifiedSplit(X, y, 0.25, DefaultSeed)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	XTrain2, _, _, _, err := StratifiedSplit(X2, y, 0.25, DefaultSeed)
	if err != nil {
		t.Fatalf("split perturbed: %v", err)
	}

	var s1, s2 StandardScaler
	if err := s1.Fit(XTrain1); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if err := s2.Fit(XTrain2); err != nil {
		t.Fatalf("fit perturbed: %v", err)
	}

	st1, st2 := s1.State(), s2.State()
	for j := range st1.Mean {
		if st1.Mean[j] != st2.Mean[j] || st1.Scale[j] != st2.Scale[j] {
			t.Fatalf("scaler changed with test-only perturbation at column %d: mean %v vs %v, scale %v vs %v",
				j, st1.Mean[j], st2.Mean[j], st1.Scale[j], st2.Scale[j])
		}
	}
}
