package ml

import (
	"errors"
	"math"
	"testing"

	"FinCast/internal/domain/models"
)

// separable returns a linearly separable two-feature dataset: class 1 when
// the first feature is positive.
func separable(n int) ([][]float64, []int) {
	X := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		sign := 1.0
		if i%2 == 0 {
			sign = -1
		}
		X[i] = []float64{sign * (1 + float64(i%7)*0.3), float64(i%5) * 0.1}
		if sign > 0 {
			y[i] = 1
		}
	}
	return X, y
}

func fitKind(t *testing.T, kind models.ModelKind, X [][]float64, y []int) Classifier {
	t.Helper()
	clf, err := New(kind)
	if err != nil {
		t.Fatalf("new %s: %v", kind, err)
	}
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("fit %s: %v", kind, err)
	}
	return clf
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New(models.ModelKind("perceptron"))
	if !errors.Is(err, models.ErrUnknownModelKind) {
		t.Fatalf("expected ErrUnknownModelKind, got %v", err)
	}
}

func TestClassifiersLearnSeparableData(t *testing.T) {
	X, y := separable(60)

	for _, kind := range []models.ModelKind{
		models.KindGradientBoosting,
		models.KindRandomForest,
		models.KindKernelSVM,
	} {
		clf := fitKind(t, kind, X, y)

		correct := 0
		for i := range X {
			if clf.Predict(X[i]) == y[i] {
				correct++
			}
		}
		acc := float64(correct) / float64(len(X))
		if acc < 0.9 {
			t.Fatalf("%s: training accuracy %v on separable data", kind, acc)
		}
	}
}

func TestPredictProbaIsDistribution(t *testing.T) {
	X, y := separable(60)

	for _, kind := range []models.ModelKind{
		models.KindGradientBoosting,
		models.KindRandomForest,
		models.KindKernelSVM,
	} {
		clf := fitKind(t, kind, X, y)

		proba, ok := clf.PredictProba(X[1])
		if !ok {
			// Platt scaling can fail to converge; callers fall back to an
			// uninformative confidence in that case.
			if kind != models.KindKernelSVM {
				t.Fatalf("%s: expected probability estimates", kind)
			}
			continue
		}
		if len(proba) != 2 {
			t.Fatalf("%s: proba has %d entries", kind, len(proba))
		}
		sum := proba[0] + proba[1]
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("%s: probabilities sum to %v", kind, sum)
		}
		if proba[0] < 0 || proba[0] > 1 || proba[1] < 0 || proba[1] > 1 {
			t.Fatalf("%s: probabilities out of range: %v", kind, proba)
		}
	}
}

func TestStateRestoreRoundTrip(t *testing.T) {
	X, y := separable(60)

	for _, kind := range []models.ModelKind{
		models.KindGradientBoosting,
		models.KindRandomForest,
		models.KindKernelSVM,
	} {
		clf := fitKind(t, kind, X, y)

		st, err := clf.State()
		if err != nil {
			t.Fatalf("%s state: %v", kind, err)
		}
		if st.Kind != kind {
			t.Fatalf("state kind %s, want %s", st.Kind, kind)
		}

		restored, err := Restore(st)
		if err != nil {
			t.Fatalf("%s restore: %v", kind, err)
		}
		for i := range X {
			if restored.Predict(X[i]) != clf.Predict(X[i]) {
				t.Fatalf("%s: restored model disagrees on row %d", kind, i)
			}
		}
	}
}

func TestRestoreUnknownKind(t *testing.T) {
	_, err := Restore(models.ClassifierState{Kind: "perceptron", Payload: []byte("{}")})
	if !errors.Is(err, models.ErrUnknownModelKind) {
		t.Fatalf("expected ErrUnknownModelKind, got %v", err)
	}
}

func TestFitRejectsEmptyInput(t *testing.T) {
	for _, kind := range []models.ModelKind{
		models.KindGradientBoosting,
		models.KindRandomForest,
		models.KindKernelSVM,
	} {
		clf, err := New(kind)
		if err != nil {
			t.Fatalf("new %s: %v", kind, err)
		}
		if err := clf.Fit(nil, nil); err == nil {
			t.Fatalf("%s: expected error fitting empty data", kind)
		}
	}
}

func TestSVMFitSingleSample(t *testing.T) {
	clf := NewKernelSVM(KernelSVMConfig{})
	if err := clf.Fit([][]float64{{1, 2}}, []int{1}); err == nil {
		t.Fatalf("expected error fitting a single sample")
	}
}
