package ml

import (
	"errors"
	"testing"

	"FinCast/internal/domain/models"
)

func balancedSamples(n int) ([][]float64, []int) {
	X := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		X[i] = []float64{float64(i)}
		y[i] = i % 2
	}
	return X, y
}

func TestStratifiedSplitPreservesClassRatio(t *testing.T) {
	X, y := balancedSamples(100)

	XTrain, XTest, yTrain, yTest, err := StratifiedSplit(X, y, 0.2, DefaultSeed)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(XTrain)+len(XTest) != 100 {
		t.Fatalf("split lost samples: %d train + %d test", len(XTrain), len(XTest))
	}
	if len(XTest) != 20 {
		t.Fatalf("test size %d, want 20", len(XTest))
	}
	testPos := 0
	for _, label := range yTest {
		testPos += label
	}
	if testPos != 10 {
		t.Fatalf("test split has %d positives out of %d, want 10", testPos, len(yTest))
	}
	trainPos := 0
	for _, label := range yTrain {
		trainPos += label
	}
	if trainPos != 40 {
		t.Fatalf("train split has %d positives out of %d, want 40", trainPos, len(yTrain))
	}
}

func TestStratifiedSplitReproducible(t *testing.T) {
	X, y := balancedSamples(60)

	_, XTest1, _, _, err := StratifiedSplit(X, y, 0.25, DefaultSeed)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	_, XTest2, _, _, err := StratifiedSplit(X, y, 0.25, DefaultSeed)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	for i := range XTest1 {
		if XTest1[i][0] != XTest2[i][0] {
			t.Fatalf("same seed produced different splits at %d: %v vs %v", i, XTest1[i], XTest2[i])
		}
	}
}

func TestStratifiedSplitOneClassTooSmall(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []int{1, 1, 1, 0}

	_, _, _, _, err := StratifiedSplit(X, y, 0.25, DefaultSeed)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestStratifiedSplitBadInput(t *testing.T) {
	X, y := balancedSamples(10)

	if _, _, _, _, err := StratifiedSplit(X, y[:9], 0.2, DefaultSeed); err == nil {
		t.Fatalf("expected error for mismatched lengths")
	}
	if _, _, _, _, err := StratifiedSplit(X, y, 0, DefaultSeed); err == nil {
		t.Fatalf("expected error for zero test ratio")
	}
	if _, _, _, _, err := StratifiedSplit(X, y, 1, DefaultSeed); err == nil {
		t.Fatalf("expected error for full test ratio")
	}
}

func TestStratifiedSplitKeepsTrainNonEmptyPerClass(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []int{0, 0, 1, 1}

	_, _, yTrain, _, err := StratifiedSplit(X, y, 0.9, DefaultSeed)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	seen := map[int]bool{}
	for _, label := range yTrain {
		seen[label] = true
	}
	if !seen[0] || !seen[1] {
		t.Fatalf("train split lost a class: %v", yTrain)
	}
}
