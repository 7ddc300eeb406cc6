package ml

import (
	"math"
	"testing"
)

func TestEvaluateKnownConfusion(t *testing.T) {
	yTrue := []int{1, 1, 1, 0, 0, 0, 1, 0}
	yPred := []int{1, 1, 0, 0, 1, 0, 1, 0}

	m := Evaluate(yTrue, yPred)
	if m.Confusion[1][1] != 3 || m.Confusion[1][0] != 1 || m.Confusion[0][1] != 1 || m.Confusion[0][0] != 3 {
		t.Fatalf("unexpected confusion %v", m.Confusion)
	}
	if m.Accuracy != 0.75 {
		t.Fatalf("accuracy %v, want 0.75", m.Accuracy)
	}
	if m.Precision != 0.75 || m.Recall != 0.75 {
		t.Fatalf("precision %v recall %v, want 0.75 each", m.Precision, m.Recall)
	}
	if math.Abs(m.F1-0.75) > 1e-12 {
		t.Fatalf("f1 %v, want 0.75", m.F1)
	}
	if m.TestSize != 8 {
		t.Fatalf("test size %d, want 8", m.TestSize)
	}
}

func TestEvaluateNoPositivePredictions(t *testing.T) {
	m := Evaluate([]int{1, 0, 1}, []int{0, 0, 0})
	if m.Precision != 0 {
		t.Fatalf("precision %v with zero predicted positives, want 0", m.Precision)
	}
	if m.Recall != 0 {
		t.Fatalf("recall %v, want 0", m.Recall)
	}
	if m.F1 != 0 {
		t.Fatalf("f1 %v, want 0", m.F1)
	}
}

func TestEvaluateNoPositiveActuals(t *testing.T) {
	m := Evaluate([]int{0, 0, 0}, []int{0, 1, 0})
	if m.Recall != 0 {
		t.Fatalf("recall %v with no actual positives, want 0", m.Recall)
	}
}

func TestEvaluateEmptyOrMismatched(t *testing.T) {
	if m := Evaluate(nil, nil); m.Accuracy != 0 || m.TestSize != 0 {
		t.Fatalf("unexpected metrics for empty input: %+v", m)
	}
	if m := Evaluate([]int{1}, []int{1, 0}); m.TestSize != 0 {
		t.Fatalf("unexpected metrics for mismatched input: %+v", m)
	}
}
