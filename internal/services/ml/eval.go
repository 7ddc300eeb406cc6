package ml

import "FinCast/internal/domain/models"

// Evaluate computes binary classification metrics with positive class 1.
// Every ratio is 0 when its denominator is 0, including when one class is
// entirely absent from the evaluation set.
func Evaluate(yTrue, yPred []int) models.EvalMetrics {
	var m models.EvalMetrics
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return m
	}

	correct := 0
	for i := range yTrue {
		m.Confusion[yTrue[i]][yPred[i]]++
		if yTrue[i] == yPred[i] {
			correct++
		}
	}

	tp := m.Confusion[1][1]
	fp := m.Confusion[0][1]
	fn := m.Confusion[1][0]

	m.Accuracy = float64(correct) / float64(len(yTrue))
	m.Precision = ratio(tp, tp+fp)
	m.Recall = ratio(tp, tp+fn)
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	m.TestSize = len(yTrue)
	return m
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
