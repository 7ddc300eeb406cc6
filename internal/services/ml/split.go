package ml

import (
	"fmt"
	"math"
	"math/rand"

	"FinCast/internal/domain/models"
)

// DefaultSeed fixes the split shuffle so training runs are reproducible.
const DefaultSeed = 42

// StratifiedSplit shuffles and splits samples into train/test parts while
// preserving the class ratio. Each class needs at least 2 samples, otherwise
// stratification is impossible and the split fails.
func StratifiedSplit(X [][]float64, y []int, testRatio float64, seed int64) (XTrain, XTest [][]float64, yTrain, yTest []int, err error) {
	if len(X) != len(y) {
		return nil, nil, nil, nil, fmt.Errorf("split: %d rows vs %d labels", len(X), len(y))
	}
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, nil, nil, fmt.Errorf("split: test ratio %v out of (0,1)", testRatio)
	}

	byClass := map[int][]int{}
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}
	for _, label := range []int{0, 1} {
		if len(byClass[label]) < 2 {
			return nil, nil, nil, nil, fmt.Errorf("class %d has %d samples, stratified split needs 2: %w",
				label, len(byClass[label]), models.ErrInsufficientData)
		}
	}

	rng := rand.New(rand.NewSource(seed))
	for _, label := range []int{0, 1} {
		idx := byClass[label]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		nTest := int(math.Round(float64(len(idx)) * testRatio))
		if nTest >= len(idx) {
			nTest = len(idx) - 1
		}
		for k, sample := range idx {
			if k < nTest {
				XTest = append(XTest, X[sample])
				yTest = append(yTest, y[sample])
			} else {
				XTrain = append(XTrain, X[sample])
				yTrain = append(yTrain, y[sample])
			}
		}
	}
	return XTrain, XTest, yTrain, yTest, nil
}
