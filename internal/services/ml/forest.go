package ml

import (
	"fmt"
	"math"
	"math/rand"

	"FinCast/internal/domain/models"
)

// RandomForestConfig holds the forest hyperparameters. Zero values fall
// back to defaults.
type RandomForestConfig struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	Seed            int64
}

// RandomForest is a bagged ensemble of trees; each tree trains on a
// bootstrap sample and considers sqrt(d) random features per split. The
// class-1 probability is the mean leaf output across trees.
type RandomForest struct {
	NEstimators     int         `json:"n_estimators"`
	MaxDepth        int         `json:"max_depth"`
	MinSamplesSplit int         `json:"min_samples_split"`
	Seed            int64       `json:"seed"`
	Trees           []*TreeNode `json:"trees"`
}

// NewRandomForest creates an unfitted forest.
func NewRandomForest(cfg RandomForestConfig) *RandomForest {
	if cfg.NEstimators <= 0 {
		cfg.NEstimators = 100
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 10
	}
	if cfg.MinSamplesSplit <= 0 {
		cfg.MinSamplesSplit = 5
	}
	if cfg.Seed == 0 {
		cfg.Seed = DefaultSeed
	}
	return &RandomForest{
		NEstimators:     cfg.NEstimators,
		MaxDepth:        cfg.MaxDepth,
		MinSamplesSplit: cfg.MinSamplesSplit,
		Seed:            cfg.Seed,
	}
}

func (f *RandomForest) Kind() models.ModelKind { return models.KindRandomForest }

func (f *RandomForest) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("forest fit: %d rows vs %d labels", len(X), len(y))
	}

	targets := make([]float64, len(y))
	for i, label := range y {
		targets[i] = float64(label)
	}
	maxFeatures := int(math.Sqrt(float64(len(X[0]))))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	rng := rand.New(rand.NewSource(f.Seed))
	f.Trees = make([]*TreeNode, 0, f.NEstimators)
	for m := 0; m < f.NEstimators; m++ {
		idx := make([]int, len(y))
		for i := range idx {
			idx[i] = rng.Intn(len(y))
		}
		cfg := &treeConfig{
			maxDepth:        f.MaxDepth,
			minSamplesSplit: f.MinSamplesSplit,
			maxFeatures:     maxFeatures,
			rng:             rng,
			leafValue: func(leaf []int) float64 {
				sum := 0.0
				for _, i := range leaf {
					sum += targets[i]
				}
				return sum / float64(len(leaf))
			},
		}
		f.Trees = append(f.Trees, buildTree(X, targets, idx, 0, cfg))
	}
	return nil
}

func (f *RandomForest) proba(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range f.Trees {
		sum += t.Eval(x)
	}
	p := sum / float64(len(f.Trees))
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func (f *RandomForest) Predict(x []float64) int {
	if f.proba(x) >= 0.5 {
		return 1
	}
	return 0
}

func (f *RandomForest) PredictProba(x []float64) ([]float64, bool) {
	p := f.proba(x)
	return []float64{1 - p, p}, true
}

func (f *RandomForest) State() (models.ClassifierState, error) {
	return marshalState(f.Kind(), f)
}
