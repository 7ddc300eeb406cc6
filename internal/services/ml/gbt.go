package ml

import (
	"fmt"
	"math"

	"FinCast/internal/domain/models"
)

// GradientBoostingConfig holds the boosting hyperparameters. Zero values
// fall back to defaults.
type GradientBoostingConfig struct {
	NEstimators  int
	MaxDepth     int
	LearningRate float64
}

// GradientBoosting is a boosted ensemble of regression trees on the
// logistic loss. Each stage fits the residual y - p and contributes a
// Newton-step leaf value scaled by the learning rate.
type GradientBoosting struct {
	NEstimators  int         `json:"n_estimators"`
	MaxDepth     int         `json:"max_depth"`
	LearningRate float64     `json:"learning_rate"`
	Init         float64     `json:"init"`
	Trees        []*TreeNode `json:"trees"`
}

// NewGradientBoosting creates an unfitted booster.
func NewGradientBoosting(cfg GradientBoostingConfig) *GradientBoosting {
	if cfg.NEstimators <= 0 {
		cfg.NEstimators = 100
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 5
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = 0.1
	}
	return &GradientBoosting{
		NEstimators:  cfg.NEstimators,
		MaxDepth:     cfg.MaxDepth,
		LearningRate: cfg.LearningRate,
	}
}

func (g *GradientBoosting) Kind() models.ModelKind { return models.KindGradientBoosting }

func (g *GradientBoosting) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("gbt fit: %d rows vs %d labels", len(X), len(y))
	}

	pos := 0
	for _, label := range y {
		pos += label
	}
	base := clampProb(float64(pos) / float64(len(y)))
	g.Init = math.Log(base / (1 - base))

	scores := make([]float64, len(y))
	for i := range scores {
		scores[i] = g.Init
	}
	residuals := make([]float64, len(y))
	idx := make([]int, len(y))

	g.Trees = make([]*TreeNode, 0, g.NEstimators)
	for m := 0; m < g.NEstimators; m++ {
		for i := range y {
			residuals[i] = float64(y[i]) - sigmoid(scores[i])
			idx[i] = i
		}

		cfg := &treeConfig{
			maxDepth:        g.MaxDepth,
			minSamplesSplit: 2,
			leafValue: func(leaf []int) float64 {
				num, den := 0.0, 0.0
				for _, i := range leaf {
					p := sigmoid(scores[i])
					num += residuals[i]
					den += p * (1 - p)
				}
				if den < 1e-10 {
					return 0
				}
				return num / den
			},
		}
		tree := buildTree(X, residuals, idx, 0, cfg)
		g.Trees = append(g.Trees, tree)

		for i := range y {
			scores[i] += g.LearningRate * tree.Eval(X[i])
		}
	}
	return nil
}

func (g *GradientBoosting) score(x []float64) float64 {
	f := g.Init
	for _, t := range g.Trees {
		f += g.LearningRate * t.Eval(x)
	}
	return f
}

func (g *GradientBoosting) Predict(x []float64) int {
	if sigmoid(g.score(x)) >= 0.5 {
		return 1
	}
	return 0
}

func (g *GradientBoosting) PredictProba(x []float64) ([]float64, bool) {
	p := sigmoid(g.score(x))
	return []float64{1 - p, p}, true
}

func (g *GradientBoosting) State() (models.ClassifierState, error) {
	return marshalState(g.Kind(), g)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func clampProb(p float64) float64 {
	const eps = 1e-6
	if p < eps {
		return eps
	}
	if p > 1-eps {
		return 1 - eps
	}
	return p
}
