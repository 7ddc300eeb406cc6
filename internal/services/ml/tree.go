package ml

import (
	"math/rand"
	"sort"
)

// TreeNode is one node of a fitted regression tree. Feature -1 marks a
// leaf; otherwise samples with x[Feature] <= Threshold go left.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold,omitempty"`
	Value     float64   `json:"value,omitempty"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
}

// Eval walks the tree for one sample.
func (t *TreeNode) Eval(x []float64) float64 {
	node := t
	for node.Feature >= 0 {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

type treeConfig struct {
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int // candidate features per split; 0 means all
	rng             *rand.Rand
	// leafValue computes the output of a leaf from its sample indices.
	leafValue func(idx []int) float64
}

// buildTree grows a regression tree on targets with variance-reduction
// splits. idx is the subset of rows this node owns; it is reordered in
// place while partitioning.
func buildTree(X [][]float64, targets []float64, idx []int, depth int, cfg *treeConfig) *TreeNode {
	if depth >= cfg.maxDepth || len(idx) < cfg.minSamplesSplit || pure(targets, idx) {
		return &TreeNode{Feature: -1, Value: cfg.leafValue(idx)}
	}

	feature, threshold, ok := bestSplit(X, targets, idx, cfg)
	if !ok {
		return &TreeNode{Feature: -1, Value: cfg.leafValue(idx)}
	}

	// partition idx around the threshold
	lo := 0
	hi := len(idx)
	for lo < hi {
		if X[idx[lo]][feature] <= threshold {
			lo++
		} else {
			hi--
			idx[lo], idx[hi] = idx[hi], idx[lo]
		}
	}
	left, right := idx[:lo], idx[lo:]
	if len(left) == 0 || len(right) == 0 {
		return &TreeNode{Feature: -1, Value: cfg.leafValue(idx)}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildTree(X, targets, left, depth+1, cfg),
		Right:     buildTree(X, targets, right, depth+1, cfg),
	}
}

func pure(targets []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if targets[i] != targets[idx[0]] {
			return false
		}
	}
	return true
}

// bestSplit maximizes the variance reduction over the candidate features.
// For a fixed parent, that is maximizing sumL^2/nL + sumR^2/nR.
func bestSplit(X [][]float64, targets []float64, idx []int, cfg *treeConfig) (int, float64, bool) {
	nFeatures := len(X[idx[0]])
	candidates := featureCandidates(nFeatures, cfg)

	bestScore := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	total := 0.0
	for _, i := range idx {
		total += targets[i]
	}
	n := float64(len(idx))
	baseScore := total * total / n

	sorted := make([]int, len(idx))
	for _, f := range candidates {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool { return X[sorted[a]][f] < X[sorted[b]][f] })

		sumLeft := 0.0
		for k := 0; k < len(sorted)-1; k++ {
			sumLeft += targets[sorted[k]]
			// split only between distinct feature values
			if X[sorted[k]][f] == X[sorted[k+1]][f] {
				continue
			}
			nLeft := float64(k + 1)
			nRight := n - nLeft
			sumRight := total - sumLeft
			score := sumLeft*sumLeft/nLeft + sumRight*sumRight/nRight - baseScore
			if score > bestScore {
				bestScore = score
				bestFeature = f
				bestThreshold = (X[sorted[k]][f] + X[sorted[k+1]][f]) / 2
			}
		}
	}
	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func featureCandidates(nFeatures int, cfg *treeConfig) []int {
	if cfg.maxFeatures <= 0 || cfg.maxFeatures >= nFeatures {
		all := make([]int, nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return cfg.rng.Perm(nFeatures)[:cfg.maxFeatures]
}

