package ml

import (
	"fmt"
	"math"
	"math/rand"

	"FinCast/internal/domain/models"
)

// KernelSVMConfig holds the SVM hyperparameters. Zero values fall back to
// defaults; Gamma 0 means 1/(d*Var(X)), matching the usual "scale" rule.
type KernelSVMConfig struct {
	C         float64
	Gamma     float64
	Tol       float64
	MaxPasses int
	MaxSweeps int
	Seed      int64
}

// KernelSVM is an RBF-kernel support vector classifier trained with
// sequential minimal optimization. Probabilities come from a Platt sigmoid
// fitted on the training decision values; when that calibration fails the
// model reports no probability estimates.
type KernelSVM struct {
	C       float64     `json:"c"`
	Gamma   float64     `json:"gamma"`
	B       float64     `json:"b"`
	Coef    []float64   `json:"coef"` // alpha_i * y_i per support vector
	SV      [][]float64 `json:"support_vectors"`
	PlattA  float64     `json:"platt_a"`
	PlattB  float64     `json:"platt_b"`
	PlattOK bool        `json:"platt_ok"`

	tol       float64
	maxPasses int
	maxSweeps int
	seed      int64
}

// NewKernelSVM creates an unfitted SVM.
func NewKernelSVM(cfg KernelSVMConfig) *KernelSVM {
	if cfg.C <= 0 {
		cfg.C = 1.0
	}
	if cfg.Tol <= 0 {
		cfg.Tol = 1e-3
	}
	if cfg.MaxPasses <= 0 {
		cfg.MaxPasses = 5
	}
	if cfg.MaxSweeps <= 0 {
		cfg.MaxSweeps = 1000
	}
	if cfg.Seed == 0 {
		cfg.Seed = DefaultSeed
	}
	return &KernelSVM{
		C:         cfg.C,
		Gamma:     cfg.Gamma,
		tol:       cfg.Tol,
		maxPasses: cfg.MaxPasses,
		maxSweeps: cfg.MaxSweeps,
		seed:      cfg.Seed,
	}
}

func (s *KernelSVM) Kind() models.ModelKind { return models.KindKernelSVM }

func rbf(u, v []float64, gamma float64) float64 {
	d := 0.0
	for i := range u {
		diff := u[i] - v[i]
		d += diff * diff
	}
	return math.Exp(-gamma * d)
}

func (s *KernelSVM) Fit(X [][]float64, y []int) error {
	n := len(X)
	if n == 0 || n != len(y) {
		return fmt.Errorf("svm fit: %d rows vs %d labels", n, len(y))
	}
	// SMO picks a second working index, so one sample can never be optimized.
	if n < 2 {
		return fmt.Errorf("svm fit: need at least 2 samples, got %d", n)
	}
	if s.tol == 0 {
		// restored or zero-value receiver; refit with defaults
		s.tol, s.maxPasses, s.maxSweeps, s.seed = 1e-3, 5, 1000, DefaultSeed
	}

	if s.Gamma <= 0 {
		s.Gamma = scaleGamma(X)
	}

	// signed labels
	ys := make([]float64, n)
	for i, label := range y {
		if label == 1 {
			ys[i] = 1
		} else {
			ys[i] = -1
		}
	}

	K := make([][]float64, n)
	for i := range K {
		K[i] = make([]float64, n)
		for j := 0; j <= i; j++ {
			k := rbf(X[i], X[j], s.Gamma)
			K[i][j] = k
			K[j][i] = k
		}
	}

	alphas := make([]float64, n)
	b := 0.0
	f := func(i int) float64 {
		sum := b
		for j := 0; j < n; j++ {
			if alphas[j] > 0 {
				sum += alphas[j] * ys[j] * K[i][j]
			}
		}
		return sum
	}

	rng := rand.New(rand.NewSource(s.seed))
	passes := 0
	for sweep := 0; passes < s.maxPasses && sweep < s.maxSweeps; sweep++ {
		changed := 0
		for i := 0; i < n; i++ {
			ei := f(i) - ys[i]
			if !((ys[i]*ei < -s.tol && alphas[i] < s.C) || (ys[i]*ei > s.tol && alphas[i] > 0)) {
				continue
			}
			j := rng.Intn(n - 1)
			if j >= i {
				j++
			}
			ej := f(j) - ys[j]

			oldI, oldJ := alphas[i], alphas[j]
			var lo, hi float64
			if ys[i] != ys[j] {
				lo = math.Max(0, oldJ-oldI)
				hi = math.Min(s.C, s.C+oldJ-oldI)
			} else {
				lo = math.Max(0, oldI+oldJ-s.C)
				hi = math.Min(s.C, oldI+oldJ)
			}
			if lo == hi {
				continue
			}
			eta := 2*K[i][j] - K[i][i] - K[j][j]
			if eta >= 0 {
				continue
			}

			aj := oldJ - ys[j]*(ei-ej)/eta
			if aj > hi {
				aj = hi
			} else if aj < lo {
				aj = lo
			}
			if math.Abs(aj-oldJ) < 1e-5 {
				continue
			}
			ai := oldI + ys[i]*ys[j]*(oldJ-aj)
			alphas[i], alphas[j] = ai, aj

			b1 := b - ei - ys[i]*(ai-oldI)*K[i][i] - ys[j]*(aj-oldJ)*K[i][j]
			b2 := b - ej - ys[i]*(ai-oldI)*K[i][j] - ys[j]*(aj-oldJ)*K[j][j]
			switch {
			case ai > 0 && ai < s.C:
				b = b1
			case aj > 0 && aj < s.C:
				b = b2
			default:
				b = (b1 + b2) / 2
			}
			changed++
		}
		if changed == 0 {
			passes++
		} else {
			passes = 0
		}
	}

	s.B = b
	s.Coef = s.Coef[:0]
	s.SV = s.SV[:0]
	for i := 0; i < n; i++ {
		if alphas[i] > 1e-8 {
			s.Coef = append(s.Coef, alphas[i]*ys[i])
			s.SV = append(s.SV, append([]float64(nil), X[i]...))
		}
	}

	// calibrate probabilities on the training decision values
	decisions := make([]float64, n)
	for i := range X {
		decisions[i] = s.decision(X[i])
	}
	s.PlattA, s.PlattB, s.PlattOK = fitPlatt(decisions, y)
	return nil
}

// scaleGamma mirrors the 1/(n_features * variance) heuristic.
func scaleGamma(X [][]float64) float64 {
	d := len(X[0])
	sum, sum2, count := 0.0, 0.0, 0.0
	for _, row := range X {
		for _, v := range row {
			sum += v
			sum2 += v * v
			count++
		}
	}
	mean := sum / count
	variance := sum2/count - mean*mean
	if variance <= 0 {
		return 1 / float64(d)
	}
	return 1 / (float64(d) * variance)
}

func (s *KernelSVM) decision(x []float64) float64 {
	sum := s.B
	for k, sv := range s.SV {
		sum += s.Coef[k] * rbf(sv, x, s.Gamma)
	}
	return sum
}

func (s *KernelSVM) Predict(x []float64) int {
	if s.decision(x) >= 0 {
		return 1
	}
	return 0
}

func (s *KernelSVM) PredictProba(x []float64) ([]float64, bool) {
	if !s.PlattOK {
		return nil, false
	}
	p := 1 / (1 + math.Exp(s.PlattA*s.decision(x)+s.PlattB))
	return []float64{1 - p, p}, true
}

func (s *KernelSVM) State() (models.ClassifierState, error) {
	return marshalState(s.Kind(), s)
}

// fitPlatt fits P(y=1|f) = 1/(1+exp(A f + B)) by Newton iterations with the
// regularized targets from Platt's method. ok is false when the problem is
// degenerate (single class or no spread in decision values).
func fitPlatt(decisions []float64, y []int) (a, b float64, ok bool) {
	n := len(decisions)
	pos, neg := 0, 0
	for _, label := range y {
		if label == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0, 0, false
	}
	spread := false
	for i := 1; i < n; i++ {
		if decisions[i] != decisions[0] {
			spread = true
			break
		}
	}
	if !spread {
		return 0, 0, false
	}

	hiTarget := (float64(pos) + 1) / (float64(pos) + 2)
	loTarget := 1 / (float64(neg) + 2)
	targets := make([]float64, n)
	for i, label := range y {
		if label == 1 {
			targets[i] = hiTarget
		} else {
			targets[i] = loTarget
		}
	}

	a = 0
	b = math.Log((float64(neg) + 1) / (float64(pos) + 1))
	const sigma = 1e-12

	for iter := 0; iter < 100; iter++ {
		var h11, h22, h21, g1, g2 float64
		for i := 0; i < n; i++ {
			fApB := decisions[i]*a + b
			var p, q float64
			if fApB >= 0 {
				p = math.Exp(-fApB) / (1 + math.Exp(-fApB))
				q = 1 / (1 + math.Exp(-fApB))
			} else {
				p = 1 / (1 + math.Exp(fApB))
				q = math.Exp(fApB) / (1 + math.Exp(fApB))
			}
			d2 := p * q
			h11 += decisions[i] * decisions[i] * d2
			h22 += d2
			h21 += decisions[i] * d2
			d1 := targets[i] - p
			g1 += decisions[i] * d1
			g2 += d1
		}
		if math.Abs(g1) < 1e-5 && math.Abs(g2) < 1e-5 {
			break
		}
		h11 += sigma
		h22 += sigma

		det := h11*h22 - h21*h21
		if det == 0 || math.IsNaN(det) {
			return 0, 0, false
		}
		a += (h21*g2 - h22*g1) / det
		b += (h21*g1 - h11*g2) / det
	}
	if math.IsNaN(a) || math.IsNaN(b) {
		return 0, 0, false
	}
	return a, b, true
}
