package ml

import (
	"fmt"
	"math"

	"FinCast/internal/domain/models"
)

// StandardScaler centers and scales columns to zero mean and unit variance.
// Fit it on the training split only; applying it to held-out or live rows
// must reuse the fitted parameters unchanged.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// Fit computes per-column mean and standard deviation. Columns with zero
// variance keep scale 1 so transforming them is a plain centering.
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return fmt.Errorf("scaler fit on empty matrix: %w", models.ErrInsufficientData)
	}
	cols := len(X[0])
	s.Mean = make([]float64, cols)
	s.Scale = make([]float64, cols)

	for j := 0; j < cols; j++ {
		sum := 0.0
		for i := range X {
			sum += X[i][j]
		}
		mean := sum / float64(len(X))

		variance := 0.0
		for i := range X {
			d := X[i][j] - mean
			variance += d * d
		}
		std := math.Sqrt(variance / float64(len(X)))

		s.Mean[j] = mean
		if std == 0 {
			s.Scale[j] = 1
		} else {
			s.Scale[j] = std
		}
	}
	return nil
}

// TransformRow scales a single vector with the fitted parameters.
func (s *StandardScaler) TransformRow(x []float64) []float64 {
	out := make([]float64, len(x))
	for j := range x {
		out[j] = (x[j] - s.Mean[j]) / s.Scale[j]
	}
	return out
}

// Transform scales every row, returning a new matrix.
func (s *StandardScaler) Transform(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range X {
		out[i] = s.TransformRow(X[i])
	}
	return out
}

// State exports the fitted parameters for persistence.
func (s *StandardScaler) State() models.ScalerState {
	return models.ScalerState{Mean: append([]float64(nil), s.Mean...), Scale: append([]float64(nil), s.Scale...)}
}

// ScalerFromState restores a scaler from persisted parameters.
func ScalerFromState(st models.ScalerState) (*StandardScaler, error) {
	if len(st.Mean) == 0 || len(st.Mean) != len(st.Scale) {
		return nil, fmt.Errorf("scaler state has %d means and %d scales: %w",
			len(st.Mean), len(st.Scale), models.ErrSchemaMismatch)
	}
	return &StandardScaler{
		Mean:  append([]float64(nil), st.Mean...),
		Scale: append([]float64(nil), st.Scale...),
	}, nil
}
