package ml

import (
	"fmt"

	"FinCast/internal/domain/models"
)

// BuildLabels derives the binary direction label per feature row: 1 when the
// next row's close is higher, 0 otherwise. The final row has no next close,
// so n rows yield exactly n-1 labels.
func BuildLabels(rows []models.FeatureRow) []int {
	if len(rows) < 2 {
		return nil
	}
	labels := make([]int, len(rows)-1)
	for i := 0; i < len(rows)-1; i++ {
		if rows[i+1].Close > rows[i].Close {
			labels[i] = 1
		}
	}
	return labels
}

// Align truncates the longer of rows/labels to the shorter length so every
// surviving row has a label. Done before any split.
func Align(rows []models.FeatureRow, labels []int) ([]models.FeatureRow, []int) {
	n := len(rows)
	if len(labels) < n {
		n = len(labels)
	}
	return rows[:n], labels[:n]
}

// Matrix builds the numeric matrix from the named schema columns of rows.
// An unknown column name means the rows and the schema come from different
// engine versions.
func Matrix(rows []models.FeatureRow, schema []string) ([][]float64, error) {
	X := make([][]float64, len(rows))
	for i := range rows {
		vec, err := Vector(&rows[i], schema)
		if err != nil {
			return nil, err
		}
		X[i] = vec
	}
	return X, nil
}

// Vector extracts one row's schema columns in schema order.
func Vector(row *models.FeatureRow, schema []string) ([]float64, error) {
	vec := make([]float64, len(schema))
	for j, name := range schema {
		v, ok := row.Feature(name)
		if !ok {
			return nil, fmt.Errorf("unknown feature column %q: %w", name, models.ErrSchemaMismatch)
		}
		vec[j] = v
	}
	return vec, nil
}
