package ml

import (
	"errors"
	"testing"

	"FinCast/internal/domain/models"
)

func rowsWithCloses(closes ...float64) []models.FeatureRow {
	rows := make([]models.FeatureRow, len(closes))
	for i, c := range closes {
		rows[i].Close = c
		rows[i].RSI = 50
		rows[i].MACD = float64(i)
	}
	return rows
}

func TestBuildLabelsNextClose(t *testing.T) {
	rows := rowsWithCloses(100, 101, 100.5, 100.5, 102)

	labels := BuildLabels(rows)
	want := []int{1, 0, 0, 1}
	if len(labels) != len(want) {
		t.Fatalf("got %d labels for %d rows, want %d", len(labels), len(rows), len(want))
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("label[%d] = %d, want %d", i, labels[i], want[i])
		}
	}
}

func TestBuildLabelsTooFewRows(t *testing.T) {
	if got := BuildLabels(rowsWithCloses(100)); got != nil {
		t.Fatalf("expected nil labels for single row, got %v", got)
	}
	if got := BuildLabels(nil); got != nil {
		t.Fatalf("expected nil labels for no rows, got %v", got)
	}
}

func TestAlignTruncates(t *testing.T) {
	rows := rowsWithCloses(100, 101, 102)
	labels := BuildLabels(rows)

	alignedRows, alignedLabels := Align(rows, labels)
	if len(alignedRows) != len(alignedLabels) {
		t.Fatalf("align left %d rows vs %d labels", len(alignedRows), len(alignedLabels))
	}
	if len(alignedRows) != len(rows)-1 {
		t.Fatalf("expected the unlabeled final row dropped, got %d rows", len(alignedRows))
	}
}

func TestMatrixSchemaOrder(t *testing.T) {
	rows := rowsWithCloses(100, 101)
	schema := []string{models.FeatRSI, models.FeatMACD}

	X, err := Matrix(rows, schema)
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	if len(X) != 2 || len(X[0]) != 2 {
		t.Fatalf("unexpected matrix shape %dx%d", len(X), len(X[0]))
	}
	if X[1][0] != 50 || X[1][1] != 1 {
		t.Fatalf("row 1 = %v, want [50 1]", X[1])
	}
}

func TestVectorUnknownColumn(t *testing.T) {
	rows := rowsWithCloses(100)
	_, err := Vector(&rows[0], []string{"bogus_column"})
	if !errors.Is(err, models.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
