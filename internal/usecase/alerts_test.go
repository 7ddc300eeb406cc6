package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"FinCast/internal/domain/models"
)

func TestAlertReporterPublish(t *testing.T) {
	pub := &memSummaryPublisher{}
	r := NewAlertReporter(pub, nil)

	s := &models.PredictionSummary{TotalPredictions: 2, TriggeredAlerts: 1}
	if err := r.Publish(context.Background(), s); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(pub.summaries) != 1 {
		t.Fatalf("published %d summaries, want 1", len(pub.summaries))
	}
}

func TestAlertReporterNilSafe(t *testing.T) {
	r := NewAlertReporter(nil, nil)
	if err := r.Publish(context.Background(), &models.PredictionSummary{}); err != nil {
		t.Fatalf("nil publisher must be a no-op, got %v", err)
	}
	if err := r.Publish(context.Background(), nil); err != nil {
		t.Fatalf("nil summary must be a no-op, got %v", err)
	}
}

func TestFormatReport(t *testing.T) {
	s := &models.PredictionSummary{
		Timestamp:         time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC),
		TotalPredictions:  2,
		BullSignals:       1,
		BearSignals:       1,
		TriggeredAlerts:   1,
		AverageConfidence: 0.72,
		Details: []models.PredictionResult{
			{Instrument: "BTCUSDT", Signal: models.SignalBull, Confidence: 0.84, Sentiment: "strong", AlertTriggered: true},
			{Instrument: "ETHUSDT", Signal: models.SignalBear, Confidence: 0.6, Sentiment: "weak"},
		},
	}

	got := FormatReport(s)
	for _, want := range []string{"2024-10-10 12:00", "BTCUSDT", "ETHUSDT", "BULL", "BEAR", "! "} {
		if !strings.Contains(got, want) {
			t.Fatalf("report missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(strings.SplitN(got, "ETHUSDT", 2)[1], "!") {
		t.Fatalf("non-alert line carries the alert marker:\n%s", got)
	}
}
