package models

import "time"

// Signal is the directional forecast.
type Signal string

const (
	SignalBull Signal = "BULL"
	SignalBear Signal = "BEAR"
)

// SignalFromLabel maps the binary class label onto a signal.
func SignalFromLabel(label int) Signal {
	if label == 1 {
		return SignalBull
	}
	return SignalBear
}

// Sentiment buckets a confidence value for reporting.
func Sentiment(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "strong"
	case confidence >= 0.65:
		return "moderate"
	default:
		return "weak"
	}
}

// PredictionResult is one next-period forecast for one instrument.
type PredictionResult struct {
	Instrument      string    `json:"instrument"`
	Signal          Signal    `json:"signal"`
	Label           int       `json:"label"`
	Confidence      float64   `json:"confidence"`
	Sentiment       string    `json:"sentiment"`
	AlertTriggered  bool      `json:"alert_triggered"`
	Threshold       float64   `json:"threshold"`
	Timestamp       time.Time `json:"timestamp"`
	ModelKind       ModelKind `json:"model_kind"`
	ArtifactVersion string    `json:"artifact_version"`
	FeaturesUsed    []string  `json:"features_used"`
}

// PredictionSummary aggregates a batch of predictions for the alert
// collaborator. The service only produces this value; delivery is external.
type PredictionSummary struct {
	Timestamp         time.Time          `json:"timestamp"`
	TotalPredictions  int                `json:"total_predictions"`
	BullSignals       int                `json:"bull_signals"`
	BearSignals       int                `json:"bear_signals"`
	TriggeredAlerts   int                `json:"triggered_alerts"`
	AverageConfidence float64            `json:"average_confidence"`
	Details           []PredictionResult `json:"details"`
}
