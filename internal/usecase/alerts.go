package usecase

import (
	"context"
	"fmt"
	"strings"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	applogger "FinCast/pkg/logger"
)

// AlertReporter hands prediction summaries to the alert collaborator.
// It only produces and publishes the value object; delivery over mail,
// chat or webhooks happens outside this service.
type AlertReporter struct {
	pub domrepo.SummaryPublisher
	l   *applogger.Logger
}

func NewAlertReporter(pub domrepo.SummaryPublisher, l *applogger.Logger) *AlertReporter {
	return &AlertReporter{pub: pub, l: l}
}

// Publish sends the summary to the alerts topic. A nil publisher makes
// this a no-op so callers need not special-case disabled alerting.
func (r *AlertReporter) Publish(ctx context.Context, s *models.PredictionSummary) error {
	if r.pub == nil || s == nil {
		return nil
	}
	if err := r.pub.PublishSummary(ctx, s); err != nil {
		if r.l != nil {
			r.l.Error("summary publish failed", applogger.Error(err))
		}
		return fmt.Errorf("publish summary: %w", err)
	}
	if r.l != nil {
		r.l.Info("summary published",
			applogger.Int("predictions", s.TotalPredictions),
			applogger.Int("alerts", s.TriggeredAlerts),
		)
	}
	return nil
}

// FormatReport renders a summary as the plain-text report handed to
// operators and the one-shot CLI.
func FormatReport(s *models.PredictionSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Forecast summary @ %s\n", s.Timestamp.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "  predictions: %d (bull %d / bear %d), alerts: %d, avg confidence: %.2f\n",
		s.TotalPredictions, s.BullSignals, s.BearSignals, s.TriggeredAlerts, s.AverageConfidence)
	for _, d := range s.Details {
		marker := " "
		if d.AlertTriggered {
			marker = "!"
		}
		fmt.Fprintf(&b, "  %s %-12s %-4s confidence %.2f (%s)\n",
			marker, d.Instrument, d.Signal, d.Confidence, d.Sentiment)
	}
	return b.String()
}
