// Package alert raises integrity alerts when a comparison run fails its
// confidence check. Alerts land in the datastore's alert log and in the
// structured log stream, where the on-call operator picks them up.
package alert

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/assureops/crosscheck/pkg/logging"
	"github.com/assureops/crosscheck/pkg/report"
)

// Notifier receives reports that did not pass the confidence check.
type Notifier interface {
	NotifyFailed(ctx context.Context, r *report.ComparisonReport) error
}

// AlertWriter is the slice of the datastore the notifier needs.
type AlertWriter interface {
	SaveAlert(ctx context.Context, reportID uuid.UUID, severity, message string) error
}

// StoreNotifier records failed runs as integrity alert rows and logs them.
type StoreNotifier struct {
	writer AlertWriter
}

// NewStoreNotifier returns a notifier backed by the given alert writer.
func NewStoreNotifier(writer AlertWriter) *StoreNotifier {
	return &StoreNotifier{writer: writer}
}

// NotifyFailed records an alert for the failed report.
func (n *StoreNotifier) NotifyFailed(ctx context.Context, r *report.ComparisonReport) error {
	severity := "warning"
	if r.CriticalCount() > 0 {
		severity = "critical"
	}
	message := fmt.Sprintf("comparison failed confidence check: %s", r.Summary())

	logging.Ctx(ctx).Error().
		Str("report_id", r.ID.String()).
		Int("score", r.ConfidenceScore).
		Str("recommendation", r.Recommendation.String()).
		Int("critical", r.CriticalCount()).
		Msg("Integrity alert raised")

	return n.writer.SaveAlert(ctx, r.ID, severity, message)
}
