package notification

import (
	"context"

	"teacher_savings_portal/internal/domain/report"
)

// ReportOutcome is what administrators are told after a reconciliation run.
type ReportOutcome struct {
	Upload *report.Upload
	Result *report.ProcessingResult
}

// Notifier dispatches fire-and-forget notices to administrators.
// Callers log failures and never let them affect a run's outcome.
//
//go:generate mockgen -destination=../../app/mocks/mock_notifier.go -package=mocks teacher_savings_portal/internal/domain/notification Notifier
type Notifier interface {
	ReportProcessed(ctx context.Context, outcome ReportOutcome) error
	ReportInterrupted(ctx context.Context, upload *report.Upload) error
}
