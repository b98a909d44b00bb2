package report

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("controller report not found")
var ErrDuplicatePeriod = errors.New("controller report for this period already exists")

// Repository defines operations for controller report records.
//
//go:generate mockgen -destination=../../app/mocks/mock_report_repository.go -package=mocks -mock_names=Repository=MockReportRepository teacher_savings_portal/internal/domain/report Repository
type Repository interface {
	// FindByPeriod returns ErrNotFound when no record exists for the period.
	FindByPeriod(ctx context.Context, period Period) (*Upload, error)
	// Create inserts the record. A second record for the same period fails with ErrDuplicatePeriod.
	Create(ctx context.Context, upload *Upload) error
	// Finalize applies to processing or interrupted records only; others yield ErrNotFound.
	Finalize(ctx context.Context, id uuid.UUID, status Status, summary Summary, processedAt time.Time) error
	List(ctx context.Context, limit int) ([]*Upload, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListStale(ctx context.Context, olderThan time.Time) ([]*Upload, error)
	// MarkStatus moves a processing record to status; ErrNotFound when it is no longer processing.
	MarkStatus(ctx context.Context, id uuid.UUID, status Status) error
}
