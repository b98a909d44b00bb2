package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"teacher_savings_portal/internal/domain/report"

	"github.com/google/uuid"
)

const reportColumns = `id, report_month, report_year, file_name, file_location, uploaded_by, status,
               total_records, matched_records, unmatched_records, processed_transactions, error_count,
               processed_at, created_at, updated_at`

type PostgresReportRepository struct {
	db *sql.DB
}

func NewPostgresReportRepository(db *sql.DB) *PostgresReportRepository {
	return &PostgresReportRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUpload(s rowScanner) (*report.Upload, error) {
	u := &report.Upload{}
	var processedAt sql.NullTime
	err := s.Scan(&u.ID, &u.Period.Month, &u.Period.Year, &u.FileName, &u.FileLocation, &u.UploadedBy, &u.Status,
		&u.Summary.TotalRecords, &u.Summary.MatchedRecords, &u.Summary.UnmatchedRecords,
		&u.Summary.ProcessedTransactions, &u.Summary.ErrorCount,
		&processedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if processedAt.Valid {
		t := processedAt.Time
		u.ProcessedAt = &t
	}
	return u, nil
}

func (r *PostgresReportRepository) FindByPeriod(ctx context.Context, period report.Period) (*report.Upload, error) {
	query := `SELECT ` + reportColumns + `
               FROM controller_reports WHERE report_month = $1 AND report_year = $2`
	u, err := scanUpload(r.db.QueryRowContext(ctx, query, period.Month, period.Year))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, report.ErrNotFound
		}
		return nil, fmt.Errorf("error getting controller report for %s: %w", period, err)
	}
	return u, nil
}

func (r *PostgresReportRepository) Create(ctx context.Context, u *report.Upload) error {
	query := `INSERT INTO controller_reports (id, report_month, report_year, file_name, file_location, uploaded_by, status)
               VALUES ($1, $2, $3, $4, $5, $6, $7)
               RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, u.ID, u.Period.Month, u.Period.Year, u.FileName, u.FileLocation, u.UploadedBy, u.Status).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "controller_reports_period_key") {
			return report.ErrDuplicatePeriod
		}
		return fmt.Errorf("error creating controller report: %w", err)
	}
	return nil
}

// Finalize records the outcome of a run. A slow run may already have been marked
// interrupted by the stale sweep; its outcome still replaces that status.
func (r *PostgresReportRepository) Finalize(ctx context.Context, id uuid.UUID, status report.Status, s report.Summary, processedAt time.Time) error {
	query := `UPDATE controller_reports
               SET status = $1, total_records = $2, matched_records = $3, unmatched_records = $4,
                   processed_transactions = $5, error_count = $6, processed_at = $7, updated_at = NOW()
               WHERE id = $8 AND status IN ($9, $10)`
	res, err := r.db.ExecContext(ctx, query, status, s.TotalRecords, s.MatchedRecords, s.UnmatchedRecords,
		s.ProcessedTransactions, s.ErrorCount, processedAt, id, report.StatusProcessing, report.StatusInterrupted)
	if err != nil {
		return fmt.Errorf("error finalizing controller report %s: %w", id, err)
	}
	return expectOneRow(res)
}

func (r *PostgresReportRepository) List(ctx context.Context, limit int) ([]*report.Upload, error) {
	query := `SELECT ` + reportColumns + `
               FROM controller_reports ORDER BY report_year DESC, report_month DESC LIMIT $1`
	return r.query(ctx, "listing controller reports", query, limit)
}

func (r *PostgresReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM controller_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting controller report %s: %w", id, err)
	}
	return expectOneRow(res)
}

// ListStale returns reports still processing that were created before olderThan.
func (r *PostgresReportRepository) ListStale(ctx context.Context, olderThan time.Time) ([]*report.Upload, error) {
	query := `SELECT ` + reportColumns + `
               FROM controller_reports WHERE status = $1 AND created_at < $2 ORDER BY created_at`
	return r.query(ctx, "listing stale controller reports", query, report.StatusProcessing, olderThan)
}

// MarkStatus moves a report out of processing. It returns ErrNotFound when the report
// is gone or no longer processing.
func (r *PostgresReportRepository) MarkStatus(ctx context.Context, id uuid.UUID, status report.Status) error {
	query := `UPDATE controller_reports SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	res, err := r.db.ExecContext(ctx, query, status, id, report.StatusProcessing)
	if err != nil {
		return fmt.Errorf("error updating status of controller report %s: %w", id, err)
	}
	return expectOneRow(res)
}

func (r *PostgresReportRepository) query(ctx context.Context, what, query string, args ...interface{}) ([]*report.Upload, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error %s: %w", what, err)
	}
	defer rows.Close()

	uploads := make([]*report.Upload, 0)
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning controller report: %w", err)
		}
		uploads = append(uploads, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error %s: %w", what, err)
	}
	return uploads, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return report.ErrNotFound
	}
	return nil
}
