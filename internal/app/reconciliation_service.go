package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teacher_savings_portal/internal/apperr"
	"teacher_savings_portal/internal/deduction"
	"teacher_savings_portal/internal/domain/identity"
	"teacher_savings_portal/internal/domain/ledger"
	"teacher_savings_portal/internal/domain/notification"
	"teacher_savings_portal/internal/domain/report"
	"teacher_savings_portal/internal/domain/teacher"
	"teacher_savings_portal/internal/matching"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Outcome is returned to the uploader after a reconciliation run.
type Outcome struct {
	ReportID uuid.UUID
	Status   report.Status
	Result   *report.ProcessingResult
}

// ReconciliationService ingests controller reports and posts the matched deductions to the ledger.
// A run is sequential: rows are matched and posted one at a time in file order.
type ReconciliationService struct {
	teacherRepo    teacher.Repository
	ledgerRepo     ledger.Repository
	reportRepo     report.Repository
	files          report.FileStore
	notifier       notification.Notifier
	logger         *logrus.Entry
	maxUploadBytes int64
}

func NewReconciliationService(
	tr teacher.Repository,
	lr ledger.Repository,
	rr report.Repository,
	files report.FileStore,
	notifier notification.Notifier,
	logger *logrus.Entry,
	maxUploadBytes int64,
) *ReconciliationService {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &ReconciliationService{
		teacherRepo:    tr,
		ledgerRepo:     lr,
		reportRepo:     rr,
		files:          files,
		notifier:       notifier,
		logger:         logger.WithField("component", "reconciliation"),
		maxUploadBytes: maxUploadBytes,
	}
}

// ProcessReport validates, parses and reconciles a controller report, posting one ledger
// transaction per matched row.
//
// Validation, duplicate-period and parse failures return an error before anything is
// written. Once the report record exists every row is attempted; per-row ledger failures
// are collected in the result's Errors and mark the report failed.
func (s *ReconciliationService) ProcessReport(ctx context.Context, caller *identity.Principal, in UploadInput) (*Outcome, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	period, err := validateUpload(in, s.maxUploadBytes)
	if err != nil {
		return nil, err
	}
	log := s.logger.WithFields(logrus.Fields{
		"period":      period.String(),
		"file_name":   in.FileName,
		"uploaded_by": caller.UserID,
	})

	if err := s.ensurePeriodFree(ctx, period); err != nil {
		log.WithError(err).Warn("Controller report rejected")
		return nil, err
	}

	parsed, err := deduction.Parse(in.Data)
	if err != nil {
		log.WithError(err).Warn("Controller report could not be parsed")
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"header_row": parsed.HeaderRow,
		"records":    len(parsed.Records),
		"skipped":    len(parsed.Skipped),
	}).Info("Controller report parsed")

	snap, err := s.loadRoster(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load teacher roster")
		return nil, err
	}

	upload := &report.Upload{
		ID:         uuid.New(),
		Period:     period,
		FileName:   in.FileName,
		UploadedBy: caller.UserID,
		Status:     report.StatusProcessing,
	}
	log = log.WithField("report_id", upload.ID)
	if err := s.openReport(ctx, upload, in.Data); err != nil {
		log.WithError(err).Error("Failed to open controller report record")
		return nil, err
	}

	result := report.NewProcessingResult()
	for _, skipped := range parsed.Skipped {
		result.SkippedRows++
		result.Warnings = append(result.Warnings, fmt.Sprintf("Row %d skipped: %s", skipped.Row, skipped.Reason))
	}
	for _, rec := range parsed.Records {
		s.processRecord(ctx, log, period, snap, rec, result)
	}

	outcome := &Outcome{ReportID: upload.ID, Status: result.FinalStatus(), Result: result}
	processedAt := time.Now().UTC()
	err = s.reportRepo.Finalize(ctx, upload.ID, outcome.Status, result.Summary(), processedAt)
	switch {
	case errors.Is(err, report.ErrNotFound):
		log.Warn("Report record was removed while processing")
		result.Warnings = append(result.Warnings, "The report record was deleted while the report was processing; posted transactions were kept.")
	case err != nil:
		perr := apperr.Persistence(err, "failed to finalize controller report %s", upload.ID)
		log.WithError(perr).Error("Report record left in processing state")
		result.Warnings = append(result.Warnings, "The report record could not be finalized and remains in processing state; contact an administrator before re-uploading this period.")
		outcome.Status = report.StatusProcessing
	default:
		upload.Status = outcome.Status
		upload.ProcessedAt = &processedAt
	}
	upload.Summary = result.Summary()

	log.WithFields(logrus.Fields{
		"status":                 outcome.Status,
		"total_records":          result.TotalRecords,
		"matched_records":        result.MatchedRecords,
		"unmatched_records":      result.UnmatchedRecords,
		"processed_transactions": result.ProcessedTransactions,
		"errors":                 len(result.Errors),
	}).Info("Controller report reconciled")

	if err := s.notifier.ReportProcessed(ctx, notification.ReportOutcome{Upload: upload, Result: result}); err != nil {
		log.WithError(err).Warn("Failed to notify administrators")
	}
	return outcome, nil
}

func (s *ReconciliationService) ensurePeriodFree(ctx context.Context, period report.Period) error {
	existing, err := s.reportRepo.FindByPeriod(ctx, period)
	switch {
	case err == nil:
		return apperr.Duplicate("a controller report for %s was already uploaded (status %s)", period.Label(), existing.Status).
			WithSuggestion("delete the existing report or choose another period")
	case errors.Is(err, report.ErrNotFound):
		return nil
	default:
		return apperr.Persistence(err, "failed to check for an existing report for %s", period.Label())
	}
}

func (s *ReconciliationService) loadRoster(ctx context.Context) (*matching.Snapshot, error) {
	teachers, err := s.teacherRepo.ListByRole(ctx, teacher.RoleTeacher)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to load teacher roster")
	}
	snap := matching.NewSnapshot(teachers)
	if dups := snap.Index.Duplicates(); len(dups) > 0 {
		s.logger.WithField("employee_ids", dups).Warn("Duplicate employee IDs in teacher roster; first occurrence is used")
	}
	return snap, nil
}

// openReport stores the file and creates the report record in processing state.
// The storage-level unique period constraint catches uploads racing past ensurePeriodFree.
func (s *ReconciliationService) openReport(ctx context.Context, upload *report.Upload, data []byte) error {
	location, err := s.files.Save(ctx, upload, data)
	if err != nil {
		return apperr.Persistence(err, "failed to store uploaded file")
	}
	upload.FileLocation = location

	if err := s.reportRepo.Create(ctx, upload); err != nil {
		if rmErr := s.files.Remove(ctx, location); rmErr != nil {
			s.logger.WithError(rmErr).WithField("location", location).Warn("Failed to remove stored file")
		}
		if errors.Is(err, report.ErrDuplicatePeriod) {
			return apperr.Duplicate("a controller report for %s was already uploaded", upload.Period.Label()).
				WithSuggestion("delete the existing report or choose another period")
		}
		return apperr.Persistence(err, "failed to create controller report record")
	}
	return nil
}

func (s *ReconciliationService) processRecord(
	ctx context.Context,
	log *logrus.Entry,
	period report.Period,
	snap *matching.Snapshot,
	rec deduction.Record,
	result *report.ProcessingResult,
) {
	result.TotalRecords++
	rowLog := log.WithField("row", rec.Row)

	match := matching.Match(queryFor(rec), snap)
	if !match.Matched() {
		result.UnmatchedRecords++
		summary := report.TeacherSummary{
			Row:            rec.Row,
			Name:           rec.EmployeeName,
			Amount:         rec.MonthlyDeduction,
			ManagementUnit: rec.ManagementUnit,
			Reason:         report.UnmatchedReason,
		}
		if suggested, ok := matching.Suggest(rec.EmployeeName, snap.Teachers); ok {
			summary.SuggestedTeacher = suggested.FullName
		}
		result.UnmatchedTeachers = append(result.UnmatchedTeachers, summary)
		result.Warnings = append(result.Warnings, fmt.Sprintf("Row %d: no matching teacher found for %q (amount %s)", rec.Row, rec.EmployeeName, rec.MonthlyDeduction.StringFixed(2)))
		rowLog.WithField("name", rec.EmployeeName).Warn("No matching teacher")
		return
	}

	result.MatchedRecords++
	t := match.Teacher
	rowLog = rowLog.WithFields(logrus.Fields{
		"teacher_id":   t.ID,
		"match_method": match.Method,
		"score":        match.Score.String(),
	})
	rowLog.Debug("Row matched")

	tx := controllerTransaction(period, t, rec.MonthlyDeduction)
	if err := s.ledgerRepo.Insert(ctx, tx); err != nil {
		var msg string
		if errors.Is(err, ledger.ErrDuplicateReference) {
			msg = fmt.Sprintf("Row %d: deduction for %s (%s) was already posted for %s", rec.Row, t.FullName, tx.ReferenceID, period.Label())
		} else {
			msg = fmt.Sprintf("Row %d: failed to post deduction of %s for %s: %v", rec.Row, rec.MonthlyDeduction.StringFixed(2), t.FullName, err)
		}
		result.Errors = append(result.Errors, msg)
		rowLog.WithError(err).Error("Failed to post controller transaction")
		return
	}

	result.ProcessedTransactions++
	result.MatchedTeachers = append(result.MatchedTeachers, report.TeacherSummary{
		Row:            rec.Row,
		Name:           t.FullName,
		Amount:         rec.MonthlyDeduction,
		ManagementUnit: t.ManagementUnit,
		TeacherID:      t.ID,
		MatchMethod:    string(match.Method),
	})
}

func queryFor(rec deduction.Record) matching.Query {
	return matching.Query{
		EmployeeNumber: rec.EmployeeNumber,
		Name:           rec.EmployeeName,
		ManagementUnit: rec.ManagementUnit,
	}
}

// controllerTransaction builds the ledger posting for one matched row. The reference ID
// is derived from the period and employee ID so the ledger rejects a repeated posting.
func controllerTransaction(period report.Period, t *teacher.Teacher, amount decimal.Decimal) *ledger.Transaction {
	employeeID := teacher.NormalizeEmployeeID(t.EmployeeID)
	if employeeID == "" {
		employeeID = t.ID
	}
	return &ledger.Transaction{
		UserID:          t.ID,
		Type:            ledger.TypeController,
		Amount:          amount,
		Description:     fmt.Sprintf("Controller deduction for %s", period.Label()),
		TransactionDate: period.FirstDay(),
		ReferenceID:     ledger.ControllerReferenceID(period.Year, period.Month, employeeID),
		Status:          ledger.StatusCompleted,
		PaymentMethod:   ledger.PaymentMethodController,
	}
}

func requireAdmin(caller *identity.Principal) error {
	if caller == nil {
		return apperr.Unauthorized("authentication required")
	}
	if !caller.IsAdmin() {
		return apperr.Forbidden("only administrators can manage controller reports")
	}
	return nil
}
