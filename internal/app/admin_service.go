package app

import (
	"context"
	"errors"
	"time"

	"teacher_savings_portal/internal/apperr"
	"teacher_savings_portal/internal/domain/identity"
	"teacher_savings_portal/internal/domain/notification"
	"teacher_savings_portal/internal/domain/report"

	"github.com/sirupsen/logrus"
)

const (
	defaultListLimit = 24
	maxListLimit     = 120
)

// AdminService handles administration of uploaded controller reports.
type AdminService struct {
	reportRepo report.Repository
	files      report.FileStore
	notifier   notification.Notifier
	logger     *logrus.Entry
}

func NewAdminService(rr report.Repository, files report.FileStore, notifier notification.Notifier, logger *logrus.Entry) *AdminService {
	return &AdminService{
		reportRepo: rr,
		files:      files,
		notifier:   notifier,
		logger:     logger.WithField("component", "report_admin"),
	}
}

// ListReports returns the most recent controller reports first.
func (s *AdminService) ListReports(ctx context.Context, caller *identity.Principal, limit int) ([]*report.Upload, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	uploads, err := s.reportRepo.List(ctx, limit)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to list controller reports")
	}
	return uploads, nil
}

// GetReport returns the report for a period.
func (s *AdminService) GetReport(ctx context.Context, caller *identity.Principal, period report.Period) (*report.Upload, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	upload, err := s.reportRepo.FindByPeriod(ctx, period)
	if err != nil {
		if errors.Is(err, report.ErrNotFound) {
			return nil, apperr.NotFound("no controller report for %s", period.Label())
		}
		return nil, apperr.Persistence(err, "failed to get controller report for %s", period.Label())
	}
	return upload, nil
}

// DeleteReport removes the report record and its stored file so the period can be uploaded again.
// Posted ledger transactions are kept; a re-upload is rejected row by row for references
// already posted.
func (s *AdminService) DeleteReport(ctx context.Context, caller *identity.Principal, period report.Period) (*report.Upload, error) {
	target, err := s.GetReport(ctx, caller, period)
	if err != nil {
		return nil, err
	}
	log := s.logger.WithFields(logrus.Fields{
		"report_id":  target.ID,
		"period":     period.String(),
		"deleted_by": caller.UserID,
	})

	if err := s.reportRepo.Delete(ctx, target.ID); err != nil {
		if errors.Is(err, report.ErrNotFound) {
			return nil, apperr.NotFound("no controller report for %s", period.Label())
		}
		return nil, apperr.Persistence(err, "failed to delete controller report for %s", period.Label())
	}
	if target.FileLocation != "" {
		if err := s.files.Remove(ctx, target.FileLocation); err != nil {
			log.WithError(err).Warn("Report deleted but stored file could not be removed")
		}
	}
	log.Info("Controller report deleted")
	return target, nil
}

// SweepStaleReports marks reports stuck in processing since before olderThan as interrupted
// and notifies administrators. It returns how many reports were marked. A run still going
// past olderThan is marked too; its Finalize later replaces the interrupted status.
func (s *AdminService) SweepStaleReports(ctx context.Context, olderThan time.Time) (int, error) {
	stale, err := s.reportRepo.ListStale(ctx, olderThan)
	if err != nil {
		return 0, apperr.Persistence(err, "failed to list stale controller reports")
	}
	marked := 0
	for _, upload := range stale {
		log := s.logger.WithFields(logrus.Fields{"report_id": upload.ID, "period": upload.Period.String()})
		if err := s.reportRepo.MarkStatus(ctx, upload.ID, report.StatusInterrupted); err != nil {
			if errors.Is(err, report.ErrNotFound) {
				log.Debug("Report finished or was deleted before it could be marked")
				continue
			}
			log.WithError(err).Error("Failed to mark stale report as interrupted")
			continue
		}
		upload.Status = report.StatusInterrupted
		marked++
		log.Warn("Controller report marked as interrupted")
		if err := s.notifier.ReportInterrupted(ctx, upload); err != nil {
			log.WithError(err).Warn("Failed to notify administrators")
		}
	}
	return marked, nil
}
