package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StaleReportSweeper is the part of the admin service the scheduler drives.
type StaleReportSweeper interface {
	SweepStaleReports(ctx context.Context, olderThan time.Time) (int, error)
}

// ReportScheduler runs periodic maintenance of controller reports.
type ReportScheduler struct {
	cronEngine *cron.Cron
	sweeper    StaleReportSweeper
	logger     *logrus.Entry
	cronSpec   string
	staleAfter time.Duration
	now        func() time.Time
}

func NewReportScheduler(sweeper StaleReportSweeper, logger *logrus.Entry, cronSpec string, staleAfter time.Duration) *ReportScheduler {
	return &ReportScheduler{
		cronEngine: cron.New(cron.WithLocation(time.UTC)),
		sweeper:    sweeper,
		logger:     logger.WithField("component", "scheduler"),
		cronSpec:   cronSpec,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Start registers the jobs and starts the cron engine.
func (s *ReportScheduler) Start() error {
	if _, err := s.cronEngine.AddFunc(s.cronSpec, s.sweepStale); err != nil {
		return fmt.Errorf("could not add stale report sweep job %q: %w", s.cronSpec, err)
	}
	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Report scheduler started")
	return nil
}

func (s *ReportScheduler) sweepStale() {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	cutoff := s.now().UTC().Add(-s.staleAfter)
	marked, err := s.sweeper.SweepStaleReports(ctx, cutoff)
	if err != nil {
		s.logger.WithError(err).Error("Stale report sweep failed")
		return
	}
	if marked > 0 {
		s.logger.WithField("marked", marked).Warn("Stale controller reports marked as interrupted")
	} else {
		s.logger.Debug("No stale controller reports")
	}
}

// Stop stops the scheduler and waits for running jobs.
func (s *ReportScheduler) Stop() {
	s.logger.Info("Stopping report scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Report scheduler stopped")
}
