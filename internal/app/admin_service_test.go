package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"teacher_savings_portal/internal/app"
	"teacher_savings_portal/internal/app/mocks"
	"teacher_savings_portal/internal/apperr"
	"teacher_savings_portal/internal/domain/report"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminFixture struct {
	reports  *mocks.MockReportRepository
	files    *mocks.MockFileStore
	notifier *mocks.MockNotifier
	svc      *app.AdminService
}

func newAdminFixture(t *testing.T) *adminFixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	f := &adminFixture{
		reports:  mocks.NewMockReportRepository(ctrl),
		files:    mocks.NewMockFileStore(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
	}
	f.svc = app.NewAdminService(f.reports, f.files, f.notifier, discardLogger())
	return f
}

func TestListReports_ClampsLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "default", limit: 0, want: 24},
		{name: "negative", limit: -5, want: 24},
		{name: "within range", limit: 6, want: 6},
		{name: "capped", limit: 1000, want: 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAdminFixture(t)
			f.reports.EXPECT().List(gomock.Any(), tt.want).Return([]*report.Upload{}, nil)
			uploads, err := f.svc.ListReports(context.Background(), adminUser, tt.limit)
			require.NoError(t, err)
			assert.Empty(t, uploads)
		})
	}
}

func TestListReports_RequiresAdmin(t *testing.T) {
	f := newAdminFixture(t)
	_, err := f.svc.ListReports(context.Background(), teacherUser, 10)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.ListReports(context.Background(), nil, 10)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestListReports_StorageError(t *testing.T) {
	f := newAdminFixture(t)
	f.reports.EXPECT().List(gomock.Any(), 24).Return(nil, errors.New("db down"))
	_, err := f.svc.ListReports(context.Background(), adminUser, 0)
	assert.True(t, apperr.Is(err, apperr.KindPersistence))
}

func TestGetReport(t *testing.T) {
	f := newAdminFixture(t)
	want := &report.Upload{ID: uuid.New(), Period: march2025, Status: report.StatusProcessed}
	f.reports.EXPECT().FindByPeriod(gomock.Any(), march2025).Return(want, nil)

	got, err := f.svc.GetReport(context.Background(), adminUser, march2025)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetReport_NotFound(t *testing.T) {
	f := newAdminFixture(t)
	f.reports.EXPECT().FindByPeriod(gomock.Any(), march2025).Return(nil, report.ErrNotFound)

	_, err := f.svc.GetReport(context.Background(), adminUser, march2025)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteReport_RemovesRecordAndFile(t *testing.T) {
	f := newAdminFixture(t)
	target := &report.Upload{ID: uuid.New(), Period: march2025, FileLocation: "2025/03/a.csv"}
	gomock.InOrder(
		f.reports.EXPECT().FindByPeriod(gomock.Any(), march2025).Return(target, nil),
		f.reports.EXPECT().Delete(gomock.Any(), target.ID).Return(nil),
		f.files.EXPECT().Remove(gomock.Any(), "2025/03/a.csv").Return(nil),
	)

	got, err := f.svc.DeleteReport(context.Background(), adminUser, march2025)
	require.NoError(t, err)
	assert.Equal(t, target.ID, got.ID)
}

func TestDeleteReport_FileRemovalFailureIsNotFatal(t *testing.T) {
	f := newAdminFixture(t)
	target := &report.Upload{ID: uuid.New(), Period: march2025, FileLocation: "2025/03/a.csv"}
	f.reports.EXPECT().FindByPeriod(gomock.Any(), march2025).Return(target, nil)
	f.reports.EXPECT().Delete(gomock.Any(), target.ID).Return(nil)
	f.files.EXPECT().Remove(gomock.Any(), "2025/03/a.csv").Return(errors.New("permission denied"))

	_, err := f.svc.DeleteReport(context.Background(), adminUser, march2025)
	assert.NoError(t, err)
}

func TestDeleteReport_Forbidden(t *testing.T) {
	f := newAdminFixture(t)
	_, err := f.svc.DeleteReport(context.Background(), teacherUser, march2025)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestSweepStaleReports(t *testing.T) {
	f := newAdminFixture(t)
	cutoff := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	stuck := &report.Upload{ID: uuid.New(), Period: march2025, Status: report.StatusProcessing}
	broken := &report.Upload{ID: uuid.New(), Period: report.Period{Month: 2, Year: 2025}, Status: report.StatusProcessing}

	f.reports.EXPECT().ListStale(gomock.Any(), cutoff).Return([]*report.Upload{stuck, broken}, nil)
	f.reports.EXPECT().MarkStatus(gomock.Any(), stuck.ID, report.StatusInterrupted).Return(nil)
	f.reports.EXPECT().MarkStatus(gomock.Any(), broken.ID, report.StatusInterrupted).Return(errors.New("db down"))
	f.notifier.EXPECT().ReportInterrupted(gomock.Any(), stuck).Return(nil)

	marked, err := f.svc.SweepStaleReports(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)
	assert.Equal(t, report.StatusInterrupted, stuck.Status)
	assert.Equal(t, report.StatusProcessing, broken.Status)
}

func TestSweepStaleReports_SkipsReportsFinishedMeanwhile(t *testing.T) {
	f := newAdminFixture(t)
	cutoff := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	finished := &report.Upload{ID: uuid.New(), Period: march2025, Status: report.StatusProcessing}

	f.reports.EXPECT().ListStale(gomock.Any(), cutoff).Return([]*report.Upload{finished}, nil)
	f.reports.EXPECT().MarkStatus(gomock.Any(), finished.ID, report.StatusInterrupted).Return(report.ErrNotFound)

	marked, err := f.svc.SweepStaleReports(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, 0, marked)
	assert.Equal(t, report.StatusProcessing, finished.Status)
}

func TestSweepStaleReports_ListFailure(t *testing.T) {
	f := newAdminFixture(t)
	f.reports.EXPECT().ListStale(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	_, err := f.svc.SweepStaleReports(context.Background(), time.Now())
	assert.True(t, apperr.Is(err, apperr.KindPersistence))
}
