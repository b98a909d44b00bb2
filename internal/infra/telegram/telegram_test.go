package telegram

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"teacher_savings_portal/internal/apperr"
	"teacher_savings_portal/internal/domain/identity"
	"teacher_savings_portal/internal/domain/notification"
	"teacher_savings_portal/internal/domain/report"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

const adminID int64 = 4242

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeClient struct {
	sent []sentMessage
	err  error
}

func (f *fakeClient) SendMessage(chatID int64, text string, _ *telebot.SendOptions) error {
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return f.err
}

type fakeAdmin struct {
	uploads   []*report.Upload
	err       error
	callers   []*identity.Principal
	lastLimit int
}

func (f *fakeAdmin) ListReports(_ context.Context, caller *identity.Principal, limit int) ([]*report.Upload, error) {
	f.callers = append(f.callers, caller)
	f.lastLimit = limit
	return f.uploads, f.err
}

func (f *fakeAdmin) GetReport(_ context.Context, caller *identity.Principal, period report.Period) (*report.Upload, error) {
	f.callers = append(f.callers, caller)
	if f.err != nil {
		return nil, f.err
	}
	return f.uploads[0], nil
}

func (f *fakeAdmin) DeleteReport(ctx context.Context, caller *identity.Principal, period report.Period) (*report.Upload, error) {
	return f.GetReport(ctx, caller, period)
}

func sampleOutcome() notification.ReportOutcome {
	upload := &report.Upload{
		ID:         uuid.New(),
		Period:     report.Period{Month: 3, Year: 2025},
		FileName:   "march.csv",
		UploadedBy: "admin-1",
		Status:     report.StatusFailed,
	}
	result := report.NewProcessingResult()
	result.TotalRecords = 8
	result.MatchedRecords = 1
	result.UnmatchedRecords = 7
	result.ProcessedTransactions = 0
	result.Errors = []string{"Row 2: failed"}
	for i := 0; i < 7; i++ {
		result.UnmatchedTeachers = append(result.UnmatchedTeachers, report.TeacherSummary{
			Row: i + 3, Name: "Unknown Person", Amount: decimal.NewFromInt(20), Reason: report.UnmatchedReason,
		})
	}
	result.UnmatchedTeachers[0].SuggestedTeacher = "John Kwame Asante"
	return notification.ReportOutcome{Upload: upload, Result: result}
}

func TestFormatOutcome(t *testing.T) {
	text := FormatOutcome(sampleOutcome())
	assert.Contains(t, text, "Controller report for March 2025: failed")
	assert.Contains(t, text, "Records: 8, matched: 1, unmatched: 7")
	assert.Contains(t, text, "Errors: 1")
	assert.Contains(t, text, "row 3: Unknown Person (20.00), did you mean John Kwame Asante?")
	assert.Contains(t, text, "...and 2 more")
}

func TestBotNotifier(t *testing.T) {
	client := &fakeClient{}
	n := NewBotNotifier(client, adminID, quietLogger())

	require.NoError(t, n.ReportProcessed(context.Background(), sampleOutcome()))
	require.NoError(t, n.ReportInterrupted(context.Background(), &report.Upload{ID: uuid.New(), Period: report.Period{Month: 2, Year: 2025}}))
	require.Len(t, client.sent, 2)
	assert.Equal(t, adminID, client.sent[0].chatID)
	assert.Contains(t, client.sent[1].text, "February 2025 was interrupted")

	client.err = errors.New("blocked by user")
	assert.Error(t, n.ReportProcessed(context.Background(), sampleOutcome()))
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(quietLogger())
	assert.NoError(t, n.ReportProcessed(context.Background(), sampleOutcome()))
	assert.NoError(t, n.ReportInterrupted(context.Background(), sampleOutcome().Upload))
}

func TestAdminHandlers_RejectOtherUsers(t *testing.T) {
	admin := &fakeAdmin{}
	h := &adminHandlers{admin: admin, adminTelegramID: adminID, logger: quietLogger()}

	assert.Equal(t, unauthorizedReply, h.reports(context.Background(), 1, nil))
	assert.Equal(t, unauthorizedReply, h.report(context.Background(), 1, []string{"3", "2025"}))
	assert.Equal(t, unauthorizedReply, h.deleteReport(context.Background(), 1, []string{"3", "2025"}))
	assert.Empty(t, admin.callers)
}

func TestAdminHandlers_Reports(t *testing.T) {
	admin := &fakeAdmin{uploads: []*report.Upload{{
		Period:  report.Period{Month: 3, Year: 2025},
		Status:  report.StatusProcessed,
		Summary: report.Summary{TotalRecords: 5, MatchedRecords: 4, ProcessedTransactions: 4},
	}}}
	h := &adminHandlers{admin: admin, adminTelegramID: adminID, logger: quietLogger()}

	reply := h.reports(context.Background(), adminID, []string{"5"})
	assert.Contains(t, reply, "March 2025: processed, 4/5 matched, 4 posted")
	assert.Equal(t, 5, admin.lastLimit)
	require.Len(t, admin.callers, 1)
	assert.True(t, admin.callers[0].IsAdmin())

	assert.Contains(t, h.reports(context.Background(), adminID, []string{"many"}), "Invalid format")
}

func TestAdminHandlers_ReportAndDelete(t *testing.T) {
	processed := time.Date(2025, 4, 2, 10, 30, 0, 0, time.UTC)
	admin := &fakeAdmin{uploads: []*report.Upload{{
		ID:          uuid.New(),
		Period:      report.Period{Month: 3, Year: 2025},
		Status:      report.StatusProcessed,
		ProcessedAt: &processed,
	}}}
	h := &adminHandlers{admin: admin, adminTelegramID: adminID, logger: quietLogger()}

	assert.Contains(t, h.report(context.Background(), adminID, []string{"3", "2025"}), "Processed at: 2025-04-02 10:30 UTC")
	assert.Contains(t, h.deleteReport(context.Background(), adminID, []string{"3", "2025"}), "March 2025 deleted")
	assert.Contains(t, h.report(context.Background(), adminID, []string{"13", "2025"}), "Invalid format")

	admin.err = apperr.NotFound("no controller report for March 2025")
	assert.Equal(t, "No controller report found for that period.", h.report(context.Background(), adminID, []string{"3", "2025"}))
}

func TestParsePeriodArgs(t *testing.T) {
	p, err := parsePeriodArgs([]string{"03", "2025"})
	require.NoError(t, err)
	assert.Equal(t, report.Period{Month: 3, Year: 2025}, p)

	for _, args := range [][]string{nil, {"3"}, {"0", "2025"}, {"3", "25"}, {"x", "2025"}} {
		_, err := parsePeriodArgs(args)
		assert.Error(t, err, args)
	}
}

func TestStartAndHelpReplies(t *testing.T) {
	text, isAdmin := startReply(adminID, adminID, "Efua")
	assert.True(t, isAdmin)
	assert.Contains(t, text, "Efua")

	_, isAdmin = helpReply(7, adminID)
	assert.False(t, isAdmin)
	text, _ = helpReply(adminID, adminID)
	assert.Contains(t, text, "/delete_report")
}
