package telegram

import (
	"context"
	"fmt"
	"strings"

	"teacher_savings_portal/internal/domain/notification"
	"teacher_savings_portal/internal/domain/report"
	domaintg "teacher_savings_portal/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

// maxListedUnmatched caps how many unmatched rows are named in a notification.
const maxListedUnmatched = 5

// BotNotifier reports reconciliation outcomes to the administrator chat.
type BotNotifier struct {
	client      domaintg.Client
	adminChatID int64
	logger      *logrus.Entry
}

func NewBotNotifier(client domaintg.Client, adminChatID int64, logger *logrus.Entry) *BotNotifier {
	return &BotNotifier{
		client:      client,
		adminChatID: adminChatID,
		logger:      logger.WithField("component", "telegram_notifier"),
	}
}

func (n *BotNotifier) ReportProcessed(_ context.Context, outcome notification.ReportOutcome) error {
	text := FormatOutcome(outcome)
	if err := n.client.SendMessage(n.adminChatID, text, nil); err != nil {
		return err
	}
	n.logger.WithField("report_id", outcome.Upload.ID).Debug("Outcome sent to administrator")
	return nil
}

func (n *BotNotifier) ReportInterrupted(_ context.Context, upload *report.Upload) error {
	text := fmt.Sprintf("Controller report for %s was interrupted while processing (report %s).\n"+
		"Check the ledger for %s before deleting and re-uploading it.",
		upload.Period.Label(), upload.ID, upload.Period.Label())
	return n.client.SendMessage(n.adminChatID, text, nil)
}

// FormatOutcome renders a reconciliation outcome as a chat message.
func FormatOutcome(outcome notification.ReportOutcome) string {
	u, r := outcome.Upload, outcome.Result
	var b strings.Builder
	fmt.Fprintf(&b, "Controller report for %s: %s\n", u.Period.Label(), u.Status)
	fmt.Fprintf(&b, "File: %s (uploaded by %s)\n", u.FileName, u.UploadedBy)
	fmt.Fprintf(&b, "Records: %d, matched: %d, unmatched: %d\n", r.TotalRecords, r.MatchedRecords, r.UnmatchedRecords)
	fmt.Fprintf(&b, "Transactions posted: %d\n", r.ProcessedTransactions)
	if r.SkippedRows > 0 {
		fmt.Fprintf(&b, "Rows skipped: %d\n", r.SkippedRows)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "Errors: %d\n", len(r.Errors))
	}
	if len(r.UnmatchedTeachers) > 0 {
		b.WriteString("Unmatched:\n")
		for i, t := range r.UnmatchedTeachers {
			if i == maxListedUnmatched {
				fmt.Fprintf(&b, "  ...and %d more\n", len(r.UnmatchedTeachers)-maxListedUnmatched)
				break
			}
			fmt.Fprintf(&b, "  row %d: %s (%s)", t.Row, t.Name, t.Amount.StringFixed(2))
			if t.SuggestedTeacher != "" {
				fmt.Fprintf(&b, ", did you mean %s?", t.SuggestedTeacher)
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// LogNotifier writes outcomes to the log. It is used when the bot is disabled.
type LogNotifier struct {
	logger *logrus.Entry
}

func NewLogNotifier(logger *logrus.Entry) *LogNotifier {
	return &LogNotifier{logger: logger.WithField("component", "log_notifier")}
}

func (n *LogNotifier) ReportProcessed(_ context.Context, outcome notification.ReportOutcome) error {
	n.logger.WithFields(logrus.Fields{
		"report_id": outcome.Upload.ID,
		"period":    outcome.Upload.Period.String(),
		"status":    outcome.Upload.Status,
	}).Info("Controller report outcome")
	return nil
}

func (n *LogNotifier) ReportInterrupted(_ context.Context, upload *report.Upload) error {
	n.logger.WithFields(logrus.Fields{
		"report_id": upload.ID,
		"period":    upload.Period.String(),
	}).Warn("Controller report interrupted")
	return nil
}
