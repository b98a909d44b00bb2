package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"teacher_savings_portal/internal/apperr"
	"teacher_savings_portal/internal/domain/identity"
	"teacher_savings_portal/internal/domain/report"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// ReportAdmin is the report administration used by the bot.
type ReportAdmin interface {
	ListReports(ctx context.Context, caller *identity.Principal, limit int) ([]*report.Upload, error)
	GetReport(ctx context.Context, caller *identity.Principal, period report.Period) (*report.Upload, error)
	DeleteReport(ctx context.Context, caller *identity.Principal, period report.Period) (*report.Upload, error)
}

const unauthorizedReply = "You are not allowed to use this command."

type adminHandlers struct {
	admin           ReportAdmin
	adminTelegramID int64
	logger          *logrus.Entry
}

// RegisterAdminHandlers registers the report commands for the configured administrator.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, admin ReportAdmin, adminTelegramID int64, baseLogger *logrus.Entry) {
	h := &adminHandlers{admin: admin, adminTelegramID: adminTelegramID, logger: baseLogger}

	b.Handle("/reports", func(c telebot.Context) error {
		return c.Send(h.reports(ctx, c.Sender().ID, c.Args()))
	})
	b.Handle("/report", func(c telebot.Context) error {
		return c.Send(h.report(ctx, c.Sender().ID, c.Args()))
	})
	b.Handle("/delete_report", func(c telebot.Context) error {
		return c.Send(h.deleteReport(ctx, c.Sender().ID, c.Args()))
	})
}

// principalFor maps the configured Telegram administrator onto a portal principal.
func (h *adminHandlers) principalFor(senderID int64) *identity.Principal {
	if senderID != h.adminTelegramID {
		return nil
	}
	return &identity.Principal{UserID: fmt.Sprintf("telegram:%d", senderID), Role: identity.RoleAdmin}
}

func (h *adminHandlers) reports(ctx context.Context, senderID int64, args []string) string {
	log := h.logger.WithFields(logrus.Fields{"handler": "/reports", "sender_id": senderID})
	caller := h.principalFor(senderID)
	if caller == nil {
		log.Warn("Unauthorized access attempt")
		return unauthorizedReply
	}

	limit := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return "Invalid format. Use: /reports [count]"
		}
		limit = n
	}

	uploads, err := h.admin.ListReports(ctx, caller, limit)
	if err != nil {
		log.WithError(err).Error("Failed to list reports")
		return replyForError(err)
	}
	if len(uploads) == 0 {
		return "No controller reports have been uploaded yet."
	}
	var b strings.Builder
	b.WriteString("Controller reports:\n")
	for _, u := range uploads {
		fmt.Fprintf(&b, "%s: %s, %d/%d matched, %d posted\n",
			u.Period.Label(), u.Status, u.Summary.MatchedRecords, u.Summary.TotalRecords, u.Summary.ProcessedTransactions)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (h *adminHandlers) report(ctx context.Context, senderID int64, args []string) string {
	log := h.logger.WithFields(logrus.Fields{"handler": "/report", "sender_id": senderID})
	caller := h.principalFor(senderID)
	if caller == nil {
		log.Warn("Unauthorized access attempt")
		return unauthorizedReply
	}
	period, err := parsePeriodArgs(args)
	if err != nil {
		return "Invalid format. Use: /report <month> <year>"
	}

	u, err := h.admin.GetReport(ctx, caller, period)
	if err != nil {
		log.WithError(err).Warn("Failed to get report")
		return replyForError(err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Controller report for %s\n", u.Period.Label())
	fmt.Fprintf(&b, "ID: %s\nStatus: %s\nFile: %s\nUploaded by: %s\n", u.ID, u.Status, u.FileName, u.UploadedBy)
	fmt.Fprintf(&b, "Records: %d, matched: %d, unmatched: %d, posted: %d, errors: %d",
		u.Summary.TotalRecords, u.Summary.MatchedRecords, u.Summary.UnmatchedRecords,
		u.Summary.ProcessedTransactions, u.Summary.ErrorCount)
	if u.ProcessedAt != nil {
		fmt.Fprintf(&b, "\nProcessed at: %s", u.ProcessedAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	return b.String()
}

func (h *adminHandlers) deleteReport(ctx context.Context, senderID int64, args []string) string {
	log := h.logger.WithFields(logrus.Fields{"handler": "/delete_report", "sender_id": senderID})
	caller := h.principalFor(senderID)
	if caller == nil {
		log.Warn("Unauthorized access attempt")
		return unauthorizedReply
	}
	period, err := parsePeriodArgs(args)
	if err != nil {
		return "Invalid format. Use: /delete_report <month> <year>"
	}

	deleted, err := h.admin.DeleteReport(ctx, caller, period)
	if err != nil {
		log.WithError(err).Warn("Failed to delete report")
		return replyForError(err)
	}
	log.WithField("report_id", deleted.ID).Info("Report deleted")
	return fmt.Sprintf("Controller report for %s deleted. Posted transactions were kept.", deleted.Period.Label())
}

func parsePeriodArgs(args []string) (report.Period, error) {
	if len(args) != 2 {
		return report.Period{}, fmt.Errorf("expected month and year")
	}
	month, err := strconv.Atoi(args[0])
	if err != nil || month < 1 || month > 12 {
		return report.Period{}, fmt.Errorf("invalid month %q", args[0])
	}
	year, err := strconv.Atoi(args[1])
	if err != nil || len(args[1]) != 4 {
		return report.Period{}, fmt.Errorf("invalid year %q", args[1])
	}
	return report.Period{Month: month, Year: year}, nil
}

func replyForError(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return "No controller report found for that period."
	case apperr.KindForbidden, apperr.KindUnauthorized:
		return unauthorizedReply
	default:
		return "Something went wrong, please try again later."
	}
}
