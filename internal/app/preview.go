package app

import (
	"context"

	"teacher_savings_portal/internal/deduction"
	"teacher_savings_portal/internal/domain/identity"
	"teacher_savings_portal/internal/domain/report"
	"teacher_savings_portal/internal/matching"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PreviewRow is the match decision for one parsed row.
type PreviewRow struct {
	Row              int             `json:"row"`
	EmployeeNumber   string          `json:"employeeNumber,omitempty"`
	Name             string          `json:"name"`
	Amount           decimal.Decimal `json:"amount"`
	ManagementUnit   string          `json:"managementUnit,omitempty"`
	MatchMethod      matching.Method `json:"matchMethod"`
	Score            decimal.Decimal `json:"score"`
	TeacherID        string          `json:"teacherId,omitempty"`
	TeacherName      string          `json:"teacherName,omitempty"`
	SuggestedTeacher string          `json:"suggestedTeacher,omitempty"`
}

// Preview is a dry run of a reconciliation: nothing is posted or recorded.
type Preview struct {
	Month            int                    `json:"month"`
	Year             int                    `json:"year"`
	HeaderRow        int                    `json:"headerRow"`
	TotalRecords     int                    `json:"totalRecords"`
	MatchedRecords   int                    `json:"matchedRecords"`
	UnmatchedRecords int                    `json:"unmatchedRecords"`
	MatchedAmount    decimal.Decimal        `json:"matchedAmount"`
	Rows             []PreviewRow           `json:"rows"`
	Skipped          []deduction.SkippedRow `json:"skipped"`
}

// PreviewReport parses and matches a report without the duplicate-period guard,
// ledger postings or a report record.
func (s *ReconciliationService) PreviewReport(ctx context.Context, caller *identity.Principal, in UploadInput) (*Preview, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	period, err := validateUpload(in, s.maxUploadBytes)
	if err != nil {
		return nil, err
	}
	parsed, err := deduction.Parse(in.Data)
	if err != nil {
		return nil, err
	}
	snap, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}
	preview := buildPreview(period, parsed, snap)
	s.logger.WithFields(logrus.Fields{
		"period":            period.String(),
		"total_records":     preview.TotalRecords,
		"matched_records":   preview.MatchedRecords,
		"unmatched_records": preview.UnmatchedRecords,
		"matched_amount":    preview.MatchedAmount.StringFixed(2),
	}).Info("Controller report previewed")
	return preview, nil
}

func buildPreview(period report.Period, parsed *deduction.Result, snap *matching.Snapshot) *Preview {
	p := &Preview{
		Month:         period.Month,
		Year:          period.Year,
		HeaderRow:     parsed.HeaderRow,
		MatchedAmount: decimal.Zero,
		Rows:          make([]PreviewRow, 0, len(parsed.Records)),
		Skipped:       parsed.Skipped,
	}
	if p.Skipped == nil {
		p.Skipped = []deduction.SkippedRow{}
	}
	for _, rec := range parsed.Records {
		p.TotalRecords++
		m := matching.Match(queryFor(rec), snap)
		row := PreviewRow{
			Row:            rec.Row,
			EmployeeNumber: rec.EmployeeNumber,
			Name:           rec.EmployeeName,
			Amount:         rec.MonthlyDeduction,
			ManagementUnit: rec.ManagementUnit,
			MatchMethod:    m.Method,
			Score:          m.Score,
		}
		if m.Matched() {
			p.MatchedRecords++
			p.MatchedAmount = p.MatchedAmount.Add(rec.MonthlyDeduction)
			row.TeacherID = m.Teacher.ID
			row.TeacherName = m.Teacher.FullName
		} else {
			p.UnmatchedRecords++
			if suggested, ok := matching.Suggest(rec.EmployeeName, snap.Teachers); ok {
				row.SuggestedTeacher = suggested.FullName
			}
		}
		p.Rows = append(p.Rows, row)
	}
	return p
}
