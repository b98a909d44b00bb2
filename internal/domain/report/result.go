package report

import "github.com/shopspring/decimal"

// UnmatchedReason is reported for every row no teacher could be found for.
const UnmatchedReason = "No matching teacher found in database"

// TeacherSummary describes one matched or unmatched row for reporting.
type TeacherSummary struct {
	Row              int             `json:"row"`
	Name             string          `json:"name"`
	Amount           decimal.Decimal `json:"amount"`
	ManagementUnit   string          `json:"managementUnit,omitempty"`
	TeacherID        string          `json:"teacherId,omitempty"`
	MatchMethod      string          `json:"matchMethod,omitempty"`
	Reason           string          `json:"reason,omitempty"`
	SuggestedTeacher string          `json:"suggestedTeacher,omitempty"`
}

// ProcessingResult is the aggregate outcome of one reconciliation run.
//
// MatchedRecords counts rows the matcher resolved to a teacher; ProcessedTransactions
// counts those whose ledger posting succeeded. MatchedRecords+UnmatchedRecords always
// equals TotalRecords.
type ProcessingResult struct {
	TotalRecords          int              `json:"totalRecords"`
	MatchedRecords        int              `json:"matchedRecords"`
	UnmatchedRecords      int              `json:"unmatchedRecords"`
	ProcessedTransactions int              `json:"processedTransactions"`
	SkippedRows           int              `json:"skippedRows"`
	Errors                []string         `json:"errors"`
	Warnings              []string         `json:"warnings"`
	MatchedTeachers       []TeacherSummary `json:"matchedTeachers"`
	UnmatchedTeachers     []TeacherSummary `json:"unmatchedTeachers"`
}

// NewProcessingResult returns an empty result with non-nil slices so it renders as [] in JSON.
func NewProcessingResult() *ProcessingResult {
	return &ProcessingResult{
		Errors:            []string{},
		Warnings:          []string{},
		MatchedTeachers:   []TeacherSummary{},
		UnmatchedTeachers: []TeacherSummary{},
	}
}

// Summary extracts the counts persisted with the report record.
func (r *ProcessingResult) Summary() Summary {
	return Summary{
		TotalRecords:          r.TotalRecords,
		MatchedRecords:        r.MatchedRecords,
		UnmatchedRecords:      r.UnmatchedRecords,
		ProcessedTransactions: r.ProcessedTransactions,
		ErrorCount:            len(r.Errors),
	}
}

// FinalStatus is failed when any row failed to post, processed otherwise.
func (r *ProcessingResult) FinalStatus() Status {
	if len(r.Errors) > 0 {
		return StatusFailed
	}
	return StatusProcessed
}
