package report

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an uploaded controller report.
type Status string

const (
	StatusProcessing  Status = "processing"
	StatusProcessed   Status = "processed"
	StatusFailed      Status = "failed"
	StatusInterrupted Status = "interrupted" // Left in processing past the stale threshold
)

// Upload records one reconciliation run. Corresponds to the 'controller_reports' table.
// At most one row exists per (month, year).
type Upload struct {
	ID           uuid.UUID
	Period       Period
	FileName     string
	FileLocation string
	UploadedBy   string
	Status       Status
	Summary      Summary
	ProcessedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary holds the counts stored with a finalized report.
type Summary struct {
	TotalRecords          int `json:"totalRecords"`
	MatchedRecords        int `json:"matchedRecords"`
	UnmatchedRecords      int `json:"unmatchedRecords"`
	ProcessedTransactions int `json:"processedTransactions"`
	ErrorCount            int `json:"errorCount"`
}
