package httpapi

import (
	"time"

	"teacher_savings_portal/internal/domain/report"

	"github.com/google/uuid"
)

type uploadView struct {
	ID          uuid.UUID      `json:"id"`
	Month       int            `json:"month"`
	Year        int            `json:"year"`
	FileName    string         `json:"fileName"`
	UploadedBy  string         `json:"uploadedBy"`
	Status      report.Status  `json:"status"`
	Summary     report.Summary `json:"summary"`
	ProcessedAt *time.Time     `json:"processedAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func viewOf(u *report.Upload) uploadView {
	return uploadView{
		ID:          u.ID,
		Month:       u.Period.Month,
		Year:        u.Period.Year,
		FileName:    u.FileName,
		UploadedBy:  u.UploadedBy,
		Status:      u.Status,
		Summary:     u.Summary,
		ProcessedAt: u.ProcessedAt,
		CreatedAt:   u.CreatedAt,
	}
}
