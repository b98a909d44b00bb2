package report

import "context"

// FileStore keeps the uploaded spreadsheet of each report.
//
//go:generate mockgen -destination=../../app/mocks/mock_file_store.go -package=mocks teacher_savings_portal/internal/domain/report FileStore
type FileStore interface {
	// Save stores the file and returns its location reference.
	Save(ctx context.Context, upload *Upload, data []byte) (string, error)
	Remove(ctx context.Context, location string) error
}
