package app

import (
	"mime"
	"strconv"
	"strings"

	"teacher_savings_portal/internal/apperr"
	"teacher_savings_portal/internal/domain/report"
)

// DefaultMaxUploadBytes is the controller report size limit (10 MiB).
const DefaultMaxUploadBytes int64 = 10 << 20

// acceptedContentTypes are the spreadsheet MIME types accepted for controller reports.
var acceptedContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

// UploadInput is a controller report submission as received from the outside world.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Data        []byte
	Month       string
	Year        string
}

// validateUpload checks the submission and returns the period it covers.
func validateUpload(in UploadInput, maxBytes int64) (report.Period, error) {
	if len(in.Data) == 0 {
		return report.Period{}, apperr.Validation("a controller report file is required")
	}

	mediaType, _, err := mime.ParseMediaType(in.ContentType)
	if err != nil || !acceptedContentTypes[strings.ToLower(mediaType)] {
		return report.Period{}, apperr.Validation("unsupported file type %q", in.ContentType).
			WithSuggestion("upload a CSV or Excel spreadsheet")
	}

	size := in.Size
	if size <= 0 {
		size = int64(len(in.Data))
	}
	if size > maxBytes {
		return report.Period{}, apperr.Validation("file is %d bytes, the limit is %d bytes", size, maxBytes)
	}

	monthStr := strings.TrimSpace(in.Month)
	yearStr := strings.TrimSpace(in.Year)
	if monthStr == "" || yearStr == "" {
		return report.Period{}, apperr.Validation("month and year are required")
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return report.Period{}, apperr.Validation("month must be a number from 1 to 12, got %q", in.Month)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || len(yearStr) != 4 || year < 1000 {
		return report.Period{}, apperr.Validation("year must be a 4-digit number, got %q", in.Year)
	}
	return report.Period{Month: month, Year: year}, nil
}
