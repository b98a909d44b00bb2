package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"teacher_savings_portal/internal/app"
	"teacher_savings_portal/internal/apperr"
	"teacher_savings_portal/internal/domain/identity"
	"teacher_savings_portal/internal/domain/report"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// multipartOverhead is allowed on top of the file size limit for form fields and boundaries.
const multipartOverhead = 1 << 20

// Reconciler runs and previews controller report reconciliations.
type Reconciler interface {
	ProcessReport(ctx context.Context, caller *identity.Principal, in app.UploadInput) (*app.Outcome, error)
	PreviewReport(ctx context.Context, caller *identity.Principal, in app.UploadInput) (*app.Preview, error)
}

// ReportAdmin manages stored controller reports.
type ReportAdmin interface {
	ListReports(ctx context.Context, caller *identity.Principal, limit int) ([]*report.Upload, error)
	GetReport(ctx context.Context, caller *identity.Principal, period report.Period) (*report.Upload, error)
	DeleteReport(ctx context.Context, caller *identity.Principal, period report.Period) (*report.Upload, error)
}

// Handler serves the controller report API.
type Handler struct {
	reconciler     Reconciler
	admin          ReportAdmin
	auth           identity.Authenticator
	logger         *logrus.Entry
	maxUploadBytes int64
}

func NewHandler(reconciler Reconciler, admin ReportAdmin, auth identity.Authenticator, logger *logrus.Entry, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = app.DefaultMaxUploadBytes
	}
	return &Handler{
		reconciler:     reconciler,
		admin:          admin,
		auth:           auth,
		logger:         logger.WithField("component", "httpapi"),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the API with its middleware applied.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.healthz)

	api := http.NewServeMux()
	api.HandleFunc("POST /api/controller-reports", h.uploadReport)
	api.HandleFunc("POST /api/controller-reports/preview", h.previewReport)
	api.HandleFunc("GET /api/controller-reports", h.listReports)
	api.HandleFunc("GET /api/controller-reports/{year}/{month}", h.getReport)
	api.HandleFunc("DELETE /api/controller-reports/{year}/{month}", h.deleteReport)
	mux.Handle("/api/", h.authenticate(api))

	return h.withRequestID(h.withAccessLog(mux))
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type uploadResponse struct {
	Success  bool          `json:"success"`
	ReportID uuid.UUID     `json:"reportId"`
	Status   report.Status `json:"status"`
	*report.ProcessingResult
}

func (h *Handler) uploadReport(w http.ResponseWriter, r *http.Request) {
	in, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	// The run keeps going if the client disconnects so every row and the final status are written.
	runCtx := context.WithoutCancel(r.Context())
	out, err := h.reconciler.ProcessReport(runCtx, identity.FromContext(r.Context()), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		Success:          true,
		ReportID:         out.ReportID,
		Status:           out.Status,
		ProcessingResult: out.Result,
	})
}

func (h *Handler) previewReport(w http.ResponseWriter, r *http.Request) {
	in, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	preview, err := h.reconciler.PreviewReport(r.Context(), identity.FromContext(r.Context()), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, r, apperr.Validation("limit must be a positive number, got %q", raw))
			return
		}
		limit = n
	}
	uploads, err := h.admin.ListReports(r.Context(), identity.FromContext(r.Context()), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	views := make([]uploadView, 0, len(uploads))
	for _, u := range uploads {
		views = append(views, viewOf(u))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": views})
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.admin.GetReport(r.Context(), identity.FromContext(r.Context()), period)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(u))
}

func (h *Handler) deleteReport(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.admin.DeleteReport(r.Context(), identity.FromContext(r.Context()), period)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": viewOf(u)})
}

// readUpload extracts the multipart submission. Missing parts are left empty for the
// service to reject with a precise message.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (app.UploadInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return app.UploadInput{}, apperr.Validation("request is larger than the %d byte limit", h.maxUploadBytes)
		}
		return app.UploadInput{}, apperr.Validation("expected a multipart form with file, month and year")
	}

	in := app.UploadInput{
		Month: r.FormValue("month"),
		Year:  r.FormValue("year"),
	}
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return in, apperr.Validation("could not read the uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return in, apperr.Validation("could not read the uploaded file")
	}
	in.FileName = header.Filename
	in.ContentType = header.Header.Get("Content-Type")
	in.Size = header.Size
	in.Data = data
	return in, nil
}

func periodFromPath(r *http.Request) (report.Period, error) {
	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil || month < 1 || month > 12 {
		return report.Period{}, apperr.Validation("month must be a number from 1 to 12, got %q", r.PathValue("month"))
	}
	yearStr := r.PathValue("year")
	year, err := strconv.Atoi(yearStr)
	if err != nil || len(yearStr) != 4 {
		return report.Period{}, apperr.Validation("year must be a 4-digit number, got %q", yearStr)
	}
	return report.Period{Month: month, Year: year}, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
