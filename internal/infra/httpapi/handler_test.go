package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"teacher_savings_portal/internal/app"
	"teacher_savings_portal/internal/apperr"
	"teacher_savings_portal/internal/domain/identity"
	"teacher_savings_portal/internal/domain/report"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReconciler struct {
	got     app.UploadInput
	caller  *identity.Principal
	outcome *app.Outcome
	err     error
	ctxErr  error
}

func (f *fakeReconciler) ProcessReport(ctx context.Context, caller *identity.Principal, in app.UploadInput) (*app.Outcome, error) {
	f.got, f.caller = in, caller
	f.ctxErr = ctx.Err()
	return f.outcome, f.err
}

func (f *fakeReconciler) PreviewReport(_ context.Context, caller *identity.Principal, in app.UploadInput) (*app.Preview, error) {
	f.got, f.caller = in, caller
	if f.err != nil {
		return nil, f.err
	}
	return &app.Preview{Month: 3, Year: 2025, TotalRecords: 1}, nil
}

type fakeAdmin struct {
	period report.Period
	limit  int
	err    error
}

func (f *fakeAdmin) ListReports(_ context.Context, _ *identity.Principal, limit int) ([]*report.Upload, error) {
	f.limit = limit
	return []*report.Upload{{ID: uuid.New(), Period: report.Period{Month: 3, Year: 2025}, Status: report.StatusProcessed}}, f.err
}

func (f *fakeAdmin) GetReport(_ context.Context, _ *identity.Principal, period report.Period) (*report.Upload, error) {
	f.period = period
	if f.err != nil {
		return nil, f.err
	}
	return &report.Upload{ID: uuid.New(), Period: period, Status: report.StatusProcessed}, nil
}

func (f *fakeAdmin) DeleteReport(ctx context.Context, caller *identity.Principal, period report.Period) (*report.Upload, error) {
	return f.GetReport(ctx, caller, period)
}

func newTestHandler(t *testing.T, rec *fakeReconciler, admin *fakeAdmin) http.Handler {
	t.Helper()
	auth, err := identity.ParseTokenTable("admintoken:admin-1:admin,teachertoken:T1:teacher")
	require.NoError(t, err)
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewHandler(rec, admin, auth, logrus.NewEntry(l), 1024).Routes()
}

func multipartUpload(t *testing.T, contentType string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if data != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="march.csv"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func decodeError(t *testing.T, res *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	return body.Error
}

func TestUploadReport(t *testing.T) {
	result := report.NewProcessingResult()
	result.TotalRecords, result.MatchedRecords, result.ProcessedTransactions = 1, 1, 1
	id := uuid.New()
	rec := &fakeReconciler{outcome: &app.Outcome{ReportID: id, Status: report.StatusProcessed, Result: result}}
	h := newTestHandler(t, rec, &fakeAdmin{})

	body, ct := multipartUpload(t, "text/csv", []byte("Employee Name,Monthly Deduction\nJohn,10\n"), map[string]string{"month": "3", "year": "2025"})
	req := httptest.NewRequest(http.MethodPost, "/api/controller-reports", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer admintoken")
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.NotEmpty(t, res.Header().Get(requestIDHeader))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &got))
	assert.Equal(t, id.String(), got["reportId"])
	assert.Equal(t, "processed", got["status"])
	assert.Equal(t, float64(1), got["processedTransactions"])
	assert.Equal(t, []interface{}{}, got["errors"])

	assert.Equal(t, "3", rec.got.Month)
	assert.Equal(t, "2025", rec.got.Year)
	assert.Equal(t, "march.csv", rec.got.FileName)
	assert.Equal(t, "text/csv", rec.got.ContentType)
	require.NotNil(t, rec.caller)
	assert.Equal(t, "admin-1", rec.caller.UserID)
}

func TestUploadReport_RunSurvivesClientDisconnect(t *testing.T) {
	result := report.NewProcessingResult()
	rec := &fakeReconciler{outcome: &app.Outcome{ReportID: uuid.New(), Status: report.StatusProcessed, Result: result}}
	h := newTestHandler(t, rec, &fakeAdmin{})

	body, ct := multipartUpload(t, "text/csv", []byte("Employee Name,Monthly Deduction\nJohn,10\n"), map[string]string{"month": "3", "year": "2025"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/controller-reports", body).WithContext(ctx)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer admintoken")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, rec.caller)
	assert.Equal(t, "admin-1", rec.caller.UserID)
	assert.NoError(t, rec.ctxErr)
}

func TestUploadReport_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   apperr.Kind
	}{
		{name: "validation", err: apperr.Validation("month and year are required"), status: http.StatusBadRequest, kind: apperr.KindValidation},
		{name: "duplicate", err: apperr.Duplicate("already uploaded").WithSuggestion("delete it first"), status: http.StatusConflict, kind: apperr.KindDuplicateReport},
		{name: "parse", err: apperr.Parse("header not found"), status: http.StatusUnprocessableEntity, kind: apperr.KindParse},
		{name: "persistence", err: apperr.Persistence(errors.New("pq: connection refused"), "failed to load teacher roster"), status: http.StatusInternalServerError, kind: apperr.KindPersistence},
		{name: "forbidden", err: apperr.Forbidden("admins only"), status: http.StatusForbidden, kind: apperr.KindForbidden},
		{name: "unclassified", err: errors.New("boom"), status: http.StatusInternalServerError, kind: apperr.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &fakeReconciler{err: tt.err}, &fakeAdmin{})
			body, ct := multipartUpload(t, "text/csv", []byte("a,b\n"), map[string]string{"month": "3", "year": "2025"})
			req := httptest.NewRequest(http.MethodPost, "/api/controller-reports", body)
			req.Header.Set("Content-Type", ct)
			req.Header.Set("Authorization", "Bearer admintoken")
			res := httptest.NewRecorder()
			h.ServeHTTP(res, req)

			assert.Equal(t, tt.status, res.Code)
			detail := decodeError(t, res)
			assert.Equal(t, tt.kind, detail.Kind)
			assert.NotContains(t, detail.Message, "pq:")
		})
	}
}

func TestUploadReport_DuplicateCarriesSuggestion(t *testing.T) {
	h := newTestHandler(t, &fakeReconciler{err: apperr.Duplicate("already uploaded").WithSuggestion("delete it first")}, &fakeAdmin{})
	body, ct := multipartUpload(t, "text/csv", []byte("a,b\n"), map[string]string{"month": "3", "year": "2025"})
	req := httptest.NewRequest(http.MethodPost, "/api/controller-reports", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer admintoken")
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	assert.Equal(t, "delete it first", decodeError(t, res).Suggestion)
}

func TestUploadReport_MissingFileReachesService(t *testing.T) {
	rec := &fakeReconciler{err: apperr.Validation("a controller report file is required")}
	h := newTestHandler(t, rec, &fakeAdmin{})
	body, ct := multipartUpload(t, "", nil, map[string]string{"month": "3", "year": "2025"})
	req := httptest.NewRequest(http.MethodPost, "/api/controller-reports", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer admintoken")
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Nil(t, rec.got.Data)
	assert.Equal(t, "3", rec.got.Month)
}

func TestUploadReport_NotMultipart(t *testing.T) {
	h := newTestHandler(t, &fakeReconciler{}, &fakeAdmin{})
	req := httptest.NewRequest(http.MethodPost, "/api/controller-reports", bytes.NewBufferString(`{"month":3}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer admintoken")
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestAuthentication(t *testing.T) {
	h := newTestHandler(t, &fakeReconciler{}, &fakeAdmin{})

	req := httptest.NewRequest(http.MethodGet, "/api/controller-reports", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/controller-reports", nil)
	req.Header.Set("Authorization", "Basic abc")
	res = httptest.NewRecorder()
	h.ServeHTTP(res, req)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestPreviewReport(t *testing.T) {
	rec := &fakeReconciler{}
	h := newTestHandler(t, rec, &fakeAdmin{})
	body, ct := multipartUpload(t, "text/csv", []byte("a,b\n"), map[string]string{"month": "3", "year": "2025"})
	req := httptest.NewRequest(http.MethodPost, "/api/controller-reports/preview", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer admintoken")
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	var preview app.Preview
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &preview))
	assert.Equal(t, 1, preview.TotalRecords)
}

func TestReportRoutes(t *testing.T) {
	admin := &fakeAdmin{}
	h := newTestHandler(t, &fakeReconciler{}, admin)

	req := httptest.NewRequest(http.MethodGet, "/api/controller-reports?limit=5", nil)
	req.Header.Set("Authorization", "Bearer admintoken")
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, 5, admin.limit)

	req = httptest.NewRequest(http.MethodGet, "/api/controller-reports/2025/03", nil)
	req.Header.Set("Authorization", "Bearer admintoken")
	res = httptest.NewRecorder()
	h.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, report.Period{Month: 3, Year: 2025}, admin.period)

	req = httptest.NewRequest(http.MethodDelete, "/api/controller-reports/2025/13", nil)
	req.Header.Set("Authorization", "Bearer admintoken")
	res = httptest.NewRecorder()
	h.ServeHTTP(res, req)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	admin.err = apperr.NotFound("no controller report for March 2025")
	req = httptest.NewRequest(http.MethodDelete, "/api/controller-reports/2025/3", nil)
	req.Header.Set("Authorization", "Bearer admintoken")
	res = httptest.NewRecorder()
	h.ServeHTTP(res, req)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t, &fakeReconciler{}, &fakeAdmin{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "1b4e28ba-2fa1-11d2-883f-0016d3cca427", res.Header().Get(requestIDHeader))
}
