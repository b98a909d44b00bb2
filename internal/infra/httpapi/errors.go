package httpapi

import (
	"errors"
	"net/http"

	"teacher_savings_portal/internal/apperr"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind       apperr.Kind `json:"kind"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation:      http.StatusBadRequest,
	apperr.KindDuplicateReport: http.StatusConflict,
	apperr.KindParse:           http.StatusUnprocessableEntity,
	apperr.KindPersistence:     http.StatusInternalServerError,
	apperr.KindUnauthorized:    http.StatusUnauthorized,
	apperr.KindForbidden:       http.StatusForbidden,
	apperr.KindNotFound:        http.StatusNotFound,
	apperr.KindInternal:        http.StatusInternalServerError,
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	if status, ok := statusByKind[apperr.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	detail := errorDetail{Kind: apperr.KindOf(err), Suggestion: apperr.SuggestionOf(err)}

	log := requestLogger(r, h.logger).WithError(err).WithField("kind", detail.Kind)
	if status >= http.StatusInternalServerError {
		// Storage causes stay in the log.
		log.Errorf("%+v", err)
		detail.Message = "internal error, please try again later"
		if e := asAppError(err); e != nil {
			detail.Message = e.Message
		}
	} else {
		log.Warn("Request rejected")
		detail.Message = err.Error()
	}
	writeJSON(w, status, errorBody{Error: detail})
}

func asAppError(err error) *apperr.Error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
