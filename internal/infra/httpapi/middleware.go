package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"teacher_savings_portal/internal/apperr"
	"teacher_savings_portal/internal/domain/identity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

type loggerKey struct{}

// requestLogger returns the request-scoped entry set by withRequestID.
func requestLogger(r *http.Request, fallback *logrus.Entry) *logrus.Entry {
	if entry, ok := r.Context().Value(loggerKey{}).(*logrus.Entry); ok {
		return entry
	}
	return fallback
}

func (h *Handler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		entry := h.logger.WithField("request_id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), loggerKey{}, entry)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		requestLogger(r, h.logger).WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("Request handled")
	})
}

// authenticate resolves the bearer token into a principal. Requests without a token
// continue anonymously and are rejected by the services; unknown tokens are rejected here.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			h.writeError(w, r, apperr.Unauthorized("expected a bearer token"))
			return
		}
		principal, err := h.auth.Authenticate(r.Context(), strings.TrimSpace(token))
		if err != nil {
			h.writeError(w, r, apperr.Wrap(err, apperr.KindUnauthorized, "invalid access token"))
			return
		}
		entry := requestLogger(r, h.logger).WithField("user_id", principal.UserID)
		ctx := identity.WithPrincipal(r.Context(), principal)
		ctx = context.WithValue(ctx, loggerKey{}, entry)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
