package httpapi

import (
	"net/http"
	"time"
)

// NewServer wraps the handler in an http.Server with conservative timeouts.
// Reconciliation runs synchronously, so the write timeout covers a full run.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
}
