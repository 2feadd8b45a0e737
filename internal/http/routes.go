// Package httpx serves the operational endpoints of the fatal-log-mailer daemon:
// liveness, readiness and the harvest trigger status. There is no admin surface here.
package httpx

import (
	"net/http"
)

// RouterServices contains the dependencies the routes read from.
type RouterServices struct {
	Readiness []ReadinessCheck
	Triggers  TriggerReader // Optional: /status is not registered without it
}

// NewRouter registers the ops routes. Middleware is applied by the caller.
func NewRouter(services RouterServices) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler)) // also serves HEAD
	mux.Handle("GET /readyz", readyHandler(services.Readiness))
	if services.Triggers != nil {
		mux.Handle("GET /status", statusHandler(services.Triggers))
	}
	return mux
}
