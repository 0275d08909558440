// Route registration for the gateway API.

package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes sets up all API routes.
func (a *API) registerRoutes(mux *http.ServeMux) {
	// Ingestion and management endpoints
	mux.HandleFunc("POST /api/metrics", a.handleIngest)
	mux.HandleFunc("GET /api/health", a.handleHealth)
	mux.HandleFunc("GET /api/status", a.handleStatus)

	// Exposition snapshot of pushed metrics
	mux.HandleFunc("GET "+a.endpoint, a.handleExposition)

	// The gateway's own operational metrics
	mux.Handle("GET /internal/metrics", promhttp.HandlerFor(a.self.registry, promhttp.HandlerOpts{}))
}
