package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/insightd/insightd/pkg/logging"
	"github.com/insightd/insightd/pkg/metrics"
)

// Config holds the HTTP server settings for the API.
type Config struct {
	// Addr is the host:port to listen on.
	Addr string

	// ReadTimeout and WriteTimeout bound request handling. Zero means the
	// net/http defaults.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MetricsEndpoint is the path the exposition snapshot is served on.
	// Defaults to /metrics.
	MetricsEndpoint string

	// Version is reported by the health and status endpoints.
	Version string
}

// API is the HTTP surface of the gateway.
type API struct {
	collector  *metrics.Collector
	endpoint   string
	version    string
	httpServer *http.Server
	self       *selfMetrics
	log        *slog.Logger
	startTime  time.Time
}

// New creates the API around a collector. The server is not started until
// Start is called.
func New(cfg Config, collector *metrics.Collector) *API {
	endpoint := cfg.MetricsEndpoint
	if endpoint == "" {
		endpoint = "/metrics"
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	a := &API{
		collector: collector,
		endpoint:  endpoint,
		version:   version,
		self:      newSelfMetrics(),
		log:       logging.Nop(),
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	a.registerRoutes(mux)

	a.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      a.withMiddleware(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return a
}

// SetLogger sets the operational logger for the API.
func (a *API) SetLogger(log *slog.Logger) {
	if log != nil {
		a.log = log
	} else {
		a.log = logging.Nop()
	}
}

// Handler returns the fully wired handler, including middleware. Exposed for
// tests that drive the API through httptest.
func (a *API) Handler() http.Handler {
	return a.httpServer.Handler
}

// Start begins serving in a background goroutine.
func (a *API) Start() error {
	a.startTime = time.Now()

	a.log.Info("starting metrics gateway API", "addr", a.httpServer.Addr)
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("metrics gateway API error", "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the server, waiting for in-flight requests.
func (a *API) Stop(ctx context.Context) error {
	return a.httpServer.Shutdown(ctx)
}

// Uptime returns the API uptime in seconds.
func (a *API) Uptime() int64 {
	return int64(time.Since(a.startTime).Seconds())
}
