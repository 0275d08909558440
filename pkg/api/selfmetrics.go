package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// selfMetrics are the gateway's own operational metrics, kept on a registry
// separate from the pushed-metric registry so the exposition snapshot at the
// scrape endpoint contains only what clients pushed.
type selfMetrics struct {
	registry *prometheus.Registry

	// requests counts handled HTTP requests. Labels: method, path, status.
	requests *prometheus.CounterVec

	// duration tracks request handling time in seconds. Labels: method, path.
	duration *prometheus.HistogramVec

	// ingestBatches counts processed batches. Labels: status
	// (success, partial_success, failed).
	ingestBatches *prometheus.CounterVec

	// ingestMetrics counts individual measurements. Labels: outcome
	// (processed, failed).
	ingestMetrics *prometheus.CounterVec
}

func newSelfMetrics() *selfMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &selfMetrics{
		registry: registry,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insightd_http_requests_total",
			Help: "Total number of HTTP requests handled by the gateway.",
		}, []string{"method", "path", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "insightd_http_request_duration_seconds",
			Help:    "HTTP request handling duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		ingestBatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insightd_ingest_batches_total",
			Help: "Total number of ingested metric batches by outcome.",
		}, []string{"status"}),
		ingestMetrics: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "insightd_ingest_metrics_total",
			Help: "Total number of ingested measurements by outcome.",
		}, []string{"outcome"}),
	}
}
