// Package api exposes the gateway over HTTP: a JSON ingestion endpoint that
// feeds batches of measurements into the metric registry, the Prometheus
// text exposition endpoint for scrapers, and health/status endpoints.
//
// Routes:
//
//	POST /api/metrics      ingest a batch of measurements
//	GET  /api/health       liveness probe
//	GET  /api/status       uptime and registered-metric count
//	GET  /metrics          exposition snapshot of pushed metrics
//	GET  /internal/metrics the gateway's own operational metrics
//
// The package holds no metric state of its own; it validates request bodies
// and hands them to a metrics.Collector.
package api
