// Package metrics implements the dynamic metric registry at the heart of the
// gateway: typed, labeled instruments are created lazily the first time a
// metric name is observed, and every later update is routed to the existing
// instrument by qualified name.
//
// Supported metric types:
//   - Counter: monotonically increasing value (e.g., request counts)
//   - Gauge: last-set value (e.g., queue depth)
//   - Histogram: distribution of observed values over a fixed bucket ladder
//
// The summary type is accepted on the wire for compatibility but always
// rejected during registration.
//
// A metric's label-key schema is fixed at the moment its instrument is
// created. Later updates must carry values for exactly that key set; keys
// missing from an update default to the empty string, extra keys are ignored.
// An instrument's type is likewise fixed: a second measurement claiming a
// different type for the same name is rejected, never coerced.
//
// Instruments are backed by prometheus/client_golang vectors, so per-series
// state is safe for concurrent mutation without holding the registry lock.
//
// # Usage
//
//	registry := metrics.NewRegistry(
//		metrics.WithPrefix("app"),
//		metrics.WithNamespace("gateway"),
//	)
//	collector := metrics.NewCollector(registry)
//
//	if err := metrics.ValidateBatch(batch); err != nil {
//		// reject the request
//	}
//	result, err := collector.ProcessBatch(batch)
//
//	// Render the exposition snapshot for scrapers.
//	text, err := collector.Gather()
package metrics
