package metrics

// MetricType identifies the kind of instrument a measurement targets.
type MetricType string

// Supported metric types. TypeSummary is part of the wire format but is
// rejected during registration.
const (
	TypeCounter   MetricType = "counter"
	TypeGauge     MetricType = "gauge"
	TypeHistogram MetricType = "histogram"
	TypeSummary   MetricType = "summary"
)

// MetricValue carries the numeric payload of a measurement. The timestamp is
// informational only; instruments always aggregate in arrival order.
type MetricValue struct {
	Value     float64 `json:"value"`
	Timestamp *int64  `json:"timestamp"`
}

// Metric is a single measurement pushed by a client. It is consumed by the
// collector and either folded into an instrument or rejected.
type Metric struct {
	Name   string            `json:"name"`
	Type   MetricType        `json:"metric_type"`
	Help   string            `json:"help"`
	Labels map[string]string `json:"labels"`
	Value  MetricValue       `json:"value"`
}

// Batch is one ingestion request: a list of measurements plus an identifier
// for the system that produced them.
type Batch struct {
	Metrics []Metric `json:"metrics"`
	Source  string   `json:"source"`
}

// BatchStatus is the overall outcome of processing a batch.
type BatchStatus string

const (
	// StatusSuccess means every measurement in the batch was applied.
	StatusSuccess BatchStatus = "success"

	// StatusPartialSuccess means at least one measurement was applied and at
	// least one failed.
	StatusPartialSuccess BatchStatus = "partial_success"
)

// BatchResult summarizes the outcome of processing one batch. Errors holds
// one human-readable message per failed measurement, in input order.
type BatchResult struct {
	Processed int         `json:"processed"`
	Status    BatchStatus `json:"status"`
	Errors    []string    `json:"errors"`
}
