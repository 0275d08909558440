package metrics

import "log/slog"

// Default name qualification applied when no options are given.
const (
	DefaultPrefix    = "app"
	DefaultNamespace = "insightd"
)

// Option configures a Registry.
type Option func(*Registry)

// WithPrefix sets the process-wide prefix prepended to every metric name.
func WithPrefix(prefix string) Option {
	return func(r *Registry) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithNamespace sets the namespace segment of qualified metric names.
func WithNamespace(namespace string) Option {
	return func(r *Registry) {
		if namespace != "" {
			r.namespace = namespace
		}
	}
}

// WithBuckets overrides the default histogram bucket ladder. All histograms
// created by the registry share the same boundaries.
func WithBuckets(buckets []float64) Option {
	return func(r *Registry) {
		if len(buckets) > 0 {
			r.buckets = buckets
		}
	}
}

// WithLogger sets the operational logger. Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}
