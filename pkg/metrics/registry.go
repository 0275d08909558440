package metrics

import (
	"bytes"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/insightd/insightd/pkg/logging"
)

// emptyRegistryComment is what Gather returns before any metric has been
// registered. Scrapers treat comment-only output as an empty, valid scrape.
const emptyRegistryComment = "# No metrics found in registry\n"

// instrument is the aggregation state behind one registered metric identity:
// its fixed type, its fixed label-key schema, and the backing vector keyed by
// label-value combination.
type instrument struct {
	typ       MetricType
	labelKeys []string

	counter   *prometheus.CounterVec
	gauge     *prometheus.GaugeVec
	histogram *prometheus.HistogramVec
}

// labelValues maps a measurement's labels into schema order. Schema keys
// missing from the map come out as empty strings, matching how Prometheus
// exposes unspecified labels; keys outside the schema are dropped.
func (in *instrument) labelValues(labels map[string]string) []string {
	values := make([]string, len(in.labelKeys))
	for i, k := range in.labelKeys {
		values[i] = labels[k]
	}
	return values
}

// Registry is the single source of truth for all registered instruments.
// Instruments are created lazily via Register and never torn down; one
// Registry is constructed at startup and shared by every request handler.
type Registry struct {
	prefix    string
	namespace string
	buckets   []float64
	log       *slog.Logger

	prom *prometheus.Registry

	mu          sync.RWMutex
	instruments map[string]*instrument
}

// NewRegistry creates an empty registry. Metric names are qualified as
// <prefix>_<namespace>_<name>.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		prefix:      DefaultPrefix,
		namespace:   DefaultNamespace,
		buckets:     prometheus.DefBuckets,
		log:         logging.Nop(),
		prom:        prometheus.NewRegistry(),
		instruments: make(map[string]*instrument),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// qualifiedName derives the externally visible metric name. The same
// transformation is applied to every metric, so callers only ever deal in
// short names.
func (r *Registry) qualifiedName(name string) string {
	return fmt.Sprintf("%s_%s_%s", r.prefix, r.namespace, name)
}

// Register creates an instrument for the metric's qualified name if none
// exists yet. The label-key schema is fixed from the measurement's labels,
// sorted. Registering an existing name again is a no-op as long as the type
// matches.
func (r *Registry) Register(m *Metric) error {
	switch m.Type {
	case TypeCounter, TypeGauge, TypeHistogram:
	case TypeSummary:
		return fmt.Errorf("%w: summary metrics are not supported", ErrUnsupportedType)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedType, m.Type)
	}

	keys := make([]string, 0, len(m.Labels))
	for k := range m.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return r.ensureRegistered(r.qualifiedName(m.Name), m.Type, m.Help, keys)
}

// ensureRegistered performs the atomic check-and-insert for a new instrument.
// The write lock covers both the existence check and the insert, so
// concurrent first-time registrations of the same name resolve to exactly one
// instrument with the losers observing the winner's entry.
func (r *Registry) ensureRegistered(name string, typ MetricType, help string, labelKeys []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.instruments[name]; ok {
		if existing.typ != typ {
			return fmt.Errorf("%w: %s is registered as a %s, not a %s", ErrTypeMismatch, name, existing.typ, typ)
		}
		return nil
	}

	inst := &instrument{typ: typ, labelKeys: labelKeys}
	var coll prometheus.Collector
	switch typ {
	case TypeCounter:
		inst.counter = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labelKeys)
		coll = inst.counter
	case TypeGauge:
		inst.gauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labelKeys)
		coll = inst.gauge
	case TypeHistogram:
		inst.histogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: r.buckets,
		}, labelKeys)
		coll = inst.histogram
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedType, typ)
	}

	if err := r.prom.Register(coll); err != nil {
		return fmt.Errorf("failed to register metric %s: %w", name, err)
	}
	r.instruments[name] = inst

	r.log.Debug("registered new metric", "name", name, "type", typ, "labels", labelKeys)
	return nil
}

// Update folds a measurement into its instrument: counters add, gauges set,
// histograms observe. Returns ErrNotRegistered when no instrument exists for
// the qualified name and ErrTypeMismatch when the measurement claims a
// different type than the instrument was created with.
func (r *Registry) Update(m *Metric) error {
	if m.Type == TypeSummary {
		return fmt.Errorf("%w: summary metrics are not supported", ErrUnsupportedType)
	}

	name := r.qualifiedName(m.Name)

	r.mu.RLock()
	inst, ok := r.instruments[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	if m.Type != inst.typ {
		return fmt.Errorf("%w: %s is registered as a %s, not a %s", ErrTypeMismatch, name, inst.typ, m.Type)
	}

	values := inst.labelValues(m.Labels)

	switch inst.typ {
	case TypeCounter:
		if m.Value.Value < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeCounterValue, name)
		}
		c, err := inst.counter.GetMetricWithLabelValues(values...)
		if err != nil {
			return fmt.Errorf("failed to update counter %s: %w", name, err)
		}
		c.Add(m.Value.Value)
	case TypeGauge:
		g, err := inst.gauge.GetMetricWithLabelValues(values...)
		if err != nil {
			return fmt.Errorf("failed to update gauge %s: %w", name, err)
		}
		g.Set(m.Value.Value)
	case TypeHistogram:
		h, err := inst.histogram.GetMetricWithLabelValues(values...)
		if err != nil {
			return fmt.Errorf("failed to update histogram %s: %w", name, err)
		}
		h.Observe(m.Value.Value)
	}

	return nil
}

// Gather renders every instrument in the Prometheus text exposition format.
// Families are emitted sorted by name and series sorted by label values, so
// two snapshots of the same state are byte-identical. An empty registry
// yields a comment placeholder, not an error.
func (r *Registry) Gather() (string, error) {
	families, err := r.prom.Gather()
	if err != nil {
		return "", fmt.Errorf("failed to gather metrics: %w", err)
	}

	if len(families) == 0 {
		r.log.Warn("no metrics were gathered from the registry")
		return emptyRegistryComment, nil
	}

	var buf bytes.Buffer
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, family); err != nil {
			return "", fmt.Errorf("failed to encode metric family %s: %w", family.GetName(), err)
		}
	}
	return buf.String(), nil
}

// Count returns the number of distinct registered metric identities. Label
// combinations within an instrument do not add to the count.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instruments)
}
