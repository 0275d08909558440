package metrics

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	metricNameRe = regexp.MustCompile(`^[A-Za-z0-9_:]+$`)
	labelNameRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// reservedLabels collide with exposition semantics: "le" is used by histogram
// bucket series and "quantile" by summaries.
var reservedLabels = map[string]struct{}{
	"le":       {},
	"quantile": {},
}

// ValidateMetric checks a single measurement's name, help text, and label
// syntax. It never touches registry state.
func ValidateMetric(m *Metric) error {
	if m.Name == "" {
		return fmt.Errorf("%w: metric name cannot be empty", ErrInvalidInput)
	}
	if !metricNameRe.MatchString(m.Name) {
		return fmt.Errorf("%w: metric name %q must contain only alphanumeric characters, underscores, and colons", ErrInvalidInput, m.Name)
	}
	if m.Help == "" {
		return fmt.Errorf("%w: help text cannot be empty", ErrInvalidInput)
	}
	for key := range m.Labels {
		if key == "" {
			return fmt.Errorf("%w: label name cannot be empty", ErrInvalidInput)
		}
		if !labelNameRe.MatchString(key) {
			return fmt.Errorf("%w: label name %q must match [A-Za-z_][A-Za-z0-9_]*", ErrInvalidInput, key)
		}
		if _, reserved := reservedLabels[key]; reserved {
			return fmt.Errorf("%w: %q is a reserved label name", ErrInvalidInput, key)
		}
	}
	return nil
}

// ValidateBatch checks batch-level structure: a non-empty source, at least
// one measurement, and no two measurements sharing the same name and label
// set. Per-measurement syntax is checked by the collector so that one bad
// measurement does not reject its siblings; the rules here are the ones that
// make the batch as a whole unprocessable.
func ValidateBatch(b *Batch) error {
	if b.Source == "" {
		return fmt.Errorf("%w: source cannot be empty", ErrInvalidInput)
	}
	if len(b.Metrics) == 0 {
		return fmt.Errorf("%w: batch must contain at least one metric", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(b.Metrics))
	for i := range b.Metrics {
		key := seriesKey(&b.Metrics[i])
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate metric %q with the same set of labels", ErrInvalidInput, b.Metrics[i].Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// seriesKey builds a canonical identity for a measurement from its name plus
// label pairs sorted by key.
func seriesKey(m *Metric) string {
	var sb strings.Builder
	sb.WriteString(m.Name)
	sb.WriteByte(':')

	keys := make([]string, 0, len(m.Labels))
	for k := range m.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(m.Labels[k])
		sb.WriteByte(',')
	}
	return sb.String()
}
