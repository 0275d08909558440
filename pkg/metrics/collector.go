package metrics

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/insightd/insightd/pkg/logging"
)

// Collector applies batches of measurements against a Registry with
// per-item isolation: one bad measurement is recorded as an error and the
// rest of the batch still goes through.
type Collector struct {
	registry *Registry
	log      *slog.Logger
}

// NewCollector creates a collector bound to the given registry.
func NewCollector(registry *Registry) *Collector {
	return &Collector{
		registry: registry,
		log:      logging.Nop(),
	}
}

// SetLogger sets the operational logger for the collector.
func (c *Collector) SetLogger(log *slog.Logger) {
	if log != nil {
		c.log = log
	}
}

// ProcessBatch applies the batch's measurements in input order. Per-item
// failures are collected as messages in the result instead of aborting the
// batch. The call itself fails only when every measurement in a non-empty
// batch failed, in which case the error wraps ErrAllFailed.
func (c *Collector) ProcessBatch(batch *Batch) (*BatchResult, error) {
	result := &BatchResult{
		Status: StatusSuccess,
		Errors: make([]string, 0),
	}

	c.log.Debug("processing metrics batch", "source", batch.Source, "count", len(batch.Metrics))

	for i := range batch.Metrics {
		m := &batch.Metrics[i]
		if err := c.processMetric(m); err != nil {
			c.log.Warn("failed to process metric", "name", m.Name, "error", err)
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Processed++
	}

	if len(result.Errors) > 0 {
		result.Status = StatusPartialSuccess
		if result.Processed == 0 && len(batch.Metrics) > 0 {
			return nil, fmt.Errorf("%w: source %s", ErrAllFailed, batch.Source)
		}
	}

	return result, nil
}

// processMetric runs the self-healing registration protocol for one
// measurement: try the update first and, only when the metric has never been
// registered, register it and retry the update once. Type mismatches and
// unsupported types surface as-is; they are never auto-resolved.
func (c *Collector) processMetric(m *Metric) error {
	if err := ValidateMetric(m); err != nil {
		return err
	}

	err := c.registry.Update(m)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotRegistered) {
		return err
	}

	if err := c.registry.Register(m); err != nil {
		return err
	}
	return c.registry.Update(m)
}

// Gather renders the registry's exposition snapshot.
func (c *Collector) Gather() (string, error) {
	return c.registry.Gather()
}

// Count returns the number of registered metric identities.
func (c *Collector) Count() int {
	return c.registry.Count()
}
