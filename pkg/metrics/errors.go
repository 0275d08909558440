package metrics

import "errors"

// ErrNotRegistered is returned when an update targets a metric name that has
// no instrument yet.
var ErrNotRegistered = errors.New("metric not registered")

// ErrTypeMismatch is returned when a measurement claims a different type than
// the instrument already registered under the same name.
var ErrTypeMismatch = errors.New("metric type mismatch")

// ErrUnsupportedType is returned when a measurement requests a metric type
// the registry cannot create, such as summary.
var ErrUnsupportedType = errors.New("unsupported metric type")

// ErrNegativeCounterValue is returned when a counter update carries a
// negative value.
var ErrNegativeCounterValue = errors.New("counter cannot be decreased")

// ErrInvalidInput is the sentinel wrapped by all validation failures.
var ErrInvalidInput = errors.New("invalid input")

// ErrAllFailed is returned by ProcessBatch when every measurement in a
// non-empty batch failed.
var ErrAllFailed = errors.New("failed to process any metrics in the batch")
