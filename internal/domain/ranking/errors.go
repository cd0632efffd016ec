package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	// ErrInvalidMetric is returned when a caller names an unknown metric.
	ErrInvalidMetric = errors.New("invalid metric")
	ErrInvalidMode   = errors.New("invalid ranking mode")
)
