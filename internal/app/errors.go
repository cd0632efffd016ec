package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrEmptyDataset is returned when no row survives normalization.
	ErrEmptyDataset     = errors.New("no valid data found")
	ErrNoSource         = errors.New("no source configured")
	ErrUnknownContinent = errors.New("unknown continent")
)
