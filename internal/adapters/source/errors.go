package source

import "errors"

// Sentinel kinds for source errors.
var (
	// ErrIngestion marks a source that could not be opened or read.
	ErrIngestion = errors.New("ingestion failed")
	// ErrUnsupportedFormat marks a path whose extension has no reader.
	ErrUnsupportedFormat = errors.New("unsupported source format")
)
