package normalize

import (
	"errors"
	"fmt"
)

// Sentinel kinds for normalization outcomes. These allow errors.Is from callers.
var (
	// ErrSkipped marks a row without a usable country name. It is not a warning.
	ErrSkipped = errors.New("row skipped")
	// ErrRowRejected marks a row with a value that cannot be coerced at all.
	ErrRowRejected = errors.New("row rejected")
	// ErrInvalidLayout marks a column layout with negative offsets.
	ErrInvalidLayout = errors.New("invalid column layout")
)

// RowError describes a rejected row. Line is 1-based.
type RowError struct {
	Line   int
	Column int
	Field  string
	Value  string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: column %d (%s) value %q: %s", e.Line, e.Column, e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrRowRejected.
func (e *RowError) Unwrap() error { return ErrRowRejected }
