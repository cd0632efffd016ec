package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound    = errors.New("country not found")
	ErrNotLoaded   = errors.New("no dataset loaded")
	ErrNilSnapshot = errors.New("nil snapshot")
)
