// Package repository holds the loaded dataset snapshot served to readers.
package repository

import (
	"context"
	"time"

	"github.com/okian/tradeboard/internal/domain/dataset"
	"github.com/okian/tradeboard/internal/domain/model"
)

// Snapshot is one immutable load of the source.
type Snapshot struct {
	RunID    string
	LoadedAt time.Time
	Source   string
	Dataset  model.Dataset
	Stats    dataset.Stats
	// Ranks maps country key -> metric -> 1-based rank within the continent.
	Ranks map[string]map[string]int
}

// Record is a country as served by lookups.
type Record struct {
	Metrics model.CountryMetrics `json:"metrics"`
	Ranks   map[string]int       `json:"ranks"`
}

// Store provides read/write access to the current snapshot.
type Store interface {
	// Replace publishes s as the current snapshot.
	Replace(ctx context.Context, s *Snapshot) error

	// Current returns the current snapshot.
	// Returns ErrNotLoaded before the first Replace.
	Current(ctx context.Context) (*Snapshot, error)

	// Country looks a country up by name, ignoring case and spacing.
	// Returns ErrNotFound if the country is unknown.
	Country(ctx context.Context, name string) (Record, error)

	// Count returns the number of countries in the current snapshot.
	Count(ctx context.Context) int
}
