// Package types contains the ranked result shapes shared by the engine and its consumers.
package types

import (
	"sort"
	"time"

	"github.com/okian/tradeboard/internal/domain/dataset"
	"github.com/okian/tradeboard/internal/domain/model"
)

// Entry is one ranked country.
type Entry struct {
	Rank      int                  `json:"rank"`
	Country   string               `json:"country"`
	Continent string               `json:"continent"`
	Value     float64              `json:"value"`
	Metrics   model.CountryMetrics `json:"metrics"`
}

// Group is the ranked view of one continent for one metric. Bottom is nil
// in top-only mode.
type Group struct {
	Top    []Entry `json:"top"`
	Bottom []Entry `json:"bottom,omitempty"`
}

// Result maps continent -> metric -> Group, plus run metadata.
type Result struct {
	RunID       string                      `json:"run_id"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Limit       int                         `json:"limit"`
	Mode        string                      `json:"mode"`
	Metrics     []string                    `json:"metrics"`
	Continents  map[string]map[string]Group `json:"continents"`
}

// ContinentNames returns the continents of r in ascending order.
func (r Result) ContinentNames() []string {
	out := make([]string, 0, len(r.Continents))
	for c := range r.Continents {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Stats describes a loaded snapshot.
type Stats struct {
	RunID      string        `json:"run_id"`
	LoadedAt   time.Time     `json:"loaded_at"`
	Source     string        `json:"source,omitempty"`
	Countries  int           `json:"countries"`
	Continents []string      `json:"continents"`
	Rows       dataset.Stats `json:"rows"`
}
