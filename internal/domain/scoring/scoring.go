// Package scoring computes the composite priority score of a country.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/tradeboard/internal/domain/model"
)

// ErrInvalidWeights marks a weight table with non-finite entries.
var ErrInvalidWeights = errors.New("invalid weights")

// Weights is the linear weight table of the priority score. Raw units are
// mixed directly: tons and USD are not rescaled.
type Weights struct {
	ImportTon float64 `json:"import_ton"`
	ExportTon float64 `json:"export_ton"`
	ImportUSD float64 `json:"import_usd"`
	ExportUSD float64 `json:"export_usd"`
}

// DefaultWeights returns the reference weighting 1, 2, 3, 4.
func DefaultWeights() Weights {
	return Weights{ImportTon: 1, ExportTon: 2, ImportUSD: 3, ExportUSD: 4}
}

// Validate rejects NaN and infinite weights.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"import_ton": w.ImportTon, "export_ton": w.ExportTon,
		"import_usd": w.ImportUSD, "export_usd": w.ExportUSD,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidWeights, name, v)
		}
	}
	return nil
}

// Score returns the weighted sum of the four raw metrics of m.
func (w Weights) Score(m model.CountryMetrics) float64 {
	return w.ImportTon*m.ImportTon +
		w.ExportTon*m.ExportTon +
		w.ImportUSD*m.ImportUSD +
		w.ExportUSD*m.ExportUSD
}

// Scorer computes a priority from a record.
type Scorer interface {
	Score(m model.CountryMetrics) float64
}

// Apply returns a copy of ds with Priority attached to every record.
// Running it again yields the same values.
func Apply(ds model.Dataset, s Scorer) model.Dataset {
	out := make(model.Dataset, len(ds))
	for k, m := range ds {
		m.Priority = s.Score(m)
		out[k] = m
	}
	return out
}
