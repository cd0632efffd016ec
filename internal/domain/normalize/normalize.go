// Package normalize turns raw source rows into CountryMetrics candidates.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/tradeboard/internal/domain/model"
)

// Layout locates the fields of a row by 0-based column offset.
type Layout struct {
	Country   int
	Continent int
	ImportTon int
	ExportTon int
	ImportUSD int
	ExportUSD int
}

// DefaultLayout is the column layout of the reference workbook.
func DefaultLayout() Layout {
	return Layout{Country: 0, Continent: 1, ImportTon: 2, ExportTon: 3, ImportUSD: 27, ExportUSD: 8}
}

// Validate rejects negative offsets.
func (l Layout) Validate() error {
	for name, col := range map[string]int{
		"country": l.Country, "continent": l.Continent,
		"import_ton": l.ImportTon, "export_ton": l.ExportTon,
		"import_usd": l.ImportUSD, "export_usd": l.ExportUSD,
	} {
		if col < 0 {
			return fmt.Errorf("%w: %s column %d", ErrInvalidLayout, name, col)
		}
	}
	return nil
}

// Normalizer validates rows against a Layout.
type Normalizer struct {
	layout Layout
}

// New returns a Normalizer for layout.
func New(layout Layout) (*Normalizer, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &Normalizer{layout: layout}, nil
}

// Layout returns the layout in use.
func (n *Normalizer) Layout() Layout { return n.layout }

// Normalize converts row into a candidate record.
//
// It returns ErrSkipped when the country cell is not non-blank text, and a
// *RowError (matching ErrRowRejected) when a metric cell is an invalid value
// or coerces to NaN or an infinity. Unparseable text and missing metrics
// become 0. Retention is decided by the dataset builder.
func (n *Normalizer) Normalize(row model.Row) (model.CountryMetrics, error) {
	countryCell := row.At(n.layout.Country)
	if countryCell.Kind != model.Text {
		return model.CountryMetrics{}, ErrSkipped
	}
	country := model.CleanName(countryCell.Str)
	if country == "" {
		return model.CountryMetrics{}, ErrSkipped
	}

	m := model.CountryMetrics{
		Country:   country,
		Continent: continent(row.At(n.layout.Continent)),
	}

	fields := []struct {
		name string
		col  int
		dst  *float64
	}{
		{"import_ton", n.layout.ImportTon, &m.ImportTon},
		{"export_ton", n.layout.ExportTon, &m.ExportTon},
		{"import_usd", n.layout.ImportUSD, &m.ImportUSD},
		{"export_usd", n.layout.ExportUSD, &m.ExportUSD},
	}
	for _, f := range fields {
		cell := row.At(f.col)
		v, reason := coerce(cell)
		if reason != "" {
			return model.CountryMetrics{}, &RowError{
				Line:   row.Line,
				Column: f.col,
				Field:  f.name,
				Value:  cell.Raw(),
				Reason: reason,
			}
		}
		*f.dst = v
	}
	return m, nil
}

func continent(c model.Cell) string {
	var s string
	switch c.Kind {
	case model.Text:
		s = strings.TrimSpace(c.Str)
	case model.Number:
		s = strconv.FormatFloat(c.Num, 'f', -1, 64)
	}
	if s == "" {
		return model.UnknownContinent
	}
	return s
}

// coerce returns the numeric value of c, or a non-empty reason when the
// value cannot be used at all.
func coerce(c model.Cell) (float64, string) {
	switch c.Kind {
	case model.Number:
		return finite(c.Num)
	case model.Text:
		s := strings.ReplaceAll(strings.TrimSpace(c.Str), ",", "")
		if s == "" {
			return 0, ""
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Out-of-range literals parse to ±Inf with ErrRange.
			if math.IsInf(v, 0) {
				return 0, "value out of range"
			}
			return 0, ""
		}
		return finite(v)
	case model.Invalid:
		return 0, "unexpected cell value"
	default:
		return 0, ""
	}
}

func finite(v float64) (float64, string) {
	if math.IsNaN(v) {
		return 0, "not a number"
	}
	if math.IsInf(v, 0) {
		return 0, "infinite value"
	}
	return v, ""
}
