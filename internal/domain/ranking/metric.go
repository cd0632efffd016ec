package ranking

import (
	"fmt"
	"strings"

	"github.com/okian/tradeboard/internal/domain/model"
)

// Metric names a rankable quantity.
type Metric string

// Known metrics.
const (
	ImportTon Metric = "import_ton"
	ExportTon Metric = "export_ton"
	ImportUSD Metric = "import_usd"
	ExportUSD Metric = "export_usd"
	Priority  Metric = "priority"
)

// AllMetrics returns every known metric in report order.
func AllMetrics() []Metric {
	return []Metric{ImportTon, ExportTon, ImportUSD, ExportUSD, Priority}
}

// ParseMetric resolves a metric name, ignoring case and surrounding space.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMetric, s)
	}
	return m, nil
}

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	switch m {
	case ImportTon, ExportTon, ImportUSD, ExportUSD, Priority:
		return true
	}
	return false
}

// Label is the human-readable name used by reports.
func (m Metric) Label() string {
	switch m {
	case ImportTon:
		return "Import Ton"
	case ExportTon:
		return "Export Ton"
	case ImportUSD:
		return "Import USD"
	case ExportUSD:
		return "Export USD"
	case Priority:
		return "Priority Score"
	}
	return string(m)
}

// raw reads one of the four stored metrics. ok is false for Priority.
func (m Metric) raw(c model.CountryMetrics) (v float64, ok bool) {
	switch m {
	case ImportTon:
		return c.ImportTon, true
	case ExportTon:
		return c.ExportTon, true
	case ImportUSD:
		return c.ImportUSD, true
	case ExportUSD:
		return c.ExportUSD, true
	}
	return 0, false
}

// Mode selects which sequences a ranking produces.
type Mode string

// Ranking modes.
const (
	TopOnly      Mode = "top"
	TopAndBottom Mode = "both"
)

// ParseMode resolves a mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case TopOnly, TopAndBottom:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}
