package model

import (
	"sort"
	"strings"
)

// UnknownContinent is used when a row has no continent.
const UnknownContinent = "Unknown"

// CountryMetrics is the normalized trade record of one country.
type CountryMetrics struct {
	Country   string  `json:"country"`
	Continent string  `json:"continent"`
	ImportTon float64 `json:"import_ton"`
	ExportTon float64 `json:"export_ton"`
	ImportUSD float64 `json:"import_usd"`
	ExportUSD float64 `json:"export_usd"`
	// Priority is attached by a scoring pass; zero until then.
	Priority float64 `json:"priority"`
}

// HasNonZeroMetric reports whether any of the four raw metrics is non-zero.
// Negative flows count as non-zero.
func (m CountryMetrics) HasNonZeroMetric() bool {
	return m.ImportTon != 0 || m.ExportTon != 0 || m.ImportUSD != 0 || m.ExportUSD != 0
}

// CountryKey folds a country name into its dataset key: trimmed, inner
// whitespace collapsed, lower case.
func CountryKey(name string) string {
	return strings.ToLower(CleanName(name))
}

// CleanName trims name and collapses runs of whitespace to one space.
func CleanName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// Dataset maps a country key to its metrics. Built once, then read-only.
type Dataset map[string]CountryMetrics

// Countries returns the records sorted by country name, then key.
func (d Dataset) Countries() []CountryMetrics {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := d[keys[i]].Country, d[keys[j]].Country
		if a != b {
			return a < b
		}
		return keys[i] < keys[j]
	})
	out := make([]CountryMetrics, len(keys))
	for i, k := range keys {
		out[i] = d[k]
	}
	return out
}

// Continents returns the distinct continents in ascending order.
func (d Dataset) Continents() []string {
	seen := make(map[string]struct{})
	for _, m := range d {
		seen[m.Continent] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Lookup finds a country by any spelling that folds to the same key.
func (d Dataset) Lookup(name string) (CountryMetrics, bool) {
	m, ok := d[CountryKey(name)]
	return m, ok
}
