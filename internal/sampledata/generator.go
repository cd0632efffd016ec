// Package sampledata generates synthetic trade workbooks for demos and tests.
package sampledata

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Default generator settings.
const (
	DefaultCountries = 120
	DefaultSeed      = 42
)

// Value ranges of generated metrics.
const (
	maxTonnage = 5_000_000.0
	maxUSD     = 900_000_000.0
)

// Continents used when Config.Continents is empty.
var defaultContinents = []string{"Africa", "Asia", "Europe", "North America", "Oceania", "South America"}

var syllables = []string{"an", "bel", "cor", "dra", "el", "fen", "gar", "hol", "is", "jor", "kal", "lun", "mar", "nor", "or", "pel", "quin", "ros", "sal", "tor", "ur", "val", "wen", "zan"}

// Config controls what Generate produces.
type Config struct {
	Countries  int
	Seed       uint64
	Continents []string
	// Noise adds rows the normalizer must skip or drop: numeric country
	// codes, rows with no metrics and duplicate names.
	Noise bool
}

// Record is one generated source row. Metric fields hold a float64, a string
// such as "1,234.5", or nil for a blank cell. Country is a string except for
// noise rows, where it is an int.
type Record struct {
	Country   any
	Continent string
	ImportTon any
	ExportTon any
	ImportUSD any
	ExportUSD any
}

// Generate creates deterministic records for cfg.
func Generate(cfg Config) []Record {
	if cfg.Countries <= 0 {
		cfg.Countries = DefaultCountries
	}
	continents := cfg.Continents
	if len(continents) == 0 {
		continents = defaultContinents
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	out := make([]Record, 0, cfg.Countries+3)
	for i := range cfg.Countries {
		out = append(out, Record{
			Country:   countryName(rng, i),
			Continent: continents[rng.IntN(len(continents))],
			ImportTon: metric(rng, maxTonnage),
			ExportTon: metric(rng, maxTonnage),
			ImportUSD: metric(rng, maxUSD),
			ExportUSD: metric(rng, maxUSD),
		})
	}
	if cfg.Noise && len(out) > 0 {
		out = append(out,
			Record{Country: 42, Continent: continents[0], ImportTon: 1.0, ExportUSD: 1.0},
			Record{Country: "Nullland", Continent: continents[0]},
			Record{
				Country:   strings.ToUpper(out[0].Country.(string)),
				Continent: out[0].Continent,
				ImportTon: 1.0,
			},
		)
	}
	return out
}

func countryName(rng *rand.Rand, i int) string {
	var b strings.Builder
	for range 2 + rng.IntN(2) {
		b.WriteString(syllables[rng.IntN(len(syllables))])
	}
	name := b.String()
	// the index suffix keeps names unique
	return strings.ToUpper(name[:1]) + name[1:] + "-" + strconv.Itoa(i+1)
}

func metric(rng *rand.Rand, limit float64) any {
	switch rng.IntN(10) {
	case 0:
		return nil
	case 1:
		return formatThousands(rng.Float64() * limit)
	default:
		return float64(int64(rng.Float64()*limit*100)) / 100
	}
}

// formatThousands renders v with comma group separators and two decimals.
func formatThousands(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s.%s", b.String(), frac)
}
