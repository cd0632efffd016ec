// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - New() builds a Config with defaults; Load layers file and env on top.
// - Validation uses struct tags; failures wrap ErrInvalidConfig.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/tradeboard/internal/domain/normalize"
	"github.com/okian/tradeboard/internal/domain/ranking"
	"github.com/okian/tradeboard/internal/domain/scoring"
	"github.com/okian/tradeboard/pkg/metrics"
)

// Columns holds the zero-based source column of each field.
type Columns struct {
	Country   int `koanf:"country" validate:"min=0"`
	Continent int `koanf:"continent" validate:"min=0"`
	ImportTon int `koanf:"import_ton" validate:"min=0"`
	ExportTon int `koanf:"export_ton" validate:"min=0"`
	ImportUSD int `koanf:"import_usd" validate:"min=0"`
	ExportUSD int `koanf:"export_usd" validate:"min=0"`
}

// Weights are the priority score coefficients.
type Weights struct {
	ImportTon float64 `koanf:"import_ton"`
	ExportTon float64 `koanf:"export_ton"`
	ImportUSD float64 `koanf:"import_usd"`
	ExportUSD float64 `koanf:"export_usd"`
}

// Prometheus shapes the exported collectors. Buckets and Labels are only
// read from the config file.
type Prometheus struct {
	Enabled   bool              `koanf:"enabled"`
	Namespace string            `koanf:"namespace" validate:"required"`
	Subsystem string            `koanf:"subsystem"`
	Prefix    string            `koanf:"prefix"`
	Buckets   []float64         `koanf:"buckets" validate:"dive,gt=0"`
	Labels    map[string]string `koanf:"labels"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// Input is the path of the source workbook or csv file.
	Input string `koanf:"input" validate:"required"`

	// Sheet names the worksheet to read; empty means the first sheet.
	Sheet string `koanf:"sheet"`

	// SkipRows drops leading physical rows such as titles and headers.
	SkipRows int `koanf:"skip_rows" validate:"min=0"`

	// Layout names a column preset: v1, v2 or byvalue.
	Layout string `koanf:"layout" validate:"omitempty,oneof=v1 v2 byvalue"`

	// Columns locates each field in the source rows.
	Columns Columns `koanf:"columns"`

	// TopN is the number of countries kept per continent and metric.
	TopN int `koanf:"top_n" validate:"min=0"`

	// Mode is "top" for top-only rankings or "both" for top and bottom.
	Mode string `koanf:"mode" validate:"oneof=top both"`

	// Metrics lists the metrics a report ranks by, in order.
	Metrics []string `koanf:"metrics" validate:"min=1,dive,oneof=import_ton export_ton import_usd export_usd priority"`

	// Weights feed the priority score.
	Weights Weights `koanf:"weights"`

	// Parallelism bounds how many continents are ranked at once.
	Parallelism int `koanf:"parallelism" validate:"min=1"`

	// Output selects the report encoding: text or json.
	Output string `koanf:"output" validate:"oneof=text json"`

	// Prometheus configures the /metrics collectors.
	Prometheus Prometheus `koanf:"prometheus"`
}

// Preset is a named source layout.
type Preset struct {
	Columns  Columns
	SkipRows int
}

// Presets are the known source layouts. v1 sheets carry a header line; v2
// and byvalue sheets have a title line above it.
var Presets = map[string]Preset{
	"v1":      {Columns: Columns{0, 1, 2, 3, 27, 8}, SkipRows: 1},
	"v2":      {Columns: Columns{0, 1, 2, 3, 27, 8}, SkipRows: 2},
	"byvalue": {Columns: Columns{0, 1, 2, 3, 33, 10}, SkipRows: 2},
}

// Defaults used when none is configured.
const (
	DefaultLayout = "v1"
	DefaultTopN   = 5
)

// New creates a Config with defaults.
func New() *Config {
	w := scoring.DefaultWeights()
	p := Presets[DefaultLayout]
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		Addr:        ":9080",
		Input:       "trade.xlsx",
		SkipRows:    p.SkipRows,
		Layout:      DefaultLayout,
		Columns:     p.Columns,
		TopN:        DefaultTopN,
		Mode:        string(ranking.TopAndBottom),
		Metrics:     []string{"import_ton", "export_ton", "import_usd", "export_usd", "priority"},
		Weights:     Weights(w),
		Parallelism: runtime.NumCPU(),
		Output:      "text",
		Prometheus: Prometheus{
			Enabled:   true,
			Namespace: "tradeboard",
			Subsystem: "ranking",
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks c and wraps every problem in ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, formatFieldError(fe))
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
	}
	if err := c.ScoringWeights().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Namespace())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", fe.Namespace(), fe.Param(), fe.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Namespace(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
	}
}

// SourceLayout converts the column settings for the normalizer.
func (c *Config) SourceLayout() normalize.Layout {
	return normalize.Layout(c.Columns)
}

// ScoringWeights converts the weight settings for the scorer.
func (c *Config) ScoringWeights() scoring.Weights {
	return scoring.Weights(c.Weights)
}

// RankMetrics parses the configured metric names.
func (c *Config) RankMetrics() ([]ranking.Metric, error) {
	out := make([]ranking.Metric, 0, len(c.Metrics))
	for _, s := range c.Metrics {
		m, err := ranking.ParseMetric(s)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// MetricsOptions converts the Prometheus settings for metrics.Init.
func (c *Config) MetricsOptions() []metrics.Option {
	p := c.Prometheus
	return []metrics.Option{
		metrics.WithMetricsEnabled(p.Enabled),
		metrics.WithNamespace(p.Namespace),
		metrics.WithSubsystem(p.Subsystem),
		metrics.WithMetricPrefix(p.Prefix),
		metrics.WithHistogramBuckets(p.Buckets),
		metrics.WithCustomLabels(p.Labels),
	}
}

// RankMode parses the configured mode.
func (c *Config) RankMode() (ranking.Mode, error) {
	return ranking.ParseMode(c.Mode)
}
