package config

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers the config override flags on cmd as persistent
// flags, so every subcommand accepts them.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.PersistentFlags())
}

func configureFlags(flags *pflag.FlagSet) {
	// Source flags
	flags.StringP("input", "i", "", "Path of the source workbook (.xlsx) or .csv file")
	flags.String("sheet", "", "Worksheet to read (default: first sheet)")
	flags.String("layout", "", "Column preset: v1, v2 or byvalue")
	flags.Int("skip-rows", 0, "Leading rows to skip before data")

	// Ranking flags
	flags.IntP("top", "n", 0, "Countries kept per continent and metric")
	flags.String("mode", "", "Ranking mode: top or both")
	flags.StringSlice("metric", nil, "Metric to rank by (repeatable): import_ton, export_ton, import_usd, export_usd, priority")
	flags.Int("parallelism", 0, "Continents ranked concurrently")

	// Output flags
	flags.StringP("output", "o", "", "Report format: text or json")
	flags.String("addr", "", "HTTP listen address for serve")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: text or json")
}

// ApplyFlags applies changed flag values to cfg, overriding file and env
// values, then validates the result. A layout flag resets columns and skip
// rows to its preset before an explicit --skip-rows is applied.
func ApplyFlags(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("layout") {
		val, err := fs.GetString("layout")
		if err != nil {
			return err
		}
		if err := ApplyPreset(cfg, strings.TrimSpace(val)); err != nil {
			return err
		}
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{"input", &cfg.Input},
		{"sheet", &cfg.Sheet},
		{"mode", &cfg.Mode},
		{"output", &cfg.Output},
		{"addr", &cfg.Addr},
		{"log-level", &cfg.LogLevel},
		{"log-format", &cfg.LogFormat},
	}
	for _, s := range strs {
		if !fs.Changed(s.name) {
			continue
		}
		val, err := fs.GetString(s.name)
		if err != nil {
			return err
		}
		*s.dst = strings.TrimSpace(val)
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"skip-rows", &cfg.SkipRows},
		{"top", &cfg.TopN},
		{"parallelism", &cfg.Parallelism},
	}
	for _, i := range ints {
		if !fs.Changed(i.name) {
			continue
		}
		val, err := fs.GetInt(i.name)
		if err != nil {
			return err
		}
		*i.dst = val
	}

	if fs.Changed("metric") {
		val, err := fs.GetStringSlice("metric")
		if err != nil {
			return err
		}
		cfg.Metrics = splitList(strings.Join(val, ","))
	}

	return cfg.Validate()
}
