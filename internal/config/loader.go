package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment names.
const (
	EnvPrefix = "TRADEBOARD_"
	EnvConfig = EnvPrefix + "CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. layout preset named by "layout"
//  3. file (YAML) if TRADEBOARD_CONFIG is set
//  4. env (prefix TRADEBOARD_)
//
// Nested keys use a double underscore in env names, e.g.
// TRADEBOARD_WEIGHTS__IMPORT_USD. TRADEBOARD_METRICS takes a comma list.
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if key == "config" {
			return "", nil
		}
		key = strings.ReplaceAll(key, "__", ".")
		if key == "metrics" {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := New()
	if err := ApplyPreset(cfg, k.String("layout")); err != nil {
		return nil, err
	}
	if k.Exists("metrics") {
		// replace the default list rather than merging into it
		cfg.Metrics = nil
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyPreset copies the named layout's columns and skip rows into c. An
// empty name keeps c unchanged.
func ApplyPreset(c *Config, name string) error {
	if name == "" {
		return nil
	}
	p, ok := Presets[name]
	if !ok {
		return fmt.Errorf("%w: unknown layout %q", ErrInvalidConfig, name)
	}
	c.Layout = name
	c.Columns = p.Columns
	c.SkipRows = p.SkipRows
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
