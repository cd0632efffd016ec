// Command gen-sample writes a synthetic trade workbook and can check a running
// server's rankings against the same file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/okian/tradeboard/internal/adapters/source"
	service "github.com/okian/tradeboard/internal/app"
	"github.com/okian/tradeboard/internal/config"
	"github.com/okian/tradeboard/internal/domain/ranking"
	"github.com/okian/tradeboard/internal/sampledata"
	"github.com/okian/tradeboard/pkg/logger"
)

// Default configuration constants.
const (
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 5 * time.Minute
)

// options collects the command line of one run.
type options struct {
	out       string
	countries int
	seed      uint64
	layout    string
	noise     bool
	verifyURL string
	topN      int
	timeout   time.Duration
}

func main() {
	fs := pflag.NewFlagSet("gen-sample", pflag.ContinueOnError)
	var o options
	fs.StringVarP(&o.out, "out", "o", "trade.xlsx", "Output file (.xlsx or .csv)")
	fs.IntVar(&o.countries, "countries", sampledata.DefaultCountries, "Number of countries to generate")
	fs.Uint64Var(&o.seed, "seed", sampledata.DefaultSeed, "Random seed")
	fs.StringVar(&o.layout, "layout", config.DefaultLayout, "Column preset: v1, v2 or byvalue")
	fs.BoolVar(&o.noise, "noise", false, "Add rows that must be skipped or dropped")
	fs.StringVar(&o.verifyURL, "verify", "", "Base URL of a server loaded with the output file; compares its priority rankings")
	fs.IntVarP(&o.topN, "top", "n", config.DefaultTopN, "Countries compared per continent when verifying")
	fs.DurationVar(&o.timeout, "timeout", defaultTimeout, "HTTP request timeout")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	if err := run(ctx, o); err != nil {
		logger.Get().Error(ctx, "gen-sample failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) error {
	cfg := config.New()
	if err := config.ApplyPreset(cfg, o.layout); err != nil {
		return err
	}

	records := sampledata.Generate(sampledata.Config{Countries: o.countries, Seed: o.seed, Noise: o.noise})
	if err := write(o.out, cfg, records); err != nil {
		return err
	}
	logger.Get().Info(ctx, "sample written",
		logger.String("path", o.out),
		logger.String("layout", o.layout),
		logger.Int("records", len(records)),
	)

	if o.verifyURL == "" {
		return nil
	}
	return verify(ctx, o, cfg)
}

func write(path string, cfg *config.Config, records []sampledata.Record) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return sampledata.WriteCSV(path, cfg.SourceLayout(), cfg.SkipRows, records)
	case ".xlsx":
		return sampledata.WriteXLSX(path, cfg.SourceLayout(), cfg.SkipRows, records)
	default:
		return fmt.Errorf("%w: %s", source.ErrUnsupportedFormat, path)
	}
}

// verify ranks the written file locally and compares it with what the server
// at o.verifyURL reports for the priority metric.
func verify(ctx context.Context, o options, cfg *config.Config) error {
	log := logger.Get()
	client := sampledata.NewClient(strings.TrimRight(o.verifyURL, "/"), o.timeout, log)

	if err := client.CheckHealth(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	reader, err := source.Open(o.out, source.WithSkipRows(cfg.SkipRows), source.WithLogger(log))
	if err != nil {
		return err
	}
	svc := service.New(
		service.WithReader(reader),
		service.WithLayout(cfg.SourceLayout()),
		service.WithLogger(log),
	)
	if _, err := svc.Load(ctx); err != nil {
		return fmt.Errorf("load sample: %w", err)
	}
	want, err := svc.Report(ctx, []ranking.Metric{ranking.Priority}, o.topN, ranking.TopAndBottom)
	if err != nil {
		return err
	}

	got, err := client.Rankings(ctx, string(ranking.Priority), o.topN, string(ranking.TopAndBottom))
	if err != nil {
		return fmt.Errorf("ranking retrieval failed: %w", err)
	}
	if err := sampledata.Compare(want, got, string(ranking.Priority)); err != nil {
		return err
	}

	log.Info(ctx, "served rankings match the sample",
		logger.String("url", o.verifyURL),
		logger.Int("continents", len(want.Continents)),
		logger.Int("top", o.topN),
	)
	return nil
}
