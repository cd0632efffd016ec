package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/tradeboard/internal/adapters/http/api"
	"github.com/okian/tradeboard/internal/adapters/http/swagger"
	"github.com/okian/tradeboard/internal/adapters/report"
	"github.com/okian/tradeboard/internal/adapters/source"
	service "github.com/okian/tradeboard/internal/app"
	"github.com/okian/tradeboard/internal/config"
	"github.com/okian/tradeboard/pkg/logger"
	"github.com/okian/tradeboard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// noData is printed instead of a report when the table is unreadable or no
// country survives normalization.
const noData = "No valid data found."

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Stderr.WriteString("tradeboard: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tradeboard",
		Short:         "Rank countries per continent by trade metrics",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	config.RegisterFlags(root)
	root.AddCommand(newReportCmd(), newServeCmd())
	return root
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the per-continent rankings of the input table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer func() {
				if err := logger.Sync(); err != nil {
					os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
				}
			}()
			svc, err := newService(cfg, logger.Get())
			if err != nil {
				return err
			}
			return runReport(ctx, cfg, svc, cmd.OutOrStdout())
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the input table and serve rankings over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			svc, err := newService(cfg, logger.Get())
			if err != nil {
				return err
			}
			return runServer(ctx, cfg, svc)
		},
	}
}

// setup loads configuration (defaults -> optional file -> env -> flags) and
// initializes logging and metrics.
func setup(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.ApplyFlags(cfg, cmd.Flags()); err != nil {
		return nil, fmt.Errorf("apply flags: %w", err)
	}

	// Logs go to stderr so reports on stdout stay clean.
	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithFormat(cfg.LogFormat)); err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Init(cfg.MetricsOptions()...)
	return cfg, nil
}

// newService wires the source reader and ranking service from cfg.
func newService(cfg *config.Config, log logger.Logger) (*service.Service, error) {
	reader, err := source.Open(cfg.Input,
		source.WithSheet(cfg.Sheet),
		source.WithSkipRows(cfg.SkipRows),
		source.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	return service.New(
		service.WithReader(reader),
		service.WithLayout(cfg.SourceLayout()),
		service.WithWeights(cfg.ScoringWeights()),
		service.WithParallelism(cfg.Parallelism),
		service.WithLogger(log),
	), nil
}

// runReport loads the input once and writes the configured report to out.
// An unreadable table or an empty dataset prints noData instead of a report.
func runReport(ctx context.Context, cfg *config.Config, svc *service.Service, out io.Writer) error {
	if _, err := svc.Load(ctx); err != nil {
		if !errors.Is(err, service.ErrEmptyDataset) && !errors.Is(err, source.ErrIngestion) {
			return err
		}
		_, werr := fmt.Fprintln(out, noData)
		return werr
	}
	ms, err := cfg.RankMetrics()
	if err != nil {
		return err
	}
	mode, err := cfg.RankMode()
	if err != nil {
		return err
	}
	res, err := svc.Report(ctx, ms, cfg.TopN, mode)
	if err != nil {
		return err
	}
	return report.Write(out, cfg.Output, res)
}

// newMux registers documentation and business routes for svc.
func newMux(ctx context.Context, cfg *config.Config, svc *service.Service) (*http.ServeMux, error) {
	mode, err := cfg.RankMode()
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()

	// Register API docs under /api-docs
	swagger.Register(ctx, mux)

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc,
		api.WithLimits(cfg.TopN, max(cfg.TopN, api.MaxLimit)),
		api.WithDefaultMode(mode),
	)
	apiServer.Register(ctx, mux)
	return mux, nil
}

// runServer loads the input, serves it until ctx is done and reloads it on
// SIGHUP. A failed reload keeps the previous snapshot.
func runServer(ctx context.Context, cfg *config.Config, svc *service.Service) error {
	log := logger.Get()

	if _, err := svc.Load(ctx); err != nil {
		if !errors.Is(err, service.ErrEmptyDataset) && !errors.Is(err, source.ErrIngestion) {
			return err
		}
		log.Warn(ctx, "no valid data found; serving without a snapshot until the next reload",
			logger.String("input", cfg.Input),
			logger.Error(err),
		)
	}

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)
	go reloadOnHangup(ctx, svc)

	mux, err := newMux(ctx, cfg, svc)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal or a failed listener
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}

	log.Info(ctx, "server stopped")
	return nil
}

// reloadOnHangup re-reads the input every time the process gets SIGHUP.
func reloadOnHangup(ctx context.Context, svc *service.Service) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if _, err := svc.Load(ctx); err != nil {
				logger.Get().Error(ctx, "reload failed; keeping previous snapshot", logger.Error(err))
			}
		}
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		// Average GC pause time
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
