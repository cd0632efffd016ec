// Package service wires the source, dataset builder and ranking engine
// together and implements the dependencies required by the CLI and HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/tradeboard/internal/adapters/repository"
	"github.com/okian/tradeboard/internal/adapters/source"
	"github.com/okian/tradeboard/internal/domain/dataset"
	"github.com/okian/tradeboard/internal/domain/model"
	"github.com/okian/tradeboard/internal/domain/normalize"
	"github.com/okian/tradeboard/internal/domain/ranking"
	"github.com/okian/tradeboard/internal/domain/scoring"
	"github.com/okian/tradeboard/internal/domain/types"
	"github.com/okian/tradeboard/pkg/logger"
	"github.com/okian/tradeboard/pkg/metrics"
)

const nanosecondsPerMillisecond = 1e6

// Service loads trade data and answers ranking queries over it.
type Service struct {
	reader      source.Reader
	layout      normalize.Layout
	weights     scoring.Weights
	parallelism int
	store       repository.Store
	engine      *ranking.Engine
	now         func() time.Time
	logger      logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithReader sets the source of raw rows.
func WithReader(r source.Reader) Option {
	return func(s *Service) {
		s.reader = r
	}
}

// WithLayout sets the source column layout.
func WithLayout(l normalize.Layout) Option {
	return func(s *Service) {
		s.layout = l
	}
}

// WithWeights sets the priority score weights.
func WithWeights(w scoring.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithParallelism bounds how many continents are ranked at once.
func WithParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithStore sets the snapshot store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		layout:      normalize.DefaultLayout(),
		weights:     scoring.DefaultWeights(),
		parallelism: runtime.NumCPU(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewSnapshotStore(repository.WithLogger(s.logger))
	}
	s.engine = ranking.New(
		ranking.WithScorer(s.weights),
		ranking.WithParallelism(s.parallelism),
		ranking.WithLogger(s.logger),
		ranking.WithClock(s.now),
	)
	return s
}

// Load reads the source, builds and scores the dataset and publishes it.
// It returns ErrEmptyDataset when no country is retained; the previous
// snapshot, if any, stays current in that case.
func (s *Service) Load(ctx context.Context) (*repository.Snapshot, error) {
	if s.reader == nil {
		return nil, ErrNoSource
	}
	if err := s.weights.Validate(); err != nil {
		return nil, err
	}
	n, err := normalize.New(s.layout)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := s.logger.With(logger.String("run_id", runID))
	start := time.Now()

	rows, err := s.reader.Read(ctx)
	if err != nil {
		metrics.RecordIngestionFailure()
		log.Error(ctx, "failed to read source", logger.Error(err))
		return nil, fmt.Errorf("load: %w", err)
	}

	ds, st := dataset.NewBuilder(n, dataset.WithLogger(log)).Build(ctx, rows)
	metrics.RecordRows(metrics.RowsRead, st.Rows)
	metrics.RecordRows(metrics.RowsSkipped, st.Skipped)
	metrics.RecordRows(metrics.RowsRejected, st.Rejected)
	metrics.RecordRows(metrics.RowsDropped, st.Dropped)
	metrics.RecordRows(metrics.RowsRetained, st.Retained)

	if len(ds) == 0 {
		log.Warn(ctx, "no valid data found", logger.Int("rows", st.Rows))
		return nil, ErrEmptyDataset
	}

	scored := scoring.Apply(ds, s.weights)
	ranks, err := s.ranks(ctx, scored)
	if err != nil {
		return nil, err
	}

	snap := &repository.Snapshot{
		RunID:    runID,
		LoadedAt: s.now().UTC(),
		Dataset:  scored,
		Stats:    st,
		Ranks:    ranks,
	}
	if named, ok := s.reader.(source.Named); ok {
		snap.Source = named.Name()
	}
	if err := s.store.Replace(ctx, snap); err != nil {
		return nil, err
	}

	elapsed := float64(time.Since(start).Nanoseconds()) / nanosecondsPerMillisecond
	metrics.RecordIngestionLatency(elapsed)
	log.Info(ctx, "dataset loaded",
		logger.Int("rows", st.Rows),
		logger.Int("countries", len(scored)),
		logger.Int("rejected", st.Rejected),
		logger.Any("weights", s.weights),
		logger.Int64("loaded_at", snap.LoadedAt.Unix()),
		logger.Float64("elapsed_ms", elapsed),
	)
	return snap, nil
}

// ranks computes every country's position within its continent for each metric.
func (s *Service) ranks(ctx context.Context, ds model.Dataset) (map[string]map[string]int, error) {
	out := make(map[string]map[string]int, len(ds))
	for _, m := range ranking.AllMetrics() {
		groups, err := s.engine.Rank(ctx, ds, m, len(ds), ranking.TopOnly)
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			for _, e := range g.Top {
				key := model.CountryKey(e.Country)
				if out[key] == nil {
					out[key] = make(map[string]int, len(ranking.AllMetrics()))
				}
				out[key][string(m)] = e.Rank
			}
		}
	}
	return out, nil
}

// Report ranks the current snapshot by each metric.
func (s *Service) Report(ctx context.Context, ms []ranking.Metric, n int, mode ranking.Mode) (types.Result, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return types.Result{}, err
	}
	res, err := s.engine.RankAll(ctx, snap.Dataset, ms, n, mode)
	if err != nil {
		return types.Result{}, err
	}
	res.RunID = snap.RunID
	return res, nil
}

// Rankings ranks the current snapshot by one metric. A non-empty continent
// narrows the result to that continent, matched case-insensitively.
func (s *Service) Rankings(ctx context.Context, metric ranking.Metric, n int, mode ranking.Mode, continent string) (types.Result, error) {
	res, err := s.Report(ctx, []ranking.Metric{metric}, n, mode)
	if err != nil {
		return types.Result{}, err
	}
	continent = strings.TrimSpace(continent)
	if continent == "" {
		return res, nil
	}
	for name, groups := range res.Continents {
		if strings.EqualFold(name, continent) {
			res.Continents = map[string]map[string]types.Group{name: groups}
			return res, nil
		}
	}
	return types.Result{}, fmt.Errorf("%w: %q", ErrUnknownContinent, continent)
}

// Country returns one country with its per-metric continent ranks.
func (s *Service) Country(ctx context.Context, name string) (repository.Record, error) {
	return s.store.Country(ctx, name)
}

// GetStats returns statistics about the current snapshot.
func (s *Service) GetStats(ctx context.Context) (types.Stats, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return types.Stats{}, err
	}
	return types.Stats{
		RunID:      snap.RunID,
		LoadedAt:   snap.LoadedAt,
		Source:     snap.Source,
		Countries:  len(snap.Dataset),
		Continents: snap.Dataset.Continents(),
		Rows:       snap.Stats,
	}, nil
}
