// Package ranking groups a dataset by continent and selects the top and
// bottom countries for a metric.
//
// Ordering: value DESC for top, value ASC for bottom. Ties are broken by
// country name ASC in both sequences, so results are deterministic for any
// map iteration order.
package ranking

import (
	"container/heap"
	"context"
	"fmt"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/tradeboard/internal/domain/model"
	"github.com/okian/tradeboard/internal/domain/scoring"
	"github.com/okian/tradeboard/internal/domain/types"
	"github.com/okian/tradeboard/pkg/logger"
	"github.com/okian/tradeboard/pkg/metrics"
)

const nanosecondsPerMillisecond = 1e6

// Engine ranks datasets. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	scorer      scoring.Scorer
	parallelism int
	logger      logger.Logger
	now         func() time.Time
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithScorer sets the scorer used for the priority metric.
func WithScorer(s scoring.Scorer) Option {
	return func(e *Engine) {
		if s != nil {
			e.scorer = s
		}
	}
}

// WithParallelism bounds how many continents are ranked at once.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock overrides the time source used for Result.GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an Engine with default weights.
func New(opts ...Option) *Engine {
	e := &Engine{
		scorer:      scoring.DefaultWeights(),
		parallelism: runtime.NumCPU(),
		logger:      logger.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Value returns the value of metric for m.
func (e *Engine) Value(m model.CountryMetrics, metric Metric) (float64, error) {
	if v, ok := metric.raw(m); ok {
		return v, nil
	}
	if metric == Priority {
		return e.scorer.Score(m), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMetric, string(metric))
}

// item is a record with its metric value and canonical position.
type item struct {
	m     model.CountryMetrics
	value float64
	order int
}

// better reports whether a ranks above b in a top sequence.
func better(a, b item) bool {
	if a.value != b.value {
		return a.value > b.value
	}
	return a.order < b.order
}

// Rank partitions ds by continent and ranks each group by metric.
// n <= 0 yields empty sequences for every continent.
func (e *Engine) Rank(ctx context.Context, ds model.Dataset, metric Metric, n int, mode Mode) (map[string]types.Group, error) {
	if err := e.check(metric, mode); err != nil {
		return nil, err
	}
	start := time.Now()

	continents, groups := e.partition(ds, metric)
	ranked := make([]types.Group, len(continents))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i, c := range continents {
		items := groups[c]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ranked[i] = rankGroup(items, n, mode)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rank %s: %w", metric, err)
	}

	out := make(map[string]types.Group, len(continents))
	for i, c := range continents {
		out[c] = ranked[i]
	}

	elapsed := float64(time.Since(start).Nanoseconds()) / nanosecondsPerMillisecond
	metrics.RecordRanking(string(metric), string(mode), elapsed)
	e.logger.Debug(ctx, "ranked dataset",
		logger.String("metric", string(metric)),
		logger.String("mode", string(mode)),
		logger.Int("limit", n),
		logger.Int("continents", len(continents)),
		logger.Float64("elapsed_ms", elapsed),
	)
	return out, nil
}

// RankAll ranks ds by each metric and assembles a Result. Every metric is
// validated before any work starts.
func (e *Engine) RankAll(ctx context.Context, ds model.Dataset, ms []Metric, n int, mode Mode) (types.Result, error) {
	for _, m := range ms {
		if err := e.check(m, mode); err != nil {
			return types.Result{}, err
		}
	}
	res := types.Result{
		GeneratedAt: e.now().UTC(),
		Limit:       n,
		Mode:        string(mode),
		Metrics:     make([]string, 0, len(ms)),
		Continents:  make(map[string]map[string]types.Group),
	}
	for _, m := range ms {
		groups, err := e.Rank(ctx, ds, m, n, mode)
		if err != nil {
			return types.Result{}, err
		}
		res.Metrics = append(res.Metrics, string(m))
		for c, g := range groups {
			if res.Continents[c] == nil {
				res.Continents[c] = make(map[string]types.Group, len(ms))
			}
			res.Continents[c][string(m)] = g
		}
	}
	return res, nil
}

func (e *Engine) check(metric Metric, mode Mode) error {
	if !metric.Valid() {
		metrics.RecordInvalidMetric()
		return fmt.Errorf("%w: %q", ErrInvalidMetric, string(metric))
	}
	if mode != TopOnly && mode != TopAndBottom {
		return fmt.Errorf("%w: %q", ErrInvalidMode, string(mode))
	}
	return nil
}

// partition groups ds by continent. Each group keeps canonical country order
// and every record carries its priority.
func (e *Engine) partition(ds model.Dataset, metric Metric) ([]string, map[string][]item) {
	groups := make(map[string][]item)
	for i, m := range ds.Countries() {
		m.Priority = e.scorer.Score(m)
		v, _ := e.Value(m, metric)
		groups[m.Continent] = append(groups[m.Continent], item{m: m, value: v, order: i})
	}
	continents := make([]string, 0, len(groups))
	for c := range groups {
		continents = append(continents, c)
	}
	slices.Sort(continents)
	return continents, groups
}

func rankGroup(items []item, n int, mode Mode) types.Group {
	if n <= 0 {
		g := types.Group{Top: []types.Entry{}}
		if mode == TopAndBottom {
			g.Bottom = []types.Entry{}
		}
		return g
	}
	if mode == TopOnly {
		return types.Group{Top: entries(selectTop(items, n))}
	}

	desc := slices.Clone(items)
	slices.SortStableFunc(desc, func(a, b item) int { return cmpValue(b.value, a.value) })
	asc := slices.Clone(items)
	slices.SortStableFunc(asc, func(a, b item) int { return cmpValue(a.value, b.value) })
	return types.Group{
		Top:    entries(desc[:min(n, len(desc))]),
		Bottom: entries(asc[:min(n, len(asc))]),
	}
}

func cmpValue(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// selectTop keeps the n best items with a bounded heap whose root is the
// worst kept item, then orders them best first.
func selectTop(items []item, n int) []item {
	h := make(worstFirst, 0, min(n, len(items)))
	for _, it := range items {
		if len(h) < n {
			heap.Push(&h, it)
			continue
		}
		if better(it, h[0]) {
			h[0] = it
			heap.Fix(&h, 0)
		}
	}
	out := []item(h)
	slices.SortFunc(out, func(a, b item) int {
		if better(a, b) {
			return -1
		}
		if better(b, a) {
			return 1
		}
		return 0
	})
	return out
}

func entries(items []item) []types.Entry {
	out := make([]types.Entry, len(items))
	for i, it := range items {
		out[i] = types.Entry{
			Rank:      i + 1,
			Country:   it.m.Country,
			Continent: it.m.Continent,
			Value:     it.value,
			Metrics:   it.m,
		}
	}
	return out
}

// worstFirst is a heap.Interface with the lowest-ranked item at the root.
type worstFirst []item

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return better(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *worstFirst) Push(x any) { *h = append(*h, x.(item)) }

func (h *worstFirst) Pop() any {
	old := *h
	it := old[len(old)-1]
	*h = old[:len(old)-1]
	return it
}
