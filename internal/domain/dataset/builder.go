// Package dataset accumulates normalized rows into a Dataset.
package dataset

import (
	"context"
	"errors"

	"github.com/okian/tradeboard/internal/domain/model"
	"github.com/okian/tradeboard/internal/domain/normalize"
	"github.com/okian/tradeboard/pkg/logger"
)

// Stats counts what happened to each input row.
type Stats struct {
	Rows     int `json:"rows"`
	Skipped  int `json:"skipped"`
	Rejected int `json:"rejected"`
	Dropped  int `json:"dropped"`
	Retained int `json:"retained"`
}

// Normalizer converts one row into a candidate record.
type Normalizer interface {
	Normalize(row model.Row) (model.CountryMetrics, error)
}

// Builder turns rows into a Dataset.
type Builder struct {
	normalizer Normalizer
	logger     logger.Logger
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithLogger sets the logger used for rejected-row warnings.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a Builder around n.
func NewBuilder(n Normalizer, opts ...Option) *Builder {
	b := &Builder{normalizer: n, logger: logger.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build normalizes every row and keeps candidates with at least one non-zero
// metric. Duplicate countries overwrite earlier rows. A row-level problem
// never aborts the build; an empty Dataset is returned when nothing is kept.
func (b *Builder) Build(ctx context.Context, rows []model.Row) (model.Dataset, Stats) {
	ds := make(model.Dataset)
	var st Stats
	for _, row := range rows {
		st.Rows++
		m, err := b.normalizer.Normalize(row)
		switch {
		case err == nil:
		case errors.Is(err, normalize.ErrSkipped):
			st.Skipped++
			continue
		default:
			st.Rejected++
			b.logger.Warn(ctx, "invalid value in row",
				logger.Int("line", row.Line),
				logger.Error(err),
			)
			continue
		}
		if !m.HasNonZeroMetric() {
			st.Dropped++
			continue
		}
		ds[model.CountryKey(m.Country)] = m
	}
	st.Retained = len(ds)
	b.logger.Debug(ctx, "dataset built",
		logger.Int("rows", st.Rows),
		logger.Int("skipped", st.Skipped),
		logger.Int("rejected", st.Rejected),
		logger.Int("dropped", st.Dropped),
		logger.Int("retained", st.Retained),
	)
	return ds, st
}
