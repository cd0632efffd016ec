package repository

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/okian/tradeboard/internal/domain/model"
	"github.com/okian/tradeboard/pkg/logger"
	"github.com/okian/tradeboard/pkg/metrics"
)

// SnapshotStore keeps the current snapshot behind an atomic pointer so
// readers never block a reload.
type SnapshotStore struct {
	snapshot atomic.Pointer[Snapshot]
	logger   logger.Logger
}

// NewSnapshotStore constructs an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Replace implements Store.Replace.
func (s *SnapshotStore) Replace(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return ErrNilSnapshot
	}
	if snap.Dataset == nil {
		snap.Dataset = model.Dataset{}
	}
	prev := s.snapshot.Swap(snap)

	metrics.UpdateDatasetSize(len(snap.Dataset), len(snap.Dataset.Continents()))
	fields := []logger.Field{
		logger.String("run_id", snap.RunID),
		logger.Int("countries", len(snap.Dataset)),
	}
	if prev != nil {
		fields = append(fields, logger.String("previous_run_id", prev.RunID))
	}
	s.logger.Info(ctx, "snapshot published", fields...)
	return nil
}

// Current implements Store.Current.
func (s *SnapshotStore) Current(_ context.Context) (*Snapshot, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Country implements Store.Country.
func (s *SnapshotStore) Country(ctx context.Context, name string) (Record, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return Record{}, err
	}
	m, ok := snap.Dataset.Lookup(name)
	if !ok {
		return Record{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	ranks := make(map[string]int, len(snap.Ranks[model.CountryKey(name)]))
	for metric, r := range snap.Ranks[model.CountryKey(name)] {
		ranks[metric] = r
	}
	return Record{Metrics: m, Ranks: ranks}, nil
}

// Count implements Store.Count.
func (s *SnapshotStore) Count(_ context.Context) int {
	snap := s.snapshot.Load()
	if snap == nil {
		return 0
	}
	return len(snap.Dataset)
}
