package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/okian/fplcoach/internal/domain/model"
	"github.com/okian/fplcoach/pkg/logger"
	"github.com/okian/fplcoach/pkg/metrics"
)

// Holder keeps the current snapshot. Readers get an immutable pointer and
// never block writers; a refresh replaces the pointer atomically.
type Holder struct {
	current    atomic.Pointer[model.Snapshot]
	publishers []Publisher
	newID      func() string
	now        func() time.Time
}

// NewHolder creates an empty Holder.
func NewHolder(opts ...Option) *Holder {
	h := &Holder{newID: newUUID, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Current returns the latest snapshot or ErrNotReady.
func (h *Holder) Current(_ context.Context) (*model.Snapshot, error) {
	snap := h.current.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	return snap, nil
}

// Ready reports whether a snapshot has been stored.
func (h *Holder) Ready() bool {
	return h.current.Load() != nil
}

// Store validates snap, stamps missing id and load time, and makes it current.
// Publisher failures are logged and do not reject the snapshot.
func (h *Holder) Store(ctx context.Context, snap *model.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("store snapshot: %w", ErrMissingTable)
	}
	if err := snap.Players.Require(model.ColName); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	if snap.ID == "" {
		snap.ID = h.newID()
	}
	if snap.LoadedAt.IsZero() {
		snap.LoadedAt = h.now()
	}
	h.current.Store(snap)

	metrics.UpdateSnapshotRows(TablePlayers, snap.Players.Len())
	metrics.UpdateSnapshotRows(TableFixtures, snap.Fixtures.Len())
	metrics.UpdateSnapshotRows(TablePredictions, snap.Predictions.Len())
	metrics.UpdateSnapshotLoaded(snap.LoadedAt)

	for _, p := range h.publishers {
		if err := p.Publish(ctx, snap); err != nil {
			logger.Get().Warn(ctx, "snapshot publish failed",
				logger.String("snapshot_id", snap.ID), logger.Error(err))
		}
	}
	return nil
}

// Refresh loads a snapshot from src and stores it. On failure the previous
// snapshot stays current.
func (h *Holder) Refresh(ctx context.Context, src Source) (*model.Snapshot, error) {
	start := h.now()
	snap, err := src.Load(ctx)
	if err == nil && snap == nil {
		err = ErrMissingTable
	}
	if err == nil {
		if snap.Source == "" {
			snap.Source = src.Name()
		}
		err = h.Store(ctx, snap)
	}
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		metrics.RecordSnapshotRefresh(src.Name(), metrics.OutcomeError, elapsed)
		return nil, fmt.Errorf("refresh from %s: %w", src.Name(), err)
	}
	metrics.RecordSnapshotRefresh(src.Name(), metrics.OutcomeOK, elapsed)
	logger.Get().Info(ctx, "snapshot refreshed",
		logger.String("snapshot_id", snap.ID),
		logger.String("source", snap.Source),
		logger.Int("players", snap.Players.Len()),
		logger.Int("fixtures", snap.Fixtures.Len()),
		logger.Int("predictions", snap.Predictions.Len()))
	return snap, nil
}
