// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the tool server.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/fplcoach/internal/adapters/refresh"
	"github.com/okian/fplcoach/internal/adapters/repository"
	"github.com/okian/fplcoach/internal/domain/advisor"
	"github.com/okian/fplcoach/internal/domain/dedupe"
	"github.com/okian/fplcoach/internal/domain/model"
	"github.com/okian/fplcoach/internal/domain/types"
	"github.com/okian/fplcoach/pkg/logger"
	"github.com/okian/fplcoach/pkg/metrics"
)

// Operation names used for metrics and logs.
const (
	OpCaptain    = "captain"
	OpTransfers  = "transfers"
	OpLineup     = "lineup"
	OpTeamRating = "team_rating"
	OpPlayers    = "players"
	OpPlayer     = "player"
	OpCompare    = "compare"
	OpInjuries   = "injuries"
	OpDebug      = "debug_captain"
)

const shutdownTimeout = 5 * time.Second

// Service serves recommendations over the current snapshot and keeps that
// snapshot fresh.
type Service struct {
	mu sync.RWMutex

	// Core components
	holder    *repository.Holder
	advisor   *advisor.Advisor
	source    repository.Source
	scheduler *refresh.Scheduler

	// Configuration
	schedule   string
	publishers []repository.Publisher
	subscribe  func(context.Context) <-chan string

	// State
	started   bool
	startedAt time.Time
	cancel    context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. A source must be supplied before Start.
func New(opts ...Option) *Service {
	s := &Service{
		advisor: advisor.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.holder = repository.NewHolder(repository.WithPublishers(s.publishers...))
	return s
}

// Start loads the first snapshot and starts scheduled refreshes. A failed
// first load is logged; the service then reports not ready until a refresh
// succeeds.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.source == nil {
		return ErrNoSource
	}

	s.logger.Info(ctx, "starting advisor service...",
		logger.String("source", s.source.Name()),
		logger.String("schedule", s.schedule))

	opts := []refresh.Option{
		refresh.WithName(s.source.Name()),
		refresh.WithSchedule(s.schedule),
	}
	if s.subscribe != nil {
		opts = append(opts, refresh.WithDeduper(dedupe.NewInMemoryDeduper()))
	}
	s.scheduler = refresh.NewScheduler(s.holder, s.source, opts...)
	if _, err := s.scheduler.RunOnce(ctx); err != nil {
		s.logger.Warn(ctx, "initial snapshot load failed", logger.Error(err))
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if err := s.scheduler.Start(runCtx); err != nil {
		cancel()
		return fmt.Errorf("failed to start refresh scheduler: %w", err)
	}
	if s.subscribe != nil {
		s.scheduler.Watch(runCtx, s.subscribe(runCtx))
	}

	s.cancel = cancel
	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "advisor service started", logger.Bool("ready", s.holder.Ready()))
	return nil
}

// Stop halts scheduled refreshes. The last snapshot stays readable.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info(ctx, "stopping advisor service...")

	if err := s.scheduler.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "refresh scheduler did not stop cleanly", logger.Error(err))
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "advisor service stopped")
}

// Ready reports whether a snapshot is loaded.
func (s *Service) Ready() bool {
	return s.holder.Ready()
}

// Formation returns the default lineup formation.
func (s *Service) Formation() model.Formation {
	return s.advisor.Formation()
}

// Snapshot returns the snapshot currently served.
func (s *Service) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	return s.holder.Current(ctx)
}

// Refresh reloads the snapshot now, waiting for any scheduled run.
func (s *Service) Refresh(ctx context.Context) (*model.Snapshot, error) {
	s.mu.RLock()
	sched, src := s.scheduler, s.source
	s.mu.RUnlock()

	if sched != nil {
		return sched.RunOnce(ctx)
	}
	if src == nil {
		return nil, ErrNoSource
	}
	return s.holder.Refresh(ctx, src)
}

// Store replaces the current snapshot directly.
func (s *Service) Store(ctx context.Context, snap *model.Snapshot) error {
	return s.holder.Store(ctx, snap)
}

// Captain returns the player with the highest captain score.
func (s *Service) Captain(ctx context.Context) (model.ScoredRow, error) {
	return run(ctx, s, OpCaptain, s.advisor.SelectCaptain)
}

// Transfers returns the top players by adjusted score.
func (s *Service) Transfers(ctx context.Context) ([]model.ScoredRow, error) {
	return run(ctx, s, OpTransfers, s.advisor.RecommendTransfers)
}

// Lineup builds a lineup for formation; nil selects the default formation.
func (s *Service) Lineup(ctx context.Context, formation model.Formation) ([]model.LineupEntry, error) {
	return run(ctx, s, OpLineup, func(snap *model.Snapshot) ([]model.LineupEntry, error) {
		return s.advisor.BuildLineup(snap, formation)
	})
}

// RateTeam rates the named squad.
func (s *Service) RateTeam(ctx context.Context, names []string) (model.Rating, error) {
	return run(ctx, s, OpTeamRating, func(snap *model.Snapshot) (model.Rating, error) {
		return s.advisor.RateTeam(snap, names)
	})
}

// Players lists scored players matching filter.
func (s *Service) Players(ctx context.Context, filter advisor.Filter) ([]model.ScoredRow, error) {
	return run(ctx, s, OpPlayers, func(snap *model.Snapshot) ([]model.ScoredRow, error) {
		return s.advisor.Players(snap, filter)
	})
}

// Player returns one scored player by name.
func (s *Service) Player(ctx context.Context, name string) (model.ScoredRow, error) {
	return run(ctx, s, OpPlayer, func(snap *model.Snapshot) (model.ScoredRow, error) {
		return s.advisor.Player(snap, name)
	})
}

// Compare returns two scored players side by side.
func (s *Service) Compare(ctx context.Context, first, second string) (advisor.Comparison, error) {
	return run(ctx, s, OpCompare, func(snap *model.Snapshot) (advisor.Comparison, error) {
		return s.advisor.Compare(snap, first, second)
	})
}

// Injuries lists players flagged unavailable.
func (s *Service) Injuries(ctx context.Context) ([]model.PlayerRecord, error) {
	return run(ctx, s, OpInjuries, s.advisor.Injuries)
}

// DebugCaptain returns the rows behind the captain score of name.
func (s *Service) DebugCaptain(ctx context.Context, name string) (advisor.CaptainTrace, error) {
	return run(ctx, s, OpDebug, func(snap *model.Snapshot) (advisor.CaptainTrace, error) {
		return s.advisor.DebugCaptain(snap, name)
	})
}

// run evaluates op against one snapshot and records its outcome and latency.
func run[T any](ctx context.Context, s *Service, op string, fn func(*model.Snapshot) (T, error)) (T, error) {
	var zero T
	start := time.Now()
	snap, err := s.holder.Current(ctx)
	if err != nil {
		metrics.RecordRecommendation(op, metrics.OutcomeError)
		return zero, err
	}
	out, err := fn(snap)
	metrics.RecordSelectionLatency(op, float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		metrics.RecordRecommendation(op, metrics.OutcomeError)
		if !isClientError(err) {
			s.logger.Error(ctx, "operation failed",
				logger.String("operation", op),
				logger.String("snapshot_id", snap.ID),
				logger.Error(err))
		}
		return zero, err
	}
	metrics.RecordRecommendation(op, metrics.OutcomeOK)
	return out, nil
}

func isClientError(err error) bool {
	var fe *model.FormationError
	return errors.Is(err, model.ErrEmptySet) || errors.Is(err, model.ErrNoMatch) || errors.As(err, &fe)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		Started:   s.started,
		Ready:     s.holder.Ready(),
		Schedule:  s.schedule,
		Formation: s.advisor.Formation().String(),
	}
	if s.source != nil {
		stats.Source = s.source.Name()
	}
	if s.started {
		stats.Uptime = time.Since(s.startedAt).Truncate(time.Second).String()
		if entries := s.scheduler.Entries(); len(entries) > 0 {
			next := entries[0].Next
			stats.NextRefresh = &next
		}
	}
	if snap, err := s.holder.Current(context.Background()); err == nil {
		stats.Snapshot = &types.SnapshotInfo{
			ID:          snap.ID,
			Source:      snap.Source,
			LoadedAt:    snap.LoadedAt,
			Players:     snap.Players.Len(),
			Fixtures:    snap.Fixtures.Len(),
			Predictions: snap.Predictions.Len(),
			Teams:       len(snap.Teams),
		}
	}
	return stats
}
