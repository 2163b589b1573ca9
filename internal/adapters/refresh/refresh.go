// Package refresh reloads snapshots on a cron schedule and on demand.
package refresh

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/fplcoach/internal/adapters/repository"
	"github.com/okian/fplcoach/internal/domain/dedupe"
	"github.com/okian/fplcoach/internal/domain/model"
	"github.com/okian/fplcoach/pkg/logger"
	"github.com/okian/fplcoach/pkg/metrics"
	"github.com/robfig/cron/v3"
)

// Refresher stores a snapshot loaded from a source.
type Refresher interface {
	Refresh(ctx context.Context, src repository.Source) (*model.Snapshot, error)
}

// Scheduler drives a Refresher from a cron schedule, manual triggers and
// external notifications. Runs never overlap.
type Scheduler struct {
	target   Refresher
	source   repository.Source
	schedule string
	name     string
	logger   logger.Logger
	seen     dedupe.Deduper // loaded and announced snapshot ids

	cron    *cron.Cron
	mu      sync.Mutex // serialises runs
	trigger chan struct{}
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

// NewScheduler creates a scheduler refreshing target from source.
func NewScheduler(target Refresher, source repository.Source, opts ...Option) *Scheduler {
	s := &Scheduler{
		target:  target,
		source:  source,
		name:    "refresh",
		logger:  logger.Get().Named("refresh"),
		trigger: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cron = cron.New(cron.WithLogger(cronLogger{l: s.logger}))
	return s
}

// RunOnce performs a single refresh, waiting for any run in progress.
func (s *Scheduler) RunOnce(ctx context.Context) (*model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.target.Refresh(ctx, s.source)
	if err != nil {
		s.logger.Error(ctx, "refresh failed",
			logger.String("scheduler", s.name),
			logger.String("source", s.source.Name()),
			logger.Error(err))
		return nil, err
	}
	if s.seen != nil && snap != nil {
		s.seen.SeenAndRecord(ctx, snap.ID)
	}
	return snap, nil
}

// Start registers the schedule and starts the trigger loop. It does not
// perform an initial load; call RunOnce for that.
func (s *Scheduler) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	if s.schedule != "" {
		if _, err := s.cron.AddFunc(s.schedule, func() { s.Trigger() }); err != nil {
			s.cancel()
			return fmt.Errorf("failed to schedule refresh %q: %w", s.schedule, err)
		}
		s.cron.Start()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.trigger:
				_, _ = s.RunOnce(ctx)
			}
		}
	}()

	s.logger.Info(ctx, "refresh scheduler started",
		logger.String("scheduler", s.name),
		logger.String("schedule", s.schedule),
		logger.String("source", s.source.Name()))
	return nil
}

// Trigger requests a refresh. Requests made while one is pending coalesce.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Watch refreshes for every announced snapshot id until ctx is done or the
// channel closes. With a deduper, ids already loaded or announced are skipped
// and an id whose refresh fails is forgotten so that it can be retried.
func (s *Scheduler) Watch(ctx context.Context, notifications <-chan string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case id, ok := <-notifications:
				if !ok {
					return
				}
				s.announced(ctx, id)
			}
		}
	}()
}

func (s *Scheduler) announced(ctx context.Context, id string) {
	if s.seen != nil && s.seen.SeenAndRecord(ctx, id) {
		s.logger.Debug(ctx, "duplicate snapshot announcement", logger.String("snapshot_id", id))
		metrics.RecordAnnouncement(metrics.OutcomeSkip)
		return
	}
	s.logger.Debug(ctx, "snapshot announced", logger.String("snapshot_id", id))
	if _, err := s.RunOnce(ctx); err != nil {
		if s.seen != nil {
			s.seen.Unrecord(ctx, id)
		}
		metrics.RecordAnnouncement(metrics.OutcomeError)
		return
	}
	metrics.RecordAnnouncement(metrics.OutcomeOK)
}

// Shutdown stops the schedule and waits for running work.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	stopped := s.cron.Stop()
	if s.cancel != nil {
		s.cancel()
	}
	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.logger.Warn(ctx, "shutdown timed out", logger.String("scheduler", s.name))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Entries returns the next scheduled run times.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	l logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(context.Background(), msg, pairs(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(context.Background(), msg, append(pairs(keysAndValues), logger.Error(err))...)
}

func pairs(kv []interface{}) []logger.Field {
	out := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return out
}
