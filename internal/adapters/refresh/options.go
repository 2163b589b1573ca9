package refresh

import (
	"github.com/okian/fplcoach/internal/domain/dedupe"
	"github.com/okian/fplcoach/pkg/logger"
)

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithName sets the scheduler name for identification and logging.
func WithName(name string) Option {
	return func(s *Scheduler) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLogger sets a custom logger for the scheduler.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSchedule sets the cron spec, e.g. "@every 30m" or "0 */6 * * *".
// An empty spec disables periodic refresh.
func WithSchedule(spec string) Option {
	return func(s *Scheduler) {
		s.schedule = spec
	}
}

// WithDeduper skips announcements of snapshot ids that were already seen.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Scheduler) {
		s.seen = d
	}
}
