package service

import (
	"context"

	"github.com/okian/fplcoach/internal/adapters/repository"
	"github.com/okian/fplcoach/internal/domain/advisor"
	"github.com/okian/fplcoach/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSource sets where snapshots are loaded from.
func WithSource(src repository.Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithAdvisor replaces the default advisor.
func WithAdvisor(a *advisor.Advisor) Option {
	return func(s *Service) {
		if a != nil {
			s.advisor = a
		}
	}
}

// WithSchedule sets the cron spec for periodic refreshes. Empty disables them.
func WithSchedule(spec string) Option {
	return func(s *Service) {
		s.schedule = spec
	}
}

// WithPublishers announces every stored snapshot to p.
func WithPublishers(p ...repository.Publisher) Option {
	return func(s *Service) {
		s.publishers = append(s.publishers, p...)
	}
}

// WithNotifications subscribes to external snapshot announcements on start;
// every announcement triggers a refresh.
func WithNotifications(subscribe func(context.Context) <-chan string) Option {
	return func(s *Service) {
		s.subscribe = subscribe
	}
}
