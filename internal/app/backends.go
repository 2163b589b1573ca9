package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/okian/fplcoach/internal/adapters/fpl"
	"github.com/okian/fplcoach/internal/adapters/repository"
	"github.com/okian/fplcoach/internal/config"
	"github.com/okian/fplcoach/internal/domain/advisor"
	"github.com/okian/fplcoach/internal/domain/difficulty"
	"github.com/okian/fplcoach/internal/domain/scoring"
	"github.com/redis/go-redis/v9"
)

// Backends holds the snapshot source and sinks selected by configuration.
type Backends struct {
	Source        repository.Source
	Publishers    []repository.Publisher
	Notifications func(context.Context) <-chan string

	redis *redis.Client
	db    *sql.DB
}

// OpenBackends connects the source named by cfg. When a redis URL is set and
// the source is not redis itself, loaded snapshots are published to redis so
// other replicas can follow.
func OpenBackends(ctx context.Context, cfg *config.Config) (*Backends, error) {
	b := &Backends{}

	if cfg.RedisURL != "" {
		client, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		b.redis = client
	}

	switch cfg.Source {
	case config.SourceFile:
		b.Source = repository.NewFileSource(cfg.DataDir)
	case config.SourceRedis:
		if b.redis == nil {
			return nil, fmt.Errorf("%w: redis source needs redis_url", ErrUnknownSource)
		}
		src := repository.NewRedisSource(b.redis, cfg.RedisPrefix)
		b.Source = src
		b.Notifications = src.Subscribe
	case config.SourcePostgres:
		db, err := repository.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.db = db
		b.Source = repository.NewPostgresSource(db, "")
	case config.SourceFPL:
		client := fpl.NewClient(cfg.FPLBaseURL,
			fpl.WithTimeout(cfg.FPLTimeout()),
			fpl.WithRequestsPerSecond(cfg.FPLRequestsPerSecond),
		)
		b.Source = fpl.NewSource(client)
	default:
		_ = b.Close()
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
	}

	if b.redis != nil && cfg.Source != config.SourceRedis {
		b.Publishers = append(b.Publishers, repository.NewRedisPublisher(b.redis, cfg.RedisPrefix))
	}
	return b, nil
}

// Close releases connections held by the backends.
func (b *Backends) Close() error {
	var errs []error
	if b.redis != nil {
		errs = append(errs, b.redis.Close())
	}
	if b.db != nil {
		errs = append(errs, b.db.Close())
	}
	return errors.Join(errs...)
}

// Options returns the service options wiring these backends.
func (b *Backends) Options() []Option {
	opts := []Option{WithSource(b.Source), WithPublishers(b.Publishers...)}
	if b.Notifications != nil {
		opts = append(opts, WithNotifications(b.Notifications))
	}
	return opts
}

// AdvisorFromConfig builds an advisor using the configured difficulty model
// and default formation.
func AdvisorFromConfig(cfg *config.Config) (*advisor.Advisor, error) {
	strengths, err := cfg.Strengths()
	if err != nil {
		return nil, err
	}
	formation, err := cfg.DefaultFormation()
	if err != nil {
		return nil, err
	}
	dm := difficulty.New(
		difficulty.WithStrengths(strengths),
		difficulty.WithFallback(cfg.DefaultStrength),
	)
	return advisor.New(
		advisor.WithEngine(scoring.NewEngine(scoring.WithDifficulty(dm))),
		advisor.WithFormation(formation),
	), nil
}
