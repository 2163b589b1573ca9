// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/fplcoach/internal/domain/model"
	"github.com/okian/fplcoach/pkg/metrics"
)

// Snapshot sources.
const (
	SourceFile     = "file"
	SourceRedis    = "redis"
	SourcePostgres = "postgres"
	SourceFPL      = "fpl"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// CORSOrigins lists origins allowed to call the API.
	CORSOrigins []string `koanf:"cors_origins"`

	// Source selects where snapshots come from: file, redis, postgres or fpl.
	Source string `koanf:"source"`

	// DataDir holds players/fixtures/predictions files for the file source.
	DataDir string `koanf:"data_dir"`

	// RedisURL and RedisPrefix configure the redis source and publisher.
	// An empty RedisURL disables both.
	RedisURL    string `koanf:"redis_url"`
	RedisPrefix string `koanf:"redis_prefix"`

	// PostgresDSN configures the postgres source.
	PostgresDSN string `koanf:"postgres_dsn"`

	// FPL API polling.
	FPLBaseURL           string  `koanf:"fpl_base_url"`
	FPLRequestsPerSecond float64 `koanf:"fpl_requests_per_second"`
	FPLTimeoutMS         int     `koanf:"fpl_timeout_ms"`

	// RefreshSchedule is a cron spec for reloading snapshots; empty disables refresh.
	RefreshSchedule string `koanf:"refresh_schedule"`

	// Formation is the default lineup shape, e.g. "3-4-3".
	Formation string `koanf:"formation"`

	// OpponentStrengths maps team ids to defensive strength.
	OpponentStrengths map[string]float64 `koanf:"opponent_strengths"`
	// DefaultStrength is used for unmapped opponents.
	DefaultStrength float64 `koanf:"default_strength"`

	// MCPEnabled mounts the tool endpoint at MCPPath.
	MCPEnabled bool   `koanf:"mcp_enabled"`
	MCPPath    string `koanf:"mcp_path"`

	// Metrics naming. Empty values keep the metrics package defaults.
	MetricsNamespace string            `koanf:"metrics_namespace"`
	MetricsSubsystem string            `koanf:"metrics_subsystem"`
	MetricsBuckets   []float64         `koanf:"metrics_buckets"`
	MetricsLabels    map[string]string `koanf:"metrics_labels"`
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":8000",
		CORSOrigins:          []string{"http://localhost:3000"},
		Source:               SourceFile,
		DataDir:              "data",
		RedisPrefix:          "fplcoach",
		FPLBaseURL:           "https://fantasy.premierleague.com/api",
		FPLRequestsPerSecond: 2,
		FPLTimeoutMS:         10_000,
		RefreshSchedule:      "@every 30m",
		Formation:            "3-4-3",
		OpponentStrengths: map[string]float64{
			"1": 15,
			"2": 10,
		},
		DefaultStrength:  10,
		MCPEnabled:       true,
		MCPPath:          "/mcp",
		MetricsNamespace: "fplcoach",
		MetricsSubsystem: "advisor",
	}
}

// Validate checks the fields the service cannot start without.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.Source {
	case SourceFile, SourceRedis, SourcePostgres, SourceFPL:
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidConfig, c.Source)
	}
	if c.Source == SourcePostgres && c.PostgresDSN == "" {
		return fmt.Errorf("%w: postgres_dsn is required for the postgres source", ErrInvalidConfig)
	}
	if c.Source == SourceRedis && c.RedisURL == "" {
		return fmt.Errorf("%w: redis_url is required for the redis source", ErrInvalidConfig)
	}
	if c.FPLRequestsPerSecond <= 0 {
		return fmt.Errorf("%w: fpl_requests_per_second must be positive", ErrInvalidConfig)
	}
	if _, err := c.DefaultFormation(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Strengths(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.MCPEnabled && !strings.HasPrefix(c.MCPPath, "/") {
		return fmt.Errorf("%w: mcp_path must start with /", ErrInvalidConfig)
	}
	for i := 1; i < len(c.MetricsBuckets); i++ {
		if c.MetricsBuckets[i] <= c.MetricsBuckets[i-1] {
			return fmt.Errorf("%w: metrics_buckets must be strictly increasing", ErrInvalidConfig)
		}
	}
	return nil
}

// MetricsOptions converts the metrics settings to manager options.
func (c *Config) MetricsOptions() []metrics.Option {
	return []metrics.Option{
		metrics.WithNamespace(c.MetricsNamespace),
		metrics.WithSubsystem(c.MetricsSubsystem),
		metrics.WithHistogramBuckets(c.MetricsBuckets),
		metrics.WithConstLabels(c.MetricsLabels),
	}
}

// DefaultFormation parses Formation.
func (c *Config) DefaultFormation() (model.Formation, error) {
	return model.ParseFormation(c.Formation)
}

// Strengths converts OpponentStrengths to team-id keys.
func (c *Config) Strengths() (map[int]float64, error) {
	out := make(map[int]float64, len(c.OpponentStrengths))
	for k, v := range c.OpponentStrengths {
		id, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("opponent_strengths: team id %q is not a number", k)
		}
		out[id] = v
	}
	return out, nil
}

// FPLTimeout returns the upstream request timeout.
func (c *Config) FPLTimeout() time.Duration {
	return time.Duration(c.FPLTimeoutMS) * time.Millisecond
}
