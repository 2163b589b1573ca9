package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/fplcoach/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
				convey.So(cfg.RefreshSchedule, convey.ShouldEqual, "@every 30m")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("FPLCOACH_ADDR", ":8080")
			_ = os.Setenv("FPLCOACH_SOURCE", "redis")
			_ = os.Setenv("FPLCOACH_REDIS_URL", "redis://localhost:6379/0")
			_ = os.Setenv("FPLCOACH_REDIS_PREFIX", "test")
			_ = os.Setenv("FPLCOACH_FORMATION", "4-4-2")
			_ = os.Setenv("FPLCOACH_MCP_ENABLED", "false")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Source, convey.ShouldEqual, config.SourceRedis)
				convey.So(cfg.RedisPrefix, convey.ShouldEqual, "test")
				convey.So(cfg.RedisURL, convey.ShouldEqual, "redis://localhost:6379/0")
				convey.So(cfg.Formation, convey.ShouldEqual, "4-4-2")
				convey.So(cfg.MCPEnabled, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
source: postgres
postgres_dsn: "postgres://fpl@localhost/fpl?sslmode=disable"
opponent_strengths:
  "1": 20
  "7": 12
default_strength: 11
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FPLCOACH_CONFIG", tmpFile)
			_ = os.Setenv("FPLCOACH_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and env wins over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.Source, convey.ShouldEqual, config.SourcePostgres)
				convey.So(cfg.DefaultStrength, convey.ShouldEqual, 11)
				s, err := cfg.Strengths()
				convey.So(err, convey.ShouldBeNil)
				convey.So(s[1], convey.ShouldEqual, 20)
				convey.So(s[7], convey.ShouldEqual, 12)
			})
		})

		convey.Convey("When map-valued keys come from flat env vars", func() {
			_ = os.Setenv("FPLCOACH_OPPONENT_STRENGTHS", "1:18, 7:12.5")
			_ = os.Setenv("FPLCOACH_METRICS_LABELS", "env:dev")
			_ = os.Setenv("FPLCOACH_METRICS_NAMESPACE", "coach")
			_ = os.Setenv("FPLCOACH_METRICS_BUCKETS", "1,10,100")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the pairs are parsed into the maps", func() {
				convey.So(err, convey.ShouldBeNil)
				s, err := cfg.Strengths()
				convey.So(err, convey.ShouldBeNil)
				convey.So(s[1], convey.ShouldEqual, 18)
				convey.So(s[7], convey.ShouldEqual, 12.5)
				convey.So(s[2], convey.ShouldEqual, 10)
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"env": "dev"})
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "coach")
				convey.So(cfg.MetricsBuckets, convey.ShouldResemble, []float64{1, 10, 100})
			})
		})

		convey.Convey("When a flat map env var is malformed", func() {
			_ = os.Setenv("FPLCOACH_OPPONENT_STRENGTHS", "arsenal")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("FPLCOACH_CONFIG", "/nonexistent/fplcoach.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the loaded config is invalid", func() {
			_ = os.Setenv("FPLCOACH_SOURCE", "carrier-pigeon")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, k := range []string{
		"FPLCOACH_CONFIG", "FPLCOACH_ADDR", "FPLCOACH_SOURCE", "FPLCOACH_REDIS_URL", "FPLCOACH_REDIS_PREFIX",
		"FPLCOACH_FORMATION", "FPLCOACH_MCP_ENABLED", "FPLCOACH_OPPONENT_STRENGTHS",
		"FPLCOACH_METRICS_LABELS", "FPLCOACH_METRICS_NAMESPACE", "FPLCOACH_METRICS_BUCKETS",
	} {
		_ = os.Unsetenv(k)
	}
}

func createTempConfigFile(content string) string {
	f, err := os.CreateTemp("", "fplcoach-config-*.yaml")
	if err != nil {
		panic(err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	return f.Name()
}
