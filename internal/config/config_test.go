package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/fplcoach/internal/config"
	"github.com/okian/fplcoach/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
			convey.So(cfg.Source, convey.ShouldEqual, config.SourceFile)
			convey.So(cfg.Formation, convey.ShouldEqual, "3-4-3")
			convey.So(cfg.DefaultStrength, convey.ShouldEqual, 10)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then derived values are parsed", func() {
			f, err := cfg.DefaultFormation()
			convey.So(err, convey.ShouldBeNil)
			convey.So(f, convey.ShouldResemble, model.DefaultFormation())

			s, err := cfg.Strengths()
			convey.So(err, convey.ShouldBeNil)
			convey.So(s, convey.ShouldResemble, map[int]float64{1: 15, 2: 10})
			convey.So(cfg.MetricsOptions(), convey.ShouldHaveLength, 4)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid configs", t, func() {
		ctx := context.Background()
		cases := map[string]func(*config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = "" },
			"unknown source":    func(c *config.Config) { c.Source = "ftp" },
			"postgres no dsn":   func(c *config.Config) { c.Source = config.SourcePostgres },
			"redis no url":      func(c *config.Config) { c.Source = config.SourceRedis },
			"bad formation":     func(c *config.Config) { c.Formation = "4-four-2" },
			"bad team id":       func(c *config.Config) { c.OpponentStrengths = map[string]float64{"arsenal": 3} },
			"zero rate":         func(c *config.Config) { c.FPLRequestsPerSecond = 0 },
			"relative mcp path": func(c *config.Config) { c.MCPPath = "mcp" },
			"unsorted buckets":  func(c *config.Config) { c.MetricsBuckets = []float64{5, 1} },
		}
		for name, mutate := range cases {
			cfg := config.New(ctx)
			mutate(cfg)
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			_ = name
		}
	})
}
