package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/fplcoach/internal/adapters/http/api"
	"github.com/okian/fplcoach/internal/adapters/http/site"
	"github.com/okian/fplcoach/internal/adapters/http/swagger"
	"github.com/okian/fplcoach/internal/adapters/mcp"
	app "github.com/okian/fplcoach/internal/app"
	"github.com/okian/fplcoach/internal/config"
	"github.com/okian/fplcoach/pkg/logger"
	"github.com/okian/fplcoach/pkg/metrics"

	"github.com/go-chi/chi/v5"
)

// version is reported to tool clients; overridden at build time.
var version = "dev"

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	metrics.Configure(cfg.MetricsOptions()...)

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, loggerInstance); err != nil {
		loggerInstance.Error(ctx, "fplcoach exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	backends, err := app.OpenBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := backends.Close(); err != nil {
			log.Warn(ctx, "closing backends failed", logger.Error(err))
		}
	}()

	adv, err := app.AdvisorFromConfig(cfg)
	if err != nil {
		return err
	}

	opts := append(backends.Options(),
		app.WithLogger(log.Named("service")),
		app.WithAdvisor(adv),
		app.WithSchedule(cfg.RefreshSchedule),
	)
	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           buildHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("source", cfg.Source),
			logger.Bool("mcp", cfg.MCPEnabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// buildHandler assembles the API, docs, landing page and tool endpoint.
func buildHandler(ctx context.Context, cfg *config.Config, svc *app.Service) http.Handler {
	opts := []api.Option{
		api.WithCORSOrigins(cfg.CORSOrigins...),
		api.WithRoutes(func(r chi.Router) {
			swagger.Register(ctx, r)
			site.Register(ctx, r)
		}),
	}
	if cfg.MCPEnabled {
		opts = append(opts, api.WithMount(cfg.MCPPath, mcp.Handler(mcp.NewServer(svc, version))))
	}
	return api.NewServer(svc, opts...).Handler()
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
