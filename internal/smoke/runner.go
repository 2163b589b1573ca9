// Package smoke generates synthetic datasets and checks a running service
// against the selection properties it promises.
package smoke

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/fplcoach/pkg/logger"
)

// Run executes the smoke steps enabled by config.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}
	defer func() {
		stats.EndTime = time.Now()
		stats.Duration = stats.EndTime.Sub(stats.StartTime)
		displayFinalStats(stats)
	}()

	logger.Get().Info(ctx, "starting smoke run",
		logger.String("baseURL", config.BaseURL),
		logger.String("dataDir", config.DataDir),
		logger.Int("workers", config.Workers))

	// Step 1: Generate the dataset
	if config.DataDir != "" {
		ds, err := GenerateDataset(config)
		if err != nil {
			return fmt.Errorf("failed to generate dataset: %w", err)
		}
		stats.PlayersGenerated = ds.Players.Len()
		stats.FixturesGenerated = ds.Fixtures.Len()
		if err := WriteDataset(ctx, config.DataDir, ds); err != nil {
			return err
		}
	}

	if config.BaseURL == "" {
		return nil
	}
	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 2: Wait for the first snapshot
	if err := waitHealthy(ctx, client); err != nil {
		return fmt.Errorf("service not ready: %w", err)
	}

	// Step 3: Fetch recommendations
	snap, err := fetchSnapshot(ctx, client, config)
	if err != nil {
		return fmt.Errorf("failed to fetch recommendations: %w", err)
	}

	// Step 4: Verify selection properties
	verifyErr := verifyResults(ctx, config, snap, stats)

	// Step 5: Probe repeated-call stability
	var probeErr error
	if config.Requests > 0 {
		probeErr = probeStability(ctx, client, config, stats)
	}

	if err := errors.Join(verifyErr, probeErr); err != nil {
		return err
	}
	logger.Get().Info(ctx, "smoke run passed")
	return nil
}

// waitHealthy polls /healthz until the service reports ready.
func waitHealthy(ctx context.Context, client *HTTPClient) error {
	ctx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()

	ticker := time.NewTicker(HealthCheckInterval)
	defer ticker.Stop()

	for {
		_, err := client.get(ctx, "/healthz")
		if err == nil {
			logger.Get().Info(ctx, "service is healthy")
			return nil
		}
		logger.Get().Debug(ctx, "service not ready yet", logger.Error(err))

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-ticker.C:
		}
	}
}

// displayFinalStats prints the final smoke statistics.
func displayFinalStats(stats *Stats) {
	var successRate float64
	if stats.RequestsSent > 0 {
		successRate = float64(stats.RequestsSent-stats.RequestsFailed) / float64(stats.RequestsSent) * PercentageMultiplier
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("playersGenerated", stats.PlayersGenerated),
		logger.Int("fixturesGenerated", stats.FixturesGenerated),
		logger.Int("requestsSent", stats.RequestsSent),
		logger.Int("requestsFailed", stats.RequestsFailed),
		logger.Int("mismatches", stats.Mismatches),
		logger.Int("checksPassed", stats.ChecksPassed),
		logger.Int("checksFailed", stats.ChecksFailed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate))
}
