package smoke

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/fplcoach/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "smoke_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file))); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	os.Stdout.WriteString(`fplcoach smoke tool
===================

Generates a synthetic dataset and probes a running fplcoach instance for
selection properties: captain maximality, transfer ordering, lineup quotas,
team rating coverage and repeated-call stability.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service; empty skips probing (default "http://localhost:8000")
  -generate string
        Directory to write players.csv, fixtures.csv and predictions.csv to
  -players int
        Number of players to generate (default 300)
  -teams int
        Number of teams to generate (default 20)
  -events int
        Number of gameweeks of fixtures to generate (default 3)
  -seed uint
        Generator seed (default 1)
  -formation string
        Formation requested from /team_builder (default "3-4-3")
  -requests int
        Number of repeated requests in the stability probe (default 200)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -log string
        Log file for smoke output (default: smoke_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Generate a dataset, then serve it
  go run ./cmd/smoke -generate ./data -url ""
  FPLCOACH_DATA_DIR=./data go run ./cmd

  # Probe a running instance
  go run ./cmd/smoke -url http://localhost:8000 -requests 1000 -workers 16
`)
}
