package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/fplcoach/internal/smoke"
)

// Default configuration constants.
const (
	defaultRequests     = 200
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 10 * time.Second
	defaultSmokeTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:8000", "Base URL of the service; empty skips probing")
		dataDir   = flag.String("generate", "", "Directory to write a synthetic dataset to")
		players   = flag.Int("players", smoke.DefaultPlayers, "Number of players to generate")
		teams     = flag.Int("teams", smoke.DefaultTeams, "Number of teams to generate")
		events    = flag.Int("events", smoke.DefaultEvents, "Number of gameweeks of fixtures to generate")
		seed      = flag.Uint64("seed", 1, "Generator seed")
		formation = flag.String("formation", "3-4-3", "Formation requested from /team_builder")
		requests  = flag.Int("requests", defaultRequests, "Number of repeated requests in the stability probe")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile   = flag.String("log", "", "Log file for smoke output (default: smoke_log_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoke.ShowHelp()
		return
	}

	if err := smoke.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultSmokeTimeout)
	defer cancel()

	config := &smoke.Config{
		BaseURL:   *baseURL,
		DataDir:   *dataDir,
		Players:   *players,
		Teams:     *teams,
		Events:    *events,
		Seed:      *seed,
		Formation: *formation,
		Requests:  *requests,
		Workers:   max(1, *workers),
		Timeout:   *timeout,
		LogFile:   *logFile,
		Verbose:   *verbose,
	}

	if err := smoke.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Smoke run failed: " + err.Error() + "\n")
		cancel()
		stop()
		os.Exit(1)
	}
}
