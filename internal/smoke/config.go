package smoke

import (
	"time"

	"github.com/okian/fplcoach/internal/domain/model"
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL   string        // Base URL of the service; empty skips probing
	DataDir   string        // Directory to write a synthetic dataset to; empty skips generation
	Players   int           // Number of players to generate
	Teams     int           // Number of teams to generate
	Events    int           // Number of upcoming gameweeks to generate fixtures for
	Seed      uint64        // Generator seed
	Formation string        // Formation requested from /team_builder
	Requests  int           // Number of repeated requests in the idempotence probe
	Workers   int           // Number of concurrent workers
	Timeout   time.Duration // HTTP request timeout
	LogFile   string        // Log file for smoke output
	Verbose   bool          // Enable verbose logging
}

// Dataset is a generated players/fixtures/predictions triple.
type Dataset struct {
	Players     *model.Table
	Fixtures    *model.Table
	Predictions *model.Table
}

// CaptainResponse mirrors the body of GET /captain.
type CaptainResponse struct {
	Captain                   string  `json:"captain"`
	PredictedPoints           float64 `json:"predicted_points"`
	NextOpponent              *int    `json:"next_opponent"`
	OpponentDefensiveStrength float64 `json:"opponent_defensive_strength"`
	CaptainScore              float64 `json:"captain_score"`
}

// LineupResponse mirrors the body of GET /team_builder.
type LineupResponse struct {
	Formation string              `json:"formation"`
	Size      int                 `json:"size"`
	Lineup    []model.LineupEntry `json:"lineup"`
}

// Snapshot is everything fetched from the service in one pass.
type Snapshot struct {
	Players   []model.ScoredRow
	Captain   CaptainResponse
	Transfers []model.ScoredRow
	Lineup    LineupResponse
	Rating    model.Rating
}

// Stats holds smoke run statistics.
type Stats struct {
	PlayersGenerated  int
	FixturesGenerated int
	RequestsSent      int
	RequestsFailed    int
	Mismatches        int
	ChecksPassed      int
	ChecksFailed      int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
