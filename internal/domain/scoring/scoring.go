// Package scoring derives fixture-adjusted scores from enriched player rows.
package scoring

import (
	"math"

	"github.com/okian/fplcoach/internal/domain/difficulty"
	"github.com/okian/fplcoach/internal/domain/model"
	"gonum.org/v1/gonum/stat"
)

const (
	// FixtureWindow is the number of upcoming fixtures averaged for difficulty.
	FixtureWindow = 5

	minutesPerGame = 90
	captainDivisor = 10
	// adjustedDivisor scales fixture difficulty before it is subtracted from predictions.
	adjustedDivisor = 5
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithDifficulty sets the model used to resolve opponent strengths.
func WithDifficulty(d *difficulty.Model) Option {
	return func(e *Engine) {
		if d != nil {
			e.difficulty = d
		}
	}
}

// WithFixtureWindow overrides the number of fixtures averaged.
func WithFixtureWindow(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.window = k
		}
	}
}

// Engine computes captain, fixture-adjusted and per-90 scores.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	difficulty *difficulty.Model
	window     int
}

// NewEngine creates an Engine with the default difficulty model and window.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		difficulty: difficulty.New(),
		window:     FixtureWindow,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Difficulty returns the model the engine scores against.
func (e *Engine) Difficulty() *difficulty.Model { return e.difficulty }

// CaptainScore is predicted points less a tenth of the opponent's strength.
func (e *Engine) CaptainScore(r model.EnrichedRow) float64 {
	return model.Finite(r.Predicted() - r.DefenseStrength/captainDivisor)
}

// FixtureDifficulty averages opponent strength over the team's next fixtures.
// fixtures must already be in play order (see model.UpcomingFixtures). Missing
// slots count as the fallback strength so the divisor is always the window size.
func (e *Engine) FixtureDifficulty(team int, fixtures []model.FixtureRecord) float64 {
	window := make([]float64, 0, e.window)
	for _, f := range fixtures {
		if len(window) == e.window {
			break
		}
		if f.Finished {
			continue
		}
		if opp, _, ok := f.Involves(team); ok {
			window = append(window, e.difficulty.StrengthOf(opp))
		}
	}
	for len(window) < e.window {
		window = append(window, e.difficulty.Fallback())
	}
	return model.Finite(stat.Mean(window, nil))
}

// AdjustedScore is predicted points less a fifth of the fixture difficulty.
func AdjustedScore(predicted, fixtureDifficulty float64) float64 {
	return model.Finite(model.Finite(predicted) - fixtureDifficulty/adjustedDivisor)
}

// PointsPerGame normalises total points to a 90-minute rate. The result is
// always finite and never negative.
func PointsPerGame(total, minutes float64) float64 {
	if minutes <= 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return 0
	}
	ppg := model.Finite(total / (minutes / minutesPerGame))
	if ppg < 0 {
		return 0
	}
	return ppg
}

// Score derives every score for each row, preserving input order. Fixture
// difficulty is computed once per team.
func (e *Engine) Score(rows []model.EnrichedRow, fixtures []model.FixtureRecord) []model.ScoredRow {
	upcoming := model.UpcomingFixtures(fixtures)
	byTeam := make(map[int]float64)
	out := make([]model.ScoredRow, 0, len(rows))
	for _, r := range rows {
		fd, ok := byTeam[r.TeamID]
		if !ok {
			fd = e.FixtureDifficulty(r.TeamID, upcoming)
			byTeam[r.TeamID] = fd
		}
		out = append(out, model.ScoredRow{
			EnrichedRow:       r,
			CaptainScore:      e.CaptainScore(r),
			FixtureDifficulty: fd,
			AdjustedScore:     AdjustedScore(r.Predicted(), fd),
			PointsPerGame:     PointsPerGame(r.TotalPoints, r.Minutes),
		})
	}
	return out
}
