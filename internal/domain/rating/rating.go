// Package rating reduces a named squad to a single team rating.
package rating

import (
	"fmt"
	"strings"

	"github.com/okian/fplcoach/internal/domain/difficulty"
	"github.com/okian/fplcoach/internal/domain/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	pointsDivisor    = 10
	ppgWeight        = 10
	difficultyWeight = 2
)

// Rate rates the rows named in names. Names match trimmed and case-insensitively.
// Fixture difficulty is the opponent's strength averaged over every side of an
// unfinished fixture played by a squad team, on the same scale the scoring engine
// uses. Per-fixture FPL difficulty ratings are ignored. No matches is a
// *model.NoMatchError.
func Rate(rows []model.ScoredRow, names []string, fixtures []model.FixtureRecord, d *difficulty.Model) (model.Rating, error) {
	subset, unmatched := match(rows, names)
	if len(subset) == 0 {
		return model.Rating{}, &model.NoMatchError{Names: names}
	}

	totals := make([]float64, len(subset))
	ppgs := make([]float64, len(subset))
	teams := make(map[int]bool, len(subset))
	picked := make([]string, len(subset))
	for i, r := range subset {
		totals[i] = model.Finite(r.TotalPoints)
		ppgs[i] = r.PointsPerGame
		teams[r.TeamID] = true
		picked[i] = r.Name
	}

	total := floats.Sum(totals)
	meanPPG := model.Finite(stat.Mean(ppgs, nil))
	meanFD := meanFixtureDifficulty(teams, fixtures, d)

	return model.Rating{
		Rating:                model.Finite(total/pointsDivisor + meanPPG*ppgWeight - meanFD*difficultyWeight),
		TotalPoints:           total,
		MeanPointsPerGame:     meanPPG,
		MeanFixtureDifficulty: meanFD,
		Players:               picked,
		Unmatched:             unmatched,
		Weaknesses:            Weaknesses(subset, meanFD, d.Fallback()),
	}, nil
}

func normalise(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// match returns rows named in names (in row order) and the names that matched nothing.
func match(rows []model.ScoredRow, names []string) ([]model.ScoredRow, []string) {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		if k := normalise(n); k != "" {
			wanted[k] = true
		}
	}
	hit := make(map[string]bool, len(wanted))
	var subset []model.ScoredRow
	for _, r := range rows {
		k := normalise(r.Name)
		if wanted[k] {
			subset = append(subset, r)
			hit[k] = true
		}
	}
	var unmatched []string
	for _, n := range names {
		if k := normalise(n); k != "" && !hit[k] {
			unmatched = append(unmatched, strings.TrimSpace(n))
		}
	}
	return subset, unmatched
}

func meanFixtureDifficulty(teams map[int]bool, fixtures []model.FixtureRecord, d *difficulty.Model) float64 {
	var values []float64
	for _, f := range fixtures {
		if f.Finished {
			continue
		}
		if teams[f.HomeTeamID] {
			values = append(values, d.StrengthOf(f.AwayTeamID))
		}
		if teams[f.AwayTeamID] {
			values = append(values, d.StrengthOf(f.HomeTeamID))
		}
	}
	if len(values) == 0 {
		return 0
	}
	return model.Finite(stat.Mean(values, nil))
}

// Weaknesses lists human-readable problems with a squad. Fixtures are flagged
// as difficult when meanFD exceeds threshold.
func Weaknesses(squad []model.ScoredRow, meanFD, threshold float64) []string {
	out := []string{}
	have := make(map[model.Position]bool)
	for _, r := range squad {
		have[r.Position] = true
	}
	for _, pos := range model.Positions {
		if !have[pos] {
			out = append(out, fmt.Sprintf("no %s selected", pos))
		}
	}
	for _, r := range squad {
		if r.Minutes <= 0 {
			out = append(out, fmt.Sprintf("%s has not played any minutes", r.Name))
		}
		if !r.Available() {
			out = append(out, fmt.Sprintf("%s is flagged unavailable (status %q)", r.Name, r.Status))
		}
	}
	if meanFD > threshold {
		out = append(out, fmt.Sprintf("difficult upcoming fixtures (%.2f)", meanFD))
	}
	return out
}
