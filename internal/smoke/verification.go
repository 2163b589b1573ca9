package smoke

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/okian/fplcoach/internal/domain/model"
	"github.com/okian/fplcoach/pkg/logger"
)

// transferLimit is the most transfer targets the service may return.
const transferLimit = 5

type check struct {
	name string
	fn   func(*Snapshot, model.Formation) error
}

var checks = []check{
	{"captain is the top captain score", verifyCaptain},
	{"transfers are bounded and ordered", verifyTransfers},
	{"lineup meets positional quotas", verifyLineup},
	{"team rating covers the lineup", verifyRating},
}

// verifyResults runs every property check against snap and returns the
// failures joined together.
func verifyResults(ctx context.Context, config *Config, snap *Snapshot, stats *Stats) error {
	logger.Get().Info(ctx, "verifying results...")

	formation := model.DefaultFormation()
	if config.Formation != "" {
		f, err := model.ParseFormation(config.Formation)
		if err != nil {
			return err
		}
		formation = f
	}

	var errs []error
	for _, c := range checks {
		if err := c.fn(snap, formation); err != nil {
			stats.ChecksFailed++
			logger.Get().Error(ctx, "check failed", logger.String("check", c.name), logger.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		stats.ChecksPassed++
		if config.Verbose {
			logger.Get().Info(ctx, "check passed", logger.String("check", c.name))
		}
	}

	displayTopPerformers(ctx, snap, config.Verbose)
	return errors.Join(errs...)
}

func verifyCaptain(snap *Snapshot, _ model.Formation) error {
	if len(snap.Players) == 0 {
		return errors.New("no players returned")
	}
	best := snap.Players[0]
	for _, p := range snap.Players[1:] {
		if p.CaptainScore > best.CaptainScore {
			best = p
		}
	}
	if !approxEqual(snap.Captain.CaptainScore, best.CaptainScore) {
		return fmt.Errorf("captain %s scores %.3f but %s scores %.3f",
			snap.Captain.Captain, snap.Captain.CaptainScore, best.Name, best.CaptainScore)
	}
	return nil
}

func verifyTransfers(snap *Snapshot, _ model.Formation) error {
	want := min(transferLimit, len(snap.Players))
	if len(snap.Transfers) != want {
		return fmt.Errorf("got %d transfers, want %d", len(snap.Transfers), want)
	}
	for i := 1; i < len(snap.Transfers); i++ {
		if snap.Transfers[i].AdjustedScore > snap.Transfers[i-1].AdjustedScore {
			return fmt.Errorf("transfer %d outranks transfer %d", i, i-1)
		}
	}
	if len(snap.Transfers) == 0 {
		return nil
	}

	picked := make(map[string]bool, len(snap.Transfers))
	for _, t := range snap.Transfers {
		picked[t.Name] = true
	}
	floor := snap.Transfers[len(snap.Transfers)-1].AdjustedScore
	for _, p := range snap.Players {
		if !picked[p.Name] && p.AdjustedScore > floor+scoreTolerance {
			return fmt.Errorf("%s (%.3f) was left out above the cut-off %.3f", p.Name, p.AdjustedScore, floor)
		}
	}
	return nil
}

func verifyLineup(snap *Snapshot, formation model.Formation) error {
	available := make(map[model.Position]int)
	for _, p := range snap.Players {
		available[p.Position]++
	}
	got := make(map[model.Position]int)
	for _, e := range snap.Lineup.Lineup {
		got[e.Position]++
	}

	size := 0
	for _, pos := range model.Positions {
		want := min(formation[pos], available[pos])
		if got[pos] != want {
			return fmt.Errorf("%s: got %d players, want %d", pos, got[pos], want)
		}
		size += want
	}
	if len(snap.Lineup.Lineup) != size {
		return fmt.Errorf("lineup has %d players, want %d", len(snap.Lineup.Lineup), size)
	}

	for i, e := range snap.Lineup.Lineup {
		if e.Captain != (i == 0) || e.ViceCaptain != (i == 1) {
			return fmt.Errorf("armband flags misplaced at position %d", i)
		}
		if i > 0 && e.PointsPerGame > snap.Lineup.Lineup[i-1].PointsPerGame {
			return fmt.Errorf("lineup not ordered by points per game at position %d", i)
		}
	}
	return nil
}

func verifyRating(snap *Snapshot, _ model.Formation) error {
	if len(snap.Rating.Unmatched) > 0 {
		return fmt.Errorf("lineup players not recognised: %v", snap.Rating.Unmatched)
	}
	if len(snap.Rating.Players) != len(snap.Lineup.Lineup) {
		return fmt.Errorf("rating covers %d players, lineup has %d", len(snap.Rating.Players), len(snap.Lineup.Lineup))
	}
	if math.IsNaN(snap.Rating.Rating) || math.IsInf(snap.Rating.Rating, 0) {
		return errors.New("rating is not finite")
	}
	return nil
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= scoreTolerance
}

// displayTopPerformers logs the recommendations that were verified.
func displayTopPerformers(ctx context.Context, snap *Snapshot, verbose bool) {
	log := logger.Get()
	log.Info(ctx, "captain",
		logger.String("name", snap.Captain.Captain),
		logger.Float64("captainScore", snap.Captain.CaptainScore))
	for i, t := range snap.Transfers {
		log.Info(ctx, "transfer target",
			logger.Int("rank", i+1),
			logger.String("name", t.Name),
			logger.Float64("adjustedScore", t.AdjustedScore))
	}
	log.Info(ctx, "team rating",
		logger.String("formation", snap.Lineup.Formation),
		logger.Float64("rating", snap.Rating.Rating),
		logger.Any("weaknesses", snap.Rating.Weaknesses))

	if verbose {
		for _, e := range snap.Lineup.Lineup {
			log.Info(ctx, "starter",
				logger.String("name", e.Name),
				logger.String("position", string(e.Position)),
				logger.Float64("pointsPerGame", e.PointsPerGame))
		}
	}
}
