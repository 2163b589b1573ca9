package smoke

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/okian/fplcoach/internal/adapters/repository"
	"github.com/okian/fplcoach/internal/domain/model"
	"github.com/okian/fplcoach/pkg/logger"
)

// squadShape is the positional mix cycled through when generating a team.
var squadShape = []string{"GK", "DEF", "DEF", "DEF", "DEF", "MID", "MID", "MID", "MID", "FWD", "FWD"}

// statuses weights injury flags against fit players.
var statuses = []string{"a", "a", "a", "a", "a", "a", "a", "a", "d", "i"}

// GenerateDataset builds a synthetic dataset. The same config always yields
// the same tables.
func GenerateDataset(config *Config) (*Dataset, error) {
	if config.Players < 1 || config.Teams < 2 {
		return nil, fmt.Errorf("need at least 1 player and 2 teams, got %d and %d", config.Players, config.Teams)
	}
	rng := rand.New(rand.NewPCG(config.Seed, config.Seed^0x9e3779b97f4a7c15))

	players := model.NewTable(repository.TablePlayers,
		model.ColID, model.ColName, model.ColTeamID, model.ColPosition, model.ColMinutes,
		model.ColTotalPoints, model.ColStatus, model.ColForm, model.ColCost)
	predictions := model.NewTable(repository.TablePredictions, model.ColName, model.ColPredictedPoints)

	for i := 0; i < config.Players; i++ {
		team := i%config.Teams + 1
		pos := squadShape[(i/config.Teams)%len(squadShape)]
		name := fmt.Sprintf("Player %04d", i+1)

		minutes := float64(rng.IntN(34) * 90)
		ppg := math.Max(0, rng.NormFloat64()*1.5+3.5)
		total := 0.0
		if minutes > 0 {
			total = math.Round(ppg * minutes / 90)
		}

		players.Rows = append(players.Rows, model.Row{
			model.ColID:          float64(i + 1),
			model.ColName:        name,
			model.ColTeamID:      float64(team),
			model.ColPosition:    pos,
			model.ColMinutes:     minutes,
			model.ColTotalPoints: total,
			model.ColStatus:      statuses[rng.IntN(len(statuses))],
			model.ColForm:        round1(rng.Float64() * 8),
			model.ColCost:        float64(40 + rng.IntN(100)),
		})

		// Roughly a fifth of the players get no prediction.
		if rng.IntN(5) > 0 {
			predictions.Rows = append(predictions.Rows, model.Row{
				model.ColName:            name,
				model.ColPredictedPoints: round1(math.Max(0, ppg+rng.NormFloat64())),
			})
		}
	}

	return &Dataset{
		Players:     players,
		Fixtures:    generateFixtures(rng, config.Teams, config.Events),
		Predictions: predictions,
	}, nil
}

// generateFixtures pairs teams with the circle method so every team plays
// once per gameweek (one team rests when the count is odd).
func generateFixtures(rng *rand.Rand, teams, events int) *model.Table {
	fixtures := model.NewTable(repository.TableFixtures,
		model.ColHomeTeam, model.ColAwayTeam, model.ColEvent, model.ColFinished,
		model.ColHomeDifficulty, model.ColAwayDifficulty)

	ring := make([]int, 0, teams+1)
	for t := 1; t <= teams; t++ {
		ring = append(ring, t)
	}
	if len(ring)%2 == 1 {
		ring = append(ring, 0)
	}
	n := len(ring)

	// A finished gameweek precedes the upcoming ones.
	for ev := 0; ev <= events; ev++ {
		for i := 0; i < n/2; i++ {
			home, away := ring[i], ring[n-1-i]
			if home == 0 || away == 0 {
				continue
			}
			if ev%2 == 1 {
				home, away = away, home
			}
			fixtures.Rows = append(fixtures.Rows, model.Row{
				model.ColHomeTeam:       float64(home),
				model.ColAwayTeam:       float64(away),
				model.ColEvent:          float64(ev + 1),
				model.ColFinished:       ev == 0,
				model.ColHomeDifficulty: float64(2 + rng.IntN(4)),
				model.ColAwayDifficulty: float64(2 + rng.IntN(4)),
			})
		}
		// rotate all but the first slot
		last := ring[n-1]
		copy(ring[2:], ring[1:n-1])
		ring[1] = last
	}
	return fixtures
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// WriteDataset writes the dataset as CSV files readable by the file source.
func WriteDataset(ctx context.Context, dir string, ds *Dataset) error {
	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	for _, t := range []*model.Table{ds.Players, ds.Fixtures, ds.Predictions} {
		data, err := repository.EncodeCSV(t)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", t.Name, err)
		}
		path := filepath.Join(dir, t.Name+".csv")
		if err := os.WriteFile(path, data, dataFilePermission); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Get().Info(ctx, "table written",
			logger.String("path", path),
			logger.Int("rows", t.Len()))
	}
	return nil
}
