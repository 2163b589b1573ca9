package fpl

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/okian/fplcoach/internal/domain/model"
)

// costDivisor converts now_cost (tenths of a million) to millions.
const costDivisor = 10

// elementTypes maps FPL element_type ids to positions.
var elementTypes = map[int]model.Position{1: model.GK, 2: model.DEF, 3: model.MID, 4: model.FWD}

// Source loads snapshots from the FPL API. Expected points for the next
// gameweek (ep_next) become predicted_points.
type Source struct {
	client *Client
}

// NewSource wraps client as a snapshot source.
func NewSource(client *Client) *Source {
	return &Source{client: client}
}

// Name implements repository.Source.
func (s *Source) Name() string { return "fpl" }

// Load implements repository.Source.
func (s *Source) Load(ctx context.Context) (*model.Snapshot, error) {
	boot, err := s.client.Bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	fixtures, err := s.client.Fixtures(ctx)
	if err != nil {
		return nil, fmt.Errorf("fixtures: %w", err)
	}
	return &model.Snapshot{
		Source:   s.Name(),
		Players:  PlayersTable(boot.Elements),
		Fixtures: FixturesTable(fixtures),
		Teams:    Teams(boot.Teams),
	}, nil
}

func numberOrNil(n json.Number) any {
	f, err := n.Float64()
	if err != nil {
		return nil
	}
	return f
}

// PlayersTable maps elements to a players table.
func PlayersTable(elements []Element) *model.Table {
	t := model.NewTable("players",
		model.ColID, model.ColName, model.ColTeamID, model.ColPosition, model.ColMinutes,
		model.ColTotalPoints, model.ColPredictedPoints, model.ColStatus,
		model.ColChanceOfPlaying, model.ColForm, model.ColCost)
	for _, e := range elements {
		var chance any
		if e.ChanceOfPlayingNextRound != nil {
			chance = *e.ChanceOfPlayingNextRound
		}
		var pos any
		if p, ok := elementTypes[e.ElementType]; ok {
			pos = string(p)
		}
		t.Rows = append(t.Rows, model.Row{
			model.ColID:              float64(e.ID),
			model.ColName:            e.WebName,
			model.ColTeamID:          float64(e.Team),
			model.ColPosition:        pos,
			model.ColMinutes:         e.Minutes,
			model.ColTotalPoints:     e.TotalPoints,
			model.ColPredictedPoints: numberOrNil(e.EPNext),
			model.ColStatus:          e.Status,
			model.ColChanceOfPlaying: chance,
			model.ColForm:            numberOrNil(e.Form),
			model.ColCost:            e.NowCost / costDivisor,
		})
	}
	return t
}

// FixturesTable maps fixtures to a fixtures table in API order.
func FixturesTable(fixtures []Fixture) *model.Table {
	t := model.NewTable("fixtures",
		model.ColID, model.ColHomeTeam, model.ColAwayTeam, model.ColEvent, model.ColFinished,
		model.ColHomeDifficulty, model.ColAwayDifficulty)
	for _, f := range fixtures {
		row := model.Row{
			model.ColID:             float64(f.ID),
			model.ColHomeTeam:       float64(f.TeamH),
			model.ColAwayTeam:       float64(f.TeamA),
			model.ColFinished:       f.Finished,
			model.ColEvent:          nil,
			model.ColHomeDifficulty: nil,
			model.ColAwayDifficulty: nil,
		}
		if f.Event != nil {
			row[model.ColEvent] = float64(*f.Event)
		}
		if f.TeamHDifficulty != nil {
			row[model.ColHomeDifficulty] = *f.TeamHDifficulty
		}
		if f.TeamADifficulty != nil {
			row[model.ColAwayDifficulty] = *f.TeamADifficulty
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Teams maps clubs to team refs.
func Teams(teams []Team) []model.TeamRef {
	out := make([]model.TeamRef, 0, len(teams))
	for _, t := range teams {
		out = append(out, model.TeamRef{ID: t.ID, Name: t.Name, ShortName: t.ShortName})
	}
	return out
}
