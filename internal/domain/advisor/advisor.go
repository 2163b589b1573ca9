// Package advisor exposes the recommendation operations over a snapshot.
//
// Every call derives its result from the snapshot it is given; nothing is
// cached between calls, so one Advisor may serve concurrent callers.
package advisor

import (
	"maps"
	"slices"
	"strings"

	"github.com/okian/fplcoach/internal/domain/join"
	"github.com/okian/fplcoach/internal/domain/model"
	"github.com/okian/fplcoach/internal/domain/rating"
	"github.com/okian/fplcoach/internal/domain/scoring"
	"github.com/okian/fplcoach/internal/domain/selection"
)

// Advisor recommends captains, transfers and lineups and rates squads.
type Advisor struct {
	engine    *scoring.Engine
	formation model.Formation
}

// New creates an Advisor with the default engine and formation.
func New(opts ...Option) *Advisor {
	a := &Advisor{
		engine:    scoring.NewEngine(),
		formation: model.DefaultFormation(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Formation returns a copy of the default lineup formation.
func (a *Advisor) Formation() model.Formation {
	return maps.Clone(a.formation)
}

// Score joins and scores every player in snap, in table order.
//
// With a fixtures table, players are matched by team to their next unfinished
// fixture. Without one, the opponent is read from a team_a column carried by the
// players or merged in from predictions.
func (a *Advisor) Score(snap *model.Snapshot) ([]model.ScoredRow, []model.FixtureRecord, error) {
	if snap == nil || snap.Players == nil {
		return nil, nil, ErrNoSnapshot
	}
	players, err := join.MergePredictions(snap.Players, snap.Predictions)
	if err != nil {
		return nil, nil, err
	}
	fixtures, err := model.FixturesFromTable(snap.Fixtures)
	if err != nil {
		return nil, nil, err
	}

	var enriched []model.EnrichedRow
	if snap.Fixtures != nil {
		opponents, err := model.OpponentTable(snap.Fixtures)
		if err != nil {
			return nil, nil, err
		}
		enriched, err = join.Join(players, opponents, join.ByTeam, a.engine.Difficulty())
		if err != nil {
			return nil, nil, err
		}
	} else {
		enriched, err = join.Join(players, players, join.ByName, a.engine.Difficulty())
		if err != nil {
			return nil, nil, err
		}
	}
	for i := range enriched {
		if id := enriched[i].OpponentTeamID; id != nil {
			enriched[i].OpponentName = snap.TeamName(*id)
		}
	}
	return a.engine.Score(enriched, fixtures), fixtures, nil
}

// SelectCaptain returns the player with the highest captain score.
func (a *Advisor) SelectCaptain(snap *model.Snapshot) (model.ScoredRow, error) {
	rows, _, err := a.Score(snap)
	if err != nil {
		return model.ScoredRow{}, err
	}
	return selection.Captain(rows)
}

// RecommendTransfers returns up to five players by fixture-adjusted score.
func (a *Advisor) RecommendTransfers(snap *model.Snapshot) ([]model.ScoredRow, error) {
	rows, _, err := a.Score(snap)
	if err != nil {
		return nil, err
	}
	return selection.Transfers(rows), nil
}

// BuildLineup fills formation (the default when nil) by points per game.
func (a *Advisor) BuildLineup(snap *model.Snapshot, formation model.Formation) ([]model.LineupEntry, error) {
	if formation == nil {
		formation = a.formation
	}
	if err := formation.Validate(); err != nil {
		return nil, err
	}
	rows, _, err := a.Score(snap)
	if err != nil {
		return nil, err
	}
	return selection.Lineup(rows, formation)
}

// RateTeam rates the squad named by names.
func (a *Advisor) RateTeam(snap *model.Snapshot, names []string) (model.Rating, error) {
	rows, fixtures, err := a.Score(snap)
	if err != nil {
		return model.Rating{}, err
	}
	return rating.Rate(rows, names, model.UpcomingFixtures(fixtures), a.engine.Difficulty())
}

// Filter narrows Players. Zero values match everything.
type Filter struct {
	Position model.Position
	TeamID   int
	Name     string
	Limit    int
}

func (f Filter) match(r model.ScoredRow) bool {
	if f.Position != "" && r.Position != f.Position {
		return false
	}
	if f.TeamID != 0 && r.TeamID != f.TeamID {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(strings.TrimSpace(f.Name))) {
		return false
	}
	return true
}

// Players lists scored players matching filter, by total points descending.
func (a *Advisor) Players(snap *model.Snapshot, filter Filter) ([]model.ScoredRow, error) {
	rows, _, err := a.Score(snap)
	if err != nil {
		return nil, err
	}
	out := make([]model.ScoredRow, 0, len(rows))
	for _, r := range rows {
		if filter.match(r) {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(x, y model.ScoredRow) int {
		switch {
		case x.TotalPoints > y.TotalPoints:
			return -1
		case x.TotalPoints < y.TotalPoints:
			return 1
		}
		return 0
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Player returns the first player whose name matches, ignoring case.
func (a *Advisor) Player(snap *model.Snapshot, name string) (model.ScoredRow, error) {
	rows, _, err := a.Score(snap)
	if err != nil {
		return model.ScoredRow{}, err
	}
	return find(rows, name)
}

func find(rows []model.ScoredRow, name string) (model.ScoredRow, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, r := range rows {
		if want != "" && strings.ToLower(r.Name) == want {
			return r, nil
		}
	}
	return model.ScoredRow{}, &model.NoMatchError{Names: []string{name}}
}

// Comparison holds two players side by side.
type Comparison struct {
	Player1 model.ScoredRow `json:"player1"`
	Player2 model.ScoredRow `json:"player2"`
}

// Compare looks up two players. Names that match nothing are reported together.
func (a *Advisor) Compare(snap *model.Snapshot, first, second string) (Comparison, error) {
	rows, _, err := a.Score(snap)
	if err != nil {
		return Comparison{}, err
	}
	p1, err1 := find(rows, first)
	p2, err2 := find(rows, second)
	var missing []string
	if err1 != nil {
		missing = append(missing, first)
	}
	if err2 != nil {
		missing = append(missing, second)
	}
	if len(missing) > 0 {
		return Comparison{}, &model.NoMatchError{Names: missing}
	}
	return Comparison{Player1: p1, Player2: p2}, nil
}

// Injuries lists players whose status is neither available nor unavailable,
// i.e. injured, doubtful or suspended.
func (a *Advisor) Injuries(snap *model.Snapshot) ([]model.PlayerRecord, error) {
	if snap == nil || snap.Players == nil {
		return nil, ErrNoSnapshot
	}
	players, err := model.PlayersFromTable(snap.Players)
	if err != nil {
		return nil, err
	}
	if err := snap.Players.Require(model.ColStatus); err != nil {
		return nil, err
	}
	out := []model.PlayerRecord{}
	for _, p := range players {
		if p.Status != "a" && p.Status != "u" {
			out = append(out, p)
		}
	}
	return out, nil
}

// CaptainTrace shows the raw rows behind a captain computation for one name.
type CaptainTrace struct {
	Name        string            `json:"name"`
	Players     []model.Row       `json:"players"`
	Predictions []model.Row       `json:"predictions"`
	Scored      []model.ScoredRow `json:"scored"`
}

// DebugCaptain returns every players and predictions row for name along with
// the scored rows the captain selection sees.
func (a *Advisor) DebugCaptain(snap *model.Snapshot, name string) (CaptainTrace, error) {
	rows, _, err := a.Score(snap)
	if err != nil {
		return CaptainTrace{}, err
	}
	want := strings.ToLower(strings.TrimSpace(name))
	trace := CaptainTrace{Name: name, Players: []model.Row{}, Predictions: []model.Row{}, Scored: []model.ScoredRow{}}
	pick := func(t *model.Table) []model.Row {
		out := []model.Row{}
		if t == nil {
			return out
		}
		for _, r := range t.Rows {
			if strings.ToLower(r.String(model.ColName)) == want {
				out = append(out, r)
			}
		}
		return out
	}
	trace.Players = pick(snap.Players)
	trace.Predictions = pick(snap.Predictions)
	for _, r := range rows {
		if strings.ToLower(r.Name) == want {
			trace.Scored = append(trace.Scored, r)
		}
	}
	return trace, nil
}
