// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"strings"
)

// Position is a player's positional class.
type Position string

// Positional classes in lineup order.
const (
	GK  Position = "GK"
	DEF Position = "DEF"
	MID Position = "MID"
	FWD Position = "FWD"
)

// Positions lists every positional class in lineup order.
var Positions = []Position{GK, DEF, MID, FWD}

// ParsePosition accepts labels (GK, GKP, DEF, MID, FWD) and FPL element types (1-4).
func ParsePosition(s string) (Position, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GK", "GKP", "1":
		return GK, true
	case "DEF", "2":
		return DEF, true
	case "MID", "3":
		return MID, true
	case "FWD", "4":
		return FWD, true
	}
	return "", false
}

func (p Position) valid() bool {
	for _, known := range Positions {
		if p == known {
			return true
		}
	}
	return false
}

// FormationFromMap builds a Formation from position labels, e.g. from configuration.
func FormationFromMap(m map[string]int) (Formation, error) {
	f := make(Formation, len(m))
	for label, c := range m {
		pos, ok := ParsePosition(label)
		if !ok || c < 0 {
			return nil, &FormationError{Position: Position(label), Count: c}
		}
		f[pos] = c
	}
	return f, nil
}

// PlayerRecord is one row of the player statistics table.
type PlayerRecord struct {
	ID              int      `json:"id,omitempty"`
	Name            string   `json:"name"`
	TeamID          int      `json:"team_id"`
	Minutes         float64  `json:"minutes"`
	TotalPoints     float64  `json:"total_points"`
	PredictedPoints *float64 `json:"predicted_points"`
	Position        Position `json:"position,omitempty"`
	Status          string   `json:"status,omitempty"`
	ChanceOfPlaying *float64 `json:"chance_of_playing,omitempty"`
	Form            float64  `json:"form"`
	Cost            float64  `json:"cost,omitempty"`
}

// Predicted returns the predicted points, or 0 when none were supplied.
func (p PlayerRecord) Predicted() float64 {
	if p.PredictedPoints == nil {
		return 0
	}
	return Finite(*p.PredictedPoints)
}

// Available reports whether the FPL status marks the player as fit.
// An empty status is treated as available.
func (p PlayerRecord) Available() bool {
	return p.Status == "" || p.Status == "a"
}

// TeamRef names a team.
type TeamRef struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name,omitempty"`
}

// FixtureRecord is one row of the fixtures table.
type FixtureRecord struct {
	HomeTeamID     int      `json:"team_h"`
	AwayTeamID     int      `json:"team_a"`
	Event          *int     `json:"event,omitempty"`
	Finished       bool     `json:"finished,omitempty"`
	HomeDifficulty *float64 `json:"team_h_difficulty,omitempty"`
	AwayDifficulty *float64 `json:"team_a_difficulty,omitempty"`
}

// Involves reports whether team plays in the fixture and returns its opponent.
func (f FixtureRecord) Involves(team int) (opponent int, home bool, ok bool) {
	switch team {
	case f.HomeTeamID:
		return f.AwayTeamID, true, true
	case f.AwayTeamID:
		return f.HomeTeamID, false, true
	}
	return 0, false, false
}

// EnrichedRow is a player joined with its next opponent.
// OpponentTeamID is nil when no opponent is known; DefenseStrength is always resolved.
// OpponentName is set when the snapshot carries team names.
type EnrichedRow struct {
	PlayerRecord
	OpponentTeamID  *int    `json:"next_opponent"`
	OpponentName    string  `json:"next_opponent_name,omitempty"`
	DefenseStrength float64 `json:"opponent_defensive_strength"`
}

// ScoredRow carries the derived scores for a player.
type ScoredRow struct {
	EnrichedRow
	CaptainScore      float64 `json:"captain_score"`
	FixtureDifficulty float64 `json:"fixture_difficulty"`
	AdjustedScore     float64 `json:"adjusted_score"`
	PointsPerGame     float64 `json:"points_per_game"`
}

// Formation maps a positional class to the number of players required.
type Formation map[Position]int

// DefaultFormation is 1-3-4-3.
func DefaultFormation() Formation {
	return Formation{GK: 1, DEF: 3, MID: 4, FWD: 3}
}

// Size returns the target lineup size.
func (f Formation) Size() int {
	n := 0
	for _, c := range f {
		if c > 0 {
			n += c
		}
	}
	return n
}

// Validate rejects negative counts.
func (f Formation) Validate() error {
	for pos, c := range f {
		if c < 0 {
			return &FormationError{Position: pos, Count: c}
		}
		if !pos.valid() {
			return &FormationError{Position: pos, Count: c}
		}
	}
	return nil
}

// String renders the outfield shape, e.g. "3-4-3".
func (f Formation) String() string {
	return strconv.Itoa(f[DEF]) + "-" + strconv.Itoa(f[MID]) + "-" + strconv.Itoa(f[FWD])
}

// ParseFormation reads "3-4-3" (goalkeeper implied) or "1-3-4-3".
func ParseFormation(s string) (Formation, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 && len(parts) != 4 {
		return nil, &FormationError{Raw: s}
	}
	counts := make([]int, 0, len(Positions))
	if len(parts) == 3 {
		counts = append(counts, 1)
	}
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return nil, &FormationError{Raw: s}
		}
		counts = append(counts, n)
	}
	f := make(Formation, len(Positions))
	for i, pos := range Positions {
		f[pos] = counts[i]
	}
	return f, nil
}

// FormationError reports an invalid formation.
type FormationError struct {
	Raw      string
	Position Position
	Count    int
}

func (e *FormationError) Error() string {
	if e.Raw != "" {
		return "invalid formation " + strconv.Quote(e.Raw)
	}
	return "invalid formation entry " + strconv.Quote(string(e.Position)) + "=" + strconv.Itoa(e.Count)
}

// LineupEntry is one selected starter.
type LineupEntry struct {
	ScoredRow
	Captain     bool `json:"captain"`
	ViceCaptain bool `json:"vice_captain"`
}

// Rating is the aggregate evaluation of a named squad.
type Rating struct {
	Rating                float64  `json:"rating"`
	TotalPoints           float64  `json:"total_points"`
	MeanPointsPerGame     float64  `json:"mean_points_per_game"`
	MeanFixtureDifficulty float64  `json:"mean_fixture_difficulty"`
	Players               []string `json:"players"`
	Unmatched             []string `json:"unmatched,omitempty"`
	Weaknesses            []string `json:"weaknesses"`
}
