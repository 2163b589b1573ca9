package model

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Column names understood by the record decoders.
const (
	ColID              = "id"
	ColName            = "name"
	ColTeamID          = "team_id"
	ColMinutes         = "minutes"
	ColTotalPoints     = "total_points"
	ColPredictedPoints = "predicted_points"
	ColPosition        = "position"
	ColStatus          = "status"
	ColChanceOfPlaying = "chance_of_playing"
	ColForm            = "form"
	ColCost            = "now_cost"
	ColHomeTeam        = "team_h"
	ColAwayTeam        = "team_a"
	ColEvent           = "event"
	ColFinished        = "finished"
	ColHomeDifficulty  = "team_h_difficulty"
	ColAwayDifficulty  = "team_a_difficulty"
	ColOpponentID      = "opponent_id"
)

// Row is one record keyed by column name. Values are float64, string, bool or nil;
// other numeric kinds are accepted by the accessors.
type Row map[string]any

// Table is an ordered, named record set. Row order is significant.
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewTable creates an empty table with the given columns.
func NewTable(name string, columns ...string) *Table {
	return &Table{Name: name, Columns: append([]string(nil), columns...)}
}

// Append adds r, registering columns not seen before in sorted order.
func (t *Table) Append(r Row) {
	var fresh []string
	for col := range r {
		if !t.Has(col) {
			fresh = append(fresh, col)
		}
	}
	sort.Strings(fresh)
	t.Columns = append(t.Columns, fresh...)
	t.Rows = append(t.Rows, r)
}

// Len returns the number of rows; a nil table has none.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Has reports whether col is a declared column.
func (t *Table) Has(col string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Require returns a *SchemaError for the first missing column.
func (t *Table) Require(cols ...string) error {
	name := "<nil>"
	if t != nil {
		name = t.Name
	}
	for _, c := range cols {
		if !t.Has(c) {
			return &SchemaError{Table: name, Column: c}
		}
	}
	return nil
}

// Finite maps NaN and ±Inf to zero.
func Finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

// OptFloat returns the numeric value of col, or nil when absent or not numeric.
func (r Row) OptFloat(col string) *float64 {
	f, ok := toFloat(r[col])
	if !ok {
		return nil
	}
	return &f
}

// Float returns the numeric value of col normalised to a finite number (absent -> 0).
func (r Row) Float(col string) float64 {
	f, ok := toFloat(r[col])
	if !ok {
		return 0
	}
	return f
}

// Int returns col as an integer when it holds a whole number.
func (r Row) Int(col string) (int, bool) {
	f, ok := toFloat(r[col])
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// String returns col as text; numbers are rendered canonically.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		k, _ := CanonicalKey(v)
		return k
	}
}

// Bool returns col as a boolean ("true", "1", non-zero numbers).
func (r Row) Bool(col string) bool {
	switch v := r[col].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	default:
		f, ok := toFloat(v)
		return ok && f != 0
	}
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		p, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CanonicalKey renders a join key so that 1, 1.0 and "1" compare equal.
// Nil, empty and non-finite values are not keys.
func CanonicalKey(v any) (string, bool) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return "", false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'f', -1, 64), true
		}
		return s, true
	}
	if b, ok := v.(bool); ok {
		return strconv.FormatBool(b), true
	}
	f, ok := toFloat(v)
	if !ok {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

// PlayersFromTable decodes player records. Only the name column is mandatory;
// absent numeric fields decode as zero.
func PlayersFromTable(t *Table) ([]PlayerRecord, error) {
	if err := t.Require(ColName); err != nil {
		return nil, err
	}
	out := make([]PlayerRecord, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, PlayerFromRow(r))
	}
	return out, nil
}

// PlayerFromRow decodes a single row without schema checks.
func PlayerFromRow(r Row) PlayerRecord {
	p := PlayerRecord{
		Name:            r.String(ColName),
		Minutes:         r.Float(ColMinutes),
		TotalPoints:     r.Float(ColTotalPoints),
		PredictedPoints: r.OptFloat(ColPredictedPoints),
		Status:          r.String(ColStatus),
		ChanceOfPlaying: r.OptFloat(ColChanceOfPlaying),
		Form:            r.Float(ColForm),
		Cost:            r.Float(ColCost),
	}
	p.ID, _ = r.Int(ColID)
	p.TeamID, _ = r.Int(ColTeamID)
	if pos, ok := ParsePosition(r.String(ColPosition)); ok {
		p.Position = pos
	}
	return p
}

// FixturesFromTable decodes fixture records. A nil table decodes to no fixtures.
func FixturesFromTable(t *Table) ([]FixtureRecord, error) {
	if t == nil {
		return nil, nil
	}
	if err := t.Require(ColHomeTeam, ColAwayTeam); err != nil {
		return nil, err
	}
	out := make([]FixtureRecord, 0, len(t.Rows))
	for _, r := range t.Rows {
		home, okH := r.Int(ColHomeTeam)
		away, okA := r.Int(ColAwayTeam)
		if !okH || !okA {
			continue
		}
		f := FixtureRecord{
			HomeTeamID:     home,
			AwayTeamID:     away,
			Finished:       r.Bool(ColFinished),
			HomeDifficulty: r.OptFloat(ColHomeDifficulty),
			AwayDifficulty: r.OptFloat(ColAwayDifficulty),
		}
		if ev, ok := r.Int(ColEvent); ok {
			f.Event = &ev
		}
		out = append(out, f)
	}
	return out, nil
}

// UpcomingFixtures drops finished fixtures and orders the rest by event id.
// The sort is stable; fixtures without an event keep table order after the rest.
func UpcomingFixtures(fixtures []FixtureRecord) []FixtureRecord {
	out := make([]FixtureRecord, 0, len(fixtures))
	for _, f := range fixtures {
		if !f.Finished {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Event, out[j].Event
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
	return out
}

// OpponentTable derives a team-keyed opponents table from fixtures: two rows per
// upcoming fixture (home side first), so the first row for a team is its next match.
func OpponentTable(fixtures *Table) (*Table, error) {
	recs, err := FixturesFromTable(fixtures)
	if err != nil {
		return nil, err
	}
	out := NewTable("opponents", ColTeamID, ColOpponentID, ColEvent)
	for _, f := range UpcomingFixtures(recs) {
		var ev any
		if f.Event != nil {
			ev = float64(*f.Event)
		}
		out.Rows = append(out.Rows,
			Row{ColTeamID: float64(f.HomeTeamID), ColOpponentID: float64(f.AwayTeamID), ColEvent: ev},
			Row{ColTeamID: float64(f.AwayTeamID), ColOpponentID: float64(f.HomeTeamID), ColEvent: ev},
		)
	}
	return out, nil
}
