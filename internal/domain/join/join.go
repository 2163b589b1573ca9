// Package join merges player rows with opponent records.
package join

import (
	"maps"

	"github.com/okian/fplcoach/internal/domain/model"
)

// StrengthResolver resolves an opponent to its defensive strength.
// A nil team must resolve to the fallback strength.
type StrengthResolver interface {
	Strength(team *int) float64
}

// Spec describes how a primary table is matched against a secondary one.
type Spec struct {
	PrimaryKey     string
	SecondaryKey   string
	OpponentColumn string
}

// Predefined join specs.
var (
	// ByName matches player names against a name-keyed table carrying team_a.
	ByName = Spec{PrimaryKey: model.ColName, SecondaryKey: model.ColName, OpponentColumn: model.ColAwayTeam}
	// ByTeam matches player teams against model.OpponentTable output.
	ByTeam = Spec{PrimaryKey: model.ColTeamID, SecondaryKey: model.ColTeamID, OpponentColumn: model.ColOpponentID}
)

// Join produces one EnrichedRow per primary row, in primary order. Unmatched
// rows keep a nil opponent. When several secondary rows share a key the first
// one wins. A key column absent from either table is a *model.SchemaError.
func Join(primary, secondary *model.Table, spec Spec, r StrengthResolver) ([]model.EnrichedRow, error) {
	if err := primary.Require(spec.PrimaryKey); err != nil {
		return nil, err
	}
	if err := secondary.Require(spec.SecondaryKey); err != nil {
		return nil, err
	}

	index := firstByKey(secondary, spec.SecondaryKey)
	out := make([]model.EnrichedRow, 0, len(primary.Rows))
	for _, row := range primary.Rows {
		er := model.EnrichedRow{PlayerRecord: model.PlayerFromRow(row)}
		if k, ok := model.CanonicalKey(row[spec.PrimaryKey]); ok {
			if match, found := index[k]; found {
				if opp, ok := match.Int(spec.OpponentColumn); ok {
					er.OpponentTeamID = &opp
				}
			}
		}
		er.DefenseStrength = r.Strength(er.OpponentTeamID)
		out = append(out, er)
	}
	return out, nil
}

func firstByKey(t *model.Table, key string) map[string]model.Row {
	index := make(map[string]model.Row, len(t.Rows))
	for _, row := range t.Rows {
		k, ok := model.CanonicalKey(row[key])
		if !ok {
			continue
		}
		if _, seen := index[k]; !seen {
			index[k] = row
		}
	}
	return index
}

// mergedColumns are copied from predictions into player rows.
var mergedColumns = []string{model.ColPredictedPoints, model.ColAwayTeam}

// MergePredictions left-joins predictions onto players by name and returns a new
// table. Predicted points and team_a from the first matching prediction replace
// the player's own values; players without a prediction are kept unchanged.
// A nil predictions table returns players as is.
func MergePredictions(players, predictions *model.Table) (*model.Table, error) {
	if err := players.Require(model.ColName); err != nil {
		return nil, err
	}
	if predictions == nil {
		return players, nil
	}
	if err := predictions.Require(model.ColName); err != nil {
		return nil, err
	}

	index := firstByKey(predictions, model.ColName)
	out := model.NewTable(players.Name, players.Columns...)
	for _, col := range mergedColumns {
		if predictions.Has(col) && !out.Has(col) {
			out.Columns = append(out.Columns, col)
		}
	}
	out.Rows = make([]model.Row, 0, len(players.Rows))
	for _, row := range players.Rows {
		merged := maps.Clone(row)
		if k, ok := model.CanonicalKey(row[model.ColName]); ok {
			if p, found := index[k]; found {
				for _, col := range mergedColumns {
					if v, present := p[col]; present && predictions.Has(col) {
						merged[col] = v
					}
				}
			}
		}
		out.Rows = append(out.Rows, merged)
	}
	return out, nil
}
