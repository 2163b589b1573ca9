// Package selection ranks scored rows and fills positional quotas.
// Every mode is deterministic: ties are broken by input order.
package selection

import (
	"slices"

	"github.com/okian/fplcoach/internal/domain/model"
)

// TransferCount is the number of transfer targets recommended.
const TransferCount = 5

// Key extracts the ranking value of a row.
type Key func(model.ScoredRow) float64

// Ranking keys.
var (
	ByCaptainScore  Key = func(r model.ScoredRow) float64 { return r.CaptainScore }
	ByAdjustedScore Key = func(r model.ScoredRow) float64 { return r.AdjustedScore }
	ByPointsPerGame Key = func(r model.ScoredRow) float64 { return r.PointsPerGame }
)

// Captain returns the row with the highest captain score; the first wins ties.
func Captain(rows []model.ScoredRow) (model.ScoredRow, error) {
	if len(rows) == 0 {
		return model.ScoredRow{}, model.ErrEmptySet
	}
	best := 0
	for i := 1; i < len(rows); i++ {
		if rows[i].CaptainScore > rows[best].CaptainScore {
			best = i
		}
	}
	return rows[best], nil
}

// TopN returns up to n rows ordered descending by key. Fewer rows than n
// returns them all. The input slice is not modified.
func TopN(rows []model.ScoredRow, n int, key Key) []model.ScoredRow {
	if n <= 0 {
		return []model.ScoredRow{}
	}
	out := sortedDesc(rows, key)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Transfers returns the top TransferCount rows by adjusted score.
func Transfers(rows []model.ScoredRow) []model.ScoredRow {
	return TopN(rows, TransferCount, ByAdjustedScore)
}

// Lineup fills each position's quota with its best rows by points per game,
// then orders the combined selection by points per game. The first entry is
// flagged captain and the second vice-captain. Positions short of eligible
// rows are filled partially.
func Lineup(rows []model.ScoredRow, formation model.Formation) ([]model.LineupEntry, error) {
	if err := formation.Validate(); err != nil {
		return nil, err
	}

	var picked []model.ScoredRow
	for _, pos := range model.Positions {
		quota := formation[pos]
		if quota == 0 {
			continue
		}
		var eligible []model.ScoredRow
		for _, r := range rows {
			if r.Position == pos {
				eligible = append(eligible, r)
			}
		}
		picked = append(picked, TopN(eligible, quota, ByPointsPerGame)...)
	}

	ordered := sortedDesc(picked, ByPointsPerGame)
	out := make([]model.LineupEntry, len(ordered))
	for i, r := range ordered {
		out[i] = model.LineupEntry{ScoredRow: r, Captain: i == 0, ViceCaptain: i == 1}
	}
	return out, nil
}

func sortedDesc(rows []model.ScoredRow, key Key) []model.ScoredRow {
	out := slices.Clone(rows)
	if out == nil {
		out = []model.ScoredRow{}
	}
	slices.SortStableFunc(out, func(a, b model.ScoredRow) int {
		ka, kb := key(a), key(b)
		switch {
		case ka > kb:
			return -1
		case ka < kb:
			return 1
		}
		return 0
	})
	return out
}
