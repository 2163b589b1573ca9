// Package repository loads input snapshots and publishes the current one.
package repository

import (
	"context"

	"github.com/okian/fplcoach/internal/domain/model"
)

// Table names shared by every source.
const (
	TablePlayers     = "players"
	TableFixtures    = "fixtures"
	TablePredictions = "predictions"
	TableTeams       = "teams"
)

// Source produces a fresh snapshot of the input tables.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string
	// Load reads every table. The players table is mandatory.
	Load(ctx context.Context) (*model.Snapshot, error)
}

// Publisher receives every snapshot accepted by a Holder.
type Publisher interface {
	Publish(ctx context.Context, snap *model.Snapshot) error
}

// Reader exposes the current snapshot.
type Reader interface {
	// Current returns the latest snapshot or ErrNotReady.
	Current(ctx context.Context) (*model.Snapshot, error)
}

// teamsFromTable decodes a teams table; nil yields no teams.
func teamsFromTable(t *model.Table) []model.TeamRef {
	if t == nil {
		return nil
	}
	out := make([]model.TeamRef, 0, len(t.Rows))
	for _, r := range t.Rows {
		id, ok := r.Int(model.ColID)
		if !ok {
			continue
		}
		out = append(out, model.TeamRef{
			ID:        id,
			Name:      r.String(model.ColName),
			ShortName: r.String("short_name"),
		})
	}
	return out
}
