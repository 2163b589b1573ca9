package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/okian/fplcoach/internal/domain/model"
)

// FileSource reads CSV or JSON tables from a directory. For each table it
// looks for <name>.csv, then <name>.json.
type FileSource struct {
	dir string
}

// NewFileSource creates a source over dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Name implements Source.
func (s *FileSource) Name() string { return "file" }

// Load implements Source.
func (s *FileSource) Load(ctx context.Context) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	players, err := s.readTable(TablePlayers)
	if err != nil {
		return nil, err
	}
	if players == nil {
		return nil, fmt.Errorf("%w: %s in %s", ErrMissingTable, TablePlayers, s.dir)
	}
	snap := &model.Snapshot{Source: s.Name(), Players: players}
	if snap.Fixtures, err = s.readTable(TableFixtures); err != nil {
		return nil, err
	}
	if snap.Predictions, err = s.readTable(TablePredictions); err != nil {
		return nil, err
	}
	teams, err := s.readTable(TableTeams)
	if err != nil {
		return nil, err
	}
	snap.Teams = teamsFromTable(teams)
	return snap, nil
}

// readTable returns nil, nil when no file exists for name.
func (s *FileSource) readTable(name string) (*model.Table, error) {
	for _, ext := range []string{".csv", ".json"} {
		path := filepath.Join(s.dir, name+ext)
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		var t *model.Table
		if ext == ".csv" {
			t, err = DecodeCSV(name, f)
		} else {
			t, err = DecodeJSON(name, f)
		}
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return t, nil
	}
	return nil, nil
}
