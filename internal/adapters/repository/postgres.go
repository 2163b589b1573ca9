package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/lib/pq"
	"github.com/okian/fplcoach/internal/domain/model"
)

// PostgresSource reads the input tables from a postgres schema. Each table is
// read in full, ordered by its first column.
type PostgresSource struct {
	db     *sql.DB
	schema string
}

// OpenPostgres opens and pings a connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// NewPostgresSource creates a source reading from schema ("public" when empty).
func NewPostgresSource(db *sql.DB, schema string) *PostgresSource {
	if schema == "" {
		schema = "public"
	}
	return &PostgresSource{db: db, schema: schema}
}

// Name implements Source.
func (s *PostgresSource) Name() string { return "postgres" }

// Load implements Source. Fixtures, predictions and teams are optional.
func (s *PostgresSource) Load(ctx context.Context) (*model.Snapshot, error) {
	players, err := s.readTable(ctx, TablePlayers, true)
	if err != nil {
		return nil, err
	}
	snap := &model.Snapshot{Source: s.Name(), Players: players}
	if snap.Fixtures, err = s.readTable(ctx, TableFixtures, false); err != nil {
		return nil, err
	}
	if snap.Predictions, err = s.readTable(ctx, TablePredictions, false); err != nil {
		return nil, err
	}
	teams, err := s.readTable(ctx, TableTeams, false)
	if err != nil {
		return nil, err
	}
	snap.Teams = teamsFromTable(teams)
	return snap, nil
}

func (s *PostgresSource) exists(ctx context.Context, name string) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2)`,
		s.schema, name).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("lookup table %s: %w", name, err)
	}
	return ok, nil
}

func (s *PostgresSource) readTable(ctx context.Context, name string, required bool) (*model.Table, error) {
	ok, err := s.exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		if required {
			return nil, fmt.Errorf("%w: %s.%s", ErrMissingTable, s.schema, name)
		}
		return nil, nil
	}

	query := fmt.Sprintf("SELECT * FROM %s.%s ORDER BY 1", pq.QuoteIdentifier(s.schema), pq.QuoteIdentifier(name))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns %s: %w", name, err)
	}
	t := model.NewTable(name, cols...)
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		row := make(model.Row, len(cols))
		for i, c := range cols {
			row[c] = sqlValue(vals[i])
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", name, err)
	}
	applyAliases(t)
	return t, nil
}

// sqlValue converts driver values to row values.
func sqlValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case int64:
		return float64(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return x
	case bool:
		return x
	case []byte:
		return parseCell(string(x))
	case string:
		return parseCell(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
