package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists census records and run summaries to a SQLite file.
type SQLiteStore struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteStore creates a store backed by the SQLite file at path.
// Init must be called before any writes.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init opens the database and creates the schema.
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// AppendCensus writes one tick's census rows in a single transaction.
func (s *SQLiteStore) AppendCensus(ctx context.Context, runID string, rows []CensusRow) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin census append: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO census (run_id, tick, creature_id, speed, size, sight, children, has_mate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare census append: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx,
			runID, row.Tick, row.CreatureID,
			row.Speed, row.Size, row.Sight,
			row.Children, row.HasMate,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append census row: %w", err)
		}
	}

	return tx.Commit()
}

// SaveRunSummary upserts the summary record for a run.
func (s *SQLiteStore) SaveRunSummary(ctx context.Context, summary RunSummary) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, seed, ticks, population)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ticks = excluded.ticks,
			population = excluded.population
	`, summary.RunID, summary.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
		summary.Seed, summary.Ticks, summary.Population)
	return err
}

// CensusRows reads back all census rows for a run in (tick, creature_id)
// order, mainly for offline analysis and tests.
func (s *SQLiteStore) CensusRows(ctx context.Context, runID string) ([]CensusRow, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT tick, creature_id, speed, size, sight, children, has_mate
		FROM census WHERE run_id = ?
		ORDER BY tick, creature_id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CensusRow
	for rows.Next() {
		var r CensusRow
		if err := rows.Scan(&r.Tick, &r.CreatureID, &r.Speed, &r.Size, &r.Sight, &r.Children, &r.HasMate); err != nil {
			return nil, fmt.Errorf("scan census row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, errors.New("sqlite store not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			seed INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			population INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS census (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			creature_id INTEGER NOT NULL,
			speed REAL NOT NULL,
			size REAL NOT NULL,
			sight REAL NOT NULL,
			children INTEGER NOT NULL,
			has_mate INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_census_run_tick ON census (run_id, tick);
	`)
	return err
}
