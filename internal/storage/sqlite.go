// Package storage provides SQLite-based persistence for training runs
// and play results.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Run is one training run on a map.
type Run struct {
	ID          string
	MapID       string
	StartedAt   time.Time
	FinishedAt  time.Time // Zero while the run is in progress
	Generations int
	BestFitness float64
	Solved      bool
	ReplayPath  string
}

// Finished reports whether the run has ended.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// GenerationStat is the summary of one evaluated generation.
type GenerationStat struct {
	ID          int64
	RunID       string
	Generation  int
	BestFitness float64
	MeanFitness float64
	BestGenome  int
	PopSize     int
	Species     int
	CreatedAt   time.Time
}

// Play is the outcome of one manual or showcase playthrough.
type Play struct {
	ID        int64
	MapID     string
	Mode      string // "manual" or "showcase"
	Won       bool
	Turns     int
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db, now: time.Now}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			map_id TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL DEFAULT 0,
			generations INTEGER NOT NULL DEFAULT 0,
			best_fitness REAL NOT NULL DEFAULT 0,
			solved INTEGER NOT NULL DEFAULT 0,
			replay_path TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);

		CREATE TABLE IF NOT EXISTS generations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			generation INTEGER NOT NULL,
			best_fitness REAL NOT NULL,
			mean_fitness REAL NOT NULL,
			best_genome INTEGER NOT NULL,
			pop_size INTEGER NOT NULL,
			species INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_generations_run ON generations(run_id, generation);

		CREATE TABLE IF NOT EXISTS plays (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			map_id TEXT NOT NULL,
			mode TEXT NOT NULL,
			won INTEGER NOT NULL,
			turns INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_plays_map ON plays(map_id, won DESC, turns ASC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StartRun records a new training run and returns it with a fresh ID.
func (s *Store) StartRun(mapID string) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		MapID:     mapID,
		StartedAt: s.now(),
	}
	_, err := s.db.Exec(
		"INSERT INTO runs (id, map_id, started_at) VALUES (?, ?, ?)",
		run.ID, run.MapID, run.StartedAt.UnixMilli(),
	)
	if err != nil {
		return Run{}, fmt.Errorf("storage: cannot start run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final outcome of a run.
func (s *Store) FinishRun(id string, generations int, best float64, solved bool, replayPath string) error {
	res, err := s.db.Exec(
		`UPDATE runs
		 SET finished_at = ?, generations = ?, best_fitness = ?, solved = ?, replay_path = ?
		 WHERE id = ?`,
		s.now().UnixMilli(), generations, best, boolToInt(solved), replayPath, id,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage: run %s not found", id)
	}
	return nil
}

// SaveGeneration records the statistics of one generation and keeps the
// run's progress columns current.
func (s *Store) SaveGeneration(g GenerationStat) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO generations
		 (run_id, generation, best_fitness, mean_fitness, best_genome, pop_size, species, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.RunID, g.Generation, g.BestFitness, g.MeanFitness, g.BestGenome, g.PopSize, g.Species,
		s.now().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save generation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE runs
		 SET best_fitness = CASE WHEN generations = 0 THEN ? ELSE MAX(best_fitness, ?) END,
		     generations = MAX(generations, ?)
		 WHERE id = ?`,
		g.BestFitness, g.BestFitness, g.Generation+1, g.RunID,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot update run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit generation: %w", err)
	}
	return id, nil
}

// RunByID retrieves a run. Returns nil if it does not exist.
func (s *Store) RunByID(id string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, map_id, started_at, finished_at, generations, best_fitness, solved, replay_path
		 FROM runs WHERE id = ?`,
		id,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	return &run, nil
}

// RecentRuns retrieves the most recently started runs.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, map_id, started_at, finished_at, generations, best_fitness, solved, replay_path
		 FROM runs
		 ORDER BY started_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// Generations retrieves the generation history of a run in order.
func (s *Store) Generations(runID string) ([]GenerationStat, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, generation, best_fitness, mean_fitness, best_genome, pop_size, species, created_at
		 FROM generations
		 WHERE run_id = ?
		 ORDER BY generation ASC, id ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query generations: %w", err)
	}
	defer rows.Close()

	var stats []GenerationStat
	for rows.Next() {
		var g GenerationStat
		var createdAt int64
		if err := rows.Scan(&g.ID, &g.RunID, &g.Generation, &g.BestFitness, &g.MeanFitness,
			&g.BestGenome, &g.PopSize, &g.Species, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		g.CreatedAt = time.UnixMilli(createdAt)
		stats = append(stats, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// DeleteRun removes a run and its generation history.
func (s *Store) DeleteRun(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM generations WHERE run_id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete generations: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM runs WHERE id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete run: %w", err)
	}
	return tx.Commit()
}

// SavePlay records a playthrough.
// Returns the ID of the inserted record.
func (s *Store) SavePlay(p Play) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO plays (map_id, mode, won, turns, created_at) VALUES (?, ?, ?, ?, ?)",
		p.MapID, p.Mode, boolToInt(p.Won), p.Turns, s.now().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save play: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// BestPlays retrieves the best plays on a map: wins first, then fewest turns.
func (s *Store) BestPlays(mapID string, limit int) ([]Play, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, map_id, mode, won, turns, created_at
		 FROM plays
		 WHERE map_id = ?
		 ORDER BY won DESC, turns ASC, id ASC
		 LIMIT ?`,
		mapID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query plays: %w", err)
	}
	defer rows.Close()

	var plays []Play
	for rows.Next() {
		var p Play
		var won int
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.MapID, &p.Mode, &won, &p.Turns, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		p.Won = won != 0
		p.CreatedAt = time.UnixMilli(createdAt)
		plays = append(plays, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return plays, nil
}

// BestTurns returns the fewest turns of a winning play on a map.
// Returns 0 if the map was never won.
func (s *Store) BestTurns(mapID string) (int, error) {
	var turns sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MIN(turns) FROM plays WHERE map_id = ? AND won = 1",
		mapID,
	).Scan(&turns)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query best turns: %w", err)
	}

	if !turns.Valid {
		return 0, nil
	}

	return int(turns.Int64), nil
}

// ClearPlays deletes all plays for the given map.
func (s *Store) ClearPlays(mapID string) error {
	_, err := s.db.Exec("DELETE FROM plays WHERE map_id = ?", mapID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear plays: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run               Run
		started, finished int64
		solved            int
	)
	if err := row.Scan(&run.ID, &run.MapID, &started, &finished, &run.Generations,
		&run.BestFitness, &solved, &run.ReplayPath); err != nil {
		return Run{}, err
	}
	run.StartedAt = time.UnixMilli(started)
	if finished != 0 {
		run.FinishedAt = time.UnixMilli(finished)
	}
	run.Solved = solved != 0
	return run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
