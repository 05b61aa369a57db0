// Package storage provides SQLite-based persistence for training runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrNotFound is returned when a run or champion does not exist.
var ErrNotFound = errors.New("storage: not found")

// Run statuses.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusSolved   = "solved"
	StatusStopped  = "stopped"
	StatusFailed   = "failed"
)

// Store manages the SQLite database connection for run persistence.
type Store struct {
	db *sql.DB
}

// Run is one training session.
type Run struct {
	ID          int64
	Seed        int64
	Population  int
	Generations int    // Requested generations
	Config      string // YAML of the configuration used
	Status      string
	BestFitness float64
	CreatedAt   time.Time
	FinishedAt  time.Time // Zero while running
}

// Generation is the persisted summary of one evaluated generation.
type Generation struct {
	RunID      int64
	Generation int
	Best       float64
	Mean       float64
	StdDev     float64
	Worst      float64
	BestGenome int
	Ticks      int
	Score      int
	Capped     bool
	Elapsed    time.Duration
}

// Champion is the best genome of a run.
type Champion struct {
	RunID      int64
	GenomeID   int
	Generation int
	Fitness    float64
	Genes      []float64
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

	store := &Store{db: db}

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
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			seed INTEGER NOT NULL,
			population INTEGER NOT NULL,
			generations INTEGER NOT NULL,
			config TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			best_fitness REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			finished_at DATETIME
		);

		CREATE TABLE IF NOT EXISTS generations (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			generation INTEGER NOT NULL,
			best REAL NOT NULL,
			mean REAL NOT NULL,
			stddev REAL NOT NULL,
			worst REAL NOT NULL,
			best_genome INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			score INTEGER NOT NULL,
			capped INTEGER NOT NULL DEFAULT 0,
			elapsed_ms INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, generation)
		);

		CREATE TABLE IF NOT EXISTS champions (
			run_id INTEGER PRIMARY KEY REFERENCES runs(id),
			genome_id INTEGER NOT NULL,
			generation INTEGER NOT NULL,
			fitness REAL NOT NULL,
			genes TEXT NOT NULL
		);
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

// CreateRun records a new run in the running state and returns its ID.
func (s *Store) CreateRun(r Run) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO runs (seed, population, generations, config, status) VALUES (?, ?, ?, ?, ?)",
		r.Seed, r.Population, r.Generations, r.Config, StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot create run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// FinishRun stores the final status and best fitness of a run.
func (s *Store) FinishRun(id int64, status string, bestFitness float64) error {
	result, err := s.db.Exec(
		"UPDATE runs SET status = ?, best_fitness = ?, finished_at = CURRENT_TIMESTAMP WHERE id = ?",
		status, bestFitness, id,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot finish run: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("storage: run %d: %w", id, ErrNotFound)
	}
	return nil
}

const runColumns = "id, seed, population, generations, config, status, best_fitness, created_at, finished_at"

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id int64) (Run, error) {
	row := s.db.QueryRow("SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("storage: run %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("storage: cannot query run: %w", err)
	}
	return r, nil
}

// ListRuns retrieves the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query("SELECT "+runColumns+" FROM runs ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var createdAt, finishedAt any
	if err := sc.Scan(&r.ID, &r.Seed, &r.Population, &r.Generations, &r.Config,
		&r.Status, &r.BestFitness, &createdAt, &finishedAt); err != nil {
		return Run{}, err
	}
	r.CreatedAt = parseTime(createdAt)
	r.FinishedAt = parseTime(finishedAt)
	return r, nil
}

// parseTime handles both time.Time and string datetime values.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// SaveGeneration records the statistics of one generation.
func (s *Store) SaveGeneration(g Generation) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO generations
		 (run_id, generation, best, mean, stddev, worst, best_genome, ticks, score, capped, elapsed_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.RunID, g.Generation, g.Best, g.Mean, g.StdDev, g.Worst, g.BestGenome,
		g.Ticks, g.Score, g.Capped, g.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save generation: %w", err)
	}
	return nil
}

// History retrieves every recorded generation of a run in order.
func (s *Store) History(runID int64) ([]Generation, error) {
	rows, err := s.db.Query(
		`SELECT run_id, generation, best, mean, stddev, worst, best_genome, ticks, score, capped, elapsed_ms
		 FROM generations
		 WHERE run_id = ?
		 ORDER BY generation`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query generations: %w", err)
	}
	defer rows.Close()

	var history []Generation
	for rows.Next() {
		var g Generation
		var elapsed int64
		if err := rows.Scan(&g.RunID, &g.Generation, &g.Best, &g.Mean, &g.StdDev, &g.Worst,
			&g.BestGenome, &g.Ticks, &g.Score, &g.Capped, &elapsed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		g.Elapsed = time.Duration(elapsed) * time.Millisecond
		history = append(history, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return history, nil
}

// SaveChampion stores the best genome of a run, replacing any earlier one.
func (s *Store) SaveChampion(c Champion) error {
	genes, err := json.Marshal(c.Genes)
	if err != nil {
		return fmt.Errorf("storage: cannot encode genes: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO champions (run_id, genome_id, generation, fitness, genes) VALUES (?, ?, ?, ?, ?)",
		c.RunID, c.GenomeID, c.Generation, c.Fitness, string(genes),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save champion: %w", err)
	}
	return nil
}

// LoadChampion retrieves the best genome of a run.
func (s *Store) LoadChampion(runID int64) (Champion, error) {
	c := Champion{RunID: runID}
	var genes string
	err := s.db.QueryRow(
		"SELECT genome_id, generation, fitness, genes FROM champions WHERE run_id = ?",
		runID,
	).Scan(&c.GenomeID, &c.Generation, &c.Fitness, &genes)

	if errors.Is(err, sql.ErrNoRows) {
		return Champion{}, fmt.Errorf("storage: champion of run %d: %w", runID, ErrNotFound)
	}
	if err != nil {
		return Champion{}, fmt.Errorf("storage: cannot query champion: %w", err)
	}

	if err := json.Unmarshal([]byte(genes), &c.Genes); err != nil {
		return Champion{}, fmt.Errorf("storage: cannot decode genes: %w", err)
	}
	return c, nil
}
