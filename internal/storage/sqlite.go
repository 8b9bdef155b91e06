// Package storage persists prediction runs in SQLite and writes the run
// output tables and quality-control reports.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/core"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/pkg/models"
)

// ErrRunNotFound flags a lookup for a run ID the store does not hold.
var ErrRunNotFound = errors.New("run not found")

const defaultListLimit = 50

// RunStore keeps the run history and per-pair predictions in a SQLite
// database. The pure Go driver needs no CGO, so the store works wherever
// the binary runs.
type RunStore struct {
	db *sql.DB
}

// OpenRunStore opens the run database, creating the file and its parent
// directory when missing, and applies the schema.
func OpenRunStore(path string) (*RunStore, error) {
	if path == "" {
		return nil, fmt.Errorf("open run store: path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("open run store: creating directory: %w", err)
		}
	}

	// The pragmas ride on the DSN so they apply to every pooled
	// connection.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open run store: ping: %w", err)
	}

	store := &RunStore{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open run store: migrate: %w", err)
	}
	return store, nil
}

// Close closes the database handle.
func (s *RunStore) Close() error {
	return s.db.Close()
}

func (s *RunStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL CHECK(status IN ('running', 'completed', 'failed')),
		model_name TEXT NOT NULL DEFAULT '',
		model_version TEXT NOT NULL DEFAULT '',
		virus_dir TEXT NOT NULL DEFAULT '',
		host_dir TEXT NOT NULL DEFAULT '',
		pairs INTEGER NOT NULL DEFAULT 0,
		positive INTEGER NOT NULL DEFAULT 0,
		output_path TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS run_predictions (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		virus TEXT NOT NULL,
		host TEXT NOT NULL,
		gc_difference REAL NOT NULL,
		k3_dist REAL NOT NULL,
		k6_dist REAL NOT NULL,
		homology_hit INTEGER NOT NULL,
		class INTEGER NOT NULL,
		score REAL NOT NULL,
		PRIMARY KEY (run_id, virus, host)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func toMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

// SaveRun upserts the run record and replaces its predictions in one
// transaction, so a rerecorded run never keeps stale rows.
func (s *RunStore) SaveRun(ctx context.Context, run models.Run, predictions []models.Prediction) error {
	if run.ID == "" {
		return fmt.Errorf("save run: ID is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (
		   id, status, model_name, model_version,
		   virus_dir, host_dir, pairs, positive,
		   output_path, error, started_at, finished_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status = excluded.status,
		   model_name = excluded.model_name,
		   model_version = excluded.model_version,
		   virus_dir = excluded.virus_dir,
		   host_dir = excluded.host_dir,
		   pairs = excluded.pairs,
		   positive = excluded.positive,
		   output_path = excluded.output_path,
		   error = excluded.error,
		   started_at = excluded.started_at,
		   finished_at = excluded.finished_at`,
		run.ID, string(run.Status), run.ModelName, run.ModelVersion,
		run.VirusDir, run.HostDir, run.Pairs, run.Positive,
		run.OutputPath, run.Error, toMillis(run.Started), toMillis(run.Finished),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_predictions WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("save run %s: clearing predictions: %w", run.ID, err)
	}
	for _, pred := range predictions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO run_predictions (
			   run_id, virus, host,
			   gc_difference, k3_dist, k6_dist, homology_hit,
			   class, score
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, pred.Virus, pred.Host,
			pred.GCDifference, pred.K3Dist, pred.K6Dist, pred.HomologyHit,
			pred.Class, pred.Score,
		)
		if err != nil {
			return fmt.Errorf("save run %s: prediction %s vs %s: %w", run.ID, pred.Virus, pred.Host, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun returns one run by ID, or ErrRunNotFound.
func (s *RunStore) GetRun(ctx context.Context, id string) (*models.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, model_name, model_version,
		        virus_dir, host_dir, pairs, positive,
		        output_path, error, started_at, finished_at
		   FROM runs
		  WHERE id = ?`,
		id,
	)
	run, err := scanRun(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
		}
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first. A non-positive
// limit selects a default page.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, model_name, model_version,
		        virus_dir, host_dir, pairs, positive,
		        output_path, error, started_at, finished_at
		   FROM runs
		  ORDER BY started_at DESC, id DESC
		  LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Predictions returns the stored predictions of one run, ordered by virus
// and host.
func (s *RunStore) Predictions(ctx context.Context, runID string) ([]models.Prediction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, virus, host,
		        gc_difference, k3_dist, k6_dist, homology_hit,
		        class, score
		   FROM run_predictions
		  WHERE run_id = ?
		  ORDER BY virus, host`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("predictions of %s: %w", runID, err)
	}
	defer rows.Close()

	var predictions []models.Prediction
	for rows.Next() {
		var pred models.Prediction
		if err := rows.Scan(
			&pred.RunID, &pred.Virus, &pred.Host,
			&pred.GCDifference, &pred.K3Dist, &pred.K6Dist, &pred.HomologyHit,
			&pred.Class, &pred.Score,
		); err != nil {
			return nil, fmt.Errorf("predictions of %s: %w", runID, err)
		}
		predictions = append(predictions, pred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("predictions of %s: %w", runID, err)
	}
	return predictions, nil
}

func scanRun(scan func(dest ...any) error) (models.Run, error) {
	var (
		run      models.Run
		status   string
		started  int64
		finished int64
	)
	err := scan(
		&run.ID, &status, &run.ModelName, &run.ModelVersion,
		&run.VirusDir, &run.HostDir, &run.Pairs, &run.Positive,
		&run.OutputPath, &run.Error, &started, &finished,
	)
	if err != nil {
		return models.Run{}, err
	}
	run.Status = models.RunStatus(status)
	run.Started = fromMillis(started)
	run.Finished = fromMillis(finished)
	return run, nil
}

var _ core.RunStore = (*RunStore)(nil)
