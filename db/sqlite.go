package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"moodfuel/ml"
)

// Store keeps the training log in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	database, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database failed: %w", err)
	}
	database.SetMaxOpenConns(1)

	query := `
    CREATE TABLE IF NOT EXISTS training_runs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL UNIQUE,
        selected_family TEXT NOT NULL,
        test_rmse REAL NOT NULL,
        test_mse REAL NOT NULL,
        data_points INTEGER NOT NULL,
        rejected INTEGER NOT NULL DEFAULT 0,
        train_rows INTEGER NOT NULL,
        test_rows INTEGER NOT NULL,
        dataset_path TEXT NOT NULL,
        model_path TEXT NOT NULL,
        duration_ms INTEGER NOT NULL,
        trained_at DATETIME NOT NULL
    );
    CREATE TABLE IF NOT EXISTS cv_scores (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL REFERENCES training_runs(run_id) ON DELETE CASCADE,
        family TEXT NOT NULL,
        mean_rmse REAL NOT NULL,
        std_rmse REAL NOT NULL,
        folds INTEGER NOT NULL,
        UNIQUE(run_id, family)
    );
    CREATE INDEX IF NOT EXISTS idx_training_runs_trained_at ON training_runs(trained_at);
    `
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, fmt.Errorf("create tables failed: %w", err)
	}
	return &Store{db: database}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun saves a training report and its cross-validation scores.
func (s *Store) RecordRun(ctx context.Context, report *ml.Report) error {
	if report == nil || report.RunID == "" {
		return errors.New("report with run id required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO training_runs (
            run_id, selected_family, test_rmse, test_mse, data_points, rejected,
            train_rows, test_rows, dataset_path, model_path, duration_ms, trained_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID,
		report.Selected,
		report.TestRMSE,
		report.TestMSE,
		report.Rows,
		report.Rejected,
		report.TrainRows,
		report.TestRows,
		report.DatasetPath,
		report.ModelPath,
		report.Duration.Milliseconds(),
		report.TrainedAt.UTC(),
	)
	if err != nil {
		tx.Rollback()
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO cv_scores (run_id, family, mean_rmse, std_rmse, folds)
        VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, result := range report.CV {
		if _, err := stmt.ExecContext(ctx, report.RunID, result.Family, result.MeanRMSE, result.StdRMSE, len(result.FoldRMSE)); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

type TrainingRun struct {
	RunID      string             `json:"run_id"`
	Selected   string             `json:"selected"`
	TestRMSE   float64            `json:"test_rmse"`
	TestMSE    float64            `json:"test_mse"`
	DataPoints int                `json:"data_points"`
	Rejected   int                `json:"rejected"`
	TrainRows  int                `json:"train_rows"`
	TestRows   int                `json:"test_rows"`
	ModelPath  string             `json:"model_path"`
	Duration   time.Duration      `json:"duration"`
	TrainedAt  time.Time          `json:"trained_at"`
	CVRMSE     map[string]float64 `json:"cv_rmse"`
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]TrainingRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT run_id, selected_family, test_rmse, test_mse, data_points, rejected,
               train_rows, test_rows, model_path, duration_ms, trained_at
        FROM training_runs
        ORDER BY trained_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]TrainingRun, 0)
	index := make(map[string]int)
	for rows.Next() {
		var run TrainingRun
		var durationMS int64
		if err := rows.Scan(&run.RunID, &run.Selected, &run.TestRMSE, &run.TestMSE, &run.DataPoints, &run.Rejected,
			&run.TrainRows, &run.TestRows, &run.ModelPath, &durationMS, &run.TrainedAt); err != nil {
			return nil, err
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		run.CVRMSE = make(map[string]float64)
		index[run.RunID] = len(runs)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return runs, nil
	}

	scores, err := s.db.QueryContext(ctx, `SELECT run_id, family, mean_rmse FROM cv_scores`)
	if err != nil {
		return nil, err
	}
	defer scores.Close()
	for scores.Next() {
		var runID, family string
		var rmse float64
		if err := scores.Scan(&runID, &family, &rmse); err != nil {
			return nil, err
		}
		if i, ok := index[runID]; ok {
			runs[i].CVRMSE[family] = rmse
		}
	}
	return runs, scores.Err()
}
