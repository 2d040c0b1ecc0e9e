package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Schema creates the run history tables
const Schema = `
	CREATE TABLE IF NOT EXISTS test_runs (
		id UUID PRIMARY KEY,
		base_url VARCHAR(255) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT '',
		passed INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		flaky INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS test_results (
		id UUID PRIMARY KEY,
		run_id UUID NOT NULL REFERENCES test_runs(id) ON DELETE CASCADE,
		project VARCHAR(255) NOT NULL,
		spec VARCHAR(255) NOT NULL,
		title TEXT NOT NULL,
		status VARCHAR(20) NOT NULL,
		failure_kind VARCHAR(20) NOT NULL DEFAULT '',
		attempts INTEGER NOT NULL,
		duration_ms BIGINT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		trace_path TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_test_runs_started_at ON test_runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_test_results_run_id ON test_results(run_id);
	CREATE INDEX IF NOT EXISTS idx_test_results_status ON test_results(status);
`

// RunMigrations creates the necessary database tables
func RunMigrations() error {
	if DB == nil {
		return fmt.Errorf("database connection not initialized")
	}
	if err := Migrate(DB); err != nil {
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// Migrate applies Schema to db
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create run history tables: %w", err)
	}
	return nil
}
