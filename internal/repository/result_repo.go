package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/taskflow-qa/taskflow-e2e/internal/database"
	"github.com/taskflow-qa/taskflow-e2e/internal/models"
)

// ErrRunNotFound is returned when a run id is unknown
var ErrRunNotFound = errors.New("run not found")

// ResultRepository handles database operations for run history
type ResultRepository struct {
	db *sql.DB
}

// NewResultRepository creates a new result repository
func NewResultRepository() *ResultRepository {
	return &ResultRepository{
		db: database.DB,
	}
}

// NewResultRepositoryWithDB creates a new result repository with a specific database connection
func NewResultRepositoryWithDB(db *sql.DB) *ResultRepository {
	return &ResultRepository{
		db: db,
	}
}

// CreateRun inserts a run when it starts
func (r *ResultRepository) CreateRun(run *models.RunRecord) error {
	query := `
		INSERT INTO test_runs (id, base_url, started_at)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.Exec(query, run.ID, run.BaseURL, run.StartedAt); err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// FinishRun stores the final totals of a run
func (r *ResultRepository) FinishRun(run *models.RunRecord) error {
	query := `
		UPDATE test_runs
		SET status = $1, passed = $2, failed = $3, flaky = $4, skipped = $5, finished_at = $6
		WHERE id = $7
	`

	result, err := r.db.Exec(query,
		string(run.Status),
		run.Passed,
		run.Failed,
		run.Flaky,
		run.Skipped,
		run.FinishedAt,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrRunNotFound
	}
	return nil
}

// CreateResult inserts the outcome of one test
func (r *ResultRepository) CreateResult(result *models.ResultRecord) error {
	query := `
		INSERT INTO test_results (id, run_id, project, spec, title, status, failure_kind,
		                          attempts, duration_ms, error, trace_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	now := time.Now()
	_, err := r.db.Exec(query,
		result.ID,
		result.RunID,
		result.Project,
		result.Spec,
		result.Title,
		string(result.Status),
		result.FailureKind,
		result.Attempts,
		result.Duration.Milliseconds(),
		result.Error,
		result.TracePath,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create result: %w", err)
	}

	result.CreatedAt = now
	return nil
}

// ListRecentRuns returns the latest runs, newest first
func (r *ResultRepository) ListRecentRuns(limit int) ([]models.RunRecord, error) {
	query := `
		SELECT id, base_url, status, passed, failed, flaky, skipped, started_at,
		       COALESCE(finished_at, started_at)
		FROM test_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []models.RunRecord
	for rows.Next() {
		var run models.RunRecord
		var status string
		if err := rows.Scan(
			&run.ID,
			&run.BaseURL,
			&status,
			&run.Passed,
			&run.Failed,
			&run.Flaky,
			&run.Skipped,
			&run.StartedAt,
			&run.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Status = models.TestStatus(status)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, nil
}

// ListResults returns the results of a run in the order they finished
func (r *ResultRepository) ListResults(runID string) ([]models.ResultRecord, error) {
	var exists bool
	if err := r.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM test_runs WHERE id = $1)`, runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if !exists {
		return nil, ErrRunNotFound
	}

	query := `
		SELECT id, run_id, project, spec, title, status, failure_kind, attempts,
		       duration_ms, error, trace_path, created_at
		FROM test_results
		WHERE run_id = $1
		ORDER BY created_at, title
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var results []models.ResultRecord
	for rows.Next() {
		var res models.ResultRecord
		var status string
		var durationMs int64
		if err := rows.Scan(
			&res.ID,
			&res.RunID,
			&res.Project,
			&res.Spec,
			&res.Title,
			&status,
			&res.FailureKind,
			&res.Attempts,
			&durationMs,
			&res.Error,
			&res.TracePath,
			&res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		res.Status = models.TestStatus(status)
		res.Duration = time.Duration(durationMs) * time.Millisecond
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	return results, nil
}
