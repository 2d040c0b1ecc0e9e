package models

import (
	"time"

	"github.com/google/uuid"
)

// TestStatus is the outcome of one test after all of its attempts
type TestStatus string

// Test statuses
const (
	StatusPassed   TestStatus = "passed"
	StatusFailed   TestStatus = "failed"
	StatusFlaky    TestStatus = "flaky"
	StatusSkipped  TestStatus = "skipped"
	StatusTimedOut TestStatus = "timedOut"
)

// IsFailure returns true for statuses that fail the run
func (s TestStatus) IsFailure() bool {
	return s == StatusFailed || s == StatusTimedOut
}

// RunRecord summarises one invocation of the suite
type RunRecord struct {
	ID         string
	BaseURL    string
	Status     TestStatus
	Passed     int
	Failed     int
	Flaky      int
	Skipped    int
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewRunRecord starts a run record for the given target
func NewRunRecord(baseURL string) *RunRecord {
	return &RunRecord{
		ID:        uuid.New().String(),
		BaseURL:   baseURL,
		StartedAt: time.Now(),
	}
}

// Count adds a test outcome to the run totals
func (r *RunRecord) Count(status TestStatus) {
	switch status {
	case StatusPassed:
		r.Passed++
	case StatusFlaky:
		r.Flaky++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed, StatusTimedOut:
		r.Failed++
	}
}

// Finish closes the run and derives its status from the totals
func (r *RunRecord) Finish() {
	r.FinishedAt = time.Now()
	if r.Failed > 0 {
		r.Status = StatusFailed
	} else {
		r.Status = StatusPassed
	}
}

// Duration returns how long the run took
func (r *RunRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ResultRecord is the persisted outcome of one test
type ResultRecord struct {
	ID          string
	RunID       string
	Project     string
	Spec        string
	Title       string
	Status      TestStatus
	FailureKind string
	Attempts    int
	Duration    time.Duration
	Error       string
	TracePath   string
	CreatedAt   time.Time
}
