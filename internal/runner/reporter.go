package runner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskflow-qa/taskflow-e2e/internal/models"
)

// Result is the final outcome of one test
type Result struct {
	Project   string
	Spec      string
	Group     string
	Test      string
	Status    models.TestStatus
	Kind      FailureKind
	Attempts  int
	Duration  time.Duration
	Err       error
	TracePath string
	Steps     []Step
	Logs      []string
}

// Title is the describe block and test name
func (r *Result) Title() string {
	if r.Group == "" {
		return r.Test
	}
	return r.Group + " > " + r.Test
}

// FullTitle also names the spec, and is what --grep matches against
func (r *Result) FullTitle() string {
	return fullTitle(r.Spec, r.Group, r.Test)
}

func fullTitle(spec, group, test string) string {
	parts := []string{spec}
	if group != "" {
		parts = append(parts, group)
	}
	return strings.Join(append(parts, test), " > ")
}

// ErrorMessage returns the error text, or an empty string
func (r *Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Record converts the result for storage
func (r *Result) Record(runID string) *models.ResultRecord {
	return &models.ResultRecord{
		ID:          uuid.New().String(),
		RunID:       runID,
		Project:     r.Project,
		Spec:        r.Spec,
		Title:       r.Title(),
		Status:      r.Status,
		FailureKind: string(r.Kind),
		Attempts:    r.Attempts,
		Duration:    r.Duration,
		Error:       r.ErrorMessage(),
		TracePath:   r.TracePath,
	}
}

// Reporter receives run events. OnTestEnd is never called concurrently.
type Reporter interface {
	OnBegin(run *models.RunRecord, total int) error
	OnTestEnd(result *Result) error
	OnEnd(run *models.RunRecord, results []*Result) error
}
