package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/taskflow-qa/taskflow-e2e/internal/models"
	"github.com/taskflow-qa/taskflow-e2e/internal/runner"
)

// RunStore persists runs and their results
type RunStore interface {
	CreateRun(run *models.RunRecord) error
	FinishRun(run *models.RunRecord) error
	CreateResult(result *models.ResultRecord) error
	ListRecentRuns(limit int) ([]models.RunRecord, error)
}

// History stores every run and result, so flaky tests can be tracked over
// time
type History struct {
	store RunStore
	runID string
}

// NewHistory creates a history reporter on store
func NewHistory(store RunStore) *History {
	return &History{store: store}
}

// OnBegin stores the started run
func (h *History) OnBegin(run *models.RunRecord, _ int) error {
	if err := h.store.CreateRun(run); err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}
	h.runID = run.ID
	return nil
}

// OnTestEnd stores a result
func (h *History) OnTestEnd(res *runner.Result) error {
	if h.runID == "" {
		return nil
	}
	if err := h.store.CreateResult(res.Record(h.runID)); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}

// OnEnd stores the run totals
func (h *History) OnEnd(run *models.RunRecord, _ []*runner.Result) error {
	if h.runID == "" {
		return nil
	}
	if err := h.store.FinishRun(run); err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// PrintRuns writes recent runs as a table
func PrintRuns(w io.Writer, runs []models.RunRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSTATUS\tPASSED\tFAILED\tFLAKY\tSKIPPED\tDURATION\tBASE URL")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"),
			statusOrRunning(r.Status),
			r.Passed, r.Failed, r.Flaky, r.Skipped,
			r.Duration().Round(time.Millisecond),
			r.BaseURL,
		)
	}
	return tw.Flush()
}

func statusOrRunning(s models.TestStatus) string {
	if s == "" {
		return "running"
	}
	return string(s)
}
