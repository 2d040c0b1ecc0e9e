// Package report turns runner results into console lines, an HTML report and
// stored run history.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/taskflow-qa/taskflow-e2e/internal/models"
	"github.com/taskflow-qa/taskflow-e2e/internal/runner"
)

var (
	passColor  = color.New(color.FgGreen)
	failColor  = color.New(color.FgRed)
	flakyColor = color.New(color.FgYellow)
	skipColor  = color.New(color.FgCyan)
	dimColor   = color.New(color.Faint)
)

// List prints one line per finished test and a summary
type List struct {
	w     io.Writer
	total int
	done  int
}

// NewList creates a list reporter writing to w
func NewList(w io.Writer) *List {
	return &List{w: w}
}

// OnBegin prints how many tests will run
func (l *List) OnBegin(run *models.RunRecord, total int) error {
	l.total = total
	_, err := fmt.Fprintf(l.w, "\nRunning %d tests against %s\n\n", total, run.BaseURL)
	return err
}

// OnTestEnd prints the outcome of a test
func (l *List) OnTestEnd(res *runner.Result) error {
	l.done++

	mark, c := statusMark(res.Status)
	line := fmt.Sprintf("  %s %s %s", c.Sprint(mark), dimColor.Sprintf("%d/%d [%s]", l.done, l.total, res.Project), res.FullTitle())
	if res.Status != models.StatusSkipped {
		line += dimColor.Sprintf(" (%s)", res.Duration.Round(time.Millisecond))
	}
	if res.Attempts > 1 {
		line += dimColor.Sprintf(" attempts: %d", res.Attempts)
	}
	if _, err := fmt.Fprintln(l.w, line); err != nil {
		return err
	}

	if res.Err != nil && res.Status != models.StatusFlaky {
		msg := fmt.Sprintf("      %s: %s", res.Kind, indent(res.ErrorMessage(), "      "))
		if _, err := failColor.Fprintln(l.w, msg); err != nil {
			return err
		}
	}
	if res.TracePath != "" && res.Status.IsFailure() {
		if _, err := dimColor.Fprintf(l.w, "      trace: %s\n", res.TracePath); err != nil {
			return err
		}
	}
	return nil
}

// OnEnd prints the totals
func (l *List) OnEnd(run *models.RunRecord, _ []*runner.Result) error {
	parts := []string{passColor.Sprintf("%d passed", run.Passed)}
	if run.Failed > 0 {
		parts = append(parts, failColor.Sprintf("%d failed", run.Failed))
	}
	if run.Flaky > 0 {
		parts = append(parts, flakyColor.Sprintf("%d flaky", run.Flaky))
	}
	if run.Skipped > 0 {
		parts = append(parts, skipColor.Sprintf("%d skipped", run.Skipped))
	}
	_, err := fmt.Fprintf(l.w, "\n  %s (%s)\n", strings.Join(parts, ", "), run.Duration().Round(time.Millisecond))
	return err
}

func statusMark(s models.TestStatus) (string, *color.Color) {
	switch s {
	case models.StatusPassed:
		return "✓", passColor
	case models.StatusFlaky:
		return "±", flakyColor
	case models.StatusSkipped:
		return "-", skipColor
	default:
		return "✘", failColor
	}
}

func indent(s, prefix string) string {
	return strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n"+prefix)
}
