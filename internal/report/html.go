package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/taskflow-qa/taskflow-e2e/internal/models"
	"github.com/taskflow-qa/taskflow-e2e/internal/runner"
)

// Files written by the HTML reporter
const (
	IndexFile   = "index.html"
	ResultsFile = "results.json"
)

// JSONResult is one entry of results.json
type JSONResult struct {
	Project     string     `json:"project"`
	Spec        string     `json:"spec"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	FailureKind string     `json:"failureKind,omitempty"`
	Attempts    int        `json:"attempts"`
	DurationMS  int64      `json:"durationMs"`
	Error       string     `json:"error,omitempty"`
	Trace       string     `json:"trace,omitempty"`
	Steps       []JSONStep `json:"steps,omitempty"`
	Logs        []string   `json:"logs,omitempty"`
}

// JSONStep is one step of a result
type JSONStep struct {
	Name       string `json:"name"`
	DurationMS int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

// JSONReport is the content of results.json
type JSONReport struct {
	RunID      string       `json:"runId"`
	BaseURL    string       `json:"baseUrl"`
	Status     string       `json:"status"`
	StartedAt  time.Time    `json:"startedAt"`
	DurationMS int64        `json:"durationMs"`
	Passed     int          `json:"passed"`
	Failed     int          `json:"failed"`
	Flaky      int          `json:"flaky"`
	Skipped    int          `json:"skipped"`
	Results    []JSONResult `json:"results"`
}

// HTML writes index.html and results.json to a report directory at the end
// of the run
type HTML struct {
	dir string
}

// NewHTML creates an HTML reporter writing to dir
func NewHTML(dir string) *HTML {
	return &HTML{dir: dir}
}

// OnBegin does nothing
func (h *HTML) OnBegin(*models.RunRecord, int) error { return nil }

// OnTestEnd does nothing; the report is written once at the end
func (h *HTML) OnTestEnd(*runner.Result) error { return nil }

// OnEnd writes the report files
func (h *HTML) OnEnd(run *models.RunRecord, results []*runner.Result) error {
	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}

	report := buildJSONReport(run, results, h.dir)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	if err := os.WriteFile(filepath.Join(h.dir, ResultsFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	f, err := os.Create(filepath.Join(h.dir, IndexFile))
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer f.Close()

	if err := indexTemplate.Execute(f, report); err != nil {
		return fmt.Errorf("failed to render index: %w", err)
	}
	return f.Close()
}

// ReadJSONReport loads results.json from a report directory
func ReadJSONReport(dir string) (*JSONReport, error) {
	data, err := os.ReadFile(filepath.Join(dir, ResultsFile))
	if err != nil {
		return nil, err
	}
	var report JSONReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ResultsFile, err)
	}
	return &report, nil
}

func buildJSONReport(run *models.RunRecord, results []*runner.Result, dir string) JSONReport {
	report := JSONReport{
		RunID:      run.ID,
		BaseURL:    run.BaseURL,
		Status:     string(run.Status),
		StartedAt:  run.StartedAt,
		DurationMS: run.Duration().Milliseconds(),
		Passed:     run.Passed,
		Failed:     run.Failed,
		Flaky:      run.Flaky,
		Skipped:    run.Skipped,
		Results:    make([]JSONResult, 0, len(results)),
	}

	for _, res := range results {
		jr := JSONResult{
			Project:     res.Project,
			Spec:        res.Spec,
			Title:       res.Title(),
			Status:      string(res.Status),
			FailureKind: string(res.Kind),
			Attempts:    res.Attempts,
			DurationMS:  res.Duration.Milliseconds(),
			Error:       res.ErrorMessage(),
			Logs:        res.Logs,
		}
		if res.TracePath != "" {
			// Link traces relative to the report so the directory can be served as is
			if rel, err := filepath.Rel(dir, res.TracePath); err == nil {
				jr.Trace = filepath.ToSlash(rel)
			} else {
				jr.Trace = res.TracePath
			}
		}
		for _, s := range res.Steps {
			step := JSONStep{Name: s.Name, DurationMS: s.Duration.Milliseconds()}
			if s.Err != nil {
				step.Error = s.Err.Error()
			}
			jr.Steps = append(jr.Steps, step)
		}
		report.Results = append(report.Results, jr)
	}
	return report
}

var indexTemplate = template.Must(template.New(IndexFile).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Test report</title>
  <style>
    body { font-family: sans-serif; margin: 2rem; }
    table { border-collapse: collapse; width: 100%; }
    th, td { border-bottom: 1px solid #ddd; padding: .4rem; text-align: left; vertical-align: top; }
    .passed { color: #15803d; } .failed, .timedOut { color: #b91c1c; }
    .flaky { color: #b45309; } .skipped { color: #0e7490; }
    pre { white-space: pre-wrap; margin: 0; }
  </style>
</head>
<body>
  <h1 class="{{.Status}}">Run {{.Status}}</h1>
  <p>{{.BaseURL}} &middot; started {{.StartedAt.Format "2006-01-02 15:04:05"}} &middot; {{.DurationMS}} ms</p>
  <p data-testid="report-totals">
    <span class="passed">{{.Passed}} passed</span>,
    <span class="failed">{{.Failed}} failed</span>,
    <span class="flaky">{{.Flaky}} flaky</span>,
    <span class="skipped">{{.Skipped}} skipped</span>
  </p>
  <table>
    <tr><th>Status</th><th>Project</th><th>Spec</th><th>Test</th><th>Attempts</th><th>Duration</th><th>Details</th></tr>
    {{range .Results}}
    <tr data-testid="report-row">
      <td class="{{.Status}}">{{.Status}}</td>
      <td>{{.Project}}</td>
      <td>{{.Spec}}</td>
      <td>{{.Title}}{{range .Steps}}<br><small>{{if .Error}}&#10008;{{else}}&#10003;{{end}} {{.Name}}</small>{{end}}</td>
      <td>{{.Attempts}}</td>
      <td>{{.DurationMS}} ms</td>
      <td>
        {{if .Error}}<pre>{{.FailureKind}}: {{.Error}}</pre>{{end}}
        {{if .Trace}}<a href="{{.Trace}}">trace</a>{{end}}
      </td>
    </tr>
    {{end}}
  </table>
</body>
</html>
`))
