package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"

	"github.com/taskflow-qa/taskflow-e2e/internal/config"
	"github.com/taskflow-qa/taskflow-e2e/internal/database"
	"github.com/taskflow-qa/taskflow-e2e/internal/fixtures"
	"github.com/taskflow-qa/taskflow-e2e/internal/models"
	"github.com/taskflow-qa/taskflow-e2e/internal/report"
	"github.com/taskflow-qa/taskflow-e2e/internal/repository"
	"github.com/taskflow-qa/taskflow-e2e/internal/runner"
	"github.com/taskflow-qa/taskflow-e2e/internal/scenarios"
)

// ErrUnknownReporter is returned for a REPORTER entry that doesn't exist
var ErrUnknownReporter = errors.New("unknown reporter")

// Reporter names accepted in REPORTER
const (
	ReporterList    = "list"
	ReporterHTML    = "html"
	ReporterHistory = "history"
)

// Selection narrows a run to some projects and test titles
type Selection struct {
	Projects []string
	Grep     string
}

// PlanProjects loads the configured projects and keeps the selected ones
// with what they depend on
func PlanProjects(cfg *config.SuiteConfig, names []string) ([]runner.Project, error) {
	cfgs, err := config.LoadProjects(cfg.ProjectsFile)
	if err != nil {
		return nil, err
	}

	projects := runner.ProjectsFromConfig(cfgs, cfg.StorageState)
	if _, err := runner.OrderProjects(projects); err != nil {
		return nil, err
	}
	return runner.SelectProjects(projects, names)
}

// BuildReporters creates the reporters named in the config. The returned
// func releases what they hold and must be called after the run.
func BuildReporters(cfg *config.SuiteConfig, out io.Writer, getenv func(string) string) ([]runner.Reporter, func() error, error) {
	var reporters []runner.Reporter
	closer := func() error { return nil }

	for _, name := range cfg.Reporters {
		switch name {
		case ReporterList:
			reporters = append(reporters, report.NewList(out))
		case ReporterHTML:
			reporters = append(reporters, report.NewHTML(cfg.ReportDir))
		case ReporterHistory:
			if err := database.Connect(getenv); err != nil {
				return nil, nil, fmt.Errorf("history reporter: %w", err)
			}
			if err := database.RunMigrations(); err != nil {
				database.Close()
				return nil, nil, fmt.Errorf("history reporter: %w", err)
			}
			reporters = append(reporters, report.NewHistory(repository.NewResultRepository()))
			closer = database.Close
		default:
			return nil, nil, fmt.Errorf("%w %q", ErrUnknownReporter, name)
		}
	}
	return reporters, closer, nil
}

// RunSuite launches the browser and runs the selected scenarios against
// cfg.BaseURL
func RunSuite(ctx context.Context, cfg *config.SuiteConfig, sel Selection, out io.Writer, getenv func(string) string) (*models.RunRecord, error) {
	projects, err := PlanProjects(cfg, sel.Projects)
	if err != nil {
		return nil, err
	}

	var grep *regexp.Regexp
	if sel.Grep != "" {
		if grep, err = regexp.Compile(sel.Grep); err != nil {
			return nil, fmt.Errorf("invalid --grep: %w", err)
		}
	}

	sessionOpts, err := fixtures.SessionOptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	reporters, closeReporters, err := BuildReporters(cfg, out, getenv)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := closeReporters(); err != nil {
			log.Printf("Failed to close reporters: %v", err)
		}
	}()

	browser, err := fixtures.Launch(cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := browser.Close(); err != nil {
			log.Printf("Failed to close browser: %v", err)
		}
	}()

	r, err := runner.New(projects, runner.Options{
		BaseURL:    cfg.BaseURL,
		Workers:    cfg.Workers,
		Retries:    cfg.Retries,
		Timeout:    cfg.Timeout,
		ForbidOnly: cfg.ForbidOnly,
		Grep:       grep,
		Trace:      cfg.Trace,
		TraceDir:   cfg.ReportDir,
		Env:        &runner.BrowserEnvironment{Opener: browser, Options: sessionOpts},
		Reporters:  reporters,
	})
	if err != nil {
		return nil, err
	}

	groups := scenarios.All(scenarios.Settings{
		StorageState:  cfg.StorageState,
		ExpectTimeout: cfg.ExpectTimeout,
	})
	run, _, err := r.Run(ctx, groups)
	return run, err
}
