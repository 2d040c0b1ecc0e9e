package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	internalcli "github.com/taskflow-qa/taskflow-e2e/internal/cli"
	"github.com/taskflow-qa/taskflow-e2e/internal/config"
	"github.com/taskflow-qa/taskflow-e2e/internal/database"
	"github.com/taskflow-qa/taskflow-e2e/internal/models"
	"github.com/taskflow-qa/taskflow-e2e/internal/report"
	"github.com/taskflow-qa/taskflow-e2e/internal/repository"
)

var version = "0.1.0"

// loadSuiteConfig reads the environment and applies the flags given on the
// command line
func loadSuiteConfig(c *cli.Context) (*config.SuiteConfig, error) {
	cfg, err := config.LoadSuiteConfig(os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("invalid suite configuration: %w", err)
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("retries") {
		cfg.Retries = c.Int("retries")
	}
	if c.Bool("headed") {
		cfg.Headless = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSuite(c *cli.Context, sel internalcli.Selection) error {
	cfg, err := loadSuiteConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	run, err := internalcli.RunSuite(ctx, cfg, sel, os.Stdout, os.Getenv)
	if err != nil {
		return err
	}
	if cfg.HasReporter(internalcli.ReporterHTML) {
		log.Printf("HTML report written to %s, open it with: taskflow-e2e show-report", cfg.ReportDir)
	}
	if run.Status != models.StatusPassed {
		return cli.Exit("", 1)
	}
	return nil
}

var suiteFlags = []cli.Flag{
	&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Usage: "number of parallel workers"},
	&cli.IntFlag{Name: "retries", Usage: "retries for a failed test"},
	&cli.BoolFlag{Name: "headed", Usage: "show the browser window"},
}

// RunCommand returns the run command
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the browser suite",
		Flags: append([]cli.Flag{
			&cli.StringSliceFlag{Name: "project", Aliases: []string{"p"}, Usage: "only run this project and what it depends on"},
			&cli.StringFlag{Name: "grep", Aliases: []string{"g"}, Usage: "only run tests whose title matches"},
		}, suiteFlags...),
		Action: func(c *cli.Context) error {
			return runSuite(c, internalcli.Selection{
				Projects: c.StringSlice("project"),
				Grep:     c.String("grep"),
			})
		},
	}
}

// LoginCommand returns the login command
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in once and save the session for the logged in tests",
		Flags: suiteFlags,
		Action: func(c *cli.Context) error {
			return runSuite(c, internalcli.Selection{Projects: []string{config.ProjectLogin}})
		},
	}
}

// ShowReportCommand returns the show-report command
func ShowReportCommand() *cli.Command {
	return &cli.Command{
		Name:  "show-report",
		Usage: "Serve the last HTML report",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Value: "9323", Usage: "port to listen on"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadSuiteConfig(os.Getenv)
			if err != nil {
				return err
			}
			handler, err := internalcli.ReportHandler(cfg.ReportDir)
			if err != nil {
				return err
			}
			log.Printf("Serving %s on http://localhost:%s", cfg.ReportDir, c.String("port"))
			return internalcli.RunServe(handler, c.String("port"))
		},
	}
}

// HistoryCommand returns the history command
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent runs stored by the history reporter",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "number of runs to show"},
		},
		Action: func(c *cli.Context) error {
			if err := database.Connect(os.Getenv); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close()

			if err := database.RunMigrations(); err != nil {
				return fmt.Errorf("failed to run database migrations: %w", err)
			}

			runs, err := repository.NewResultRepository().ListRecentRuns(c.Int("limit"))
			if err != nil {
				return err
			}
			return report.PrintRuns(os.Stdout, runs)
		},
	}
}

// FakeAppCommand returns the fakeapp command
func FakeAppCommand() *cli.Command {
	return &cli.Command{
		Name:  "fakeapp",
		Usage: "Serve a local stand-in of the task application",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "templates", Value: "templates", Usage: "template directory"},
		},
		Action: func(c *cli.Context) error {
			serverConfig := config.LoadServerConfig(os.Getenv)

			handler, err := internalcli.BuildFakeApp(serverConfig, c.String("templates"))
			if err != nil {
				return err
			}
			return internalcli.RunServe(handler, serverConfig.Port)
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "taskflow-e2e",
		Usage:   "Browser tests for the task application",
		Version: version,
		Commands: []*cli.Command{
			RunCommand(),
			LoginCommand(),
			ShowReportCommand(),
			HistoryCommand(),
			FakeAppCommand(),
		},
	}
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	if err := newApp().RunContext(context.Background(), os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
