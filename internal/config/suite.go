package config

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// DefaultStorageState is where the login setup scenario saves the
// authenticated browser state.
const DefaultStorageState = "./auth/session.json"

// TraceMode controls when a Playwright trace is recorded for a test attempt
type TraceMode string

// Trace modes
const (
	TraceOn              TraceMode = "on"
	TraceOff             TraceMode = "off"
	TraceRetainOnFailure TraceMode = "retain-on-failure"
	TraceOnFirstRetry    TraceMode = "on-first-retry"
)

// SuiteConfig holds the run configuration of the browser suite
type SuiteConfig struct {
	BaseURL       string
	CI            bool
	ForbidOnly    bool
	Workers       int
	Retries       int
	Headless      bool
	SlowMo        time.Duration
	Browser       string
	StorageState  string
	ReportDir     string
	Reporters     []string
	Trace         TraceMode
	Timeout       time.Duration
	ExpectTimeout time.Duration
	Timezone      string
	ProjectsFile  string
}

// LoadSuiteConfig loads the suite configuration from environment variables
func LoadSuiteConfig(getenv func(string) string) (*SuiteConfig, error) {
	ci := isTruthy(getenv("CI"))

	config := &SuiteConfig{
		BaseURL:      getenv("BASE_URL"),
		CI:           ci,
		ForbidOnly:   ci,
		Headless:     getenv("HEADLESS") != "false",
		Browser:      strings.ToLower(getenv("BROWSER")),
		StorageState: getenv("STORAGE_STATE"),
		ReportDir:    getenv("REPORT_DIR"),
		Trace:        TraceMode(getenv("TRACE")),
		Timezone:     getenv("TIMEZONE"),
		ProjectsFile: getenv("E2E_PROJECTS_FILE"),
	}

	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:3000"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Browser == "" {
		config.Browser = "chromium"
	}
	if config.StorageState == "" {
		config.StorageState = DefaultStorageState
	}
	if config.ReportDir == "" {
		config.ReportDir = "playwright-report"
	}
	if config.Trace == "" {
		config.Trace = TraceOn
	}

	reporters := getenv("REPORTER")
	if reporters == "" {
		reporters = "list,html"
	}
	for _, r := range strings.Split(reporters, ",") {
		if r = strings.TrimSpace(r); r != "" {
			config.Reporters = append(config.Reporters, r)
		}
	}

	// Retry on CI only
	retries, err := intOrDefault(getenv("RETRIES"), 0)
	if err != nil {
		return nil, fmt.Errorf("RETRIES: %w", err)
	}
	if getenv("RETRIES") == "" && ci {
		retries = 2
	}
	config.Retries = retries

	// Opt out of parallel tests on CI
	defaultWorkers := runtime.NumCPU() / 2
	if defaultWorkers < 1 {
		defaultWorkers = 1
	}
	if ci {
		defaultWorkers = 1
	}
	workers, err := intOrDefault(getenv("WORKERS"), defaultWorkers)
	if err != nil {
		return nil, fmt.Errorf("WORKERS: %w", err)
	}
	config.Workers = workers

	if config.SlowMo, err = durationOrDefault(getenv("SLOW_MO"), 0); err != nil {
		return nil, fmt.Errorf("SLOW_MO: %w", err)
	}
	if config.Timeout, err = durationOrDefault(getenv("TEST_TIMEOUT"), 30*time.Second); err != nil {
		return nil, fmt.Errorf("TEST_TIMEOUT: %w", err)
	}
	if config.ExpectTimeout, err = durationOrDefault(getenv("EXPECT_TIMEOUT"), 5*time.Second); err != nil {
		return nil, fmt.Errorf("EXPECT_TIMEOUT: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the values that cannot be defaulted
func (c *SuiteConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries cannot be negative, got %d", c.Retries)
	}
	switch c.Browser {
	case "chromium", "firefox", "webkit":
	default:
		return fmt.Errorf("unsupported browser %q", c.Browser)
	}
	switch c.Trace {
	case TraceOn, TraceOff, TraceRetainOnFailure, TraceOnFirstRetry:
	default:
		return fmt.Errorf("unsupported trace mode %q", c.Trace)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the timezone the application renders timestamps in
func (c *SuiteConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// HasReporter reports whether the named reporter is enabled
func (c *SuiteConfig) HasReporter(name string) bool {
	for _, r := range c.Reporters {
		if r == name {
			return true
		}
	}
	return false
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no":
		return false
	}
	return true
}

func intOrDefault(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func durationOrDefault(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}
