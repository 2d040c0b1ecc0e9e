package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestLoadSuiteConfig_Defaults(t *testing.T) {
	// GIVEN
	getenv := envFrom(map[string]string{})

	// WHEN
	cfg, err := LoadSuiteConfig(getenv)

	// THEN
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "http://localhost:3000" {
		t.Errorf("BaseURL = %q, want http://localhost:3000", cfg.BaseURL)
	}
	if cfg.StorageState != DefaultStorageState {
		t.Errorf("StorageState = %q, want %q", cfg.StorageState, DefaultStorageState)
	}
	if cfg.Retries != 0 {
		t.Errorf("Retries = %d, want 0 outside CI", cfg.Retries)
	}
	if cfg.Workers < 1 {
		t.Errorf("Workers = %d, want at least 1", cfg.Workers)
	}
	if cfg.ForbidOnly {
		t.Error("ForbidOnly should be false outside CI")
	}
	if !cfg.Headless {
		t.Error("Headless should default to true")
	}
	if cfg.Trace != TraceOn {
		t.Errorf("Trace = %q, want %q", cfg.Trace, TraceOn)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if !cfg.HasReporter("html") || !cfg.HasReporter("list") {
		t.Errorf("Reporters = %v, want list and html", cfg.Reporters)
	}
}

func TestLoadSuiteConfig_CI(t *testing.T) {
	cfg, err := LoadSuiteConfig(envFrom(map[string]string{"CI": "true"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Retries != 2 {
		t.Errorf("Retries = %d, want 2 on CI", cfg.Retries)
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want 1 on CI", cfg.Workers)
	}
	if !cfg.ForbidOnly {
		t.Error("ForbidOnly should be enabled on CI")
	}
}

func TestLoadSuiteConfig_Overrides(t *testing.T) {
	cfg, err := LoadSuiteConfig(envFrom(map[string]string{
		"CI":             "1",
		"BASE_URL":       "http://127.0.0.1:4000/",
		"RETRIES":        "0",
		"WORKERS":        "3",
		"HEADLESS":       "false",
		"BROWSER":        "Firefox",
		"REPORTER":       "list, postgres",
		"TRACE":          "retain-on-failure",
		"TEST_TIMEOUT":   "45s",
		"EXPECT_TIMEOUT": "2s",
		"SLOW_MO":        "50ms",
		"TIMEZONE":       "UTC",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.BaseURL != "http://127.0.0.1:4000" {
		t.Errorf("BaseURL = %q, trailing slash should be trimmed", cfg.BaseURL)
	}
	if cfg.Retries != 0 {
		t.Errorf("Retries = %d, explicit value should win over CI default", cfg.Retries)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
	if cfg.Headless {
		t.Error("Headless should be false")
	}
	if cfg.Browser != "firefox" {
		t.Errorf("Browser = %q, want firefox", cfg.Browser)
	}
	if !cfg.HasReporter("postgres") || cfg.HasReporter("html") {
		t.Errorf("Reporters = %v, want list and postgres", cfg.Reporters)
	}
	if cfg.Trace != TraceRetainOnFailure {
		t.Errorf("Trace = %q", cfg.Trace)
	}
	if cfg.Timeout != 45*time.Second || cfg.ExpectTimeout != 2*time.Second || cfg.SlowMo != 50*time.Millisecond {
		t.Errorf("durations not parsed: %v %v %v", cfg.Timeout, cfg.ExpectTimeout, cfg.SlowMo)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Location() = %v, %v, want UTC", loc, err)
	}
}

func TestLoadSuiteConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "non numeric retries", env: map[string]string{"RETRIES": "two"}},
		{name: "negative retries", env: map[string]string{"RETRIES": "-1"}},
		{name: "zero workers", env: map[string]string{"WORKERS": "0"}},
		{name: "unknown browser", env: map[string]string{"BROWSER": "lynx"}},
		{name: "unknown trace mode", env: map[string]string{"TRACE": "sometimes"}},
		{name: "bad timeout", env: map[string]string{"TEST_TIMEOUT": "soon"}},
		{name: "bad timezone", env: map[string]string{"TIMEZONE": "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadSuiteConfig(envFrom(tt.env)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadPostgresConfig(t *testing.T) {
	complete := map[string]string{
		"POSTGRES_USER":     "e2e",
		"POSTGRES_PASSWORD": "secret",
		"POSTGRES_DB":       "runs",
		"POSTGRES_HOSTNAME": "db",
	}

	cfg, err := LoadPostgresConfig(envFrom(complete))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "host=db port=5432 user=e2e password=secret dbname=runs sslmode=disable"
	if got := cfg.ConnectionString(); got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}

	for _, key := range []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "POSTGRES_HOSTNAME"} {
		t.Run("missing "+key, func(t *testing.T) {
			env := make(map[string]string, len(complete))
			for k, v := range complete {
				env[k] = v
			}
			delete(env, key)

			if _, err := LoadPostgresConfig(envFrom(env)); err == nil {
				t.Errorf("expected error when %s is missing", key)
			}
		})
	}
}

func TestLoadServerConfig(t *testing.T) {
	cfg := LoadServerConfig(envFrom(nil))
	if cfg.Port != "3000" || cfg.Timezone != "UTC" {
		t.Errorf("defaults = %+v", cfg)
	}

	cfg = LoadServerConfig(envFrom(map[string]string{"PORT": "9323", "APP_TIMEZONE": "Europe/Berlin"}))
	if cfg.Port != "9323" || cfg.Timezone != "Europe/Berlin" {
		t.Errorf("overrides = %+v", cfg)
	}
}

func TestLoadProjects(t *testing.T) {
	t.Run("default when no file", func(t *testing.T) {
		projects, err := LoadProjects("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(projects) != 4 {
			t.Fatalf("got %d projects, want 4", len(projects))
		}
		loggedIn := projects[2]
		if loggedIn.Name != ProjectLoggedIn || !loggedIn.UseStorageState || loggedIn.Teardown != ProjectTeardown {
			t.Errorf("unexpected logged in project: %+v", loggedIn)
		}
	})

	t.Run("from yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "projects.yaml")
		content := `projects:
  - name: login
    testMatch: ["login.setup"]
  - name: smoke
    testMatch: ["tasks.spec"]
    useStorageState: true
    dependencies: [login]
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		projects, err := LoadProjects(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(projects) != 2 || projects[1].Dependencies[0] != "login" {
			t.Errorf("unexpected projects: %+v", projects)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "projects.yaml")
		if err := os.WriteFile(path, []byte("projects: []\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadProjects(path); !errors.Is(err, ErrNoProjects) {
			t.Errorf("expected ErrNoProjects, got %v", err)
		}
	})

	t.Run("duplicate names", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "projects.yaml")
		content := "projects:\n  - name: a\n  - name: a\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadProjects(path); err == nil {
			t.Error("expected duplicate project error")
		}
	})
}
