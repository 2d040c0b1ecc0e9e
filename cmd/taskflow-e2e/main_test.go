package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewApp_Commands(t *testing.T) {
	app := newApp()

	for _, name := range []string{"run", "login", "show-report", "history", "fakeapp"} {
		if app.Command(name) == nil {
			t.Errorf("missing command %q", name)
		}
	}
}

func TestNewApp_FailingCommandLeavesPrintingToMain(t *testing.T) {
	// GIVEN no report on disk
	t.Setenv("REPORT_DIR", filepath.Join(t.TempDir(), "missing"))

	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	// WHEN serving the report
	err := app.RunContext(context.Background(), []string{"taskflow-e2e", "show-report", "--port", "0"})

	// THEN the error is returned once and nothing was printed on the way
	if err == nil || !strings.Contains(err.Error(), "no report found") {
		t.Fatalf("error = %v, want missing report", err)
	}
	if stderr.Len() != 0 {
		t.Errorf("unexpected error output: %q", stderr.String())
	}
}
