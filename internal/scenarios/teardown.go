package scenarios

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/taskflow-qa/taskflow-e2e/internal/runner"
)

func teardownSpecs(s Settings) []runner.Group {
	return []runner.Group{{
		Spec: GlobalTeardown,
		Name: "Teardown",
		Tests: []runner.Test{{
			Name: "should remove the saved session",
			Fn: func(t *runner.T) error {
				return removeStorageState(t, s.StorageState)
			},
		}},
	}}
}

func removeStorageState(t *runner.T, path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.Logf("no saved session at %s", path)
			return nil
		}
		return fmt.Errorf("failed to remove saved session: %w", err)
	}
	t.Logf("removed saved session %s", path)
	return nil
}
