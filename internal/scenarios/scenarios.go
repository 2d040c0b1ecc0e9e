// Package scenarios holds the browser specs of the suite. Each spec is a
// named group of tests; the run projects pick specs by name.
package scenarios

import (
	"time"

	"github.com/taskflow-qa/taskflow-e2e/internal/runner"
)

// Spec names
const (
	LoginSetup          = "login.setup"
	LoginPOMSpec        = "login-pom.spec"
	LoginFixtureSpec    = "login-fixture.spec"
	RegisterPOMSpec     = "register-pom.spec"
	RegisterFixtureSpec = "register-fixture.spec"
	TasksSpec           = "tasks.spec"
	CommentsSpec        = "comments.spec"
	GlobalTeardown      = "global.teardown"
)

// Settings are what the specs need from the run configuration
type Settings struct {
	// StorageState is where the login setup saves the session
	StorageState  string
	ExpectTimeout time.Duration
}

// All returns every spec of the suite
func All(s Settings) []runner.Group {
	var groups []runner.Group
	groups = append(groups, loginSpecs(s)...)
	groups = append(groups, registerSpecs(s)...)
	groups = append(groups, taskSpecs()...)
	groups = append(groups, commentSpecs()...)
	groups = append(groups, teardownSpecs(s)...)
	return groups
}
