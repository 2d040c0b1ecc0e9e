package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/taskflow-qa/taskflow-e2e/internal/fixtures"
)

// Mode tells how the tests of a group are scheduled
type Mode int

// Group modes
const (
	// Parallel tests are independent jobs spread over the workers
	Parallel Mode = iota
	// Serial tests run in order on one worker. A failure skips the rest of
	// the group and a retry runs the whole group again.
	Serial
)

// Hook runs before or after each test of a group
type Hook func(t *T) error

// Test is one named scenario
type Test struct {
	Name string
	// Only focuses the run on this test. Forbidden on CI.
	Only bool
	Fn   func(t *T) error
}

// Group is a describe block of a spec file
type Group struct {
	Spec       string
	Name       string
	Mode       Mode
	BeforeEach []Hook
	AfterEach  []Hook
	Tests      []Test
}

// Step is a named part of a test
type Step struct {
	Name     string
	Duration time.Duration
	Err      error
}

// T is the state of one test attempt. It is handed to hooks and to the test
// body and replaces any state they would otherwise share through closures.
type T struct {
	Name    string
	Project string
	Spec    string
	// Attempt is zero for the first run and counts retries after that
	Attempt int

	// Fixtures are the Page Objects of the test's own session
	Fixtures *fixtures.Fixtures
	// Values carries data from hooks to the test body
	Values map[string]any

	ctx context.Context
	env Environment

	mu       sync.Mutex
	released bool
	extras   map[*fixtures.Fixtures]bool
	cleanups []func() error
	steps    []Step
	logs     []string
}

func newT(ctx context.Context, env Environment, project, spec, name string, attempt int) *T {
	return &T{
		Name:    name,
		Project: project,
		Spec:    spec,
		Attempt: attempt,
		Values:  make(map[string]any),
		extras:  make(map[*fixtures.Fixtures]bool),
		ctx:     ctx,
		env:     env,
	}
}

// Context is cancelled when the test times out
func (t *T) Context() context.Context {
	return t.ctx
}

// Step runs fn as a named step and records how it went
func (t *T) Step(name string, fn func() error) error {
	start := time.Now()
	err := fn()

	t.mu.Lock()
	t.steps = append(t.steps, Step{Name: name, Duration: time.Since(start), Err: err})
	t.mu.Unlock()

	if err != nil {
		return fmt.Errorf("step %q: %w", name, err)
	}
	return nil
}

// Cleanup registers fn to run after the test and its after each hooks.
// Cleanups run last registered first, whatever the test outcome.
func (t *T) Cleanup(fn func() error) {
	t.mu.Lock()
	t.cleanups = append(t.cleanups, fn)
	t.mu.Unlock()
}

// Logf records a line in the test's output
func (t *T) Logf(format string, args ...any) {
	t.mu.Lock()
	t.logs = append(t.logs, fmt.Sprintf(format, args...))
	t.mu.Unlock()
}

// NewSession opens an extra session with no cookies or origins. It is
// closed by the test's cleanups, or as soon as the test times out.
func (t *T) NewSession() (*fixtures.Fixtures, error) {
	f, err := t.openExtra()
	if err != nil {
		return nil, err
	}
	t.Cleanup(func() error {
		return t.closeExtra(f)
	})
	return f, nil
}

// WithSession runs fn in an extra session that is closed as soon as fn
// returns
func (t *T) WithSession(fn func(f *fixtures.Fixtures) error) (err error) {
	f, err := t.openExtra()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := t.closeExtra(f); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(f)
}

func (t *T) openExtra() (*fixtures.Fixtures, error) {
	if err := t.ctx.Err(); err != nil {
		return nil, err
	}

	f, err := t.env.Open(t.ctx, SessionRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	t.mu.Lock()
	if t.released {
		t.mu.Unlock()
		t.env.Close(f, "")
		return nil, fmt.Errorf("failed to open session: %w", context.DeadlineExceeded)
	}
	t.extras[f] = true
	t.mu.Unlock()
	return f, nil
}

// closeExtra closes an extra session unless it is already closed
func (t *T) closeExtra(f *fixtures.Fixtures) error {
	t.mu.Lock()
	open := t.extras[f]
	delete(t.extras, f)
	t.mu.Unlock()

	if !open {
		return nil
	}
	return t.env.Close(f, "")
}

// closeExtras closes every extra session still open
func (t *T) closeExtras() error {
	t.mu.Lock()
	open := make([]*fixtures.Fixtures, 0, len(t.extras))
	for f := range t.extras {
		open = append(open, f)
	}
	t.extras = make(map[*fixtures.Fixtures]bool)
	t.mu.Unlock()

	var errs []error
	for _, f := range open {
		errs = append(errs, t.env.Close(f, ""))
	}
	return errors.Join(errs...)
}

// attach sets the test's own fixtures. It fails when the attempt was already
// released by a timeout.
func (t *T) attach(f *fixtures.Fixtures) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return false
	}
	t.Fixtures = f
	return true
}

// detach hands the test's own fixtures over for closing. Only the first call
// returns them.
func (t *T) detach() *fixtures.Fixtures {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return nil
	}
	t.released = true
	return t.Fixtures
}

// runCleanups runs and clears the registered cleanups
func (t *T) runCleanups() error {
	t.mu.Lock()
	cleanups := t.cleanups
	t.cleanups = nil
	t.mu.Unlock()

	var errs []error
	for i := len(cleanups) - 1; i >= 0; i-- {
		if err := cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *T) snapshot() ([]Step, []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Step(nil), t.steps...), append([]string(nil), t.logs...)
}
