package runner

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow-qa/taskflow-e2e/internal/config"
	"github.com/taskflow-qa/taskflow-e2e/internal/fixtures"
	"github.com/taskflow-qa/taskflow-e2e/internal/models"
	"github.com/taskflow-qa/taskflow-e2e/internal/pages"
)

// fakeEnv hands out empty fixtures and records what the runner asked for
type fakeEnv struct {
	mu       sync.Mutex
	requests []SessionRequest
	traces   []string
	opened   int
	closed   map[*fixtures.Fixtures]int
	gone     map[*fixtures.Fixtures]chan struct{}
	openErr  error
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{
		closed: make(map[*fixtures.Fixtures]int),
		gone:   make(map[*fixtures.Fixtures]chan struct{}),
	}
}

// closedCh is closed when f is closed, like a driver call failing once its
// browser context goes away
func (e *fakeEnv) closedCh(f *fixtures.Fixtures) <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gone[f]
}

func (e *fakeEnv) Open(_ context.Context, req SessionRequest) (*fixtures.Fixtures, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.openErr != nil {
		return nil, e.openErr
	}
	e.opened++
	e.requests = append(e.requests, req)
	f := &fixtures.Fixtures{}
	e.gone[f] = make(chan struct{})
	return f, nil
}

func (e *fakeEnv) Close(f *fixtures.Fixtures, tracePath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed[f]++
	if e.closed[f] == 1 {
		close(e.gone[f])
	}
	if tracePath != "" {
		e.traces = append(e.traces, tracePath)
	}
	return nil
}

func (e *fakeEnv) closeCounts() (sessions, maxCloses int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, n := range e.closed {
		sessions++
		if n > maxCloses {
			maxCloses = n
		}
	}
	return sessions, maxCloses
}

// recorder is a Reporter that keeps every event
type recorder struct {
	total   int
	ended   []*Result
	run     *models.RunRecord
	results []*Result
}

func (r *recorder) OnBegin(_ *models.RunRecord, total int) error { r.total = total; return nil }
func (r *recorder) OnTestEnd(res *Result) error                   { r.ended = append(r.ended, res); return nil }
func (r *recorder) OnEnd(run *models.RunRecord, results []*Result) error {
	r.run, r.results = run, results
	return nil
}

func onlyProject() []Project {
	return []Project{{Name: "all", TestMatch: []string{"*"}}}
}

func newTestRunner(t *testing.T, projects []Project, opts Options) (*Runner, *fakeEnv, *recorder) {
	t.Helper()
	env := newFakeEnv()
	rec := &recorder{}
	opts.Env = env
	opts.Reporters = append(opts.Reporters, rec)
	if opts.Workers == 0 {
		opts.Workers = 2
	}
	r, err := New(projects, opts)
	require.NoError(t, err)
	return r, env, rec
}

func pass(*T) error { return nil }

func byTest(results []*Result) map[string]*Result {
	out := make(map[string]*Result, len(results))
	for _, r := range results {
		out[r.Project+"/"+r.Test] = r
	}
	return out
}

func TestOrderProjects_DefaultConfig(t *testing.T) {
	projects := ProjectsFromConfig(config.DefaultProjects(), "./auth/session.json")

	ordered, err := OrderProjects(projects)
	require.NoError(t, err)

	pos := make(map[string]int)
	for i, p := range ordered {
		pos[p.Name] = i
	}
	require.Len(t, pos, 4)
	assert.Less(t, pos[config.ProjectLogin], pos[config.ProjectLoggedIn])
	assert.Less(t, pos[config.ProjectLoggedIn], pos[config.ProjectTeardown])

	for _, p := range ordered {
		if p.Name == config.ProjectLoggedIn {
			assert.Equal(t, "./auth/session.json", p.StorageState)
		} else {
			assert.Empty(t, p.StorageState, p.Name)
		}
	}
}

func TestOrderProjects_Errors(t *testing.T) {
	_, err := OrderProjects([]Project{
		{Name: "a", Dependencies: []string{"b"}},
		{Name: "b", Dependencies: []string{"a"}},
	})
	assert.ErrorIs(t, err, ErrProjectCycle)

	_, err = OrderProjects([]Project{{Name: "a", Dependencies: []string{"missing"}}})
	assert.ErrorIs(t, err, ErrUnknownProject)

	_, err = OrderProjects([]Project{{Name: "a", Teardown: "missing"}})
	assert.ErrorIs(t, err, ErrUnknownProject)

	// A teardown cannot be a dependency of the project it tears down
	_, err = OrderProjects([]Project{
		{Name: "setup", Teardown: "cleanup"},
		{Name: "cleanup", Dependencies: []string{"setup"}},
		{Name: "tests", Dependencies: []string{"cleanup", "setup"}},
	})
	assert.ErrorIs(t, err, ErrProjectCycle)
}

func TestOrderProjects_TeardownAfterDependents(t *testing.T) {
	ordered, err := OrderProjects([]Project{
		{Name: "teardown"},
		{Name: "setup", Teardown: "teardown"},
		{Name: "tests", Dependencies: []string{"setup"}},
		{Name: "more", Dependencies: []string{"tests"}},
	})
	require.NoError(t, err)

	names := make([]string, 0, len(ordered))
	for _, p := range ordered {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"setup", "tests", "more", "teardown"}, names)
}

func TestProjectMatches(t *testing.T) {
	projects := ProjectsFromConfig(config.DefaultProjects(), "")
	byName := make(map[string]Project)
	for _, p := range projects {
		byName[p.Name] = p
	}

	tests := []struct {
		project string
		spec    string
		want    bool
	}{
		{config.ProjectLogin, "login.setup", true},
		{config.ProjectLogin, "tasks.spec", false},
		{config.ProjectLoggedIn, "tasks.spec", true},
		{config.ProjectLoggedIn, "comments.spec", true},
		{config.ProjectLoggedIn, "login-pom.spec", false},
		{config.ProjectLoggedIn, "register-fixture.spec", false},
		{config.ProjectLoggedIn, "login.setup", false},
		{config.ProjectLoggedOut, "login-fixture.spec", true},
		{config.ProjectLoggedOut, "register-pom.spec", true},
		{config.ProjectLoggedOut, "tasks.spec", false},
		{config.ProjectTeardown, "global.teardown", true},
	}

	for _, tt := range tests {
		t.Run(tt.project+"/"+tt.spec, func(t *testing.T) {
			assert.Equal(t, tt.want, byName[tt.project].Matches(tt.spec))
		})
	}
}

func TestSelectProjects(t *testing.T) {
	projects := ProjectsFromConfig(config.DefaultProjects(), "")

	selected, err := SelectProjects(projects, []string{config.ProjectLoggedIn})
	require.NoError(t, err)

	var names []string
	for _, p := range selected {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{config.ProjectLogin, config.ProjectTeardown, config.ProjectLoggedIn}, names)

	all, err := SelectProjects(projects, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = SelectProjects(projects, []string{"nope"})
	assert.ErrorIs(t, err, ErrUnknownProject)
}

func TestRun_RetryMarksFlaky(t *testing.T) {
	r, _, rec := newTestRunner(t, onlyProject(), Options{Retries: 2})

	var calls atomic.Int32
	groups := []Group{{
		Spec: "tasks.spec",
		Name: "Tasks page",
		Tests: []Test{
			{Name: "passes", Fn: pass},
			{Name: "passes on retry", Fn: func(t *T) error {
				if calls.Add(1) == 1 {
					return errors.New("first attempt fails")
				}
				return nil
			}},
			{Name: "always fails", Fn: func(t *T) error { return errors.New("broken") }},
		},
	}}

	run, results, err := r.Run(context.Background(), groups)
	require.NoError(t, err)

	got := byTest(results)
	assert.Equal(t, models.StatusPassed, got["all/passes"].Status)
	assert.Equal(t, 1, got["all/passes"].Attempts)
	assert.Equal(t, models.StatusFlaky, got["all/passes on retry"].Status)
	assert.Equal(t, 2, got["all/passes on retry"].Attempts)
	assert.Equal(t, models.StatusFailed, got["all/always fails"].Status)
	assert.Equal(t, 3, got["all/always fails"].Attempts)
	assert.Equal(t, KindError, got["all/always fails"].Kind)

	assert.Equal(t, models.StatusFailed, run.Status)
	assert.Equal(t, 1, run.Passed)
	assert.Equal(t, 1, run.Flaky)
	assert.Equal(t, 1, run.Failed)

	assert.Equal(t, 3, rec.total)
	assert.Len(t, rec.ended, 3)
	assert.Same(t, run, rec.run)
}

func TestRun_SerialGroupSkipsAfterFailure(t *testing.T) {
	r, _, _ := newTestRunner(t, onlyProject(), Options{Retries: 1, Workers: 4})

	var order []string
	var mu sync.Mutex
	step := func(name string, err error) func(*T) error {
		return func(*T) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return err
		}
	}

	groups := []Group{{
		Spec: "tasks.spec",
		Name: "Starring tasks",
		Mode: Serial,
		Tests: []Test{
			{Name: "star", Fn: step("star", nil)},
			{Name: "unstar", Fn: step("unstar", errors.New("still starred"))},
			{Name: "after", Fn: step("after", nil)},
		},
	}}

	_, results, err := r.Run(context.Background(), groups)
	require.NoError(t, err)

	got := byTest(results)
	assert.Equal(t, models.StatusPassed, got["all/star"].Status)
	assert.Equal(t, models.StatusFailed, got["all/unstar"].Status)
	assert.Equal(t, models.StatusSkipped, got["all/after"].Status)

	// Both attempts run the group from the top, in order
	assert.Equal(t, []string{"star", "unstar", "star", "unstar"}, order)
}

func TestRun_SerialRetryKeepsEarlierFailure(t *testing.T) {
	r, _, _ := newTestRunner(t, onlyProject(), Options{Retries: 1})

	var starRuns atomic.Int32
	groups := []Group{{
		Spec: "tasks.spec",
		Name: "Starring tasks",
		Mode: Serial,
		Tests: []Test{
			{Name: "star", Fn: func(*T) error {
				// passes first, fails on the retry
				if starRuns.Add(1) == 2 {
					return errors.New("star not filled")
				}
				return nil
			}},
			{Name: "unstar", Fn: func(*T) error { return errors.New("still starred") }},
		},
	}}

	run, results, err := r.Run(context.Background(), groups)
	require.NoError(t, err)

	got := byTest(results)
	assert.Equal(t, models.StatusFailed, got["all/star"].Status)
	assert.Equal(t, 2, got["all/star"].Attempts)

	// unstar only ran in the first attempt; its failure is what gets reported
	unstar := got["all/unstar"]
	assert.Equal(t, models.StatusFailed, unstar.Status)
	assert.EqualError(t, unstar.Err, "still starred")
	assert.Equal(t, 1, unstar.Attempts)
	assert.Equal(t, 2, run.Failed)
	assert.Zero(t, run.Skipped)
}

func TestRun_DependencyFailureSkipsDependentsButNotTeardown(t *testing.T) {
	projects := []Project{
		{Name: "login", TestMatch: []string{"login.setup"}},
		{Name: "teardown", TestMatch: []string{"global.teardown"}},
		{Name: "tests", TestMatch: []string{"*.spec"}, Dependencies: []string{"login"}, Teardown: "teardown"},
		{Name: "more", TestMatch: []string{"more.spec"}, Dependencies: []string{"tests"}},
	}
	r, _, _ := newTestRunner(t, projects, Options{})

	var tornDown atomic.Bool
	groups := []Group{
		{Spec: "login.setup", Tests: []Test{{Name: "login", Fn: func(*T) error { return errors.New("bad password") }}}},
		{Spec: "tasks.spec", Tests: []Test{{Name: "create", Fn: pass}}},
		{Spec: "more.spec", Tests: []Test{{Name: "extra", Fn: pass}}},
		{Spec: "global.teardown", Tests: []Test{{Name: "cleanup", Fn: func(*T) error {
			tornDown.Store(true)
			return nil
		}}}},
	}

	_, results, err := r.Run(context.Background(), groups)
	require.NoError(t, err)

	got := byTest(results)
	assert.Equal(t, models.StatusFailed, got["login/login"].Status)
	assert.Equal(t, models.StatusSkipped, got["tests/create"].Status)
	assert.Equal(t, models.StatusSkipped, got["tests/extra"].Status)
	assert.Equal(t, models.StatusSkipped, got["more/extra"].Status)
	assert.Equal(t, models.StatusPassed, got["teardown/cleanup"].Status)
	assert.True(t, tornDown.Load())
}

func TestRun_StorageStatePerProject(t *testing.T) {
	projects := []Project{
		{Name: "anon", TestMatch: []string{"a.spec"}},
		{Name: "authed", TestMatch: []string{"a.spec"}, StorageState: "auth/session.json"},
	}
	r, env, _ := newTestRunner(t, projects, Options{Workers: 1})

	_, _, err := r.Run(context.Background(), []Group{{Spec: "a.spec", Tests: []Test{{Name: "x", Fn: pass}}}})
	require.NoError(t, err)

	require.Len(t, env.requests, 2)
	assert.Empty(t, env.requests[0].StorageState)
	assert.Equal(t, "auth/session.json", env.requests[1].StorageState)
}

func TestRun_ForbidOnly(t *testing.T) {
	groups := []Group{{Spec: "a.spec", Name: "g", Tests: []Test{
		{Name: "focused", Only: true, Fn: pass},
		{Name: "other", Fn: pass},
	}}}

	r, _, _ := newTestRunner(t, onlyProject(), Options{ForbidOnly: true})
	_, _, err := r.Run(context.Background(), groups)
	require.ErrorIs(t, err, ErrOnlyForbidden)
	assert.Contains(t, err.Error(), "a.spec > g > focused")

	r, _, _ = newTestRunner(t, onlyProject(), Options{})
	_, results, err := r.Run(context.Background(), groups)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "focused", results[0].Test)
}

func TestRun_Grep(t *testing.T) {
	r, _, _ := newTestRunner(t, onlyProject(), Options{Grep: regexp.MustCompile(`comment`)})

	_, results, err := r.Run(context.Background(), []Group{
		{Spec: "tasks.spec", Tests: []Test{{Name: "create", Fn: pass}}},
		{Spec: "comments.spec", Tests: []Test{{Name: "add", Fn: pass}}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "comments.spec", results[0].Spec)
}

func TestRun_TimeoutReleasesFixtures(t *testing.T) {
	r, env, _ := newTestRunner(t, onlyProject(), Options{Timeout: 50 * time.Millisecond})

	var cleaned atomic.Bool
	_, results, err := r.Run(context.Background(), []Group{{Spec: "a.spec", Tests: []Test{{
		Name: "hangs",
		Fn: func(t *T) error {
			t.Cleanup(func() error {
				cleaned.Store(true)
				return nil
			})
			<-t.Context().Done()
			return t.Context().Err()
		},
	}}}})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, models.StatusTimedOut, results[0].Status)
	assert.Equal(t, KindTimeout, results[0].Kind)
	assert.True(t, cleaned.Load(), "cleanups run after a timeout")

	sessions, maxCloses := env.closeCounts()
	assert.Equal(t, 1, sessions)
	assert.Equal(t, 1, maxCloses, "the session is closed exactly once")
}

func TestRun_TimeoutReleasesSecondarySessions(t *testing.T) {
	r, env, _ := newTestRunner(t, onlyProject(), Options{Timeout: 100 * time.Millisecond})

	groups := []Group{{Spec: "comments.spec", Tests: []Test{{
		Name: "stuck in the second session",
		Fn: func(t *T) error {
			sam, err := t.NewSession()
			if err != nil {
				return err
			}
			// blocks until the session is closed
			<-env.closedCh(sam)
			return errors.New("target closed")
		},
	}}}}

	type outcome struct {
		results []*Result
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		_, results, err := r.Run(context.Background(), groups)
		done <- outcome{results, err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run still blocked long after the test timeout")
	}
	require.NoError(t, out.err)
	require.Len(t, out.results, 1)
	assert.Equal(t, models.StatusTimedOut, out.results[0].Status)

	sessions, maxCloses := env.closeCounts()
	assert.Equal(t, 2, sessions)
	assert.Equal(t, 1, maxCloses, "each session is closed exactly once")
}

func TestRun_HooksValuesAndCleanups(t *testing.T) {
	r, env, _ := newTestRunner(t, onlyProject(), Options{Workers: 1})

	var events []string
	record := func(e string) { events = append(events, e) }

	groups := []Group{{
		Spec: "comments.spec",
		Name: "Comments",
		Mode: Serial,
		BeforeEach: []Hook{func(t *T) error {
			t.Values["task"] = "water the plants " + t.Name
			record("before " + t.Name)
			return nil
		}},
		AfterEach: []Hook{func(t *T) error {
			record("after " + t.Name)
			return nil
		}},
		Tests: []Test{
			{Name: "one", Fn: func(t *T) error {
				record("body " + t.Values["task"].(string))
				t.Cleanup(func() error { record("cleanup first"); return nil })
				t.Cleanup(func() error { record("cleanup second"); return nil })
				_, err := t.NewSession()
				return err
			}},
			{Name: "two", Fn: func(t *T) error {
				return t.WithSession(func(*fixtures.Fixtures) error {
					record("secondary")
					return errors.New("comment missing")
				})
			}},
		},
	}}

	_, results, err := r.Run(context.Background(), groups)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"before one", "body water the plants one", "after one", "cleanup second", "cleanup first",
		"before two", "secondary", "after two",
	}, events)

	got := byTest(results)
	assert.Equal(t, models.StatusPassed, got["all/one"].Status)
	assert.Equal(t, models.StatusFailed, got["all/two"].Status)

	// Two primaries and two secondaries, each closed once
	sessions, maxCloses := env.closeCounts()
	assert.Equal(t, 4, sessions)
	assert.Equal(t, 1, maxCloses)
	assert.Equal(t, 4, env.opened)
}

func TestRun_HookFailures(t *testing.T) {
	r, _, _ := newTestRunner(t, onlyProject(), Options{})

	var bodyRan, afterRan atomic.Bool
	_, results, err := r.Run(context.Background(), []Group{{
		Spec:       "a.spec",
		BeforeEach: []Hook{func(*T) error { return errors.New("login failed") }},
		AfterEach:  []Hook{func(*T) error { afterRan.Store(true); return nil }},
		Tests:      []Test{{Name: "x", Fn: func(*T) error { bodyRan.Store(true); return nil }}},
	}})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, KindHook, results[0].Kind)
	assert.False(t, bodyRan.Load())
	assert.True(t, afterRan.Load())
}

func TestRun_FixtureSetupFailure(t *testing.T) {
	r, env, _ := newTestRunner(t, onlyProject(), Options{})
	env.openErr = errors.New("browser crashed")

	_, results, err := r.Run(context.Background(), []Group{{Spec: "a.spec", Tests: []Test{{Name: "x", Fn: pass}}}})
	require.NoError(t, err)
	assert.Equal(t, KindHook, results[0].Kind)
	assert.Contains(t, results[0].ErrorMessage(), "browser crashed")
}

func TestRun_PanicBecomesFailure(t *testing.T) {
	r, _, _ := newTestRunner(t, onlyProject(), Options{})

	_, results, err := r.Run(context.Background(), []Group{{Spec: "a.spec", Tests: []Test{{
		Name: "panics",
		Fn:   func(*T) error { panic("nil page") },
	}}}})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, results[0].Status)
	assert.Contains(t, results[0].ErrorMessage(), "panic: nil page")
}

func TestRun_Steps(t *testing.T) {
	r, _, _ := newTestRunner(t, onlyProject(), Options{})

	_, results, err := r.Run(context.Background(), []Group{{Spec: "register-fixture.spec", Tests: []Test{{
		Name: "register",
		Fn: func(t *T) error {
			if err := t.Step("step 1: generate random user data", func() error { return nil }); err != nil {
				return err
			}
			t.Logf("registered %s", "someone")
			return t.Step("step 2: navigate", func() error { return pages.ErrCommentNotFound })
		},
	}}}})
	require.NoError(t, err)

	res := results[0]
	require.Len(t, res.Steps, 2)
	assert.NoError(t, res.Steps[0].Err)
	assert.ErrorIs(t, res.Steps[1].Err, pages.ErrCommentNotFound)
	assert.Equal(t, KindVerification, res.Kind)
	assert.Contains(t, res.ErrorMessage(), `step "step 2: navigate"`)
	assert.Equal(t, []string{"registered someone"}, res.Logs)
}

func TestRun_TraceModes(t *testing.T) {
	tests := []struct {
		mode       config.TraceMode
		wantTraces int
		wantTraced []bool // per request
	}{
		{mode: config.TraceOff, wantTraces: 0, wantTraced: []bool{false, false, false}},
		{mode: config.TraceOn, wantTraces: 3, wantTraced: []bool{true, true, true}},
		{mode: config.TraceRetainOnFailure, wantTraces: 1, wantTraced: []bool{true, true, true}},
		{mode: config.TraceOnFirstRetry, wantTraces: 1, wantTraced: []bool{false, true, false}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r, env, _ := newTestRunner(t, onlyProject(), Options{
				Workers:  1,
				Retries:  1,
				Trace:    tt.mode,
				TraceDir: "report",
			})

			var calls int
			_, results, err := r.Run(context.Background(), []Group{{Spec: "a.spec", Tests: []Test{
				{Name: "flaky", Fn: func(*T) error {
					calls++
					if calls == 1 {
						return errors.New("once")
					}
					return nil
				}},
				{Name: "ok", Fn: pass},
			}}})
			require.NoError(t, err)

			var traced []bool
			for _, req := range env.requests {
				traced = append(traced, req.Trace)
			}
			assert.Equal(t, tt.wantTraced, traced)
			assert.Len(t, env.traces, tt.wantTraces)

			got := byTest(results)
			if tt.mode == config.TraceOnFirstRetry {
				assert.Equal(t, "report/traces/all-a-spec-flaky-retry1.zip", got["all/flaky"].TracePath)
			}
		})
	}
}

func TestRun_CancelledSkipsRemaining(t *testing.T) {
	projects := []Project{
		{Name: "first", TestMatch: []string{"a.spec"}},
		{Name: "second", TestMatch: []string{"b.spec"}, Dependencies: []string{"first"}},
	}
	r, _, _ := newTestRunner(t, projects, Options{Workers: 1})

	ctx, cancel := context.WithCancel(context.Background())
	_, results, err := r.Run(ctx, []Group{
		{Spec: "a.spec", Tests: []Test{{Name: "cancels", Fn: func(*T) error { cancel(); return nil }}}},
		{Spec: "b.spec", Tests: []Test{{Name: "never", Fn: pass}}},
	})
	require.NoError(t, err)

	got := byTest(results)
	assert.Equal(t, models.StatusPassed, got["first/cancels"].Status)
	assert.Equal(t, models.StatusSkipped, got["second/never"].Status)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"nil", nil, KindNone},
		{"hook", &HookError{Hook: "beforeEach", Err: errors.New("x")}, KindHook},
		{"per-test deadline", fmt.Errorf("%w after 30s", ErrTestTimeout), KindTimeout},
		{"driver timeout", fmt.Errorf("click: %w", playwright.ErrTimeout), KindTimeout},
		{"comment not found", fmt.Errorf("add: %w", pages.ErrCommentNotFound), KindVerification},
		{
			"comment never rendered",
			fmt.Errorf("%s: %w: %w", "addCommentAndVerifyTimestamp", pages.ErrCommentNotFound,
				fmt.Errorf("waiting for comment: %w", playwright.ErrTimeout)),
			KindVerification,
		},
		{"timestamp out of range", pages.ErrTimestampOutOfRange, KindVerification},
		{"other", errors.New("boom"), KindError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestResult_Record(t *testing.T) {
	res := &Result{
		Project:  "Logged in tests",
		Spec:     "tasks.spec",
		Group:    "Tasks page",
		Test:     "should create a new task",
		Status:   models.StatusFailed,
		Kind:     KindTimeout,
		Attempts: 3,
		Duration: time.Second,
		Err:      errors.New("row not visible"),
	}

	rec := res.Record("run-1")
	assert.Equal(t, "run-1", rec.RunID)
	assert.Equal(t, "Tasks page > should create a new task", rec.Title)
	assert.Equal(t, "timeout", rec.FailureKind)
	assert.Equal(t, "row not visible", rec.Error)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "tasks.spec > Tasks page > should create a new task", res.FullTitle())
}
