// Package runner runs groups of browser tests through ordered projects on a
// bounded worker pool, with retries, serial groups, traces and reporters.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/taskflow-qa/taskflow-e2e/internal/config"
	"github.com/taskflow-qa/taskflow-e2e/internal/models"
)

// DefaultTimeout bounds a test attempt when Options.Timeout is zero
const DefaultTimeout = 30 * time.Second

// Options configure a Runner
type Options struct {
	BaseURL    string
	Workers    int
	Retries    int
	Timeout    time.Duration
	ForbidOnly bool
	Grep       *regexp.Regexp
	Trace      config.TraceMode
	TraceDir   string
	Env        Environment
	Reporters  []Reporter
}

// Runner executes groups of tests project by project
type Runner struct {
	opts     Options
	projects []Project

	reportMu sync.Mutex
}

// New orders the projects and applies option defaults
func New(projects []Project, opts Options) (*Runner, error) {
	if opts.Env == nil {
		return nil, errors.New("runner: environment is required")
	}
	ordered, err := OrderProjects(projects)
	if err != nil {
		return nil, err
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Trace == "" {
		opts.Trace = config.TraceOff
	}

	return &Runner{opts: opts, projects: ordered}, nil
}

// Projects returns the projects in run order
func (r *Runner) Projects() []Project {
	return r.projects
}

// job is the unit handed to a worker: one test, or a whole serial group
type job struct {
	group Group
	tests []Test
}

// Run executes every group matched by a project and returns the run totals
// with one result per test and project. The error is only for a run that
// could not start.
func (r *Runner) Run(ctx context.Context, groups []Group) (*models.RunRecord, []*Result, error) {
	groups, err := r.focus(groups)
	if err != nil {
		return nil, nil, err
	}

	plan := make(map[string][]job, len(r.projects))
	total := 0
	for _, p := range r.projects {
		jobs := r.jobsFor(p, groups)
		plan[p.Name] = jobs
		for _, j := range jobs {
			total += len(j.tests)
		}
	}

	run := models.NewRunRecord(r.opts.BaseURL)
	for _, rep := range r.opts.Reporters {
		if err := rep.OnBegin(run, total); err != nil {
			log.Printf("Reporter error on begin: %v", err)
		}
	}

	var results []*Result
	failed := make(map[string]bool)
	for _, p := range r.projects {
		var projectResults []*Result
		if reason := r.blocked(ctx, p, failed); reason != "" {
			log.Printf("Skipping project %q: %s", p.Name, reason)
			projectResults = r.skipAll(p, plan[p.Name], reason)
			// Dependents of a skipped project are skipped too
			failed[p.Name] = true
		} else {
			projectResults = r.runJobs(ctx, p, plan[p.Name])
		}

		for _, res := range projectResults {
			if res.Status.IsFailure() {
				failed[p.Name] = true
			}
			run.Count(res.Status)
		}
		results = append(results, projectResults...)
	}

	run.Finish()
	for _, rep := range r.opts.Reporters {
		if err := rep.OnEnd(run, results); err != nil {
			log.Printf("Reporter error on end: %v", err)
		}
	}
	return run, results, nil
}

// focus applies ForbidOnly, Only and Grep
func (r *Runner) focus(groups []Group) ([]Group, error) {
	var only []string
	for _, g := range groups {
		for _, t := range g.Tests {
			if t.Only {
				only = append(only, fullTitle(g.Spec, g.Name, t.Name))
			}
		}
	}
	if len(only) > 0 && r.opts.ForbidOnly {
		return nil, fmt.Errorf("%w: %s", ErrOnlyForbidden, strings.Join(only, ", "))
	}

	var out []Group
	for _, g := range groups {
		kept := g
		kept.Tests = nil
		for _, t := range g.Tests {
			if len(only) > 0 && !t.Only {
				continue
			}
			if r.opts.Grep != nil && !r.opts.Grep.MatchString(fullTitle(g.Spec, g.Name, t.Name)) {
				continue
			}
			kept.Tests = append(kept.Tests, t)
		}
		if len(kept.Tests) > 0 {
			out = append(out, kept)
		}
	}
	return out, nil
}

func (r *Runner) jobsFor(p Project, groups []Group) []job {
	var jobs []job
	for _, g := range groups {
		if !p.Matches(g.Spec) {
			continue
		}
		if g.Mode == Serial {
			jobs = append(jobs, job{group: g, tests: g.Tests})
			continue
		}
		for _, t := range g.Tests {
			jobs = append(jobs, job{group: g, tests: []Test{t}})
		}
	}
	return jobs
}

// blocked returns why a project cannot run, or an empty string
func (r *Runner) blocked(ctx context.Context, p Project, failed map[string]bool) string {
	if err := ctx.Err(); err != nil {
		return "run cancelled"
	}
	for _, dep := range p.Dependencies {
		if failed[dep] {
			return fmt.Sprintf("dependency %q failed", dep)
		}
	}
	return ""
}

func (r *Runner) skipAll(p Project, jobs []job, reason string) []*Result {
	var results []*Result
	for _, j := range jobs {
		for _, t := range j.tests {
			res := &Result{
				Project: p.Name,
				Spec:    j.group.Spec,
				Group:   j.group.Name,
				Test:    t.Name,
				Status:  models.StatusSkipped,
				Logs:    []string{"skipped: " + reason},
			}
			r.report(res)
			results = append(results, res)
		}
	}
	return results
}

// runJobs spreads the jobs over the workers and returns the results in job
// order
func (r *Runner) runJobs(ctx context.Context, p Project, jobs []job) []*Result {
	perJob := make([][]*Result, len(jobs))
	queue := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.opts.Workers && w < len(jobs); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				perJob[i] = r.runJob(ctx, p, jobs[i])
			}
		}()
	}
	for i := range jobs {
		queue <- i
	}
	close(queue)
	wg.Wait()

	var results []*Result
	for _, res := range perJob {
		results = append(results, res...)
	}
	return results
}

// runJob runs a job, retrying it as a whole while any of its tests fails
func (r *Runner) runJob(ctx context.Context, p Project, j job) []*Result {
	final := make([]*Result, len(j.tests))
	everFailed := make([]bool, len(j.tests))
	// last executed attempt of each test, kept when a retry skips the test
	lastRun := make([]*Result, len(j.tests))
	spent := make([]time.Duration, len(j.tests))

	for attempt := 0; attempt <= r.opts.Retries; attempt++ {
		failed := false
		for i, test := range j.tests {
			if failed || ctx.Err() != nil {
				if lastRun[i] != nil {
					final[i] = lastRun[i]
					continue
				}
				final[i] = &Result{
					Project:  p.Name,
					Spec:     j.group.Spec,
					Group:    j.group.Name,
					Test:     test.Name,
					Status:   models.StatusSkipped,
					Attempts: attempt + 1,
				}
				continue
			}

			res := r.runAttempt(ctx, p, j.group, test, attempt)
			spent[i] += res.Duration
			res.Duration = spent[i]
			res.Attempts = attempt + 1
			if res.Status.IsFailure() {
				failed = true
				everFailed[i] = true
			} else if everFailed[i] {
				res.Status = models.StatusFlaky
			}
			final[i] = res
			lastRun[i] = res
		}
		if !failed || ctx.Err() != nil {
			break
		}
		if attempt < r.opts.Retries {
			log.Printf("Retrying %s (attempt %d of %d)", fullTitle(j.group.Spec, j.group.Name, j.tests[0].Name), attempt+2, r.opts.Retries+1)
		}
	}

	for _, res := range final {
		r.report(res)
	}
	return final
}

// runAttempt runs one attempt of a test under the per-test timeout
func (r *Runner) runAttempt(ctx context.Context, p Project, g Group, test Test, attempt int) *Result {
	res := &Result{
		Project: p.Name,
		Spec:    g.Spec,
		Group:   g.Name,
		Test:    test.Name,
	}

	tctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()
	t := newT(tctx, r.opts.Env, p.Name, g.Spec, test.Name, attempt)

	trace := r.traces(attempt)
	release := func(failed bool) error {
		f := t.detach()
		if f == nil {
			return nil
		}
		path := ""
		if trace && (r.opts.Trace != config.TraceRetainOnFailure || failed) {
			path = r.tracePath(res, attempt)
		}
		err := r.opts.Env.Close(f, path)
		res.TracePath = path
		return err
	}

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- r.execute(t, p, g, test, trace, release)
	}()

	var err error
	select {
	case err = <-done:
	case <-tctx.Done():
		// Closing the sessions aborts whatever driver call the test is stuck in
		if cerr := errors.Join(release(true), t.closeExtras()); cerr != nil {
			log.Printf("Error releasing stopped test %q: %v", test.Name, cerr)
		}
		err = <-done
	}
	if errors.Is(tctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		err = fmt.Errorf("%w after %s", ErrTestTimeout, r.opts.Timeout)
	}

	res.Duration = time.Since(start)
	res.Err = err
	res.Kind = Classify(err)
	switch {
	case err == nil:
		res.Status = models.StatusPassed
	case errors.Is(err, ErrTestTimeout):
		res.Status = models.StatusTimedOut
	default:
		res.Status = models.StatusFailed
	}
	res.Steps, res.Logs = t.snapshot()
	return res
}

// execute opens the fixtures and runs hooks, body, cleanups in order
func (r *Runner) execute(t *T, p Project, g Group, test Test, trace bool, release func(failed bool) error) error {
	f, err := r.opts.Env.Open(t.ctx, SessionRequest{StorageState: p.StorageState, Trace: trace})
	if err != nil {
		return &HookError{Hook: "fixtures", Err: err}
	}
	if !t.attach(f) {
		r.opts.Env.Close(f, "")
		return t.ctx.Err()
	}

	var testErr error
	for _, hook := range g.BeforeEach {
		if err := safeCall(func() error { return hook(t) }); err != nil {
			testErr = &HookError{Hook: "beforeEach", Err: err}
			break
		}
	}
	if testErr == nil {
		testErr = safeCall(func() error { return test.Fn(t) })
	}

	var errs []error
	for _, hook := range g.AfterEach {
		if err := safeCall(func() error { return hook(t) }); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil && testErr == nil {
		testErr = &HookError{Hook: "afterEach", Err: err}
	}

	if err := t.runCleanups(); err != nil && testErr == nil {
		testErr = &HookError{Hook: "cleanup", Err: err}
	}
	if err := release(testErr != nil); err != nil && testErr == nil {
		testErr = &HookError{Hook: "fixtures", Err: err}
	}
	return testErr
}

// traces reports whether an attempt records a trace
func (r *Runner) traces(attempt int) bool {
	switch r.opts.Trace {
	case config.TraceOn, config.TraceRetainOnFailure:
		return true
	case config.TraceOnFirstRetry:
		return attempt == 1
	default:
		return false
	}
}

var unsafePathChars = regexp.MustCompile(`[^a-z0-9]+`)

func (r *Runner) tracePath(res *Result, attempt int) string {
	name := strings.Trim(unsafePathChars.ReplaceAllString(strings.ToLower(res.Project+" "+res.FullTitle()), "-"), "-")
	if attempt > 0 {
		name = fmt.Sprintf("%s-retry%d", name, attempt)
	}
	return filepath.Join(r.opts.TraceDir, "traces", name+".zip")
}

func (r *Runner) report(res *Result) {
	r.reportMu.Lock()
	defer r.reportMu.Unlock()

	for _, rep := range r.opts.Reporters {
		if err := rep.OnTestEnd(res); err != nil {
			log.Printf("Reporter error on %q: %v", res.FullTitle(), err)
		}
	}
}

// safeCall turns a panic in fn into an error
func safeCall(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn()
}
