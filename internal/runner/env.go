package runner

import (
	"context"
	"errors"

	"github.com/taskflow-qa/taskflow-e2e/internal/fixtures"
)

// SessionRequest describes the session a test attempt needs
type SessionRequest struct {
	StorageState string
	Trace        bool
}

// Environment opens and closes test sessions
type Environment interface {
	Open(ctx context.Context, req SessionRequest) (*fixtures.Fixtures, error)
	// Close saves the trace to tracePath when one is recorded and the path is
	// not empty, then closes the session
	Close(f *fixtures.Fixtures, tracePath string) error
}

// BrowserEnvironment opens real browser sessions
type BrowserEnvironment struct {
	Opener  fixtures.Opener
	Options fixtures.SessionOptions
}

// Open creates a session with the shared options and the request's state
func (e *BrowserEnvironment) Open(ctx context.Context, req SessionRequest) (*fixtures.Fixtures, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := e.Options
	opts.StorageState = req.StorageState
	opts.Trace = req.Trace

	s, err := e.Opener.NewSession(opts)
	if err != nil {
		return nil, err
	}
	return fixtures.Bind(s, opts), nil
}

// Close stops tracing and closes the session
func (e *BrowserEnvironment) Close(f *fixtures.Fixtures, tracePath string) error {
	if f == nil || f.Session == nil {
		return nil
	}
	return errors.Join(f.Session.StopTracing(tracePath), f.Session.Close())
}
