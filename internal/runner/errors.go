package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskflow-qa/taskflow-e2e/internal/pages"
)

// FailureKind tells what went wrong in a failed test
type FailureKind string

// Failure kinds
const (
	KindNone         FailureKind = ""
	KindTimeout      FailureKind = "timeout"
	KindVerification FailureKind = "verification"
	KindHook         FailureKind = "hook"
	KindError        FailureKind = "error"
)

// Runner errors
var (
	ErrOnlyForbidden = errors.New("focused tests are forbidden")
	ErrTestTimeout   = errors.New("test timed out")
)

// HookError is a failure outside the test body: a before or after each hook,
// or opening the test's fixtures
type HookError struct {
	Hook string
	Err  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s: %v", e.Hook, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// Classify returns the failure kind of a test error
func Classify(err error) FailureKind {
	var hookErr *HookError
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &hookErr):
		return KindHook
	case errors.Is(err, ErrTestTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	// A page object may wrap the driver timeout that exposed the mismatch
	case pages.IsVerification(err):
		return KindVerification
	case pages.IsTimeout(err):
		return KindTimeout
	default:
		return KindError
	}
}
