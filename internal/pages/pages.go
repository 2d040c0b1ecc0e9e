// Package pages holds the Page Objects that drive the task application
// through the browser. Every operation performs the minimal UI actions and
// then asserts the resulting state, returning an error that names the
// operation.
package pages

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/playwright-community/playwright-go"
)

// DefaultExpectTimeout is how long assertions poll when no timeout is given
const DefaultExpectTimeout = 5 * time.Second

// Verification errors
var (
	// ErrVerification is the parent of every explicit check a page object makes
	ErrVerification = errors.New("verification failed")
	// ErrAssertionTimeout wraps a driver assertion that never became true
	ErrAssertionTimeout = errors.New("assertion timed out")

	ErrCommentNotFound     = fmt.Errorf("%w: comment not found", ErrVerification)
	ErrTimestampMalformed  = fmt.Errorf("%w: comment timestamp is malformed", ErrVerification)
	ErrTimestampOutOfRange = fmt.Errorf("%w: comment timestamp is out of range", ErrVerification)
)

// IsTimeout reports whether err comes from the driver giving up
func IsTimeout(err error) bool {
	return errors.Is(err, playwright.ErrTimeout) || errors.Is(err, ErrAssertionTimeout)
}

// IsVerification reports whether err is an explicit page object check
func IsVerification(err error) bool {
	return errors.Is(err, ErrVerification)
}

// base is shared by every page object
type base struct {
	page   playwright.Page
	expect playwright.PlaywrightAssertions
}

func newBase(page playwright.Page, expectTimeout time.Duration) base {
	if expectTimeout <= 0 {
		expectTimeout = DefaultExpectTimeout
	}
	return base{
		page:   page,
		expect: playwright.NewPlaywrightAssertions(float64(expectTimeout.Milliseconds())),
	}
}

// failedAssertion wraps a failed assertion so it is reported as a timeout of op
func failedAssertion(op, what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %s: %w: %w", op, what, ErrAssertionTimeout, err)
}

// failedAction wraps a failed driver action
func failedAction(op, what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %s: %w", op, what, err)
}

// nameMatcher matches a task name anywhere in an accessible name, ignoring case
func nameMatcher(name string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(name))
}
