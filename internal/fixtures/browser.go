// Package fixtures owns the browser and hands out isolated sessions with
// their Page Objects bound to them.
package fixtures

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/taskflow-qa/taskflow-e2e/internal/config"
	"github.com/taskflow-qa/taskflow-e2e/internal/pages"
)

// ErrUnknownBrowser is returned for a BROWSER value playwright doesn't ship
var ErrUnknownBrowser = errors.New("unknown browser")

// Browser owns the playwright driver and one launched browser
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// Launch starts playwright and the configured browser
func Launch(cfg *config.SuiteConfig) (*Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch cfg.Browser {
	case "", "chromium":
		browserType = pw.Chromium
	case "firefox":
		browserType = pw.Firefox
	case "webkit":
		browserType = pw.WebKit
	default:
		pw.Stop()
		return nil, fmt.Errorf("%w: %s", ErrUnknownBrowser, cfg.Browser)
	}

	browser, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		SlowMo:   playwright.Float(float64(cfg.SlowMo.Milliseconds())),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch %s: %w", browserType.Name(), err)
	}

	log.Printf("Launched %s (headless=%t)", browserType.Name(), cfg.Headless)
	return &Browser{pw: pw, browser: browser}, nil
}

// Close closes the browser and stops playwright
func (b *Browser) Close() error {
	var errs []error
	if err := b.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
	}
	if err := b.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
	}
	return errors.Join(errs...)
}

// SessionOptions configure a new browser context
type SessionOptions struct {
	BaseURL string
	// StorageState is a saved session file to start from. Empty means a
	// session with no cookies and no origins.
	StorageState  string
	TimezoneID    string
	Timeout       time.Duration
	ExpectTimeout time.Duration
	Location      *time.Location
	Trace         bool
}

// SessionOptionsFromConfig returns the options every test session shares
func SessionOptionsFromConfig(cfg *config.SuiteConfig) (SessionOptions, error) {
	loc, err := cfg.Location()
	if err != nil {
		return SessionOptions{}, err
	}
	return SessionOptions{
		BaseURL:       cfg.BaseURL,
		TimezoneID:    cfg.Timezone,
		Timeout:       cfg.Timeout,
		ExpectTimeout: cfg.ExpectTimeout,
		Location:      loc,
	}, nil
}

// Session is one isolated browser context with a single page
type Session struct {
	Context playwright.BrowserContext
	Page    playwright.Page

	tracing   bool
	closeOnce sync.Once
	closeErr  error
}

// NewSession opens a browser context and a page in it
func (b *Browser) NewSession(opts SessionOptions) (*Session, error) {
	ctxOpts := playwright.BrowserNewContextOptions{}
	if opts.BaseURL != "" {
		ctxOpts.BaseURL = playwright.String(opts.BaseURL)
	}
	if opts.TimezoneID != "" {
		ctxOpts.TimezoneId = playwright.String(opts.TimezoneID)
	}
	if opts.StorageState != "" {
		ctxOpts.StorageStatePath = playwright.String(opts.StorageState)
	} else {
		ctxOpts.StorageState = &playwright.OptionalStorageState{}
	}

	bctx, err := b.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	if opts.Timeout > 0 {
		bctx.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))
	}

	s := &Session{Context: bctx}
	if opts.Trace {
		if err := bctx.Tracing().Start(playwright.TracingStartOptions{
			Screenshots: playwright.Bool(true),
			Snapshots:   playwright.Bool(true),
		}); err != nil {
			bctx.Close()
			return nil, fmt.Errorf("failed to start tracing: %w", err)
		}
		s.tracing = true
	}

	page, err := bctx.NewPage()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	s.Page = page
	return s, nil
}

// SaveStorageState writes the session's cookies and origins to path
func (s *Session) SaveStorageState(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create storage state dir: %w", err)
	}
	if _, err := s.Context.StorageState(path); err != nil {
		return fmt.Errorf("failed to save storage state: %w", err)
	}
	return nil
}

// StopTracing stops a running trace and writes it to path. An empty path
// discards the trace.
func (s *Session) StopTracing(path string) error {
	if !s.tracing {
		return nil
	}
	s.tracing = false

	if path == "" {
		return s.Context.Tracing().Stop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create trace dir: %w", err)
	}
	if err := s.Context.Tracing().Stop(path); err != nil {
		return fmt.Errorf("failed to save trace: %w", err)
	}
	return nil
}

// Close closes the page then the context. Only the first call does anything.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.Page != nil {
			if err := s.Page.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close page: %w", err))
			}
		}
		if err := s.Context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// Fixtures are the Page Objects of one session
type Fixtures struct {
	Session      *Session
	Page         playwright.Page
	LoginPage    *pages.LoginPage
	TaskPage     *pages.TaskPage
	RegisterPage *pages.RegisterPage
}

// Bind creates the Page Objects for a session
func Bind(s *Session, opts SessionOptions) *Fixtures {
	return &Fixtures{
		Session:      s,
		Page:         s.Page,
		LoginPage:    pages.NewLoginPage(s.Page, opts.ExpectTimeout),
		TaskPage:     pages.NewTaskPage(s.Page, opts.ExpectTimeout, opts.Location),
		RegisterPage: pages.NewRegisterPage(s.Page, opts.ExpectTimeout),
	}
}

// Opener opens sessions; *Browser is the production implementation
type Opener interface {
	NewSession(opts SessionOptions) (*Session, error)
}

// WithSession opens a session, runs fn with its fixtures and closes the
// session whatever fn returns
func WithSession(o Opener, opts SessionOptions, fn func(*Fixtures) error) (err error) {
	s, err := o.NewSession(opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	return fn(Bind(s, opts))
}
