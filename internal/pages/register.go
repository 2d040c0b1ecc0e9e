package pages

import (
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/taskflow-qa/taskflow-e2e/internal/models"
)

// RegisterPage drives the signup form
type RegisterPage struct {
	base
}

// NewRegisterPage binds a RegisterPage to page
func NewRegisterPage(page playwright.Page, expectTimeout time.Duration) *RegisterPage {
	return &RegisterPage{base: newBase(page, expectTimeout)}
}

// Open follows the register link of the login page
func (p *RegisterPage) Open() error {
	const op = "openRegister"

	if err := p.page.GetByTestId("login-register-link").Click(); err != nil {
		return failedAction(op, "click register link", err)
	}
	if err := p.expect.Locator(p.page.GetByTestId("signup-submit-button")).ToBeVisible(); err != nil {
		return failedAssertion(op, "signup form", err)
	}
	return nil
}

// Register fills and submits the signup form
func (p *RegisterPage) Register(creds models.Credentials) error {
	const op = "register"

	fields := []struct {
		testID string
		value  string
	}{
		{"signup-name-field", creds.Name},
		{"signup-email-field", creds.Email},
		{"signup-password-field", creds.Password},
		{"signup-password-confirmation-field", creds.Password},
	}
	for _, f := range fields {
		if err := p.page.GetByTestId(f.testID).Fill(f.value); err != nil {
			return failedAction(op, "fill "+f.testID, err)
		}
	}

	if err := p.page.GetByTestId("signup-submit-button").Click(); err != nil {
		return failedAction(op, "submit", err)
	}
	// Signup sends the new user back to the login form
	if err := p.expect.Locator(p.page.GetByTestId("login-submit-button")).ToBeVisible(); err != nil {
		return failedAssertion(op, "back on login form", err)
	}
	return nil
}
