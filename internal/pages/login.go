package pages

import (
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/taskflow-qa/taskflow-e2e/internal/models"
)

// LoginPage drives the login form and the navbar identity
type LoginPage struct {
	base
}

// NewLoginPage binds a LoginPage to page
func NewLoginPage(page playwright.Page, expectTimeout time.Duration) *LoginPage {
	return &LoginPage{base: newBase(page, expectTimeout)}
}

// Open navigates to the application root, which shows the login form to
// anonymous visitors
func (p *LoginPage) Open() error {
	_, err := p.page.Goto("/")
	return failedAction("open", "goto /", err)
}

// LoginAndVerify submits the login form and checks the navbar shows the user
func (p *LoginPage) LoginAndVerify(creds models.Credentials) error {
	const op = "loginAndVerify"

	if err := p.page.GetByTestId("login-email-field").Fill(creds.Email); err != nil {
		return failedAction(op, "fill email", err)
	}
	if err := p.page.GetByTestId("login-password-field").Fill(creds.Password); err != nil {
		return failedAction(op, "fill password", err)
	}
	if err := p.page.GetByTestId("login-submit-button").Click(); err != nil {
		return failedAction(op, "submit", err)
	}

	if err := p.expect.Locator(p.page.GetByTestId("navbar-username-label")).ToContainText(creds.Name); err != nil {
		return failedAssertion(op, "username label", err)
	}
	if err := p.expect.Locator(p.page.GetByTestId("navbar-logout-link")).ToBeVisible(); err != nil {
		return failedAssertion(op, "logout link", err)
	}
	return nil
}

// Logout clicks the navbar logout link and checks the login form is back
func (p *LoginPage) Logout() error {
	const op = "logout"

	if err := p.page.GetByTestId("navbar-logout-link").Click(); err != nil {
		return failedAction(op, "click logout", err)
	}
	if err := p.expect.Locator(p.page.GetByTestId("login-submit-button")).ToBeVisible(); err != nil {
		return failedAssertion(op, "login form", err)
	}
	return nil
}
