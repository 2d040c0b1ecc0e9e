package scenarios

import (
	"github.com/taskflow-qa/taskflow-e2e/internal/models"
	"github.com/taskflow-qa/taskflow-e2e/internal/pages"
	"github.com/taskflow-qa/taskflow-e2e/internal/runner"
)

func registerSpecs(s Settings) []runner.Group {
	return []runner.Group{
		{
			Spec: RegisterPOMSpec,
			Name: "Register page",
			Tests: []runner.Test{{
				Name: "Should register a new user",
				Fn: func(t *runner.T) error {
					creds := models.RandomCredentials()
					login := pages.NewLoginPage(t.Fixtures.Page, s.ExpectTimeout)
					register := pages.NewRegisterPage(t.Fixtures.Page, s.ExpectTimeout)

					if err := login.Open(); err != nil {
						return err
					}
					if err := register.Open(); err != nil {
						return err
					}
					if err := register.Register(creds); err != nil {
						return err
					}
					return login.LoginAndVerify(creds)
				},
			}},
		},
		{
			Spec: RegisterFixtureSpec,
			Name: "Register page",
			Tests: []runner.Test{{
				Name: "Should register a new user",
				Fn: func(t *runner.T) error {
					f := t.Fixtures
					var creds models.Credentials

					if err := t.Step("step 1: generate random user data", func() error {
						creds = models.RandomCredentials()
						t.Logf("registering %s", creds.Email)
						return nil
					}); err != nil {
						return err
					}
					if err := t.Step("step 2: navigate to registration page", func() error {
						if err := f.LoginPage.Open(); err != nil {
							return err
						}
						return f.RegisterPage.Open()
					}); err != nil {
						return err
					}
					if err := t.Step("step 3: fill in and submit registration form", func() error {
						return f.RegisterPage.Register(creds)
					}); err != nil {
						return err
					}
					return t.Step("step 4: verify successful login with new credentials", func() error {
						return f.LoginPage.LoginAndVerify(creds)
					})
				},
			}},
		},
	}
}
