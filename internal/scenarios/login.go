package scenarios

import (
	"github.com/taskflow-qa/taskflow-e2e/internal/models"
	"github.com/taskflow-qa/taskflow-e2e/internal/pages"
	"github.com/taskflow-qa/taskflow-e2e/internal/runner"
)

func loginSpecs(s Settings) []runner.Group {
	return []runner.Group{
		{
			// The only writer of the saved session
			Spec: LoginSetup,
			Name: "Login page",
			Tests: []runner.Test{{
				Name: "should login with correct credentials",
				Fn: func(t *runner.T) error {
					f := t.Fixtures
					if err := f.LoginPage.Open(); err != nil {
						return err
					}
					if err := f.LoginPage.LoginAndVerify(models.Oliver); err != nil {
						return err
					}
					return f.Session.SaveStorageState(s.StorageState)
				},
			}},
		},
		{
			Spec: LoginPOMSpec,
			Name: "Login Page",
			Tests: []runner.Test{{
				Name: "Should login with the correct credentials",
				Fn: func(t *runner.T) error {
					login := pages.NewLoginPage(t.Fixtures.Page, s.ExpectTimeout)
					if err := login.Open(); err != nil {
						return err
					}
					return login.LoginAndVerify(models.Oliver)
				},
			}},
		},
		{
			Spec: LoginFixtureSpec,
			Name: "Login page",
			Tests: []runner.Test{
				{
					Name: "should login with correct credentials",
					Fn: func(t *runner.T) error {
						if err := t.Fixtures.LoginPage.Open(); err != nil {
							return err
						}
						return t.Fixtures.LoginPage.LoginAndVerify(models.Oliver)
					},
				},
				{
					Name: "should logout and see the login form again",
					Fn: func(t *runner.T) error {
						login := t.Fixtures.LoginPage
						if err := login.Open(); err != nil {
							return err
						}
						if err := login.LoginAndVerify(models.Sam); err != nil {
							return err
						}
						return login.Logout()
					},
				},
			},
		},
	}
}
