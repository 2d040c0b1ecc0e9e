package scenarios

import (
	"github.com/brianvoe/gofakeit/v6"
	"github.com/taskflow-qa/taskflow-e2e/internal/fixtures"
	"github.com/taskflow-qa/taskflow-e2e/internal/models"
	"github.com/taskflow-qa/taskflow-e2e/internal/pages"
	"github.com/taskflow-qa/taskflow-e2e/internal/runner"
)

func randomComment() string {
	return gofakeit.Sentence(8)
}

func commentSpecs() []runner.Group {
	return []runner.Group{{
		Spec:       CommentsSpec,
		Name:       "Task comments",
		BeforeEach: []runner.Hook{openDashboardWithNewTaskName},
		Tests: []runner.Test{
			{
				Name: "should add a comment as the creator",
				Fn: func(t *runner.T) error {
					tasks := t.Fixtures.TaskPage
					name := taskName(t)
					comment := randomComment()

					if err := tasks.CreateTaskAndVerify(pages.TaskInput{Name: name, Assignee: models.Sam.Name}); err != nil {
						return err
					}
					if err := tasks.AddCommentAndVerifyTimestamp(name, comment); err != nil {
						return err
					}
					return tasks.VerifyCommentCountIncrease(name, 1)
				},
			},
			{
				Name: "should show comments from the creator and the assignee to both",
				Fn: func(t *runner.T) error {
					oliver := t.Fixtures
					name := taskName(t)
					first, second := randomComment(), randomComment()

					if err := t.Step("creator adds a comment", func() error {
						if err := oliver.TaskPage.CreateTaskAndVerify(pages.TaskInput{Name: name, Assignee: models.Sam.Name}); err != nil {
							return err
						}
						if err := oliver.TaskPage.AddCommentAndVerifyTimestamp(name, first); err != nil {
							return err
						}
						return oliver.TaskPage.VerifyCommentCountIncrease(name, 1)
					}); err != nil {
						return err
					}

					if err := t.Step("assignee sees it and replies", func() error {
						return t.WithSession(func(sam *fixtures.Fixtures) error {
							if err := sam.LoginPage.Open(); err != nil {
								return err
							}
							if err := sam.LoginPage.LoginAndVerify(models.Sam); err != nil {
								return err
							}
							if err := sam.TaskPage.VerifyCommentCountIncrease(name, 1); err != nil {
								return err
							}
							if err := sam.TaskPage.AddCommentAndVerifyTimestamp(name, second); err != nil {
								return err
							}
							if err := sam.TaskPage.VerifyCommentVisible(name, first); err != nil {
								return err
							}
							return sam.TaskPage.VerifyCommentCountIncrease(name, 2)
						})
					}); err != nil {
						return err
					}

					return t.Step("creator sees both comments", func() error {
						if err := oliver.TaskPage.VerifyCommentCountIncrease(name, 2); err != nil {
							return err
						}
						if err := oliver.TaskPage.VerifyCommentVisible(name, first); err != nil {
							return err
						}
						return oliver.TaskPage.VerifyCommentVisible(name, second)
					})
				},
			},
		},
	}}
}
