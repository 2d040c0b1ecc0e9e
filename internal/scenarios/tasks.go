package scenarios

import (
	"github.com/taskflow-qa/taskflow-e2e/internal/models"
	"github.com/taskflow-qa/taskflow-e2e/internal/pages"
	"github.com/taskflow-qa/taskflow-e2e/internal/runner"
)

const taskNameKey = "taskName"

// openDashboardWithNewTaskName is the before each hook of the task specs.
// The saved session lands on the dashboard.
func openDashboardWithNewTaskName(t *runner.T) error {
	t.Values[taskNameKey] = models.RandomTaskName()
	return t.Fixtures.LoginPage.Open()
}

// taskName returns the name generated by the before each hook
func taskName(t *runner.T) string {
	name, _ := t.Values[taskNameKey].(string)
	return name
}

func taskSpecs() []runner.Group {
	return []runner.Group{
		{
			Spec:       TasksSpec,
			Name:       "Tasks page",
			BeforeEach: []runner.Hook{openDashboardWithNewTaskName},
			Tests: []runner.Test{
				{
					Name: "should create a new task with creator as the assignee",
					Fn: func(t *runner.T) error {
						return t.Fixtures.TaskPage.CreateTaskAndVerify(pages.TaskInput{
							Name:     taskName(t),
							Assignee: models.Oliver.Name,
						})
					},
				},
				{
					Name: "should be able to mark a task as completed",
					Fn: func(t *runner.T) error {
						tasks := t.Fixtures.TaskPage
						name := taskName(t)
						if err := tasks.CreateTaskAndVerify(pages.TaskInput{Name: name}); err != nil {
							return err
						}
						if err := tasks.MarkTaskAsCompleteAndVerify(name); err != nil {
							return err
						}
						// Completing again is a no-op
						return tasks.MarkTaskAsCompleteAndVerify(name)
					},
				},
				{
					Name: "should be able to delete a completed task",
					Fn: func(t *runner.T) error {
						tasks := t.Fixtures.TaskPage
						name := taskName(t)
						if err := tasks.CreateTaskAndVerify(pages.TaskInput{Name: name}); err != nil {
							return err
						}
						if err := tasks.MarkTaskAsCompleteAndVerify(name); err != nil {
							return err
						}
						if err := tasks.DeleteCompletedTaskAndVerify(name); err != nil {
							return err
						}
						return tasks.VerifyTaskAbsent(name)
					},
				},
				{
					Name: "should create a new task with a different user as the assignee",
					Fn: func(t *runner.T) error {
						name := taskName(t)
						if err := t.Fixtures.TaskPage.CreateTaskAndVerify(pages.TaskInput{
							Name:     name,
							Assignee: models.Sam.Name,
						}); err != nil {
							return err
						}

						sam, err := t.NewSession()
						if err != nil {
							return err
						}
						if err := sam.LoginPage.Open(); err != nil {
							return err
						}
						if err := sam.LoginPage.LoginAndVerify(models.Sam); err != nil {
							return err
						}
						return sam.TaskPage.VerifyTaskVisible(name)
					},
				},
			},
		},
		{
			// Starring reorders the shared pending table, so these run alone
			Spec:       TasksSpec,
			Name:       "Starring tasks",
			Mode:       runner.Serial,
			BeforeEach: []runner.Hook{openDashboardWithNewTaskName},
			Tests: []runner.Test{
				{
					Name: "should be able to star a pending task",
					Fn: func(t *runner.T) error {
						tasks := t.Fixtures.TaskPage
						name := taskName(t)
						if err := tasks.CreateTaskAndVerify(pages.TaskInput{Name: name}); err != nil {
							return err
						}
						return tasks.StarTaskAndVerify(name)
					},
				},
				{
					Name: "should be able to un-star a pending task",
					Fn: func(t *runner.T) error {
						tasks := t.Fixtures.TaskPage
						name := taskName(t)
						if err := tasks.CreateTaskAndVerify(pages.TaskInput{Name: name}); err != nil {
							return err
						}
						if err := tasks.StarTaskAndVerify(name); err != nil {
							return err
						}
						return tasks.UnstarTaskAndVerify(name)
					},
				},
			},
		},
	}
}
