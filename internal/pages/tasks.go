package pages

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// DefaultAssignee is picked when a task is created without an assignee
const DefaultAssignee = "Sam Smith"

const (
	pendingTable   = "tasks-pending-table"
	completedTable = "tasks-completed-table"
	pageLoader     = ".utils-pageloader"
)

// TaskInput describes a task to create
type TaskInput struct {
	Name     string
	Assignee string
}

// TaskPage drives the dashboard, the task form and the task detail page
type TaskPage struct {
	base
	location *time.Location
	now      func() time.Time
}

// NewTaskPage binds a TaskPage to page. Comment timestamps are read in
// location.
func NewTaskPage(page playwright.Page, expectTimeout time.Duration, location *time.Location) *TaskPage {
	if location == nil {
		location = time.Local
	}
	return &TaskPage{
		base:     newBase(page, expectTimeout),
		location: location,
		now:      time.Now,
	}
}

// row returns the row of table whose accessible name contains the task name
func (p *TaskPage) row(table, name string) playwright.Locator {
	return p.page.GetByTestId(table).GetByRole(*playwright.AriaRoleRow, playwright.LocatorGetByRoleOptions{
		Name: nameMatcher(name),
	})
}

// OpenDashboard goes to the task list through the navbar
func (p *TaskPage) OpenDashboard() error {
	const op = "openDashboard"

	if err := p.page.GetByTestId("navbar-todos-page-link").Click(); err != nil {
		return failedAction(op, "click todos link", err)
	}
	if err := p.expect.Locator(p.page.GetByTestId(pendingTable)).ToBeVisible(); err != nil {
		return failedAssertion(op, "pending table", err)
	}
	return nil
}

// CreateTaskAndVerify fills the task form and checks exactly one pending row
// carries the new task
func (p *TaskPage) CreateTaskAndVerify(input TaskInput) error {
	const op = "createTaskAndVerify"

	assignee := input.Assignee
	if assignee == "" {
		assignee = DefaultAssignee
	}

	if err := p.page.GetByTestId("navbar-add-todo-link").Click(); err != nil {
		return failedAction(op, "click add todo", err)
	}
	if err := p.page.GetByTestId("form-title-field").Fill(input.Name); err != nil {
		return failedAction(op, "fill title", err)
	}
	if err := p.page.Locator(`[class*="indicatorContainer"]`).First().Click(); err != nil {
		return failedAction(op, "open assignee dropdown", err)
	}
	option := p.page.Locator(`[class*="menu"]`).GetByText(assignee, playwright.LocatorGetByTextOptions{
		Exact: playwright.Bool(true),
	})
	if err := option.Click(); err != nil {
		return failedAction(op, "pick assignee "+assignee, err)
	}
	if err := p.page.GetByTestId("form-submit-button").Click(); err != nil {
		return failedAction(op, "submit", err)
	}

	row := p.row(pendingTable, input.Name)
	if err := p.expect.Locator(row).ToHaveCount(1); err != nil {
		return failedAssertion(op, "single pending row", err)
	}
	if err := row.ScrollIntoViewIfNeeded(); err != nil {
		return failedAction(op, "scroll to row", err)
	}
	if err := p.expect.Locator(row).ToContainText(input.Name); err != nil {
		return failedAssertion(op, "row text", err)
	}
	if err := p.expect.Locator(row).ToBeVisible(); err != nil {
		return failedAssertion(op, "row visible", err)
	}
	return nil
}

// MarkTaskAsCompleteAndVerify checks the pending checkbox of the task and
// verifies it moved to the completed table. A task that is already completed
// is left alone.
func (p *TaskPage) MarkTaskAsCompleteAndVerify(name string) error {
	const op = "markTaskAsCompleteAndVerify"

	completed := p.row(completedTable, name)
	count, err := completed.Count()
	if err != nil {
		return failedAction(op, "count completed rows", err)
	}
	if count > 0 {
		return nil
	}

	if err := p.page.Locator(pageLoader).WaitFor(playwright.LocatorWaitForOptions{
		State: playwright.WaitForSelectorStateHidden,
	}); err != nil {
		return failedAction(op, "wait for page loader", err)
	}

	pending := p.row(pendingTable, name)
	if err := pending.GetByTestId("pending-task-checkbox").Click(); err != nil {
		return failedAction(op, "check pending task", err)
	}

	if err := p.expect.Locator(completed).ToBeVisible(); err != nil {
		return failedAssertion(op, "completed row", err)
	}
	return nil
}

// DeleteCompletedTaskAndVerify deletes a completed task and checks it is not
// in the pending table
func (p *TaskPage) DeleteCompletedTaskAndVerify(name string) error {
	const op = "deleteCompletedTaskAndVerify"

	completed := p.row(completedTable, name)
	if err := completed.GetByTestId("completed-task-delete-link").Click(); err != nil {
		return failedAction(op, "click delete", err)
	}

	if err := p.expect.Locator(p.row(pendingTable, name)).Not().ToBeVisible(); err != nil {
		return failedAssertion(op, "pending row gone", err)
	}
	return nil
}

// StarTaskAndVerify stars a pending task and checks it moved to the top
func (p *TaskPage) StarTaskAndVerify(name string) error {
	const op = "starTaskAndVerify"

	star := p.row(pendingTable, name).GetByTestId("pending-task-star-or-unstar-link")
	if err := star.Click(); err != nil {
		return failedAction(op, "click star", err)
	}
	if err := p.expect.Locator(star).ToHaveClass(nameMatcher("ri-star-fill")); err != nil {
		return failedAssertion(op, "star filled", err)
	}

	// Row 0 is the header
	first := p.page.GetByTestId(pendingTable).GetByRole(*playwright.AriaRoleRow).Nth(1)
	if err := p.expect.Locator(first).ToContainText(name); err != nil {
		return failedAssertion(op, "starred task first", err)
	}
	return nil
}

// UnstarTaskAndVerify removes the star of a pending task
func (p *TaskPage) UnstarTaskAndVerify(name string) error {
	const op = "unstarTaskAndVerify"

	star := p.row(pendingTable, name).GetByTestId("pending-task-star-or-unstar-link")
	if err := star.Click(); err != nil {
		return failedAction(op, "click star", err)
	}
	if err := p.expect.Locator(star).ToHaveClass(nameMatcher("ri-star-line")); err != nil {
		return failedAssertion(op, "star outlined", err)
	}
	return nil
}

// openTask goes to the dashboard and follows the title link of a pending task
func (p *TaskPage) openTask(op, name string) error {
	if err := p.page.GetByTestId("navbar-todos-page-link").Click(); err != nil {
		return failedAction(op, "open dashboard", err)
	}
	link := p.row(pendingTable, name).GetByRole(*playwright.AriaRoleLink, playwright.LocatorGetByRoleOptions{
		Name: nameMatcher(name),
	})
	if err := link.Click(); err != nil {
		return failedAction(op, "open task", err)
	}
	if err := p.expect.Locator(p.page.GetByTestId("comments-text-field")).ToBeVisible(); err != nil {
		return failedAssertion(op, "task detail", err)
	}
	return nil
}

// AddCommentAndVerifyTimestamp posts a comment on a pending task and checks it
// is rendered with a timestamp close to the submission time
func (p *TaskPage) AddCommentAndVerifyTimestamp(name, comment string) error {
	const op = "addCommentAndVerifyTimestamp"

	if err := p.openTask(op, name); err != nil {
		return err
	}
	if err := p.page.GetByTestId("comments-text-field").Fill(comment); err != nil {
		return failedAction(op, "fill comment", err)
	}
	if err := p.page.GetByTestId("comments-submit-button").Click(); err != nil {
		return failedAction(op, "submit comment", err)
	}
	submittedAt := p.now()

	rendered := p.page.GetByText(commentMatcher(comment)).First()
	if err := rendered.WaitFor(); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrCommentNotFound, err)
	}
	text, err := rendered.TextContent()
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrCommentNotFound, err)
	}

	if _, err := CheckTimestamp(text, submittedAt, p.location); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// VerifyCommentCountIncrease goes back to the dashboard and checks the
// comment count cell of the task
func (p *TaskPage) VerifyCommentCountIncrease(name string, expected int) error {
	const op = "verifyCommentCountIncrease"

	if err := p.page.GetByTestId("navbar-todos-page-link").Click(); err != nil {
		return failedAction(op, "open dashboard", err)
	}

	// Cells: checkbox, title, assignee, comment count, star
	count := p.row(pendingTable, name).GetByRole(*playwright.AriaRoleCell).Nth(3)
	if err := p.expect.Locator(count).ToHaveText(fmt.Sprint(expected)); err != nil {
		return failedAssertion(op, "comment count", err)
	}
	return nil
}

// VerifyCommentVisible opens a pending task and checks the comment is shown
func (p *TaskPage) VerifyCommentVisible(name, comment string) error {
	const op = "verifyCommentVisible"

	if err := p.openTask(op, name); err != nil {
		return err
	}
	if err := p.expect.Locator(p.page.GetByText(comment).First()).ToBeVisible(); err != nil {
		return failedAssertion(op, "comment body", err)
	}
	return nil
}

// VerifyTaskVisible checks the dashboard lists the task as pending
func (p *TaskPage) VerifyTaskVisible(name string) error {
	const op = "verifyTaskVisible"

	row := p.row(pendingTable, name)
	if err := p.expect.Locator(row).ToHaveCount(1); err != nil {
		return failedAssertion(op, "single pending row", err)
	}
	if err := p.expect.Locator(row).ToBeVisible(); err != nil {
		return failedAssertion(op, "row visible", err)
	}
	return nil
}

// VerifyTaskAbsent checks neither table has a row for the task
func (p *TaskPage) VerifyTaskAbsent(name string) error {
	const op = "verifyTaskAbsent"

	for _, table := range []string{pendingTable, completedTable} {
		if err := p.expect.Locator(p.row(table, name)).ToHaveCount(0); err != nil {
			return failedAssertion(op, table, err)
		}
	}
	return nil
}
