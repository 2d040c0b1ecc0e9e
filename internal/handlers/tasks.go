package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/taskflow-qa/taskflow-e2e/internal/models"
	"github.com/taskflow-qa/taskflow-e2e/internal/services"
)

// TaskHandler serves the dashboard, the task form and task pages
type TaskHandler struct {
	templates Templates
	auth      services.AuthService
	tasks     services.TaskService
	location  *time.Location
}

// NewTaskHandler creates a new task handler. Comment timestamps are rendered
// in location.
func NewTaskHandler(templates Templates, auth services.AuthService, tasks services.TaskService, location *time.Location) *TaskHandler {
	if location == nil {
		location = time.UTC
	}
	return &TaskHandler{
		templates: templates,
		auth:      auth,
		tasks:     tasks,
		location:  location,
	}
}

// Dashboard handles GET /tasks
func (h *TaskHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	dashboard, err := h.tasks.Dashboard(user.ID)
	if err != nil {
		log.Printf("Error loading dashboard: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.templates.render(w, "dashboard", http.StatusOK, PageData{
		User:      user,
		Dashboard: dashboard,
	})
}

// NewTask handles GET /tasks/new
func (h *TaskHandler) NewTask(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, http.StatusOK, PageData{User: userFrom(r)})
}

func (h *TaskHandler) renderForm(w http.ResponseWriter, status int, data PageData) {
	users, err := h.auth.Users()
	if err != nil {
		log.Printf("Error listing users: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	data.Users = users
	h.templates.render(w, "task_form", status, data)
}

// CreateTask handles POST /tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	title := r.PostFormValue("title")
	assigneeID := r.PostFormValue("assignee_id")

	if _, err := h.tasks.CreateTask(user.ID, title, assigneeID); err != nil {
		h.renderForm(w, http.StatusUnprocessableEntity, PageData{
			User:       user,
			Title:      title,
			AssigneeID: assigneeID,
			Error:      taskErrorMessage(err),
		})
		return
	}

	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

// TaskDetail handles GET /tasks/{id}
func (h *TaskHandler) TaskDetail(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	detail, err := h.tasks.GetTaskDetail(user.ID, r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}

	comments := make([]CommentData, 0, len(detail.Comments))
	for _, c := range detail.Comments {
		comments = append(comments, CommentData{
			Body:      c.Body,
			Author:    c.AuthorName,
			Timestamp: c.CreatedAt.In(h.location).Format(CommentTimeLayout),
		})
	}

	h.templates.render(w, "task_detail", http.StatusOK, PageData{
		User:     user,
		Detail:   detail,
		Comments: comments,
	})
}

// AddComment handles POST /tasks/{id}/comments
func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	taskID := r.PathValue("id")

	if _, err := h.tasks.AddComment(user.ID, taskID, r.PostFormValue("body")); err != nil {
		h.fail(w, err)
		return
	}

	http.Redirect(w, r, "/tasks/"+taskID, http.StatusSeeOther)
}

// Transition returns the handler for a POST /tasks/{id}/<action> route that
// applies fn and goes back to the dashboard
func (h *TaskHandler) Transition(fn func(userID, taskID string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(userFrom(r).ID, r.PathValue("id")); err != nil {
			h.fail(w, err)
			return
		}
		http.Redirect(w, r, "/tasks", http.StatusSeeOther)
	}
}

// fail maps a service error to a status code
func (h *TaskHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		http.Error(w, "Task not found", http.StatusNotFound)
	case errors.Is(err, models.ErrTaskAlreadyCompleted),
		errors.Is(err, models.ErrTaskNotCompleted),
		errors.Is(err, models.ErrInvalidStatusTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrEmptyComment), errors.Is(err, models.ErrCommentTooLong):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		log.Printf("Error handling task request: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// taskErrorMessage returns a user-friendly message for a task form error
func taskErrorMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidTitle):
		return "Title can't be blank"
	case errors.Is(err, models.ErrTitleTooLong):
		return "Title is too long"
	case errors.Is(err, models.ErrMissingAssignee):
		return "Assignee must be selected"
	default:
		log.Printf("Error creating task: %v", err)
		return "Something went wrong"
	}
}
