package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/taskflow-qa/taskflow-e2e/internal/services"
)

// RouterDeps holds everything the stand-in application needs to serve
type RouterDeps struct {
	TemplateDir string
	Auth        services.AuthService
	Tasks       services.TaskService
	Location    *time.Location
}

// NewRouter builds the stand-in application's routes
func NewRouter(deps RouterDeps) (http.Handler, error) {
	templates, err := LoadTemplates(deps.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	authHandler := NewAuthHandler(templates, deps.Auth)
	taskHandler := NewTaskHandler(templates, deps.Auth, deps.Tasks, deps.Location)
	private := func(fn http.HandlerFunc) http.Handler {
		return authHandler.RequireUser(fn)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", authHandler.LoginPage)
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("GET /signup", authHandler.SignupPage)
	mux.HandleFunc("POST /signup", authHandler.Signup)
	mux.HandleFunc("POST /logout", authHandler.Logout)

	mux.Handle("GET /tasks", private(taskHandler.Dashboard))
	mux.Handle("GET /tasks/new", private(taskHandler.NewTask))
	mux.Handle("POST /tasks", private(taskHandler.CreateTask))
	mux.Handle("GET /tasks/{id}", private(taskHandler.TaskDetail))
	mux.Handle("POST /tasks/{id}/comments", private(taskHandler.AddComment))
	mux.Handle("POST /tasks/{id}/complete", private(taskHandler.Transition(deps.Tasks.CompleteTask)))
	mux.Handle("POST /tasks/{id}/reopen", private(taskHandler.Transition(deps.Tasks.ReopenTask)))
	mux.Handle("POST /tasks/{id}/star", private(taskHandler.Transition(deps.Tasks.ToggleStar)))
	mux.Handle("POST /tasks/{id}/delete", private(taskHandler.Transition(deps.Tasks.DeleteTask)))

	return mux, nil
}
