package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"path/filepath"

	"github.com/taskflow-qa/taskflow-e2e/internal/models"
	"github.com/taskflow-qa/taskflow-e2e/internal/services"
)

// CommentTimeLayout is how comment timestamps are rendered
const CommentTimeLayout = "1/2/2006, 3:04:05 PM"

var pageNames = []string{"login", "signup", "dashboard", "task_form", "task_detail"}

// Templates holds one parsed template set per page, each sharing layout.html
type Templates map[string]*template.Template

// LoadTemplates parses every page template found in dir
func LoadTemplates(dir string) (Templates, error) {
	layout := filepath.Join(dir, "layout.html")

	tmpls := make(Templates, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFiles(layout, filepath.Join(dir, name+".html"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		tmpls[name] = tmpl
	}
	return tmpls, nil
}

// PageData is the data every page template receives
type PageData struct {
	User   *models.User
	Notice string
	Error  string

	// Form values echoed back after a validation error
	Name       string
	Email      string
	Title      string
	AssigneeID string

	Users     []models.User
	Dashboard *services.Dashboard
	Detail    *services.TaskDetail
	Comments  []CommentData
}

// CommentData is a comment with its timestamp already formatted
type CommentData struct {
	Body      string
	Author    string
	Timestamp string
}

func (t Templates) render(w http.ResponseWriter, name string, status int, data PageData) {
	tmpl, ok := t[name]
	if !ok {
		log.Printf("Unknown template: %s", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Render to a buffer so a template error never leaves a half-written page
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
