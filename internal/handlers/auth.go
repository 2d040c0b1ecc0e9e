package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/taskflow-qa/taskflow-e2e/internal/models"
	"github.com/taskflow-qa/taskflow-e2e/internal/repository"
	"github.com/taskflow-qa/taskflow-e2e/internal/services"
)

// SessionCookie is the name of the cookie carrying the session token
const SessionCookie = "taskflow_session"

type userContextKey struct{}

// AuthHandler serves login, signup and logout
type AuthHandler struct {
	templates Templates
	auth      services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(templates Templates, auth services.AuthService) *AuthHandler {
	return &AuthHandler{
		templates: templates,
		auth:      auth,
	}
}

// currentUser returns the user of the request's session, or nil
func (h *AuthHandler) currentUser(r *http.Request) *models.User {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	user, err := h.auth.UserForSession(cookie.Value)
	if err != nil {
		return nil
	}
	return user
}

// RequireUser redirects anonymous requests to the login page
func (h *AuthHandler) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := h.currentUser(r)
		if user == nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey{}, user)))
	})
}

// userFrom returns the user stored by RequireUser
func userFrom(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey{}).(*models.User)
	return user
}

// LoginPage handles GET /
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.currentUser(r) != nil {
		http.Redirect(w, r, "/tasks", http.StatusSeeOther)
		return
	}

	data := PageData{}
	if r.URL.Query().Get("registered") != "" {
		data.Notice = "Signup successful. Please log in."
	}
	h.templates.render(w, "login", http.StatusOK, data)
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")

	token, user, err := h.auth.Login(email, r.PostFormValue("password"))
	if err != nil {
		h.templates.render(w, "login", http.StatusUnauthorized, PageData{
			Email: email,
			Error: "Incorrect email or password",
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	log.Printf("User logged in: %s", user.Email)
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

// SignupPage handles GET /signup
func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.templates.render(w, "signup", http.StatusOK, PageData{})
}

// Signup handles POST /signup. A new account is sent back to the login page.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	name := r.PostFormValue("name")
	email := r.PostFormValue("email")

	_, err := h.auth.Register(name, email, r.PostFormValue("password"), r.PostFormValue("password_confirmation"))
	if err != nil {
		h.templates.render(w, "signup", http.StatusUnprocessableEntity, PageData{
			Name:  name,
			Email: email,
			Error: signupErrorMessage(err),
		})
		return
	}

	log.Printf("User signed up: %s", email)
	http.Redirect(w, r, "/?registered=1", http.StatusSeeOther)
}

// signupErrorMessage returns a user-friendly message for a registration error
func signupErrorMessage(err error) string {
	switch {
	case errors.Is(err, repository.ErrEmailTaken):
		return "Email has already been taken"
	case errors.Is(err, models.ErrPasswordMismatch):
		return "Password confirmation doesn't match Password"
	case errors.Is(err, models.ErrPasswordTooShort):
		return "Password is too short"
	case errors.Is(err, models.ErrInvalidEmail):
		return "Email is invalid"
	case errors.Is(err, models.ErrInvalidName):
		return "Name can't be blank"
	default:
		log.Printf("Error registering user: %v", err)
		return "Something went wrong"
	}
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		h.auth.Logout(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:   SessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
