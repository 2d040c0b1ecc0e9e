package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/taskflow-qa/taskflow-e2e/internal/models"
	"github.com/taskflow-qa/taskflow-e2e/internal/repository"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	ListUsers() ([]models.User, error)
}

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrSessionNotFound    = errors.New("session not found")
)

// AuthService handles sign up, login and browser sessions
type AuthService interface {
	Register(name, email, password, confirmation string) (*models.User, error)
	Login(email, password string) (string, *models.User, error)
	Logout(token string)
	UserForSession(token string) (*models.User, error)
	Users() ([]models.User, error)
}

// AuthServiceImpl implements AuthService with in-memory session tokens
type AuthServiceImpl struct {
	userRepo UserRepository

	mu       sync.RWMutex
	sessions map[string]string
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserRepository) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo: userRepo,
		sessions: make(map[string]string),
	}
}

// Register creates an account; it does not log the user in
func (s *AuthServiceImpl) Register(name, email, password, confirmation string) (*models.User, error) {
	if password != confirmation {
		return nil, models.ErrPasswordMismatch
	}

	user, err := models.NewUser(name, email, password)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	return user, nil
}

// Login checks the credentials and opens a session
func (s *AuthServiceImpl) Login(email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.CheckPassword(password) {
		return "", nil, ErrInvalidCredentials
	}

	token := uuid.New().String()

	s.mu.Lock()
	s.sessions[token] = user.ID
	s.mu.Unlock()

	return token, user, nil
}

// Logout closes a session; unknown tokens are ignored
func (s *AuthServiceImpl) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// UserForSession returns the user owning the session token
func (s *AuthServiceImpl) UserForSession(token string) (*models.User, error) {
	s.mu.RLock()
	userID, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session user: %w", err)
	}
	return user, nil
}

// Users returns every account, used to fill the assignee dropdown
func (s *AuthServiceImpl) Users() ([]models.User, error) {
	users, err := s.userRepo.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// SeedUsers registers the given accounts, skipping ones that already exist
func SeedUsers(auth AuthService, accounts []models.Credentials) error {
	for _, acc := range accounts {
		if _, err := auth.Register(acc.Name, acc.Email, acc.Password, acc.Password); err != nil {
			if errors.Is(err, repository.ErrEmailTaken) {
				continue
			}
			return fmt.Errorf("failed to seed %s: %w", acc.Email, err)
		}
	}
	return nil
}
