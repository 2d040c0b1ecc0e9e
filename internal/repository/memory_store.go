package repository

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/taskflow-qa/taskflow-e2e/internal/models"
)

// Store errors
var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email has already been taken")
)

// MemoryStore keeps the stand-in application's users, tasks and comments in
// memory. Values are copied in and out so callers never share pointers.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]models.User
	emails   map[string]string
	tasks    map[string]models.Task
	comments map[string][]models.Comment
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]models.User),
		emails:   make(map[string]string),
		tasks:    make(map[string]models.Task),
		comments: make(map[string][]models.Comment),
	}
}

// CreateUser stores a new user, rejecting duplicate emails
func (s *MemoryStore) CreateUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, ok := s.emails[email]; ok {
		return ErrEmailTaken
	}
	s.users[user.ID] = *user
	s.emails[email] = user.ID
	return nil
}

// GetUserByID returns the user with the given id
func (s *MemoryStore) GetUserByID(id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

// GetUserByEmail returns the user with the given email, case-insensitively
func (s *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrNotFound
	}
	user := s.users[id]
	return &user, nil
}

// ListUsers returns every user ordered by name
func (s *MemoryStore) ListUsers() ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

// CreateTask stores a new task
func (s *MemoryStore) CreateTask(task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[task.ID] = *task
	return nil
}

// GetTask returns the task with the given id
func (s *MemoryStore) GetTask(id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &task, nil
}

// UpdateTask replaces a stored task
func (s *MemoryStore) UpdateTask(task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; !ok {
		return ErrNotFound
	}
	s.tasks[task.ID] = *task
	return nil
}

// DeleteTask removes a task and its comments
func (s *MemoryStore) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	delete(s.comments, id)
	return nil
}

// ListTasksForUser returns the tasks the user created or is assigned,
// oldest first. Ordering for display is the service's job.
func (s *MemoryStore) ListTasksForUser(userID string) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tasks []models.Task
	for _, t := range s.tasks {
		if t.VisibleTo(userID) {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) })
	return tasks, nil
}

// CreateComment stores a comment on an existing task
func (s *MemoryStore) CreateComment(comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[comment.TaskID]; !ok {
		return ErrNotFound
	}
	s.comments[comment.TaskID] = append(s.comments[comment.TaskID], *comment)
	return nil
}

// ListComments returns the comments of a task, oldest first
func (s *MemoryStore) ListComments(taskID string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := make([]models.Comment, len(s.comments[taskID]))
	copy(comments, s.comments[taskID])
	return comments, nil
}

// CountComments returns how many comments a task has
func (s *MemoryStore) CountComments(taskID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.comments[taskID]), nil
}
