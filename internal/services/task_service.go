package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/taskflow-qa/taskflow-e2e/internal/models"
	"github.com/taskflow-qa/taskflow-e2e/internal/repository"
)

// TaskRepository defines the interface for task and comment persistence
type TaskRepository interface {
	CreateTask(task *models.Task) error
	GetTask(id string) (*models.Task, error)
	UpdateTask(task *models.Task) error
	DeleteTask(id string) error
	ListTasksForUser(userID string) ([]models.Task, error)
	CreateComment(comment *models.Comment) error
	ListComments(taskID string) ([]models.Comment, error)
	CountComments(taskID string) (int, error)
}

// ErrTaskNotFound is returned for unknown tasks and for tasks the user can't see
var ErrTaskNotFound = errors.New("task not found")

// TaskRow is one line of the pending or completed table
type TaskRow struct {
	Task         models.Task
	AssigneeName string
	CommentCount int
}

// Dashboard is the task list of one user
type Dashboard struct {
	Pending   []TaskRow
	Completed []TaskRow
}

// CommentView is a comment with its author resolved
type CommentView struct {
	Body       string
	AuthorName string
	CreatedAt  time.Time
}

// TaskDetail is what the task page shows
type TaskDetail struct {
	Task         models.Task
	CreatorName  string
	AssigneeName string
	Comments     []CommentView
}

// TaskService handles task business logic
type TaskService interface {
	CreateTask(creatorID, title, assigneeID string) (*models.Task, error)
	Dashboard(userID string) (*Dashboard, error)
	GetTaskDetail(userID, taskID string) (*TaskDetail, error)
	CompleteTask(userID, taskID string) error
	ReopenTask(userID, taskID string) error
	ToggleStar(userID, taskID string) error
	DeleteTask(userID, taskID string) error
	AddComment(userID, taskID, body string) (*models.Comment, error)
}

// TaskServiceImpl implements TaskService
type TaskServiceImpl struct {
	taskRepo TaskRepository
	userRepo UserRepository
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo TaskRepository, userRepo UserRepository) TaskService {
	return &TaskServiceImpl{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// CreateTask creates a pending task assigned to an existing user
func (s *TaskServiceImpl) CreateTask(creatorID, title, assigneeID string) (*models.Task, error) {
	task, err := models.NewTask(title, creatorID, assigneeID)
	if err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}

	if _, err := s.userRepo.GetUserByID(assigneeID); err != nil {
		return nil, fmt.Errorf("invalid task: %w", models.ErrMissingAssignee)
	}

	if err := s.taskRepo.CreateTask(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// Dashboard lists the user's tasks. Pending tasks show starred ones first,
// most recently starred on top, then newest first; completed tasks show the
// most recently completed first.
func (s *TaskServiceImpl) Dashboard(userID string) (*Dashboard, error) {
	tasks, err := s.taskRepo.ListTasksForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	dashboard := &Dashboard{}
	for _, task := range tasks {
		row, err := s.row(task)
		if err != nil {
			return nil, err
		}
		if task.IsCompleted() {
			dashboard.Completed = append(dashboard.Completed, row)
		} else {
			dashboard.Pending = append(dashboard.Pending, row)
		}
	}

	sort.SliceStable(dashboard.Pending, func(i, j int) bool {
		a, b := dashboard.Pending[i].Task, dashboard.Pending[j].Task
		if a.IsStarred() != b.IsStarred() {
			return a.IsStarred()
		}
		if a.IsStarred() && !a.StarredAt.Equal(b.StarredAt) {
			return a.StarredAt.After(b.StarredAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	sort.SliceStable(dashboard.Completed, func(i, j int) bool {
		return dashboard.Completed[i].Task.UpdatedAt.After(dashboard.Completed[j].Task.UpdatedAt)
	})

	return dashboard, nil
}

func (s *TaskServiceImpl) row(task models.Task) (TaskRow, error) {
	count, err := s.taskRepo.CountComments(task.ID)
	if err != nil {
		return TaskRow{}, fmt.Errorf("failed to count comments: %w", err)
	}

	return TaskRow{
		Task:         task,
		AssigneeName: s.userName(task.AssigneeID),
		CommentCount: count,
	}, nil
}

func (s *TaskServiceImpl) userName(userID string) string {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return "Unknown user"
	}
	return user.Name
}

// visibleTask loads a task and hides it from users who neither created nor
// are assigned it
func (s *TaskServiceImpl) visibleTask(userID, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.GetTask(taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if !task.VisibleTo(userID) {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// GetTaskDetail returns the task with its comments, oldest first
func (s *TaskServiceImpl) GetTaskDetail(userID, taskID string) (*TaskDetail, error) {
	task, err := s.visibleTask(userID, taskID)
	if err != nil {
		return nil, err
	}

	comments, err := s.taskRepo.ListComments(task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	detail := &TaskDetail{
		Task:         *task,
		CreatorName:  s.userName(task.CreatorID),
		AssigneeName: s.userName(task.AssigneeID),
	}
	for _, c := range comments {
		detail.Comments = append(detail.Comments, CommentView{
			Body:       c.Body,
			AuthorName: s.userName(c.AuthorID),
			CreatedAt:  c.CreatedAt,
		})
	}

	return detail, nil
}

// CompleteTask moves a task to the completed table
func (s *TaskServiceImpl) CompleteTask(userID, taskID string) error {
	return s.transition(userID, taskID, (*models.Task).Complete)
}

// ReopenTask moves a task back to the pending table
func (s *TaskServiceImpl) ReopenTask(userID, taskID string) error {
	return s.transition(userID, taskID, (*models.Task).Reopen)
}

// ToggleStar stars or unstars a pending task
func (s *TaskServiceImpl) ToggleStar(userID, taskID string) error {
	return s.transition(userID, taskID, (*models.Task).ToggleStar)
}

func (s *TaskServiceImpl) transition(userID, taskID string, apply func(*models.Task) error) error {
	task, err := s.visibleTask(userID, taskID)
	if err != nil {
		return err
	}

	// Use domain methods to transition state
	if err := apply(task); err != nil {
		return err
	}

	if err := s.taskRepo.UpdateTask(task); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// DeleteTask removes a task and its comments
func (s *TaskServiceImpl) DeleteTask(userID, taskID string) error {
	task, err := s.visibleTask(userID, taskID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.DeleteTask(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// AddComment posts a comment on a task the user can see
func (s *TaskServiceImpl) AddComment(userID, taskID, body string) (*models.Comment, error) {
	task, err := s.visibleTask(userID, taskID)
	if err != nil {
		return nil, err
	}

	comment, err := models.NewComment(task.ID, userID, body)
	if err != nil {
		return nil, fmt.Errorf("invalid comment: %w", err)
	}

	if err := s.taskRepo.CreateComment(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return comment, nil
}
