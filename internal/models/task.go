package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskProgress partitions tasks between the pending and completed tables
type TaskProgress string

// Task progress values
const (
	TaskPending   TaskProgress = "pending"
	TaskCompleted TaskProgress = "completed"
)

// TaskStatus is the star state of a task
type TaskStatus string

// Task status values
const (
	TaskUnstarred TaskStatus = "unstarred"
	TaskStarred   TaskStatus = "starred"
)

// Length limits enforced by the task and comment forms
const (
	MaxTitleLength   = 125
	MaxCommentLength = 511
)

// Task is a to-do item assigned to a user
type Task struct {
	ID         string
	Title      string
	CreatorID  string
	AssigneeID string
	Progress   TaskProgress
	Status     TaskStatus
	StarredAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Domain errors
var (
	ErrInvalidTitle            = errors.New("title cannot be empty")
	ErrTitleTooLong            = errors.New("title is too long")
	ErrMissingAssignee         = errors.New("assignee is required")
	ErrInvalidStatusTransition = errors.New("invalid task transition")
	ErrTaskAlreadyCompleted    = errors.New("task is already completed")
	ErrTaskNotCompleted        = errors.New("task is not completed")
	ErrEmptyComment            = errors.New("comment cannot be empty")
	ErrCommentTooLong          = errors.New("comment is too long")
)

// NewTask creates a pending, unstarred task with validation
func NewTask(title, creatorID, assigneeID string) (*Task, error) {
	title = strings.TrimSpace(title)
	if err := validateTaskInput(title, assigneeID); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Task{
		ID:         uuid.New().String(),
		Title:      title,
		CreatorID:  creatorID,
		AssigneeID: assigneeID,
		Progress:   TaskPending,
		Status:     TaskUnstarred,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func validateTaskInput(title, assigneeID string) error {
	if title == "" {
		return ErrInvalidTitle
	}
	if len(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if assigneeID == "" {
		return ErrMissingAssignee
	}
	return nil
}

// Complete moves the task to the completed table
func (t *Task) Complete() error {
	if t.Progress == TaskCompleted {
		return ErrTaskAlreadyCompleted
	}
	t.Progress = TaskCompleted
	t.UpdatedAt = time.Now()
	return nil
}

// Reopen moves a completed task back to the pending table
func (t *Task) Reopen() error {
	if t.Progress != TaskCompleted {
		return ErrTaskNotCompleted
	}
	t.Progress = TaskPending
	t.UpdatedAt = time.Now()
	return nil
}

// ToggleStar stars an unstarred task and unstars a starred one. Only pending
// tasks carry the star control.
func (t *Task) ToggleStar() error {
	if t.Progress != TaskPending {
		return fmt.Errorf("%w: cannot star a %s task", ErrInvalidStatusTransition, t.Progress)
	}

	now := time.Now()
	if t.Status == TaskStarred {
		t.Status = TaskUnstarred
		t.StarredAt = time.Time{}
	} else {
		t.Status = TaskStarred
		t.StarredAt = now
	}
	t.UpdatedAt = now
	return nil
}

// IsCompleted returns true if the task is in the completed table
func (t *Task) IsCompleted() bool {
	return t.Progress == TaskCompleted
}

// IsStarred returns true if the task is starred
func (t *Task) IsStarred() bool {
	return t.Status == TaskStarred
}

// VisibleTo returns true if the user created or is assigned the task
func (t *Task) VisibleTo(userID string) bool {
	return t.CreatorID == userID || t.AssigneeID == userID
}

// Comment is a message posted on a task
type Comment struct {
	ID        string
	TaskID    string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}

// NewComment creates a comment with validation
func NewComment(taskID, authorID, body string) (*Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyComment
	}
	if len(body) > MaxCommentLength {
		return nil, ErrCommentTooLong
	}

	return &Comment{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now(),
	}, nil
}
