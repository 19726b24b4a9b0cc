package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/common"
)

// Task priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Task statuses. Pending backs the kanban "pending" column.
const (
	StatusTodo       = "todo"
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// KindTutorial tags tasks written by the onboarding seeder.
const KindTutorial = "tutorial"

// MaxTitleLength is counted in runes.
const MaxTitleLength = 200

// Statuses lists every status in kanban column order.
var Statuses = []string{StatusTodo, StatusPending, StatusInProgress, StatusCompleted}

type Task struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	Kind          string     `json:"kind,omitempty"`
	TemplateIndex int        `json:"templateIndex,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// TaskInput is what callers supply to create a task.
type TaskInput struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	Kind          string     `json:"kind,omitempty"`
	TemplateIndex int        `json:"templateIndex,omitempty"`
}

// Normalize trims the title and fills in default priority and status.
func (in *TaskInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.Status == "" {
		in.Status = StatusTodo
	}
}

// Validate checks a normalized input. Errors wrap common.ErrorValidation.
func (in *TaskInput) Validate() error {
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	if utf8.RuneCountInString(in.Title) > MaxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", common.ErrorValidation, MaxTitleLength)
	}
	switch in.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return fmt.Errorf("%w: unknown priority %q", common.ErrorValidation, in.Priority)
	}
	switch in.Status {
	case StatusTodo, StatusPending, StatusInProgress, StatusCompleted:
	default:
		return fmt.Errorf("%w: unknown status %q", common.ErrorValidation, in.Status)
	}
	return nil
}
