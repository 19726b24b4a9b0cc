package services

import (
	"context"
	"fmt"
	"time"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/common"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/dbx"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/models"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// recentWindow bounds TaskStats.RecentTasks.
const recentWindow = 7 * 24 * time.Hour

var newTaskID = func() string { return uuid.NewString() }

// TaskWriter creates a single task for a user.
type TaskWriter interface {
	AddTaskDirect(ctx context.Context, userID string, input models.TaskInput, revalidate bool) (*models.Task, error)
}

// TaskService writes tasks and reports per-user statistics.
type TaskService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	deps        Deps
}

func NewTaskService(db dbx.DBTX, m repomanager.RepositoryManager, deps Deps) *TaskService {
	return &TaskService{db: db, repomanager: m, deps: deps.withDefaults()}
}

// WithDB returns a copy of the service whose writes go through db, typically
// a transaction.
func (s *TaskService) WithDB(db dbx.DBTX) *TaskService {
	cp := *s
	cp.db = db
	return &cp
}

// AddTaskDirect validates input, fills defaults and inserts the task.
func (s *TaskService) AddTaskDirect(ctx context.Context, userID string, input models.TaskInput, revalidate bool) (task *models.Task, err error) {
	defer s.deps.observe(ctx, "add_task", time.Now(), &err)

	if userID == "" {
		return nil, common.ErrorNoUserID
	}
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := s.deps.Now().UTC()
	task = &models.Task{
		ID:            newTaskID(),
		UserID:        userID,
		Title:         input.Title,
		Description:   input.Description,
		Priority:      input.Priority,
		Status:        input.Status,
		Deadline:      input.Deadline,
		Kind:          input.Kind,
		TemplateIndex: input.TemplateIndex,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repomanager.Tasks(s.db).Create(ctx, task); err != nil {
		s.deps.Logger.Error(ctx, "task insert failed", "user_id", userID, "title", task.Title, "error", err)
		return nil, fmt.Errorf("error creating task: %w", err)
	}

	if revalidate {
		s.deps.Views.Revalidate(ctx, userID, common.DashboardPath, common.DashboardTasksPath)
	}
	return task, nil
}

// Stats counts the user's tasks by status, those created in the last seven
// days and the rounded completion rate.
func (s *TaskService) Stats(ctx context.Context, userID string) (stats *models.TaskStats, err error) {
	defer s.deps.observe(ctx, "task_stats", time.Now(), &err)

	if userID == "" {
		return nil, common.ErrorNoUserID
	}

	list, err := s.repomanager.Tasks(s.db).ListByUser(ctx, userID)
	if err != nil {
		s.deps.Logger.Error(ctx, "task stats query failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("error fetching tasks: %w", err)
	}

	stats = &models.TaskStats{ByStatus: make(map[string]int, len(models.Statuses))}
	for _, st := range models.Statuses {
		stats.ByStatus[st] = 0
	}

	cutoff := s.deps.Now().Add(-recentWindow)
	for _, t := range list {
		stats.Total++
		stats.ByStatus[t.Status]++
		if t.CreatedAt.After(cutoff) {
			stats.RecentTasks++
		}
	}
	stats.CompletionRate = models.Percent(stats.ByStatus[models.StatusCompleted], stats.Total)
	return stats, nil
}
