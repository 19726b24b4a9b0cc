package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/common"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/dbx"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/models"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/repositories/repomanager"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/timex"
)

// SeedError reports which tutorial task could not be written. Tasks before
// Index were written and stay in place.
type SeedError struct {
	Index int
	Title string
	Err   error
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("failed to create tutorial task %d %q: %v", e.Index, e.Title, e.Err)
}

func (e *SeedError) Unwrap() error { return e.Err }

// TutorialService seeds, restarts and reports on the onboarding task set.
type TutorialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	deps        Deps
	newWriter   func(dbx.DBTX) TaskWriter
}

func NewTutorialService(db *sql.DB, m repomanager.RepositoryManager, tasks *TaskService, deps Deps) *TutorialService {
	return &TutorialService{
		db:          db,
		repomanager: m,
		deps:        deps.withDefaults(),
		newWriter:   func(db dbx.DBTX) TaskWriter { return tasks.WithDB(db) },
	}
}

// CreateTutorialTasks writes the six tutorial tasks for userID in order,
// stopping at the first failure.
func (s *TutorialService) CreateTutorialTasks(ctx context.Context, userID string) (err error) {
	defer s.deps.observe(ctx, "seed_tutorial", time.Now(), &err)

	if userID == "" {
		return common.ErrorNoUserID
	}
	return s.seed(ctx, s.db, userID, s.displayName(ctx, s.db, userID))
}

func (s *TutorialService) seed(ctx context.Context, db dbx.DBTX, userID, name string) error {
	writer := s.newWriter(db)
	now := s.deps.Now()

	for i, t := range tutorialTemplates {
		index := i + 1
		deadline := timex.DaysFrom(now, index).UTC()
		in := models.TaskInput{
			Title:         t.titleFor(name),
			Description:   t.description,
			Priority:      t.priority,
			Status:        models.StatusTodo,
			Deadline:      &deadline,
			Kind:          models.KindTutorial,
			TemplateIndex: index,
		}
		if _, err := writer.AddTaskDirect(ctx, userID, in, false); err != nil {
			s.deps.Logger.Error(ctx, "tutorial seeding aborted", "user_id", userID, "index", index, "title", in.Title, "error", err)
			return &SeedError{Index: index, Title: in.Title, Err: err}
		}
	}

	s.deps.Logger.Info(ctx, "tutorial seeded", "user_id", userID, "tasks", len(tutorialTemplates))
	return nil
}

// displayName resolves the profile username, falling back to "there" on
// any lookup failure.
func (s *TutorialService) displayName(ctx context.Context, db dbx.DBTX, userID string) string {
	p, err := s.repomanager.Profiles(db).Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.deps.Logger.Warn(ctx, "display name lookup failed", "user_id", userID, "error", err)
		}
		return fallbackDisplayName
	}
	return p.DisplayName(fallbackDisplayName)
}

// Restart deletes the user's tutorial tasks, seeds a fresh set and leaves
// the tutorial marked completed. Deleted tasks are not recoverable. A user
// without a profile gets common.ErrorNotFound and nothing is touched.
func (s *TutorialService) Restart(ctx context.Context, userID string, revalidate bool) (err error) {
	defer s.deps.observe(ctx, "restart_tutorial", time.Now(), &err)

	if userID == "" {
		return common.ErrorNoUserID
	}

	profile, err := s.repomanager.Profiles(s.db).Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("error loading profile: %w", err)
	}
	name := profile.DisplayName(fallbackDisplayName)
	deleted, err := s.repomanager.Tasks(s.db).DeleteTutorial(ctx, userID, tutorialTitleSet(name))
	if err != nil {
		return fmt.Errorf("error deleting tutorial tasks: %w", err)
	}
	s.deps.Logger.Info(ctx, "tutorial tasks deleted", "user_id", userID, "count", deleted)

	if revalidate {
		defer s.deps.Views.Revalidate(ctx, userID, common.DashboardPath, common.DashboardTasksPath)
	}

	if err := s.seed(ctx, s.db, userID, name); err != nil {
		return fmt.Errorf("%w: %w", common.ErrTutorialDeletedReseedFailed, err)
	}

	if err := s.repomanager.Profiles(s.db).SetTutorialCompleted(ctx, userID, true); err != nil {
		return fmt.Errorf("error marking tutorial completed: %w", err)
	}
	return nil
}

// Progress counts the user's tutorial tasks, tagged or matched by any
// original or personalized template title. Personalized rows are counted on
// purpose, so users with a username are not undercounted the way a match on
// the original titles alone would.
func (s *TutorialService) Progress(ctx context.Context, userID string) (progress *models.TutorialProgress, err error) {
	defer s.deps.observe(ctx, "tutorial_progress", time.Now(), &err)

	if userID == "" {
		return nil, common.ErrorNoUserID
	}

	name := s.displayName(ctx, s.db, userID)
	list, err := s.repomanager.Tasks(s.db).ListTutorial(ctx, userID, tutorialTitleSet(name))
	if err != nil {
		s.deps.Logger.Error(ctx, "tutorial progress query failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("error fetching tutorial tasks: %w", err)
	}

	progress = &models.TutorialProgress{
		TotalTasks:    models.TutorialTaskCount,
		ExistingTasks: len(list),
	}
	for _, t := range list {
		if t.Status == models.StatusCompleted {
			progress.CompletedTasks++
		}
	}
	progress.HasActiveTutorial = progress.ExistingTasks > 0
	progress.CompletionPercentage = models.Percent(progress.CompletedTasks, progress.ExistingTasks)
	return progress, nil
}
