package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/common"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/dbx"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/notify"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/repositories/repomanager"
)

// ProfileService runs the first-login bootstrap: profile creation, tutorial
// seeding and the completion flag.
type ProfileService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	tutorial      *TutorialService
	notifier      notify.Notifier
	transactional bool
	deps          Deps
}

// NewProfileService constructs a ProfileService. When transactional is set
// the whole bootstrap runs in one transaction and a seeding failure leaves
// nothing behind. notifier may be nil.
func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, tutorial *TutorialService, notifier notify.Notifier, transactional bool, deps Deps) *ProfileService {
	return &ProfileService{
		db:            db,
		repomanager:   m,
		tutorial:      tutorial,
		notifier:      notifier,
		transactional: transactional,
		deps:          deps.withDefaults(),
	}
}

type bootstrapResult struct {
	created bool
	mutated bool
	// partial marks a new profile whose tutorial could not be set up.
	partial bool
}

// EnsureProfileAndTutorialTasks makes sure userID has a profile whose
// tutorial has been seeded. Calling it again after success is a no-op.
//
// A brand-new profile whose seeding fails is kept (unless transactional) and
// the error wraps common.ErrProfileCreatedTutorialFailed; the next call
// resumes seeding.
func (s *ProfileService) EnsureProfileAndTutorialTasks(ctx context.Context, userID string, email *string, revalidate bool) (err error) {
	defer s.deps.observe(ctx, "bootstrap", time.Now(), &err)

	if userID == "" {
		return common.ErrorNoUserID
	}

	var res bootstrapResult
	if s.transactional {
		err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			var txErr error
			res, txErr = s.bootstrap(ctx, tx, userID, email)
			return txErr
		})
		if err != nil {
			if res.partial {
				err = fmt.Errorf("bootstrap rolled back: %w", err)
			}
			res = bootstrapResult{}
		}
	} else {
		res, err = s.bootstrap(ctx, s.db, userID, email)
		if res.partial {
			err = fmt.Errorf("%w: %w", common.ErrProfileCreatedTutorialFailed, err)
		}
	}

	if res.mutated && revalidate {
		s.deps.Views.Revalidate(ctx, userID, common.DashboardPath, common.DashboardTasksPath)
	}
	if err != nil {
		s.deps.Logger.Error(ctx, "bootstrap failed", "user_id", userID, "error", err)
		return err
	}

	if res.created {
		s.deps.Logger.Info(ctx, "profile bootstrapped", "user_id", userID)
		s.sendWelcome(ctx, userID, email)
	}
	return nil
}

func (s *ProfileService) bootstrap(ctx context.Context, db dbx.DBTX, userID string, email *string) (bootstrapResult, error) {
	profiles := s.repomanager.Profiles(db)

	p, err := profiles.Get(ctx, userID)
	switch {
	case err == nil && p.TutorialCompleted:
		return bootstrapResult{}, nil

	case err == nil:
		// Interrupted earlier bootstrap. Drop whatever tagged tasks it left
		// so reseeding cannot duplicate them.
		if _, err := s.repomanager.Tasks(db).DeleteTutorial(ctx, userID, nil); err != nil {
			return bootstrapResult{}, fmt.Errorf("error clearing partial tutorial: %w", err)
		}
		if err := s.seedAndComplete(ctx, db, userID); err != nil {
			return bootstrapResult{mutated: true}, err
		}
		return bootstrapResult{mutated: true}, nil

	case errors.Is(err, common.ErrorNotFound):
		inserted, err := profiles.CreateIfAbsent(ctx, userID, email)
		if err != nil {
			return bootstrapResult{}, fmt.Errorf("error creating profile: %w", err)
		}
		if !inserted {
			s.deps.Logger.Info(ctx, "profile created concurrently, skipping seeding", "user_id", userID)
			return bootstrapResult{}, nil
		}
		if err := s.seedAndComplete(ctx, db, userID); err != nil {
			return bootstrapResult{created: true, mutated: true, partial: true}, err
		}
		return bootstrapResult{created: true, mutated: true}, nil

	default:
		return bootstrapResult{}, fmt.Errorf("error checking profile: %w", err)
	}
}

func (s *ProfileService) seedAndComplete(ctx context.Context, db dbx.DBTX, userID string) error {
	name := s.tutorial.displayName(ctx, db, userID)
	if err := s.tutorial.seed(ctx, db, userID, name); err != nil {
		return err
	}
	if err := s.repomanager.Profiles(db).SetTutorialCompleted(ctx, userID, true); err != nil {
		return fmt.Errorf("error marking tutorial completed: %w", err)
	}
	return nil
}

func (s *ProfileService) sendWelcome(ctx context.Context, userID string, email *string) {
	if s.notifier == nil || email == nil || *email == "" {
		return
	}
	name := s.tutorial.displayName(ctx, s.db, userID)
	if err := s.notifier.SendWelcome(ctx, *email, name); err != nil {
		s.deps.Logger.Warn(ctx, "welcome email failed", "user_id", userID, "error", err)
	}
}
