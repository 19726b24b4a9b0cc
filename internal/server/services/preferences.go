package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/common"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/dbx"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/models"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/repositories/repomanager"
)

// PreferenceService reads and writes the preference document. Reads never
// fail just because nothing was saved yet.
type PreferenceService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	deps        Deps
}

func NewPreferenceService(db dbx.DBTX, m repomanager.RepositoryManager, deps Deps) *PreferenceService {
	return &PreferenceService{db: db, repomanager: m, deps: deps.withDefaults()}
}

// Get returns the stored document merged over the defaults.
func (s *PreferenceService) Get(ctx context.Context, userID string) (prefs *models.Preferences, err error) {
	defer s.deps.observe(ctx, "get_preferences", time.Now(), &err)

	if userID == "" {
		return nil, common.ErrorNoUserID
	}

	raw, err := s.repomanager.Preferences(s.db).Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			d := models.DefaultPreferences()
			return &d, nil
		}
		s.deps.Logger.Error(ctx, "preferences query failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("error reading preferences: %w", err)
	}

	p, err := models.MergePreferences(raw)
	if err != nil {
		// an unreadable document is treated as absent
		s.deps.Logger.Warn(ctx, "stored preferences ignored", "user_id", userID, "error", err)
	}
	return &p, nil
}

// Update validates and overwrites the whole document.
func (s *PreferenceService) Update(ctx context.Context, userID string, prefs models.Preferences, revalidate bool) (err error) {
	defer s.deps.observe(ctx, "update_preferences", time.Now(), &err)

	if userID == "" {
		return common.ErrorNoUserID
	}
	if err := prefs.Validate(); err != nil {
		return err
	}

	if err := s.repomanager.Preferences(s.db).Save(ctx, userID, prefs); err != nil {
		s.deps.Logger.Error(ctx, "preferences update failed", "user_id", userID, "error", err)
		return fmt.Errorf("error saving preferences: %w", err)
	}

	if revalidate {
		s.deps.Views.Revalidate(ctx, userID, common.DashboardPath, common.DashboardSettingsPath)
	}
	return nil
}
