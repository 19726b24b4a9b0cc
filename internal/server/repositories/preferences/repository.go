package preferences

import (
	"context"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/models"
)

// Repository stores the preference document. Get returns the raw JSON as
// stored (possibly empty or partial) or common.ErrorNotFound.
type Repository interface {
	Get(ctx context.Context, userID string) ([]byte, error)
	Save(ctx context.Context, userID string, prefs models.Preferences) error
}
