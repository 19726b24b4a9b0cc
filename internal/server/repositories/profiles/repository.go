package profiles

import (
	"context"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	CreateIfAbsent(ctx context.Context, userID string, email *string) (bool, error)
	SetTutorialCompleted(ctx context.Context, userID string, completed bool) error
	SetAvatarKey(ctx context.Context, userID string, key string) error
}
