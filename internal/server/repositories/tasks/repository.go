package tasks

import (
	"context"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, task *models.Task) error
	ListByUser(ctx context.Context, userID string) ([]*models.Task, error)
	ListTutorial(ctx context.Context, userID string, titles []string) ([]*models.Task, error)
	DeleteTutorial(ctx context.Context, userID string, titles []string) (int64, error)
}
