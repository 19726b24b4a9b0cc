package ctl

import (
	"context"
	"errors"
	"io"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/config"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/models"
)

// Backend is the slice of the server application the commands drive.
type Backend interface {
	Migrate(ctx context.Context) error
	Bootstrap(ctx context.Context, userID string, email *string) error
	RestartTutorial(ctx context.Context, userID string) error
	Progress(ctx context.Context, userID string) (*models.TutorialProgress, error)
	Stats(ctx context.Context, userID string) (*models.TaskStats, error)
	AvatarUploadURL(ctx context.Context, userID string) (key string, url string, err error)
	Close(ctx context.Context) error
}

// Opener builds a Backend for one command invocation.
type Opener func(ctx context.Context, cfg *config.Config, logOutput io.Writer) (Backend, error)

// errNoAvatarStorage is returned when no S3 bucket is configured.
var errNoAvatarStorage = errors.New("avatar storage is not configured")

type appBackend struct {
	app *server.App
}

// OpenApp is the Opener backed by server.App.
func OpenApp(ctx context.Context, cfg *config.Config, logOutput io.Writer) (Backend, error) {
	app, err := server.NewApp(ctx, cfg, server.WithLogOutput(logOutput))
	if err != nil {
		return nil, err
	}
	return &appBackend{app: app}, nil
}

func (b *appBackend) Migrate(ctx context.Context) error {
	return b.app.Migrate(ctx)
}

// Bootstrap runs without view revalidation; this process holds no cached views.
func (b *appBackend) Bootstrap(ctx context.Context, userID string, email *string) error {
	return b.app.Profiles().EnsureProfileAndTutorialTasks(ctx, userID, email, false)
}

func (b *appBackend) RestartTutorial(ctx context.Context, userID string) error {
	return b.app.Tutorial().Restart(ctx, userID, false)
}

func (b *appBackend) Progress(ctx context.Context, userID string) (*models.TutorialProgress, error) {
	return b.app.Tutorial().Progress(ctx, userID)
}

func (b *appBackend) Stats(ctx context.Context, userID string) (*models.TaskStats, error) {
	return b.app.Tasks().Stats(ctx, userID)
}

func (b *appBackend) AvatarUploadURL(ctx context.Context, userID string) (string, string, error) {
	avatars := b.app.Avatars()
	if avatars == nil {
		return "", "", errNoAvatarStorage
	}
	return avatars.UploadURL(ctx, userID)
}

func (b *appBackend) Close(ctx context.Context) error {
	return b.app.Close(ctx)
}
