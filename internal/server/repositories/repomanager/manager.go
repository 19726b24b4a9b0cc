package repomanager

import (
	"context"
	"database/sql"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/dbx"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/repositories/preferences"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/repositories/profiles"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/repositories/tasks"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Profiles(db dbx.DBTX) profiles.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	Preferences(db dbx.DBTX) preferences.Repository
}
