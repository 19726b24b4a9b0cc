// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/dbx"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/migrations"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/repositories/preferences"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/repositories/profiles"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/repositories/tasks"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook. Preferences may be redirected to a
// MongoDB collection with WithMongoPreferences.
type PostgresRepositoryManager struct {
	prefsCollection preferences.Collection
}

// Option configures a PostgresRepositoryManager.
type Option func(*PostgresRepositoryManager)

// WithMongoPreferences stores preference documents in coll instead of
// profiles.preferences.
func WithMongoPreferences(coll preferences.Collection) Option {
	return func(m *PostgresRepositoryManager) {
		m.prefsCollection = coll
	}
}

// Profiles returns a profiles.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Profiles(db dbx.DBTX) profiles.Repository {
	return profiles.NewPostgresRepository(db)
}

// Tasks returns a tasks.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Tasks(db dbx.DBTX) tasks.Repository {
	return tasks.NewPostgresRepository(db)
}

// Preferences returns a preferences.Repository. The Mongo-backed repository
// ignores db and never takes part in SQL transactions.
func (m *PostgresRepositoryManager) Preferences(db dbx.DBTX) preferences.Repository {
	if m.prefsCollection != nil {
		return preferences.NewMongoRepository(m.prefsCollection)
	}
	return preferences.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(db *sql.DB, opts ...Option) (RepositoryManager, error) {
	m := &PostgresRepositoryManager{}
	for _, o := range opts {
		o(m)
	}
	return m, nil
}
