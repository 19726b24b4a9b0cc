// Package profiles provides the PostgreSQL-backed repository for user
// profiles: existence checks, conflict-free creation and onboarding flags.
package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/common"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/dbx"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/models"
)

// PostgresRepository implements profile storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the profile for userID or common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	query := `
		SELECT id, email, username, tutorial_completed, avatar_key, created_at
		FROM profiles
		WHERE id = $1
	`
	var (
		p                          models.Profile
		email, username, avatarKey sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&p.ID, &email, &username, &p.TutorialCompleted, &avatarKey, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	p.Email = nullable(email)
	p.Username = nullable(username)
	p.AvatarKey = nullable(avatarKey)
	return &p, nil
}

// CreateIfAbsent inserts a profile with tutorial_completed=false. A nil or
// empty email is stored as NULL. It reports
// false when a row with the same id already exists, so exactly one of several
// concurrent first-login callers sees true.
func (r *PostgresRepository) CreateIfAbsent(ctx context.Context, userID string, email *string) (bool, error) {
	query := `
		INSERT INTO profiles (id, email, tutorial_completed, preferences)
		VALUES ($1, $2, FALSE, '{}'::jsonb)
		ON CONFLICT (id) DO NOTHING
	`
	// an empty address is stored as NULL
	var emailArg any
	if email != nil && *email != "" {
		emailArg = *email
	}
	res, err := r.db.ExecContext(ctx, query, userID, emailArg)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// SetTutorialCompleted updates the onboarding flag. A missing profile yields
// common.ErrorNotFound.
func (r *PostgresRepository) SetTutorialCompleted(ctx context.Context, userID string, completed bool) error {
	query := `UPDATE profiles SET tutorial_completed = $2 WHERE id = $1`
	return r.updateOne(ctx, query, userID, completed)
}

// SetAvatarKey records the object-storage key of the user's avatar.
func (r *PostgresRepository) SetAvatarKey(ctx context.Context, userID string, key string) error {
	query := `UPDATE profiles SET avatar_key = $2 WHERE id = $1`
	return r.updateOne(ctx, query, userID, key)
}

func (r *PostgresRepository) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
