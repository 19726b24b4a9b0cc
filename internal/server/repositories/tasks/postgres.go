// Package tasks provides the PostgreSQL-backed task repository used by the
// task writer, the tutorial seeder and the statistics reporter.
package tasks

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/dbx"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/models"
)

// PostgresRepository implements task storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const taskColumns = `id, user_id, title, description, priority, status, deadline, kind, template_index, created_at, updated_at`

// Create inserts a fully populated task. The caller assigns ID and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, t *models.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Title, t.Description, t.Priority, t.Status,
		t.Deadline, t.Kind, t.TemplateIndex, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByUser returns every task owned by userID, oldest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY created_at`
	return r.query(ctx, query, userID)
}

// ListTutorial returns the user's tutorial tasks: rows tagged kind='tutorial'
// plus untagged rows whose title is in titles.
func (r *PostgresRepository) ListTutorial(ctx context.Context, userID string, titles []string) ([]*models.Task, error) {
	where, args := tutorialFilter(userID, titles)
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + where + ` ORDER BY template_index, created_at`
	return r.query(ctx, query, args...)
}

// DeleteTutorial removes the user's tutorial tasks (same predicate as
// ListTutorial) and reports how many rows went away.
func (r *PostgresRepository) DeleteTutorial(ctx context.Context, userID string, titles []string) (int64, error) {
	where, args := tutorialFilter(userID, titles)
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func tutorialFilter(userID string, titles []string) (string, []any) {
	args := []any{userID, models.KindTutorial}
	if len(titles) == 0 {
		return `user_id = $1 AND kind = $2`, args
	}
	list, titleArgs := dbx.In(3, titles)
	return `user_id = $1 AND (kind = $2 OR title IN (` + list + `))`, append(args, titleArgs...)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	var result []*models.Task
	for rows.Next() {
		var (
			item     models.Task
			deadline sql.NullTime
		)
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Title, &item.Description, &item.Priority, &item.Status,
			&deadline, &item.Kind, &item.TemplateIndex, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if deadline.Valid {
			d := deadline.Time
			item.Deadline = &d
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
