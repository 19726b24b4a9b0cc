// Package preferences persists user preference documents, either in the
// profiles.preferences column or in a MongoDB collection.
package preferences

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/common"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/dbx"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/models"
)

// PostgresRepository reads and writes profiles.preferences over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the stored document of the first matching row.
func (r *PostgresRepository) Get(ctx context.Context, userID string) ([]byte, error) {
	query := `SELECT preferences FROM profiles WHERE id = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		return nil, common.ErrorNotFound
	}

	var doc []byte
	if err := rows.Scan(&doc); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}

// Save overwrites the whole document.
func (r *PostgresRepository) Save(ctx context.Context, userID string, prefs models.Preferences) error {
	b, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	query := `UPDATE profiles SET preferences = $2::jsonb WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, userID, string(b))
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
