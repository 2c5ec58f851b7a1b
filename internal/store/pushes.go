package store

import (
	"context"
	"database/sql"
	"fmt"

	"vibe_demo_server/internal/types"
)

type PushRepository struct {
	db DBTX
}

func NewPushRepository(db DBTX) *PushRepository {
	return &PushRepository{db: db}
}

func (r *PushRepository) Create(ctx context.Context, p *types.Push) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pushes (id, author, summary, commit_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Author, p.Summary, p.CommitHash, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert push: %w", err)
	}
	return nil
}

// List returns the most recent pushes, newest first.
func (r *PushRepository) List(ctx context.Context, limit int) ([]types.Push, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, author, summary, commit_hash, created_at FROM pushes ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pushes: %w", err)
	}
	defer rows.Close()

	out := make([]types.Push, 0)
	for rows.Next() {
		var (
			p    types.Push
			hash sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Author, &p.Summary, &hash, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan push: %w", err)
		}
		if hash.Valid {
			p.CommitHash = &hash.String
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
