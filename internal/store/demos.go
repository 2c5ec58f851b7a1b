package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vibe_demo_server/internal/common"
	"vibe_demo_server/internal/types"
)

// DemoRepository persists demo pages.
type DemoRepository struct {
	db DBTX
}

func NewDemoRepository(db DBTX) *DemoRepository {
	return &DemoRepository{db: db}
}

// Create inserts a new page. A duplicate id returns common.ErrorAlreadyExists.
func (r *DemoRepository) Create(ctx context.Context, page *types.DemoPage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO demo_pages (id, html, prompt, user_id, created_at, expires_at, persisted, iteration_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		page.ID, page.HTML, page.Prompt, page.UserID, page.CreatedAt, page.ExpiresAt, page.Persisted, page.IterationCount,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("insert demo page: %w", err)
	}
	return nil
}

// Get returns the page with id, or common.ErrorNotFound.
func (r *DemoRepository) Get(ctx context.Context, id string) (*types.DemoPage, error) {
	var (
		p      types.DemoPage
		userID sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, html, prompt, user_id, created_at, expires_at, persisted, iteration_count
		 FROM demo_pages WHERE id = $1`, id,
	).Scan(&p.ID, &p.HTML, &p.Prompt, &userID, &p.CreatedAt, &p.ExpiresAt, &p.Persisted, &p.IterationCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select demo page: %w", err)
	}
	if userID.Valid {
		p.UserID = &userID.String
	}
	return &p, nil
}

// UpdateAfterTweak replaces the html and prompt and bumps iteration_count.
// Concurrent edits are last-write-wins. Returns the new iteration count.
func (r *DemoRepository) UpdateAfterTweak(ctx context.Context, id, html, prompt string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`UPDATE demo_pages SET html = $2, prompt = $3, iteration_count = iteration_count + 1
		 WHERE id = $1 RETURNING iteration_count`, id, html, prompt,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, common.ErrorNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("update demo page: %w", err)
	}
	return count, nil
}

// DeleteExpired removes every non-persisted page whose expiry is before now.
func (r *DemoRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM demo_pages WHERE persisted = false AND expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired pages: %w", err)
	}
	return res.RowsAffected()
}

// SetPersisted marks a page as kept (or not) and attaches an owner.
func (r *DemoRepository) SetPersisted(ctx context.Context, id string, userID *string, persisted bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE demo_pages SET persisted = $2, user_id = $3 WHERE id = $1`, id, persisted, userID)
	if err != nil {
		return fmt.Errorf("persist demo page: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
