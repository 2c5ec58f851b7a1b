package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vibe_demo_server/internal/common"
	"vibe_demo_server/internal/types"
)

const promptColumns = `id, content, label, version, is_active, created_at`

// PromptRepository persists system prompt versions. It needs the *sql.DB to
// open transactions.
type PromptRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewPromptRepository(db *sql.DB) *PromptRepository {
	return &PromptRepository{db: db, now: time.Now}
}

// Active returns the active version, or common.ErrorNotFound if none is active.
func (r *PromptRepository) Active(ctx context.Context) (*types.PromptVersion, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+promptColumns+` FROM system_prompts WHERE is_active = true ORDER BY version DESC LIMIT 1`)
	p, err := scanPrompt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select active prompt: %w", err)
	}
	return p, nil
}

// List returns every version, newest first.
func (r *PromptRepository) List(ctx context.Context) ([]types.PromptVersion, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+promptColumns+` FROM system_prompts ORDER BY version DESC`)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	out := make([]types.PromptVersion, 0)
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Save stores content as the next version and makes it the only active one.
// An empty label defaults to "Version <n>".
func (r *PromptRepository) Save(ctx context.Context, content string, label *string) (*types.PromptVersion, error) {
	p := &types.PromptVersion{
		ID:        uuid.NewString(),
		Content:   content,
		IsActive:  true,
		CreatedAt: r.now().UTC(),
	}

	err := WithTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		var max int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(version), 0) FROM system_prompts`).Scan(&max); err != nil {
			return fmt.Errorf("select max version: %w", err)
		}
		p.Version = max + 1

		if label == nil || *label == "" {
			l := fmt.Sprintf("Version %d", p.Version)
			p.Label = &l
		} else {
			p.Label = label
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE system_prompts SET is_active = false WHERE is_active = true`); err != nil {
			return fmt.Errorf("deactivate prompts: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO system_prompts (`+promptColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.Content, p.Label, p.Version, p.IsActive, p.CreatedAt); err != nil {
			return fmt.Errorf("insert prompt: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SeedIfEmpty inserts content as active version 1 when the table is empty.
// Reports whether a row was inserted.
func (r *PromptRepository) SeedIfEmpty(ctx context.Context, content string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO system_prompts (`+promptColumns+`)
		 SELECT $1, $2, 'Version 1', 1, true, $3
		 WHERE NOT EXISTS (SELECT 1 FROM system_prompts)`,
		uuid.NewString(), content, r.now().UTC())
	if err != nil {
		return false, fmt.Errorf("seed prompt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrompt(row rowScanner) (*types.PromptVersion, error) {
	var (
		p     types.PromptVersion
		label sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Content, &label, &p.Version, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, err
	}
	if label.Valid {
		p.Label = &label.String
	}
	return &p, nil
}
