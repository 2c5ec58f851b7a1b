package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vibe_demo_server/internal/types"
)

type EmailRepository struct {
	db DBTX
}

func NewEmailRepository(db DBTX) *EmailRepository {
	return &EmailRepository{db: db}
}

// Capture stores an email address. A repeated address is ignored; inserted
// reports whether a new row was written.
func (r *EmailRepository) Capture(ctx context.Context, email, source string) (inserted bool, err error) {
	e := types.EmailCapture{
		ID:        uuid.NewString(),
		Email:     email,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO email_captures (id, email, source, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email) DO NOTHING`,
		e.ID, e.Email, e.Source, e.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert email capture: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
