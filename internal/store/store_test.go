package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibe_demo_server/internal/common"
	"vibe_demo_server/internal/types"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var demoCols = []string{"id", "html", "prompt", "user_id", "created_at", "expires_at", "persisted", "iteration_count"}

func TestDemoRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDemoRepository(db)
	now := time.Now().UTC()
	page := &types.DemoPage{ID: "abc12345", HTML: "<html></html>", Prompt: "bakery", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	mock.ExpectExec("INSERT INTO demo_pages").
		WithArgs("abc12345", "<html></html>", "bakery", nil, now, now.Add(time.Hour), false, 0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), page))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDemoRepository_CreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDemoRepository(db)

	mock.ExpectExec("INSERT INTO demo_pages").WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &types.DemoPage{ID: "dup"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestDemoRepository_Get(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDemoRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM demo_pages WHERE id").
		WithArgs("abc12345").
		WillReturnRows(sqlmock.NewRows(demoCols).
			AddRow("abc12345", "<p>hi</p>", "bakery", "user-1", now, now.Add(time.Hour), true, 2))

	p, err := repo.Get(context.Background(), "abc12345")
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", p.HTML)
	require.NotNil(t, p.UserID)
	assert.Equal(t, "user-1", *p.UserID)
	assert.True(t, p.Persisted)
	assert.Equal(t, 2, p.IterationCount)
}

func TestDemoRepository_GetNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDemoRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM demo_pages").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(demoCols))

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDemoRepository_UpdateAfterTweak(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDemoRepository(db)

	mock.ExpectQuery("UPDATE demo_pages SET html").
		WithArgs("abc12345", "<new/>", "make it blue").
		WillReturnRows(sqlmock.NewRows([]string{"iteration_count"}).AddRow(1))

	n, err := repo.UpdateAfterTweak(context.Background(), "abc12345", "<new/>", "make it blue")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	mock.ExpectQuery("UPDATE demo_pages SET html").
		WillReturnRows(sqlmock.NewRows([]string{"iteration_count"}))
	_, err = repo.UpdateAfterTweak(context.Background(), "gone", "x", "y")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDemoRepository_DeleteExpired(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDemoRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec("DELETE FROM demo_pages WHERE persisted = false AND expires_at").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}

func TestDemoRepository_SetPersisted(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDemoRepository(db)
	user := "user-1"

	mock.ExpectExec("UPDATE demo_pages SET persisted").
		WithArgs("abc12345", true, user).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetPersisted(context.Background(), "abc12345", &user, true))

	mock.ExpectExec("UPDATE demo_pages SET persisted").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SetPersisted(context.Background(), "nope", nil, true), common.ErrorNotFound)
}

var promptCols = []string{"id", "content", "label", "version", "is_active", "created_at"}

func TestPromptRepository_Active(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPromptRepository(db)

	mock.ExpectQuery("FROM system_prompts WHERE is_active = true").
		WillReturnRows(sqlmock.NewRows(promptCols).AddRow("p2", "be nice", "Version 2", 2, true, time.Now()))

	p, err := repo.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, p.Version)
	assert.Equal(t, "be nice", p.Content)

	mock.ExpectQuery("FROM system_prompts WHERE is_active = true").
		WillReturnRows(sqlmock.NewRows(promptCols))
	_, err = repo.Active(context.Background())
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPromptRepository_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPromptRepository(db)
	now := time.Now()

	mock.ExpectQuery("FROM system_prompts ORDER BY version DESC").
		WillReturnRows(sqlmock.NewRows(promptCols).
			AddRow("p2", "two", nil, 2, true, now).
			AddRow("p1", "one", "Version 1", 1, false, now))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[0].Version)
	assert.Nil(t, list[0].Label)
	assert.Equal(t, "Version 1", *list[1].Label)
}

func TestPromptRepository_SaveDefaultsLabel(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPromptRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(version\\), 0\\) FROM system_prompts").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(2))
	mock.ExpectExec("UPDATE system_prompts SET is_active = false").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO system_prompts").
		WithArgs(sqlmock.AnyArg(), "new content", "Version 3", 3, true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	p, err := repo.Save(context.Background(), "new content", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Version)
	assert.Equal(t, "Version 3", *p.Label)
	assert.True(t, p.IsActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPromptRepository_SaveRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPromptRepository(db)
	label := "friendlier"

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(0))
	mock.ExpectExec("UPDATE system_prompts SET is_active = false").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO system_prompts").
		WithArgs(sqlmock.AnyArg(), "x", label, 1, true, sqlmock.AnyArg()).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	_, err := repo.Save(context.Background(), "x", &label)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPromptRepository_SeedIfEmpty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPromptRepository(db)

	mock.ExpectExec("INSERT INTO system_prompts (.+) WHERE NOT EXISTS").
		WithArgs(sqlmock.AnyArg(), "default", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	seeded, err := repo.SeedIfEmpty(context.Background(), "default")
	require.NoError(t, err)
	assert.True(t, seeded)

	mock.ExpectExec("INSERT INTO system_prompts").
		WillReturnResult(sqlmock.NewResult(0, 0))
	seeded, err = repo.SeedIfEmpty(context.Background(), "default")
	require.NoError(t, err)
	assert.False(t, seeded)
}

func TestEmailRepository_Capture(t *testing.T) {
	db, mock := newMock(t)
	repo := NewEmailRepository(db)

	mock.ExpectExec("INSERT INTO email_captures (.+) ON CONFLICT \\(email\\) DO NOTHING").
		WithArgs(sqlmock.AnyArg(), "a@b.co", "tutorial_completion", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	inserted, err := repo.Capture(context.Background(), "a@b.co", "tutorial_completion")
	require.NoError(t, err)
	assert.True(t, inserted)

	mock.ExpectExec("INSERT INTO email_captures").
		WillReturnResult(sqlmock.NewResult(0, 0))
	inserted, err = repo.Capture(context.Background(), "a@b.co", "tutorial_completion")
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestPushRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPushRepository(db)
	now := time.Now().UTC()
	hash := "deadbeef"

	mock.ExpectExec("INSERT INTO pushes").
		WithArgs("id-1", "sam", "tutorial copy", hash, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(context.Background(), &types.Push{
		ID: "id-1", Author: "sam", Summary: "tutorial copy", CommitHash: &hash, CreatedAt: now,
	}))

	mock.ExpectQuery("SELECT (.+) FROM pushes ORDER BY created_at DESC LIMIT").
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "author", "summary", "commit_hash", "created_at"}).
			AddRow("id-1", "sam", "tutorial copy", hash, now).
			AddRow("id-0", "sam", "initial", nil, now.Add(-time.Hour)))

	list, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, hash, *list[0].CommitHash)
	assert.Nil(t, list[1].CommitHash)
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = WithTx(context.Background(), db, func(ctx context.Context, tx DBTX) error {
			panic("boom")
		})
	})
	require.NoError(t, mock.ExpectationsWereMet())
}
