package user

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	return NewRepository(bun.NewDB(sqldb, pgdialect.New())), mock
}

func userRows(id uuid.UUID, email string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "email", "name", "password_hash", "is_admin", "language", "created_at", "updated_at",
	}).AddRow(id.String(), email, "Alice", "$2a$10$hash", false, "en", now, now)
}

func TestGetByEmail(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "users" AS "u" WHERE \(lower\(email\) = 'alice@example\.com'\)`).
		WillReturnRows(userRows(id, "alice@example.com"))

	// Lookup is case-insensitive
	got, err := repo.GetByEmail(context.Background(), "Alice@Example.COM")
	require.NoError(t, err)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "$2a$10$hash", got.PasswordHash)
	assert.False(t, got.IsAdmin)
	assert.Equal(t, "en", got.Language)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT (.+) FROM "users"`).WillReturnError(sql.ErrNoRows)

	got, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmail_QueryError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT (.+) FROM "users"`).WillReturnError(sql.ErrConnDone)

	got, err := repo.GetByEmail(context.Background(), "alice@example.com")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "users" AS "u" WHERE \(id = '` + id.String() + `'\)`).
		WillReturnRows(userRows(id, "alice@example.com"))

	got, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT (.+) FROM "users"`).WillReturnError(sql.ErrNoRows)

	got, err := repo.GetByID(context.Background(), uuid.New())
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
