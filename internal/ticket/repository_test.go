package ticket

import (
	"context"
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

func ticketColumns() []string {
	return []string{
		"id", "name", "email", "company", "priority", "issue", "status",
		"assigned_to_id", "created_at", "updated_at",
	}
}

func TestCreate_StartsUnissued(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO "tickets"`).
		WillReturnRows(sqlmock.NewRows(ticketColumns()).
			AddRow(id.String(), "Bob", "bob@example.com", "Acme", PriorityHigh, "printer on fire", string(StatusUnissued), nil, now, now))

	created, err := repo.Create(context.Background(), &Ticket{
		Name:     "Bob",
		Email:    "bob@example.com",
		Company:  "Acme",
		Priority: PriorityHigh,
		Issue:    "printer on fire",
	})
	require.NoError(t, err)

	assert.Equal(t, id, created.ID)
	assert.Equal(t, StatusUnissued, created.Status)
	assert.Nil(t, created.AssignedToID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByStatus(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now()

	rows := sqlmock.NewRows(ticketColumns()).
		AddRow(uuid.NewString(), "Bob", "bob@example.com", "", "normal", "vpn down", string(StatusOpen), nil, now, now).
		AddRow(uuid.NewString(), "Carol", "carol@example.com", "Acme", "high", "laptop dead", string(StatusOpen), uuid.NewString(), now.Add(-time.Hour), now)

	mock.ExpectQuery(`SELECT (.+) FROM "tickets" AS "t" WHERE \(status = 'open'\)`).
		WillReturnRows(rows)

	tickets, err := repo.ListByStatus(context.Background(), StatusOpen)
	require.NoError(t, err)
	require.Len(t, tickets, 2)

	assert.Equal(t, "Bob", tickets[0].Name)
	assert.Nil(t, tickets[0].AssignedToID)
	assert.Equal(t, StatusOpen, tickets[1].Status)
	assert.NotNil(t, tickets[1].AssignedToID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssign(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()
	assignee := uuid.New()

	mock.ExpectExec(`UPDATE "tickets"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Assign(context.Background(), id, assignee))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssign_AlreadyAssigned(t *testing.T) {
	repo, mock := newMockRepository(t)

	// No row matches when the ticket is missing or no longer unissued
	mock.ExpectExec(`UPDATE "tickets"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Assign(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplete_NotOpen(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`UPDATE "tickets"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Complete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
