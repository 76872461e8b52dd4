package ticket

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/helpdeskgo/helpdesk-api/internal/database"
)

var ErrNotFound = errors.New("ticket not found")

// Repository handles ticket persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new ticket. New tickets start unissued.
func (r *Repository) Create(ctx context.Context, t *Ticket) (*Ticket, error) {
	dbTicket := &database.Ticket{
		Name:     t.Name,
		Email:    t.Email,
		Company:  t.Company,
		Priority: t.Priority,
		Issue:    t.Issue,
		Status:   string(StatusUnissued),
	}

	_, err := r.db.NewInsert().
		Model(dbTicket).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	return mapDBTicketToModel(dbTicket), nil
}

// GetByID retrieves a ticket by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	dbTicket := new(database.Ticket)
	err := r.db.NewSelect().
		Model(dbTicket).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return mapDBTicketToModel(dbTicket), nil
}

// ListByStatus returns tickets in the given state, newest first.
func (r *Repository) ListByStatus(ctx context.Context, status Status) ([]*Ticket, error) {
	var dbTickets []*database.Ticket
	err := r.db.NewSelect().
		Model(&dbTickets).
		Where("status = ?", string(status)).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	tickets := make([]*Ticket, 0, len(dbTickets))
	for _, dbt := range dbTickets {
		tickets = append(tickets, mapDBTicketToModel(dbt))
	}
	return tickets, nil
}

// Assign moves an unissued ticket to open under the given assignee.
func (r *Repository) Assign(ctx context.Context, id, assigneeID uuid.UUID) error {
	result, err := r.db.NewUpdate().
		Model((*database.Ticket)(nil)).
		Set("assigned_to_id = ?", assigneeID).
		Set("status = ?", string(StatusOpen)).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("status = ?", string(StatusUnissued)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to assign ticket: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Complete closes an open ticket.
func (r *Repository) Complete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewUpdate().
		Model((*database.Ticket)(nil)).
		Set("status = ?", string(StatusClosed)).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("status = ?", string(StatusOpen)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to complete ticket: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapDBTicketToModel converts database model to domain model
func mapDBTicketToModel(dbt *database.Ticket) *Ticket {
	return &Ticket{
		ID:           dbt.ID,
		Name:         dbt.Name,
		Email:        dbt.Email,
		Company:      dbt.Company,
		Priority:     dbt.Priority,
		Issue:        dbt.Issue,
		Status:       Status(dbt.Status),
		AssignedToID: dbt.AssignedToID,
		CreatedAt:    dbt.CreatedAt,
		UpdatedAt:    dbt.UpdatedAt,
	}
}
