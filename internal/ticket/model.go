package ticket

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks a ticket through its lifecycle: unissued tickets have no
// assignee yet, open tickets are being worked, closed tickets are done.
type Status string

const (
	StatusUnissued Status = "unissued"
	StatusOpen     Status = "open"
	StatusClosed   Status = "closed"
)

// ValidStatus reports whether s is one of the known ticket states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusUnissued, StatusOpen, StatusClosed:
		return true
	}
	return false
}

// Priority levels accepted on ticket creation.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

type Ticket struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Company      string     `json:"company,omitempty"`
	Priority     string     `json:"priority"`
	Issue        string     `json:"issue"`
	Status       Status     `json:"status"`
	AssignedToID *uuid.UUID `json:"assigned_to_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
