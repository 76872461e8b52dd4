package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the database representation of a helpdesk account.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email        string    `bun:"email,notnull,unique"`
	Name         string    `bun:"name,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	IsAdmin      bool      `bun:"is_admin,notnull,default:false"`
	Language     string    `bun:"language,notnull,default:'en'"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Ticket is the database representation of a helpdesk ticket.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets,alias:t"`

	ID           uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name         string     `bun:"name,notnull"`
	Email        string     `bun:"email,notnull"`
	Company      string     `bun:"company"`
	Priority     string     `bun:"priority,notnull,default:'normal'"`
	Issue        string     `bun:"issue,notnull"`
	Status       string     `bun:"status,notnull,default:'unissued'"`
	AssignedToID *uuid.UUID `bun:"assigned_to_id,type:uuid"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
