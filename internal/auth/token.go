package auth

import (
	"time"

	"github.com/google/uuid"
)

// tokenIssuer identifies this service in issued tokens.
const tokenIssuer = "helpdesk-api"

// Identity is the minimal verified identity produced by either the local
// credential check or an external provider handshake.
type Identity struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	IsAdmin  bool      `json:"isAdmin"`
	Language string    `json:"language"`
}

// TokenClaims are the fields embedded in a signed session token. Tokens are
// immutable after issuance; a refresh replaces the token entirely.
type TokenClaims struct {
	Identity
	Provider  string    // provider name, empty for local logins
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService creates and verifies signed session tokens.
// Implementations include JWTService (HS256) and PasetoService (v4.local).
type TokenService interface {
	CreateToken(identity Identity, provider string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}
