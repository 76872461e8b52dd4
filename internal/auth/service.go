package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/helpdeskgo/helpdesk-api/internal/logging"
	"github.com/helpdeskgo/helpdesk-api/internal/user"
)

// UserStore is the read-only view of the account store the gateway needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// RevocationStore remembers revoked session tokens until their natural expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}

// Provider performs an external identity handshake and maps the provider's
// claims to the same minimal identity shape local auth produces.
type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// Session is the request-scoped view reconstructed from a verified token.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"isAdmin"`
	Language  string    `json:"language"`
	Provider  string    `json:"provider,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// dummyHash keeps the unknown-email path as expensive as a wrong password,
// so response timing does not reveal whether the account exists.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Service implements the authentication gateway: credential verification,
// token issuance, and session reconstruction.
type Service struct {
	users       UserStore
	revocations RevocationStore
	tokens      TokenService
	providers   map[string]Provider
	logger      *logging.Logger
	sessionTTL  time.Duration
}

func NewService(
	users UserStore,
	revocations RevocationStore,
	tokens TokenService,
	logger *logging.Logger,
	sessionTTL time.Duration,
) *Service {
	return &Service{
		users:       users,
		revocations: revocations,
		tokens:      tokens,
		providers:   make(map[string]Provider),
		logger:      logger,
		sessionTTL:  sessionTTL,
	}
}

// RegisterProvider makes an external identity provider available for login.
// Called during startup only; the provider set is immutable afterwards.
func (s *Service) RegisterProvider(p Provider) {
	s.providers[p.Name()] = p
}

// Provider returns a registered provider by name.
func (s *Service) Provider(name string) (Provider, bool) {
	p, ok := s.providers[name]
	return p, ok
}

// SessionTTL returns the configured token lifetime.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

// VerifyCredentials checks an email/password pair against the user store and
// returns the minimal identity on success. Every failure on this path,
// including internal store errors, surfaces as ErrInvalidCredentials; the
// real cause is logged server-side only.
func (s *Service) VerifyCredentials(ctx context.Context, email, password string) (*Identity, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			s.logger.Error("user lookup failed during login", "error", err.Error())
		}
		// Burn a comparison so the miss costs as much as a mismatch
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &Identity{
		ID:       existing.ID,
		Email:    existing.Email,
		Name:     existing.Name,
		IsAdmin:  existing.IsAdmin,
		Language: existing.Language,
	}, nil
}

// ExternalLogin completes an identity provider handshake and returns the
// mapped identity. Provider identities never touch the user store.
func (s *Service) ExternalLogin(ctx context.Context, providerName, code string) (*Identity, error) {
	p, ok := s.providers[providerName]
	if !ok {
		return nil, ErrUnknownProvider
	}

	identity, err := p.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("provider handshake failed", "provider", providerName, "error", err.Error())
		return nil, ErrExternalAuthFailed
	}

	return identity, nil
}

// IssueToken embeds the verified identity into a signed token with the
// configured TTL. Issuance does not write to the user store.
func (s *Service) IssueToken(identity Identity, provider string) (string, error) {
	return s.tokens.CreateToken(identity, provider, s.sessionTTL)
}

// Session reconstructs a trustworthy session view from a signed token.
// Signature, expiry, and the revocation list are all checked; any failure is
// ErrSessionInvalid and the caller must treat the request as anonymous.
func (s *Service) Session(ctx context.Context, tokenStr string) (*Session, error) {
	if tokenStr == "" {
		return nil, ErrSessionInvalid
	}

	claims, err := s.tokens.VerifyToken(tokenStr)
	if err != nil {
		return nil, errors.Join(ErrSessionInvalid, err)
	}

	revoked, err := s.revocations.IsRevoked(ctx, hashToken(tokenStr))
	if err != nil {
		// Fail closed: an unreadable revocation list must not admit sessions
		s.logger.Error("revocation check failed", "error", err.Error())
		return nil, ErrSessionInvalid
	}
	if revoked {
		return nil, ErrSessionInvalid
	}

	return &Session{
		ID:        claims.ID,
		Email:     claims.Email,
		Name:      claims.Name,
		IsAdmin:   claims.IsAdmin,
		Language:  claims.Language,
		Provider:  claims.Provider,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// Logout revokes the presented token for its remaining lifetime. Tokens that
// no longer verify need no revocation entry.
func (s *Service) Logout(ctx context.Context, tokenStr string) error {
	claims, err := s.tokens.VerifyToken(tokenStr)
	if err != nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	return s.revocations.Revoke(ctx, hashToken(tokenStr), ttl)
}

// hashToken returns the hex SHA-256 of a token; revocation entries store the
// hash so the list never holds usable credentials.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
