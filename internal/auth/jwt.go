package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// sessionClaims is the JWT payload for a session token.
type sessionClaims struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	IsAdmin  bool   `json:"is_admin"`
	Language string `json:"language,omitempty"`
	Provider string `json:"provider,omitempty"`
	jwt.RegisteredClaims
}

// JWTService issues HMAC-SHA256 signed JWT session tokens.
type JWTService struct {
	signKey []byte
}

func NewJWTService(signKey []byte) (*JWTService, error) {
	if len(signKey) == 0 {
		return nil, errors.New("jwt sign key must not be empty")
	}
	return &JWTService{signKey: signKey}, nil
}

// CreateToken generates a signed JWT carrying the identity claims.
func (s *JWTService) CreateToken(identity Identity, provider string, duration time.Duration) (string, error) {
	now := time.Now()

	claims := sessionClaims{
		Email:    identity.Email,
		Name:     identity.Name,
		IsAdmin:  identity.IsAdmin,
		Language: identity.Language,
		Provider: provider,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   identity.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
}

// VerifyToken validates the signature, issuer, and expiry of a session token
// and returns its claims. No claim is trusted unless verification succeeds.
func (s *JWTService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	claims := new(sessionClaims)
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		return s.signKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{
		Identity: Identity{
			ID:       userID,
			Email:    claims.Email,
			Name:     claims.Name,
			IsAdmin:  claims.IsAdmin,
			Language: claims.Language,
		},
		Provider:  claims.Provider,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
