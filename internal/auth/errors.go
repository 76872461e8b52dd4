package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// callers cannot tell registered accounts apart from unregistered ones.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrExternalAuthFailed is returned when an identity provider handshake
	// is rejected or errors. There is no fallback to local credentials.
	ErrExternalAuthFailed = errors.New("external authentication failed")

	// ErrSessionInvalid is returned when a session token is missing,
	// malformed, incorrectly signed, expired, or revoked.
	ErrSessionInvalid = errors.New("session invalid")

	// ErrUnknownProvider is returned for a provider name with no registration.
	ErrUnknownProvider = errors.New("unknown identity provider")

	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
