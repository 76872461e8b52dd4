package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasetoService_KeyLength(t *testing.T) {
	_, err := NewPasetoService([]byte("too short"))
	assert.Error(t, err)

	_, err = NewPasetoService([]byte("0123456789abcdef0123456789abcdef"))
	assert.NoError(t, err)
}

func TestPasetoService_RoundTrip(t *testing.T) {
	svc, err := NewPasetoService([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	token, err := svc.CreateToken(testIdentity, "azure", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, testIdentity, claims.Identity)
	assert.Equal(t, "azure", claims.Provider)
}

func TestPasetoService_Tampered(t *testing.T) {
	svc, err := NewPasetoService([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	token, err := svc.CreateToken(testIdentity, "", time.Hour)
	require.NoError(t, err)

	mangled := []byte(token)
	last := len(mangled) - 1
	if mangled[last] == 'A' {
		mangled[last] = 'B'
	} else {
		mangled[last] = 'A'
	}

	_, err = svc.VerifyToken(string(mangled))
	assert.Error(t, err)
}

func TestPasetoService_Expired(t *testing.T) {
	svc, err := NewPasetoService([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	token, err := svc.CreateToken(testIdentity, "", -time.Minute)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.Error(t, err)
}
