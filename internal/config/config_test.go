package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "dev", cfg.Server.Env)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.TrustedOrigins)

	assert.Equal(t, TokenMakerJWT, cfg.Auth.TokenMaker)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "/auth/login", cfg.Auth.LoginURL)
	assert.Equal(t, "/", cfg.Auth.AppURL)
	assert.False(t, cfg.Auth.AzureConfigured())

	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
	assert.Contains(t, cfg.Database.ConnectionString(), "dbname=helpdesk")
}

func TestLoad_SessionTTLOverride(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("SESSION_TTL", "3600")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoad_SecretValidation(t *testing.T) {
	tests := []struct {
		name    string
		maker   string
		secret  string
		wantErr bool
	}{
		{"jwt short secret", TokenMakerJWT, "too-short", true},
		{"jwt 32 byte secret", TokenMakerJWT, testSecret, false},
		{"jwt long secret", TokenMakerJWT, testSecret + "and-some-extra", false},
		{"paseto 32 byte secret", TokenMakerPaseto, testSecret, false},
		{"paseto wrong size", TokenMakerPaseto, testSecret + "x", true},
		{"unknown maker", "nacl", testSecret, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", tt.secret)
			t.Setenv("TOKEN_MAKER", tt.maker)

			_, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_AzureConfigured(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("AZURE_AD_CLIENT_ID", "client-id")
	t.Setenv("AZURE_AD_CLIENT_SECRET", "client-secret")
	t.Setenv("AZURE_AD_TENANT_ID", "tenant-id")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Auth.AzureConfigured())
}

func TestGetSliceEnv(t *testing.T) {
	t.Setenv("TRUSTED_ORIGINS", "https://a.example.com, https://b.example.com ,")
	t.Setenv("SESSION_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.TrustedOrigins)
}
