package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// TokenMakerJWT signs sessions as HS256 JWTs.
	TokenMakerJWT = "jwt"
	// TokenMakerPaseto encrypts sessions as PASETO v4.local tokens.
	TokenMakerPaseto = "paseto"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Email    EmailConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	BaseURL         string // public base URL, used for provider redirects
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string // CORS allowed origins for cookie auth
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	// SigningSecret signs session tokens. Must be exactly 32 bytes when the
	// PASETO maker is selected (v4.local key size).
	SigningSecret []byte
	TokenMaker    string
	SessionTTL    time.Duration
	LoginURL      string // where browser clients are sent when unauthenticated
	AppURL        string // where browser clients land after a provider login

	AzureClientID     string
	AzureClientSecret string
	AzureTenantID     string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
}

// Load reads configuration from environment variables. The returned Config is
// built once at startup and never mutated afterwards.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "dev"),
			BaseURL:         getEnv("SERVER_BASE_URL", "http://localhost:8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "helpdesk"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			SigningSecret: []byte(getEnv("SESSION_SECRET", "")),
			TokenMaker:    getEnv("TOKEN_MAKER", TokenMakerJWT),
			SessionTTL:    getDurationEnv("SESSION_TTL", 30*24*time.Hour),
			LoginURL:      getEnv("LOGIN_URL", "/auth/login"),
			AppURL:        getEnv("APP_URL", "/"),

			AzureClientID:     getEnv("AZURE_AD_CLIENT_ID", ""),
			AzureClientSecret: getEnv("AZURE_AD_CLIENT_SECRET", ""),
			AzureTenantID:     getEnv("AZURE_AD_TENANT_ID", ""),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASS", ""),
		},
	}

	if len(cfg.Auth.SigningSecret) == 0 {
		return nil, fmt.Errorf("SESSION_SECRET must be set")
	}

	switch cfg.Auth.TokenMaker {
	case TokenMakerJWT:
		// HMAC accepts any key length, but short keys are guessable
		if len(cfg.Auth.SigningSecret) < 32 {
			return nil, fmt.Errorf("SESSION_SECRET must be at least 32 bytes for the jwt maker, got %d", len(cfg.Auth.SigningSecret))
		}
	case TokenMakerPaseto:
		if len(cfg.Auth.SigningSecret) != 32 {
			return nil, fmt.Errorf("SESSION_SECRET must be exactly 32 bytes for the paseto maker, got %d", len(cfg.Auth.SigningSecret))
		}
	default:
		return nil, fmt.Errorf("unknown TOKEN_MAKER %q (expected %q or %q)", cfg.Auth.TokenMaker, TokenMakerJWT, TokenMakerPaseto)
	}

	if cfg.Auth.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}

	return cfg, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

// AzureConfigured reports whether all Azure AD provider settings are present.
func (c *AuthConfig) AzureConfigured() bool {
	return c.AzureClientID != "" && c.AzureClientSecret != "" && c.AzureTenantID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
