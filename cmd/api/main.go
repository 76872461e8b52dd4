package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	_ "github.com/helpdeskgo/helpdesk-api/docs" // Swagger docs (generated)
	"github.com/helpdeskgo/helpdesk-api/internal/auth"
	"github.com/helpdeskgo/helpdesk-api/internal/config"
	"github.com/helpdeskgo/helpdesk-api/internal/database"
	"github.com/helpdeskgo/helpdesk-api/internal/email"
	httpServer "github.com/helpdeskgo/helpdesk-api/internal/http"
	"github.com/helpdeskgo/helpdesk-api/internal/logging"
	"github.com/helpdeskgo/helpdesk-api/internal/ratelimit"
	"github.com/helpdeskgo/helpdesk-api/internal/ticket"
	"github.com/helpdeskgo/helpdesk-api/internal/user"
	"github.com/helpdeskgo/helpdesk-api/migrations"
)

// @title           Helpdesk API
// @version         1.0
// @description     Session-based authentication gateway and ticket API for the helpdesk.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Apply pending migrations
	if err := migrations.Migrate(db.DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize Redis connection
	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	userRepo := user.NewRepository(db)
	ticketRepo := ticket.NewRepository(db)
	revocations := auth.NewRedisRevocationStore(redisClient)

	// Initialize rate limiter
	rateLimiter := ratelimit.NewLimiter(redisClient)

	// Initialize token maker
	tokenService, err := initTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Initialize email service
	emailService := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
	)

	// Initialize auth service
	authService := auth.NewService(
		userRepo,
		revocations,
		tokenService,
		logger,
		cfg.Auth.SessionTTL,
	)

	if cfg.Auth.AzureConfigured() {
		authService.RegisterProvider(auth.NewAzureProvider(
			cfg.Auth.AzureClientID,
			cfg.Auth.AzureClientSecret,
			cfg.Auth.AzureTenantID,
			cfg.Server.BaseURL+"/auth/callback/azure",
		))
		logger.Info("azure ad provider enabled")
	} else {
		logger.Info("azure ad provider disabled (credentials not configured)")
	}

	// Initialize HTTP handlers
	authHandler := auth.NewHandler(
		authService,
		rateLimiter,
		logger,
		!cfg.Server.IsDevelopment(), // isProduction
		cfg.Auth.LoginURL,
		cfg.Auth.AppURL,
	)
	authMiddleware := auth.NewMiddleware(authService)
	ticketHandler := ticket.NewHandler(ticketRepo, emailService, logger)

	// Initialize router
	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, ticketHandler, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initTokenService builds the configured session token maker.
func initTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	switch cfg.TokenMaker {
	case config.TokenMakerPaseto:
		return auth.NewPasetoService(cfg.SigningSecret)
	default:
		return auth.NewJWTService(cfg.SigningSecret)
	}
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
