package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/helpdeskgo/helpdesk-api/internal/auth"
	"github.com/helpdeskgo/helpdesk-api/internal/config"
	"github.com/helpdeskgo/helpdesk-api/internal/httputil"
	"github.com/helpdeskgo/helpdesk-api/internal/logging"
	"github.com/helpdeskgo/helpdesk-api/internal/ticket"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	cfg *config.Config,
	authHandler *auth.Handler,
	authMiddleware *auth.Middleware,
	ticketHandler *ticket.Handler,
	logger *logging.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)               // Security headers on all responses
	r.Use(middleware.Recoverer)          // Recover from panics
	r.Use(middleware.RequestID)          // Add request ID
	r.Use(middleware.RealIP)             // Set RemoteAddr to real IP
	r.Use(logging.RequestLogger(logger)) // Structured logging with request context
	r.Use(middleware.Compress(5))        // Compress responses

	// Public routes
	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		log.Println("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	} else {
		log.Println("Swagger UI disabled (production mode)")
	}

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/session", authHandler.SessionInfo)
		r.Get("/azure", authHandler.AzureRedirect)
		r.Get("/callback/azure", authHandler.AzureCallback)
	})

	// Protected API (require authentication)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.Get("/tickets", ticketHandler.List)
		r.Post("/tickets", ticketHandler.Create)

		// Admin-only surface, mirrors the admin gating in the web client
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware.RequireAdmin)

			r.Post("/tickets/{id}/assign", ticketHandler.Assign)
			r.Post("/tickets/{id}/complete", ticketHandler.Complete)
		})
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
