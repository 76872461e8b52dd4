package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/helpdeskgo/helpdesk-api/internal/httputil"
	"github.com/helpdeskgo/helpdesk-api/internal/logging"
	"github.com/helpdeskgo/helpdesk-api/internal/ratelimit"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service      *Service
	rateLimiter  *ratelimit.Limiter
	logger       *logging.Logger
	isProduction bool
	loginURL     string
	appURL       string
}

func NewHandler(service *Service, rateLimiter *ratelimit.Limiter, logger *logging.Logger, isProduction bool, loginURL, appURL string) *Handler {
	return &Handler{
		service:      service,
		rateLimiter:  rateLimiter,
		logger:       logger,
		isProduction: isProduction,
		loginURL:     loginURL,
		appURL:       appURL,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries the session token for non-browser clients
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Login handles local credential login
// @Summary      User login
// @Description  Authenticate with email and password and receive a session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} TokenResponse
// @Failure      400 {object} ErrorResponse "Invalid request body"
// @Failure      401 {object} ErrorResponse "Invalid credentials"
// @Failure      429 {object} ErrorResponse "Too many requests"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	// Rate limit by IP
	ip := getClientIP(r)
	allowed, err := h.rateLimiter.Allow(r.Context(), ip, "login")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if !allowed {
		logger.Warn("IP rate limit exceeded for login", "ip", ip)
		respondError(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	identity, err := h.service.VerifyCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		// All credential failures look alike to the client
		logger.Warn("login failed: invalid credentials")
		respondError(w, "invalid email or password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
		return
	}

	h.issueSession(w, r, logger, *identity, "")
}

// AzureRedirect begins the Azure AD handshake
// @Summary      Azure AD login
// @Description  Redirect the browser to the Azure AD consent page
// @Tags         auth
// @Success      302
// @Failure      404 {object} ErrorResponse "Provider not configured"
// @Router       /auth/azure [get]
func (h *Handler) AzureRedirect(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.service.Provider(ProviderAzure)
	if !ok {
		respondError(w, "identity provider not configured", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	state, err := generateState()
	if err != nil {
		logging.GetLoggerFromContext(r.Context()).Error("failed to generate state", "error", err.Error())
		respondError(w, "failed to start external login", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	SetStateCookie(w, state, h.isProduction)
	http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusFound)
}

// AzureCallback completes the Azure AD handshake
// @Summary      Azure AD callback
// @Description  Complete the provider handshake and establish a session
// @Tags         auth
// @Produce      json
// @Param        code  query string true  "Authorization code"
// @Param        state query string true  "Anti-forgery state"
// @Success      302
// @Failure      401 {object} ErrorResponse "External authentication failed"
// @Router       /auth/callback/azure [get]
func (h *Handler) AzureCallback(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ClearStateCookie(w)

	if provErr := r.URL.Query().Get("error"); provErr != "" {
		logger.Warn("provider returned error", "provider_error", provErr)
		h.failExternal(w, r)
		return
	}

	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(StateCookieName)
	if err != nil || state == "" || state != stateCookie.Value {
		logger.Warn("state mismatch in provider callback")
		h.failExternal(w, r)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		logger.Warn("provider callback missing code")
		h.failExternal(w, r)
		return
	}

	identity, err := h.service.ExternalLogin(r.Context(), ProviderAzure, code)
	if err != nil {
		logger.Warn("external login failed", "error", err.Error())
		h.failExternal(w, r)
		return
	}

	logger = logger.WithFields(map[string]any{"email": identity.Email})
	h.issueSession(w, r, logger, *identity, ProviderAzure)
}

// Logout revokes the presented session token
// @Summary      User logout
// @Description  Revoke the current session and clear the session cookie
// @Tags         auth
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	token, err := tokenFromRequest(r)
	if err == nil {
		if err := h.service.Logout(r.Context(), token); err != nil {
			// Still clear the cookie; the token dies at TTL regardless
			logger.Warn("failed to revoke session token", "error", err.Error())
		}
	}

	ClearSessionCookie(w)

	logger.Info("user logged out")

	respondJSON(w, map[string]string{"message": "logged out"}, http.StatusOK)
}

// SessionInfo returns the current session view
// @Summary      Current session
// @Description  Reconstruct and return the session for the presented token
// @Tags         auth
// @Produce      json
// @Success      200 {object} Session
// @Failure      401 {object} ErrorResponse "No valid session"
// @Router       /auth/session [get]
func (h *Handler) SessionInfo(w http.ResponseWriter, r *http.Request) {
	token, err := tokenFromRequest(r)
	if err != nil {
		respondError(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	session, err := h.service.Session(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			respondError(w, "session has expired", httputil.CodeTokenExpired, http.StatusUnauthorized)
			return
		}
		respondError(w, "invalid session", httputil.CodeSessionInvalid, http.StatusUnauthorized)
		return
	}

	respondJSON(w, session, http.StatusOK)
}

// issueSession signs a token for the identity and delivers it either as an
// HTTP-only cookie (browser clients) or in the response body.
func (h *Handler) issueSession(w http.ResponseWriter, r *http.Request, logger *logging.Logger, identity Identity, provider string) {
	token, err := h.service.IssueToken(identity, provider)
	if err != nil {
		logger.Error("failed to issue session token", "error", err.Error())
		respondError(w, "failed to login", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("session issued", "user_id", identity.ID, "provider", provider)

	if provider != "" {
		// Provider callbacks always land in a browser
		SetSessionCookie(w, token, h.isProduction, h.service.SessionTTL())
		http.Redirect(w, r, h.appURL, http.StatusFound)
		return
	}

	if ShouldUseCookies(r) {
		SetSessionCookie(w, token, h.isProduction, h.service.SessionTTL())
		respondJSON(w, map[string]string{"message": "logged in successfully"}, http.StatusOK)
		return
	}

	respondJSON(w, TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(h.service.SessionTTL().Seconds()),
	}, http.StatusOK)
}

// failExternal reports a failed provider handshake: browsers bounce to the
// login page, API clients get a typed 401.
func (h *Handler) failExternal(w http.ResponseWriter, r *http.Request) {
	if ShouldUseCookies(r) || r.Header.Get("Accept") != "application/json" {
		http.Redirect(w, r, h.loginURL+"?error=external_auth_failed", http.StatusFound)
		return
	}
	respondError(w, "external authentication failed", httputil.CodeExternalAuthFailed, http.StatusUnauthorized)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data any, statusCode int) {
	httputil.RespondJSON(w, data, statusCode)
}

// respondError sends an error response with a machine-readable code
func respondError(w http.ResponseWriter, message string, code string, statusCode int) {
	httputil.RespondErrorWithCode(w, message, code, statusCode)
}

// generateState creates a cryptographically secure anti-forgery state value.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (behind proxy/load balancer)
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	// Check X-Real-IP header
	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fallback to RemoteAddr
	ip := r.RemoteAddr
	// RemoteAddr format is "IP:port", extract just the IP
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
