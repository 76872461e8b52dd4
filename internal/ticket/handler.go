package ticket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/helpdeskgo/helpdesk-api/internal/auth"
	"github.com/helpdeskgo/helpdesk-api/internal/httputil"
	"github.com/helpdeskgo/helpdesk-api/internal/logging"
)

// EmailService sends ticket notifications.
type EmailService interface {
	SendTicketReceivedEmail(ctx context.Context, toEmail, name string, ticketID uuid.UUID) error
}

// Handler contains HTTP handlers for ticket endpoints
type Handler struct {
	repo   *Repository
	email  EmailService
	logger *logging.Logger
}

func NewHandler(repo *Repository, email EmailService, logger *logging.Logger) *Handler {
	return &Handler{
		repo:   repo,
		email:  email,
		logger: logger,
	}
}

// CreateRequest represents the ticket creation request body
type CreateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Company  string `json:"company"`
	Priority string `json:"priority"`
	Issue    string `json:"issue"`
}

// ListResponse wraps a ticket listing
type ListResponse struct {
	Tickets []*Ticket `json:"tickets"`
	Count   int       `json:"count"`
}

// AssignRequest optionally names an assignee; empty means self-assign.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// List returns tickets filtered by status
// @Summary      List tickets
// @Description  List tickets in the given state (open, unissued, or closed)
// @Tags         tickets
// @Produce      json
// @Param        status query string false "Ticket status" default(open)
// @Success      200 {object} ListResponse
// @Failure      400 {object} httputil.ErrorResponse "Unknown status"
// @Security     BearerAuth
// @Router       /api/v1/tickets [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	status := Status(r.URL.Query().Get("status"))
	if status == "" {
		status = StatusOpen
	}
	if !ValidStatus(status) {
		httputil.RespondErrorWithCode(w, "unknown ticket status", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	tickets, err := h.repo.ListByStatus(r.Context(), status)
	if err != nil {
		logger.Error("failed to list tickets", "status", status, "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list tickets", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, ListResponse{Tickets: tickets, Count: len(tickets)}, http.StatusOK)
}

// Create opens a new ticket for the current user
// @Summary      Create ticket
// @Description  File a new helpdesk ticket; requester details default to the session identity
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        request body CreateRequest true "Ticket details"
// @Success      201 {object} Ticket
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Security     BearerAuth
// @Router       /api/v1/tickets [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid ticket request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	// Requester details default to the logged-in identity
	if session, ok := auth.GetSessionFromContext(r.Context()); ok {
		if req.Name == "" {
			req.Name = session.Name
		}
		if req.Email == "" {
			req.Email = session.Email
		}
	}

	if req.Issue == "" {
		httputil.RespondErrorWithCode(w, "issue is required", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" {
		httputil.RespondErrorWithCode(w, "name and email are required", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}
	switch req.Priority {
	case "":
		req.Priority = PriorityNormal
	case PriorityLow, PriorityNormal, PriorityHigh:
	default:
		httputil.RespondErrorWithCode(w, "unknown priority", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	created, err := h.repo.Create(r.Context(), &Ticket{
		Name:     req.Name,
		Email:    req.Email,
		Company:  req.Company,
		Priority: req.Priority,
		Issue:    req.Issue,
	})
	if err != nil {
		logger.Error("failed to create ticket", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create ticket", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("ticket created", "ticket_id", created.ID)

	// Confirmation email must not block or fail the request
	go func() {
		emailCtx := context.Background()
		if err := h.email.SendTicketReceivedEmail(emailCtx, created.Email, created.Name, created.ID); err != nil {
			h.logger.Warn("failed to send ticket confirmation", "email", created.Email, "error", err.Error())
		}
	}()

	httputil.RespondJSON(w, created, http.StatusCreated)
}

// Assign puts an unissued ticket into an engineer's queue
// @Summary      Assign ticket
// @Description  Assign an unissued ticket; assignee defaults to the current admin
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id      path string        true  "Ticket ID"
// @Param        request body AssignRequest false "Assignee"
// @Success      200 {object} map[string]string
// @Failure      404 {object} httputil.ErrorResponse "Ticket not found or not unissued"
// @Security     BearerAuth
// @Router       /api/v1/admin/tickets/{id}/assign [post]
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid ticket id", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	session, ok := auth.GetSessionFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	assigneeID := session.ID
	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.AssigneeID != "" {
		assigneeID, err = uuid.Parse(req.AssigneeID)
		if err != nil {
			httputil.RespondErrorWithCode(w, "invalid assignee id", httputil.CodeValidationFailed, http.StatusBadRequest)
			return
		}
	}

	if err := h.repo.Assign(r.Context(), id, assigneeID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "ticket not found or already assigned", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to assign ticket", "ticket_id", id, "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to assign ticket", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("ticket assigned", "ticket_id", id, "assignee_id", assigneeID)

	httputil.RespondJSON(w, map[string]string{"message": "ticket assigned"}, http.StatusOK)
}

// Complete closes an open ticket
// @Summary      Complete ticket
// @Description  Close an open ticket
// @Tags         tickets
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Success      200 {object} map[string]string
// @Failure      404 {object} httputil.ErrorResponse "Ticket not found or not open"
// @Security     BearerAuth
// @Router       /api/v1/admin/tickets/{id}/complete [post]
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid ticket id", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	if err := h.repo.Complete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "ticket not found or not open", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to complete ticket", "ticket_id", id, "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to complete ticket", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("ticket completed", "ticket_id", id)

	httputil.RespondJSON(w, map[string]string{"message": "ticket completed"}, http.StatusOK)
}
