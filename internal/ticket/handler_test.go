package ticket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdeskgo/helpdesk-api/internal/auth"
	"github.com/helpdeskgo/helpdesk-api/internal/logging"
)

type fakeEmailService struct {
	sent chan string
}

func (f *fakeEmailService) SendTicketReceivedEmail(_ context.Context, toEmail, _ string, _ uuid.UUID) error {
	if f.sent != nil {
		f.sent <- toEmail
	}
	return nil
}

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, *fakeEmailService) {
	t.Helper()

	repo, mock := newMockRepository(t)
	email := &fakeEmailService{sent: make(chan string, 1)}
	return NewHandler(repo, email, logging.NewLogger(true)), mock, email
}

func withSession(r *http.Request, session *auth.Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), auth.SessionContextKey, session))
}

func newAdminRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/api/v1/admin/tickets/{id}/assign", h.Assign)
	r.Post("/api/v1/admin/tickets/{id}/complete", h.Complete)
	return r
}

func TestList_UnknownStatus(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets?status=pending", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_DefaultsToOpen(t *testing.T) {
	h, mock, _ := newTestHandler(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM "tickets" AS "t" WHERE \(status = 'open'\)`).
		WillReturnRows(sqlmock.NewRows(ticketColumns()).
			AddRow(uuid.NewString(), "Bob", "bob@example.com", "", "normal", "vpn down", string(StatusOpen), nil, now, now))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Tickets, 1)
	assert.Equal(t, "vpn down", resp.Tickets[0].Issue)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_ValidationFailures(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"malformed body", "{not json", "invalid_request_body"},
		{"missing issue", `{"name":"Bob","email":"bob@example.com"}`, "validation_failed"},
		{"missing requester", `{"issue":"vpn down"}`, "validation_failed"},
		{"unknown priority", `{"name":"Bob","email":"bob@example.com","issue":"vpn down","priority":"urgent"}`, "validation_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock, _ := newTestHandler(t)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Create(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantCode)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreate_DefaultsFromSession(t *testing.T) {
	h, mock, email := newTestHandler(t)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO "tickets"`).
		WillReturnRows(sqlmock.NewRows(ticketColumns()).
			AddRow(id.String(), "Alice", "alice@example.com", "", "normal", "vpn down", string(StatusUnissued), nil, now, now))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets", strings.NewReader(`{"issue":"vpn down"}`))
	req = withSession(req, &auth.Session{
		ID:    uuid.New(),
		Email: "alice@example.com",
		Name:  "Alice",
	})
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var created Ticket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Alice", created.Name)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.Equal(t, StatusUnissued, created.Status)

	select {
	case to := <-email.sent:
		assert.Equal(t, "alice@example.com", to)
	case <-time.After(time.Second):
		t.Fatal("confirmation email was not sent")
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignHandler_InvalidID(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/tickets/not-a-uuid/assign", strings.NewReader("{}"))
	req = withSession(req, &auth.Session{ID: uuid.New(), IsAdmin: true})
	rec := httptest.NewRecorder()

	r := newAdminRouter(h)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignHandler_SelfAssignByDefault(t *testing.T) {
	h, mock, _ := newTestHandler(t)
	ticketID := uuid.New()

	mock.ExpectExec(`UPDATE "tickets"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/tickets/"+ticketID.String()+"/assign", strings.NewReader("{}"))
	req = withSession(req, &auth.Session{ID: uuid.New(), IsAdmin: true})
	rec := httptest.NewRecorder()

	r := newAdminRouter(h)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteHandler_NotOpen(t *testing.T) {
	h, mock, _ := newTestHandler(t)
	ticketID := uuid.New()

	mock.ExpectExec(`UPDATE "tickets"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/tickets/"+ticketID.String()+"/complete", nil)
	req = withSession(req, &auth.Session{ID: uuid.New(), IsAdmin: true})
	rec := httptest.NewRecorder()

	r := newAdminRouter(h)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
