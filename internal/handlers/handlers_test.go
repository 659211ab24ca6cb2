package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/umorjyoti/simplifly/internal/auth"
	"github.com/umorjyoti/simplifly/internal/handlers"
	"github.com/umorjyoti/simplifly/internal/models"
	"github.com/umorjyoti/simplifly/internal/period"
	"github.com/umorjyoti/simplifly/internal/service"
	"github.com/umorjyoti/simplifly/internal/testutil"
)

type testAPI struct {
	t    *testing.T
	echo *echo.Echo
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", time.Hour, "test")
	svc := service.New(testutil.NewMemStore(), tokens, zap.NewNop(),
		service.WithSuperadmins([]string{"root@example.com"}))

	e := echo.New()
	handlers.New(svc, tokens, zap.NewNop()).RegisterRoutes(e)
	return &testAPI{t: t, echo: e}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// register signs up a user and returns its token
func (a *testAPI) register(email string) (string, *models.User) {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"name":     "Test User",
		"password": "password",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	session := decode[service.Session](a.t, rec)
	return session.Token, session.User
}

func (a *testAPI) createWorkspace(token string) *models.Workspace {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/workspaces", token, map[string]string{"name": "Acme"})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[*models.Workspace](a.t, rec)
}

func (a *testAPI) createTicket(token, workspaceID string, body map[string]any) *models.Ticket {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/workspaces/"+workspaceID+"/tickets", token, body)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[*models.Ticket](a.t, rec)
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing token", token: ""},
		{name: "garbage token", token: "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(http.MethodGet, "/api/workspaces", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			body := decode[handlers.ErrorResponse](t, rec)
			assert.Equal(t, handlers.ErrCodeUnauthorized, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestRegisterLoginMe(t *testing.T) {
	api := newTestAPI(t)
	_, user := api.register("alice@example.com")

	rec := api.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "alice@example.com", "name": "Again", "password": "password",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, handlers.ErrCodeConflict, decode[handlers.ErrorResponse](t, rec).Code)

	rec = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "password",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode[service.Session](t, rec)

	rec = api.do(http.MethodGet, "/api/auth/me", session.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[models.User](t, rec)
	assert.Equal(t, user.ID, me.ID)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegisterValidationError(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "nope", "name": "A", "password": "password",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[handlers.ErrorResponse](t, rec)
	assert.Equal(t, handlers.ErrCodeValidation, body.Code)
	assert.Equal(t, "email must be a valid email address", body.Message)
}

func TestRegisterRejectsDisplayNameAddress(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "Mallory <root@example.com>", "name": "Mallory", "password": "password",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, handlers.ErrCodeValidation, decode[handlers.ErrorResponse](t, rec).Code)

	rec = api.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "mallory@example.com", "password": "abc",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name is required; password must be at least 6 characters",
		decode[handlers.ErrorResponse](t, rec).Message)
}

func TestTicketFlow(t *testing.T) {
	api := newTestAPI(t)
	token, user := api.register("owner@example.com")
	ws := api.createWorkspace(token)

	ticket := api.createTicket(token, ws.ID, map[string]any{"title": "Landing page"})
	assert.Equal(t, models.StatusTodo, ticket.Status)
	assert.Equal(t, user.ID, *ticket.AssigneeID)

	rec := api.do(http.MethodPatch, "/api/tickets/"+ticket.ID+"/status", token, map[string]any{"status": "completed"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, handlers.ErrCodeValidation, decode[handlers.ErrorResponse](t, rec).Code)

	rec = api.do(http.MethodPatch, "/api/tickets/"+ticket.ID+"/hours", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPatch, "/api/tickets/"+ticket.ID+"/status", token, map[string]any{
		"status":       "completed",
		"hours_worked": 4,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	completed := decode[models.Ticket](t, rec)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	assert.Equal(t, models.PaymentPending, completed.PaymentStatus)
	assert.NotNil(t, completed.CompletedAt)

	rec = api.do(http.MethodGet, "/api/tickets/"+ticket.ID+"/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.TicketHistory](t, rec), 4)

	rec = api.do(http.MethodGet, "/api/workspaces/"+ws.ID+"/tickets?status=completed", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Ticket](t, rec), 1)

	rec = api.do(http.MethodGet, "/api/workspaces/"+ws.ID+"/tickets?date=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodDelete, "/api/tickets/"+ticket.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(http.MethodGet, "/api/tickets/"+ticket.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, handlers.ErrCodeNotFound, decode[handlers.ErrorResponse](t, rec).Code)
}

func TestWorkspaceForbiddenForOutsider(t *testing.T) {
	api := newTestAPI(t)
	owner, _ := api.register("owner@example.com")
	outsider, _ := api.register("outsider@example.com")
	ws := api.createWorkspace(owner)

	rec := api.do(http.MethodGet, "/api/workspaces/"+ws.ID, outsider, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, handlers.ErrCodeForbidden, decode[handlers.ErrorResponse](t, rec).Code)
}

func TestInviteJoinFlow(t *testing.T) {
	api := newTestAPI(t)
	owner, _ := api.register("owner@example.com")
	joiner, _ := api.register("joiner@example.com")
	ws := api.createWorkspace(owner)

	rec := api.do(http.MethodPost, "/api/workspaces/"+ws.ID+"/invites", owner, map[string]any{"expires_in_hours": 48})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	link := decode[models.WorkspaceInvite](t, rec)

	rec = api.do(http.MethodGet, "/api/invites/"+link.Token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme", decode[service.InvitePreview](t, rec).WorkspaceName)

	rec = api.do(http.MethodPost, "/api/invites/"+link.Token+"/join", joiner, nil)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	request := decode[models.WorkspaceInvite](t, rec)

	rec = api.do(http.MethodPost, "/api/workspaces/"+ws.ID+"/invites/"+request.ID+"/approve", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/workspaces/"+ws.ID+"/members", joiner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.User](t, rec), 2)
}

func TestBillingEndpoints(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("owner@example.com")
	ws := api.createWorkspace(token)

	ticket := api.createTicket(token, ws.ID, map[string]any{
		"title":        "Shipped",
		"status":       "completed",
		"hours_worked": 3,
	})

	rec := api.do(http.MethodGet, "/api/workspaces/"+ws.ID+"/billing/billable", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[service.Billable](t, rec).Tickets, 1)

	selection := map[string]any{
		"ticket_ids":  []string{ticket.ID},
		"hourly_rate": 50,
		"scope":       "agency",
	}
	rec = api.do(http.MethodPost, "/api/workspaces/"+ws.ID+"/billing/generate", token, selection)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var inv struct {
		Totals struct {
			TotalHours  float64 `json:"total_hours"`
			TotalAmount float64 `json:"total_amount"`
		} `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inv))
	assert.InDelta(t, 3.0, inv.Totals.TotalHours, 1e-9)
	assert.InDelta(t, 150.0, inv.Totals.TotalAmount, 1e-9)

	rec = api.do(http.MethodPost, "/api/workspaces/"+ws.ID+"/billing/export", token, selection)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment; filename=\"invoice-")
	assert.Equal(t, []byte("PK"), rec.Body.Bytes()[:2])

	rec = api.do(http.MethodPatch, "/api/workspaces/"+ws.ID+"/billing/payment-status", token, map[string]any{
		"ticket_ids":     []string{ticket.ID},
		"payment_status": "billed",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[[]models.Ticket](t, rec)
	require.Len(t, updated, 1)
	assert.Equal(t, models.PaymentBilled, updated[0].PaymentStatus)

	rec = api.do(http.MethodPost, "/api/workspaces/"+ws.ID+"/billing/generate", token, map[string]any{
		"hourly_rate": 50,
		"scope":       "agency",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPeriodEndpoints(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("user@example.com")

	rec := api.do(http.MethodGet, "/api/periods?type=quarterly&date=2024-11-10", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rng := decode[period.Range](t, rec)
	assert.Equal(t, models.PeriodQuarterly, rng.Type)
	assert.Equal(t, time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC), rng.Start.UTC())

	rec = api.do(http.MethodGet, "/api/periods?type=fortnightly&date=2024-11-10", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.PeriodMonthly, decode[period.Range](t, rec).Type)

	rec = api.do(http.MethodGet, "/api/periods/months?year=2024", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	months := decode[[]period.Month](t, rec)
	require.Len(t, months, 12)
	assert.Equal(t, "February", months[1].Name)
	assert.Equal(t, 29, months[1].End.Day())

	rec = api.do(http.MethodGet, "/api/periods/months?year=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	api := newTestAPI(t)
	admin, _ := api.register("root@example.com")
	user, account := api.register("user@example.com")

	rec := api.do(http.MethodGet, "/api/admin/users", user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodGet, "/api/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.User](t, rec), 2)

	rec = api.do(http.MethodPatch, "/api/admin/users/"+account.ID+"/role", admin, map[string]string{"role": "superadmin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.RoleSuperadmin, decode[models.User](t, rec).Role)

	rec = api.do(http.MethodPatch, "/api/admin/users/"+account.ID+"/role", admin, map[string]string{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDemotedSuperadminLosesAccess(t *testing.T) {
	api := newTestAPI(t)
	root, _ := api.register("root@example.com")
	_, alice := api.register("alice@example.com")

	rec := api.do(http.MethodPatch, "/api/admin/users/"+alice.ID+"/role", root, map[string]string{"role": "superadmin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "password",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode[service.Session](t, rec)
	assert.Equal(t, models.RoleSuperadmin, session.User.Role)

	rec = api.do(http.MethodGet, "/api/admin/users", session.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodPatch, "/api/admin/users/"+alice.ID+"/role", root, map[string]string{"role": "user"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/admin/users", session.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = api.do(http.MethodGet, "/api/auth/me", session.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleUser, decode[models.User](t, rec).Role)
}
