package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/auth"
	"github.com/umorjyoti/simplifly/internal/middleware"
	"github.com/umorjyoti/simplifly/internal/service"
	"github.com/umorjyoti/simplifly/internal/validation"
)

// API error codes
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

type Handler struct {
	svc    *service.Service
	tokens *auth.TokenManager
	logger *zap.Logger
}

// New creates the HTTP handlers
func New(svc *service.Service, tokens *auth.TokenManager, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		tokens: tokens,
		logger: logger,
	}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func newErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Message: message, Code: code}
}

// fail maps err onto a status code and error body. Expected failures are
// logged at warn, everything else at error with a generic message.
func (h *Handler) fail(c echo.Context, op string, err error, fields ...zap.Field) error {
	var (
		status int
		code   string
	)
	switch {
	case errors.Is(err, apperr.ErrValidation):
		status, code = http.StatusBadRequest, ErrCodeValidation
	case errors.Is(err, apperr.ErrUnauthorized):
		status, code = http.StatusUnauthorized, ErrCodeUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		status, code = http.StatusForbidden, ErrCodeForbidden
	case errors.Is(err, apperr.ErrNotFound):
		status, code = http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, apperr.ErrConflict):
		status, code = http.StatusConflict, ErrCodeConflict
	default:
		h.logger.Error(op+": unexpected error", append(fields, zap.Error(err))...)
		return c.JSON(http.StatusInternalServerError, newErrorResponse(ErrCodeInternal, "internal server error"))
	}

	h.logger.Warn(op+": request rejected", append(fields, zap.Int("status", status), zap.String("reason", err.Error()))...)
	return c.JSON(status, newErrorResponse(code, apperr.Message(err)))
}

// badRequest answers a malformed request body or parameter
func (h *Handler) badRequest(c echo.Context, op string, err error) error {
	h.logger.Warn(op+": invalid request", zap.Error(err))
	return c.JSON(http.StatusBadRequest, newErrorResponse(ErrCodeValidation, "invalid request body"))
}

// parseDate accepts YYYY-MM-DD or RFC 3339; an empty value yields nil
func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if d, err := time.Parse("2006-01-02", raw); err == nil {
		return &d, nil
	}
	d, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperr.Validation("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return &d, nil
}

func parseBool(raw string) bool {
	b, _ := strconv.ParseBool(raw)
	return b
}

// RegisterRoutes registers every API route
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Validator = validation.New()
	api := e.Group("/api")

	// Public
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/invites/:token", h.PreviewInvite)

	secured := api.Group("", middleware.JWT(h.tokens, h.svc, h.logger))

	secured.GET("/auth/me", h.Me)

	// Workspaces
	secured.GET("/workspaces", h.ListWorkspaces)
	secured.POST("/workspaces", h.CreateWorkspace)
	secured.GET("/workspaces/:id", h.GetWorkspace)
	secured.PUT("/workspaces/:id", h.UpdateWorkspace)
	secured.DELETE("/workspaces/:id", h.DeleteWorkspace)
	secured.GET("/workspaces/:id/members", h.ListMembers)
	secured.DELETE("/workspaces/:id/members/:userId", h.RemoveMember)
	secured.POST("/workspaces/:id/leave", h.LeaveWorkspace)

	// Invites
	secured.GET("/workspaces/:id/invites", h.ListInvites)
	secured.POST("/workspaces/:id/invites", h.CreateInvite)
	secured.DELETE("/workspaces/:id/invites/:inviteId", h.RevokeInvite)
	secured.POST("/workspaces/:id/invites/:inviteId/approve", h.ApproveRequest)
	secured.POST("/workspaces/:id/invites/:inviteId/reject", h.RejectRequest)
	secured.POST("/invites/:token/join", h.RequestJoin)

	// Tickets
	secured.GET("/workspaces/:id/tickets", h.ListTickets)
	secured.POST("/workspaces/:id/tickets", h.CreateTicket)
	secured.GET("/workspaces/:id/years", h.GoLiveYears)
	secured.GET("/tickets/:id", h.GetTicket)
	secured.PUT("/tickets/:id", h.UpdateTicket)
	secured.DELETE("/tickets/:id", h.DeleteTicket)
	secured.PATCH("/tickets/:id/status", h.PatchStatus)
	secured.PATCH("/tickets/:id/hours", h.PatchHours)
	secured.GET("/tickets/:id/history", h.TicketHistory)

	// Checklist
	secured.GET("/tickets/:id/subtasks", h.ListSubtasks)
	secured.POST("/tickets/:id/subtasks", h.CreateSubtask)
	secured.PUT("/subtasks/:id", h.UpdateSubtask)
	secured.DELETE("/subtasks/:id", h.DeleteSubtask)

	// Comments
	secured.GET("/tickets/:id/comments", h.ListComments)
	secured.POST("/tickets/:id/comments", h.CreateComment)
	secured.PUT("/comments/:id", h.UpdateComment)
	secured.DELETE("/comments/:id", h.DeleteComment)

	// Billing
	secured.GET("/workspaces/:id/billing/billable", h.ListBillable)
	secured.POST("/workspaces/:id/billing/generate", h.GenerateBill)
	secured.POST("/workspaces/:id/billing/export", h.ExportBill)
	secured.PATCH("/workspaces/:id/billing/payment-status", h.UpdatePaymentStatus)
	secured.GET("/workspaces/:id/bill-items", h.ListBillItems)
	secured.POST("/workspaces/:id/bill-items", h.CreateBillItem)
	secured.PUT("/bill-items/:id", h.UpdateBillItem)
	secured.DELETE("/bill-items/:id", h.DeleteBillItem)

	// Periods
	secured.GET("/periods", h.GetPeriod)
	secured.GET("/periods/months", h.GetMonths)

	// Superadmin
	admin := secured.Group("/admin", middleware.RequireSuperadmin)
	admin.GET("/users", h.AdminListUsers)
	admin.GET("/workspaces", h.AdminListWorkspaces)
	admin.PATCH("/users/:id/role", h.AdminSetRole)
}
