package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/umorjyoti/simplifly/internal/lifecycle"
	"github.com/umorjyoti/simplifly/internal/middleware"
	"github.com/umorjyoti/simplifly/internal/models"
	"github.com/umorjyoti/simplifly/internal/service"
)

// updateTicketRequest is the body of PUT /tickets/:id. Absent fields are left untouched.
type updateTicketRequest struct {
	Title           *string               `json:"title"`
	Description     *string               `json:"description"`
	GoLiveDate      *time.Time            `json:"go_live_date"`
	ClearGoLiveDate bool                  `json:"clear_go_live_date"`
	AssigneeID      *string               `json:"assignee_id"`
	Status          *models.TicketStatus  `json:"status"`
	HoursWorked     *float64              `json:"hours_worked"`
	PaymentStatus   *models.PaymentStatus `json:"payment_status"`
}

func (r updateTicketRequest) toUpdate() lifecycle.Update {
	return lifecycle.Update{
		Title:         r.Title,
		Description:   r.Description,
		GoLiveDate:    r.GoLiveDate,
		ClearGoLive:   r.ClearGoLiveDate,
		AssigneeID:    r.AssigneeID,
		Status:        r.Status,
		HoursWorked:   r.HoursWorked,
		PaymentStatus: r.PaymentStatus,
	}
}

// ListTickets lists the tickets of a workspace with optional filters
func (h *Handler) ListTickets(c echo.Context) error {
	id := c.Param("id")

	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return h.fail(c, "ListTickets", err)
	}
	q := service.TicketQuery{
		Status:         models.TicketStatus(c.QueryParam("status")),
		Type:           models.TicketType(c.QueryParam("type")),
		AssigneeID:     c.QueryParam("assignee_id"),
		ParentTicketID: c.QueryParam("parent_ticket_id"),
		PaymentStatus:  models.PaymentStatus(c.QueryParam("payment_status")),
		Backlog:        parseBool(c.QueryParam("backlog")),
		Period:         c.QueryParam("period"),
		Date:           date,
	}

	tickets, err := h.svc.ListTickets(c.Request().Context(), middleware.Actor(c), id, q)
	if err != nil {
		return h.fail(c, "ListTickets", err, zap.String("workspace_id", id))
	}

	h.logger.Debug("ListTickets: tickets listed", zap.String("workspace_id", id), zap.Int("count", len(tickets)))
	return c.JSON(http.StatusOK, tickets)
}

// CreateTicket creates a story or subtask ticket
func (h *Handler) CreateTicket(c echo.Context) error {
	id := c.Param("id")
	h.logger.Info("CreateTicket: start processing request", zap.String("workspace_id", id))

	var req service.TicketInput
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "CreateTicket", err)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, "CreateTicket", err)
	}

	ticket, err := h.svc.CreateTicket(c.Request().Context(), middleware.Actor(c), id, req)
	if err != nil {
		return h.fail(c, "CreateTicket", err, zap.String("workspace_id", id), zap.String("type", string(req.Type)))
	}

	h.logger.Info("CreateTicket: ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("type", string(ticket.Type)),
		zap.String("status", string(ticket.Status)))
	return c.JSON(http.StatusCreated, ticket)
}

// GetTicket returns a single ticket
func (h *Handler) GetTicket(c echo.Context) error {
	id := c.Param("id")
	ticket, err := h.svc.GetTicket(c.Request().Context(), middleware.Actor(c), id)
	if err != nil {
		return h.fail(c, "GetTicket", err, zap.String("ticket_id", id))
	}
	return c.JSON(http.StatusOK, ticket)
}

// UpdateTicket applies a partial update to a ticket
func (h *Handler) UpdateTicket(c echo.Context) error {
	id := c.Param("id")
	h.logger.Info("UpdateTicket: start processing request", zap.String("ticket_id", id))

	var req updateTicketRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "UpdateTicket", err)
	}

	ticket, err := h.svc.UpdateTicket(c.Request().Context(), middleware.Actor(c), id, req.toUpdate())
	if err != nil {
		return h.fail(c, "UpdateTicket", err, zap.String("ticket_id", id))
	}

	h.logger.Info("UpdateTicket: ticket updated", zap.String("ticket_id", id), zap.String("status", string(ticket.Status)))
	return c.JSON(http.StatusOK, ticket)
}

// PatchStatus moves a ticket to a new status, optionally with hours
func (h *Handler) PatchStatus(c echo.Context) error {
	id := c.Param("id")

	var req struct {
		Status      models.TicketStatus `json:"status" validate:"required"`
		HoursWorked *float64            `json:"hours_worked" validate:"omitempty,gte=0"`
	}
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "PatchStatus", err)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, "PatchStatus", err)
	}

	h.logger.Info("PatchStatus: changing status", zap.String("ticket_id", id), zap.String("status", string(req.Status)))

	ticket, err := h.svc.PatchStatus(c.Request().Context(), middleware.Actor(c), id, req.Status, req.HoursWorked)
	if err != nil {
		return h.fail(c, "PatchStatus", err, zap.String("ticket_id", id), zap.String("status", string(req.Status)))
	}

	h.logger.Info("PatchStatus: status changed",
		zap.String("ticket_id", id),
		zap.String("status", string(ticket.Status)),
		zap.String("payment_status", string(ticket.PaymentStatus)))
	return c.JSON(http.StatusOK, ticket)
}

// PatchHours records the hours worked on a ticket
func (h *Handler) PatchHours(c echo.Context) error {
	id := c.Param("id")

	var req struct {
		HoursWorked *float64 `json:"hours_worked" validate:"required,gte=0"`
	}
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "PatchHours", err)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, "PatchHours", err, zap.String("ticket_id", id))
	}

	ticket, err := h.svc.PatchHours(c.Request().Context(), middleware.Actor(c), id, *req.HoursWorked)
	if err != nil {
		return h.fail(c, "PatchHours", err, zap.String("ticket_id", id))
	}

	h.logger.Info("PatchHours: hours updated", zap.String("ticket_id", id), zap.Float64("hours", ticket.HoursWorked))
	return c.JSON(http.StatusOK, ticket)
}

// DeleteTicket removes a ticket with its subtasks and comments
func (h *Handler) DeleteTicket(c echo.Context) error {
	id := c.Param("id")
	if err := h.svc.DeleteTicket(c.Request().Context(), middleware.Actor(c), id); err != nil {
		return h.fail(c, "DeleteTicket", err, zap.String("ticket_id", id))
	}
	return c.NoContent(http.StatusNoContent)
}

// TicketHistory lists the status changes of a ticket, newest first
func (h *Handler) TicketHistory(c echo.Context) error {
	id := c.Param("id")
	history, err := h.svc.TicketHistory(c.Request().Context(), middleware.Actor(c), id)
	if err != nil {
		return h.fail(c, "TicketHistory", err, zap.String("ticket_id", id))
	}
	return c.JSON(http.StatusOK, history)
}

// GoLiveYears lists the years that have tickets going live, newest first
func (h *Handler) GoLiveYears(c echo.Context) error {
	id := c.Param("id")
	years, err := h.svc.GoLiveYears(c.Request().Context(), middleware.Actor(c), id)
	if err != nil {
		return h.fail(c, "GoLiveYears", err, zap.String("workspace_id", id))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"years": years})
}
