package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/umorjyoti/simplifly/internal/lifecycle"
	"github.com/umorjyoti/simplifly/internal/middleware"
	"github.com/umorjyoti/simplifly/internal/service"
)

// ListSubtasks returns the checklist of a ticket in order
func (h *Handler) ListSubtasks(c echo.Context) error {
	ticketID := c.Param("id")
	subtasks, err := h.svc.ListSubtasks(c.Request().Context(), middleware.Actor(c), ticketID)
	if err != nil {
		return h.fail(c, "ListSubtasks", err, zap.String("ticket_id", ticketID))
	}
	return c.JSON(http.StatusOK, subtasks)
}

// CreateSubtask appends a checklist entry
func (h *Handler) CreateSubtask(c echo.Context) error {
	ticketID := c.Param("id")

	var req service.SubtaskInput
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "CreateSubtask", err)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, "CreateSubtask", err)
	}

	sub, err := h.svc.CreateSubtask(c.Request().Context(), middleware.Actor(c), ticketID, req)
	if err != nil {
		return h.fail(c, "CreateSubtask", err, zap.String("ticket_id", ticketID))
	}

	h.logger.Info("CreateSubtask: checklist item added", zap.String("ticket_id", ticketID), zap.String("subtask_id", sub.ID))
	return c.JSON(http.StatusCreated, sub)
}

// UpdateSubtask edits, reorders or toggles a checklist entry
func (h *Handler) UpdateSubtask(c echo.Context) error {
	id := c.Param("id")

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Completed   *bool   `json:"completed"`
		Order       *int    `json:"order"`
	}
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "UpdateSubtask", err)
	}

	sub, err := h.svc.UpdateSubtask(c.Request().Context(), middleware.Actor(c), id, lifecycle.SubtaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Order:       req.Order,
	})
	if err != nil {
		return h.fail(c, "UpdateSubtask", err, zap.String("subtask_id", id))
	}
	return c.JSON(http.StatusOK, sub)
}

// DeleteSubtask removes a checklist entry
func (h *Handler) DeleteSubtask(c echo.Context) error {
	id := c.Param("id")
	if err := h.svc.DeleteSubtask(c.Request().Context(), middleware.Actor(c), id); err != nil {
		return h.fail(c, "DeleteSubtask", err, zap.String("subtask_id", id))
	}
	return c.NoContent(http.StatusNoContent)
}
