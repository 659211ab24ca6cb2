package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/umorjyoti/simplifly/internal/middleware"
)

type commentRequest struct {
	Body string `json:"body" validate:"required"`
}

// ListComments lists the comments of a ticket, oldest first
func (h *Handler) ListComments(c echo.Context) error {
	ticketID := c.Param("id")
	comments, err := h.svc.ListComments(c.Request().Context(), middleware.Actor(c), ticketID)
	if err != nil {
		return h.fail(c, "ListComments", err, zap.String("ticket_id", ticketID))
	}
	return c.JSON(http.StatusOK, comments)
}

// CreateComment posts a markdown comment on a ticket
func (h *Handler) CreateComment(c echo.Context) error {
	ticketID := c.Param("id")

	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "CreateComment", err)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, "CreateComment", err)
	}

	comment, err := h.svc.CreateComment(c.Request().Context(), middleware.Actor(c), ticketID, req.Body)
	if err != nil {
		return h.fail(c, "CreateComment", err, zap.String("ticket_id", ticketID))
	}

	h.logger.Info("CreateComment: comment added", zap.String("ticket_id", ticketID), zap.String("comment_id", comment.ID))
	return c.JSON(http.StatusCreated, comment)
}

// UpdateComment edits a comment of the caller
func (h *Handler) UpdateComment(c echo.Context) error {
	id := c.Param("id")

	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "UpdateComment", err)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, "UpdateComment", err)
	}

	comment, err := h.svc.UpdateComment(c.Request().Context(), middleware.Actor(c), id, req.Body)
	if err != nil {
		return h.fail(c, "UpdateComment", err, zap.String("comment_id", id))
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment removes a comment
func (h *Handler) DeleteComment(c echo.Context) error {
	id := c.Param("id")
	if err := h.svc.DeleteComment(c.Request().Context(), middleware.Actor(c), id); err != nil {
		return h.fail(c, "DeleteComment", err, zap.String("comment_id", id))
	}
	return c.NoContent(http.StatusNoContent)
}
