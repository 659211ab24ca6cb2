package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/umorjyoti/simplifly/internal/middleware"
	"github.com/umorjyoti/simplifly/internal/models"
)

// ListInvites lists invite links and join requests of a workspace
func (h *Handler) ListInvites(c echo.Context) error {
	id := c.Param("id")
	status := models.InviteStatus(c.QueryParam("status"))

	invites, err := h.svc.ListInvites(c.Request().Context(), middleware.Actor(c), id, status)
	if err != nil {
		return h.fail(c, "ListInvites", err, zap.String("workspace_id", id))
	}
	return c.JSON(http.StatusOK, invites)
}

// CreateInvite generates an invite link for a workspace
func (h *Handler) CreateInvite(c echo.Context) error {
	id := c.Param("id")
	h.logger.Info("CreateInvite: start processing request", zap.String("workspace_id", id))

	var req struct {
		ExpiresInHours float64 `json:"expires_in_hours" validate:"gte=0"`
	}
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "CreateInvite", err)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, "CreateInvite", err)
	}

	ttl := time.Duration(req.ExpiresInHours * float64(time.Hour))
	inv, err := h.svc.CreateInvite(c.Request().Context(), middleware.Actor(c), id, ttl)
	if err != nil {
		return h.fail(c, "CreateInvite", err, zap.String("workspace_id", id))
	}

	h.logger.Info("CreateInvite: invite created", zap.String("workspace_id", id), zap.String("invite_id", inv.ID))
	return c.JSON(http.StatusCreated, inv)
}

// RevokeInvite deletes an invite link or join request
func (h *Handler) RevokeInvite(c echo.Context) error {
	id, inviteID := c.Param("id"), c.Param("inviteId")
	if err := h.svc.RevokeInvite(c.Request().Context(), middleware.Actor(c), id, inviteID); err != nil {
		return h.fail(c, "RevokeInvite", err, zap.String("workspace_id", id), zap.String("invite_id", inviteID))
	}
	return c.NoContent(http.StatusNoContent)
}

// ApproveRequest accepts a pending join request and adds the requester as a member
func (h *Handler) ApproveRequest(c echo.Context) error {
	id, inviteID := c.Param("id"), c.Param("inviteId")
	inv, err := h.svc.ApproveRequest(c.Request().Context(), middleware.Actor(c), id, inviteID)
	if err != nil {
		return h.fail(c, "ApproveRequest", err, zap.String("workspace_id", id), zap.String("invite_id", inviteID))
	}

	h.logger.Info("ApproveRequest: join request approved", zap.String("workspace_id", id), zap.String("invite_id", inviteID))
	return c.JSON(http.StatusOK, inv)
}

// RejectRequest declines a pending join request
func (h *Handler) RejectRequest(c echo.Context) error {
	id, inviteID := c.Param("id"), c.Param("inviteId")
	inv, err := h.svc.RejectRequest(c.Request().Context(), middleware.Actor(c), id, inviteID)
	if err != nil {
		return h.fail(c, "RejectRequest", err, zap.String("workspace_id", id), zap.String("invite_id", inviteID))
	}
	return c.JSON(http.StatusOK, inv)
}

// PreviewInvite is public: it shows which workspace a link leads to
func (h *Handler) PreviewInvite(c echo.Context) error {
	token := c.Param("token")
	preview, err := h.svc.PreviewInvite(c.Request().Context(), token)
	if err != nil {
		return h.fail(c, "PreviewInvite", err)
	}
	return c.JSON(http.StatusOK, preview)
}

// RequestJoin files a join request through an invite link
func (h *Handler) RequestJoin(c echo.Context) error {
	actor := middleware.Actor(c)
	req, err := h.svc.RequestJoin(c.Request().Context(), actor, c.Param("token"))
	if err != nil {
		return h.fail(c, "RequestJoin", err, zap.String("user_id", actor.UserID))
	}

	h.logger.Info("RequestJoin: join request pending",
		zap.String("workspace_id", req.WorkspaceID),
		zap.String("user_id", actor.UserID))
	return c.JSON(http.StatusAccepted, req)
}
