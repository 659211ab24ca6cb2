package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/umorjyoti/simplifly/internal/middleware"
	"github.com/umorjyoti/simplifly/internal/service"
)

// ListWorkspaces lists the workspaces the caller belongs to
func (h *Handler) ListWorkspaces(c echo.Context) error {
	actor := middleware.Actor(c)
	workspaces, err := h.svc.ListWorkspaces(c.Request().Context(), actor)
	if err != nil {
		return h.fail(c, "ListWorkspaces", err, zap.String("user_id", actor.UserID))
	}
	return c.JSON(http.StatusOK, workspaces)
}

// CreateWorkspace creates a workspace owned by the caller
func (h *Handler) CreateWorkspace(c echo.Context) error {
	h.logger.Info("CreateWorkspace: start processing request")

	var req service.WorkspaceInput
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "CreateWorkspace", err)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, "CreateWorkspace", err)
	}

	actor := middleware.Actor(c)
	ws, err := h.svc.CreateWorkspace(c.Request().Context(), actor, req)
	if err != nil {
		return h.fail(c, "CreateWorkspace", err, zap.String("name", req.Name))
	}

	h.logger.Info("CreateWorkspace: workspace created",
		zap.String("workspace_id", ws.ID),
		zap.String("owner_id", actor.UserID))
	return c.JSON(http.StatusCreated, ws)
}

// GetWorkspace returns a workspace the caller is a member of
func (h *Handler) GetWorkspace(c echo.Context) error {
	id := c.Param("id")
	ws, err := h.svc.GetWorkspace(c.Request().Context(), middleware.Actor(c), id)
	if err != nil {
		return h.fail(c, "GetWorkspace", err, zap.String("workspace_id", id))
	}
	return c.JSON(http.StatusOK, ws)
}

// UpdateWorkspace changes name, description or settings
func (h *Handler) UpdateWorkspace(c echo.Context) error {
	id := c.Param("id")
	h.logger.Info("UpdateWorkspace: start processing request", zap.String("workspace_id", id))

	var req service.WorkspaceUpdate
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "UpdateWorkspace", err)
	}

	ws, err := h.svc.UpdateWorkspace(c.Request().Context(), middleware.Actor(c), id, req)
	if err != nil {
		return h.fail(c, "UpdateWorkspace", err, zap.String("workspace_id", id))
	}

	h.logger.Info("UpdateWorkspace: workspace updated", zap.String("workspace_id", id))
	return c.JSON(http.StatusOK, ws)
}

// DeleteWorkspace removes a workspace and everything in it. Owner only.
func (h *Handler) DeleteWorkspace(c echo.Context) error {
	id := c.Param("id")
	if err := h.svc.DeleteWorkspace(c.Request().Context(), middleware.Actor(c), id); err != nil {
		return h.fail(c, "DeleteWorkspace", err, zap.String("workspace_id", id))
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMembers returns the accounts of the workspace members
func (h *Handler) ListMembers(c echo.Context) error {
	id := c.Param("id")
	members, err := h.svc.ListMembers(c.Request().Context(), middleware.Actor(c), id)
	if err != nil {
		return h.fail(c, "ListMembers", err, zap.String("workspace_id", id))
	}
	return c.JSON(http.StatusOK, members)
}

// RemoveMember drops a member from the workspace. Owner only.
func (h *Handler) RemoveMember(c echo.Context) error {
	id, userID := c.Param("id"), c.Param("userId")
	if err := h.svc.RemoveMember(c.Request().Context(), middleware.Actor(c), id, userID); err != nil {
		return h.fail(c, "RemoveMember", err, zap.String("workspace_id", id), zap.String("user_id", userID))
	}

	h.logger.Info("RemoveMember: member removed", zap.String("workspace_id", id), zap.String("user_id", userID))
	return c.NoContent(http.StatusNoContent)
}

// LeaveWorkspace removes the caller from a workspace they do not own
func (h *Handler) LeaveWorkspace(c echo.Context) error {
	id := c.Param("id")
	actor := middleware.Actor(c)
	if err := h.svc.LeaveWorkspace(c.Request().Context(), actor, id); err != nil {
		return h.fail(c, "LeaveWorkspace", err, zap.String("workspace_id", id))
	}

	h.logger.Info("LeaveWorkspace: member left", zap.String("workspace_id", id), zap.String("user_id", actor.UserID))
	return c.NoContent(http.StatusNoContent)
}
