package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/umorjyoti/simplifly/internal/middleware"
	"github.com/umorjyoti/simplifly/internal/models"
)

// AdminListUsers lists every account. Superadmin only.
func (h *Handler) AdminListUsers(c echo.Context) error {
	users, err := h.svc.AdminListUsers(c.Request().Context(), middleware.Actor(c))
	if err != nil {
		return h.fail(c, "AdminListUsers", err)
	}
	return c.JSON(http.StatusOK, users)
}

// AdminListWorkspaces lists every workspace. Superadmin only.
func (h *Handler) AdminListWorkspaces(c echo.Context) error {
	workspaces, err := h.svc.AdminListWorkspaces(c.Request().Context(), middleware.Actor(c))
	if err != nil {
		return h.fail(c, "AdminListWorkspaces", err)
	}
	return c.JSON(http.StatusOK, workspaces)
}

// AdminSetRole promotes or demotes a user
func (h *Handler) AdminSetRole(c echo.Context) error {
	id := c.Param("id")

	var req struct {
		Role models.UserRole `json:"role" validate:"required,oneof=user superadmin"`
	}
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "AdminSetRole", err)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, "AdminSetRole", err)
	}

	user, err := h.svc.AdminSetRole(c.Request().Context(), middleware.Actor(c), id, req.Role)
	if err != nil {
		return h.fail(c, "AdminSetRole", err, zap.String("user_id", id), zap.String("role", string(req.Role)))
	}
	return c.JSON(http.StatusOK, user)
}
