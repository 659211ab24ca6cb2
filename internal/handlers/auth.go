package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/umorjyoti/simplifly/internal/middleware"
)

// Register creates an account and returns a session token
func (h *Handler) Register(c echo.Context) error {
	h.logger.Info("Register: start processing request")

	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Name     string `json:"name" validate:"required"`
		Password string `json:"password" validate:"required,min=6"`
	}
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "Register", err)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, "Register", err)
	}

	session, err := h.svc.Register(c.Request().Context(), req.Email, req.Name, req.Password)
	if err != nil {
		return h.fail(c, "Register", err, zap.String("email", req.Email))
	}

	h.logger.Info("Register: user created", zap.String("user_id", session.User.ID))
	return c.JSON(http.StatusCreated, session)
}

// Login exchanges email and password for a session token
func (h *Handler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "Login", err)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, "Login", err)
	}

	session, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, "Login", err, zap.String("email", req.Email))
	}

	h.logger.Info("Login: user signed in", zap.String("user_id", session.User.ID))
	return c.JSON(http.StatusOK, session)
}

// Me returns the account behind the session token
func (h *Handler) Me(c echo.Context) error {
	user, err := h.svc.Me(c.Request().Context(), middleware.Actor(c))
	if err != nil {
		return h.fail(c, "Me", err)
	}
	return c.JSON(http.StatusOK, user)
}
