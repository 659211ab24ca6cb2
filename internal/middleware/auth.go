// Package middleware holds echo middleware shared by the API routes.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/auth"
	"github.com/umorjyoti/simplifly/internal/models"
	"github.com/umorjyoti/simplifly/internal/service"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ActorResolver loads the current account behind a token subject
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID string) (service.Actor, error)
}

// JWT validates the bearer token of every request and stores the caller in
// the echo context. The role comes from the stored account, not the token.
func JWT(tokens *auth.TokenManager, actors ActorResolver, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return c.JSON(http.StatusUnauthorized, errorBody{Message: "authorization header is required", Code: "UNAUTHORIZED"})
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return c.JSON(http.StatusUnauthorized, errorBody{Message: "authorization header format must be Bearer {token}", Code: "UNAUTHORIZED"})
			}

			claims, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				logger.Debug("JWT: rejected token", zap.Error(err), zap.String("path", c.Path()))
				return c.JSON(http.StatusUnauthorized, errorBody{Message: "invalid or expired token", Code: "UNAUTHORIZED"})
			}

			actor, err := actors.ResolveActor(c.Request().Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, apperr.ErrUnauthorized) {
					logger.Debug("JWT: token subject no longer exists", zap.String("user_id", claims.UserID))
					return c.JSON(http.StatusUnauthorized, errorBody{Message: "invalid or expired token", Code: "UNAUTHORIZED"})
				}
				logger.Error("JWT: failed to load account", zap.String("user_id", claims.UserID), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, errorBody{Message: "internal server error", Code: "INTERNAL_ERROR"})
			}

			c.Set(ctxUserID, actor.UserID)
			c.Set(ctxRole, actor.Role)
			return next(c)
		}
	}
}

// RequireSuperadmin rejects callers without the superadmin role. Must run after JWT.
func RequireSuperadmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if Actor(c).Role != models.RoleSuperadmin {
			return c.JSON(http.StatusForbidden, errorBody{Message: "superadmin access required", Code: "FORBIDDEN"})
		}
		return next(c)
	}
}

// Actor returns the caller stored by JWT; the zero Actor when unauthenticated
func Actor(c echo.Context) service.Actor {
	userID, _ := c.Get(ctxUserID).(string)
	role, _ := c.Get(ctxRole).(models.UserRole)
	return service.Actor{UserID: userID, Role: role}
}
