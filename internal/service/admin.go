package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/models"
)

func requireSuperadmin(actor Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.IsSuperadmin() {
		return apperr.Forbidden("superadmin access required")
	}
	return nil
}

// AdminListUsers returns every account
func (s *Service) AdminListUsers(ctx context.Context, actor Actor) ([]models.User, error) {
	if err := requireSuperadmin(actor); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

// AdminListWorkspaces returns every workspace regardless of membership
func (s *Service) AdminListWorkspaces(ctx context.Context, actor Actor) ([]models.Workspace, error) {
	if err := requireSuperadmin(actor); err != nil {
		return nil, err
	}
	return s.store.ListAllWorkspaces(ctx)
}

// AdminSetRole changes the role of a user. Superadmins cannot change their own role.
func (s *Service) AdminSetRole(ctx context.Context, actor Actor, userID string, role models.UserRole) (*models.User, error) {
	if err := requireSuperadmin(actor); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperr.Validation("invalid role %q", role)
	}
	if userID == actor.UserID {
		return nil, apperr.Validation("you cannot change your own role")
	}
	if err := s.store.UpdateUserRole(ctx, userID, role); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user role changed",
		zap.String("user_id", userID),
		zap.String("role", string(role)),
		zap.String("actor_id", actor.UserID))
	return user, nil
}
