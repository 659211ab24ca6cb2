package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/models"
)

// WorkspaceInput describes a workspace to create
type WorkspaceInput struct {
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description"`
	PeriodType  models.PeriodType `json:"period_type" validate:"omitempty,oneof=weekly monthly quarterly"`
	Currency    models.Currency   `json:"currency" validate:"omitempty,oneof=USD INR"`
}

// WorkspaceUpdate is a partial change of a workspace
type WorkspaceUpdate struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	PeriodType  *models.PeriodType `json:"period_type"`
	Currency    *models.Currency   `json:"currency"`
}

func validateSettings(settings models.WorkspaceSettings) error {
	if !settings.PeriodType.Valid() {
		return apperr.Validation("invalid period type %q", settings.PeriodType)
	}
	if !settings.Currency.Valid() {
		return apperr.Validation("invalid currency %q", settings.Currency)
	}
	return nil
}

// CreateWorkspace creates a workspace owned by the actor
func (s *Service) CreateWorkspace(ctx context.Context, actor Actor, in WorkspaceInput) (*models.Workspace, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("workspace name is required")
	}

	settings := s.defaults
	if in.PeriodType != "" {
		settings.PeriodType = in.PeriodType
	}
	if in.Currency != "" {
		settings.Currency = in.Currency
	}
	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	now := s.clock()
	ws := &models.Workspace{
		ID:          uuid.NewString(),
		Name:        name,
		Description: in.Description,
		OwnerID:     actor.UserID,
		Members:     []string{actor.UserID},
		Settings:    settings,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateWorkspace(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// ListWorkspaces returns the workspaces the actor belongs to
func (s *Service) ListWorkspaces(ctx context.Context, actor Actor) ([]models.Workspace, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.store.ListWorkspacesForUser(ctx, actor.UserID)
}

// GetWorkspace returns a workspace the actor is a member of
func (s *Service) GetWorkspace(ctx context.Context, actor Actor, id string) (*models.Workspace, error) {
	return s.memberWorkspace(ctx, actor, id)
}

// UpdateWorkspace changes name, description or settings. Owner only.
func (s *Service) UpdateWorkspace(ctx context.Context, actor Actor, id string, u WorkspaceUpdate) (*models.Workspace, error) {
	ws, err := s.ownedWorkspace(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, apperr.Validation("workspace name cannot be empty")
		}
		ws.Name = name
	}
	if u.Description != nil {
		ws.Description = *u.Description
	}
	if u.PeriodType != nil {
		ws.Settings.PeriodType = *u.PeriodType
	}
	if u.Currency != nil {
		ws.Settings.Currency = *u.Currency
	}
	if err := validateSettings(ws.Settings); err != nil {
		return nil, err
	}

	ws.UpdatedAt = s.clock()
	if err := s.store.UpdateWorkspace(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// DeleteWorkspace removes the workspace with all of its content. Owner only.
func (s *Service) DeleteWorkspace(ctx context.Context, actor Actor, id string) error {
	if _, err := s.ownedWorkspace(ctx, actor, id); err != nil {
		return err
	}
	if err := s.store.DeleteWorkspace(ctx, id); err != nil {
		return err
	}
	s.logger.Info("workspace deleted", zap.String("workspace_id", id), zap.String("actor_id", actor.UserID))
	return nil
}

// ListMembers returns the users of a workspace
func (s *Service) ListMembers(ctx context.Context, actor Actor, id string) ([]models.User, error) {
	ws, err := s.memberWorkspace(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	ids := ws.Members
	if !containsID(ids, ws.OwnerID) {
		ids = append([]string{ws.OwnerID}, ids...)
	}
	return s.store.GetUsersByIDs(ctx, ids)
}

// RemoveMember removes a user from the workspace. Owner only; the owner stays.
func (s *Service) RemoveMember(ctx context.Context, actor Actor, id, userID string) error {
	ws, err := s.ownedWorkspace(ctx, actor, id)
	if err != nil {
		return err
	}
	if ws.IsOwner(userID) {
		return apperr.Validation("the workspace owner cannot be removed")
	}
	return s.store.RemoveMember(ctx, id, userID)
}

// LeaveWorkspace removes the actor from a workspace they do not own
func (s *Service) LeaveWorkspace(ctx context.Context, actor Actor, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	ws, err := s.store.GetWorkspace(ctx, id)
	if err != nil {
		return err
	}
	if ws.IsOwner(actor.UserID) {
		return apperr.Validation("the owner cannot leave the workspace")
	}
	if !ws.IsMember(actor.UserID) {
		return apperr.Forbidden("you are not a member of this workspace")
	}
	return s.store.RemoveMember(ctx, id, actor.UserID)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
