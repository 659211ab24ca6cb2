package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/models"
	"github.com/umorjyoti/simplifly/internal/store"
)

// InvitePreview is what an invite link reveals before signing in
type InvitePreview struct {
	WorkspaceID   string              `json:"workspace_id"`
	WorkspaceName string              `json:"workspace_name"`
	Status        models.InviteStatus `json:"status"`
	ExpiresAt     *time.Time          `json:"expires_at,omitempty"`
	Expired       bool                `json:"expired"`
}

// CreateInvite generates a shareable invite link. A non-positive ttl never expires.
func (s *Service) CreateInvite(ctx context.Context, actor Actor, workspaceID string, ttl time.Duration) (*models.WorkspaceInvite, error) {
	if _, err := s.ownedWorkspace(ctx, actor, workspaceID); err != nil {
		return nil, err
	}

	now := s.clock()
	inv := &models.WorkspaceInvite{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		Token:       uuid.NewString(),
		InvitedBy:   actor.UserID,
		Status:      models.InvitePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if ttl > 0 {
		expires := now.Add(ttl)
		inv.ExpiresAt = &expires
	}
	if err := s.store.CreateInvite(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// ListInvites returns the invite links and join requests of a workspace
func (s *Service) ListInvites(ctx context.Context, actor Actor, workspaceID string, status models.InviteStatus) ([]models.WorkspaceInvite, error) {
	if _, err := s.ownedWorkspace(ctx, actor, workspaceID); err != nil {
		return nil, err
	}
	if status != "" && status != models.InvitePending && status != models.InviteApproved && status != models.InviteRejected {
		return nil, apperr.Validation("invalid invite status %q", status)
	}
	return s.store.ListInvites(ctx, store.InviteFilter{WorkspaceID: workspaceID, Status: status})
}

// PreviewInvite describes the workspace behind a token without authentication
func (s *Service) PreviewInvite(ctx context.Context, token string) (*InvitePreview, error) {
	inv, err := s.store.GetInviteByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	ws, err := s.store.GetWorkspace(ctx, inv.WorkspaceID)
	if err != nil {
		return nil, err
	}
	return &InvitePreview{
		WorkspaceID:   ws.ID,
		WorkspaceName: ws.Name,
		Status:        inv.Status,
		ExpiresAt:     inv.ExpiresAt,
		Expired:       inv.Expired(s.clock()),
	}, nil
}

// RequestJoin files a join request through an invite link. A pending
// request of the same user is returned unchanged.
func (s *Service) RequestJoin(ctx context.Context, actor Actor, token string) (*models.WorkspaceInvite, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	link, err := s.store.GetInviteByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	if link.Status != models.InvitePending || link.Expired(now) {
		return nil, apperr.Validation("this invite link is no longer valid")
	}

	ws, err := s.store.GetWorkspace(ctx, link.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if ws.IsMember(actor.UserID) {
		return nil, apperr.Conflict("you are already a member of this workspace")
	}

	existing, err := s.store.FindPendingRequest(ctx, ws.ID, actor.UserID)
	if err == nil {
		return existing, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	requester := actor.UserID
	req := &models.WorkspaceInvite{
		ID:          uuid.NewString(),
		WorkspaceID: ws.ID,
		Token:       uuid.NewString(),
		InvitedBy:   link.InvitedBy,
		RequestedBy: &requester,
		Status:      models.InvitePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateInvite(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// pendingRequest loads a pending join request of an owned workspace
func (s *Service) pendingRequest(ctx context.Context, actor Actor, workspaceID, inviteID string) (*models.WorkspaceInvite, error) {
	if _, err := s.ownedWorkspace(ctx, actor, workspaceID); err != nil {
		return nil, err
	}
	inv, err := s.store.GetInvite(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if inv.WorkspaceID != workspaceID {
		return nil, apperr.ErrNotFound
	}
	if !inv.IsJoinRequest() {
		return nil, apperr.Validation("only join requests can be approved or rejected")
	}
	if inv.Status != models.InvitePending {
		return nil, apperr.Validation("join request is already %s", inv.Status)
	}
	return inv, nil
}

// ApproveRequest accepts a join request and adds the requester as a member
func (s *Service) ApproveRequest(ctx context.Context, actor Actor, workspaceID, inviteID string) (*models.WorkspaceInvite, error) {
	inv, err := s.pendingRequest(ctx, actor, workspaceID, inviteID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.AddMember(ctx, workspaceID, *inv.RequestedBy); err != nil {
			return err
		}
		return tx.UpdateInviteStatus(ctx, inv.ID, models.InviteApproved, now)
	})
	if err != nil {
		return nil, err
	}

	inv.Status = models.InviteApproved
	inv.UpdatedAt = now
	return inv, nil
}

// RejectRequest declines a join request
func (s *Service) RejectRequest(ctx context.Context, actor Actor, workspaceID, inviteID string) (*models.WorkspaceInvite, error) {
	inv, err := s.pendingRequest(ctx, actor, workspaceID, inviteID)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	if err := s.store.UpdateInviteStatus(ctx, inv.ID, models.InviteRejected, now); err != nil {
		return nil, err
	}
	inv.Status = models.InviteRejected
	inv.UpdatedAt = now
	return inv, nil
}

// RevokeInvite deletes an invite link or join request of an owned workspace
func (s *Service) RevokeInvite(ctx context.Context, actor Actor, workspaceID, inviteID string) error {
	if _, err := s.ownedWorkspace(ctx, actor, workspaceID); err != nil {
		return err
	}
	inv, err := s.store.GetInvite(ctx, inviteID)
	if err != nil {
		return err
	}
	if inv.WorkspaceID != workspaceID {
		return apperr.ErrNotFound
	}
	return s.store.DeleteInvite(ctx, inv.ID)
}

// ExpireInvites rejects pending invites whose expiry has passed
func (s *Service) ExpireInvites(ctx context.Context) (int64, error) {
	n, err := s.store.ExpireInvites(ctx, s.clock())
	if err != nil {
		return 0, err
	}
	s.metrics.InvitesExpired(n)
	if n > 0 {
		s.logger.Info("expired invites", zap.Int64("count", n))
	}
	return n, nil
}
