package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/models"
	"github.com/umorjyoti/simplifly/internal/service"
)

func TestCreateWorkspaceDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com")

	ws, err := f.svc.CreateWorkspace(ctx, owner, service.WorkspaceInput{Name: "  Acme  "})
	require.NoError(t, err)
	assert.Equal(t, "Acme", ws.Name)
	assert.Equal(t, owner.UserID, ws.OwnerID)
	assert.Equal(t, models.PeriodMonthly, ws.Settings.PeriodType)
	assert.Equal(t, models.CurrencyUSD, ws.Settings.Currency)
	assert.True(t, ws.IsMember(owner.UserID))

	_, err = f.svc.CreateWorkspace(ctx, owner, service.WorkspaceInput{Name: ""})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.CreateWorkspace(ctx, owner, service.WorkspaceInput{Name: "X", Currency: "EUR"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	mine, err := f.svc.ListWorkspaces(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestWorkspaceAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com")
	member := f.register(t, "member@example.com")
	outsider := f.register(t, "outsider@example.com")
	admin := f.register(t, "root@example.com")
	ws := f.workspace(t, owner, member)

	_, err := f.svc.GetWorkspace(ctx, member, ws.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetWorkspace(ctx, outsider, ws.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.svc.GetWorkspace(ctx, admin, ws.ID)
	assert.NoError(t, err)

	name := "Renamed"
	_, err = f.svc.UpdateWorkspace(ctx, member, ws.ID, service.WorkspaceUpdate{Name: &name})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	quarterly := models.PeriodQuarterly
	updated, err := f.svc.UpdateWorkspace(ctx, owner, ws.ID, service.WorkspaceUpdate{Name: &name, PeriodType: &quarterly})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, models.PeriodQuarterly, updated.Settings.PeriodType)

	_, err = f.svc.GetWorkspace(ctx, owner, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com")
	member := f.register(t, "member@example.com")
	other := f.register(t, "other@example.com")
	ws := f.workspace(t, owner, member, other)

	users, err := f.svc.ListMembers(ctx, member, ws.ID)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	assert.ErrorIs(t, f.svc.RemoveMember(ctx, owner, ws.ID, owner.UserID), apperr.ErrValidation)
	assert.ErrorIs(t, f.svc.RemoveMember(ctx, member, ws.ID, other.UserID), apperr.ErrForbidden)
	require.NoError(t, f.svc.RemoveMember(ctx, owner, ws.ID, other.UserID))

	assert.ErrorIs(t, f.svc.LeaveWorkspace(ctx, owner, ws.ID), apperr.ErrValidation)
	require.NoError(t, f.svc.LeaveWorkspace(ctx, member, ws.ID))
	assert.ErrorIs(t, f.svc.LeaveWorkspace(ctx, member, ws.ID), apperr.ErrForbidden)

	users, err = f.svc.ListMembers(ctx, owner, ws.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, owner.UserID, users[0].ID)
}

func TestDeleteWorkspace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com")
	member := f.register(t, "member@example.com")
	ws := f.workspace(t, owner, member)
	ticket := f.story(t, member, ws.ID, "Story")

	assert.ErrorIs(t, f.svc.DeleteWorkspace(ctx, member, ws.ID), apperr.ErrForbidden)
	require.NoError(t, f.svc.DeleteWorkspace(ctx, owner, ws.ID))

	_, err := f.store.GetTicket(ctx, ticket.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestInviteFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com")
	joiner := f.register(t, "joiner@example.com")
	ws := f.workspace(t, owner)

	_, err := f.svc.CreateInvite(ctx, joiner, ws.ID, 0)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	link, err := f.svc.CreateInvite(ctx, owner, ws.ID, 24*time.Hour)
	require.NoError(t, err)
	require.NotNil(t, link.ExpiresAt)
	assert.False(t, link.IsJoinRequest())

	preview, err := f.svc.PreviewInvite(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, "Acme", preview.WorkspaceName)
	assert.False(t, preview.Expired)

	req, err := f.svc.RequestJoin(ctx, joiner, link.Token)
	require.NoError(t, err)
	assert.True(t, req.IsJoinRequest())
	assert.Equal(t, models.InvitePending, req.Status)

	again, err := f.svc.RequestJoin(ctx, joiner, link.Token)
	require.NoError(t, err)
	assert.Equal(t, req.ID, again.ID)

	_, err = f.svc.RequestJoin(ctx, owner, link.Token)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = f.svc.ApproveRequest(ctx, owner, ws.ID, link.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	approved, err := f.svc.ApproveRequest(ctx, owner, ws.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InviteApproved, approved.Status)

	_, err = f.svc.GetWorkspace(ctx, joiner, ws.ID)
	assert.NoError(t, err)

	_, err = f.svc.RejectRequest(ctx, owner, ws.ID, req.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	invites, err := f.svc.ListInvites(ctx, owner, ws.ID, "")
	require.NoError(t, err)
	assert.Len(t, invites, 2)

	require.NoError(t, f.svc.RevokeInvite(ctx, owner, ws.ID, link.ID))
	_, err = f.svc.PreviewInvite(ctx, link.Token)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRejectRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com")
	joiner := f.register(t, "joiner@example.com")
	ws := f.workspace(t, owner)

	link, err := f.svc.CreateInvite(ctx, owner, ws.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, link.ExpiresAt)

	req, err := f.svc.RequestJoin(ctx, joiner, link.Token)
	require.NoError(t, err)

	rejected, err := f.svc.RejectRequest(ctx, owner, ws.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InviteRejected, rejected.Status)

	_, err = f.svc.GetWorkspace(ctx, joiner, ws.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestExpireInvites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com")
	joiner := f.register(t, "joiner@example.com")
	ws := f.workspace(t, owner)

	link, err := f.svc.CreateInvite(ctx, owner, ws.ID, time.Hour)
	require.NoError(t, err)
	forever, err := f.svc.CreateInvite(ctx, owner, ws.ID, 0)
	require.NoError(t, err)

	f.advance(2 * time.Hour)

	preview, err := f.svc.PreviewInvite(ctx, link.Token)
	require.NoError(t, err)
	assert.True(t, preview.Expired)

	_, err = f.svc.RequestJoin(ctx, joiner, link.Token)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	n, err := f.svc.ExpireInvites(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	preview, err = f.svc.PreviewInvite(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, models.InviteRejected, preview.Status)

	preview, err = f.svc.PreviewInvite(ctx, forever.Token)
	require.NoError(t, err)
	assert.Equal(t, models.InvitePending, preview.Status)

	n, err = f.svc.ExpireInvites(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
