package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/models"
)

func TestComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com")
	member := f.register(t, "member@example.com")
	admin := f.register(t, "root@example.com")
	ws := f.workspace(t, owner, member)
	ticket := f.story(t, owner, ws.ID, "Story")

	c, err := f.svc.CreateComment(ctx, member, ticket.ID, "**shipped** <script>alert(1)</script>")
	require.NoError(t, err)
	assert.Contains(t, c.BodyHTML, "<strong>shipped</strong>")
	assert.NotContains(t, c.BodyHTML, "<script>")
	assert.Equal(t, member.UserID, c.AuthorID)

	history, err := f.svc.TicketHistory(ctx, owner, ticket.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.ActionCommented, history[0].Action)
	require.NotNil(t, history[0].NewValue)
	assert.Equal(t, c.ID, *history[0].NewValue)

	_, err = f.svc.CreateComment(ctx, member, ticket.ID, "   ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.UpdateComment(ctx, owner, c.ID, "hijack")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	edited, err := f.svc.UpdateComment(ctx, member, c.ID, "_edited_")
	require.NoError(t, err)
	assert.Contains(t, edited.BodyHTML, "<em>edited</em>")

	assert.ErrorIs(t, f.svc.DeleteComment(ctx, owner, c.ID), apperr.ErrForbidden)
	require.NoError(t, f.svc.DeleteComment(ctx, admin, c.ID))

	comments, err := f.svc.ListComments(ctx, owner, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
