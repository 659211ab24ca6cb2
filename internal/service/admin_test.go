package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/models"
)

func TestAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "root@example.com")
	user := f.register(t, "user@example.com")
	f.workspace(t, user)

	_, err := f.svc.AdminListUsers(ctx, user)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	users, err := f.svc.AdminListUsers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	workspaces, err := f.svc.AdminListWorkspaces(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, workspaces, 1)

	_, err = f.svc.AdminSetRole(ctx, admin, admin.UserID, models.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.AdminSetRole(ctx, admin, user.UserID, "owner")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	promoted, err := f.svc.AdminSetRole(ctx, admin, user.UserID, models.RoleSuperadmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperadmin, promoted.Role)

	_, err = f.svc.AdminSetRole(ctx, admin, "missing", models.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
