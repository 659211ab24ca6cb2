package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/models"
	"github.com/umorjyoti/simplifly/internal/service"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, " Alice@Example.com ", "Alice", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "alice@example.com", session.User.Email)
	assert.Equal(t, models.RoleUser, session.User.Role)

	_, err = f.svc.Register(ctx, "alice@example.com", "Again", "secret1")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = f.svc.Login(ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = f.svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	login, err := f.svc.Login(ctx, "ALICE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, login.User.ID)

	me, err := f.svc.Me(ctx, service.Actor{UserID: session.User.ID})
	require.NoError(t, err)
	assert.Equal(t, "Alice", me.Name)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		userName string
		password string
	}{
		{name: "bad email", email: "not-an-email", userName: "A", password: "secret1"},
		{name: "display name address", email: "Name <x@y.com>", userName: "A", password: "secret1"},
		{name: "missing name", email: "a@example.com", userName: " ", password: "secret1"},
		{name: "short password", email: "a@example.com", userName: "A", password: "123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(ctx, tt.email, tt.userName, tt.password)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestRegisterSuperadminEmail(t *testing.T) {
	f := newFixture(t)
	admin := f.register(t, "root@example.com")
	assert.Equal(t, models.RoleSuperadmin, admin.Role)
}

func TestMeRequiresActor(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Me(context.Background(), service.Actor{})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestResolveActorReadsStoredRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.register(t, "root@example.com")
	alice := f.register(t, "alice@example.com")

	actor, err := f.svc.ResolveActor(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, actor.Role)

	_, err = f.svc.AdminSetRole(ctx, root, alice.UserID, models.RoleSuperadmin)
	require.NoError(t, err)
	actor, err = f.svc.ResolveActor(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperadmin, actor.Role)

	_, err = f.svc.AdminSetRole(ctx, root, alice.UserID, models.RoleUser)
	require.NoError(t, err)
	actor, err = f.svc.ResolveActor(ctx, alice.UserID)
	require.NoError(t, err)
	assert.False(t, actor.IsSuperadmin())

	_, err = f.svc.ResolveActor(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = f.svc.ResolveActor(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
