package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/umorjyoti/simplifly/internal/auth"
	"github.com/umorjyoti/simplifly/internal/metrics"
	"github.com/umorjyoti/simplifly/internal/models"
	"github.com/umorjyoti/simplifly/internal/service"
	"github.com/umorjyoti/simplifly/internal/testutil"
)

type fixture struct {
	svc   *service.Service
	store *testutil.MemStore
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: testutil.NewMemStore(),
		now:   time.Date(2024, time.November, 10, 12, 0, 0, 0, time.UTC),
	}
	tokens := auth.NewTokenManager("test-secret", time.Hour, "test")
	f.svc = service.New(f.store, tokens, zap.NewNop(),
		service.WithClock(func() time.Time { return f.now }),
		service.WithMetrics(metrics.New()),
		service.WithSuperadmins([]string{"root@example.com"}),
	)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// register creates an account and returns it as an actor
func (f *fixture) register(t *testing.T, email string) service.Actor {
	t.Helper()
	session, err := f.svc.Register(context.Background(), email, email, "password")
	require.NoError(t, err)
	return service.Actor{UserID: session.User.ID, Role: session.User.Role}
}

// workspace creates a workspace owned by owner with members added directly
func (f *fixture) workspace(t *testing.T, owner service.Actor, members ...service.Actor) *models.Workspace {
	t.Helper()
	ctx := context.Background()
	ws, err := f.svc.CreateWorkspace(ctx, owner, service.WorkspaceInput{Name: "Acme"})
	require.NoError(t, err)
	for _, m := range members {
		require.NoError(t, f.store.AddMember(ctx, ws.ID, m.UserID))
	}
	return ws
}

func (f *fixture) story(t *testing.T, actor service.Actor, workspaceID, title string) *models.Ticket {
	t.Helper()
	ticket, err := f.svc.CreateTicket(context.Background(), actor, workspaceID, service.TicketInput{Title: title})
	require.NoError(t, err)
	return ticket
}

// completedStory creates a story and completes it with hours
func (f *fixture) completedStory(t *testing.T, actor service.Actor, workspaceID, title string, hours float64) *models.Ticket {
	t.Helper()
	ticket := f.story(t, actor, workspaceID, title)
	ticket, err := f.svc.PatchStatus(context.Background(), actor, ticket.ID, models.StatusCompleted, &hours)
	require.NoError(t, err)
	return ticket
}

func strPtr(s string) *string { return &s }
