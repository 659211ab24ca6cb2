// Package service implements the use cases of the tracker on top of a
// store.Store: authorization, transactional writes and side effects.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/auth"
	"github.com/umorjyoti/simplifly/internal/markup"
	"github.com/umorjyoti/simplifly/internal/metrics"
	"github.com/umorjyoti/simplifly/internal/models"
	"github.com/umorjyoti/simplifly/internal/store"
	"github.com/umorjyoti/simplifly/internal/validation"
)

// Actor is the authenticated caller of an operation
type Actor struct {
	UserID string
	Role   models.UserRole
}

// IsSuperadmin reports whether the actor may bypass workspace checks
func (a Actor) IsSuperadmin() bool {
	return a.Role == models.RoleSuperadmin
}

type Service struct {
	store    store.Store
	tokens   *auth.TokenManager
	markup   *markup.Renderer
	validate *validation.Validator
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
	defaults models.WorkspaceSettings
	admins   map[string]struct{}
}

type Option func(*Service)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics records business counters in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithDefaultSettings sets the settings new workspaces start with
func WithDefaultSettings(settings models.WorkspaceSettings) Option {
	return func(s *Service) { s.defaults = settings }
}

// WithSuperadmins grants the superadmin role to accounts registered with one of emails
func WithSuperadmins(emails []string) Option {
	return func(s *Service) {
		for _, e := range emails {
			if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
				s.admins[e] = struct{}{}
			}
		}
	}
}

// New creates the service on top of st
func New(st store.Store, tokens *auth.TokenManager, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:    st,
		tokens:   tokens,
		markup:   markup.NewRenderer(),
		validate: validation.New(),
		logger:   logger,
		now:      time.Now,
		admins:   map[string]struct{}{},
		defaults: models.WorkspaceSettings{
			PeriodType: models.PeriodMonthly,
			Currency:   models.CurrencyUSD,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func requireActor(actor Actor) error {
	if actor.UserID == "" {
		return apperr.ErrUnauthorized
	}
	return nil
}

// memberWorkspace loads a workspace the actor belongs to
func (s *Service) memberWorkspace(ctx context.Context, actor Actor, workspaceID string) (*models.Workspace, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	ws, err := s.store.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !ws.IsMember(actor.UserID) && !actor.IsSuperadmin() {
		return nil, apperr.Forbidden("you are not a member of this workspace")
	}
	return ws, nil
}

// ownedWorkspace loads a workspace the actor owns
func (s *Service) ownedWorkspace(ctx context.Context, actor Actor, workspaceID string) (*models.Workspace, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	ws, err := s.store.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !ws.IsOwner(actor.UserID) && !actor.IsSuperadmin() {
		return nil, apperr.Forbidden("only the workspace owner can do this")
	}
	return ws, nil
}

// memberTicket loads a ticket together with its workspace, checking membership
func (s *Service) memberTicket(ctx context.Context, actor Actor, ticketID string) (*models.Ticket, *models.Workspace, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}
	t, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	ws, err := s.memberWorkspace(ctx, actor, t.WorkspaceID)
	if err != nil {
		return nil, nil, err
	}
	return t, ws, nil
}

// checkAssignable rejects users that cannot be assigned work in ws
func checkAssignable(ws *models.Workspace, userID string) error {
	if !ws.IsMember(userID) {
		return apperr.Validation("user %s is not a member of this workspace", userID)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
