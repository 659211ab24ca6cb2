package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/auth"
	"github.com/umorjyoti/simplifly/internal/models"
)

// Session is returned by Register and Login
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Register creates an account with a password and signs it in
func (s *Service) Register(ctx context.Context, email, name, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if err := s.validate.Email(email); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	if len(password) < auth.MinPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters", auth.MinPasswordLength)
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("email is already registered")
	} else if !isNotFound(err) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         models.RoleUser,
		CreatedAt:    s.clock(),
	}
	if _, ok := s.admins[email]; ok {
		user.Role = models.RoleSuperadmin
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return s.session(user)
}

// Login checks the password and issues a token
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.ErrUnauthorized
		}
		return nil, err
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperr.ErrUnauthorized
		}
		return nil, err
	}
	return s.session(user)
}

// Me returns the account of the actor
func (s *Service) Me(ctx context.Context, actor Actor) (*models.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, actor.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// ResolveActor builds the actor of an authenticated user id from the stored
// account. Role changes take effect for tokens issued before them.
func (s *Service) ResolveActor(ctx context.Context, userID string) (Actor, error) {
	if userID == "" {
		return Actor{}, apperr.ErrUnauthorized
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return Actor{}, apperr.ErrUnauthorized
		}
		return Actor{}, err
	}
	return Actor{UserID: user.ID, Role: user.Role}, nil
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
