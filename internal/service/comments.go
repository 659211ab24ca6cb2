package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/lifecycle"
	"github.com/umorjyoti/simplifly/internal/models"
	"github.com/umorjyoti/simplifly/internal/store"
)

// ListComments returns the comments of a ticket to a workspace member
func (s *Service) ListComments(ctx context.Context, actor Actor, ticketID string) ([]models.Comment, error) {
	if _, _, err := s.memberTicket(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, ticketID)
}

// CreateComment adds a comment and a commented history entry in one transaction
func (s *Service) CreateComment(ctx context.Context, actor Actor, ticketID, body string) (*models.Comment, error) {
	if _, _, err := s.memberTicket(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	html, err := s.renderBody(body)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	c := &models.Comment{
		ID:        uuid.NewString(),
		TicketID:  ticketID,
		AuthorID:  actor.UserID,
		Body:      body,
		BodyHTML:  html,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateComment(ctx, c); err != nil {
			return err
		}
		return tx.AppendHistory(ctx, lifecycle.CommentedEntry(ticketID, actor.UserID, c.ID, now))
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// authoredComment loads a comment the actor wrote
func (s *Service) authoredComment(ctx context.Context, actor Actor, id string) (*models.Comment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	c, err := s.store.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.AuthorID != actor.UserID && !actor.IsSuperadmin() {
		return nil, apperr.Forbidden("only the author can change a comment")
	}
	return c, nil
}

// UpdateComment replaces the body of a comment and re-renders it
func (s *Service) UpdateComment(ctx context.Context, actor Actor, id, body string) (*models.Comment, error) {
	c, err := s.authoredComment(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	html, err := s.renderBody(body)
	if err != nil {
		return nil, err
	}
	c.Body = body
	c.BodyHTML = html
	c.UpdatedAt = s.clock()
	if err := s.store.UpdateComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteComment removes a comment. Authors and superadmins only.
func (s *Service) DeleteComment(ctx context.Context, actor Actor, id string) error {
	if _, err := s.authoredComment(ctx, actor, id); err != nil {
		return err
	}
	return s.store.DeleteComment(ctx, id)
}

func (s *Service) renderBody(body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", apperr.Validation("comment body is required")
	}
	return s.markup.Render(body)
}
