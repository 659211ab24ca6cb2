package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/umorjyoti/simplifly/internal/lifecycle"
	"github.com/umorjyoti/simplifly/internal/models"
	"github.com/umorjyoti/simplifly/internal/store"
)

// SubtaskInput describes a checklist entry to create
type SubtaskInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// ListSubtasks returns the checklist of a ticket
func (s *Service) ListSubtasks(ctx context.Context, actor Actor, ticketID string) ([]models.Subtask, error) {
	if _, _, err := s.memberTicket(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	return s.store.ListSubtasks(ctx, ticketID)
}

// CreateSubtask appends a checklist entry to the end of a ticket's checklist
func (s *Service) CreateSubtask(ctx context.Context, actor Actor, ticketID string, in SubtaskInput) (*models.Subtask, error) {
	if _, _, err := s.memberTicket(ctx, actor, ticketID); err != nil {
		return nil, err
	}

	sub := &models.Subtask{
		ID:          uuid.NewString(),
		TicketID:    ticketID,
		Title:       in.Title,
		Description: in.Description,
	}
	if err := lifecycle.PrepareSubtask(sub, s.clock()); err != nil {
		return nil, err
	}

	err := s.store.WithTx(ctx, func(tx store.Store) error {
		order, err := tx.NextSubtaskOrder(ctx, ticketID)
		if err != nil {
			return err
		}
		sub.Order = order
		return tx.CreateSubtask(ctx, sub)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// memberSubtask loads a checklist entry whose ticket the actor can see
func (s *Service) memberSubtask(ctx context.Context, actor Actor, id string) (*models.Subtask, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	sub, err := s.store.GetSubtask(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.memberTicket(ctx, actor, sub.TicketID); err != nil {
		return nil, err
	}
	return sub, nil
}

// UpdateSubtask applies u to a checklist entry
func (s *Service) UpdateSubtask(ctx context.Context, actor Actor, id string, u lifecycle.SubtaskUpdate) (*models.Subtask, error) {
	sub, err := s.memberSubtask(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.ApplySubtask(sub, u, s.clock()); err != nil {
		return nil, err
	}
	if err := s.store.UpdateSubtask(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// DeleteSubtask removes a checklist entry
func (s *Service) DeleteSubtask(ctx context.Context, actor Actor, id string) error {
	if _, err := s.memberSubtask(ctx, actor, id); err != nil {
		return err
	}
	return s.store.DeleteSubtask(ctx, id)
}
