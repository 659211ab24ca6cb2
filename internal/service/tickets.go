package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/lifecycle"
	"github.com/umorjyoti/simplifly/internal/models"
	"github.com/umorjyoti/simplifly/internal/period"
	"github.com/umorjyoti/simplifly/internal/store"
)

// TicketInput describes a ticket to create
type TicketInput struct {
	Title          string               `json:"title" validate:"required"`
	Description    string               `json:"description"`
	GoLiveDate     *time.Time           `json:"go_live_date"`
	AssigneeID     *string              `json:"assignee_id"`
	Type           models.TicketType    `json:"type"`
	ParentTicketID *string              `json:"parent_ticket_id"`
	Status         models.TicketStatus  `json:"status"`
	PaymentStatus  models.PaymentStatus `json:"payment_status"`
	HoursWorked    float64              `json:"hours_worked" validate:"gte=0"`
}

// TicketQuery filters a ticket listing. When Period is set, only tickets
// going live inside the period around Date (default now) are returned.
type TicketQuery struct {
	Status         models.TicketStatus
	Type           models.TicketType
	AssigneeID     string
	ParentTicketID string
	PaymentStatus  models.PaymentStatus
	Backlog        bool
	Period         string
	Date           *time.Time
}

// CreateTicket creates a ticket in a workspace and records its creation
func (s *Service) CreateTicket(ctx context.Context, actor Actor, workspaceID string, in TicketInput) (*models.Ticket, error) {
	ws, err := s.memberWorkspace(ctx, actor, workspaceID)
	if err != nil {
		return nil, err
	}

	t := &models.Ticket{
		ID:             uuid.NewString(),
		Title:          in.Title,
		Description:    in.Description,
		GoLiveDate:     in.GoLiveDate,
		AssigneeID:     in.AssigneeID,
		WorkspaceID:    ws.ID,
		Type:           in.Type,
		ParentTicketID: in.ParentTicketID,
		Status:         in.Status,
		PaymentStatus:  in.PaymentStatus,
		HoursWorked:    in.HoursWorked,
		CreatedBy:      actor.UserID,
	}

	now := s.clock()
	if err := lifecycle.PrepareNew(t, now); err != nil {
		return nil, err
	}

	if t.AssigneeID == nil || *t.AssigneeID == "" {
		assignee := actor.UserID
		t.AssigneeID = &assignee
	}
	if err := checkAssignable(ws, *t.AssigneeID); err != nil {
		return nil, err
	}

	if t.ParentTicketID != nil {
		parent, err := s.store.GetTicket(ctx, *t.ParentTicketID)
		if err != nil {
			if isNotFound(err) {
				return nil, apperr.Validation("parent ticket %s does not exist", *t.ParentTicketID)
			}
			return nil, err
		}
		if parent.WorkspaceID != ws.ID {
			return nil, apperr.Validation("parent ticket belongs to another workspace")
		}
		if parent.Type != models.TicketStory {
			return nil, apperr.Validation("a subtask can only be attached to a story")
		}
	}

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateTicket(ctx, t); err != nil {
			return err
		}
		return tx.AppendHistory(ctx, lifecycle.CreatedEntry(t, actor.UserID, now))
	})
	if err != nil {
		return nil, err
	}

	s.metrics.TicketCreated(string(t.Type))
	return t, nil
}

// GetTicket returns a ticket of a workspace the actor belongs to
func (s *Service) GetTicket(ctx context.Context, actor Actor, id string) (*models.Ticket, error) {
	t, _, err := s.memberTicket(ctx, actor, id)
	return t, err
}

// ListTickets returns the tickets of a workspace matching q
func (s *Service) ListTickets(ctx context.Context, actor Actor, workspaceID string, q TicketQuery) ([]models.Ticket, error) {
	if _, err := s.memberWorkspace(ctx, actor, workspaceID); err != nil {
		return nil, err
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperr.Validation("invalid status %q", q.Status)
	}
	if q.Type != "" && !q.Type.Valid() {
		return nil, apperr.Validation("invalid ticket type %q", q.Type)
	}
	if q.PaymentStatus != "" && !q.PaymentStatus.Valid() {
		return nil, apperr.Validation("invalid payment status %q", q.PaymentStatus)
	}

	filter := store.TicketFilter{
		WorkspaceID:    workspaceID,
		Status:         q.Status,
		Type:           q.Type,
		AssigneeID:     q.AssigneeID,
		ParentTicketID: q.ParentTicketID,
		PaymentStatus:  q.PaymentStatus,
		Backlog:        q.Backlog,
	}
	if q.Period != "" && !q.Backlog {
		ref := s.clock()
		if q.Date != nil {
			ref = *q.Date
		}
		r := period.ForDate(ref, period.ParseType(q.Period))
		filter.GoLiveFrom = &r.Start
		filter.GoLiveTo = &r.End
	}
	return s.store.ListTickets(ctx, filter)
}

// UpdateTicket applies a partial update and records its history in the same transaction
func (s *Service) UpdateTicket(ctx context.Context, actor Actor, id string, u lifecycle.Update) (*models.Ticket, error) {
	t, ws, err := s.memberTicket(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if u.AssigneeID != nil && *u.AssigneeID != "" {
		if err := checkAssignable(ws, *u.AssigneeID); err != nil {
			return nil, err
		}
	}

	entries, err := lifecycle.Apply(t, u, actor.UserID, s.clock())
	if err != nil {
		return nil, err
	}
	if u.Empty() {
		return t, nil
	}

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.UpdateTicket(ctx, t); err != nil {
			return err
		}
		return tx.AppendHistory(ctx, entries...)
	})
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.Action == models.ActionStatusChanged && e.NewValue != nil {
			s.metrics.StatusChanged(*e.NewValue)
		}
	}
	return t, nil
}

// PatchStatus moves a ticket to status, optionally setting hours in the same write
func (s *Service) PatchStatus(ctx context.Context, actor Actor, id string, status models.TicketStatus, hours *float64) (*models.Ticket, error) {
	return s.UpdateTicket(ctx, actor, id, lifecycle.Update{Status: &status, HoursWorked: hours})
}

// PatchHours sets the hours worked on a ticket
func (s *Service) PatchHours(ctx context.Context, actor Actor, id string, hours float64) (*models.Ticket, error) {
	return s.UpdateTicket(ctx, actor, id, lifecycle.Update{HoursWorked: &hours})
}

// DeleteTicket removes a ticket with its child tickets, checklist and
// comments. Owner only; history is retained.
func (s *Service) DeleteTicket(ctx context.Context, actor Actor, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	t, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.ownedWorkspace(ctx, actor, t.WorkspaceID); err != nil {
		return err
	}
	if err := s.store.DeleteTicket(ctx, id); err != nil {
		return err
	}
	s.logger.Info("ticket deleted", zap.String("ticket_id", id), zap.String("actor_id", actor.UserID))
	return nil
}

// TicketHistory returns the audit trail of a ticket, newest first
func (s *Service) TicketHistory(ctx context.Context, actor Actor, id string) ([]models.TicketHistory, error) {
	if _, _, err := s.memberTicket(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.store.ListHistory(ctx, id)
}

// GoLiveYears lists the distinct go-live years of a workspace, newest first
func (s *Service) GoLiveYears(ctx context.Context, actor Actor, workspaceID string) ([]int, error) {
	if _, err := s.memberWorkspace(ctx, actor, workspaceID); err != nil {
		return nil, err
	}
	tickets, err := s.store.ListTickets(ctx, store.TicketFilter{WorkspaceID: workspaceID})
	if err != nil {
		return nil, err
	}
	return period.YearsFromTickets(tickets), nil
}
