package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/billing"
	"github.com/umorjyoti/simplifly/internal/lifecycle"
	"github.com/umorjyoti/simplifly/internal/models"
	"github.com/umorjyoti/simplifly/internal/period"
	"github.com/umorjyoti/simplifly/internal/store"
)

// BillableQuery selects the work shown as billable
type BillableQuery struct {
	Scope  billing.Scope
	UserID string
	Period string
	Date   *time.Time
}

// Billable is the work of a workspace that can be put on an invoice
type Billable struct {
	Tickets   []models.Ticket   `json:"tickets"`
	BillItems []models.BillItem `json:"bill_items"`
	Period    *period.Range     `json:"period,omitempty"`
}

// BillItemInput describes a manual bill item
type BillItemInput struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Hours       float64 `json:"hours" validate:"gt=0"`
	UserID      *string `json:"user_id"`
}

// BillItemUpdate is a partial change of a bill item. An empty UserID clears it.
type BillItemUpdate struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Hours       *float64 `json:"hours"`
	UserID      *string  `json:"user_id"`
}

// ListBillable returns completed, unbilled stories and manual items of a
// workspace, narrowed to a user and to a completion period when requested.
func (s *Service) ListBillable(ctx context.Context, actor Actor, workspaceID string, q BillableQuery) (*Billable, error) {
	if _, err := s.ownedWorkspace(ctx, actor, workspaceID); err != nil {
		return nil, err
	}

	if q.Scope == "" {
		q.Scope = billing.ScopeAgency
	}
	switch q.Scope {
	case billing.ScopeAgency:
		q.UserID = ""
	case billing.ScopeUser:
		if q.UserID == "" {
			return nil, apperr.Validation("user scope requires a user id")
		}
	default:
		return nil, apperr.Validation("invalid billing scope %q", q.Scope)
	}

	var rng *period.Range
	if q.Period != "" {
		ref := s.clock()
		if q.Date != nil {
			ref = *q.Date
		}
		r := period.ForDate(ref, period.ParseType(q.Period))
		rng = &r
	}

	tickets, err := s.store.ListTickets(ctx, store.TicketFilter{
		WorkspaceID: workspaceID,
		Type:        models.TicketStory,
		Status:      models.StatusCompleted,
		AssigneeID:  q.UserID,
	})
	if err != nil {
		return nil, err
	}
	out := &Billable{Tickets: make([]models.Ticket, 0, len(tickets)), Period: rng}
	for _, t := range tickets {
		if !billing.Eligible(t) {
			continue
		}
		if rng != nil && !period.Contains(t.CompletedAt, rng.Start, rng.End) {
			continue
		}
		out.Tickets = append(out.Tickets, t)
	}

	items, err := s.store.ListBillItems(ctx, store.BillItemFilter{WorkspaceID: workspaceID, UserID: q.UserID})
	if err != nil {
		return nil, err
	}
	out.BillItems = make([]models.BillItem, 0, len(items))
	for _, it := range items {
		created := it.CreatedAt
		if rng != nil && !period.Contains(&created, rng.Start, rng.End) {
			continue
		}
		out.BillItems = append(out.BillItems, it)
	}
	return out, nil
}

// GenerateBill aggregates the selected work into an invoice. Nothing is persisted.
func (s *Service) GenerateBill(ctx context.Context, actor Actor, workspaceID string, sel billing.Selection) (*billing.Invoice, error) {
	ws, err := s.ownedWorkspace(ctx, actor, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	var (
		tickets []models.Ticket
		items   []models.BillItem
	)
	if len(sel.TicketIDs) > 0 {
		if tickets, err = s.store.GetTicketsByIDs(ctx, ws.ID, sel.TicketIDs); err != nil {
			return nil, err
		}
	}
	if len(sel.BillItemIDs) > 0 {
		if items, err = s.store.GetBillItemsByIDs(ctx, ws.ID, sel.BillItemIDs); err != nil {
			return nil, err
		}
	}

	inv, err := billing.Aggregate(*ws, sel, tickets, items, s.clock())
	if err != nil {
		return nil, err
	}

	s.metrics.InvoiceGenerated(string(inv.Scope), inv.Totals.TotalHours)
	s.logger.Info("invoice generated",
		zap.String("workspace_id", ws.ID),
		zap.String("scope", string(inv.Scope)),
		zap.Int("items", inv.Totals.TotalItems),
		zap.Float64("hours", inv.Totals.TotalHours))
	return inv, nil
}

// ExportBill generates the invoice and writes it to w as an xlsx workbook
func (s *Service) ExportBill(ctx context.Context, actor Actor, workspaceID string, sel billing.Selection, w io.Writer) (*billing.Invoice, error) {
	inv, err := s.GenerateBill(ctx, actor, workspaceID, sel)
	if err != nil {
		return nil, err
	}
	if err := billing.WriteXLSX(inv, w); err != nil {
		return nil, err
	}
	return inv, nil
}

// UpdatePaymentStatus sets the payment status of several tickets at once.
// Ids of other workspaces or unknown ids are skipped. Every change writes
// history; all changes commit together.
func (s *Service) UpdatePaymentStatus(ctx context.Context, actor Actor, workspaceID string, ticketIDs []string, status models.PaymentStatus) ([]models.Ticket, error) {
	ws, err := s.ownedWorkspace(ctx, actor, workspaceID)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperr.Validation("invalid payment status %q", status)
	}
	if len(ticketIDs) == 0 {
		return nil, apperr.Validation("select at least one ticket")
	}

	tickets, err := s.store.GetTicketsByIDs(ctx, ws.ID, ticketIDs)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		for i := range tickets {
			entries, err := lifecycle.Apply(&tickets[i], lifecycle.Update{PaymentStatus: &status}, actor.UserID, now)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				continue
			}
			if err := tx.UpdateTicket(ctx, &tickets[i]); err != nil {
				return err
			}
			if err := tx.AppendHistory(ctx, entries...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// ListBillItems returns the manual bill items of a workspace, optionally of one user
func (s *Service) ListBillItems(ctx context.Context, actor Actor, workspaceID, userID string) ([]models.BillItem, error) {
	if _, err := s.ownedWorkspace(ctx, actor, workspaceID); err != nil {
		return nil, err
	}
	return s.store.ListBillItems(ctx, store.BillItemFilter{WorkspaceID: workspaceID, UserID: userID})
}

// CreateBillItem records manual work that has no ticket. Owner only.
func (s *Service) CreateBillItem(ctx context.Context, actor Actor, workspaceID string, in BillItemInput) (*models.BillItem, error) {
	ws, err := s.ownedWorkspace(ctx, actor, workspaceID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	item := &models.BillItem{
		ID:          uuid.NewString(),
		WorkspaceID: ws.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Hours:       in.Hours,
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.UserID != nil && *in.UserID != "" {
		userID := *in.UserID
		item.UserID = &userID
	}
	if err := validateBillItem(ws, item); err != nil {
		return nil, err
	}
	if err := s.store.CreateBillItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ownedBillItem loads a bill item of a workspace the actor owns
func (s *Service) ownedBillItem(ctx context.Context, actor Actor, id string) (*models.BillItem, *models.Workspace, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}
	item, err := s.store.GetBillItem(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	ws, err := s.ownedWorkspace(ctx, actor, item.WorkspaceID)
	if err != nil {
		return nil, nil, err
	}
	return item, ws, nil
}

// UpdateBillItem applies u to a bill item. An empty UserID unassigns it.
func (s *Service) UpdateBillItem(ctx context.Context, actor Actor, id string, u BillItemUpdate) (*models.BillItem, error) {
	item, ws, err := s.ownedBillItem(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if u.Title != nil {
		item.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		item.Description = *u.Description
	}
	if u.Hours != nil {
		item.Hours = *u.Hours
	}
	if u.UserID != nil {
		if *u.UserID == "" {
			item.UserID = nil
		} else {
			userID := *u.UserID
			item.UserID = &userID
		}
	}
	if err := validateBillItem(ws, item); err != nil {
		return nil, err
	}

	item.UpdatedAt = s.clock()
	if err := s.store.UpdateBillItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteBillItem removes a bill item. Owner only.
func (s *Service) DeleteBillItem(ctx context.Context, actor Actor, id string) error {
	if _, _, err := s.ownedBillItem(ctx, actor, id); err != nil {
		return err
	}
	return s.store.DeleteBillItem(ctx, id)
}

func validateBillItem(ws *models.Workspace, item *models.BillItem) error {
	if item.Title == "" {
		return apperr.Validation("title is required")
	}
	if item.Hours <= 0 {
		return apperr.Validation("hours must be positive")
	}
	if item.UserID != nil {
		return checkAssignable(ws, *item.UserID)
	}
	return nil
}
