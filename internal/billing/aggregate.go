// Package billing turns completed tickets and manual bill items into an
// invoice-shaped summary. Invoices are presentational only and are never
// persisted; marking work as billed is a separate payment status update.
package billing

import (
	"time"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/models"
)

// Scope labels whose work an invoice covers. It is recorded on the
// invoice and does not filter the selected work by assignee.
type Scope string

const (
	// ScopeUser labels the invoice with a single user
	ScopeUser Scope = "user"
	// ScopeAgency labels the invoice as covering the whole workspace
	ScopeAgency Scope = "agency"
)

// ItemType discriminates work items built from tickets and from manual bill items
type ItemType string

const (
	ItemTicket ItemType = "ticket"
	ItemManual ItemType = "manual"
)

// Selection is what the caller asks to be invoiced
type Selection struct {
	TicketIDs   []string `json:"ticket_ids"`
	BillItemIDs []string `json:"bill_item_ids"`
	HourlyRate  float64  `json:"hourly_rate" validate:"gt=0"`
	Scope       Scope    `json:"scope" validate:"required,oneof=user agency"`
	UserID      string   `json:"user_id,omitempty"`
}

// WorkItem is a single invoice line
type WorkItem struct {
	ID          string     `json:"id"`
	ItemType    ItemType   `json:"item_type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Hours       float64    `json:"hours"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Totals summarises an invoice
type Totals struct {
	TotalItems  int     `json:"total_items"`
	TicketCount int     `json:"ticket_count"`
	ManualCount int     `json:"manual_item_count"`
	TotalHours  float64 `json:"total_hours"`
	TotalAmount float64 `json:"total_amount"`
}

// WorkspaceRef identifies the workspace an invoice was generated for
type WorkspaceRef struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Currency models.Currency `json:"currency"`
}

// Invoice is the generated billing summary
type Invoice struct {
	Workspace   WorkspaceRef `json:"workspace"`
	Scope       Scope        `json:"scope"`
	UserID      string       `json:"user_id,omitempty"`
	HourlyRate  float64      `json:"hourly_rate"`
	Items       []WorkItem   `json:"items"`
	Totals      Totals       `json:"totals"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Eligible reports whether a ticket can be put on an invoice: a completed
// story with hours that has not been billed yet. Subtask tickets never are.
func Eligible(t models.Ticket) bool {
	if t.Type != models.TicketStory || t.Status != models.StatusCompleted || t.HoursWorked <= 0 {
		return false
	}
	return t.PaymentStatus == models.PaymentPending || t.PaymentStatus == models.PaymentNotApplicable
}

// Validate checks the caller supplied selection
func (s Selection) Validate() error {
	if len(s.TicketIDs) == 0 && len(s.BillItemIDs) == 0 {
		return apperr.Validation("select at least one ticket or bill item")
	}
	if s.HourlyRate <= 0 {
		return apperr.Validation("hourly rate must be positive")
	}
	switch s.Scope {
	case ScopeAgency:
	case ScopeUser:
		if s.UserID == "" {
			return apperr.Validation("user scope requires a user id")
		}
	default:
		return apperr.Validation("invalid billing scope %q", s.Scope)
	}
	return nil
}

// Aggregate builds the invoice for sel out of candidate tickets and items.
// Candidates that were not selected or belong to another workspace are
// skipped without error; eligibility is the caller's concern. Scope and
// UserID only label the invoice: every selected ticket and item is billed
// whoever it is assigned to.
func Aggregate(ws models.Workspace, sel Selection, tickets []models.Ticket, items []models.BillItem, now time.Time) (*Invoice, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	inv := &Invoice{
		Workspace: WorkspaceRef{
			ID:       ws.ID,
			Name:     ws.Name,
			Currency: ws.Settings.Currency,
		},
		Scope:       sel.Scope,
		UserID:      sel.UserID,
		HourlyRate:  sel.HourlyRate,
		Items:       make([]WorkItem, 0, len(sel.TicketIDs)+len(sel.BillItemIDs)),
		GeneratedAt: now,
	}
	if sel.Scope == ScopeAgency {
		inv.UserID = ""
	}

	ticketsByID := make(map[string]models.Ticket, len(tickets))
	for _, t := range tickets {
		if t.WorkspaceID == ws.ID {
			ticketsByID[t.ID] = t
		}
	}
	itemsByID := make(map[string]models.BillItem, len(items))
	for _, it := range items {
		if it.WorkspaceID == ws.ID {
			itemsByID[it.ID] = it
		}
	}

	for _, id := range dedupe(sel.TicketIDs) {
		t, ok := ticketsByID[id]
		if !ok {
			continue
		}
		inv.Items = append(inv.Items, WorkItem{
			ID:          t.ID,
			ItemType:    ItemTicket,
			Title:       t.Title,
			Description: t.Description,
			Hours:       t.HoursWorked,
			AssigneeID:  t.AssigneeID,
			CompletedAt: t.CompletedAt,
		})
		inv.Totals.TicketCount++
	}
	for _, id := range dedupe(sel.BillItemIDs) {
		it, ok := itemsByID[id]
		if !ok {
			continue
		}
		inv.Items = append(inv.Items, WorkItem{
			ID:          it.ID,
			ItemType:    ItemManual,
			Title:       it.Title,
			Description: it.Description,
			Hours:       it.Hours,
			AssigneeID:  it.UserID,
		})
		inv.Totals.ManualCount++
	}

	for _, item := range inv.Items {
		inv.Totals.TotalHours += item.Hours
	}
	inv.Totals.TotalItems = len(inv.Items)
	inv.Totals.TotalAmount = inv.Totals.TotalHours * sel.HourlyRate
	return inv, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
