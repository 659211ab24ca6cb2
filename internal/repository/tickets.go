package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/umorjyoti/simplifly/internal/models"
	"github.com/umorjyoti/simplifly/internal/store"
)

const ticketColumns = `
        id, title, description, go_live_date, assignee_id, workspace_id, type, parent_ticket_id,
        status, payment_status, hours_worked, completed_at, created_by, created_at, updated_at
    `

func scanTicket(row scanner) (*models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.GoLiveDate, &t.AssigneeID, &t.WorkspaceID, &t.Type, &t.ParentTicketID,
		&t.Status, &t.PaymentStatus, &t.HoursWorked, &t.CompletedAt, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, "scan ticket")
	}
	return &t, nil
}

// CreateTicket inserts a ticket
func (r *Repository) CreateTicket(ctx context.Context, t *models.Ticket) error {
	query := `
        INSERT INTO tickets (` + ticketColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `
	_, err := r.db.Exec(ctx, query,
		t.ID, t.Title, t.Description, t.GoLiveDate, t.AssigneeID, t.WorkspaceID, t.Type, t.ParentTicketID,
		t.Status, t.PaymentStatus, t.HoursWorked, t.CompletedAt, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	return mapError(err, "create ticket")
}

// GetTicket loads a ticket by id
func (r *Repository) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	return scanTicket(r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id))
}

// GetTicketsByIDs loads the tickets of one workspace matching ids.
// Ids from other workspaces or unknown ids are silently skipped.
func (r *Repository) GetTicketsByIDs(ctx context.Context, workspaceID string, ids []string) ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE workspace_id = $1 AND id = ANY($2) ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, workspaceID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets: %w", err)
	}
	return collect(rows, scanTicket)
}

// ListTickets returns the tickets matching filter
func (r *Repository) ListTickets(ctx context.Context, filter store.TicketFilter) ([]models.Ticket, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.WorkspaceID != "" {
		add("workspace_id = $%d", filter.WorkspaceID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.Type != "" {
		add("type = $%d", filter.Type)
	}
	if filter.AssigneeID != "" {
		add("assignee_id = $%d", filter.AssigneeID)
	}
	if filter.ParentTicketID != "" {
		add("parent_ticket_id = $%d", filter.ParentTicketID)
	}
	if filter.PaymentStatus != "" {
		add("payment_status = $%d", filter.PaymentStatus)
	}
	if filter.Backlog {
		conds = append(conds, "go_live_date IS NULL")
	}
	if filter.GoLiveFrom != nil {
		add("go_live_date >= $%d", *filter.GoLiveFrom)
	}
	if filter.GoLiveTo != nil {
		add("go_live_date <= $%d", *filter.GoLiveTo)
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return collect(rows, scanTicket)
}

// UpdateTicket saves every mutable field of the ticket
func (r *Repository) UpdateTicket(ctx context.Context, t *models.Ticket) error {
	query := `
        UPDATE tickets
        SET title = $1, description = $2, go_live_date = $3, assignee_id = $4, status = $5,
            payment_status = $6, hours_worked = $7, completed_at = $8, updated_at = $9
        WHERE id = $10
    `
	tag, err := r.db.Exec(ctx, query,
		t.Title, t.Description, t.GoLiveDate, t.AssigneeID, t.Status,
		t.PaymentStatus, t.HoursWorked, t.CompletedAt, t.UpdatedAt, t.ID,
	)
	return expectOne(tag, err, "update ticket")
}

// DeleteTicket removes the ticket. Child tickets, checklist entries and
// comments go with it through ON DELETE CASCADE.
func (r *Repository) DeleteTicket(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	return expectOne(tag, err, "delete ticket")
}
