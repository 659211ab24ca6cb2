package repository

import (
	"context"
	"fmt"

	"github.com/umorjyoti/simplifly/internal/models"
)

const subtaskColumns = `id, ticket_id, title, description, completed, completed_at, sort_order, created_at, updated_at`

func scanSubtask(row scanner) (*models.Subtask, error) {
	var s models.Subtask
	err := row.Scan(&s.ID, &s.TicketID, &s.Title, &s.Description, &s.Completed, &s.CompletedAt, &s.Order, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "scan subtask")
	}
	return &s, nil
}

// CreateSubtask inserts a checklist entry
func (r *Repository) CreateSubtask(ctx context.Context, s *models.Subtask) error {
	query := `
        INSERT INTO subtasks (` + subtaskColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.db.Exec(ctx, query, s.ID, s.TicketID, s.Title, s.Description, s.Completed, s.CompletedAt, s.Order, s.CreatedAt, s.UpdatedAt)
	return mapError(err, "create subtask")
}

// GetSubtask loads a checklist entry by id
func (r *Repository) GetSubtask(ctx context.Context, id string) (*models.Subtask, error) {
	return scanSubtask(r.db.QueryRow(ctx, `SELECT `+subtaskColumns+` FROM subtasks WHERE id = $1`, id))
}

// ListSubtasks returns the checklist of a ticket in display order
func (r *Repository) ListSubtasks(ctx context.Context, ticketID string) ([]models.Subtask, error) {
	query := `SELECT ` + subtaskColumns + ` FROM subtasks WHERE ticket_id = $1 ORDER BY sort_order, created_at`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}
	return collect(rows, scanSubtask)
}

// NextSubtaskOrder returns the position after the last checklist entry
func (r *Repository) NextSubtaskOrder(ctx context.Context, ticketID string) (int, error) {
	var next int
	err := r.db.QueryRow(ctx, `SELECT COALESCE(MAX(sort_order) + 1, 0) FROM subtasks WHERE ticket_id = $1`, ticketID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to get next subtask order: %w", err)
	}
	return next, nil
}

// UpdateSubtask saves a checklist entry
func (r *Repository) UpdateSubtask(ctx context.Context, s *models.Subtask) error {
	query := `
        UPDATE subtasks
        SET title = $1, description = $2, completed = $3, completed_at = $4, sort_order = $5, updated_at = $6
        WHERE id = $7
    `
	tag, err := r.db.Exec(ctx, query, s.Title, s.Description, s.Completed, s.CompletedAt, s.Order, s.UpdatedAt, s.ID)
	return expectOne(tag, err, "update subtask")
}

// DeleteSubtask removes a checklist entry
func (r *Repository) DeleteSubtask(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM subtasks WHERE id = $1`, id)
	return expectOne(tag, err, "delete subtask")
}
