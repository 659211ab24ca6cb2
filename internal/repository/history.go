package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/umorjyoti/simplifly/internal/models"
)

const historyColumns = `id, ticket_id, actor_id, action, old_value, new_value, description, created_at`

func scanHistory(row scanner) (*models.TicketHistory, error) {
	var h models.TicketHistory
	err := row.Scan(&h.ID, &h.TicketID, &h.ActorID, &h.Action, &h.OldValue, &h.NewValue, &h.Description, &h.CreatedAt)
	if err != nil {
		return nil, mapError(err, "scan history")
	}
	return &h, nil
}

// AppendHistory writes entries in a single batch
func (r *Repository) AppendHistory(ctx context.Context, entries ...models.TicketHistory) error {
	if len(entries) == 0 {
		return nil
	}

	query := `INSERT INTO ticket_history (` + historyColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	batch := &pgx.Batch{}
	for _, h := range entries {
		batch.Queue(query, h.ID, h.TicketID, h.ActorID, h.Action, h.OldValue, h.NewValue, h.Description, h.CreatedAt)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()
	for range entries {
		if _, err := br.Exec(); err != nil {
			return mapError(err, "append history")
		}
	}
	return nil
}

// ListHistory returns the audit trail of a ticket, newest first
func (r *Repository) ListHistory(ctx context.Context, ticketID string) ([]models.TicketHistory, error) {
	query := `SELECT ` + historyColumns + ` FROM ticket_history WHERE ticket_id = $1 ORDER BY created_at DESC, id`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return collect(rows, scanHistory)
}
