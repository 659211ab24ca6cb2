package repository

import (
	"context"
	"fmt"

	"github.com/umorjyoti/simplifly/internal/models"
)

const commentColumns = `id, ticket_id, author_id, body, body_html, created_at, updated_at`

func scanComment(row scanner) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.TicketID, &c.AuthorID, &c.Body, &c.BodyHTML, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "scan comment")
	}
	return &c, nil
}

// CreateComment inserts a comment
func (r *Repository) CreateComment(ctx context.Context, c *models.Comment) error {
	query := `INSERT INTO comments (` + commentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query, c.ID, c.TicketID, c.AuthorID, c.Body, c.BodyHTML, c.CreatedAt, c.UpdatedAt)
	return mapError(err, "create comment")
}

// GetComment loads a comment by id
func (r *Repository) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	return scanComment(r.db.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
}

// ListComments returns the comments of a ticket, oldest first
func (r *Repository) ListComments(ctx context.Context, ticketID string) ([]models.Comment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+commentColumns+` FROM comments WHERE ticket_id = $1 ORDER BY created_at`, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return collect(rows, scanComment)
}

// UpdateComment saves the body of a comment
func (r *Repository) UpdateComment(ctx context.Context, c *models.Comment) error {
	tag, err := r.db.Exec(ctx, `UPDATE comments SET body = $1, body_html = $2, updated_at = $3 WHERE id = $4`,
		c.Body, c.BodyHTML, c.UpdatedAt, c.ID)
	return expectOne(tag, err, "update comment")
}

// DeleteComment removes a comment
func (r *Repository) DeleteComment(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	return expectOne(tag, err, "delete comment")
}
