package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/umorjyoti/simplifly/internal/models"
	"github.com/umorjyoti/simplifly/internal/store"
)

const billItemColumns = `id, workspace_id, title, description, hours, user_id, created_by, created_at, updated_at`

func scanBillItem(row scanner) (*models.BillItem, error) {
	var b models.BillItem
	err := row.Scan(&b.ID, &b.WorkspaceID, &b.Title, &b.Description, &b.Hours, &b.UserID, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "scan bill item")
	}
	return &b, nil
}

// CreateBillItem inserts a manual bill item
func (r *Repository) CreateBillItem(ctx context.Context, b *models.BillItem) error {
	query := `
        INSERT INTO bill_items (` + billItemColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.db.Exec(ctx, query, b.ID, b.WorkspaceID, b.Title, b.Description, b.Hours, b.UserID, b.CreatedBy, b.CreatedAt, b.UpdatedAt)
	return mapError(err, "create bill item")
}

// GetBillItem loads a bill item by id
func (r *Repository) GetBillItem(ctx context.Context, id string) (*models.BillItem, error) {
	return scanBillItem(r.db.QueryRow(ctx, `SELECT `+billItemColumns+` FROM bill_items WHERE id = $1`, id))
}

// GetBillItemsByIDs loads bill items of one workspace; foreign and unknown ids are skipped
func (r *Repository) GetBillItemsByIDs(ctx context.Context, workspaceID string, ids []string) ([]models.BillItem, error) {
	query := `SELECT ` + billItemColumns + ` FROM bill_items WHERE workspace_id = $1 AND id = ANY($2) ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, workspaceID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get bill items: %w", err)
	}
	return collect(rows, scanBillItem)
}

// ListBillItems returns the bill items matching filter, newest first
func (r *Repository) ListBillItems(ctx context.Context, filter store.BillItemFilter) ([]models.BillItem, error) {
	var (
		conds []string
		args  []any
	)
	if filter.WorkspaceID != "" {
		args = append(args, filter.WorkspaceID)
		conds = append(conds, fmt.Sprintf("workspace_id = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}

	query := `SELECT ` + billItemColumns + ` FROM bill_items`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bill items: %w", err)
	}
	return collect(rows, scanBillItem)
}

// UpdateBillItem saves the mutable fields of a bill item
func (r *Repository) UpdateBillItem(ctx context.Context, b *models.BillItem) error {
	query := `
        UPDATE bill_items
        SET title = $1, description = $2, hours = $3, user_id = $4, updated_at = $5
        WHERE id = $6
    `
	tag, err := r.db.Exec(ctx, query, b.Title, b.Description, b.Hours, b.UserID, b.UpdatedAt, b.ID)
	return expectOne(tag, err, "update bill item")
}

// DeleteBillItem removes a bill item
func (r *Repository) DeleteBillItem(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bill_items WHERE id = $1`, id)
	return expectOne(tag, err, "delete bill item")
}
