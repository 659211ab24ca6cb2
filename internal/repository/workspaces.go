package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/umorjyoti/simplifly/internal/models"
)

const workspaceColumns = `
        w.id, w.name, w.description, w.owner_id, w.period_type, w.currency, w.created_at, w.updated_at,
        ARRAY(SELECT m.user_id FROM workspace_members m WHERE m.workspace_id = w.id ORDER BY m.joined_at)
    `

func scanWorkspace(row scanner) (*models.Workspace, error) {
	var w models.Workspace
	err := row.Scan(
		&w.ID, &w.Name, &w.Description, &w.OwnerID,
		&w.Settings.PeriodType, &w.Settings.Currency,
		&w.CreatedAt, &w.UpdatedAt, &w.Members,
	)
	if err != nil {
		return nil, mapError(err, "scan workspace")
	}
	if w.Members == nil {
		w.Members = []string{}
	}
	return &w, nil
}

// CreateWorkspace inserts the workspace and registers its members
func (r *Repository) CreateWorkspace(ctx context.Context, w *models.Workspace) error {
	query := `
        INSERT INTO workspaces (id, name, description, owner_id, period_type, currency, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.db.Exec(ctx, query, w.ID, w.Name, w.Description, w.OwnerID,
		w.Settings.PeriodType, w.Settings.Currency, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return mapError(err, "create workspace")
	}

	for _, member := range w.Members {
		if err := r.AddMember(ctx, w.ID, member); err != nil {
			return err
		}
	}
	return nil
}

// GetWorkspace loads a workspace with its member list
func (r *Repository) GetWorkspace(ctx context.Context, id string) (*models.Workspace, error) {
	return scanWorkspace(r.db.QueryRow(ctx, `SELECT `+workspaceColumns+` FROM workspaces w WHERE w.id = $1`, id))
}

// ListWorkspacesForUser returns the workspaces the user owns or belongs to
func (r *Repository) ListWorkspacesForUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	query := `
        SELECT ` + workspaceColumns + `
        FROM workspaces w
        WHERE w.owner_id = $1
           OR EXISTS (SELECT 1 FROM workspace_members m WHERE m.workspace_id = w.id AND m.user_id = $1)
        ORDER BY w.created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return collect(rows, scanWorkspace)
}

// ListAllWorkspaces returns every workspace
func (r *Repository) ListAllWorkspaces(ctx context.Context) ([]models.Workspace, error) {
	rows, err := r.db.Query(ctx, `SELECT `+workspaceColumns+` FROM workspaces w ORDER BY w.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return collect(rows, scanWorkspace)
}

// UpdateWorkspace saves name, description and settings
func (r *Repository) UpdateWorkspace(ctx context.Context, w *models.Workspace) error {
	query := `
        UPDATE workspaces
        SET name = $1, description = $2, period_type = $3, currency = $4, updated_at = $5
        WHERE id = $6
    `
	tag, err := r.db.Exec(ctx, query, w.Name, w.Description, w.Settings.PeriodType, w.Settings.Currency, w.UpdatedAt, w.ID)
	return expectOne(tag, err, "update workspace")
}

// DeleteWorkspace removes the workspace; members, invites, tickets and bill items cascade
func (r *Repository) DeleteWorkspace(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	return expectOne(tag, err, "delete workspace")
}

// AddMember adds userID to the workspace; adding an existing member is a no-op
func (r *Repository) AddMember(ctx context.Context, workspaceID, userID string) error {
	query := `
        INSERT INTO workspace_members (workspace_id, user_id, joined_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (workspace_id, user_id) DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, workspaceID, userID, time.Now())
	return mapError(err, "add member")
}

// RemoveMember removes userID from the workspace
func (r *Repository) RemoveMember(ctx context.Context, workspaceID, userID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id = $2`, workspaceID, userID)
	return expectOne(tag, err, "remove member")
}
