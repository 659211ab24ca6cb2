package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/umorjyoti/simplifly/internal/models"
	"github.com/umorjyoti/simplifly/internal/store"
)

const inviteColumns = `id, workspace_id, token, invited_by, requested_by, status, expires_at, created_at, updated_at`

func scanInvite(row scanner) (*models.WorkspaceInvite, error) {
	var inv models.WorkspaceInvite
	err := row.Scan(&inv.ID, &inv.WorkspaceID, &inv.Token, &inv.InvitedBy, &inv.RequestedBy,
		&inv.Status, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "scan invite")
	}
	return &inv, nil
}

// CreateInvite stores an invite link or a join request
func (r *Repository) CreateInvite(ctx context.Context, inv *models.WorkspaceInvite) error {
	query := `
        INSERT INTO workspace_invites (` + inviteColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.db.Exec(ctx, query, inv.ID, inv.WorkspaceID, inv.Token, inv.InvitedBy, inv.RequestedBy,
		inv.Status, inv.ExpiresAt, inv.CreatedAt, inv.UpdatedAt)
	return mapError(err, "create invite")
}

// GetInvite loads an invite or join request by id
func (r *Repository) GetInvite(ctx context.Context, id string) (*models.WorkspaceInvite, error) {
	return scanInvite(r.db.QueryRow(ctx, `SELECT `+inviteColumns+` FROM workspace_invites WHERE id = $1`, id))
}

// GetInviteByToken finds the invite link behind a token. Join requests
// are never returned here.
func (r *Repository) GetInviteByToken(ctx context.Context, token string) (*models.WorkspaceInvite, error) {
	query := `SELECT ` + inviteColumns + ` FROM workspace_invites WHERE token = $1 AND requested_by IS NULL`
	return scanInvite(r.db.QueryRow(ctx, query, token))
}

// FindPendingRequest returns the open join request of userID for the workspace
func (r *Repository) FindPendingRequest(ctx context.Context, workspaceID, userID string) (*models.WorkspaceInvite, error) {
	query := `
        SELECT ` + inviteColumns + `
        FROM workspace_invites
        WHERE workspace_id = $1 AND requested_by = $2 AND status = 'pending'
        ORDER BY created_at DESC
        LIMIT 1
    `
	return scanInvite(r.db.QueryRow(ctx, query, workspaceID, userID))
}

// ListInvites returns the invites matching filter, newest first
func (r *Repository) ListInvites(ctx context.Context, filter store.InviteFilter) ([]models.WorkspaceInvite, error) {
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
	if filter.JoinRequests != nil {
		if *filter.JoinRequests {
			conds = append(conds, "requested_by IS NOT NULL")
		} else {
			conds = append(conds, "requested_by IS NULL")
		}
	}

	query := `SELECT ` + inviteColumns + ` FROM workspace_invites`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	return collect(rows, scanInvite)
}

// UpdateInviteStatus moves an invite to status, stamped with at
func (r *Repository) UpdateInviteStatus(ctx context.Context, id string, status models.InviteStatus, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE workspace_invites SET status = $1, updated_at = $2 WHERE id = $3`, status, at, id)
	return expectOne(tag, err, "update invite status")
}

// DeleteInvite removes an invite or join request
func (r *Repository) DeleteInvite(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM workspace_invites WHERE id = $1`, id)
	return expectOne(tag, err, "delete invite")
}

// ExpireInvites rejects every pending invite whose expiry lies before now
// and returns how many rows changed.
func (r *Repository) ExpireInvites(ctx context.Context, now time.Time) (int64, error) {
	query := `
        UPDATE workspace_invites
        SET status = 'rejected', updated_at = $1
        WHERE status = 'pending' AND expires_at IS NOT NULL AND expires_at < $1
    `
	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire invites: %w", err)
	}
	return tag.RowsAffected(), nil
}
