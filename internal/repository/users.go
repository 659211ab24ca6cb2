package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/umorjyoti/simplifly/internal/models"
)

const userColumns = `id, email, name, password_hash, google_id, avatar_url, role, created_at`

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.GoogleID, &u.AvatarURL, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, mapError(err, "scan user")
	}
	return &u, nil
}

// CreateUser inserts a new account
func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	query := `
        INSERT INTO users (id, email, name, password_hash, google_id, avatar_url, role, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.db.Exec(ctx, query, u.ID, strings.ToLower(u.Email), u.Name, u.PasswordHash, u.GoogleID, u.AvatarURL, u.Role, u.CreatedAt)
	return mapError(err, "create user")
}

// GetUserByID loads a user by id
func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByEmail loads a user by email, case-insensitively
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
}

// GetUsersByIDs loads the users with the given ids; unknown ids are skipped
func (r *Repository) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1) ORDER BY name`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return collect(rows, scanUser)
}

// ListUsers returns every account ordered by creation time
func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return collect(rows, scanUser)
}

// UpdateUserRole changes the role of a user
func (r *Repository) UpdateUserRole(ctx context.Context, id string, role models.UserRole) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
	return expectOne(tag, err, "update user role")
}
