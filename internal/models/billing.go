package models

import "time"

// BillItem is a manually entered billable line that is not backed by a ticket
type BillItem struct {
	ID          string    `json:"id" db:"id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Hours       float64   `json:"hours" db:"hours"`
	UserID      *string   `json:"user_id,omitempty" db:"user_id"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
