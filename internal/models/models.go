// models/models.go
package models

import "time"

// UserRole defines what a user is allowed to do across workspaces
type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleSuperadmin UserRole = "superadmin"
)

// Valid reports whether the role is one of the known roles
func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleSuperadmin
}

// User is an account that can own or join workspaces
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	GoogleID     *string   `json:"google_id,omitempty" db:"google_id"`
	AvatarURL    string    `json:"avatar_url,omitempty" db:"avatar_url"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// PeriodType is the billing period a workspace reports in
type PeriodType string

const (
	PeriodWeekly    PeriodType = "weekly"
	PeriodMonthly   PeriodType = "monthly"
	PeriodQuarterly PeriodType = "quarterly"
)

// Valid reports whether the period type is one of the known types
func (p PeriodType) Valid() bool {
	switch p {
	case PeriodWeekly, PeriodMonthly, PeriodQuarterly:
		return true
	}
	return false
}

// Currency is the currency invoices of a workspace are issued in
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyINR Currency = "INR"
)

// Valid reports whether the currency is supported
func (c Currency) Valid() bool {
	return c == CurrencyUSD || c == CurrencyINR
}

// WorkspaceSettings holds per-workspace reporting preferences
type WorkspaceSettings struct {
	PeriodType PeriodType `json:"period_type" db:"period_type"`
	Currency   Currency   `json:"currency" db:"currency"`
}

// Workspace groups tickets and the users working on them
type Workspace struct {
	ID          string            `json:"id" db:"id"`
	Name        string            `json:"name" db:"name"`
	Description string            `json:"description" db:"description"`
	OwnerID     string            `json:"owner_id" db:"owner_id"`
	Members     []string          `json:"members" db:"-"`
	Settings    WorkspaceSettings `json:"settings" db:"-"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}

// IsOwner reports whether userID owns the workspace
func (w *Workspace) IsOwner(userID string) bool {
	return w.OwnerID == userID
}

// IsMember reports whether userID belongs to the workspace. The owner is always a member.
func (w *Workspace) IsMember(userID string) bool {
	if w.IsOwner(userID) {
		return true
	}
	for _, m := range w.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// InviteStatus is the state of an invite link or join request
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteApproved InviteStatus = "approved"
	InviteRejected InviteStatus = "rejected"
)

// WorkspaceInvite is either an invite link (RequestedBy == nil) or a join
// request made through such a link (RequestedBy set).
type WorkspaceInvite struct {
	ID          string       `json:"id" db:"id"`
	WorkspaceID string       `json:"workspace_id" db:"workspace_id"`
	Token       string       `json:"token" db:"token"`
	InvitedBy   string       `json:"invited_by" db:"invited_by"`
	RequestedBy *string      `json:"requested_by,omitempty" db:"requested_by"`
	Status      InviteStatus `json:"status" db:"status"`
	ExpiresAt   *time.Time   `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// IsJoinRequest reports whether the record was created by a user asking to join
func (i *WorkspaceInvite) IsJoinRequest() bool {
	return i.RequestedBy != nil
}

// Expired reports whether the invite has an expiry that lies before now
func (i *WorkspaceInvite) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(now)
}
