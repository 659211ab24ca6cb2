// Package store declares the persistence contract the service layer depends on.
package store

import (
	"context"
	"time"

	"github.com/umorjyoti/simplifly/internal/models"
)

// TicketFilter narrows a ticket listing. Zero values mean "any".
type TicketFilter struct {
	WorkspaceID    string
	Status         models.TicketStatus
	Type           models.TicketType
	AssigneeID     string
	ParentTicketID string
	PaymentStatus  models.PaymentStatus
	Backlog        bool       // only tickets without a go-live date
	GoLiveFrom     *time.Time // inclusive
	GoLiveTo       *time.Time // inclusive
}

// BillItemFilter narrows a bill item listing
type BillItemFilter struct {
	WorkspaceID string
	UserID      string
}

// InviteFilter narrows an invite listing
type InviteFilter struct {
	WorkspaceID  string
	Status       models.InviteStatus
	JoinRequests *bool // nil = both, true = only join requests, false = only invite links
}

// Store defines the persistence interface for every entity of the service.
// Implementations return apperr.ErrNotFound for missing rows and
// apperr.ErrConflict for unique violations.
type Store interface {
	// WithTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	// === Users ===

	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id string, role models.UserRole) error

	// === Workspaces ===

	CreateWorkspace(ctx context.Context, w *models.Workspace) error
	GetWorkspace(ctx context.Context, id string) (*models.Workspace, error)
	ListWorkspacesForUser(ctx context.Context, userID string) ([]models.Workspace, error)
	ListAllWorkspaces(ctx context.Context) ([]models.Workspace, error)
	UpdateWorkspace(ctx context.Context, w *models.Workspace) error
	DeleteWorkspace(ctx context.Context, id string) error
	AddMember(ctx context.Context, workspaceID, userID string) error
	RemoveMember(ctx context.Context, workspaceID, userID string) error

	// === Invites ===

	CreateInvite(ctx context.Context, inv *models.WorkspaceInvite) error
	GetInvite(ctx context.Context, id string) (*models.WorkspaceInvite, error)
	GetInviteByToken(ctx context.Context, token string) (*models.WorkspaceInvite, error)
	FindPendingRequest(ctx context.Context, workspaceID, userID string) (*models.WorkspaceInvite, error)
	ListInvites(ctx context.Context, filter InviteFilter) ([]models.WorkspaceInvite, error)
	UpdateInviteStatus(ctx context.Context, id string, status models.InviteStatus, at time.Time) error
	DeleteInvite(ctx context.Context, id string) error
	ExpireInvites(ctx context.Context, now time.Time) (int64, error)

	// === Tickets ===

	CreateTicket(ctx context.Context, t *models.Ticket) error
	GetTicket(ctx context.Context, id string) (*models.Ticket, error)
	GetTicketsByIDs(ctx context.Context, workspaceID string, ids []string) ([]models.Ticket, error)
	ListTickets(ctx context.Context, filter TicketFilter) ([]models.Ticket, error)
	UpdateTicket(ctx context.Context, t *models.Ticket) error
	// DeleteTicket removes the ticket together with its child subtask
	// tickets, checklist entries and comments. History rows are kept.
	DeleteTicket(ctx context.Context, id string) error

	// === History ===

	AppendHistory(ctx context.Context, entries ...models.TicketHistory) error
	ListHistory(ctx context.Context, ticketID string) ([]models.TicketHistory, error)

	// === Checklist subtasks ===

	CreateSubtask(ctx context.Context, s *models.Subtask) error
	GetSubtask(ctx context.Context, id string) (*models.Subtask, error)
	ListSubtasks(ctx context.Context, ticketID string) ([]models.Subtask, error)
	NextSubtaskOrder(ctx context.Context, ticketID string) (int, error)
	UpdateSubtask(ctx context.Context, s *models.Subtask) error
	DeleteSubtask(ctx context.Context, id string) error

	// === Comments ===

	CreateComment(ctx context.Context, c *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	ListComments(ctx context.Context, ticketID string) ([]models.Comment, error)
	UpdateComment(ctx context.Context, c *models.Comment) error
	DeleteComment(ctx context.Context, id string) error

	// === Bill items ===

	CreateBillItem(ctx context.Context, b *models.BillItem) error
	GetBillItem(ctx context.Context, id string) (*models.BillItem, error)
	GetBillItemsByIDs(ctx context.Context, workspaceID string, ids []string) ([]models.BillItem, error)
	ListBillItems(ctx context.Context, filter BillItemFilter) ([]models.BillItem, error)
	UpdateBillItem(ctx context.Context, b *models.BillItem) error
	DeleteBillItem(ctx context.Context, id string) error
}
