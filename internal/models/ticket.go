package models

import "time"

// TicketType distinguishes top level stories from their subtask tickets
type TicketType string

const (
	TicketStory   TicketType = "story"
	TicketSubtask TicketType = "subtask"
)

func (t TicketType) Valid() bool {
	return t == TicketStory || t == TicketSubtask
}

// TicketStatus is the workflow state of a ticket
type TicketStatus string

const (
	StatusTodo       TicketStatus = "todo"
	StatusInProgress TicketStatus = "in-progress"
	StatusCompleted  TicketStatus = "completed"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// PaymentStatus tracks whether the hours of a ticket have been invoiced
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending-pay"
	PaymentBilled        PaymentStatus = "billed"
	PaymentNotApplicable PaymentStatus = "not-applicable"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentBilled, PaymentNotApplicable:
		return true
	}
	return false
}

// Ticket is a unit of work inside a workspace
type Ticket struct {
	ID             string        `json:"id" db:"id"`
	Title          string        `json:"title" db:"title"`
	Description    string        `json:"description" db:"description"`
	GoLiveDate     *time.Time    `json:"go_live_date,omitempty" db:"go_live_date"`
	AssigneeID     *string       `json:"assignee_id,omitempty" db:"assignee_id"`
	WorkspaceID    string        `json:"workspace_id" db:"workspace_id"`
	Type           TicketType    `json:"type" db:"type"`
	ParentTicketID *string       `json:"parent_ticket_id,omitempty" db:"parent_ticket_id"`
	Status         TicketStatus  `json:"status" db:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status" db:"payment_status"`
	HoursWorked    float64       `json:"hours_worked" db:"hours_worked"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
	CreatedBy      string        `json:"created_by" db:"created_by"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// InBacklog reports whether the ticket has no go-live date yet
func (t *Ticket) InBacklog() bool {
	return t.GoLiveDate == nil
}

// Subtask is a checklist entry attached to a ticket. It carries no status,
// hours or history; those live on tickets of type subtask.
type Subtask struct {
	ID          string     `json:"id" db:"id"`
	TicketID    string     `json:"ticket_id" db:"ticket_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Completed   bool       `json:"completed" db:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Order       int        `json:"order" db:"sort_order"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Comment is a note left on a ticket
type Comment struct {
	ID        string    `json:"id" db:"id"`
	TicketID  string    `json:"ticket_id" db:"ticket_id"`
	AuthorID  string    `json:"author_id" db:"author_id"`
	Body      string    `json:"body" db:"body"`
	BodyHTML  string    `json:"body_html" db:"body_html"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HistoryAction names the kind of change a history entry records
type HistoryAction string

const (
	ActionCreated              HistoryAction = "created"
	ActionStatusChanged        HistoryAction = "status_changed"
	ActionAssigned             HistoryAction = "assigned"
	ActionHoursUpdated         HistoryAction = "hours_updated"
	ActionPaymentStatusChanged HistoryAction = "payment_status_changed"
	ActionCommented            HistoryAction = "commented"
)

// TicketHistory is an append-only audit record of a ticket change
type TicketHistory struct {
	ID          string        `json:"id" db:"id"`
	TicketID    string        `json:"ticket_id" db:"ticket_id"`
	ActorID     string        `json:"actor_id" db:"actor_id"`
	Action      HistoryAction `json:"action" db:"action"`
	OldValue    *string       `json:"old_value,omitempty" db:"old_value"`
	NewValue    *string       `json:"new_value,omitempty" db:"new_value"`
	Description string        `json:"description" db:"description"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}
