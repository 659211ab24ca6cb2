// Package lifecycle enforces the structural rules of tickets and derives the
// side effects of every state-changing write: completion timestamps, payment
// status defaults and history records.
package lifecycle

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/models"
)

// Update is a partial change to a ticket. Nil fields are left untouched.
type Update struct {
	Title         *string
	Description   *string
	GoLiveDate    *time.Time
	ClearGoLive   bool
	AssigneeID    *string
	Status        *models.TicketStatus
	HoursWorked   *float64
	PaymentStatus *models.PaymentStatus
}

// Empty reports whether the update changes nothing
func (u Update) Empty() bool {
	return u.Title == nil && u.Description == nil && u.GoLiveDate == nil && !u.ClearGoLive &&
		u.AssigneeID == nil && u.Status == nil && u.HoursWorked == nil && u.PaymentStatus == nil
}

// PrepareNew fills defaults on a ticket about to be created and validates it
func PrepareNew(t *models.Ticket, now time.Time) error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return apperr.Validation("title is required")
	}
	if t.Type == "" {
		t.Type = models.TicketStory
	}
	if !t.Type.Valid() {
		return apperr.Validation("invalid ticket type %q", t.Type)
	}
	if err := checkParent(t); err != nil {
		return err
	}
	if t.Status == "" {
		t.Status = models.StatusTodo
	}
	if !t.Status.Valid() {
		return apperr.Validation("invalid status %q", t.Status)
	}
	if t.PaymentStatus == "" {
		t.PaymentStatus = models.PaymentNotApplicable
	}
	if !t.PaymentStatus.Valid() {
		return apperr.Validation("invalid payment status %q", t.PaymentStatus)
	}
	if t.HoursWorked < 0 {
		return apperr.Validation("hours worked cannot be negative")
	}
	t.CompletedAt = nil
	if t.Status == models.StatusCompleted {
		if t.HoursWorked <= 0 {
			return apperr.Validation("hours worked must be set before a ticket can be completed")
		}
		complete(t, now)
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

func checkParent(t *models.Ticket) error {
	hasParent := t.ParentTicketID != nil && *t.ParentTicketID != ""
	switch t.Type {
	case models.TicketSubtask:
		if !hasParent {
			return apperr.Validation("a subtask requires a parent ticket")
		}
	case models.TicketStory:
		if hasParent {
			return apperr.Validation("a story cannot have a parent ticket")
		}
		t.ParentTicketID = nil
	}
	return nil
}

// complete applies the side effects of entering the completed state.
// completed_at is only stamped once and never cleared.
func complete(t *models.Ticket, now time.Time) (paymentChanged bool) {
	if t.CompletedAt == nil {
		stamp := now
		t.CompletedAt = &stamp
	}
	if t.Type == models.TicketStory && t.HoursWorked > 0 && t.PaymentStatus == models.PaymentNotApplicable {
		t.PaymentStatus = models.PaymentPending
		return true
	}
	return false
}

// Apply validates u against t, mutates t and returns the history entries the
// change produced. Nothing is mutated when an error is returned.
func Apply(t *models.Ticket, u Update, actorID string, now time.Time) ([]models.TicketHistory, error) {
	if err := validate(t, u); err != nil {
		return nil, err
	}

	var entries []models.TicketHistory
	record := func(action models.HistoryAction, oldValue, newValue, description string) {
		entries = append(entries, newEntry(t.ID, actorID, action, &oldValue, &newValue, description, now))
	}

	if u.Title != nil {
		t.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.ClearGoLive {
		t.GoLiveDate = nil
	} else if u.GoLiveDate != nil {
		d := *u.GoLiveDate
		t.GoLiveDate = &d
	}

	if u.HoursWorked != nil && *u.HoursWorked != t.HoursWorked {
		old := t.HoursWorked
		t.HoursWorked = *u.HoursWorked
		record(models.ActionHoursUpdated, formatHours(old), formatHours(t.HoursWorked),
			fmt.Sprintf("Hours worked updated from %s to %s", formatHours(old), formatHours(t.HoursWorked)))
	}

	if u.AssigneeID != nil && *u.AssigneeID != deref(t.AssigneeID) {
		old := deref(t.AssigneeID)
		next := *u.AssigneeID
		if next == "" {
			t.AssigneeID = nil
			record(models.ActionAssigned, old, "", "Ticket unassigned")
		} else {
			t.AssigneeID = &next
			record(models.ActionAssigned, old, next, "Ticket assigned to "+next)
		}
	}

	if u.PaymentStatus != nil && *u.PaymentStatus != t.PaymentStatus {
		old := t.PaymentStatus
		t.PaymentStatus = *u.PaymentStatus
		record(models.ActionPaymentStatusChanged, string(old), string(t.PaymentStatus),
			fmt.Sprintf("Payment status changed from %s to %s", old, t.PaymentStatus))
	}

	if u.Status != nil && *u.Status != t.Status {
		old := t.Status
		t.Status = *u.Status
		record(models.ActionStatusChanged, string(old), string(t.Status),
			fmt.Sprintf("Status changed from %s to %s", old, t.Status))
		if t.Status == models.StatusCompleted {
			oldPayment := t.PaymentStatus
			if complete(t, now) {
				record(models.ActionPaymentStatusChanged, string(oldPayment), string(t.PaymentStatus),
					fmt.Sprintf("Payment status changed from %s to %s on completion", oldPayment, t.PaymentStatus))
			}
		}
	}

	if !u.Empty() {
		t.UpdatedAt = now
	}
	return entries, nil
}

func validate(t *models.Ticket, u Update) error {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return apperr.Validation("title cannot be empty")
	}
	if u.Status != nil && !u.Status.Valid() {
		return apperr.Validation("invalid status %q", *u.Status)
	}
	if u.PaymentStatus != nil && !u.PaymentStatus.Valid() {
		return apperr.Validation("invalid payment status %q", *u.PaymentStatus)
	}
	if u.HoursWorked != nil && *u.HoursWorked < 0 {
		return apperr.Validation("hours worked cannot be negative")
	}
	if u.Status != nil && *u.Status == models.StatusCompleted && t.Status != models.StatusCompleted {
		hours := t.HoursWorked
		if u.HoursWorked != nil {
			hours = *u.HoursWorked
		}
		if hours <= 0 {
			return apperr.Validation("hours worked must be set before a ticket can be completed")
		}
	}
	return nil
}

// CreatedEntry is the history record written when a ticket is created
func CreatedEntry(t *models.Ticket, actorID string, now time.Time) models.TicketHistory {
	newValue := string(t.Status)
	return newEntry(t.ID, actorID, models.ActionCreated, nil, &newValue,
		fmt.Sprintf("Created %s %q", t.Type, t.Title), now)
}

// CommentedEntry is the history record written when a comment is added
func CommentedEntry(ticketID, actorID, commentID string, now time.Time) models.TicketHistory {
	return newEntry(ticketID, actorID, models.ActionCommented, nil, &commentID, "Comment added", now)
}

func newEntry(ticketID, actorID string, action models.HistoryAction, oldValue, newValue *string, description string, now time.Time) models.TicketHistory {
	return models.TicketHistory{
		ID:          uuid.NewString(),
		TicketID:    ticketID,
		ActorID:     actorID,
		Action:      action,
		OldValue:    oldValue,
		NewValue:    newValue,
		Description: description,
		CreatedAt:   now,
	}
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
