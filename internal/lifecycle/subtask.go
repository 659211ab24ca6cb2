package lifecycle

import (
	"strings"
	"time"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/models"
)

// SubtaskUpdate is a partial change to a checklist subtask
type SubtaskUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
	Order       *int
}

// PrepareSubtask validates a new checklist entry
func PrepareSubtask(s *models.Subtask, now time.Time) error {
	s.Title = strings.TrimSpace(s.Title)
	if s.Title == "" {
		return apperr.Validation("title is required")
	}
	SetSubtaskCompleted(s, s.Completed, now)
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

// SetSubtaskCompleted keeps the completed flag and its timestamp in lockstep
func SetSubtaskCompleted(s *models.Subtask, completed bool, now time.Time) {
	s.Completed = completed
	if !completed {
		s.CompletedAt = nil
		return
	}
	if s.CompletedAt == nil {
		stamp := now
		s.CompletedAt = &stamp
	}
}

// ApplySubtask applies u to s
func ApplySubtask(s *models.Subtask, u SubtaskUpdate, now time.Time) error {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return apperr.Validation("title cannot be empty")
	}
	if u.Order != nil && *u.Order < 0 {
		return apperr.Validation("order cannot be negative")
	}
	if u.Title != nil {
		s.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		s.Description = *u.Description
	}
	if u.Completed != nil {
		SetSubtaskCompleted(s, *u.Completed, now)
	}
	if u.Order != nil {
		s.Order = *u.Order
	}
	s.UpdatedAt = now
	return nil
}
