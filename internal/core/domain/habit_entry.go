package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/calendar"
)

var (
	ErrInvalidEntry = errors.New("invalid habit entry data")
)

type HabitEntry struct {
	ID      string `json:"id" db:"id"`
	HabitID string `json:"habit_id" db:"habit_id"`
	UserID  string `json:"user_id" db:"user_id"`

	CompletionDate time.Time `json:"completion_date" db:"completion_date"`
	Value          float64   `json:"value" db:"value"`
	Notes          string    `json:"notes" db:"notes"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ProgressEvent is the engine's view of a logged value: which habit, which
// calendar day, how much.
type ProgressEvent struct {
	HabitID string    `json:"habit_id"`
	Date    time.Time `json:"date"`
	Value   float64   `json:"value"`
}

func NewHabitEntry(habitID, userID string, date time.Time, value float64) *HabitEntry {
	now := time.Now().UTC()

	return &HabitEntry{
		HabitID:        habitID,
		UserID:         userID,
		CompletionDate: calendar.Normalize(date),
		Value:          value,

		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (e *HabitEntry) Validate() error {
	if strings.TrimSpace(e.HabitID) == "" {
		return fmt.Errorf("%w: habit_id is required", ErrInvalidEntry)
	}
	if strings.TrimSpace(e.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidEntry)
	}
	if e.Value < 0 {
		return fmt.Errorf("%w: value cannot be negative", ErrInvalidEntry)
	}
	if e.CompletionDate.IsZero() {
		return fmt.Errorf("%w: completion_date is required", ErrInvalidEntry)
	}
	return nil
}

func (e *HabitEntry) Event() ProgressEvent {
	return ProgressEvent{
		HabitID: e.HabitID,
		Date:    calendar.Normalize(e.CompletionDate),
		Value:   e.Value,
	}
}

// Events projects live entries to progress events, skipping soft-deleted rows.
func Events(entries []*HabitEntry) []ProgressEvent {
	events := make([]ProgressEvent, 0, len(entries))
	for _, e := range entries {
		if e == nil || e.DeletedAt != nil {
			continue
		}
		events = append(events, e.Event())
	}
	return events
}
