// Package streaks reconstructs a habit's day-by-day timeline from its
// definition and logged progress, and answers streak questions on top of it.
//
// Every function here is pure: the caller supplies the habit, its events and
// the current day. Nothing reads the wall clock.
package streaks

import (
	"time"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

// IsScheduled reports whether date is a day the habit is expected to be done.
func IsScheduled(h *domain.Habit, date time.Time) bool {
	day := calendar.Normalize(date)
	start := calendar.Normalize(h.StartDate)

	if day.Before(start) {
		return false
	}

	if end, ok := h.EndDate(); ok && day.After(end) {
		return false
	}

	if len(h.ScheduledDaysOfWeek) > 0 && !h.HasWeekday(day.Weekday()) {
		return false
	}

	if every := h.CustomEvery(); every > 0 {
		n := calendar.DaysBetween(start, day)
		return n >= 0 && n%every == 0
	}

	return true
}

// scheduledDaysAfter counts scheduled days in (day, end].
func scheduledDaysAfter(h *domain.Habit, day, end time.Time) int {
	count := 0
	for d := calendar.AddDays(day, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsScheduled(h, d) {
			count++
		}
	}
	return count
}
