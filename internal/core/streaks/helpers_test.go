package streaks_test

import (
	"time"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

const habitID = "h1"

func day(s string) time.Time {
	t, err := calendar.Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// newHabit returns a good daily YES_NO habit starting on Monday 2024-01-01.
func newHabit(opts ...func(h *domain.Habit)) *domain.Habit {
	h := &domain.Habit{
		ID:            habitID,
		IsGoodHabit:   true,
		RecordingType: domain.RecordingYesNo,
		GoalInterval:  domain.IntervalDaily,
		StartDate:     day("2024-01-01"),
		Version:       1,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func weekly(goal float64) func(h *domain.Habit) {
	return func(h *domain.Habit) {
		h.GoalInterval = domain.IntervalWeekly
		h.GoalTarget = &goal
	}
}

func monthly(goal float64) func(h *domain.Habit) {
	return func(h *domain.Habit) {
		h.GoalInterval = domain.IntervalMonthly
		h.GoalTarget = &goal
	}
}

func goal(v float64) func(h *domain.Habit) {
	return func(h *domain.Habit) { h.GoalTarget = &v }
}

func recording(r domain.RecordingType) func(h *domain.Habit) {
	return func(h *domain.Habit) { h.RecordingType = r }
}

func limit(v float64) func(h *domain.Habit) {
	return func(h *domain.Habit) {
		h.IsGoodHabit = false
		h.RecordingType = domain.RecordingCount
		h.GoalTarget = &v
	}
}

func weekdays(days ...int) func(h *domain.Habit) {
	return func(h *domain.Habit) { h.ScheduledDaysOfWeek = days }
}

func everyNDays(n int) func(h *domain.Habit) {
	return func(h *domain.Habit) {
		h.GoalInterval = domain.IntervalCustom
		h.CustomIntervalDays = &n
	}
}

func startingOn(s string) func(h *domain.Habit) {
	return func(h *domain.Habit) { h.StartDate = day(s) }
}

func endingOn(s string) func(h *domain.Habit) {
	return func(h *domain.Habit) {
		h.EndConditionType = domain.EndDate
		h.EndConditionValue = s
	}
}

func ev(date string, value float64) domain.ProgressEvent {
	return domain.ProgressEvent{HabitID: habitID, Date: day(date), Value: value}
}

// logged returns a value-1 event for each date.
func logged(dates ...string) []domain.ProgressEvent {
	events := make([]domain.ProgressEvent, 0, len(dates))
	for _, d := range dates {
		events = append(events, ev(d, 1))
	}
	return events
}

func lengths(stats []domain.DayStatistics) []int {
	out := make([]int, len(stats))
	for i, s := range stats {
		if s.Streak == nil {
			out[i] = -1
			continue
		}
		out[i] = s.Streak.NewLength
	}
	return out
}
