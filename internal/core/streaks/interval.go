package streaks

import (
	"math"
	"time"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

// WeekStartsOn is the first day of a WEEKLY interval.
const WeekStartsOn = time.Monday

// IntervalBounds returns the first and last day of the goal interval that
// contains date. CUSTOM habits aggregate per day like DAILY ones; their
// cadence only affects scheduling.
func IntervalBounds(h *domain.Habit, date time.Time) (time.Time, time.Time) {
	switch h.GoalInterval {
	case domain.IntervalWeekly:
		return calendar.WeekStart(date, WeekStartsOn), calendar.WeekEnd(date, WeekStartsOn)
	case domain.IntervalMonthly:
		return calendar.MonthStart(date), calendar.MonthEnd(date)
	default:
		day := calendar.Normalize(date)
		return day, day
	}
}

// IntervalProgress sums the habit's progress over the whole interval that
// contains date.
func IntervalProgress(h *domain.Habit, events []domain.ProgressEvent, date time.Time) float64 {
	start, end := IntervalBounds(h, date)
	return collect(h, events).sum(start, end)
}

// ProRatedGoal returns the target for the interval containing date. The
// interval that contains the start date only asks for the share of the goal
// matching the days left in it, rounded up.
func ProRatedGoal(h *domain.Habit, date time.Time) float64 {
	goal := h.Goal()
	if h.GoalInterval != domain.IntervalWeekly && h.GoalInterval != domain.IntervalMonthly {
		return goal
	}

	start, end := IntervalBounds(h, date)
	habitStart := calendar.Normalize(h.StartDate)
	if habitStart.Before(start) || habitStart.After(end) {
		return goal
	}

	available := calendar.DaysBetween(habitStart, end) + 1
	full := calendar.DaysBetween(start, end) + 1

	scaled := math.Ceil(goal * float64(available) / float64(full))
	if goal > 0 && scaled < 1 {
		scaled = 1
	}
	return scaled
}

// dayTotals maps a YYYY-MM-DD key to the summed progress of that day.
type dayTotals map[string]float64

// collect keeps the habit's events and sums duplicates per day.
func collect(h *domain.Habit, events []domain.ProgressEvent) dayTotals {
	totals := make(dayTotals, len(events))
	for _, e := range events {
		if e.HabitID != h.ID {
			continue
		}
		totals[calendar.Key(e.Date)] += e.Value
	}
	return totals
}

func (t dayTotals) on(day time.Time) float64 {
	return t[calendar.Key(day)]
}

// sum adds every day in [from, to].
func (t dayTotals) sum(from, to time.Time) float64 {
	total := 0.0
	for d := calendar.Normalize(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		total += t[d.Format(calendar.Layout)]
	}
	return total
}
