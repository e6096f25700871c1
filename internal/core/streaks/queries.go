package streaks

import (
	"math"
	"time"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

// CurrentStreak is the streak length as of today. An unfinished today does
// not count against it.
func CurrentStreak(h *domain.Habit, events []domain.ProgressEvent, today time.Time) int {
	return CurrentOf(DayStatistics(h, events, today))
}

func BestStreak(h *domain.Habit, events []domain.ProgressEvent, today time.Time) int {
	return BestOf(DayStatistics(h, events, today))
}

// IsStreakSecure reports whether the running streak survives today without
// further logging, or can still be saved within the current interval.
func IsStreakSecure(h *domain.Habit, events []domain.ProgressEvent, today time.Time) bool {
	return secureFrom(h, DayStatistics(h, events, today), today)
}

// ShouldShowCheckmark reports whether date had no progress but was still
// counted into the streak because the rest of its interval can cover it.
func ShouldShowCheckmark(h *domain.Habit, events []domain.ProgressEvent, date, today time.Time) bool {
	stats := DayStatistics(h, events, today)
	for _, s := range stats {
		if calendar.Same(s.Date, date) {
			return Checkmark(s)
		}
	}
	return false
}

// TotalCompletedDays counts the distinct days with positive progress.
func TotalCompletedDays(h *domain.Habit, events []domain.ProgressEvent) int {
	days := 0
	for _, v := range collect(h, events) {
		if v > 0 {
			days++
		}
	}
	return days
}

func TotalValue(h *domain.Habit, events []domain.ProgressEvent) float64 {
	total := 0.0
	for _, v := range collect(h, events) {
		total += v
	}
	return total
}

// IsEnded evaluates the habit's end condition as of today.
func IsEnded(h *domain.Habit, events []domain.ProgressEvent, today time.Time) bool {
	switch h.EndConditionType {
	case domain.EndDate:
		end, ok := h.EndDate()
		return ok && calendar.Normalize(today).After(end)
	case domain.EndTotalValue:
		limit, ok := h.EndThreshold()
		return ok && TotalValue(h, events) >= limit
	case domain.EndCompletedDays:
		limit, ok := h.EndThreshold()
		return ok && float64(TotalCompletedDays(h, events)) >= limit
	}
	return false
}

// Summarize answers every derived query from a single scan.
func Summarize(h *domain.Habit, events []domain.ProgressEvent, today time.Time) *domain.HabitSummary {
	stats := DayStatistics(h, events, today)

	summary := &domain.HabitSummary{
		HabitID:            h.ID,
		Date:               calendar.Key(today),
		CurrentStreak:      CurrentOf(stats),
		BestStreak:         BestOf(stats),
		IsStreakSecure:     secureFrom(h, stats, today),
		IsScheduledToday:   IsScheduled(h, today),
		GoalProgress:       ProRatedGoal(h, today),
		TotalCompletedDays: TotalCompletedDays(h, events),
		TotalValue:         TotalValue(h, events),
		IsEnded:            IsEnded(h, events, today),
	}

	if len(stats) > 0 {
		last := stats[len(stats)-1]
		summary.TodayProgress = last.DayProgress
	}
	start, _ := IntervalBounds(h, today)
	summary.IntervalProgress = collect(h, events).sum(start, calendar.Normalize(today))

	return summary
}

// CurrentOf reads the current streak off a scan whose last day is today.
func CurrentOf(stats []domain.DayStatistics) int {
	if len(stats) == 0 {
		return 0
	}
	last := stats[len(stats)-1]
	if last.Streak == nil {
		return 0
	}
	if last.DayProgress > 0 {
		return last.Streak.NewLength
	}
	return last.Streak.PreviousLength
}

// BestOf returns the longest length reached anywhere in the scan.
func BestOf(stats []domain.DayStatistics) int {
	best := 0
	for _, s := range stats {
		if s.Streak != nil && s.Streak.NewLength > best {
			best = s.Streak.NewLength
		}
	}
	return best
}

func secureFrom(h *domain.Habit, stats []domain.DayStatistics, today time.Time) bool {
	if CurrentOf(stats) == 0 {
		return false
	}
	if !IsScheduled(h, today) {
		return true
	}

	last := stats[len(stats)-1]
	if last.Streak.IsGoalComplete {
		return true
	}

	_, end := IntervalBounds(h, today)
	remaining := math.Max(0, last.Streak.GoalProgress-last.Streak.TotalIntervalProgress)
	return salvageable(h, last.DayProgress, remaining, scheduledDaysAfter(h, today, end))
}

// Checkmark reports whether a zero-progress day was still counted into the
// running streak.
func Checkmark(s domain.DayStatistics) bool {
	return s.DayProgress == 0 && s.Streak != nil && s.Streak.NewLength == s.Streak.PreviousLength+1
}
