package streaks

import (
	"math"
	"time"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

// MaxScanDays bounds a single evaluation. Older history is skipped and the
// scan starts MaxScanDays-1 days before the evaluation date.
const MaxScanDays = 5000

type outcome int

const (
	breaks outcome = iota
	holds
	grows
)

// DayStatistics replays the habit from its start date through the given day
// and returns one entry per calendar day. The last day is treated as "today":
// missing progress on it never breaks the streak.
func DayStatistics(h *domain.Habit, events []domain.ProgressEvent, through time.Time) []domain.DayStatistics {
	start := calendar.Normalize(h.StartDate)
	end := calendar.Normalize(through)
	if end.Before(start) {
		return []domain.DayStatistics{}
	}
	if calendar.DaysBetween(start, end) >= MaxScanDays {
		start = calendar.AddDays(end, -(MaxScanDays - 1))
	}

	totals := collect(h, events)
	stats := make([]domain.DayStatistics, 0, calendar.DaysBetween(start, end)+1)

	var prev *domain.Streak
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		progress := totals.on(d)

		var streak *domain.Streak
		if progress != 0 || prev != nil {
			streak = advance(h, totals, d, progress, prev, d.Equal(end))
		}

		stats = append(stats, domain.DayStatistics{
			Date:        d,
			DayProgress: progress,
			Streak:      streak,
		})
		prev = streak
	}

	return stats
}

func advance(h *domain.Habit, totals dayTotals, day time.Time, progress float64, prev *domain.Streak, isToday bool) *domain.Streak {
	intervalStart, intervalEnd := IntervalBounds(h, day)
	goal := ProRatedGoal(h, day)

	intervalTotal := progress
	if h.GoalInterval == domain.IntervalWeekly || h.GoalInterval == domain.IntervalMonthly {
		// Re-derived from the raw map so late or edited entries are always reflected.
		intervalTotal = totals.sum(intervalStart, day)
	}

	complete := meetsGoal(h, intervalTotal, goal)
	if !h.IsGoodHabit && intervalTotal > goal {
		return nil
	}

	length, streakTotal := 0, 0.0
	if prev != nil {
		length = prev.NewLength
		streakTotal = prev.TotalProgress
	}

	next := &domain.Streak{
		GoalProgress:          goal,
		TotalIntervalProgress: intervalTotal,
		TotalProgress:         streakTotal + progress,
		IsGoalComplete:        complete,
		PreviousLength:        length,
		NewLength:             length,
	}

	if !IsScheduled(h, day) {
		if prev == nil {
			return nil
		}
		return next
	}

	remaining := math.Max(0, goal-intervalTotal)
	switch judge(h, progress, complete, remaining, scheduledDaysAfter(h, day, intervalEnd)) {
	case grows:
		next.NewLength++
	case breaks:
		if !isToday {
			return nil
		}
	}

	return next
}

// judge decides what a scheduled day does to the streak.
func judge(h *domain.Habit, progress float64, complete bool, remaining float64, daysLeft int) outcome {
	if complete {
		if progress > 0 || !h.IsGoodHabit {
			return grows
		}
		return holds
	}

	if !salvageable(h, progress, remaining, daysLeft) {
		return breaks
	}

	if progress > 0 || h.RecordingType == domain.RecordingYesNo {
		return grows
	}
	return holds
}

// salvageable reports whether the interval goal can still be reached with
// daysLeft scheduled days after today. COUNT and VALUE habits only need one
// day left, whatever the size of the gap.
func salvageable(h *domain.Habit, progress, remaining float64, daysLeft int) bool {
	if h.RecordingType == domain.RecordingYesNo {
		return float64(daysLeft) >= remaining
	}
	if progress > 0 {
		return daysLeft >= 1 || remaining == 0
	}
	return daysLeft >= 1 && remaining > 0
}

func meetsGoal(h *domain.Habit, total, goal float64) bool {
	if h.IsGoodHabit {
		return total >= goal
	}
	return total <= goal
}
