package domain

import "time"

// Streak is the state carried from one day of the scan to the next.
type Streak struct {
	GoalProgress          float64 `json:"goal_progress"`
	TotalIntervalProgress float64 `json:"total_interval_progress"`
	TotalProgress         float64 `json:"total_progress"`
	IsGoalComplete        bool    `json:"is_goal_complete"`
	PreviousLength        int     `json:"previous_length"`
	NewLength             int     `json:"new_length"`
}

// DayStatistics is one day of a habit's reconstructed timeline. Streak is nil
// while no streak is running.
type DayStatistics struct {
	Date        time.Time `json:"date"`
	DayProgress float64   `json:"day_progress"`
	Streak      *Streak   `json:"streak"`
}

type HabitSummary struct {
	HabitID            string    `json:"habit_id"`
	Date               string    `json:"date"`
	CurrentStreak      int       `json:"current_streak"`
	BestStreak         int       `json:"best_streak"`
	IsStreakSecure     bool      `json:"is_streak_secure"`
	IsScheduledToday   bool      `json:"is_scheduled_today"`
	TodayProgress      float64   `json:"today_progress"`
	IntervalProgress   float64   `json:"interval_progress"`
	GoalProgress       float64   `json:"goal_progress"`
	TotalCompletedDays int       `json:"total_completed_days"`
	TotalValue         float64   `json:"total_value"`
	IsEnded            bool      `json:"is_ended"`
	ComputedAt         time.Time `json:"computed_at"`
}

// CalendarDay is one cell of a habit's month view.
type CalendarDay struct {
	Date         string  `json:"date"`
	Day          int     `json:"day"`
	InMonth      bool    `json:"in_month"`
	IsToday      bool    `json:"is_today"`
	IsFuture     bool    `json:"is_future"`
	IsScheduled  bool    `json:"is_scheduled"`
	Progress     float64 `json:"progress"`
	GoalComplete bool    `json:"goal_complete"`
	Checkmark    bool    `json:"checkmark"`
	StreakLength int     `json:"streak_length"`
}
