package domain

import "time"

type WeeklyStats struct {
	StartDate   string      `json:"start_date"`
	EndDate     string      `json:"end_date"`
	TotalHabits int         `json:"total_habits"`
	OverallRate float64     `json:"overall_completion_rate"`
	HabitStats  []HabitStat `json:"habits"`
}

type HabitStat struct {
	HabitID        string    `json:"habit_id"`
	HabitTitle     string    `json:"habit_title"`
	Color          string    `json:"color"`
	Icon           string    `json:"icon"`
	GoalInterval   string    `json:"goal_interval"`
	GoalTarget     float64   `json:"goal_target"`
	Unit           string    `json:"unit"`
	TotalValue     float64   `json:"total_value"`
	CompletionRate float64   `json:"completion_rate"`
	DaysScheduled  int       `json:"days_scheduled"`
	DaysCompleted  int       `json:"days_completed"`
	CurrentStreak  int       `json:"current_streak"`
	BestStreak     int       `json:"best_streak"`
	DailyProgress  []float64 `json:"daily_progress"`
}

type StatsInput struct {
	UserID    string
	StartDate time.Time
	EndDate   time.Time
}
