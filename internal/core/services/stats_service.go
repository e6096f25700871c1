package services

import (
	"context"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/streaks"
)

// MaxStatsRangeDays caps the window of a weekly stats request.
const MaxStatsRangeDays = 366

type StatsService struct {
	habitRepo domain.HabitRepository
	entryRepo domain.HabitEntryRepository
	cache     domain.StreakCache
	clock     func() time.Time
}

// NewStatsService wires the read side of the streak engine. cache may be nil.
// clock decides what "today" is; its location is the user's calendar.
func NewStatsService(habitRepo domain.HabitRepository, entryRepo domain.HabitEntryRepository, cache domain.StreakCache, clock func() time.Time) *StatsService {
	if clock == nil {
		clock = time.Now
	}
	return &StatsService{
		habitRepo: habitRepo,
		entryRepo: entryRepo,
		cache:     cache,
		clock:     clock,
	}
}

func (s *StatsService) today() time.Time {
	return calendar.Normalize(s.clock())
}

func (s *StatsService) GetWeeklyStats(ctx context.Context, input domain.StatsInput) (*domain.WeeklyStats, error) {
	startDate := calendar.Normalize(input.StartDate)
	endDate := calendar.Normalize(input.EndDate)
	if endDate.Before(startDate) || calendar.DaysBetween(startDate, endDate) >= MaxStatsRangeDays {
		return nil, domain.ErrInvalidDateRange
	}

	habits, err := s.habitRepo.ListByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	// Streaks need history from the earliest habit start, not just the window.
	historyFrom := startDate
	for _, h := range habits {
		if hs := calendar.Normalize(h.StartDate); hs.Before(historyFrom) {
			historyFrom = hs
		}
	}

	entries, err := s.entryRepo.ListByUserIDAndDateRange(ctx, input.UserID, historyFrom, endDate)
	if err != nil {
		return nil, err
	}

	eventsByHabit := make(map[string][]domain.ProgressEvent)
	for _, e := range domain.Events(entries) {
		eventsByHabit[e.HabitID] = append(eventsByHabit[e.HabitID], e)
	}

	through := endDate
	if today := s.today(); today.Before(through) {
		through = today
	}

	stats := &domain.WeeklyStats{
		StartDate:   calendar.Key(startDate),
		EndDate:     calendar.Key(endDate),
		TotalHabits: len(habits),
		HabitStats:  make([]domain.HabitStat, 0, len(habits)),
	}

	totalScheduled := 0
	totalCompleted := 0

	for _, h := range habits {
		events := eventsByHabit[h.ID]
		days := streaks.DayStatistics(h, events, through)

		byDay := make(map[string]domain.DayStatistics, len(days))
		for _, d := range days {
			byDay[calendar.Key(d.Date)] = d
		}

		daily := make(map[string]float64)
		for _, e := range events {
			daily[calendar.Key(e.Date)] += e.Value
		}

		hStat := domain.HabitStat{
			HabitID:       h.ID,
			HabitTitle:    h.Title,
			Color:         h.Color,
			Icon:          h.Icon,
			GoalInterval:  string(h.GoalInterval),
			GoalTarget:    h.Goal(),
			Unit:          h.Unit,
			CurrentStreak: streaks.CurrentOf(days),
			BestStreak:    streaks.BestOf(days),
			DailyProgress: make([]float64, 0, calendar.DaysBetween(startDate, endDate)+1),
		}

		for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
			key := calendar.Key(d)
			val := daily[key]

			hStat.TotalValue += val
			hStat.DailyProgress = append(hStat.DailyProgress, val)

			if !streaks.IsScheduled(h, d) {
				continue
			}
			hStat.DaysScheduled++
			if day, ok := byDay[key]; ok && day.Streak != nil && day.Streak.IsGoalComplete {
				hStat.DaysCompleted++
			}
		}

		if hStat.DaysScheduled > 0 {
			hStat.CompletionRate = float64(hStat.DaysCompleted) / float64(hStat.DaysScheduled) * 100
		}
		totalScheduled += hStat.DaysScheduled
		totalCompleted += hStat.DaysCompleted

		stats.HabitStats = append(stats.HabitStats, hStat)
	}

	if totalScheduled > 0 {
		stats.OverallRate = float64(totalCompleted) / float64(totalScheduled) * 100
	}

	return stats, nil
}

// GetSummary returns the streak summary of a habit as of today, served from
// the cache when the habit and its history have not changed.
func (s *StatsService) GetSummary(ctx context.Context, habitID, userID string) (*domain.HabitSummary, error) {
	habit, events, err := s.load(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	fp := streaks.Fingerprint(habit, events)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, habitID, fp, today)
		if err != nil {
			log.Printf("[CACHE] summary read failed for %s: %v", habitID, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	summary := streaks.Summarize(habit, events, today)
	summary.ComputedAt = s.clock().UTC()

	if s.cache != nil {
		if err := s.cache.Set(ctx, habitID, fp, today, summary); err != nil {
			log.Printf("[CACHE] summary write failed for %s: %v", habitID, err)
		}
	}

	return summary, nil
}

// GetDayStatistics returns the timeline of a habit through the given day.
// Zero or future days are clamped to today.
func (s *StatsService) GetDayStatistics(ctx context.Context, habitID, userID string, through time.Time) ([]domain.DayStatistics, error) {
	habit, events, err := s.load(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	if through.IsZero() || calendar.Normalize(through).After(today) {
		through = today
	}

	return streaks.DayStatistics(habit, events, through), nil
}

// GetCalendar lays the habit's timeline over a 42-cell month grid.
func (s *StatsService) GetCalendar(ctx context.Context, habitID, userID string, year int, month time.Month) ([]domain.CalendarDay, error) {
	if month < time.January || month > time.December || year < 1 || year > 9999 {
		return nil, domain.ErrInvalidDateRange
	}

	habit, events, err := s.load(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	grid := calendar.Grid(year, month, streaks.WeekStartsOn)

	byDay := make(map[string]domain.DayStatistics)
	if !grid[0].Date.After(today) {
		for _, d := range streaks.DayStatistics(habit, events, today) {
			byDay[calendar.Key(d.Date)] = d
		}
	}

	daily := make(map[string]float64)
	for _, e := range events {
		daily[calendar.Key(e.Date)] += e.Value
	}

	cells := make([]domain.CalendarDay, 0, len(grid))
	for _, g := range grid {
		cell := domain.CalendarDay{
			Date:        g.Key,
			Day:         g.Day,
			InMonth:     g.InMonth,
			IsToday:     calendar.Same(g.Date, today),
			IsFuture:    g.Date.After(today),
			IsScheduled: streaks.IsScheduled(habit, g.Date),
			Progress:    daily[g.Key],
		}
		if day, ok := byDay[g.Key]; ok && day.Streak != nil {
			cell.GoalComplete = day.Streak.IsGoalComplete
			cell.Checkmark = streaks.Checkmark(day)
			cell.StreakLength = day.Streak.NewLength
		}
		cells = append(cells, cell)
	}

	return cells, nil
}

func (s *StatsService) load(ctx context.Context, habitID, userID string) (*domain.Habit, []domain.ProgressEvent, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, nil, err
	}
	if habit.UserID != userID {
		return nil, nil, domain.ErrHabitNotFound
	}

	entries, err := s.entryRepo.ListByHabitID(ctx, habitID)
	if err != nil {
		return nil, nil, err
	}

	return habit, domain.Events(entries), nil
}
