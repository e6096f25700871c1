package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

// StreakRefresher schedules a background recomputation of a habit summary.
type StreakRefresher interface {
	Enqueue(habitID string)
}

type HabitService struct {
	repo      domain.HabitRepository
	refresher StreakRefresher
}

func NewHabitService(repo domain.HabitRepository, refresher StreakRefresher) *HabitService {
	return &HabitService{
		repo:      repo,
		refresher: refresher,
	}
}

type CreateHabitInput struct {
	// ID is optional. Offline clients send the id they generated locally.
	ID                  string
	UserID              string
	Title               string
	Description         string
	Color               string
	Icon                string
	Unit                string
	ReminderTime        string
	IsGoodHabit         *bool
	RecordingType       string
	GoalInterval        string
	GoalTarget          *float64
	CustomIntervalDays  *int
	ScheduledDaysOfWeek []int
	StartDate           time.Time
	EndConditionType    string
	EndConditionValue   string
}

// UpdateHabitInput uses nil to mean "keep the stored value".
type UpdateHabitInput struct {
	ID                  string
	UserID              string
	Title               *string
	Description         *string
	Color               *string
	Icon                *string
	Unit                *string
	ReminderTime        *string
	IsGoodHabit         *bool
	RecordingType       *string
	GoalInterval        *string
	GoalTarget          *float64
	CustomIntervalDays  *int
	ScheduledDaysOfWeek []int
	StartDate           *time.Time
	EndConditionType    *string
	EndConditionValue   *string
	Version             int
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	if input.ID != "" {
		existing, err := s.repo.GetByID(ctx, input.ID)
		switch {
		case err == nil:
			if existing.UserID != input.UserID {
				return nil, domain.ErrHabitConflict
			}
			return existing, nil
		case !errors.Is(err, domain.ErrHabitNotFound):
			return nil, err
		}
	}

	good := true
	if input.IsGoodHabit != nil {
		good = *input.IsGoodHabit
	}

	habit, err := domain.NewHabit(input.UserID, domain.HabitSpec{
		Title:               input.Title,
		Description:         input.Description,
		Color:               input.Color,
		Icon:                input.Icon,
		Unit:                input.Unit,
		Reminder:            input.ReminderTime,
		IsGoodHabit:         good,
		RecordingType:       domain.RecordingType(input.RecordingType),
		GoalInterval:        domain.GoalInterval(input.GoalInterval),
		GoalTarget:          input.GoalTarget,
		CustomIntervalDays:  input.CustomIntervalDays,
		ScheduledDaysOfWeek: input.ScheduledDaysOfWeek,
		StartDate:           input.StartDate,
		EndConditionType:    domain.EndConditionType(input.EndConditionType),
		EndConditionValue:   input.EndConditionValue,
	})
	if err != nil {
		return nil, err
	}
	if input.ID != "" {
		habit.ID = input.ID
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	s.refresh(habit.ID)
	return habit, nil
}

func (s *HabitService) GetByID(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *HabitService) GetDelta(ctx context.Context, userID string, lastSync time.Time) ([]*domain.Habit, error) {
	return s.repo.GetChanges(ctx, userID, lastSync)
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, input.Version, habit.Version)
	}

	spec := habit.Spec()
	mergeString(&spec.Title, input.Title)
	mergeString(&spec.Description, input.Description)
	mergeString(&spec.Color, input.Color)
	mergeString(&spec.Icon, input.Icon)
	mergeString(&spec.Unit, input.Unit)
	mergeString(&spec.Reminder, input.ReminderTime)
	mergeString(&spec.EndConditionValue, input.EndConditionValue)

	if input.IsGoodHabit != nil {
		spec.IsGoodHabit = *input.IsGoodHabit
	}
	if input.RecordingType != nil {
		spec.RecordingType = domain.RecordingType(*input.RecordingType)
	}
	if input.GoalInterval != nil {
		spec.GoalInterval = domain.GoalInterval(*input.GoalInterval)
	}
	if input.GoalTarget != nil {
		spec.GoalTarget = input.GoalTarget
	}
	if input.CustomIntervalDays != nil {
		spec.CustomIntervalDays = input.CustomIntervalDays
	}
	if input.ScheduledDaysOfWeek != nil {
		spec.ScheduledDaysOfWeek = input.ScheduledDaysOfWeek
	}
	if input.StartDate != nil {
		spec.StartDate = *input.StartDate
	}
	if input.EndConditionType != nil {
		spec.EndConditionType = domain.EndConditionType(*input.EndConditionType)
	}

	if err := habit.Update(spec); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	s.refresh(habit.ID)
	return habit, nil
}

func (s *HabitService) Archive(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if habit.ArchivedAt != nil {
		return habit, nil
	}

	habit.Archive()
	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Restore(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if habit.ArchivedAt == nil {
		return habit, nil
	}

	habit.Restore()
	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	s.refresh(habit.ID)
	return habit, nil
}

func (s *HabitService) Delete(ctx context.Context, id string, userID string) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *HabitService) refresh(habitID string) {
	if s.refresher != nil {
		s.refresher.Enqueue(habitID)
	}
}

func mergeString(dst *string, val *string) {
	if val != nil {
		*dst = *val
	}
}
