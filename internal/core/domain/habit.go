package domain

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/calendar"
)

var (
	ErrHabitTitleEmpty      = errors.New("habit title cannot be empty")
	ErrHabitTitleTooLong    = errors.New("habit title is too long (max 100 chars)")
	ErrHabitDescTooLong     = errors.New("habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID   = errors.New("invalid user id")
	ErrInvalidColor         = errors.New("invalid color format (must be #RRGGBB)")
	ErrInvalidWeekdays      = errors.New("invalid weekdays (must be 0-6)")
	ErrInvalidTarget        = errors.New("goal target cannot be negative")
	ErrInvalidInterval      = errors.New("custom interval days must be positive")
	ErrHabitArchived        = errors.New("cannot update an archived habit")
	ErrInvalidRecordingType = errors.New("invalid recording type (must be yes_no, count, or value)")
	ErrInvalidGoalInterval  = errors.New("invalid goal interval (must be daily, weekly, monthly, or custom)")
	ErrInvalidEndCondition  = errors.New("invalid end condition")
	ErrInvalidReminder      = errors.New("invalid reminder format (must be HH:MM 24h)")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)
var reminderRegex = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)

type RecordingType string

const (
	RecordingYesNo RecordingType = "yes_no"
	RecordingCount RecordingType = "count"
	RecordingValue RecordingType = "value"
)

type GoalInterval string

const (
	IntervalDaily   GoalInterval = "daily"
	IntervalWeekly  GoalInterval = "weekly"
	IntervalMonthly GoalInterval = "monthly"
	IntervalCustom  GoalInterval = "custom"
)

type EndConditionType string

const (
	EndNone          EndConditionType = ""
	EndDate          EndConditionType = "date"
	EndTotalValue    EndConditionType = "total_value"
	EndCompletedDays EndConditionType = "completed_days"
)

const (
	DefaultIcon       = "default_icon"
	DefaultGoalTarget = 1.0
	MaxTitleLen       = 100
	MaxDescLen        = 500
)

type Habit struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	Color        string  `json:"color"`
	Icon         string  `json:"icon"`
	SortOrder    int     `json:"sort_order"`
	Unit         string  `json:"unit"`
	ReminderTime *string `json:"reminder_time,omitempty"`

	IsGoodHabit         bool             `json:"is_good_habit"`
	RecordingType       RecordingType    `json:"recording_type"`
	GoalInterval        GoalInterval     `json:"goal_interval"`
	GoalTarget          *float64         `json:"goal_target,omitempty"`
	CustomIntervalDays  *int             `json:"custom_interval_days,omitempty"`
	ScheduledDaysOfWeek []int            `json:"scheduled_days_of_week,omitempty"`
	StartDate           time.Time        `json:"start_date"`
	EndConditionType    EndConditionType `json:"end_condition_type,omitempty"`
	EndConditionValue   string           `json:"end_condition_value,omitempty"`

	Version    int        `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// Goal returns the raw per-interval target, defaulting to 1 when unset.
func (h *Habit) Goal() float64 {
	if h.GoalTarget == nil {
		return DefaultGoalTarget
	}
	return *h.GoalTarget
}

// CustomEvery returns the CUSTOM cadence in days, or 0 when it does not apply.
func (h *Habit) CustomEvery() int {
	if h.GoalInterval != IntervalCustom || h.CustomIntervalDays == nil || *h.CustomIntervalDays <= 0 {
		return 0
	}
	return *h.CustomIntervalDays
}

func (h *Habit) HasWeekday(wd time.Weekday) bool {
	for _, d := range h.ScheduledDaysOfWeek {
		if d == int(wd) {
			return true
		}
	}
	return false
}

// EndDate returns the last schedulable day when the habit ends on a date.
func (h *Habit) EndDate() (time.Time, bool) {
	if h.EndConditionType != EndDate {
		return time.Time{}, false
	}
	t, err := calendar.Parse(h.EndConditionValue)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// EndThreshold returns the numeric value of a value-based end condition.
func (h *Habit) EndThreshold() (float64, bool) {
	if h.EndConditionType != EndTotalValue && h.EndConditionType != EndCompletedDays {
		return 0, false
	}
	v, err := strconv.ParseFloat(h.EndConditionValue, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// HabitSpec carries the user-editable definition of a habit.
type HabitSpec struct {
	Title               string
	Description         string
	Color               string
	Icon                string
	Unit                string
	Reminder            string
	IsGoodHabit         bool
	RecordingType       RecordingType
	GoalInterval        GoalInterval
	GoalTarget          *float64
	CustomIntervalDays  *int
	ScheduledDaysOfWeek []int
	StartDate           time.Time
	EndConditionType    EndConditionType
	EndConditionValue   string
}

func normalizeWeekdays(days []int) []int {
	if len(days) == 0 {
		return nil
	}

	uniqueMap := make(map[int]bool)
	var uniqueDays []int
	for _, d := range days {
		if !uniqueMap[d] {
			uniqueMap[d] = true
			uniqueDays = append(uniqueDays, d)
		}
	}

	sort.Ints(uniqueDays)
	return uniqueDays
}

func validateAndNormalize(spec *HabitSpec) error {
	spec.Title = strings.TrimSpace(spec.Title)
	if spec.Title == "" {
		return ErrHabitTitleEmpty
	}
	if len(spec.Title) > MaxTitleLen {
		return ErrHabitTitleTooLong
	}

	spec.Description = strings.TrimSpace(spec.Description)
	if len(spec.Description) > MaxDescLen {
		return ErrHabitDescTooLong
	}

	if spec.RecordingType == "" {
		spec.RecordingType = RecordingYesNo
	}
	switch spec.RecordingType {
	case RecordingYesNo, RecordingCount, RecordingValue:
	default:
		return ErrInvalidRecordingType
	}

	if spec.GoalInterval == "" {
		spec.GoalInterval = IntervalDaily
	}
	switch spec.GoalInterval {
	case IntervalDaily, IntervalWeekly, IntervalMonthly:
		spec.CustomIntervalDays = nil
	case IntervalCustom:
		if spec.CustomIntervalDays != nil && *spec.CustomIntervalDays <= 0 {
			return ErrInvalidInterval
		}
	default:
		return ErrInvalidGoalInterval
	}

	if spec.GoalTarget != nil && *spec.GoalTarget < 0 {
		return ErrInvalidTarget
	}

	if spec.Reminder != "" && !reminderRegex.MatchString(spec.Reminder) {
		return ErrInvalidReminder
	}

	for _, day := range spec.ScheduledDaysOfWeek {
		if day < 0 || day > 6 {
			return ErrInvalidWeekdays
		}
	}
	spec.ScheduledDaysOfWeek = normalizeWeekdays(spec.ScheduledDaysOfWeek)

	if spec.Color != "" && !colorRegex.MatchString(spec.Color) {
		return ErrInvalidColor
	}

	if spec.Icon == "" {
		spec.Icon = DefaultIcon
	}

	switch spec.EndConditionType {
	case EndNone:
		spec.EndConditionValue = ""
	case EndDate:
		end, err := calendar.Parse(spec.EndConditionValue)
		if err != nil {
			return ErrInvalidEndCondition
		}
		if !spec.StartDate.IsZero() && end.Before(calendar.Normalize(spec.StartDate)) {
			return ErrInvalidEndCondition
		}
	case EndTotalValue, EndCompletedDays:
		v, err := strconv.ParseFloat(spec.EndConditionValue, 64)
		if err != nil || v <= 0 {
			return ErrInvalidEndCondition
		}
	default:
		return ErrInvalidEndCondition
	}

	return nil
}

func NewHabit(userID string, spec HabitSpec) (*Habit, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	now := time.Now().UTC()
	if spec.StartDate.IsZero() {
		spec.StartDate = now
	}
	spec.StartDate = calendar.Normalize(spec.StartDate)

	if err := validateAndNormalize(&spec); err != nil {
		return nil, err
	}

	h := &Habit{
		ID:        uuid.New().String(),
		UserID:    userID,
		SortOrder: 0,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	h.apply(spec)

	return h, nil
}

func (h *Habit) Update(spec HabitSpec) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	if spec.StartDate.IsZero() {
		spec.StartDate = h.StartDate
	}
	spec.StartDate = calendar.Normalize(spec.StartDate)

	if err := validateAndNormalize(&spec); err != nil {
		return err
	}

	h.apply(spec)
	h.UpdatedAt = time.Now().UTC()

	return nil
}

// Spec returns the editable definition currently stored on the habit.
func (h *Habit) Spec() HabitSpec {
	reminder := ""
	if h.ReminderTime != nil {
		reminder = *h.ReminderTime
	}
	return HabitSpec{
		Title:               h.Title,
		Description:         h.Description,
		Color:               h.Color,
		Icon:                h.Icon,
		Unit:                h.Unit,
		Reminder:            reminder,
		IsGoodHabit:         h.IsGoodHabit,
		RecordingType:       h.RecordingType,
		GoalInterval:        h.GoalInterval,
		GoalTarget:          h.GoalTarget,
		CustomIntervalDays:  h.CustomIntervalDays,
		ScheduledDaysOfWeek: h.ScheduledDaysOfWeek,
		StartDate:           h.StartDate,
		EndConditionType:    h.EndConditionType,
		EndConditionValue:   h.EndConditionValue,
	}
}

func (h *Habit) apply(spec HabitSpec) {
	var remPtr *string
	if spec.Reminder != "" {
		reminder := spec.Reminder
		remPtr = &reminder
	}

	h.Title = spec.Title
	h.Description = spec.Description
	h.Color = spec.Color
	h.Icon = spec.Icon
	h.Unit = spec.Unit
	h.ReminderTime = remPtr
	h.IsGoodHabit = spec.IsGoodHabit
	h.RecordingType = spec.RecordingType
	h.GoalInterval = spec.GoalInterval
	h.GoalTarget = spec.GoalTarget
	h.CustomIntervalDays = spec.CustomIntervalDays
	h.ScheduledDaysOfWeek = spec.ScheduledDaysOfWeek
	h.StartDate = spec.StartDate
	h.EndConditionType = spec.EndConditionType
	h.EndConditionValue = spec.EndConditionValue
}

func (h *Habit) Archive() {
	if h.ArchivedAt != nil {
		return
	}

	now := time.Now().UTC()
	h.ArchivedAt = &now
	h.UpdatedAt = now
}

func (h *Habit) Restore() {
	if h.ArchivedAt == nil {
		return
	}
	h.ArchivedAt = nil
	h.UpdatedAt = time.Now().UTC()
}
