package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ domain.HabitRepository = (*PostgresHabitRepository)(nil)

const habitColumns = `
	id, user_id, title, description, color, icon, sort_order, unit, reminder_time,
	is_good_habit, recording_type, goal_interval, goal_target, custom_interval_days,
	scheduled_days_of_week, start_date, end_condition_type, end_condition_value,
	archived_at, version, deleted_at, created_at, updated_at`

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresHabitRepository) scanRow(row scannable) (*domain.Habit, error) {
	var h domain.Habit
	var weekdaysJSON []byte
	var recording, interval, endType string

	err := row.Scan(
		&h.ID, &h.UserID, &h.Title, &h.Description, &h.Color, &h.Icon, &h.SortOrder, &h.Unit, &h.ReminderTime,
		&h.IsGoodHabit, &recording, &interval, &h.GoalTarget, &h.CustomIntervalDays,
		&weekdaysJSON, &h.StartDate, &endType, &h.EndConditionValue,
		&h.ArchivedAt, &h.Version, &h.DeletedAt, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	h.RecordingType = domain.RecordingType(recording)
	h.GoalInterval = domain.GoalInterval(interval)
	h.EndConditionType = domain.EndConditionType(endType)
	h.StartDate = calendar.Normalize(h.StartDate)

	if len(weekdaysJSON) > 0 {
		if err := json.Unmarshal(weekdaysJSON, &h.ScheduledDaysOfWeek); err != nil {
			return nil, fmt.Errorf("failed to unmarshal weekdays: %w", err)
		}
		if len(h.ScheduledDaysOfWeek) == 0 {
			h.ScheduledDaysOfWeek = nil
		}
	}

	return &h, nil
}

func marshalWeekdays(days []int) ([]byte, error) {
	if days == nil {
		days = []int{}
	}
	return json.Marshal(days)
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	weekdaysJSON, err := marshalWeekdays(h.ScheduledDaysOfWeek)
	if err != nil {
		return fmt.Errorf("failed to marshal weekdays: %w", err)
	}

	query := `
        INSERT INTO habits (` + habitColumns + `
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9,
            $10, $11, $12, $13, $14,
            $15, $16, $17, $18,
            $19, 1, NULL, $20, $21
        )`

	_, err = r.db.ExecContext(ctx, query,
		h.ID, h.UserID, h.Title, h.Description, h.Color, h.Icon, h.SortOrder, h.Unit, h.ReminderTime,
		h.IsGoodHabit, string(h.RecordingType), string(h.GoalInterval), h.GoalTarget, h.CustomIntervalDays,
		weekdaysJSON, calendar.Normalize(h.StartDate), string(h.EndConditionType), h.EndConditionValue,
		h.ArchivedAt, h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return fmt.Errorf("%w: habit %s already exists", domain.ErrHabitConflict, h.ID)
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	h.Version = 1
	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1 AND deleted_at IS NULL`

	h, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `
        SELECT ` + habitColumns + ` FROM habits
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY sort_order ASC, created_at DESC`

	return r.list(ctx, query, userID)
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	weekdaysJSON, err := marshalWeekdays(h.ScheduledDaysOfWeek)
	if err != nil {
		return err
	}

	query := `
        UPDATE habits SET
            title=$1, description=$2, color=$3, icon=$4, sort_order=$5, unit=$6, reminder_time=$7,
            is_good_habit=$8, recording_type=$9, goal_interval=$10, goal_target=$11, custom_interval_days=$12,
            scheduled_days_of_week=$13, start_date=$14, end_condition_type=$15, end_condition_value=$16,
            archived_at=$17,
            updated_at=NOW(), version = version + 1
        WHERE id=$18 AND version=$19 AND deleted_at IS NULL
        RETURNING version, updated_at`

	row := r.db.QueryRowContext(ctx, query,
		h.Title, h.Description, h.Color, h.Icon, h.SortOrder, h.Unit, h.ReminderTime,
		h.IsGoodHabit, string(h.RecordingType), string(h.GoalInterval), h.GoalTarget, h.CustomIntervalDays,
		weekdaysJSON, calendar.Normalize(h.StartDate), string(h.EndConditionType), h.EndConditionValue,
		h.ArchivedAt,
		h.ID, h.Version,
	)

	var newVersion int
	var newUpdatedAt time.Time

	if err := row.Scan(&newVersion, &newUpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var count int
			if checkErr := r.db.QueryRowContext(ctx, `SELECT count(*) FROM habits WHERE id = $1 AND deleted_at IS NULL`, h.ID).Scan(&count); checkErr != nil {
				return fmt.Errorf("existence check failed: %w", checkErr)
			}
			if count == 0 {
				return domain.ErrHabitNotFound
			}
			return domain.ErrHabitConflict
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	h.Version = newVersion
	h.UpdatedAt = newUpdatedAt

	return nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	query := `
        UPDATE habits
        SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
        WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *PostgresHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	query := `
        SELECT ` + habitColumns + ` FROM habits
        WHERE user_id = $1 AND updated_at > $2
        ORDER BY updated_at ASC`

	return r.list(ctx, query, userID, since)
}

func (r *PostgresHabitRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Habit, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	habits := []*domain.Habit{}
	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}
