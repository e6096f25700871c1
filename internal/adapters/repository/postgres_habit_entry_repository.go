package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

var _ domain.HabitEntryRepository = (*PostgresEntryRepository)(nil)

var ErrEntryReference = errors.New("referenced habit or user does not exist")

const entryColumns = `id, habit_id, user_id, completion_date, value, notes, version, created_at, updated_at, deleted_at`

type PostgresEntryRepository struct {
	db *sqlx.DB
}

func NewPostgresEntryRepository(db *sqlx.DB) *PostgresEntryRepository {
	return &PostgresEntryRepository{db: db}
}

func (r *PostgresEntryRepository) Create(ctx context.Context, entry *domain.HabitEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CompletionDate = calendar.Normalize(entry.CompletionDate)

	query := `
		INSERT INTO habit_entries (` + entryColumns + `)
		VALUES (
			:id, :habit_id, :user_id,
			:completion_date, :value, :notes,
			:version, :created_at, :updated_at, :deleted_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		switch pgCode(err) {
		case pgForeignKeyViolation:
			return ErrEntryReference
		case pgUniqueViolation:
			return domain.ErrEntryConflict
		}
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (r *PostgresEntryRepository) GetByID(ctx context.Context, id string) (*domain.HabitEntry, error) {
	var entry domain.HabitEntry
	query := `SELECT ` + entryColumns + ` FROM habit_entries WHERE id = $1 AND deleted_at IS NULL`

	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	return normalized(&entry), nil
}

func (r *PostgresEntryRepository) ListByHabitID(ctx context.Context, habitID string) ([]*domain.HabitEntry, error) {
	query := `
		SELECT ` + entryColumns + ` FROM habit_entries
		WHERE habit_id = $1 AND deleted_at IS NULL
		ORDER BY completion_date ASC`

	return r.selectEntries(ctx, query, habitID)
}

func (r *PostgresEntryRepository) ListByHabitIDWithRange(ctx context.Context, habitID string, from, to time.Time) ([]*domain.HabitEntry, error) {
	query := `
		SELECT ` + entryColumns + ` FROM habit_entries
		WHERE habit_id = $1
		  AND completion_date >= $2
		  AND completion_date <= $3
		  AND deleted_at IS NULL
		ORDER BY completion_date DESC`

	return r.selectEntries(ctx, query, habitID, calendar.Normalize(from), calendar.Normalize(to))
}

func (r *PostgresEntryRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.HabitEntry, error) {
	query := `
		SELECT ` + entryColumns + ` FROM habit_entries
		WHERE user_id = $1
		  AND completion_date >= $2
		  AND completion_date <= $3
		  AND deleted_at IS NULL
		ORDER BY completion_date ASC`

	return r.selectEntries(ctx, query, userID, calendar.Normalize(from), calendar.Normalize(to))
}

func (r *PostgresEntryRepository) Update(ctx context.Context, entry *domain.HabitEntry) error {
	entry.Version++
	entry.UpdatedAt = time.Now().UTC()
	entry.CompletionDate = calendar.Normalize(entry.CompletionDate)

	query := `
		UPDATE habit_entries
		SET value = :value,
		    notes = :notes,
		    completion_date = :completion_date,
		    version = :version,
		    updated_at = :updated_at
		WHERE id = :id
		  AND version = :version - 1
		  AND deleted_at IS NULL`

	result, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		entry.Version--
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		entry.Version--
		exists, _ := r.exists(ctx, entry.ID)
		if !exists {
			return domain.ErrEntryNotFound
		}
		return domain.ErrEntryConflict
	}

	return nil
}

func (r *PostgresEntryRepository) Delete(ctx context.Context, id string, userID string) error {
	now := time.Now().UTC()

	query := `
		UPDATE habit_entries
		SET deleted_at = $1,
		    updated_at = $1,
		    version = version + 1
		WHERE id = $2
		  AND user_id = $3
		  AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, now, id, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// GetChanges includes soft-deleted rows so clients can drop them.
func (r *PostgresEntryRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.HabitEntry, error) {
	query := `
		SELECT ` + entryColumns + ` FROM habit_entries
		WHERE user_id = $1
		  AND updated_at > $2
		ORDER BY updated_at ASC`

	return r.selectEntries(ctx, query, userID, since)
}

func (r *PostgresEntryRepository) selectEntries(ctx context.Context, query string, args ...interface{}) ([]*domain.HabitEntry, error) {
	entries := []*domain.HabitEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, err
	}
	for _, e := range entries {
		normalized(e)
	}
	return entries, nil
}

func (r *PostgresEntryRepository) exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT count(*) FROM habit_entries WHERE id = $1 AND deleted_at IS NULL", id)
	return count > 0, err
}

// normalized pins DATE columns to UTC midnight whatever the session time zone.
func normalized(e *domain.HabitEntry) *domain.HabitEntry {
	e.CompletionDate = calendar.Normalize(e.CompletionDate)
	return e
}
