package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/services"
)

func newTestService(repo domain.HabitRepository) (*services.HabitService, *recordingRefresher) {
	refresher := &recordingRefresher{}
	return services.NewHabitService(repo, refresher), refresher
}

func seedHabit(t *testing.T, repo *MockRepo, userID, title string) *domain.Habit {
	t.Helper()
	h, err := domain.NewHabit(userID, domain.HabitSpec{Title: title, IsGoodHabit: true})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), h))
	return h
}

func TestHabitService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Should create and persist a valid habit (Auto-ID)", func(t *testing.T) {
		repo := NewMockRepo()
		svc, refresher := newTestService(repo)

		created, err := svc.Create(ctx, services.CreateHabitInput{
			UserID:        "user-1",
			Title:         "Read Book",
			RecordingType: string(domain.RecordingCount),
			GoalInterval:  string(domain.IntervalWeekly),
			GoalTarget:    ptr(3.0),
		})

		require.NoError(t, err)
		assert.Equal(t, "Read Book", created.Title)
		assert.Equal(t, 1, created.Version)
		assert.NotEmpty(t, created.ID)
		assert.True(t, created.IsGoodHabit, "habits are good unless stated otherwise")
		assert.Equal(t, domain.IntervalWeekly, created.GoalInterval)

		stored, _ := repo.GetByID(ctx, created.ID)
		require.NotNil(t, stored)
		assert.Equal(t, created.ID, stored.ID)
		assert.Equal(t, []string{created.ID}, refresher.calls())
	})

	t.Run("Success: Should create a bad habit with a limit", func(t *testing.T) {
		svc, _ := newTestService(NewMockRepo())

		created, err := svc.Create(ctx, services.CreateHabitInput{
			UserID:        "user-1",
			Title:         "Coffee",
			IsGoodHabit:   ptr(false),
			RecordingType: string(domain.RecordingCount),
			GoalTarget:    ptr(2.0),
		})

		require.NoError(t, err)
		assert.False(t, created.IsGoodHabit)
		assert.Equal(t, 2.0, created.Goal())
	})

	t.Run("Success: Should create habit with PROVIDED ID (Offline Sync)", func(t *testing.T) {
		repo := NewMockRepo()
		svc, _ := newTestService(repo)

		created, err := svc.Create(ctx, services.CreateHabitInput{
			ID:     "custom-uuid-123",
			UserID: "user-1",
			Title:  "Offline Habit",
		})

		require.NoError(t, err)
		assert.Equal(t, "custom-uuid-123", created.ID)

		stored, err := repo.GetByID(ctx, "custom-uuid-123")
		require.NoError(t, err)
		assert.Equal(t, "Offline Habit", stored.Title)
	})

	t.Run("Idempotency: Should return existing habit if ID exists (Sync Retry)", func(t *testing.T) {
		repo := NewMockRepo()
		svc, _ := newTestService(repo)

		input := services.CreateHabitInput{ID: "retry-id", UserID: "user-1", Title: "Retry Habit"}
		first, err := svc.Create(ctx, input)
		require.NoError(t, err)

		second, err := svc.Create(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.CreatedAt, second.CreatedAt)
		assert.Len(t, repo.store, 1)
	})

	t.Run("Fail: Existing ID owned by someone else", func(t *testing.T) {
		repo := NewMockRepo()
		svc, _ := newTestService(repo)

		_, err := svc.Create(ctx, services.CreateHabitInput{ID: "shared", UserID: "user-1", Title: "Mine"})
		require.NoError(t, err)

		_, err = svc.Create(ctx, services.CreateHabitInput{ID: "shared", UserID: "user-2", Title: "Theirs"})
		assert.ErrorIs(t, err, domain.ErrHabitConflict)
	})

	t.Run("Fail: Domain Validation Error (Blocked BEFORE DB)", func(t *testing.T) {
		repo := NewMockRepo()
		svc, refresher := newTestService(repo)

		_, err := svc.Create(ctx, services.CreateHabitInput{UserID: "user-1", Title: ""})

		assert.ErrorIs(t, err, domain.ErrHabitTitleEmpty)
		assert.Empty(t, repo.store)
		assert.Empty(t, refresher.calls())
	})

	t.Run("Fail: Invalid goal interval", func(t *testing.T) {
		svc, _ := newTestService(NewMockRepo())

		_, err := svc.Create(ctx, services.CreateHabitInput{UserID: "user-1", Title: "X", GoalInterval: "yearly"})

		assert.ErrorIs(t, err, domain.ErrInvalidGoalInterval)
	})

	t.Run("Fail: Repository error is propagated", func(t *testing.T) {
		repo := NewMockRepo()
		repo.simulateError = errors.New("db down")
		svc, _ := newTestService(repo)

		_, err := svc.Create(ctx, services.CreateHabitInput{UserID: "user-1", Title: "X"})

		assert.EqualError(t, err, "db down")
	})
}

func TestHabitService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Should merge provided fields only (Owner)", func(t *testing.T) {
		repo := NewMockRepo()
		svc, refresher := newTestService(repo)
		existing := seedHabit(t, repo, "user-1", "Old Title")

		updated, err := svc.Update(ctx, services.UpdateHabitInput{
			ID:                  existing.ID,
			UserID:              "user-1",
			Title:               ptr("New Title"),
			GoalInterval:        ptr(string(domain.IntervalMonthly)),
			GoalTarget:          ptr(10.0),
			ScheduledDaysOfWeek: []int{5, 1, 1},
			Version:             1,
		})

		require.NoError(t, err)
		assert.Equal(t, "New Title", updated.Title)
		assert.Equal(t, domain.DefaultIcon, updated.Icon, "untouched fields stay")
		assert.Equal(t, domain.IntervalMonthly, updated.GoalInterval)
		assert.Equal(t, []int{1, 5}, updated.ScheduledDaysOfWeek)
		assert.Equal(t, 2, updated.Version)
		assert.Equal(t, existing.StartDate, updated.StartDate)
		assert.Contains(t, refresher.calls(), existing.ID)
	})

	t.Run("Success: Should move the start date", func(t *testing.T) {
		repo := NewMockRepo()
		svc, _ := newTestService(repo)
		existing := seedHabit(t, repo, "user-1", "Run")

		start := time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC)
		updated, err := svc.Update(ctx, services.UpdateHabitInput{ID: existing.ID, UserID: "user-1", StartDate: &start})

		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), updated.StartDate)
	})

	t.Run("Fail: Version conflict", func(t *testing.T) {
		repo := NewMockRepo()
		svc, _ := newTestService(repo)
		existing := seedHabit(t, repo, "user-1", "Title")

		_, err := svc.Update(ctx, services.UpdateHabitInput{ID: existing.ID, UserID: "user-1", Title: ptr("X"), Version: 7})

		assert.ErrorIs(t, err, domain.ErrHabitConflict)
		assert.Contains(t, err.Error(), "client v7 vs server v1")
	})

	t.Run("Fail: Another user's habit looks missing", func(t *testing.T) {
		repo := NewMockRepo()
		svc, _ := newTestService(repo)
		existing := seedHabit(t, repo, "user-1", "Title")

		_, err := svc.Update(ctx, services.UpdateHabitInput{ID: existing.ID, UserID: "hacker", Title: ptr("X")})

		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})

	t.Run("Fail: Validation error leaves the habit untouched", func(t *testing.T) {
		repo := NewMockRepo()
		svc, _ := newTestService(repo)
		existing := seedHabit(t, repo, "user-1", "Title")

		_, err := svc.Update(ctx, services.UpdateHabitInput{ID: existing.ID, UserID: "user-1", Color: ptr("red")})

		assert.ErrorIs(t, err, domain.ErrInvalidColor)
		stored, _ := repo.GetByID(ctx, existing.ID)
		assert.Equal(t, 1, stored.Version)
	})

	t.Run("Fail: Archived habits are read-only", func(t *testing.T) {
		repo := NewMockRepo()
		svc, _ := newTestService(repo)
		existing := seedHabit(t, repo, "user-1", "Title")
		_, err := svc.Archive(ctx, existing.ID, "user-1")
		require.NoError(t, err)

		_, err = svc.Update(ctx, services.UpdateHabitInput{ID: existing.ID, UserID: "user-1", Title: ptr("X")})

		assert.ErrorIs(t, err, domain.ErrHabitArchived)
	})
}

func TestHabitService_ArchiveRestore(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepo()
	svc, _ := newTestService(repo)
	existing := seedHabit(t, repo, "user-1", "Meditate")

	archived, err := svc.Archive(ctx, existing.ID, "user-1")
	require.NoError(t, err)
	assert.NotNil(t, archived.ArchivedAt)
	assert.Equal(t, 2, archived.Version)

	again, err := svc.Archive(ctx, existing.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, again.Version, "archiving twice is a no-op")

	restored, err := svc.Restore(ctx, existing.ID, "user-1")
	require.NoError(t, err)
	assert.Nil(t, restored.ArchivedAt)
	assert.Equal(t, 3, restored.Version)

	_, err = svc.Archive(ctx, existing.ID, "user-2")
	assert.ErrorIs(t, err, domain.ErrHabitNotFound)
}

func TestHabitService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Owner soft-deletes", func(t *testing.T) {
		repo := NewMockRepo()
		svc, _ := newTestService(repo)
		existing := seedHabit(t, repo, "user-1", "Title")

		require.NoError(t, svc.Delete(ctx, existing.ID, "user-1"))

		_, err := repo.GetByID(ctx, existing.ID)
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
		assert.NotNil(t, repo.store[existing.ID].DeletedAt)
	})

	t.Run("Fail: Not the owner", func(t *testing.T) {
		repo := NewMockRepo()
		svc, _ := newTestService(repo)
		existing := seedHabit(t, repo, "user-1", "Title")

		assert.ErrorIs(t, svc.Delete(ctx, existing.ID, "user-2"), domain.ErrHabitNotFound)
		assert.Nil(t, repo.store[existing.ID].DeletedAt)
	})
}

func TestHabitService_ListAndDelta(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepo()
	svc, _ := newTestService(repo)

	seedHabit(t, repo, "user-1", "A")
	seedHabit(t, repo, "user-1", "B")
	seedHabit(t, repo, "user-2", "C")

	list, err := svc.ListByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	delta, err := svc.GetDelta(ctx, "user-1", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, delta, 2)

	delta, err = svc.GetDelta(ctx, "user-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, delta)
}
