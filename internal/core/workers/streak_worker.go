package workers

import (
	"context"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/streaks"
)

const DefaultQueueSize = 100

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
}

type EntryRepository interface {
	ListByHabitID(ctx context.Context, habitID string) ([]*domain.HabitEntry, error)
}

type StreakJob struct {
	HabitID string
}

// StreakWorker recomputes habit summaries off the request path and stores
// them in the streak cache, so the next read is a hit.
type StreakWorker struct {
	habitRepo HabitRepository
	entryRepo EntryRepository
	cache     domain.StreakCache
	clock     func() time.Time
	jobs      chan StreakJob
}

func NewStreakWorker(hRepo HabitRepository, eRepo EntryRepository, cache domain.StreakCache, clock func() time.Time, queueSize int) *StreakWorker {
	if clock == nil {
		clock = time.Now
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &StreakWorker{
		habitRepo: hRepo,
		entryRepo: eRepo,
		cache:     cache,
		clock:     clock,
		jobs:      make(chan StreakJob, queueSize),
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		log.Println("[WORKER] Streak worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				if _, err := w.Process(ctx, job.HabitID); err != nil {
					log.Printf("[WORKER] habit %s: %v", job.HabitID, err)
				}
			case <-ctx.Done():
				log.Println("[WORKER] Streak worker shutting down...")
				return
			}
		}
	}()
}

// Enqueue never blocks. Jobs are dropped when the queue is full; the summary
// is then computed on the next read instead.
func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		log.Printf("[WORKER] queue full, dropping job for habit %s", habitID)
	}
}

// Pending returns the number of queued jobs.
func (w *StreakWorker) Pending() int {
	return len(w.jobs)
}

// Process computes the summary of a habit as of today and writes it to the
// cache.
func (w *StreakWorker) Process(ctx context.Context, habitID string) (*domain.HabitSummary, error) {
	habit, err := w.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}

	entries, err := w.entryRepo.ListByHabitID(ctx, habitID)
	if err != nil {
		return nil, err
	}

	now := w.clock()
	today := calendar.Normalize(now)
	events := domain.Events(entries)

	summary := streaks.Summarize(habit, events, today)
	summary.ComputedAt = now.UTC()

	if w.cache == nil {
		return summary, nil
	}

	if err := w.cache.Set(ctx, habitID, streaks.Fingerprint(habit, events), today, summary); err != nil {
		return summary, err
	}

	log.Printf("[WORKER] summary refreshed for %s: current=%d best=%d", habit.Title, summary.CurrentStreak, summary.BestStreak)
	return summary, nil
}
