package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

var _ domain.StreakCache = (*RedisStreakCache)(nil)

const DefaultStreakTTL = 24 * time.Hour

// RedisStreakCache stores habit summaries as JSON. The key embeds the history
// fingerprint and the evaluation day, so any edit or a new day is a miss and
// stale entries simply expire.
type RedisStreakCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStreakCache(client *redis.Client, ttl time.Duration) *RedisStreakCache {
	if ttl <= 0 {
		ttl = DefaultStreakTTL
	}
	return &RedisStreakCache{client: client, ttl: ttl}
}

func StreakKey(habitID string, fingerprint uint64, day time.Time) string {
	return fmt.Sprintf("streaks:%s:%s:%016x", habitID, calendar.Key(day), fingerprint)
}

func (c *RedisStreakCache) Get(ctx context.Context, habitID string, fingerprint uint64, day time.Time) (*domain.HabitSummary, error) {
	key := StreakKey(habitID, fingerprint, day)

	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		StreakCacheRequests.WithLabelValues("miss").Inc()
		return nil, nil
	}
	if err != nil {
		StreakCacheRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("streak cache: get %s: %w", key, err)
	}

	var summary domain.HabitSummary
	if err := json.Unmarshal(val, &summary); err != nil {
		log.Printf("[CACHE] Corrupted summary at %s, cleaning up key", key)
		c.client.Del(ctx, key)
		StreakCacheRequests.WithLabelValues("miss").Inc()
		return nil, nil
	}

	StreakCacheRequests.WithLabelValues("hit").Inc()
	return &summary, nil
}

func (c *RedisStreakCache) Set(ctx context.Context, habitID string, fingerprint uint64, day time.Time, summary *domain.HabitSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("streak cache: marshal: %w", err)
	}

	if err := c.client.Set(ctx, StreakKey(habitID, fingerprint, day), data, c.ttl).Err(); err != nil {
		StreakCacheWrites.WithLabelValues("error").Inc()
		return fmt.Errorf("streak cache: set: %w", err)
	}

	StreakCacheWrites.WithLabelValues("ok").Inc()
	return nil
}
