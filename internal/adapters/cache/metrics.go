package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StreakCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streak_cache_requests_total",
			Help: "Streak summary cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)

	StreakCacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streak_cache_writes_total",
			Help: "Streak summary cache writes by status",
		},
		[]string{"status"}, // ok, error
	)
)

var HabitListCacheRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "habit_list_cache_requests_total",
		Help: "Cached habit list lookups by result",
	},
	[]string{"result"}, // hit, miss, error
)
