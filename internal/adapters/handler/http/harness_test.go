package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-streaks/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/services"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/workers"
)

// Wednesday.
var testNow = time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

type testServer struct {
	router  *gin.Engine
	habits  *repository.InMemoryHabitRepository
	entries *repository.InMemoryEntryRepository
	worker  *workers.StreakWorker
}

// newTestServer wires the real services over in-memory storage. The user id is
// taken from the X-User-ID header in place of a JWT.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	habits := repository.NewInMemoryHabitRepository()
	entries := repository.NewInMemoryEntryRepository()
	worker := workers.NewStreakWorker(habits, entries, nil, testClock, workers.DefaultQueueSize)

	habitSvc := services.NewHabitService(habits, worker)
	entrySvc := services.NewEntryService(entries, habits, worker)
	statsSvc := services.NewStatsService(habits, entries, nil, testClock)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(middleware.ContextUserIDKey, userID)
		}
		c.Next()
	})

	api := r.Group("/api/v1")
	adapterHTTP.NewHabitHandler(habitSvc).RegisterRoutes(api)
	adapterHTTP.NewEntryHandler(entrySvc, testClock).RegisterRoutes(api)
	adapterHTTP.NewStatsHandler(statsSvc, testClock).RegisterRoutes(api)

	return &testServer{router: r, habits: habits, entries: entries, worker: worker}
}

func (s *testServer) do(method, path, body, userID string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) seedHabit(t *testing.T, userID string, spec domain.HabitSpec) *domain.Habit {
	t.Helper()
	h, err := domain.NewHabit(userID, spec)
	require.NoError(t, err)
	require.NoError(t, s.habits.Create(context.Background(), h))
	return h
}

func (s *testServer) seedEntry(t *testing.T, h *domain.Habit, date time.Time, value float64) *domain.HabitEntry {
	t.Helper()
	e := domain.NewHabitEntry(h.ID, h.UserID, date, value)
	require.NoError(t, s.entries.Create(context.Background(), e))
	return e
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func jan(day int) time.Time {
	return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
}
