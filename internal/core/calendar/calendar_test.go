package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/calendar"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalize(t *testing.T) {
	t.Run("Keeps wall-clock date regardless of location", func(t *testing.T) {
		rome := time.FixedZone("CET", 3600)
		late := time.Date(2024, 3, 10, 23, 45, 0, 0, rome)

		got := calendar.Normalize(late)

		assert.Equal(t, date(2024, 3, 10), got)
		assert.Equal(t, "2024-03-10", calendar.Key(late))
	})

	t.Run("Same day ignores time of day", func(t *testing.T) {
		a := time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC)
		b := time.Date(2024, 3, 10, 22, 0, 0, 0, time.UTC)
		assert.True(t, calendar.Same(a, b))
		assert.False(t, calendar.Same(a, b.AddDate(0, 0, 1)))
	})
}

func TestParse(t *testing.T) {
	got, err := calendar.Parse("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 29), got)

	for _, bad := range []string{"", "2024-2-1", "2023-02-29", "29/02/2024", "2024-02-29T10:00:00Z"} {
		_, err := calendar.Parse(bad)
		assert.Error(t, err, "should reject %q", bad)
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"Same day", date(2024, 1, 1), date(2024, 1, 1), 0},
		{"Forward", date(2024, 1, 1), date(2024, 1, 31), 30},
		{"Backward", date(2024, 1, 31), date(2024, 1, 1), -30},
		{"Across leap day", date(2024, 2, 28), date(2024, 3, 1), 2},
		{"Ignores time of day", time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC), time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calendar.DaysBetween(tt.a, tt.b))
		})
	}

	assert.Equal(t, date(2024, 3, 1), calendar.AddDays(date(2024, 2, 28), 2))
}

func TestWeekAndMonthBounds(t *testing.T) {
	saturday := date(2024, 1, 6)

	assert.Equal(t, date(2024, 1, 1), calendar.WeekStart(saturday, time.Monday))
	assert.Equal(t, date(2024, 1, 7), calendar.WeekEnd(saturday, time.Monday))
	assert.Equal(t, date(2023, 12, 31), calendar.WeekStart(saturday, time.Sunday))
	assert.Equal(t, date(2024, 1, 8), calendar.WeekStart(date(2024, 1, 8), time.Monday), "Monday is its own week start")

	assert.Equal(t, date(2024, 2, 1), calendar.MonthStart(date(2024, 2, 17)))
	assert.Equal(t, date(2024, 2, 29), calendar.MonthEnd(date(2024, 2, 17)))
	assert.Equal(t, date(2023, 12, 31), calendar.MonthEnd(date(2023, 12, 1)))
}

func TestGrid(t *testing.T) {
	t.Run("Monday start pads with adjacent months", func(t *testing.T) {
		days := calendar.Grid(2024, time.February, time.Monday)

		require.Len(t, days, calendar.GridCells)
		assert.Equal(t, "2024-01-29", days[0].Key)
		assert.False(t, days[0].InMonth)
		assert.Equal(t, "2024-02-01", days[3].Key)
		assert.True(t, days[3].InMonth)
		assert.Equal(t, "2024-03-10", days[41].Key)

		inMonth := 0
		for _, d := range days {
			if d.InMonth {
				inMonth++
			}
		}
		assert.Equal(t, 29, inMonth)
	})

	t.Run("Month starting on week start has no leading padding", func(t *testing.T) {
		days := calendar.Grid(2024, time.January, time.Monday)
		assert.Equal(t, "2024-01-01", days[0].Key)
		assert.Equal(t, 1, days[0].Day)
	})

	t.Run("Sunday start", func(t *testing.T) {
		days := calendar.Grid(2024, time.September, time.Sunday)
		assert.Equal(t, "2024-09-01", days[0].Key)
		assert.Equal(t, time.Sunday, days[0].Date.Weekday())
	})
}
