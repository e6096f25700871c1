// Package calendar holds the date arithmetic used by the streak engine.
//
// Every value handled here is a calendar day, not an instant: the wall-clock
// date of the input is kept and the time of day is dropped. Normalized days
// are represented as UTC midnights so that day differences are exact.
package calendar

import (
	"time"
)

const (
	Layout    = "2006-01-02"
	GridCells = 42
)

// Normalize returns the wall-clock date of t as a UTC midnight.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Key returns the YYYY-MM-DD representation of the day containing t.
func Key(t time.Time) string {
	return Normalize(t).Format(Layout)
}

// Same reports whether a and b fall on the same calendar day.
func Same(a, b time.Time) bool {
	return Key(a) == Key(b)
}

// Parse reads a YYYY-MM-DD string. Anything else is rejected.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Normalize(t), nil
}

func AddDays(t time.Time, n int) time.Time {
	return Normalize(t).AddDate(0, 0, n)
}

// DaysBetween returns b - a in whole days, ignoring the time of day.
func DaysBetween(a, b time.Time) int {
	return int(Normalize(b).Sub(Normalize(a)) / (24 * time.Hour))
}

// WeekStart returns the first day of the week containing t, where weeks
// begin on weekStart.
func WeekStart(t time.Time, weekStart time.Weekday) time.Time {
	day := Normalize(t)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

func WeekEnd(t time.Time, weekStart time.Weekday) time.Time {
	return WeekStart(t, weekStart).AddDate(0, 0, 6)
}

func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// Day is one cell of a month grid.
type Day struct {
	Date    time.Time
	Key     string
	Day     int
	InMonth bool
}

// Grid returns the fixed 42-cell grid for the given month. The first cell is
// the weekStart day on or before the 1st; trailing cells spill into the
// following month.
func Grid(year int, month time.Month, weekStart time.Weekday) []Day {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	cursor := WeekStart(first, weekStart)

	days := make([]Day, 0, GridCells)
	for i := 0; i < GridCells; i++ {
		days = append(days, Day{
			Date:    cursor,
			Key:     cursor.Format(Layout),
			Day:     cursor.Day(),
			InMonth: cursor.Month() == month,
		})
		cursor = cursor.AddDate(0, 0, 1)
	}

	return days
}
