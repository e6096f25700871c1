package domain

import "errors"

var (
	ErrUnauthorized     = errors.New("resource does not belong to user")
	ErrHabitConflict    = errors.New("habit version conflict")
	ErrInvalidDateRange = errors.New("invalid date range")
)
