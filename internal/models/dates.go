package models

import "time"

// DateKeyFormat is the canonical calendar-day key used across the engine.
const DateKeyFormat = "2006-01-02"

// Midnight strips the time-of-day component, keeping the calendar day in UTC.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Midnight(a).Equal(Midnight(b))
}

// DaysBetween returns the number of whole days from 'from' to 'to'.
// Negative when 'to' precedes 'from'.
func DaysBetween(from, to time.Time) int {
	return int(Midnight(to).Sub(Midnight(from)).Hours() / 24)
}

// DateKey renders a calendar-day lookup key.
func DateKey(t time.Time) string {
	return Midnight(t).Format(DateKeyFormat)
}

// ParseDateKey parses a YYYY-MM-DD day key.
func ParseDateKey(s string) (time.Time, error) {
	return time.Parse(DateKeyFormat, s)
}
