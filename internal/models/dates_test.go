package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestMidnight(t *testing.T) {
	withTime := time.Date(2024, 3, 10, 15, 42, 7, 999, time.UTC)
	assert.Equal(t, day(2024, 3, 10), Midnight(withTime))
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)
	assert.True(t, SameDay(morning, evening))
	assert.False(t, SameDay(morning, day(2024, 3, 11)))
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{"same day", day(2024, 3, 10), day(2024, 3, 10), 0},
		{"two nights", day(2024, 3, 10), day(2024, 3, 12), 2},
		{"backwards", day(2024, 3, 12), day(2024, 3, 10), -2},
		{"across month boundary", day(2024, 2, 28), day(2024, 3, 1), 2},
		{"ignores time of day", time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC), time.Date(2024, 3, 11, 1, 0, 0, 0, time.UTC), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(tt.from, tt.to))
		})
	}
}

func TestDateKeyRoundTrip(t *testing.T) {
	d := day(2024, 3, 10)
	key := DateKey(d)
	assert.Equal(t, "2024-03-10", key)

	parsed, err := ParseDateKey(key)
	assert.NoError(t, err)
	assert.Equal(t, d, parsed)
}
