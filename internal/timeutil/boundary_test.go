package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func TestStartOfWeek(t *testing.T) {
	wed := at(2024, 1, 10, 15, 0)
	sun := at(2024, 1, 14, 9, 0)

	assert.Equal(t, at(2024, 1, 8, 0, 0), StartOfWeek(wed, time.Monday))
	assert.Equal(t, at(2024, 1, 7, 0, 0), StartOfWeek(wed, time.Sunday))
	assert.Equal(t, at(2024, 1, 8, 0, 0), StartOfWeek(sun, time.Monday), "sunday belongs to the monday week")
	assert.Equal(t, at(2024, 1, 14, 0, 0), StartOfWeek(sun, time.Sunday))
}

func TestEndOfDay(t *testing.T) {
	got := EndOfDay(at(2024, 2, 29, 12, 0))
	assert.Equal(t, at(2024, 3, 1, 0, 0).Add(-time.Nanosecond), got)
}

func TestNextBoundary(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before the hour", at(2024, 1, 1, 0, 30), at(2024, 1, 1, 1, 0)},
		{"exactly on the hour", at(2024, 1, 1, 1, 0), at(2024, 1, 2, 1, 0)},
		{"after the hour", at(2024, 1, 1, 13, 0), at(2024, 1, 2, 1, 0)},
		{"month rollover", at(2024, 1, 31, 23, 59), at(2024, 2, 1, 1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextBoundary(tt.now, BackupHour))
		})
	}
}

func TestTicksUntil(t *testing.T) {
	now := at(2024, 1, 1, 0, 0)
	assert.Equal(t, 3600, TicksUntil(now, now.Add(time.Hour), time.Second))
	assert.Equal(t, 2, TicksUntil(now, now.Add(1500*time.Millisecond), time.Second), "rounds up")
	assert.Equal(t, 1, TicksUntil(now, now.Add(-time.Hour), time.Second), "past targets fire next tick")
	assert.Equal(t, 1, TicksUntil(now, now.Add(time.Hour), 0))
}
