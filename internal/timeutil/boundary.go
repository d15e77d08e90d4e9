// Package timeutil holds calendar helpers for reports and scheduling.
package timeutil

import "time"

// BackupHour is the local hour at which the daily backup runs.
const BackupHour = 1

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// StartOfWeek returns midnight of the most recent weekStart on or before t.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	back := (int(t.Weekday()) - int(weekStart) + 7) % 7
	return StartOfDay(t).AddDate(0, 0, -back)
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// NextBoundary returns the first instant strictly after now that falls on
// hour:00:00 local time. A day without that hour (DST gap) rolls to the
// normalized time time.Date produces.
func NextBoundary(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, 0, 0, 0, now.Location())
	}
	return next
}

// TicksUntil returns how many ticks of interval elapse before target,
// rounded up and at least one.
func TicksUntil(now, target time.Time, interval time.Duration) int {
	if interval <= 0 {
		return 1
	}
	d := target.Sub(now)
	n := int((d + interval - 1) / interval)
	if n < 1 {
		return 1
	}
	return n
}
