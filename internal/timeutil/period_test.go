package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriod(t *testing.T) {
	now := at(2024, 3, 13, 15, 30) // Wednesday
	day := func(y int, m time.Month, d int) time.Time { return at(y, m, d, 0, 0) }

	tests := []struct {
		name      string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"today", day(2024, 3, 13), EndOfDay(now)},
		{"", day(2024, 3, 13), EndOfDay(now)},
		{"Yesterday", day(2024, 3, 12), EndOfDay(day(2024, 3, 12))},
		{"week", day(2024, 3, 11), EndOfDay(day(2024, 3, 17))},
		{"last-week", day(2024, 3, 4), EndOfDay(day(2024, 3, 10))},
		{"month", day(2024, 3, 1), EndOfDay(day(2024, 3, 31))},
		{"last-month", day(2024, 2, 1), EndOfDay(day(2024, 2, 29))},
		{"last 7 days", day(2024, 3, 7), EndOfDay(now)},
		{"last 1d", day(2024, 3, 13), EndOfDay(now)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Period(tt.name, now, time.Monday)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, r.Start)
			assert.Equal(t, tt.wantEnd, r.End)
		})
	}

	for _, bad := range []string{"fortnight", "last 0 days", "last -3 days"} {
		_, err := Period(bad, now, time.Monday)
		assert.Error(t, err, bad)
	}
}

func TestRange(t *testing.T) {
	r := Range{Start: at(2024, 1, 2, 0, 0), End: EndOfDay(at(2024, 1, 2, 0, 0))}
	assert.True(t, r.Contains(r.Start))
	assert.True(t, r.Contains(r.End))
	assert.False(t, r.Contains(r.End.Add(time.Nanosecond)))
	assert.Equal(t, "2024-01-02", r.String())

	prev := r.Previous()
	assert.Equal(t, at(2024, 1, 1, 0, 0), prev.Start)
	assert.Equal(t, r.Start.Add(-time.Nanosecond), prev.End)

	wide := Range{Start: at(2024, 1, 1, 0, 0), End: at(2024, 1, 7, 0, 0)}
	assert.Equal(t, "2024-01-01 to 2024-01-07", wide.String())
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-01-15", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, at(2024, 1, 15, 0, 0), got)

	got, err = ParseDate("15/01/2024", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, at(2024, 1, 15, 0, 0), got)

	for _, bad := range []string{"", "2024-13-01", "2024-01", "tomorrow"} {
		_, err := ParseDate(bad, time.UTC)
		assert.Error(t, err, bad)
	}
}

func TestParseRangeFlags(t *testing.T) {
	now := at(2024, 3, 13, 10, 0)

	r, err := ParseRangeFlags("", "", 3, now)
	require.NoError(t, err)
	assert.Equal(t, at(2024, 3, 11, 0, 0), r.Start)

	r, err = ParseRangeFlags("2024-03-01", "2024-03-05", 0, now)
	require.NoError(t, err)
	assert.Equal(t, at(2024, 3, 1, 0, 0), r.Start)
	assert.Equal(t, EndOfDay(at(2024, 3, 5, 0, 0)), r.End)

	r, err = ParseRangeFlags("", "", 0, now)
	require.NoError(t, err)
	assert.True(t, r.Start.IsZero())
	assert.Equal(t, EndOfDay(now), r.End)

	_, err = ParseRangeFlags("2024-03-01", "", 2, now)
	assert.ErrorContains(t, err, "--last")
	_, err = ParseRangeFlags("2024-03-05", "2024-03-01", 0, now)
	assert.ErrorContains(t, err, "after")
	_, err = ParseRangeFlags("bad", "", 0, now)
	assert.ErrorContains(t, err, "--from")
	_, err = ParseRangeFlags("", "bad", 0, now)
	assert.ErrorContains(t, err, "--to")
}

func TestParseDateTime(t *testing.T) {
	now := at(2024, 3, 13, 10, 0)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"09:15", at(2024, 3, 13, 9, 15)},
		{" 17:00 ", at(2024, 3, 13, 17, 0)},
		{"2024-03-01 08:30", at(2024, 3, 1, 8, 30)},
		{"2024-03-01T08:30", at(2024, 3, 1, 8, 30)},
		{"2024-03-01T08:30:00", at(2024, 3, 1, 8, 30)},
	}
	for _, tt := range tests {
		got, err := ParseDateTime(tt.input, now)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	for _, bad := range []string{"", "9am", "2024-03-01", "25:00"} {
		_, err := ParseDateTime(bad, now)
		assert.Error(t, err, bad)
	}
}
