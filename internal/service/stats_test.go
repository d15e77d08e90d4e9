package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xolan/timetracker/internal/timeutil"
)

func TestStatsService_Weekly(t *testing.T) {
	env := newTestServices(t)
	seedReportEntries(t, env)
	lastWeek := t0.AddDate(0, 0, -7)
	_, err := env.svc.Entry.CreateSpan("a", "", lastWeek, lastWeek.Add(time.Hour))
	require.NoError(t, err)

	res, err := env.svc.Stats.Weekly()
	require.NoError(t, err)
	assert.Equal(t, "this week", res.Period)
	assert.Equal(t, 3*time.Hour+30*time.Minute, res.Statistics.Total)
	assert.Equal(t, 3, res.Statistics.EntryCount)
	assert.Equal(t, "up 2h 30m from last week", res.Comparison)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), res.Range.Start)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), res.PreviousRange.Start)
	require.NotEmpty(t, res.ProjectStats)
	assert.Equal(t, "a", res.ProjectStats[0].Name)
	require.NotEmpty(t, res.ClientStats)
	assert.NotEmpty(t, res.TagStats)
}

func TestStatsService_Monthly(t *testing.T) {
	env := newTestServices(t)
	seedReportEntries(t, env)

	res, err := env.svc.Stats.Monthly()
	require.NoError(t, err)
	assert.Equal(t, "this month", res.Period)
	assert.Equal(t, "up 3h 30m from last month", res.Comparison)
}

func TestStatsService_ForRange(t *testing.T) {
	env := newTestServices(t)
	seedReportEntries(t, env)

	res, err := env.svc.Stats.ForRange(timeutil.LastDays(1, t0))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Statistics.EntryCount)
	assert.Equal(t, "2024-01-15", res.Period)
	assert.Equal(t, "2024-01-14", res.PreviousRange.Start.Format("2006-01-02"))
}
