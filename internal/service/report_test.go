package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xolan/timetracker/internal/filter"
	"github.com/xolan/timetracker/internal/settings"
	"github.com/xolan/timetracker/internal/timeutil"
)

func seedReportEntries(t *testing.T, env *testEnv) {
	t.Helper()
	add := func(project, meta string, startHour int, d time.Duration) {
		start := time.Date(2024, 1, 15, startHour, 0, 0, 0, time.UTC)
		_, err := env.svc.Entry.CreateSpan(project, meta, start, start.Add(d))
		require.NoError(t, err)
	}
	add("a", "build @acme #code", 8, 2*time.Hour)
	add("b", "call @globex", 10, time.Hour)
	add("a", "review #code #qa", 11, 30*time.Minute)
}

func TestParseGroupBy(t *testing.T) {
	for in, want := range map[string]GroupBy{"": GroupByProject, "Tag": GroupByTag, " client ": GroupByClient} {
		got, err := ParseGroupBy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseGroupBy("colour")
	assert.ErrorIs(t, err, ErrUnknownGrouping)
}

func TestReportService_Generate(t *testing.T) {
	env := newTestServices(t)
	seedReportEntries(t, env)
	today, err := timeutil.Period("today", t0, time.Monday)
	require.NoError(t, err)

	t.Run("by project", func(t *testing.T) {
		data, err := env.svc.Report.Generate(GroupByProject, today, nil)
		require.NoError(t, err)
		assert.Equal(t, 3*time.Hour+30*time.Minute, data.Total)
		assert.Equal(t, 3, data.EntryCount)
		require.Len(t, data.Groups, 2)
		assert.Equal(t, GroupData{Name: "a", Total: 150 * time.Minute, EntryCount: 2}, data.Groups[0])
	})

	t.Run("by tag", func(t *testing.T) {
		data, err := env.svc.Report.Generate(GroupByTag, today, nil)
		require.NoError(t, err)
		require.NotEmpty(t, data.Groups)
		assert.Equal(t, "code", data.Groups[0].Name)
		assert.Equal(t, 150*time.Minute, data.Groups[0].Total)
	})

	t.Run("by client with filter", func(t *testing.T) {
		data, err := env.svc.Report.Generate(GroupByClient, today, filter.NewFilter("", "b", nil, nil))
		require.NoError(t, err)
		require.Len(t, data.Groups, 1)
		assert.Equal(t, "globex", data.Groups[0].Name)
		assert.Equal(t, time.Hour, data.Total)
	})

	t.Run("unknown grouping", func(t *testing.T) {
		_, err := env.svc.Report.Generate("colour", today, nil)
		assert.ErrorIs(t, err, ErrUnknownGrouping)
	})
}

func TestReportService_ForPeriod(t *testing.T) {
	env := newTestServices(t)
	seedReportEntries(t, env)

	data, err := env.svc.Report.ForPeriod(GroupByProject, "week", nil)
	require.NoError(t, err)
	assert.Equal(t, "week", data.Period)
	assert.Equal(t, 3, data.EntryCount)

	data, err = env.svc.Report.ForPeriod(GroupByProject, "last-week", nil)
	require.NoError(t, err)
	assert.Zero(t, data.EntryCount)

	_, err = env.svc.Report.ForPeriod(GroupByProject, "someday", nil)
	assert.Error(t, err)
}

func TestReportService_SavedDefinitions(t *testing.T) {
	env := newTestServices(t)
	seedReportEntries(t, env)
	reports := env.svc.Report

	names, err := reports.Names()
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, reports.Save("acme code", ReportDefinition{
		Period:  "today",
		GroupBy: "tag",
		Clients: []string{"acme"},
	}))
	require.NoError(t, reports.Save("unbilled", ReportDefinition{Period: "week", Billed: "no"}))

	names, err = reports.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"acme code", "unbilled"}, names)
	assert.NotEmpty(t, env.svc.Settings.GetString(settings.KeyReports, ""))

	data, err := reports.Run("acme code")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, data.Total)
	require.Len(t, data.Groups, 1)
	assert.Equal(t, "code", data.Groups[0].Name)

	data, err = reports.Run("unbilled")
	require.NoError(t, err)
	assert.Equal(t, 3, data.EntryCount)

	defs, err := reports.Definitions()
	require.NoError(t, err)
	assert.Equal(t, GroupByProject, defs["unbilled"].GroupBy, "empty grouping is saved as project")

	assert.ErrorIs(t, reports.Save(" ", ReportDefinition{}), ErrEmptyReportName)
	assert.ErrorIs(t, reports.Save("x", ReportDefinition{GroupBy: "colour"}), ErrUnknownGrouping)
	assert.Error(t, reports.Save("x", ReportDefinition{Period: "someday"}))

	require.NoError(t, reports.Delete("acme code"))
	_, err = reports.Run("acme code")
	assert.ErrorIs(t, err, ErrReportNotFound)
	assert.ErrorIs(t, reports.Delete("acme code"), ErrReportNotFound)
}

func TestReportService_CorruptDefinitions(t *testing.T) {
	env := newTestServices(t)
	require.NoError(t, env.svc.Settings.SetString(settings.KeyReports, "not = [toml"))
	_, err := env.svc.Report.Definitions()
	assert.Error(t, err)
}
