package handlers

import (
	"fmt"

	"github.com/gosuri/uitable"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/entry"
	"github.com/xolan/timetracker/internal/service"
	"github.com/xolan/timetracker/internal/stats"
	"github.com/xolan/timetracker/internal/timeutil"
)

// ShowWeeklyStats shows this week's statistics against last week
func ShowWeeklyStats(deps *cli.Deps) {
	result, err := deps.Services.Stats.Weekly()
	if err != nil {
		deps.Fail(err)
		return
	}
	displayStats(deps, result)
}

// ShowMonthlyStats shows this month's statistics against last month
func ShowMonthlyStats(deps *cli.Deps) {
	result, err := deps.Services.Stats.Monthly()
	if err != nil {
		deps.Fail(err)
		return
	}
	displayStats(deps, result)
}

// ShowRangeStats shows statistics for r against the span just before it
func ShowRangeStats(deps *cli.Deps, r timeutil.Range) {
	result, err := deps.Services.Stats.ForRange(r)
	if err != nil {
		deps.Fail(err)
		return
	}
	displayStats(deps, result)
}

func displayStats(deps *cli.Deps, result *service.StatsResult) {
	s := result.Statistics
	cli.Title(deps.Stdout, fmt.Sprintf("Statistics for %s", result.Period))

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("Total time:", entry.FormatDuration(s.Total))
	tbl.AddRow("Billed:", entry.FormatDuration(s.BilledTotal))
	tbl.AddRow("Total entries:", fmt.Sprintf("%d %s", s.EntryCount, pluralEntries(s.EntryCount)))
	tbl.AddRow("Days with work:", fmt.Sprintf("%d %s", s.DaysWithEntries, cli.Pluralize("day", s.DaysWithEntries)))
	tbl.AddRow("Average per day:", entry.FormatDuration(s.AveragePerDay))
	_, _ = fmt.Fprintln(deps.Stdout, tbl)

	if result.Comparison != "" {
		cli.Rule(deps.Stdout)
		_, _ = fmt.Fprintf(deps.Stdout, "Comparison: %s\n", result.Comparison)
	}

	breakdown(deps, "By project", result.ProjectStats)
	breakdown(deps, "By tag", result.TagStats)
	breakdown(deps, "By client", result.ClientStats)
}

func breakdown(deps *cli.Deps, title string, rows []stats.Breakdown) {
	if len(rows) == 0 {
		return
	}
	_, _ = fmt.Fprintln(deps.Stdout)
	_, _ = cli.HeaderStyle.Fprintln(deps.Stdout, title)
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, b := range rows {
		tbl.AddRow("  "+b.Name, entry.FormatDuration(b.Total), fmt.Sprintf("(%d)", b.EntryCount))
	}
	tbl.RightAlign(1)
	_, _ = fmt.Fprintln(deps.Stdout, tbl)
}
