package handlers

import (
	"errors"
	"fmt"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/filter"
	"github.com/xolan/timetracker/internal/service"
	"github.com/xolan/timetracker/internal/timeutil"
)

// ReportPeriod totals a named period grouped by project, tag or client
func ReportPeriod(deps *cli.Deps, groupBy, period string, f *filter.Filter) {
	g, err := service.ParseGroupBy(groupBy)
	if err != nil {
		deps.Fail(err)
		return
	}
	data, err := deps.Services.Report.ForPeriod(g, period, f)
	if err != nil {
		deps.Fail(err)
		return
	}
	renderReport(deps, g, data, f)
}

// ReportRange totals entries starting within r
func ReportRange(deps *cli.Deps, groupBy string, r timeutil.Range, f *filter.Filter) {
	g, err := service.ParseGroupBy(groupBy)
	if err != nil {
		deps.Fail(err)
		return
	}
	data, err := deps.Services.Report.Generate(g, r, f)
	if err != nil {
		deps.Fail(err)
		return
	}
	renderReport(deps, g, data, f)
}

// RunSavedReport generates a report saved with 'tt report save'
func RunSavedReport(deps *cli.Deps, name string) {
	defs, err := deps.Services.Report.Definitions()
	if err != nil {
		deps.Fail(err)
		return
	}
	data, err := deps.Services.Report.Run(name)
	if err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			deps.Fail(err, "List saved reports with 'tt report list'")
		} else {
			deps.Fail(err)
		}
		return
	}
	def := defs[name]
	renderReport(deps, def.GroupBy, data, def.Filter())
}

// SaveReport stores a named report definition
func SaveReport(deps *cli.Deps, name string, def service.ReportDefinition) {
	if err := deps.Services.Report.Save(name, def); err != nil {
		deps.Fail(err)
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Saved report %q\n", name)
	cli.Hintf(deps.Stdout, "Run it with 'tt report run %s'\n", name)
}

// ListReports prints the saved report definitions
func ListReports(deps *cli.Deps) {
	names, err := deps.Services.Report.Names()
	if err != nil {
		deps.Fail(err)
		return
	}
	if len(names) == 0 {
		_, _ = fmt.Fprintln(deps.Stdout, "No saved reports")
		return
	}
	defs, err := deps.Services.Report.Definitions()
	if err != nil {
		deps.Fail(err)
		return
	}

	cli.Title(deps.Stdout, "Saved reports")
	for _, n := range names {
		def := defs[n]
		period := def.Period
		if period == "" {
			period = "today"
		}
		_, _ = fmt.Fprintf(deps.Stdout, "  %s  %s by %s\n", n,
			cli.BuildPeriodWithFilters(period, def.Filter()), def.GroupBy)
	}
}

// DeleteReport removes a saved report
func DeleteReport(deps *cli.Deps, name string) {
	if err := deps.Services.Report.Delete(name); err != nil {
		deps.Fail(err)
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Deleted report %q\n", name)
}

func renderReport(deps *cli.Deps, g service.GroupBy, data *service.ReportData, f *filter.Filter) {
	period := cli.BuildPeriodWithFilters(data.Period, f)
	if len(data.Groups) == 0 {
		_, _ = fmt.Fprintf(deps.Stdout, "No entries found for %s\n", period)
		return
	}
	cli.Title(deps.Stdout, fmt.Sprintf("Time by %s (%s)", g, period))
	_, _ = fmt.Fprintln(deps.Stdout, cli.GroupTable(data.Groups, data.Total))
	if g != service.GroupByProject {
		cli.Hintf(deps.Stdout, "Entries with several %ss count toward each\n", g)
	}
}
