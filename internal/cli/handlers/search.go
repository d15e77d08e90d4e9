package handlers

import (
	"errors"
	"fmt"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/filter"
	"github.com/xolan/timetracker/internal/service"
	"github.com/xolan/timetracker/internal/timeutil"
)

// Search finds entries whose meta or project contains keyword
func Search(deps *cli.Deps, keyword string, r *timeutil.Range, f *filter.Filter) {
	result, err := deps.Services.Search.Search(keyword, r, f)
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			deps.Fail(err, "Pass a keyword or a filter such as --project or --tag")
		} else {
			deps.Fail(err)
		}
		return
	}

	if len(result.Entries) == 0 {
		if keyword != "" {
			_, _ = fmt.Fprintf(deps.Stdout, "No entries found matching '%s'\n", keyword)
		} else {
			_, _ = fmt.Fprintln(deps.Stdout, "No entries found")
		}
		return
	}

	header := fmt.Sprintf("Search results for '%s'", keyword)
	if keyword == "" {
		header = cli.BuildPeriodWithFilters("Matching entries", f)
	}
	cli.Title(deps.Stdout, fmt.Sprintf("%s (%d %s)", header, result.Total, cli.Pluralize("result", result.Total)))
	_, _ = fmt.Fprintln(deps.Stdout, cli.EntryTable(result.Entries, deps.Services.Session.Now()))
}
