package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/cli/handlers"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [keyword] [#tag] [@client]",
	Short: "Search for entries by keyword",
	Long: `Search entries whose project or meta text contains a keyword.

The search is case-insensitive and covers every entry unless a date range
is given. A keyword may be left out when filtering by tag, client, project
or billed state alone.

Examples:
  tt search meeting                       Entries mentioning 'meeting'
  tt search "code review" --last 7        Within the last 7 days
  tt search bug --from 2024-01-01 --to 2024-01-31
  tt search @globex --unbilled            Unbilled work for a client`,
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			searchEntries(cmd, d, args)
		})
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	addRangeFlags(searchCmd)
}

// searchEntries handles the search command logic
func searchEntries(cmd *cobra.Command, d *cli.Deps, args []string) {
	f, rest, err := filterFromFlags(cmd, args)
	if err != nil {
		d.Fail(err)
		return
	}
	r, err := rangeFromFlags(cmd, d.Services.Session.Now())
	if err != nil {
		d.Fail(err)
		return
	}
	handlers.Search(d, strings.Join(rest, " "), r, f)
}
