package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/cli/handlers"
	"github.com/xolan/timetracker/internal/filter"
	"github.com/xolan/timetracker/internal/timeutil"
)

// exportCmd represents the export parent command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export time entries to various formats",
	Long: `Export time entries for programmatic use, backup, or migration.

Available formats:
  json    Entries with tags, clients and export metadata
  csv     Entries in the log's own CSV layout

Filtering:
  Use --from and --to, or --last, to limit the date range
  Use --project, --tag, --client, --billed or --unbilled to filter
  Use #tag and @client shorthands as arguments

Examples:
  tt export json > backup.json
  tt export csv --last 30 @globex > globex.csv
  tt export json --from 2024-01-01 --to 2024-01-31 --unbilled`,
}

// exportJSONCmd represents the export json command
var exportJSONCmd = &cobra.Command{
	Use:   "json [#tag] [@client]",
	Short: "Export time entries as JSON",
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			if r, f, ok := exportScope(cmd, d, args); ok {
				handlers.ExportJSON(d, r, f)
			}
		})
	},
}

// exportCSVCmd represents the export csv command
var exportCSVCmd = &cobra.Command{
	Use:   "csv [#tag] [@client]",
	Short: "Export time entries as CSV",
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			if r, f, ok := exportScope(cmd, d, args); ok {
				handlers.ExportCSV(d, r, f)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportJSONCmd)
	exportCmd.AddCommand(exportCSVCmd)

	addRangeFlags(exportJSONCmd)
	addRangeFlags(exportCSVCmd)
}

// exportScope reads the range and filter an export covers
func exportScope(cmd *cobra.Command, d *cli.Deps, args []string) (*timeutil.Range, *filter.Filter, bool) {
	f, rest, err := filterFromFlags(cmd, args)
	if err != nil {
		d.Fail(err)
		return nil, nil, false
	}
	if len(rest) > 0 {
		d.Fail(fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " ")))
		return nil, nil, false
	}
	r, err := rangeFromFlags(cmd, d.Services.Session.Now())
	if err != nil {
		d.Fail(err)
		return nil, nil, false
	}
	return r, f, true
}
