package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/cli/handlers"
	"github.com/xolan/timetracker/internal/filter"
	"github.com/xolan/timetracker/internal/timeutil"
)

var rootCmd = &cobra.Command{
	Use:   "tt",
	Short: "A time tracker that keeps its entries in a plain CSV file",
	Long: `tt logs work against projects into a CSV file that other tools,
spreadsheets and sync services can read and edit alongside it.

Usage:
  tt                                      List today's entries
  tt <project> [meta] for <duration>      Log a finished entry ending now
  tt start <project> [meta]               Start a timer
  tt stop                                 Stop the running timer
  tt y | w | lw                           Yesterday, this week, last week
  tt edit <index> --meta 'text'           Edit an entry
  tt delete <index>                       Delete an entry (with confirmation)
  tt undo | redo                          Step through recent changes
  tt sync                                 Keep the log in sync until Ctrl+C
  tt tui                                  Launch the terminal UI

Meta text may carry #tags and @clients, e.g. "fix login #bug @acme".
Duration format: Yh (hours), Ym (minutes), or YhYm (combined)
Examples: 2h, 30m, 1h30m`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if CheckTUIFlag(cmd) {
			return
		}
		if len(args) == 0 {
			listPeriod(cmd, "today", nil)
			return
		}
		createEntry(cmd, args)
	},
}

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the log file for rows a sync would drop or rewrite",
	Long: `Read the log file and report malformed rows, duplicate IDs and
deletion markers without changing anything. Exits with status 1 when
problems are found.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			handlers.Validate(d)
		})
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringP("project", "p", "", "Filter by project")
	pf.StringSliceP("tag", "t", nil, "Filter by tag (repeatable)")
	pf.StringSliceP("client", "c", nil, "Filter by client (repeatable)")
	pf.Bool("billed", false, "Only billed entries")
	pf.Bool("unbilled", false, "Only unbilled entries")
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(version, commit, date string) {
	versionInfo = buildInfo{version: version, commit: commit, date: date}
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(
		"tt version {{.Version}}\n" +
			"commit: " + commit + "\n" +
			"built: " + date + "\n",
	)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// createEntry handles "tt <project> [meta] for <duration>"
func createEntry(cmd *cobra.Command, args []string) {
	withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
		handlers.CreateEntry(d, args[0], strings.Join(args[1:], " "))
	})
}

// listPeriod lists a named period, or the range flags when given.
func listPeriod(cmd *cobra.Command, period string, args []string) {
	withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
		f, rest, err := filterFromFlags(cmd, args)
		if err != nil {
			d.Fail(err)
			return
		}
		if len(rest) > 0 {
			d.Fail(fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " ")),
				"Filters take the form #tag or @client")
			return
		}
		r, err := rangeFromFlags(cmd, d.Services.Session.Now())
		if err != nil {
			d.Fail(err)
			return
		}
		if r != nil {
			handlers.ListRange(d, *r, f)
			return
		}
		handlers.ListPeriod(d, period, f)
	})
}

// filterFromFlags builds a filter from the root filter flags plus #tag and
// @client shorthands in args. The remaining args are returned.
func filterFromFlags(cmd *cobra.Command, args []string) (*filter.Filter, []string, error) {
	flags := cmd.Root().PersistentFlags()
	project, _ := flags.GetString("project")
	tags, _ := flags.GetStringSlice("tag")
	clients, _ := flags.GetStringSlice("client")
	billed, _ := flags.GetBool("billed")
	unbilled, _ := flags.GetBool("unbilled")
	if billed && unbilled {
		return nil, nil, fmt.Errorf("cannot use --billed with --unbilled")
	}

	var rest []string
	for _, arg := range args {
		switch {
		case len(arg) > 1 && strings.HasPrefix(arg, "#"):
			tags = append(tags, arg[1:])
		case len(arg) > 1 && strings.HasPrefix(arg, "@"):
			clients = append(clients, arg[1:])
		default:
			rest = append(rest, arg)
		}
	}

	f := filter.NewFilter("", project, tags, clients)
	switch {
	case billed:
		f.WithBilled(true)
	case unbilled:
		f.WithBilled(false)
	}
	return f, rest, nil
}

// addRangeFlags registers --from, --to and --last on cmd.
func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "Start date for filtering (YYYY-MM-DD or DD/MM/YYYY)")
	cmd.Flags().String("to", "", "End date for filtering (YYYY-MM-DD or DD/MM/YYYY)")
	cmd.Flags().Int("last", 0, "Filter by last N days (e.g., --last 7 for last 7 days)")
}

// rangeFromFlags returns the range the range flags select, or nil when
// none are set.
func rangeFromFlags(cmd *cobra.Command, now time.Time) (*timeutil.Range, error) {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	last, _ := cmd.Flags().GetInt("last")
	if from == "" && to == "" && last <= 0 {
		return nil, nil
	}
	r, err := timeutil.ParseRangeFlags(from, to, last, now)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
