package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/cli/handlers"
	"github.com/xolan/timetracker/internal/timeutil"
)

// lastCmd represents the relative date range query command
var lastCmd = &cobra.Command{
	Use:   "last <n> [days] [#tag] [@client]",
	Short: "List entries for the last N days",
	Long: `List time entries for the last N days.

The range includes N complete days ending today (inclusive).

Examples:
  tt last 7 days     # Entries from the past 7 days
  tt last 30         # Entries from the past 30 days
  tt last 1 day      # Today only`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			handleLastCommand(cmd, d, args)
		})
	},
}

func init() {
	rootCmd.AddCommand(lastCmd)
}

// handleLastCommand lists entries for "last <n> [days]"
func handleLastCommand(cmd *cobra.Command, d *cli.Deps, args []string) {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		d.Fail(fmt.Errorf("invalid number of days %q", args[0]),
			"Examples:",
			"  tt last 7 days    # Past week",
			"  tt last 30 days   # Past month")
		return
	}
	rest := args[1:]
	if len(rest) > 0 && (strings.EqualFold(rest[0], "days") || strings.EqualFold(rest[0], "day")) {
		rest = rest[1:]
	}

	f, rest, err := filterFromFlags(cmd, rest)
	if err != nil {
		d.Fail(err)
		return
	}
	if len(rest) > 0 {
		d.Fail(fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " ")))
		return
	}
	handlers.ListRange(d, timeutil.LastDays(n, d.Services.Session.Now()), f)
}
