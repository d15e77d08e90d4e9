package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/cli/handlers"
	"github.com/xolan/timetracker/internal/timeutil"
)

// fromCmd represents the date range query command
var fromCmd = &cobra.Command{
	Use:   "from <start-date> to <end-date> [#tag] [@client]",
	Short: "List entries for a custom date range",
	Long: `List time entries for a custom date range, both days included.

Supported date formats:
  - YYYY-MM-DD (e.g., 2024-01-15)
  - DD/MM/YYYY (e.g., 15/01/2024)

Examples:
  tt from 2024-01-01 to 2024-01-31    # Entries for January 2024
  tt from 15/01/2024 to 31/01/2024    # Same range with European format
  tt from 2024-01-15 to 2024-01-15    # A single day`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			handleFromCommand(cmd, d, args)
		})
	},
}

func init() {
	rootCmd.AddCommand(fromCmd)
}

// handleFromCommand parses "START to END" and lists entries in between
func handleFromCommand(cmd *cobra.Command, d *cli.Deps, args []string) {
	usage := []string{
		"Usage: tt from <start-date> to <end-date>",
		"Example: tt from 2024-01-01 to 2024-01-31",
	}
	if len(args) < 3 || !strings.EqualFold(args[1], "to") {
		d.Fail(fmt.Errorf("expected '<start-date> to <end-date>'"), usage...)
		return
	}

	f, rest, err := filterFromFlags(cmd, args[3:])
	if err != nil {
		d.Fail(err)
		return
	}
	if len(rest) > 0 {
		d.Fail(fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " ")), usage...)
		return
	}

	r, err := timeutil.ParseRangeFlags(args[0], args[2], 0, d.Services.Session.Now())
	if err != nil {
		d.Fail(err, usage...)
		return
	}
	handlers.ListRange(d, r, f)
}
