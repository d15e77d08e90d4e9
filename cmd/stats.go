package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/cli/handlers"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show time statistics",
	Long: `Show totals, daily averages and project, tag and client breakdowns,
compared with the period before.

By default this week is shown. Use --month for this month or the range
flags for any span.

Examples:
  tt stats                  This week
  tt stats --month          This month
  tt stats --last 30        The last 30 days
  tt stats --from 2024-01-01 --to 2024-03-31`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		month, _ := cmd.Flags().GetBool("month")
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			r, err := rangeFromFlags(cmd, d.Services.Session.Now())
			switch {
			case err != nil:
				d.Fail(err)
			case r != nil && month:
				d.Fail(errMonthWithRange)
			case r != nil:
				handlers.ShowRangeStats(d, *r)
			case month:
				handlers.ShowMonthlyStats(d)
			default:
				handlers.ShowWeeklyStats(d)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolP("month", "m", false, "Show this month instead of this week")
	addRangeFlags(statsCmd)
}
