package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/timeutil"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [period] [#tag] [@client]",
	Short: "List entries for a period",
	Long: `List time entries for a named period, today by default.

Periods: ` + strings.Join(timeutil.Periods, ", ") + `

Examples:
  tt list                        Today's entries
  tt list week #code             This week's entries tagged 'code'
  tt list month -p acme          This month's entries for project 'acme'
  tt list --from 2024-01-01 --to 2024-01-31
  tt list --last 14 --unbilled`,
	Run: func(cmd *cobra.Command, args []string) {
		period := "today"
		if len(args) > 0 && !strings.HasPrefix(args[0], "#") && !strings.HasPrefix(args[0], "@") {
			period, args = args[0], args[1:]
		}
		listPeriod(cmd, period, args)
	},
}

// yCmd represents the yesterday command
var yCmd = &cobra.Command{
	Use:   "y",
	Short: "List yesterday's entries",
	Run: func(cmd *cobra.Command, args []string) {
		listPeriod(cmd, "yesterday", args)
	},
}

// wCmd represents the this week command
var wCmd = &cobra.Command{
	Use:   "w",
	Short: "List this week's entries",
	Long:  `List all time entries logged this week. The first day follows week_start_day in the config.`,
	Run: func(cmd *cobra.Command, args []string) {
		listPeriod(cmd, "week", args)
	},
}

// lwCmd represents the last week command
var lwCmd = &cobra.Command{
	Use:   "lw",
	Short: "List last week's entries",
	Run: func(cmd *cobra.Command, args []string) {
		listPeriod(cmd, "last-week", args)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(yCmd)
	rootCmd.AddCommand(wCmd)
	rootCmd.AddCommand(lwCmd)

	addRangeFlags(listCmd)
}
