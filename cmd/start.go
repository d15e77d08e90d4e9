package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/cli/handlers"
)

var forceFlag bool

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start <project> [meta]",
	Short: "Start a timer for a project",
	Long: `Start a timer for a project. The running entry is written to the log
with an empty end time and stops with 'tt stop'.

The meta text can include #tags and @clients.

Examples:
  tt start acme
  tt start acme code review #review
  tt start globex API work @initech #backend`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			handlers.StartTimer(d, args[0], strings.Join(args[1:], " "), forceFlag)
		})
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "stop the running timer and start a new one")
}
