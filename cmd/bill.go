package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/cli/handlers"
)

// billCmd represents the bill command
var billCmd = &cobra.Command{
	Use:   "bill <index>...",
	Short: "Mark entries as billed",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			handlers.BillEntries(d, args, true)
		})
	},
}

// unbillCmd represents the unbill command
var unbillCmd = &cobra.Command{
	Use:   "unbill <index>...",
	Short: "Clear the billed flag on entries",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			handlers.BillEntries(d, args, false)
		})
	},
}

func init() {
	rootCmd.AddCommand(billCmd)
	rootCmd.AddCommand(unbillCmd)
}
