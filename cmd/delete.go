package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/cli/handlers"
)

var skipConfirmFlag bool

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <index>",
	Short: "Delete an entry",
	Long: `Delete a time entry by its index from the list output.

The entry is shown and confirmation requested unless --yes is given.
A deletion marker stays in the log so other copies drop the entry too,
and 'tt undo' brings it back.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			handlers.DeleteEntry(d, args[0], skipConfirmFlag)
		})
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&skipConfirmFlag, "yes", "y", false, "Skip confirmation prompt")
}
