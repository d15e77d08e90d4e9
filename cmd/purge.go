package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/cli/handlers"
)

var (
	purgeYesFlag bool
	purgeAllFlag bool
)

// purgeCmd represents the purge command
var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Drop old deletion markers from the log",
	Long: `Deleted entries leave a marker row in the log so that copies of the
file synced elsewhere drop them too. Markers older than 48 hours are
dropped automatically on flush; this drops them now.

With --all every marker goes, including recent ones. Entries deleted
here may then come back from other copies of the log. A confirmation
prompt is shown unless --yes is given.

Example:
  tt purge
  tt purge --all --yes`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			handlers.Purge(d, purgeAllFlag, purgeYesFlag)
		})
	},
}

func init() {
	rootCmd.AddCommand(purgeCmd)
	purgeCmd.Flags().BoolVarP(&purgeYesFlag, "yes", "y", false, "skip confirmation prompt")
	purgeCmd.Flags().BoolVar(&purgeAllFlag, "all", false, "drop every deletion marker, not only expired ones")
}
