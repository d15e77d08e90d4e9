package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/cli/handlers"
)

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore [backup_number]",
	Short: "Restore the log from a backup",
	Long: `Replace the log with a snapshot from the backups directory.

By default the most recent backup is used. A number picks the backup at
that position in 'tt backup list'; a file name picks it directly. The
current log is snapshotted first.

Examples:
  tt restore       Restore from the most recent backup
  tt restore 2     Restore from the second newest backup`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		restoreFromBackup(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")
}

// restoreFromBackup handles the restore command logic
func restoreFromBackup(cmd *cobra.Command, args []string) {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	yes, _ := cmd.Flags().GetBool("yes")
	withRuntime(cmd, ModeOneShot, func(ctx context.Context, d *cli.Deps, _ *Runtime) {
		handlers.RestoreBackup(ctx, d, name, yes)
	})
}
