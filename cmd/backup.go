package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/cli/handlers"
)

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage daily snapshots of the log",
	Long: `A snapshot of the log is taken once a day while 'tt sync' or 'tt tui'
runs. The newest backup_keep snapshots are always kept; older ones go.`,
}

var backupNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Take a snapshot of the log now",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			handlers.BackupNow(d)
		})
	},
}

var backupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List snapshots, newest first",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			handlers.ListBackups(d)
		})
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [name|n]",
	Short: "Replace the log with a snapshot",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		restoreFromBackup(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupNowCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupRestoreCmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")
}
