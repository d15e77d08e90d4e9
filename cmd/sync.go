package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/cli/handlers"
	"github.com/xolan/timetracker/internal/logsync"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Keep the log in sync until interrupted",
	Long: `Run the sync scheduler in the foreground. Pending changes are written
to the log, edits made to the file by other programs are merged in, and a
daily backup is taken. Ctrl+C stops it after a final flush.

If the log file disappears you are asked what to do; without a terminal
entries go to a temporary log until the file comes back.

Examples:
  tt sync                   Run until Ctrl+C
  tt sync --once            Run one cycle and exit
  tt sync status            Show the log path and last sync
  tt sync switch ~/Dropbox/tt/log.csv`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		once, _ := cmd.Flags().GetBool("once")
		withRuntime(cmd, ModeLongRunning, func(ctx context.Context, d *cli.Deps, rt *Runtime) {
			if once {
				handlers.SyncNow(ctx, d)
				return
			}
			runScheduler(ctx, d, rt)
		})
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the log path and sync state",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			handlers.ShowSyncStatus(d)
		})
	},
}

var syncSwitchCmd = &cobra.Command{
	Use:   "switch <path>",
	Short: "Use another log file",
	Long: `Point tt at another log file. Entries from the current log are merged
into it and the choice is saved in the log_file setting.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			handlers.SwitchLog(d, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncSwitchCmd)
	syncCmd.Flags().Bool("once", false, "Run a single sync cycle and exit")
}

// runScheduler drives the session until a signal arrives or the user quits
// from the lost log prompt.
func runScheduler(ctx context.Context, d *cli.Deps, rt *Runtime) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := logsync.NewScheduler(rt.Services.Session, logsync.SchedulerOptions{
		LostPoll: rt.Config.LostPoll(),
		Watch:    true,
		Logger:   rt.Logger,
	})
	if err := sched.Start(ctx); err != nil {
		d.Fail(err)
		return
	}
	_, _ = fmt.Fprintf(d.Stdout, "Syncing %s (Ctrl+C to stop)\n", rt.Services.Sync.Status().LogPath)

	select {
	case <-ctx.Done():
	case <-sched.Done():
	}

	err := sched.Stop()
	switch {
	case errors.Is(err, logsync.ErrQuit):
		rt.Abandon()
		_, _ = fmt.Fprintln(d.Stdout, "Stopped without writing the log")
	case err != nil:
		d.Fail(err)
	default:
		_, _ = fmt.Fprintln(d.Stdout, "Stopped")
	}
}
