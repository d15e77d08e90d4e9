package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/logsync"
	"github.com/xolan/timetracker/internal/tui"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	Long: `Launch the interactive Terminal User Interface for tt.

The sync scheduler runs underneath, so edits made to the log by other
programs show up while the TUI is open. A lost log file switches to the
temporary log and is reported in the status bar.

Views available:
  - Entries: Add, edit, delete, bill and search entries; undo and redo
  - Timer: Start, stop and cancel the timer
  - Stats: Weekly and monthly statistics
  - Config: Configuration, runtime settings and theme

Keyboard shortcuts:
  - Tab/Shift+Tab: Navigate between views
  - 1-4: Jump to specific view
  - j/k or arrows: Navigate within lists
  - u / ctrl+r: Undo / redo
  - S: Sync with the log file now
  - ?: Show help
  - q: Quit`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runTUI(cmd)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	// Add --tui flag to root command for quick access
	rootCmd.PersistentFlags().Bool("tui", false, "Launch interactive terminal UI")
}

// runTUI opens the session, starts the scheduler and runs the TUI on top
func runTUI(cmd *cobra.Command) {
	withRuntime(cmd, ModeInteractive, func(ctx context.Context, d *cli.Deps, rt *Runtime) {
		sched := logsync.NewScheduler(rt.Services.Session, logsync.SchedulerOptions{
			LostPoll: rt.Config.LostPoll(),
			Watch:    true,
			Logger:   rt.Logger,
		})
		if err := sched.Start(ctx); err != nil {
			d.Fail(err)
			return
		}

		runErr := tui.Run(ctx, rt.Services, sched)
		stopErr := sched.Stop()
		if errors.Is(stopErr, logsync.ErrQuit) {
			rt.Abandon()
			stopErr = nil
		}
		if err := errors.Join(runErr, stopErr); err != nil {
			d.Fail(err)
		}
	})
}

// CheckTUIFlag checks if the --tui flag is set and runs the TUI if so.
// Returns true if the TUI was launched, false otherwise.
func CheckTUIFlag(cmd *cobra.Command) bool {
	tuiFlag, _ := cmd.Root().PersistentFlags().GetBool("tui")
	if tuiFlag {
		runTUI(cmd)
		return true
	}
	return false
}
