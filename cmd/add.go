package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/cli/handlers"
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add <project> [meta] for <duration>",
	Short: "Log a finished entry",
	Long: `Log a finished entry for a project.

With "for <duration>" the entry ends now. With --start and --end it covers
the given times; a bare 15:04 is taken on today's date.

Examples:
  tt add acme fix login #bug for 1h30m
  tt add globex call @initech for 20m
  tt add acme planning --start 09:00 --end 10:15
  tt add acme review --start "2024-01-14 16:00" --end "2024-01-14 17:00"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			project, rest := args[0], strings.Join(args[1:], " ")
			switch {
			case start == "" && end == "":
				handlers.CreateEntry(d, project, rest)
			case start == "" || end == "":
				d.Fail(errors.New("--start and --end must be used together"),
					"Or log a duration: tt add <project> [meta] for <duration>")
			default:
				handlers.AddSpan(d, project, rest, start, end)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().String("start", "", "Start time (15:04 or 2006-01-02 15:04)")
	addCmd.Flags().String("end", "", "End time (15:04 or 2006-01-02 15:04)")
}
