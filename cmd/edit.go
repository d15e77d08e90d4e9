package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/cli/handlers"
)

// editCmd represents the edit command
var editCmd = &cobra.Command{
	Use:   "edit <index>",
	Short: "Edit an existing entry",
	Long: `Edit the project, meta text, times or billed flag of an entry.

Usage:
  tt edit <index> --meta 'new text'          Replace the meta text
  tt edit <index> --project globex           Move to another project
  tt edit <index> --start 09:15 --end 10:00  Change the times
  tt edit <index> --billed=false             Clear the billed flag

The index refers to the entry number shown in list output (starting from 1).
At least one flag is required.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := editFlags(cmd)
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			handlers.EditEntry(d, args[0], flags)
		})
	},
}

func init() {
	rootCmd.AddCommand(editCmd)

	// --project here shadows the root filter flag.
	editCmd.Flags().String("project", "", "New project for the entry")
	editCmd.Flags().String("meta", "", "New meta text for the entry")
	editCmd.Flags().String("start", "", "New start time (15:04 or 2006-01-02 15:04)")
	editCmd.Flags().String("end", "", "New end time (15:04 or 2006-01-02 15:04)")
	editCmd.Flags().Bool("billed", false, "Set the billed flag")
}

// editFlags collects only the flags the user set.
func editFlags(cmd *cobra.Command) handlers.EditFlags {
	var f handlers.EditFlags
	str := func(name string) *string {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, _ := cmd.Flags().GetString(name)
		return &v
	}
	f.Project = str("project")
	f.Meta = str("meta")
	f.Start = str("start")
	f.End = str("end")
	if cmd.Flags().Changed("billed") {
		v, _ := cmd.Flags().GetBool("billed")
		f.Billed = &v
	}
	return f
}
