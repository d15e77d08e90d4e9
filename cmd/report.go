package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/cli/handlers"
	"github.com/xolan/timetracker/internal/service"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report [period] [#tag] [@client]",
	Short: "Total time grouped by project, tag or client",
	Long: `Total time for a period grouped by project, tag or client.

Examples:
  tt report                       Today by project
  tt report week -g tag           This week by tag
  tt report month @globex         This month's time for a client
  tt report --last 30 -g client   The last 30 days by client

Saved reports:
  tt report save weekly week -g client --unbilled
  tt report run weekly
  tt report list
  tt report delete weekly`,
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			runReport(cmd, d, args)
		})
	},
}

var reportRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a saved report",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			if cmd.Flags().Changed("group") {
				d.Fail(errGroupWithSaved, "Save the report again to change it")
				return
			}
			handlers.RunSavedReport(d, args[0])
		})
	},
}

var reportSaveCmd = &cobra.Command{
	Use:   "save <name> [period] [#tag] [@client]",
	Short: "Save a report definition",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			saveReport(cmd, d, args[0], args[1:])
		})
	},
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			handlers.ListReports(d)
		})
	},
}

var reportDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved report",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			handlers.DeleteReport(d, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportRunCmd)
	reportCmd.AddCommand(reportSaveCmd)
	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportDeleteCmd)

	reportCmd.PersistentFlags().StringP("group", "g", "project", "Group by project, tag or client")
	addRangeFlags(reportCmd)
}

// splitPeriod takes a leading period name off args.
func splitPeriod(args []string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "#") && !strings.HasPrefix(args[0], "@") {
		return args[0], args[1:]
	}
	return "today", args
}

// runReport handles the ad hoc report command logic
func runReport(cmd *cobra.Command, d *cli.Deps, args []string) {
	group, _ := cmd.Flags().GetString("group")
	period, args := splitPeriod(args)
	f, rest, err := filterFromFlags(cmd, args)
	if err != nil {
		d.Fail(err)
		return
	}
	if len(rest) > 0 {
		d.Fail(fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " ")))
		return
	}
	r, err := rangeFromFlags(cmd, d.Services.Session.Now())
	if err != nil {
		d.Fail(err)
		return
	}
	if r != nil {
		handlers.ReportRange(d, group, *r, f)
		return
	}
	handlers.ReportPeriod(d, group, period, f)
}

// saveReport builds a definition from the period, group and filter flags
func saveReport(cmd *cobra.Command, d *cli.Deps, name string, args []string) {
	group, _ := cmd.Flags().GetString("group")
	g, err := service.ParseGroupBy(group)
	if err != nil {
		d.Fail(err)
		return
	}
	period, args := splitPeriod(args)
	f, rest, err := filterFromFlags(cmd, args)
	if err != nil {
		d.Fail(err)
		return
	}
	if len(rest) > 0 {
		d.Fail(fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " ")))
		return
	}

	def := service.ReportDefinition{
		Period:  period,
		GroupBy: g,
		Project: f.Project,
		Tags:    f.Tags,
		Clients: f.Clients,
	}
	if f.Billed != nil {
		def.Billed = "no"
		if *f.Billed {
			def.Billed = "yes"
		}
	}
	handlers.SaveReport(d, name, def)
}
