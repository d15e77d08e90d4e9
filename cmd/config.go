package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/cli/handlers"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display or manage configuration settings",
	Long: `Display the effective configuration and runtime settings.

tt works without a configuration file. All settings have defaults:
  - data_dir: ~/.local/share/time-tracker
  - timezone: Local (system timezone)
  - backup_keep: 7
  - lost_poll_seconds: 5
  - log_level: warn
  - week_start_day: monday

Configuration file location:
  ~/.config/time-tracker/config.toml           Linux
  ~/Library/Application Support/time-tracker   macOS
  %AppData%\time-tracker\config.toml           Windows

Runtime settings (log_file, sync_interval, auto_temp_log,
add_projects_from_log) live in the data directory and are changed with
'tt config set'.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			handlers.ShowConfig(d)
		})
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configuration",
	Args:  cobra.NoArgs,
	Run:   configCmd.Run,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented config file with every option",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			handlers.InitConfig(d)
		})
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a runtime setting",
	Long: `Change a runtime setting.

Keys:
  log_file               Path of the CSV log
  sync_interval          Seconds between sync cycles
  auto_temp_log          Switch to the temporary log without asking (true/false)
  add_projects_from_log  Register projects seen in the log (true/false)`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		withRuntime(cmd, ModeOneShot, func(_ context.Context, d *cli.Deps, _ *Runtime) {
			handlers.SetConfig(d, args[0], args[1])
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
}
