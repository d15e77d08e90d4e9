package handlers

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gosuri/uitable"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/service"
	"github.com/xolan/timetracker/internal/settings"
)

// ShowConfig displays the config file values and the runtime settings
func ShowConfig(deps *cli.Deps) {
	cfg := deps.Services.Config.Get()
	path := deps.Services.Config.GetPath()

	cli.Title(deps.Stdout, "Configuration")
	_, _ = fmt.Fprintf(deps.Stdout, "Config file: %s\n", path)
	if deps.Services.Config.Exists() {
		_, _ = fmt.Fprintln(deps.Stdout, "Status: File exists")
	} else {
		_, _ = fmt.Fprintln(deps.Stdout, "Status: Using defaults (no config file)")
	}
	cli.Rule(deps.Stdout)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("data_dir", orDefault(cfg.DataDir, "(default)"))
	tbl.AddRow("timezone", cfg.Timezone)
	tbl.AddRow("week_start_day", cfg.WeekStartDay)
	tbl.AddRow("backup_keep", cfg.BackupKeep)
	tbl.AddRow("lost_poll_seconds", cfg.LostPollSeconds)
	tbl.AddRow("log_level", cfg.LogLevel)
	tbl.AddRow("theme", orDefault(cfg.Theme, "(default)"))
	_, _ = fmt.Fprintln(deps.Stdout, tbl)

	_, _ = fmt.Fprintln(deps.Stdout)
	_, _ = cli.HeaderStyle.Fprintln(deps.Stdout, "Settings")
	dump := deps.Services.Config.Settings(deps.Services.Session.DefaultLogPath())
	keys := make([]string, 0, len(dump))
	for k := range dump {
		if k == settings.KeyReports {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	tbl = uitable.New()
	tbl.Separator = "  "
	for _, k := range keys {
		tbl.AddRow(k, dump[k])
	}
	_, _ = fmt.Fprintln(deps.Stdout, tbl)
}

// InitConfig creates a sample config file
func InitConfig(deps *cli.Deps) {
	if err := deps.Services.Config.Init(); err != nil {
		if errors.Is(err, service.ErrConfigExists) {
			deps.Fail(err, "Change values with 'tt config set <key> <value>'")
		} else {
			deps.Fail(err)
		}
		return
	}

	path := deps.Services.Config.GetPath()
	_, _ = fmt.Fprintf(deps.Stdout, "Created config file: %s\n", path)
	_, _ = fmt.Fprintln(deps.Stdout, "Edit this file to customize your settings.")
}

// SetConfig changes one setting or config key
func SetConfig(deps *cli.Deps, key, value string) {
	if err := deps.Services.Config.Set(key, value); err != nil {
		if errors.Is(err, settings.ErrUnknownKey) {
			deps.Fail(err, "Run 'tt config show' for the known keys")
		} else {
			deps.Fail(err)
		}
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "%s = %s\n", key, value)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
