package handlers

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/gosuri/uitable"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/osutil"
)

// ShowSyncStatus prints where entries live and the last sync result
func ShowSyncStatus(deps *cli.Deps) {
	st := deps.Services.Sync.Status()

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("Log file:", st.LogPath)
	if st.ActivePath != st.LogPath {
		tbl.AddRow("Writing to:", st.ActivePath)
	}
	state := "ok"
	switch {
	case st.Lost && st.UsingTemp:
		state = cli.WarnStyle.Sprint("lost, using temporary log")
	case st.Lost:
		state = cli.WarnStyle.Sprint("lost")
	}
	tbl.AddRow("State:", state)
	tbl.AddRow("Phase:", st.Phase)
	tbl.AddRow("Pending writes:", st.Pending)
	if !st.LastSync.IsZero() {
		tbl.AddRow("Last sync:", st.LastSync.Format("2006-01-02 15:04:05"))
	}
	if st.LastError != nil {
		tbl.AddRow("Last error:", cli.ErrorStyle.Sprint(st.LastError))
	}
	cli.Title(deps.Stdout, "Sync status")
	_, _ = fmt.Fprintln(deps.Stdout, tbl)
}

// SyncNow runs one sync cycle
func SyncNow(ctx context.Context, deps *cli.Deps) {
	if err := deps.Services.Sync.Now(ctx); err != nil {
		deps.Fail(err)
		return
	}
	st := deps.Services.Sync.Status()
	_, _ = fmt.Fprintf(deps.Stdout, "Synced %s\n", st.ActivePath)
}

// SwitchLog points tt at another log file, merging the current entries in
func SwitchLog(deps *cli.Deps, path string) {
	expanded, err := osutil.Expand(path)
	if err != nil {
		deps.Fail(err)
		return
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		deps.Fail(err)
		return
	}
	if err := deps.Services.Sync.SwitchLog(abs); err != nil {
		deps.Fail(err, "Check that the directory exists and is writable")
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Now using log file: %s\n", abs)
}

// BackupNow takes a snapshot of the log
func BackupNow(deps *cli.Deps) {
	path, pruned, err := deps.Services.Sync.Backup()
	if err != nil {
		deps.Fail(err)
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Backup written: %s\n", path)
	if len(pruned) > 0 {
		cli.Hintf(deps.Stdout, "Pruned %d old %s\n", len(pruned), cli.Pluralize("backup", len(pruned)))
	}
}

// ListBackups prints the snapshots, newest first
func ListBackups(deps *cli.Deps) {
	backups, err := deps.Services.Sync.Backups()
	if err != nil {
		deps.Fail(err)
		return
	}
	if len(backups) == 0 {
		_, _ = fmt.Fprintln(deps.Stdout, "No backups yet")
		cli.Hintf(deps.Stdout, "Take one with 'tt backup now'\n")
		return
	}

	cli.Title(deps.Stdout, "Backups")
	tbl := uitable.New()
	tbl.Separator = "  "
	for i, b := range backups {
		tbl.AddRow(cli.IndexStyle.Sprintf("[%d]", i+1), b.Name, b.Date.Format("2006-01-02"))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(deps.Stdout, tbl)
}

// RestoreBackup replaces the log with a snapshot after confirmation. name
// may be a file name or a 1-based position from ListBackups.
func RestoreBackup(ctx context.Context, deps *cli.Deps, name string, skipConfirm bool) {
	backups, err := deps.Services.Sync.Backups()
	if err != nil {
		deps.Fail(err)
		return
	}
	if len(backups) == 0 {
		deps.Fail(fmt.Errorf("no backups found"), "Take one with 'tt backup now'")
		return
	}
	if name == "" {
		name = backups[0].Name
	} else if n, err := strconv.Atoi(name); err == nil {
		if n < 1 || n > len(backups) {
			deps.Fail(fmt.Errorf("backup %d does not exist (have %d)", n, len(backups)))
			return
		}
		name = backups[n-1].Name
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Restore %s over %s\n", name, deps.Services.Sync.Status().LogPath)
	if !skipConfirm && !promptConfirmation(deps.Stdout, deps.Stdin, "Replace the current log?") {
		_, _ = fmt.Fprintln(deps.Stdout, "Restore cancelled")
		return
	}
	if err := deps.Services.Sync.Restore(ctx, name); err != nil {
		deps.Fail(err, "List backups with 'tt backup list'")
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Restored from %s\n", name)
	cli.Hintf(deps.Stdout, "The previous log was snapshotted first\n")
}
