package handlers

import (
	"errors"
	"fmt"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/entry"
	"github.com/xolan/timetracker/internal/service"
	"github.com/xolan/timetracker/internal/timer"
)

// StartTimer starts a running entry for project
func StartTimer(deps *cli.Deps, project, meta string, force bool) {
	state, existing, err := deps.Services.Timer.Start(project, meta, force)
	if err != nil {
		if errors.Is(err, service.ErrTimerAlreadyRunning) && existing != nil {
			now := deps.Services.Session.Now()
			_, _ = cli.WarnStyle.Fprintln(deps.Stderr, "Warning: A timer is already running")
			_, _ = fmt.Fprintf(deps.Stderr, "Current timer: %s\n", describeTimer(*existing))
			_, _ = fmt.Fprintf(deps.Stderr, "Started: %s\n", cli.FormatTimerStartTime(existing.StartedAt, now))
			_, _ = fmt.Fprintln(deps.Stderr)
			_, _ = fmt.Fprintln(deps.Stderr, "Options:")
			_, _ = fmt.Fprintln(deps.Stderr, "  - Stop the current timer with 'tt stop'")
			_, _ = fmt.Fprintln(deps.Stderr, "  - Stop it and start this one with 'tt start <project> --force'")
			deps.Exit(1)
			return
		}
		deps.Fail(err)
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Timer started: %s\n", describeTimer(*state))
	if force && existing != nil {
		_, _ = fmt.Fprintf(deps.Stdout, "(Stopped previous timer: %s)\n", describeTimer(*existing))
	}
}

// StopTimer ends the running entry
func StopTimer(deps *cli.Deps) {
	e, err := deps.Services.Timer.Stop()
	if err != nil {
		if errors.Is(err, service.ErrNoTimerRunning) {
			deps.Fail(err, "Start a timer with 'tt start <project>'")
		} else {
			deps.Fail(err)
		}
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Stopped: %s (%s)\n",
		cli.FormatEntry(e), entry.FormatDuration(e.Duration(deps.Services.Session.Now())))
}

// CancelTimer discards the running entry
func CancelTimer(deps *cli.Deps) {
	e, err := deps.Services.Timer.Cancel()
	if err != nil {
		deps.Fail(err)
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Cancelled: %s\n", cli.FormatEntry(e))
	cli.Hintf(deps.Stdout, "Tip: Use 'tt undo' to bring it back\n")
}

// ShowTimerStatus shows the running timer and any stray open entries
func ShowTimerStatus(deps *cli.Deps) {
	status, err := deps.Services.Timer.Status()
	if err != nil {
		deps.Fail(err)
		return
	}

	if !status.Running {
		_, _ = fmt.Fprintln(deps.Stdout, "No timer running")
		_, _ = fmt.Fprintln(deps.Stdout, "Start a timer with: tt start <project>")
	} else {
		state := timer.FromEntry(status.Entry)
		_, _ = cli.RunningStyle.Fprintln(deps.Stdout, "Timer running:")
		_, _ = fmt.Fprintf(deps.Stdout, "  %s\n", describeTimer(state))
		_, _ = fmt.Fprintf(deps.Stdout, "  Started: %s\n", cli.FormatTimerStartTime(state.StartedAt, deps.Services.Session.Now()))
		_, _ = fmt.Fprintf(deps.Stdout, "  Elapsed: %s\n", entry.FormatDuration(status.Elapsed))
	}

	if len(status.Inconsistent) > 0 {
		_, _ = cli.WarnStyle.Fprintf(deps.Stdout, "Warning: %d other %s without an end time:\n",
			len(status.Inconsistent), pluralEntries(len(status.Inconsistent)))
		for _, e := range status.Inconsistent {
			_, _ = fmt.Fprintf(deps.Stdout, "  %s  %s\n", cli.FormatSpan(e, true), cli.FormatEntry(e))
		}
	}
}

func describeTimer(s timer.State) string {
	return cli.FormatEntry(entry.Entry{Project: s.Project, Meta: s.Meta})
}
