// Package handlers implements the CLI commands on top of the service layer.
// Each handler prints to deps.Stdout and, on failure, prints an error with
// hints to deps.Stderr and calls deps.Exit(1).
package handlers

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/entry"
	"github.com/xolan/timetracker/internal/filter"
	"github.com/xolan/timetracker/internal/service"
	"github.com/xolan/timetracker/internal/timeutil"
)

// CreateEntry logs a finished entry from "<meta> for <duration>"
func CreateEntry(deps *cli.Deps, project, rawInput string) {
	e, err := deps.Services.Entry.Create(project, rawInput)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingDuration):
			deps.Fail(errors.New("invalid format, missing 'for <duration>'"),
				"Usage: tt add <project> [meta] for <duration>",
				"Example: tt add acme fix login #bug for 1h30m")
		default:
			deps.Fail(err, "Use durations like '2h', '30m' or '1h30m', max 24h")
		}
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Logged: %s (%s)\n", cli.FormatEntry(e), entry.FormatDuration(e.Duration(deps.Services.Session.Now())))
}

// AddSpan logs a finished entry between two clock times
func AddSpan(deps *cli.Deps, project, meta, startStr, endStr string) {
	now := deps.Services.Session.Now()
	start, err := timeutil.ParseDateTime(startStr, now)
	if err != nil {
		deps.Fail(fmt.Errorf("invalid --start: %w", err))
		return
	}
	end, err := timeutil.ParseDateTime(endStr, now)
	if err != nil {
		deps.Fail(fmt.Errorf("invalid --end: %w", err))
		return
	}
	e, err := deps.Services.Entry.CreateSpan(project, meta, start, end)
	if err != nil {
		deps.Fail(err)
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Logged: %s %s (%s)\n",
		cli.FormatSpan(e, true), cli.FormatEntry(e), entry.FormatDuration(e.Duration(now)))
}

// ListPeriod lists entries for a named period such as "today" or "last-week"
func ListPeriod(deps *cli.Deps, period string, f *filter.Filter) {
	result, err := deps.Services.Entry.ListPeriod(period, f)
	if err != nil {
		deps.Fail(err, "Periods: today, yesterday, week, last-week, month, last-month, 'last N days'")
		return
	}
	renderList(deps, result, f)
}

// ListRange lists entries starting within r
func ListRange(deps *cli.Deps, r timeutil.Range, f *filter.Filter) {
	result, err := deps.Services.Entry.List(r, f)
	if err != nil {
		deps.Fail(err)
		return
	}
	renderList(deps, result, f)
}

func renderList(deps *cli.Deps, result *service.ListResult, f *filter.Filter) {
	period := cli.BuildPeriodWithFilters(result.Period, f)
	if len(result.Entries) == 0 {
		_, _ = fmt.Fprintf(deps.Stdout, "No entries found for %s\n", period)
		return
	}

	cli.Title(deps.Stdout, fmt.Sprintf("Entries for %s", period))
	_, _ = fmt.Fprintln(deps.Stdout, cli.EntryTable(result.Entries, deps.Services.Session.Now()))
	cli.Rule(deps.Stdout)
	_, _ = fmt.Fprintf(deps.Stdout, "Total: %s (%d %s)\n",
		entry.FormatDuration(result.Total), len(result.Entries), pluralEntries(len(result.Entries)))
}

// EditFlags carries the edit command's flags. Nil fields are unchanged.
type EditFlags struct {
	Project *string
	Meta    *string
	Start   *string
	End     *string
	Billed  *bool
}

// EditEntry edits an existing entry
func EditEntry(deps *cli.Deps, indexStr string, flags EditFlags) {
	index, ok := parseIndex(deps, indexStr)
	if !ok {
		return
	}

	changes := service.Edit{Project: flags.Project, Meta: flags.Meta, Billed: flags.Billed}
	now := deps.Services.Session.Now()
	if flags.Start != nil {
		t, err := timeutil.ParseDateTime(*flags.Start, now)
		if err != nil {
			deps.Fail(fmt.Errorf("invalid --start: %w", err))
			return
		}
		changes.Start = &t
	}
	if flags.End != nil {
		t, err := timeutil.ParseDateTime(*flags.End, now)
		if err != nil {
			deps.Fail(fmt.Errorf("invalid --end: %w", err))
			return
		}
		changes.End = &t
	}

	_, updated, err := deps.Services.Entry.Edit(index, changes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoChangesSpecified):
			deps.Fail(err, "Pass at least one of --project, --meta, --start, --end, --billed")
		case errors.Is(err, entry.ErrStartAfterEnd):
			deps.Fail(err, "The start time must not be after the end time")
		default:
			deps.Fail(err, "List entries with 'tt list' to see all indices")
		}
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Updated entry %d: %s %s (%s)\n", index,
		cli.FormatSpan(updated, true), cli.FormatEntry(updated), entry.FormatDuration(updated.Duration(now)))
}

// DeleteEntry deletes an entry with optional confirmation
func DeleteEntry(deps *cli.Deps, indexStr string, skipConfirm bool) {
	index, ok := parseIndex(deps, indexStr)
	if !ok {
		return
	}

	e, err := deps.Services.Entry.GetByIndex(index)
	if err != nil {
		deps.Fail(err, "List entries with 'tt list' to see all indices")
		return
	}

	_, _ = fmt.Fprintln(deps.Stdout, "Entry to delete:")
	_, _ = fmt.Fprintf(deps.Stdout, "  %s  %s\n", cli.FormatSpan(e, true), cli.FormatEntry(e))

	if !skipConfirm && !promptConfirmation(deps.Stdout, deps.Stdin, "Delete this entry?") {
		_, _ = fmt.Fprintln(deps.Stdout, "Deletion cancelled")
		return
	}

	if _, err := deps.Services.Entry.Delete(index); err != nil {
		deps.Fail(err)
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Deleted: %s\n", cli.FormatEntry(e))
	cli.Hintf(deps.Stdout, "Tip: Use 'tt undo' to bring it back\n")
}

// Undo reverts the most recent change
func Undo(deps *cli.Deps) {
	delta, err := deps.Services.Entry.Undo()
	if err != nil {
		if errors.Is(err, service.ErrNothingToUndo) {
			deps.Fail(err, "Changes before the last bulk edit or restore cannot be undone")
		} else {
			deps.Fail(err)
		}
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Undone: %s\n", delta.Summary())
}

// Redo re-applies the most recently undone change
func Redo(deps *cli.Deps) {
	delta, err := deps.Services.Entry.Redo()
	if err != nil {
		deps.Fail(err)
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Redone: %s\n", delta.Summary())
}

// ShowHistory prints the undo history, oldest first
func ShowHistory(deps *cli.Deps) {
	records := deps.Services.Entry.History()
	if len(records) == 0 {
		_, _ = fmt.Fprintln(deps.Stdout, "No changes to undo")
		return
	}
	cli.Title(deps.Stdout, "History")
	for _, r := range records {
		e := r.New
		if e == nil {
			e = r.Old
		}
		line := fmt.Sprintf("%-6s %s", r.Kind, cli.FormatEntry(*e))
		if r.Undone {
			_, _ = cli.FaintStyle.Fprintf(deps.Stdout, "%s (undone)\n", line)
			continue
		}
		_, _ = fmt.Fprintln(deps.Stdout, line)
	}
}

// BillEntries marks the entries at the given indices as billed or unbilled
func BillEntries(deps *cli.Deps, indexStrs []string, billed bool) {
	ids := make([]int64, 0, len(indexStrs))
	for _, s := range indexStrs {
		index, ok := parseIndex(deps, s)
		if !ok {
			return
		}
		e, err := deps.Services.Entry.GetByIndex(index)
		if err != nil {
			deps.Fail(err)
			return
		}
		ids = append(ids, e.ID)
	}

	n, err := deps.Services.Entry.SetBilled(ids, billed)
	if err != nil {
		deps.Fail(err)
		return
	}
	state := "billed"
	if !billed {
		state = "unbilled"
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Marked %d %s as %s\n", n, pluralEntries(n), state)
	cli.Hintf(deps.Stdout, "Note: bulk changes clear the undo history\n")
}

func parseIndex(deps *cli.Deps, s string) (int, bool) {
	index, err := strconv.Atoi(s)
	if err != nil {
		deps.Fail(fmt.Errorf("invalid index '%s', index must be a number", s),
			"List entries with 'tt list' to see available indices")
		return 0, false
	}
	if index < 1 {
		deps.Fail(fmt.Errorf("index must be 1 or greater (got %d)", index))
		return 0, false
	}
	return index, true
}

func pluralEntries(n int) string {
	if n == 1 {
		return "entry"
	}
	return "entries"
}

// promptConfirmation asks a yes/no question, defaulting to no
func promptConfirmation(stdout io.Writer, stdin io.Reader, question string) bool {
	_, _ = fmt.Fprintf(stdout, "%s [y/N]: ", question)

	scanner := bufio.NewScanner(stdin)
	if !scanner.Scan() {
		return false
	}

	response := strings.TrimSpace(scanner.Text())
	return response == "y" || response == "Y"
}
