// Package cli provides the CLI presentation layer for tt.
// It handles command-line output formatting and user interaction.
package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/xolan/timetracker/internal/entry"
	"github.com/xolan/timetracker/internal/filter"
	"github.com/xolan/timetracker/internal/service"
	"github.com/xolan/timetracker/internal/timeutil"
)

// Output styles. fatih/color disables them when stdout is not a terminal.
var (
	TitleStyle   = color.New(color.Bold, color.Underline)
	HeaderStyle  = color.New(color.Bold)
	FaintStyle   = color.New(color.Faint)
	IndexStyle   = color.New(color.FgHiYellow, color.Faint)
	RunningStyle = color.New(color.FgGreen, color.Bold)
	WarnStyle    = color.New(color.FgYellow)
	ErrorStyle   = color.New(color.FgRed, color.Bold)
)

// Errorf writes a red error line.
func Errorf(w io.Writer, format string, args ...any) {
	_, _ = ErrorStyle.Fprintf(w, format, args...)
}

// Hintf writes a faint hint line.
func Hintf(w io.Writer, format string, args ...any) {
	_, _ = FaintStyle.Fprintf(w, format, args...)
}

// Title writes a bold underlined heading.
func Title(w io.Writer, title string) {
	_, _ = TitleStyle.Fprintln(w, title)
}

// FormatEntry formats an entry as "project: meta", or just the project when
// meta is empty.
func FormatEntry(e entry.Entry) string {
	if e.Meta == "" {
		return e.ProjectName()
	}
	return fmt.Sprintf("%s: %s", e.ProjectName(), e.Meta)
}

// FormatSpan renders an entry's start and end clock times. Running entries
// end in "now". When showDate is set the start date is prefixed.
func FormatSpan(e entry.Entry, showDate bool) string {
	end := "now"
	if e.End != nil {
		end = e.End.Format("15:04")
		if !sameDay(e.Start, *e.End) {
			end = e.End.Format("01-02 15:04")
		}
	}
	span := fmt.Sprintf("%s-%s", e.Start.Format("15:04"), end)
	if showDate {
		return e.Start.Format("2006-01-02") + " " + span
	}
	return span
}

// BilledMark is "$" for billed entries.
func BilledMark(billed bool) string {
	if billed {
		return "$"
	}
	return ""
}

// FormatDateRangeForDisplay formats a range for human-readable display.
func FormatDateRangeForDisplay(r timeutil.Range) string {
	start, end := r.Start, r.End
	if start.IsZero() {
		return "until " + end.Format("Jan 2, 2006")
	}
	if sameDay(start, end) {
		return start.Format("Mon, Jan 2, 2006")
	}
	if start.Year() == end.Year() {
		return fmt.Sprintf("%s - %s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))
	}
	return fmt.Sprintf("%s - %s", start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006"))
}

// BuildPeriodWithFilters appends filter information to the period description.
// Example: "today" -> "today (acme #bugfix @globex)"
func BuildPeriodWithFilters(period string, f *filter.Filter) string {
	if f.IsEmpty() {
		return period
	}
	return fmt.Sprintf("%s (%s)", period, FilterSummary(f))
}

// FilterSummary renders f the way it would be typed: "acme #tag @client".
func FilterSummary(f *filter.Filter) string {
	if f.IsEmpty() {
		return ""
	}
	var parts []string
	if f.Project != "" {
		parts = append(parts, f.Project)
	}
	for _, tag := range f.Tags {
		parts = append(parts, "#"+tag)
	}
	for _, c := range f.Clients {
		parts = append(parts, "@"+c)
	}
	if f.Billed != nil {
		if *f.Billed {
			parts = append(parts, "billed")
		} else {
			parts = append(parts, "unbilled")
		}
	}
	if f.Keyword != "" {
		parts = append(parts, fmt.Sprintf("%q", f.Keyword))
	}
	return strings.Join(parts, " ")
}

// Pluralize returns the singular or plural form of a word based on count
func Pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	return word + "s"
}

// SpansMultipleDays checks if indexed entries start on more than one day
func SpansMultipleDays(entries []service.IndexedEntry) bool {
	if len(entries) < 2 {
		return false
	}
	first := entries[0].Entry.Start
	for _, ie := range entries[1:] {
		if !sameDay(first, ie.Entry.Start) {
			return true
		}
	}
	return false
}

// FormatTimerStartTime formats the timer start time relative to now
func FormatTimerStartTime(startedAt, now time.Time) string {
	startTime := startedAt.Format("3:04 PM")
	if sameDay(startedAt, now) {
		return fmt.Sprintf("today at %s", startTime)
	}
	return fmt.Sprintf("%s at %s", startedAt.Format("Mon Jan 2"), startTime)
}

// EntryTable lays out indexed entries as index, span, duration, billed mark
// and description. Running entries are highlighted.
func EntryTable(entries []service.IndexedEntry, now time.Time) *uitable.Table {
	showDate := SpansMultipleDays(entries)

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, ie := range entries {
		e := ie.Entry
		dur := entry.FormatDuration(e.Duration(now))
		if e.Running() {
			dur = RunningStyle.Sprint(dur)
		}
		tbl.AddRow(
			IndexStyle.Sprintf("[%d]", ie.Index),
			FormatSpan(e, showDate),
			dur,
			BilledMark(e.Billed),
			FormatEntry(e),
		)
	}
	tbl.RightAlign(0)
	tbl.RightAlign(2)
	return tbl
}

// GroupTable lays out report groups with a trailing total row.
func GroupTable(groups []service.GroupData, total time.Duration) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(HeaderStyle.Sprint("Name"), HeaderStyle.Sprint("Time"), HeaderStyle.Sprint("Entries"))
	for _, g := range groups {
		tbl.AddRow(g.Name, entry.FormatDuration(g.Total), g.EntryCount)
	}
	tbl.AddRow(HeaderStyle.Sprint("Total"), HeaderStyle.Sprint(entry.FormatDuration(total)), "")
	tbl.RightAlign(1)
	tbl.RightAlign(2)
	return tbl
}

// Rule is a faint horizontal separator.
func Rule(w io.Writer) {
	_, _ = FaintStyle.Fprintln(w, strings.Repeat("-", 50))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
