package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/entry"
	"github.com/xolan/timetracker/internal/filter"
	"github.com/xolan/timetracker/internal/timeutil"
)

// allTime covers every entry a log can hold.
var allTime = timeutil.Range{End: time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)}

// Validate reads the log and reports rows a sync would drop or rewrite
func Validate(deps *cli.Deps) {
	res, err := deps.Services.Sync.Validate()
	if err != nil {
		deps.Fail(err, "Check that the log file exists and is readable")
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Log file: %s\n", res.Path)
	_, _ = fmt.Fprintf(deps.Stdout, "Entries: %d, deleted markers: %d\n", res.Entries, res.Tombstones)
	if len(res.Extra) > 0 {
		_, _ = fmt.Fprintf(deps.Stdout, "Extra columns: %v\n", res.Extra)
	}

	if len(res.Warnings) == 0 {
		_, _ = fmt.Fprintln(deps.Stdout, "No problems found")
		return
	}
	_, _ = cli.WarnStyle.Fprintf(deps.Stdout, "Found %d %s:\n", len(res.Warnings), cli.Pluralize("problem", len(res.Warnings)))
	for _, w := range res.Warnings {
		_, _ = fmt.Fprintf(deps.Stdout, "  %s\n", w)
	}
	if res.Dirty {
		cli.Hintf(deps.Stdout, "The next sync rewrites the file\n")
	}
	deps.Exit(1)
}

// Purge drops deletion markers. Without all only markers older than the
// grace window go.
func Purge(deps *cli.Deps, all, skipConfirm bool) {
	if all {
		n := len(deps.Services.Entry.Tombstones())
		if n == 0 {
			_, _ = fmt.Fprintln(deps.Stdout, "No deletion markers to purge")
			return
		}
		_, _ = fmt.Fprintf(deps.Stdout, "%d deletion %s will be dropped.\n", n, cli.Pluralize("marker", n))
		_, _ = cli.WarnStyle.Fprintln(deps.Stdout, "Entries deleted here may come back from other copies of the log.")
		if !skipConfirm && !promptConfirmation(deps.Stdout, deps.Stdin, "Purge all deletion markers?") {
			_, _ = fmt.Fprintln(deps.Stdout, "Purge cancelled")
			return
		}
	}

	n, err := deps.Services.Entry.PurgeTombstones(all)
	if err != nil {
		deps.Fail(err)
		return
	}
	if n == 0 {
		_, _ = fmt.Fprintln(deps.Stdout, "No deletion markers to purge")
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Purged %d deletion %s\n", n, cli.Pluralize("marker", n))
}

type exportEntry struct {
	Index    int        `json:"index"`
	ID       int64      `json:"id"`
	Project  string     `json:"project"`
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end,omitempty"`
	Duration int64      `json:"duration_seconds"`
	Meta     string     `json:"meta,omitempty"`
	Tags     []string   `json:"tags,omitempty"`
	Clients  []string   `json:"clients,omitempty"`
	Billed   bool       `json:"billed"`
}

type exportMetadata struct {
	ExportedAt   time.Time `json:"export_timestamp"`
	TotalEntries int       `json:"total_entries"`
	From         string    `json:"from,omitempty"`
	To           string    `json:"to,omitempty"`
	Filter       string    `json:"filter,omitempty"`
}

// ExportJSON writes matching entries with export metadata. A nil range
// exports everything.
func ExportJSON(deps *cli.Deps, r *timeutil.Range, f *filter.Filter) {
	rng := allTime
	if r != nil {
		rng = *r
	}
	result, err := deps.Services.Entry.List(rng, f)
	if err != nil {
		deps.Fail(err)
		return
	}

	now := deps.Services.Session.Now()
	out := struct {
		Metadata exportMetadata `json:"metadata"`
		Entries  []exportEntry  `json:"entries"`
	}{
		Metadata: exportMetadata{ExportedAt: now, TotalEntries: len(result.Entries)},
		Entries:  make([]exportEntry, 0, len(result.Entries)),
	}
	if r != nil {
		if !r.Start.IsZero() {
			out.Metadata.From = r.Start.Format("2006-01-02")
		}
		out.Metadata.To = r.End.Format("2006-01-02")
	}
	out.Metadata.Filter = cli.FilterSummary(f)
	for _, ie := range result.Entries {
		e := ie.Entry
		out.Entries = append(out.Entries, exportEntry{
			Index:    ie.Index,
			ID:       e.ID,
			Project:  e.Project,
			Start:    e.Start,
			End:      e.End,
			Duration: int64(e.Duration(now) / time.Second),
			Meta:     e.Meta,
			Tags:     e.Tags(),
			Clients:  e.Clients(),
			Billed:   e.Billed,
		})
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		deps.Fail(fmt.Errorf("encode JSON: %w", err))
	}
}

// ExportCSV writes matching entries in the log's own CSV layout, without
// deletion markers.
func ExportCSV(deps *cli.Deps, r *timeutil.Range, f *filter.Filter) {
	rng := allTime
	if r != nil {
		rng = *r
	}
	result, err := deps.Services.Entry.List(rng, f)
	if err != nil {
		deps.Fail(err)
		return
	}
	entries := make([]entry.Entry, 0, len(result.Entries))
	for _, ie := range result.Entries {
		entries = append(entries, ie.Entry)
	}
	_, _ = fmt.Fprint(deps.Stdout, deps.Services.Session.Codec().Encode(entries, nil, nil))
}
