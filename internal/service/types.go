// Package service provides the business logic layer for tt. It wraps the
// sync session, config, stats and filter packages, giving the CLI and TUI
// one API over the entry store.
package service

import (
	"time"

	"github.com/xolan/timetracker/internal/entry"
	"github.com/xolan/timetracker/internal/stats"
	"github.com/xolan/timetracker/internal/storage"
	"github.com/xolan/timetracker/internal/timeutil"
)

// IndexedEntry is an entry with its 1-based position in the store, the
// index edit and delete accept.
type IndexedEntry struct {
	Entry entry.Entry
	Index int
}

// ListResult contains the results of listing entries
type ListResult struct {
	Entries []IndexedEntry
	Period  string // Human-readable period description
	Range   timeutil.Range
	Total   time.Duration
}

// TimerStatus represents the current state of the timer
type TimerStatus struct {
	Running      bool
	Entry        entry.Entry
	Elapsed      time.Duration
	Inconsistent []entry.Entry // other entries with no end time
}

// StatsResult contains statistics for a time period
type StatsResult struct {
	Statistics    stats.Statistics
	ProjectStats  []stats.Breakdown
	TagStats      []stats.Breakdown
	ClientStats   []stats.Breakdown
	Comparison    string // Comparison with previous period (e.g., "up 2h from last week")
	Period        string
	Range         timeutil.Range
	PreviousRange timeutil.Range
}

// ReportData contains report data grouped by project, tag or client
type ReportData struct {
	Groups     []GroupData
	Total      time.Duration
	EntryCount int
	Period     string
	Range      timeutil.Range
}

// GroupData represents a single group in a report
type GroupData struct {
	Name       string
	Total      time.Duration
	EntryCount int
}

// SearchResult contains search results
type SearchResult struct {
	Entries []IndexedEntry
	Query   string
	Total   int
}

// SyncStatus describes where entries are read from and written to.
type SyncStatus struct {
	LogPath    string
	ActivePath string
	Lost       bool
	UsingTemp  bool
	Pending    bool
	Phase      string
	LastSync   time.Time
	LastError  error
}

// ValidateResult summarizes a read-only check of the log file.
type ValidateResult struct {
	Path       string
	Entries    int
	Tombstones int
	Extra      []string
	Warnings   []storage.ParseWarning
	// Dirty is set when the next sync would rewrite rows.
	Dirty bool
}
