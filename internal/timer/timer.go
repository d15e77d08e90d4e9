// Package timer binds the running entry of the log to the active timer.
package timer

import (
	"sort"
	"time"

	"github.com/xolan/timetracker/internal/entry"
)

// State is a snapshot of the active timer
type State struct {
	ID        int64
	StartedAt time.Time
	Project   string
	Meta      string
}

// FromEntry builds the timer state for a running entry.
func FromEntry(e entry.Entry) State {
	return State{ID: e.ID, StartedAt: e.Start, Project: e.Project, Meta: e.Meta}
}

// Elapsed returns how long the timer has been running at now.
func (s State) Elapsed(now time.Time) time.Duration {
	if now.Before(s.StartedAt) {
		return 0
	}
	return now.Sub(s.StartedAt)
}

// Binding records which entry, if any, is the active timer. The zero value
// is unbound.
type Binding struct {
	id    int64
	bound bool
}

// Bind makes the entry with id the active timer.
func (b *Binding) Bind(id int64) {
	b.id = id
	b.bound = true
}

// Clear unbinds the active timer.
func (b *Binding) Clear() {
	b.id = 0
	b.bound = false
}

// ID returns the bound entry ID.
func (b *Binding) ID() (int64, bool) {
	return b.id, b.bound
}

// Is reports whether id is the bound entry.
func (b *Binding) Is(id int64) bool {
	return b.bound && b.id == id
}

// Resolve picks the active timer among entries: the running entry with the
// latest start, ties broken by the higher ID. The remaining running entries
// are returned as inconsistent, oldest first. ok is false when nothing runs.
func Resolve(entries []entry.Entry) (active entry.Entry, inconsistent []entry.Entry, ok bool) {
	var running []entry.Entry
	for _, e := range entries {
		if e.Running() {
			running = append(running, e)
		}
	}
	if len(running) == 0 {
		return entry.Entry{}, nil, false
	}

	sort.SliceStable(running, func(i, j int) bool {
		if !running[i].Start.Equal(running[j].Start) {
			return running[i].Start.Before(running[j].Start)
		}
		return running[i].ID < running[j].ID
	})
	last := len(running) - 1
	return running[last], running[:last], true
}
