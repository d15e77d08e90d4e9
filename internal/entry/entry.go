package entry

import (
	"errors"
	"fmt"
	"time"
)

const (
	// NoProject is the registry placeholder for entries without a project
	NoProject = "(no project)"
	// GraceWindow is how long a tombstone is retained before it may be dropped
	GraceWindow = 48 * time.Hour
)

// ErrStartAfterEnd is returned when an entry ends before it starts
var ErrStartAfterEnd = errors.New("start time is after end time")

// ErrMissingStart is returned when an entry has no start time
var ErrMissingStart = errors.New("start time is required")

// Entry represents a single time tracking entry.
// End is nil while the entry is running.
type Entry struct {
	ID      int64
	Project string
	Start   time.Time
	End     *time.Time
	Billed  bool
	Meta    string
	Extra   map[string]string
}

// Tombstone marks a deleted entry so the deletion can propagate through
// later reconciliations.
type Tombstone struct {
	ID        int64
	DeletedAt time.Time
}

// Expired reports whether the tombstone is older than GraceWindow.
func (t Tombstone) Expired(now time.Time) bool {
	return now.Sub(t.DeletedAt) > GraceWindow
}

// Running reports whether the entry has no end time.
func (e Entry) Running() bool {
	return e.End == nil
}

// Duration returns the elapsed time of the entry. Running entries are
// measured up to now.
func (e Entry) Duration(now time.Time) time.Duration {
	end := now
	if e.End != nil {
		end = *e.End
	}
	if end.Before(e.Start) {
		return 0
	}
	return end.Sub(e.Start)
}

// Validate checks the start/end invariants.
func (e Entry) Validate() error {
	if e.Start.IsZero() {
		return ErrMissingStart
	}
	if e.End != nil && e.End.Before(e.Start) {
		return fmt.Errorf("%w: %s > %s", ErrStartAfterEnd,
			e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
	}
	return nil
}

// Normalize truncates timestamps to whole seconds, the precision of the log file,
// so an entry read back after a flush compares equal.
func (e Entry) Normalize() Entry {
	e.Start = e.Start.Truncate(time.Second)
	if e.End != nil {
		end := e.End.Truncate(time.Second)
		e.End = &end
	}
	return e
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	if e.End != nil {
		end := *e.End
		e.End = &end
	}
	if e.Extra != nil {
		extra := make(map[string]string, len(e.Extra))
		for k, v := range e.Extra {
			extra[k] = v
		}
		e.Extra = extra
	}
	return e
}

// Equal compares every persisted field. A missing extra column equals an
// empty one, since the log writes both the same way.
func (e Entry) Equal(o Entry) bool {
	if e.ID != o.ID || e.Project != o.Project || e.Billed != o.Billed || e.Meta != o.Meta {
		return false
	}
	if !e.Start.Equal(o.Start) {
		return false
	}
	if (e.End == nil) != (o.End == nil) {
		return false
	}
	if e.End != nil && !e.End.Equal(*o.End) {
		return false
	}
	return equalExtra(e.Extra, o.Extra)
}

func equalExtra(a, b map[string]string) bool {
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	for k, v := range b {
		if a[k] != v {
			return false
		}
	}
	return true
}

// ProjectName returns the project, or NoProject when empty.
func (e Entry) ProjectName() string {
	if e.Project == "" {
		return NoProject
	}
	return e.Project
}

// Ptr returns a pointer to t. Handy for End fields.
func Ptr(t time.Time) *time.Time {
	return &t
}
