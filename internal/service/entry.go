package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xolan/timetracker/internal/config"
	"github.com/xolan/timetracker/internal/entry"
	"github.com/xolan/timetracker/internal/filter"
	"github.com/xolan/timetracker/internal/logsync"
	"github.com/xolan/timetracker/internal/store"
	"github.com/xolan/timetracker/internal/timeutil"
)

// Common errors for the entry service
var (
	ErrMissingDuration    = errors.New("missing 'for <duration>' in input")
	ErrInvalidIndex       = errors.New("invalid entry index")
	ErrNoChangesSpecified = errors.New("at least one change must be specified")
	ErrNothingToUndo      = store.ErrNothingToUndo
	ErrNothingToRedo      = store.ErrNothingToRedo
)

// EntryService provides operations for managing time tracking entries
type EntryService struct {
	session *logsync.Session
	config  config.Config
}

// NewEntryService creates a new EntryService
func NewEntryService(session *logsync.Session, cfg config.Config) *EntryService {
	return &EntryService{
		session: session,
		config:  cfg,
	}
}

// Create adds a finished entry from "<meta> for <duration>", ending now.
// Example: "fix login @acme #bug for 1h30m". The meta part may be empty.
func (s *EntryService) Create(project, rawInput string) (entry.Entry, error) {
	meta, d, err := splitDuration(rawInput)
	if err != nil {
		return entry.Entry{}, err
	}
	end := s.session.Now()
	return s.CreateSpan(project, meta, end.Add(-d), end)
}

// CreateSpan adds a finished entry from start to end.
func (s *EntryService) CreateSpan(project, meta string, start, end time.Time) (entry.Entry, error) {
	e := entry.Entry{
		Project: strings.TrimSpace(project),
		Start:   start,
		End:     entry.Ptr(end),
		Meta:    strings.TrimSpace(meta),
	}
	if err := e.Normalize().Validate(); err != nil {
		return entry.Entry{}, err
	}
	delta, err := s.session.Apply(store.Command{Kind: store.CmdAdd, Entry: e})
	if err != nil {
		return entry.Entry{}, err
	}
	return s.get(delta.Added[0])
}

// splitDuration separates the trailing " for <duration>" from raw input.
func splitDuration(raw string) (string, time.Duration, error) {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	idx := strings.LastIndex(lower, " for ")
	var meta, dur string
	switch {
	case idx >= 0:
		meta, dur = raw[:idx], raw[idx+len(" for "):]
	case strings.HasPrefix(lower, "for "):
		dur = raw[len("for "):]
	default:
		return "", 0, ErrMissingDuration
	}
	d, err := entry.ParseDuration(strings.TrimSpace(dur))
	if err != nil {
		return "", 0, fmt.Errorf("invalid duration '%s': %w", strings.TrimSpace(dur), err)
	}
	return strings.TrimSpace(meta), d, nil
}

// List returns entries starting within r that match f, with their store
// indexes.
func (s *EntryService) List(r timeutil.Range, f *filter.Filter) (*ListResult, error) {
	now := s.session.Now()
	result := &ListResult{Range: r, Period: r.String()}
	s.session.View(func(st *store.Store) {
		for i, e := range st.Entries() {
			if !r.Contains(e.Start) || !f.Matches(e) {
				continue
			}
			result.Entries = append(result.Entries, IndexedEntry{Entry: e, Index: i + 1})
			result.Total += e.Duration(now)
		}
	})
	return result, nil
}

// ListPeriod lists a named period such as "today" or "last-week".
func (s *EntryService) ListPeriod(period string, f *filter.Filter) (*ListResult, error) {
	r, err := timeutil.Period(period, s.session.Now(), s.config.WeekStart())
	if err != nil {
		return nil, err
	}
	res, err := s.List(r, f)
	if err != nil {
		return nil, err
	}
	if period != "" {
		res.Period = period
	} else {
		res.Period = "today"
	}
	return res, nil
}

// GetByIndex returns the entry at a 1-based index.
func (s *EntryService) GetByIndex(index int) (entry.Entry, error) {
	if index < 1 {
		return entry.Entry{}, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	var (
		e   entry.Entry
		n   int
		err error
	)
	s.session.View(func(st *store.Store) {
		n = st.Len()
		if index <= n {
			e, err = st.At(index - 1)
		}
	})
	if index > n {
		return entry.Entry{}, fmt.Errorf("%w: %d (have %d entries)", store.ErrIndexOutOfRange, index, n)
	}
	return e, err
}

// Edit holds optional replacements for an entry's fields.
type Edit struct {
	Project *string
	Meta    *string
	Start   *time.Time
	End     *time.Time
	Billed  *bool
}

// Empty reports whether no field is set.
func (e Edit) Empty() bool {
	return e.Project == nil && e.Meta == nil && e.Start == nil && e.End == nil && e.Billed == nil
}

// Apply copies the set fields onto en.
func (e Edit) Apply(en entry.Entry) entry.Entry {
	if e.Project != nil {
		en.Project = strings.TrimSpace(*e.Project)
	}
	if e.Meta != nil {
		en.Meta = strings.TrimSpace(*e.Meta)
	}
	if e.Start != nil {
		en.Start = *e.Start
	}
	if e.End != nil {
		en.End = entry.Ptr(*e.End)
	}
	if e.Billed != nil {
		en.Billed = *e.Billed
	}
	return en
}

// Edit changes the entry at a 1-based index and returns old and new versions.
func (s *EntryService) Edit(index int, changes Edit) (entry.Entry, entry.Entry, error) {
	if changes.Empty() {
		return entry.Entry{}, entry.Entry{}, ErrNoChangesSpecified
	}
	old, err := s.GetByIndex(index)
	if err != nil {
		return entry.Entry{}, entry.Entry{}, err
	}
	updated := changes.Apply(old)
	if _, err := s.session.Apply(store.Command{Kind: store.CmdEdit, Entry: updated}); err != nil {
		return entry.Entry{}, entry.Entry{}, err
	}
	updated, err = s.get(old.ID)
	return old, updated, err
}

// Delete removes the entry at a 1-based index, leaving a tombstone so the
// deletion reaches other copies of the log.
func (s *EntryService) Delete(index int) (entry.Entry, error) {
	e, err := s.GetByIndex(index)
	if err != nil {
		return entry.Entry{}, err
	}
	if _, err := s.session.Apply(store.Command{Kind: store.CmdDelete, ID: e.ID}); err != nil {
		return entry.Entry{}, err
	}
	return e, nil
}

// DeleteByID removes the entry with id.
func (s *EntryService) DeleteByID(id int64) (entry.Entry, error) {
	e, err := s.get(id)
	if err != nil {
		return entry.Entry{}, err
	}
	if _, err := s.session.Apply(store.Command{Kind: store.CmdDelete, ID: id}); err != nil {
		return entry.Entry{}, err
	}
	return e, nil
}

// SetBilled marks every entry in ids as billed or unbilled. Bulk edits
// clear the undo history.
func (s *EntryService) SetBilled(ids []int64, billed bool) (int, error) {
	var n int
	err := s.session.Update(func(st *store.Store) error {
		var err error
		n, err = st.BulkEdit(ids, func(e *entry.Entry) { e.Billed = billed })
		return err
	})
	return n, err
}

// SetModalOpen blocks undo and redo while an edit dialog is open.
func (s *EntryService) SetModalOpen(open bool) {
	_ = s.session.Update(func(st *store.Store) error {
		st.SetModalOpen(open)
		return nil
	})
}

// PurgeTombstones forgets recorded deletions so they leave the log on the
// next flush. Without all, only tombstones past the grace window go; with
// all, entries deleted here may come back from other copies of the log.
func (s *EntryService) PurgeTombstones(all bool) (int, error) {
	now := s.session.Now()
	var n int
	err := s.session.Update(func(st *store.Store) error {
		if all {
			for _, ts := range st.Tombstones() {
				st.DropTombstone(ts.ID)
				n++
			}
		} else {
			n = st.PruneTombstones(now)
		}
		if n > 0 {
			st.MarkPending()
		}
		return nil
	})
	return n, err
}

// Tombstones returns the recorded deletions.
func (s *EntryService) Tombstones() []entry.Tombstone {
	var out []entry.Tombstone
	s.session.View(func(st *store.Store) {
		out = st.Tombstones()
	})
	return out
}

// Undo reverts the most recent change.
func (s *EntryService) Undo() (store.Delta, error) {
	return s.session.Apply(store.Command{Kind: store.CmdUndo})
}

// Redo re-applies the most recently undone change.
func (s *EntryService) Redo() (store.Delta, error) {
	return s.session.Apply(store.Command{Kind: store.CmdRedo})
}

// History returns the change log, oldest first.
func (s *EntryService) History() []store.ChangeRecord {
	var out []store.ChangeRecord
	s.session.View(func(st *store.Store) {
		out = st.ChangeLog().Records()
	})
	return out
}

func (s *EntryService) get(id int64) (entry.Entry, error) {
	var (
		e  entry.Entry
		ok bool
	)
	s.session.View(func(st *store.Store) {
		e, ok = st.Get(id)
	})
	if !ok {
		return entry.Entry{}, fmt.Errorf("%w: %d", store.ErrNotFound, id)
	}
	return e, nil
}
