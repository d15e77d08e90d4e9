// Package store holds the in-memory entries, tombstones, and undo history.
//
// Store has no locking of its own. Callers serialize access (see
// logsync.Session).
package store

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/xolan/timetracker/internal/entry"
	"github.com/xolan/timetracker/internal/timer"
)

var (
	// ErrNotFound is returned when no entry has the requested ID
	ErrNotFound = errors.New("entry not found")
	// ErrIndexOutOfRange is returned by the index based accessors
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrDuplicateID is returned when adding an entry whose ID is in use
	ErrDuplicateID = errors.New("id already in use")
	// ErrTimerRunning is returned when starting a second running entry
	ErrTimerRunning = errors.New("a timer is already running")
	// ErrNoTimer is returned when stopping with nothing running
	ErrNoTimer = errors.New("no timer is running")
	// ErrNothingToUndo is returned when the change log has no active record
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrNothingToRedo is returned when no undone record can be redone
	ErrNothingToRedo = errors.New("nothing to redo")
	// ErrModalOpen is returned by undo and redo while an edit dialog is open
	ErrModalOpen = errors.New("an edit dialog is open")
)

// Store is the authoritative in-memory set of entries. Entries are kept
// ordered by start time, then ID; index based operations use that order.
type Store struct {
	entries      []entry.Entry
	pos          map[int64]int // ID to index in entries
	tombstones   map[int64]entry.Tombstone
	log          ChangeLog
	timer        timer.Binding
	projects     *Projects
	extraColumns []string
	pending      bool
	modalOpen    bool

	// Now is the clock used for tombstones and undo/redo. Defaults to time.Now.
	Now func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		pos:        make(map[int64]int),
		tombstones: make(map[int64]entry.Tombstone),
		projects:   NewProjects(),
		Now:        time.Now,
	}
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns a copy of all entries in order.
func (s *Store) Entries() []entry.Entry {
	out := make([]entry.Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Clone()
	}
	return out
}

// Get returns the entry with id.
func (s *Store) Get(id int64) (entry.Entry, bool) {
	i := s.find(id)
	if i < 0 {
		return entry.Entry{}, false
	}
	return s.entries[i].Clone(), true
}

// At returns the entry at index i.
func (s *Store) At(i int) (entry.Entry, error) {
	if i < 0 || i >= len(s.entries) {
		return entry.Entry{}, fmt.Errorf("%w: %d (0-%d)", ErrIndexOutOfRange, i, len(s.entries)-1)
	}
	return s.entries[i].Clone(), nil
}

// Tombstones returns the retained tombstones ordered by ID.
func (s *Store) Tombstones() []entry.Tombstone {
	out := make([]entry.Tombstone, 0, len(s.tombstones))
	for _, ts := range s.tombstones {
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// HasTombstone reports whether id has been deleted within the grace window.
func (s *Store) HasTombstone(id int64) bool {
	_, ok := s.tombstones[id]
	return ok
}

// AddTombstone records a deletion. It is ignored while a live entry holds
// the same ID.
func (s *Store) AddTombstone(ts entry.Tombstone) {
	if s.find(ts.ID) >= 0 {
		return
	}
	if cur, ok := s.tombstones[ts.ID]; ok && cur.DeletedAt.After(ts.DeletedAt) {
		return
	}
	s.tombstones[ts.ID] = ts
}

// DropTombstone forgets the deletion of id.
func (s *Store) DropTombstone(id int64) {
	delete(s.tombstones, id)
}

// PruneTombstones drops tombstones older than the grace window and returns
// how many were removed.
func (s *Store) PruneTombstones(now time.Time) int {
	n := 0
	for id, ts := range s.tombstones {
		if ts.Expired(now) {
			delete(s.tombstones, id)
			n++
		}
	}
	return n
}

// Projects returns the project registry.
func (s *Store) Projects() *Projects {
	return s.projects
}

// SetProjects replaces the project registry.
func (s *Store) SetProjects(p *Projects) {
	if p == nil {
		p = NewProjects()
	}
	s.projects = p
}

// ExtraColumns returns the passthrough column names written after the fixed
// header.
func (s *Store) ExtraColumns() []string {
	return append([]string(nil), s.extraColumns...)
}

// SetExtraColumns records passthrough columns, keeping any already known.
func (s *Store) SetExtraColumns(cols []string) {
	for _, c := range cols {
		known := false
		for _, k := range s.extraColumns {
			if k == c {
				known = true
				break
			}
		}
		if !known {
			s.extraColumns = append(s.extraColumns, c)
		}
	}
}

// ChangeLog exposes the undo history.
func (s *Store) ChangeLog() *ChangeLog {
	return &s.log
}

// Taken reports whether id is used by an entry, a tombstone, or any change
// record.
func (s *Store) Taken(id int64) bool {
	return s.find(id) >= 0 || s.HasTombstone(id) || s.log.Has(id)
}

// MintID returns a fresh ID based on now in milliseconds, bumped until unused.
func (s *Store) MintID(now time.Time) int64 {
	id := now.UnixMilli()
	for s.Taken(id) {
		id++
	}
	return id
}

// Pending reports whether local changes still need to be written.
func (s *Store) Pending() bool {
	return s.pending
}

// MarkPending flags local changes for the next flush.
func (s *Store) MarkPending() {
	s.pending = true
}

// ClearPending is called after a successful flush.
func (s *Store) ClearPending() {
	s.pending = false
}

// SetModalOpen blocks undo and redo while an edit or report dialog is open.
func (s *Store) SetModalOpen(open bool) {
	s.modalOpen = open
}

// ModalOpen reports whether undo and redo are blocked.
func (s *Store) ModalOpen() bool {
	return s.modalOpen
}

// Replace swaps in a freshly loaded log wholesale. The change log is left
// untouched, nothing is marked pending, and the timer is bound to the
// running entry with the latest start. The other running entries are
// returned.
func (s *Store) Replace(entries []entry.Entry, tombstones []entry.Tombstone) []entry.Entry {
	s.entries = make([]entry.Entry, 0, len(entries))
	for _, e := range entries {
		s.entries = append(s.entries, e.Clone())
	}
	s.reorder()
	s.pos = make(map[int64]int, len(s.entries))
	s.reindex(0)

	s.tombstones = make(map[int64]entry.Tombstone, len(tombstones))
	for _, ts := range tombstones {
		s.AddTombstone(ts)
	}

	s.timer.Clear()
	active, inconsistent, ok := timer.Resolve(s.entries)
	if ok {
		s.timer.Bind(active.ID)
	}
	return inconsistent
}

// Add inserts a new user entry. A zero ID is replaced with a minted one.
func (s *Store) Add(e entry.Entry) (entry.Entry, error) {
	e = e.Normalize()
	if err := e.Validate(); err != nil {
		return entry.Entry{}, err
	}
	if e.ID == 0 {
		e.ID = s.MintID(s.now())
	} else if s.find(e.ID) >= 0 || s.HasTombstone(e.ID) {
		return entry.Entry{}, fmt.Errorf("%w: %d", ErrDuplicateID, e.ID)
	}
	if e.Running() {
		if _, ok := s.Running(); ok {
			return entry.Entry{}, ErrTimerRunning
		}
	}

	s.put(e)
	added := e.Clone()
	s.log.Push(ChangeRecord{Kind: KindAdd, ID: e.ID, New: &added})
	s.pending = true
	return e.Clone(), nil
}

// Edit replaces the entry with the same ID as e.
func (s *Store) Edit(e entry.Entry) (entry.Entry, error) {
	i := s.find(e.ID)
	if i < 0 {
		return entry.Entry{}, fmt.Errorf("%w: %d", ErrNotFound, e.ID)
	}
	e = e.Normalize()
	if err := e.Validate(); err != nil {
		return entry.Entry{}, err
	}
	old := s.entries[i].Clone()
	if e.Running() && !old.Running() {
		if running, ok := s.Running(); ok && running.ID != e.ID {
			return entry.Entry{}, ErrTimerRunning
		}
	}

	s.put(e)
	edited := e.Clone()
	s.log.Push(ChangeRecord{Kind: KindEdit, ID: e.ID, New: &edited, Old: &old})
	s.pending = true
	return e.Clone(), nil
}

// EditAt replaces the entry at index i. The ID is kept.
func (s *Store) EditAt(i int, e entry.Entry) (entry.Entry, error) {
	cur, err := s.At(i)
	if err != nil {
		return entry.Entry{}, err
	}
	e.ID = cur.ID
	return s.Edit(e)
}

// Delete removes the entry with id and leaves a tombstone.
func (s *Store) Delete(id int64) (entry.Entry, error) {
	if s.find(id) < 0 {
		return entry.Entry{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	old, _ := s.drop(id, true)
	removed := old.Clone()
	s.log.Push(ChangeRecord{Kind: KindDelete, ID: id, Old: &removed})
	s.pending = true
	return old, nil
}

// DeleteAt removes the entry at index i.
func (s *Store) DeleteAt(i int) (entry.Entry, error) {
	cur, err := s.At(i)
	if err != nil {
		return entry.Entry{}, err
	}
	return s.Delete(cur.ID)
}

// BulkEdit applies fn to every entry in ids, then clears the change log.
// Bulk edits cannot be undone.
func (s *Store) BulkEdit(ids []int64, fn func(*entry.Entry)) (int, error) {
	var updated []entry.Entry
	for _, id := range ids {
		i := s.find(id)
		if i < 0 {
			return 0, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		e := s.entries[i].Clone()
		fn(&e)
		e.ID = id
		e = e.Normalize()
		if err := e.Validate(); err != nil {
			return 0, fmt.Errorf("entry %d: %w", id, err)
		}
		updated = append(updated, e)
	}
	for _, e := range updated {
		s.put(e)
	}
	s.log.Clear()
	s.pending = true
	return len(updated), nil
}

// SystemAdd inserts an entry read from the log. No change record is written
// and nothing is marked pending.
func (s *Store) SystemAdd(e entry.Entry) error {
	if s.find(e.ID) >= 0 {
		return fmt.Errorf("%w: %d", ErrDuplicateID, e.ID)
	}
	s.put(e)
	return nil
}

// SystemEdit replaces an entry with the version read from the log.
func (s *Store) SystemEdit(e entry.Entry) error {
	if s.find(e.ID) < 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, e.ID)
	}
	s.put(e)
	return nil
}

// SystemDelete removes an entry that disappeared from the log.
func (s *Store) SystemDelete(id int64) error {
	if _, ok := s.drop(id, false); !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

// Undo reverts the most recent active change record.
func (s *Store) Undo() (ChangeRecord, error) {
	if s.modalOpen {
		return ChangeRecord{}, ErrModalOpen
	}
	r, ok := s.log.nextUndo()
	if !ok {
		return ChangeRecord{}, ErrNothingToUndo
	}
	switch r.Kind {
	case KindAdd:
		s.drop(r.ID, true)
	case KindEdit:
		s.put(r.Old.Clone())
	case KindDelete:
		s.put(r.Old.Clone())
	}
	s.pending = true
	return r, nil
}

// Redo re-applies the undone record right after the last active one.
func (s *Store) Redo() (ChangeRecord, error) {
	if s.modalOpen {
		return ChangeRecord{}, ErrModalOpen
	}
	r, ok := s.log.nextRedo()
	if !ok {
		return ChangeRecord{}, ErrNothingToRedo
	}
	switch r.Kind {
	case KindAdd, KindEdit:
		s.put(r.New.Clone())
	case KindDelete:
		s.drop(r.ID, true)
	}
	s.pending = true
	return r, nil
}

// Running returns the entry bound to the active timer.
func (s *Store) Running() (entry.Entry, bool) {
	id, ok := s.timer.ID()
	if !ok {
		return entry.Entry{}, false
	}
	return s.Get(id)
}

// Inconsistent lists running entries other than the active timer.
func (s *Store) Inconsistent() []entry.Entry {
	var out []entry.Entry
	for _, e := range s.entries {
		if e.Running() && !s.timer.Is(e.ID) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// Start begins a new running entry at now. With force, a running timer is
// stopped at now first; otherwise ErrTimerRunning is returned.
func (s *Store) Start(project, meta string, now time.Time, force bool) (entry.Entry, error) {
	if _, ok := s.Running(); ok {
		if !force {
			return entry.Entry{}, ErrTimerRunning
		}
		if _, err := s.Stop(now); err != nil {
			return entry.Entry{}, err
		}
	}
	return s.Add(entry.Entry{
		ID:      s.MintID(now),
		Project: project,
		Start:   now,
		Meta:    meta,
	})
}

// Stop ends the active timer at now as a user edit.
func (s *Store) Stop(now time.Time) (entry.Entry, error) {
	e, ok := s.Running()
	if !ok {
		return entry.Entry{}, ErrNoTimer
	}
	end := now.Truncate(time.Second)
	if end.Before(e.Start) {
		end = e.Start
	}
	e.End = &end
	return s.Edit(e)
}

func (s *Store) find(id int64) int {
	if i, ok := s.pos[id]; ok {
		return i
	}
	return -1
}

func before(a, b entry.Entry) bool {
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	return a.ID < b.ID
}

func (s *Store) reorder() {
	sort.SliceStable(s.entries, func(i, j int) bool {
		return before(s.entries[i], s.entries[j])
	})
}

// reindex refreshes pos for entries[from:].
func (s *Store) reindex(from int) {
	for i := from; i < len(s.entries); i++ {
		s.pos[s.entries[i].ID] = i
	}
}

func (s *Store) insertSorted(e entry.Entry) {
	i := sort.Search(len(s.entries), func(k int) bool {
		return before(e, s.entries[k])
	})
	s.entries = append(s.entries, entry.Entry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = e
	s.reindex(i)
}

func (s *Store) removeAt(i int) {
	delete(s.pos, s.entries[i].ID)
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.reindex(i)
}

// put inserts or replaces e by ID. A live entry supersedes any tombstone
// with its ID. A running entry is bound to the timer when none is bound,
// and a bound entry that stopped is unbound.
func (s *Store) put(e entry.Entry) {
	e = e.Clone()
	switch i := s.find(e.ID); {
	case i >= 0 && s.entries[i].Start.Equal(e.Start):
		s.entries[i] = e
	case i >= 0:
		s.removeAt(i)
		s.insertSorted(e)
	default:
		s.insertSorted(e)
	}
	delete(s.tombstones, e.ID)

	switch {
	case s.timer.Is(e.ID) && !e.Running():
		s.timer.Clear()
	case e.Running():
		if _, bound := s.timer.ID(); !bound {
			s.timer.Bind(e.ID)
		}
	}
}

// drop removes id, optionally leaving a tombstone, and unbinds the timer if
// it pointed at the entry.
func (s *Store) drop(id int64, tombstone bool) (entry.Entry, bool) {
	i := s.find(id)
	if i < 0 {
		return entry.Entry{}, false
	}
	old := s.entries[i]
	s.removeAt(i)
	if s.timer.Is(id) {
		s.timer.Clear()
	}
	if tombstone {
		s.tombstones[id] = entry.Tombstone{ID: id, DeletedAt: s.now()}
	}
	return old, true
}
