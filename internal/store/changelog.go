package store

import "github.com/xolan/timetracker/internal/entry"

// Kind identifies what a change record did
type Kind int

const (
	KindAdd Kind = iota
	KindEdit
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindEdit:
		return "edit"
	case KindDelete:
		return "delete"
	}
	return "unknown"
}

// ChangeRecord is one user-initiated mutation. New is nil for deletes and
// Old is nil for adds.
type ChangeRecord struct {
	Kind   Kind
	ID     int64
	New    *entry.Entry
	Old    *entry.Entry
	Undone bool
}

// ChangeLog is the append-only undo/redo history. cursor is the index just
// after the last record that is not undone; everything from cursor on is
// undone.
type ChangeLog struct {
	records []ChangeRecord
	cursor  int
}

// Push appends a record and moves the cursor past it. Undone records before
// it stay in the log.
func (l *ChangeLog) Push(r ChangeRecord) {
	r.Undone = false
	l.records = append(l.records, r)
	l.cursor = len(l.records)
}

// Len returns the number of records.
func (l *ChangeLog) Len() int {
	return len(l.records)
}

// Records returns a copy of the log.
func (l *ChangeLog) Records() []ChangeRecord {
	out := make([]ChangeRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Clear drops every record.
func (l *ChangeLog) Clear() {
	l.records = nil
	l.cursor = 0
}

// CanUndo reports whether a record is available to undo.
func (l *ChangeLog) CanUndo() bool {
	return l.cursor > 0
}

// CanRedo reports whether a record is available to redo.
func (l *ChangeLog) CanRedo() bool {
	return l.cursor < len(l.records)
}

// Has reports whether any record refers to id.
func (l *ChangeLog) Has(id int64) bool {
	for _, r := range l.records {
		if r.ID == id {
			return true
		}
	}
	return false
}

// nextUndo marks the most recent active record undone and returns it.
func (l *ChangeLog) nextUndo() (ChangeRecord, bool) {
	if !l.CanUndo() {
		return ChangeRecord{}, false
	}
	i := l.cursor - 1
	l.records[i].Undone = true
	l.cursor = i
	for l.cursor > 0 && l.records[l.cursor-1].Undone {
		l.cursor--
	}
	return l.records[i], true
}

// nextRedo clears Undone on the record at the cursor and returns it.
func (l *ChangeLog) nextRedo() (ChangeRecord, bool) {
	if !l.CanRedo() {
		return ChangeRecord{}, false
	}
	i := l.cursor
	l.records[i].Undone = false
	l.cursor++
	return l.records[i], true
}
