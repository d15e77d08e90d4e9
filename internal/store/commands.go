package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/xolan/timetracker/internal/entry"
)

// CommandKind selects the operation Apply performs
type CommandKind int

const (
	CmdAdd CommandKind = iota
	CmdEdit
	CmdDelete
	CmdUndo
	CmdRedo
	CmdStart
	CmdStop
)

func (k CommandKind) String() string {
	switch k {
	case CmdAdd:
		return "add"
	case CmdEdit:
		return "edit"
	case CmdDelete:
		return "delete"
	case CmdUndo:
		return "undo"
	case CmdRedo:
		return "redo"
	case CmdStart:
		return "start"
	case CmdStop:
		return "stop"
	}
	return fmt.Sprintf("command(%d)", int(k))
}

// Command is a user action from a presentation layer. Entry is used by add
// and edit (and carries project and meta for start), ID by delete, Now by
// start and stop, Force by start.
type Command struct {
	Kind  CommandKind
	Entry entry.Entry
	ID    int64
	Now   time.Time
	Force bool
}

// Delta lists the entry IDs a command touched.
type Delta struct {
	Added   []int64
	Updated []int64
	Removed []int64
}

// Empty reports whether nothing changed.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Updated) == 0 && len(d.Removed) == 0
}

// Summary counts the touched entries, e.g. "1 restored, 2 changed".
func (d Delta) Summary() string {
	var parts []string
	if n := len(d.Added); n > 0 {
		parts = append(parts, fmt.Sprintf("%d restored", n))
	}
	if n := len(d.Updated); n > 0 {
		parts = append(parts, fmt.Sprintf("%d changed", n))
	}
	if n := len(d.Removed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", n))
	}
	if len(parts) == 0 {
		return "no changes"
	}
	return strings.Join(parts, ", ")
}

// Apply runs cmd against the store.
func (s *Store) Apply(cmd Command) (Delta, error) {
	switch cmd.Kind {
	case CmdAdd:
		e, err := s.Add(cmd.Entry)
		if err != nil {
			return Delta{}, err
		}
		return Delta{Added: []int64{e.ID}}, nil

	case CmdEdit:
		e, err := s.Edit(cmd.Entry)
		if err != nil {
			return Delta{}, err
		}
		return Delta{Updated: []int64{e.ID}}, nil

	case CmdDelete:
		if _, err := s.Delete(cmd.ID); err != nil {
			return Delta{}, err
		}
		return Delta{Removed: []int64{cmd.ID}}, nil

	case CmdUndo:
		r, err := s.Undo()
		if err != nil {
			return Delta{}, err
		}
		switch r.Kind {
		case KindAdd:
			return Delta{Removed: []int64{r.ID}}, nil
		case KindDelete:
			return Delta{Added: []int64{r.ID}}, nil
		}
		return Delta{Updated: []int64{r.ID}}, nil

	case CmdRedo:
		r, err := s.Redo()
		if err != nil {
			return Delta{}, err
		}
		switch r.Kind {
		case KindAdd:
			return Delta{Added: []int64{r.ID}}, nil
		case KindDelete:
			return Delta{Removed: []int64{r.ID}}, nil
		}
		return Delta{Updated: []int64{r.ID}}, nil

	case CmdStart:
		var d Delta
		if cmd.Force {
			if running, ok := s.Running(); ok {
				d.Updated = append(d.Updated, running.ID)
			}
		}
		e, err := s.Start(cmd.Entry.Project, cmd.Entry.Meta, cmd.Now, cmd.Force)
		if err != nil {
			return Delta{}, err
		}
		d.Added = append(d.Added, e.ID)
		return d, nil

	case CmdStop:
		e, err := s.Stop(cmd.Now)
		if err != nil {
			return Delta{}, err
		}
		return Delta{Updated: []int64{e.ID}}, nil
	}
	return Delta{}, fmt.Errorf("unknown command %s", cmd.Kind)
}
