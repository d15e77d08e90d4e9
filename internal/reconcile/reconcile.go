// Package reconcile merges the parsed log file into the entry store.
package reconcile

import (
	"log/slog"
	"time"

	"github.com/xolan/timetracker/internal/entry"
	"github.com/xolan/timetracker/internal/logging"
	"github.com/xolan/timetracker/internal/storage"
	"github.com/xolan/timetracker/internal/store"
)

// Phase is the engine's lifecycle state
type Phase int

const (
	// PhaseInit means nothing has been loaded since start or the last Reset
	PhaseInit Phase = iota
	// PhaseFirstLoad replaces the store wholesale with the file content
	PhaseFirstLoad
	// PhaseSteady diffs the file against the store by ID
	PhaseSteady
	// PhaseMerge is reported for merge mode reconciliations
	PhaseMerge
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseFirstLoad:
		return "first-load"
	case PhaseSteady:
		return "steady"
	case PhaseMerge:
		return "merge"
	}
	return "unknown"
}

// Options tune how file content is folded into the store.
type Options struct {
	// AddProjects appends unseen project names to the registry.
	AddProjects bool
}

// Result summarizes one reconciliation.
type Result struct {
	Phase        Phase
	Added        []int64
	Updated      []int64
	Removed      []int64
	Tombstoned   []int64
	NewProjects  []string
	Inconsistent []entry.Entry
	Warnings     []storage.ParseWarning
	// Dirty means the store now differs from the file and a flush is pending.
	Dirty bool
}

// Changed reports whether the store was modified.
func (r Result) Changed() bool {
	return len(r.Added) > 0 || len(r.Updated) > 0 || len(r.Removed) > 0 ||
		len(r.Tombstoned) > 0 || len(r.NewProjects) > 0
}

// Engine tracks whether the next reconciliation is a first load.
type Engine struct {
	opts   Options
	phase  Phase
	logger *slog.Logger
}

// New returns an engine in PhaseInit.
func New(opts Options, logger *slog.Logger) *Engine {
	return &Engine{opts: opts, logger: logging.Component(logger, "reconcile")}
}

// Phase returns the current lifecycle state.
func (e *Engine) Phase() Phase {
	return e.phase
}

// SetOptions replaces the options used by later reconciliations.
func (e *Engine) SetOptions(opts Options) {
	e.opts = opts
}

// Reset returns to PhaseInit, so the next reconciliation replaces the store.
// Called when the log file is switched.
func (e *Engine) Reset() {
	e.phase = PhaseInit
}

// Reconcile folds parsed into s. The first call after New or Reset replaces
// the store; later calls diff by ID and trust the file, deleting store
// entries the file no longer has.
func (e *Engine) Reconcile(s *store.Store, parsed storage.ParseResult, now time.Time) Result {
	var r Result
	if e.phase == PhaseInit {
		e.phase = PhaseFirstLoad
		r = e.firstLoad(s, parsed, now)
		e.phase = PhaseSteady
	} else {
		r = e.steady(s, parsed, now)
	}
	r.Warnings = parsed.Warnings

	for _, w := range parsed.Warnings {
		e.logger.Warn("log row", slog.Int("line", w.Line), slog.String("error", w.Err.Error()))
	}
	if r.Changed() || r.Dirty {
		e.logger.Info("reconciled",
			slog.String("phase", r.Phase.String()),
			slog.Int("added", len(r.Added)),
			slog.Int("updated", len(r.Updated)),
			slog.Int("removed", len(r.Removed)),
			slog.Bool("dirty", r.Dirty),
		)
	}
	return r
}

func (e *Engine) firstLoad(s *store.Store, parsed storage.ParseResult, now time.Time) Result {
	r := Result{Phase: PhaseFirstLoad}

	var tombs []entry.Tombstone
	for _, ts := range parsed.Tombstones {
		if !ts.Expired(now) {
			tombs = append(tombs, ts)
		}
	}
	r.Inconsistent = s.Replace(parsed.Entries, tombs)
	s.SetExtraColumns(parsed.ExtraColumns)

	for _, en := range parsed.Entries {
		r.Added = append(r.Added, en.ID)
	}
	for _, ts := range tombs {
		r.Tombstoned = append(r.Tombstoned, ts.ID)
	}
	r.NewProjects = e.registerProjects(s, parsed.Entries)

	if parsed.Dirty {
		s.MarkPending()
		r.Dirty = true
	}
	if len(tombs) < len(parsed.Tombstones) {
		// Rewrite so expired markers leave the file too.
		s.MarkPending()
	}
	for _, inc := range r.Inconsistent {
		e.logger.Warn("running entry is not the active timer", slog.Int64("id", inc.ID))
	}
	return r
}

func (e *Engine) steady(s *store.Store, parsed storage.ParseResult, now time.Time) Result {
	r := Result{Phase: PhaseSteady}

	inFile := make(map[int64]bool, len(parsed.Entries)+len(parsed.Tombstones))
	for _, incoming := range parsed.Entries {
		inFile[incoming.ID] = true
		cur, ok := s.Get(incoming.ID)
		switch {
		case ok && cur.Equal(incoming):
		case ok:
			if err := s.SystemEdit(incoming); err == nil {
				r.Updated = append(r.Updated, incoming.ID)
			}
		default:
			// The file wins over a local tombstone with the same ID.
			s.DropTombstone(incoming.ID)
			if err := s.SystemAdd(incoming); err == nil {
				r.Added = append(r.Added, incoming.ID)
			}
		}
	}

	for _, ts := range parsed.Tombstones {
		inFile[ts.ID] = true
		if _, ok := s.Get(ts.ID); ok {
			if err := s.SystemDelete(ts.ID); err == nil {
				r.Removed = append(r.Removed, ts.ID)
			}
		}
		if ts.Expired(now) || s.HasTombstone(ts.ID) {
			continue
		}
		s.AddTombstone(ts)
		r.Tombstoned = append(r.Tombstoned, ts.ID)
	}

	for _, cur := range s.Entries() {
		if inFile[cur.ID] {
			continue
		}
		if err := s.SystemDelete(cur.ID); err == nil {
			r.Removed = append(r.Removed, cur.ID)
		}
	}

	s.SetExtraColumns(parsed.ExtraColumns)
	r.NewProjects = e.registerProjects(s, parsed.Entries)
	s.PruneTombstones(now)
	r.Inconsistent = s.Inconsistent()

	if parsed.Dirty {
		s.MarkPending()
		r.Dirty = true
	}
	return r
}

// Merge folds parsed into s without ever deleting a live entry. Unexpired
// tombstones in parsed are kept for IDs the store does not hold, and entries
// whose ID was deleted on either side are skipped. When both sides hold an
// ID the local entry is kept unless preferIncoming is set. The store is
// always left with writes pending, and an engine in PhaseInit moves to
// PhaseSteady since the store now holds a complete log.
func (e *Engine) Merge(s *store.Store, parsed storage.ParseResult, preferIncoming bool, now time.Time) Result {
	r := Result{Phase: PhaseMerge, Warnings: parsed.Warnings}
	if e.phase == PhaseInit {
		e.phase = PhaseSteady
	}

	for _, ts := range parsed.Tombstones {
		if ts.Expired(now) || s.HasTombstone(ts.ID) {
			continue
		}
		if _, live := s.Get(ts.ID); live {
			continue
		}
		s.AddTombstone(ts)
		r.Tombstoned = append(r.Tombstoned, ts.ID)
	}

	for _, incoming := range parsed.Entries {
		if s.HasTombstone(incoming.ID) {
			continue
		}
		cur, ok := s.Get(incoming.ID)
		switch {
		case !ok:
			if err := s.SystemAdd(incoming); err == nil {
				r.Added = append(r.Added, incoming.ID)
			}
		case preferIncoming && !cur.Equal(incoming):
			if err := s.SystemEdit(incoming); err == nil {
				r.Updated = append(r.Updated, incoming.ID)
			}
		}
	}

	s.SetExtraColumns(parsed.ExtraColumns)
	r.NewProjects = e.registerProjects(s, parsed.Entries)
	r.Inconsistent = s.Inconsistent()
	s.MarkPending()
	r.Dirty = true

	e.logger.Info("merged",
		slog.Int("added", len(r.Added)),
		slog.Int("updated", len(r.Updated)),
		slog.Int("tombstoned", len(r.Tombstoned)),
		slog.Bool("prefer_incoming", preferIncoming),
	)
	return r
}

func (e *Engine) registerProjects(s *store.Store, entries []entry.Entry) []string {
	if !e.opts.AddProjects {
		return nil
	}
	var added []string
	for _, en := range entries {
		if s.Projects().Add(en.Project) {
			added = append(added, en.Project)
		}
	}
	return added
}
