package service

import (
	"strings"

	"github.com/xolan/timetracker/internal/entry"
	"github.com/xolan/timetracker/internal/logsync"
	"github.com/xolan/timetracker/internal/store"
	"github.com/xolan/timetracker/internal/timer"
)

// Timer-specific errors
var (
	ErrTimerAlreadyRunning = store.ErrTimerRunning
	ErrNoTimerRunning      = store.ErrNoTimer
)

// TimerService provides operations for managing the timer. The timer is the
// running entry in the log, so starting and stopping are store commands.
type TimerService struct {
	session *logsync.Session
}

// NewTimerService creates a new TimerService
func NewTimerService(session *logsync.Session) *TimerService {
	return &TimerService{session: session}
}

// Start begins a running entry for project, which may be empty. If force is
// true, a running timer is stopped first. Returns the new timer and the one
// it replaced; when a timer is running and force is false, the running one
// is returned with ErrTimerAlreadyRunning.
func (s *TimerService) Start(project, meta string, force bool) (*timer.State, *timer.State, error) {
	project = strings.TrimSpace(project)
	existing, _ := s.running()
	if existing != nil && !force {
		return nil, existing, ErrTimerAlreadyRunning
	}

	delta, err := s.session.Apply(store.Command{
		Kind:  store.CmdStart,
		Entry: entry.Entry{Project: project, Meta: strings.TrimSpace(meta)},
		Force: force,
	})
	if err != nil {
		return nil, existing, err
	}

	var started *timer.State
	s.session.View(func(st *store.Store) {
		if e, ok := st.Get(delta.Added[0]); ok {
			state := timer.FromEntry(e)
			started = &state
		}
	})
	return started, existing, nil
}

// Stop ends the running entry now and returns it.
func (s *TimerService) Stop() (entry.Entry, error) {
	delta, err := s.session.Apply(store.Command{Kind: store.CmdStop})
	if err != nil {
		return entry.Entry{}, err
	}
	var e entry.Entry
	s.session.View(func(st *store.Store) {
		e, _ = st.Get(delta.Updated[0])
	})
	return e, nil
}

// Cancel removes the running entry without keeping it. The removal can be
// undone like any delete.
func (s *TimerService) Cancel() (entry.Entry, error) {
	state, running := s.running()
	if state == nil {
		return entry.Entry{}, ErrNoTimerRunning
	}
	if _, err := s.session.Apply(store.Command{Kind: store.CmdDelete, ID: state.ID}); err != nil {
		return entry.Entry{}, err
	}
	return running, nil
}

// Status returns the current timer status
func (s *TimerService) Status() (*TimerStatus, error) {
	now := s.session.Now()
	status := &TimerStatus{}
	s.session.View(func(st *store.Store) {
		if e, ok := st.Running(); ok {
			status.Running = true
			status.Entry = e
			status.Elapsed = timer.FromEntry(e).Elapsed(now)
		}
		status.Inconsistent = st.Inconsistent()
	})
	return status, nil
}

// IsRunning checks if a timer is currently running
func (s *TimerService) IsRunning() bool {
	state, _ := s.running()
	return state != nil
}

func (s *TimerService) running() (*timer.State, entry.Entry) {
	var (
		state *timer.State
		e     entry.Entry
	)
	s.session.View(func(st *store.Store) {
		if r, ok := st.Running(); ok {
			snap := timer.FromEntry(r)
			state, e = &snap, r
		}
	})
	return state, e
}
