package logsync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/xolan/timetracker/internal/logging"
	"github.com/xolan/timetracker/internal/timeutil"
)

// ErrAlreadyStarted is returned by Start on a scheduler that is not idle.
var ErrAlreadyStarted = errors.New("scheduler already started")

// State is the scheduler lifecycle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// SchedulerOptions configure a Scheduler.
type SchedulerOptions struct {
	// Interval is read before every re-arm so setting changes apply live.
	Interval func() time.Duration
	// LostPoll is how often a lost log's original path is checked.
	LostPoll time.Duration
	// BackupHour is the local hour of the daily backup.
	BackupHour int
	// Watch enables fsnotify early ticks and recovery checks.
	Watch  bool
	Logger *slog.Logger
	Now    func() time.Time
}

// Scheduler drives a Session from one goroutine: sync ticks, lost log
// polls, watcher events and the daily backup.
type Scheduler struct {
	session *Session
	opts    SchedulerOptions
	logger  *slog.Logger

	mu      sync.Mutex
	state   State
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
	trigger chan struct{}

	// owned by the loop goroutine
	ticksToBackup int
	watched       map[string]bool
}

// NewScheduler returns an idle scheduler for session.
func NewScheduler(session *Session, opts SchedulerOptions) *Scheduler {
	if opts.Interval == nil {
		opts.Interval = session.settings.SyncInterval
	}
	if opts.LostPoll <= 0 {
		opts.LostPoll = 5 * time.Second
	}
	if opts.BackupHour == 0 {
		opts.BackupHour = timeutil.BackupHour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{
		session: session,
		opts:    opts,
		logger:  logging.Component(opts.Logger, "scheduler"),
		trigger: make(chan struct{}, 1),
		watched: make(map[string]bool),
	}
}

// State returns the lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start launches the loop. It returns ErrAlreadyStarted unless idle.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = StateRunning
	go s.loop(ctx)
	s.logger.Info("scheduler started", slog.Duration("interval", s.interval()))
	return nil
}

// Pause skips cycles until Resume. Polls and watcher events still arrive
// but are ignored.
func (s *Scheduler) Pause() {
	s.setState(StateRunning, StatePaused)
}

// Resume continues after Pause.
func (s *Scheduler) Resume() {
	s.setState(StatePaused, StateRunning)
}

func (s *Scheduler) setState(from, to State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == from {
		s.state = to
		s.logger.Debug("scheduler state", slog.String("state", to.String()))
	}
}

// Trigger requests an early cycle. Requests made while one is queued merge.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Done is closed when the loop exits. Nil before Start.
func (s *Scheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Err returns the fatal error that ended the loop, if any.
func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stop cancels the pending tick and waits for an in-flight cycle to finish,
// then flushes pending writes. It returns the loop's fatal error, if any.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.state == StateStopped && s.done == nil {
		s.mu.Unlock()
		return s.err
	}
	s.state = StateStopped
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	if !errors.Is(s.Err(), ErrQuit) {
		if err := s.session.Flush(context.Background()); err != nil {
			s.logger.Warn("final flush", slog.Any("error", err))
		}
	}
	s.logger.Info("scheduler stopped")
	return s.Err()
}

func (s *Scheduler) interval() time.Duration {
	d := s.opts.Interval()
	if d <= 0 {
		return time.Second
	}
	return d
}

func (s *Scheduler) loop(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.state = StateStopped
		close(s.done)
		s.mu.Unlock()
	}()

	var watcher *Watcher
	var watchEvents <-chan string
	if s.opts.Watch {
		w, err := NewWatcher(s.logger)
		if err != nil {
			s.logger.Warn("file watching disabled", slog.Any("error", err))
		} else {
			watcher = w
			watchEvents = w.Events()
			go w.Run(ctx)
		}
	}

	s.resetBackupCountdown()
	tick := time.NewTimer(s.interval())
	defer tick.Stop()
	poll := time.NewTicker(s.opts.LostPoll)
	defer poll.Stop()

	for {
		s.syncWatches(watcher)
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if s.tick(ctx) {
				return
			}
			tick.Reset(s.interval())
		case <-s.trigger:
			if !tick.Stop() {
				select {
				case <-tick.C:
				default:
				}
			}
			if s.tick(ctx) {
				return
			}
			tick.Reset(s.interval())
		case <-poll.C:
			s.pollLost()
		case path, ok := <-watchEvents:
			if !ok {
				watchEvents = nil
				continue
			}
			s.onFileEvent(path)
		}
	}
}

// tick runs one cycle and the backup countdown. It reports whether the
// loop must end.
func (s *Scheduler) tick(ctx context.Context) bool {
	if s.State() != StateRunning {
		return false
	}
	if err := s.session.Cycle(ctx); err != nil {
		s.logger.Error("sync stopped", slog.Any("error", err))
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		s.session.events.publish(Event{Kind: EventError, Err: err, At: s.opts.Now()})
		return true
	}

	s.ticksToBackup--
	if s.ticksToBackup <= 0 {
		_, _, _ = s.session.Backup()
		s.session.events.publish(Event{Kind: EventReportRefresh, At: s.opts.Now()})
		s.resetBackupCountdown()
	}
	return false
}

func (s *Scheduler) resetBackupCountdown() {
	now := s.opts.Now()
	next := timeutil.NextBoundary(now, s.opts.BackupHour)
	s.ticksToBackup = timeutil.TicksUntil(now, next, s.interval())
	s.logger.Debug("next backup", slog.Time("at", next), slog.Int("ticks", s.ticksToBackup))
}

func (s *Scheduler) pollLost() {
	if s.State() != StateRunning {
		return
	}
	if !s.session.State().Lost {
		return
	}
	if _, err := s.session.CheckRecovery(); err != nil {
		s.logger.Debug("recovery check", slog.Any("error", err))
	}
}

func (s *Scheduler) onFileEvent(path string) {
	st := s.session.State()
	switch {
	case st.Lost && path == st.LogPath:
		s.pollLost()
	case path == st.ActivePath:
		s.Trigger()
	}
}

// syncWatches tracks the active log, and the original while lost.
func (s *Scheduler) syncWatches(w *Watcher) {
	if w == nil {
		return
	}
	st := s.session.State()
	want := map[string]bool{st.ActivePath: true}
	if st.Lost {
		want[st.LogPath] = true
	}
	for path := range s.watched {
		if !want[path] {
			w.Untrack(path)
			delete(s.watched, path)
		}
	}
	for path := range want {
		if path == "" || s.watched[path] {
			continue
		}
		if err := w.Track(path); err != nil {
			s.logger.Debug("watch", slog.String("path", path), slog.Any("error", err))
			continue
		}
		s.watched[path] = true
	}
}
