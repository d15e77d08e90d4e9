// Package logsync keeps the entry store and the CSV log in step: periodic
// flush or reconcile cycles, lost log handling with a temporary buffer, and
// daily backups.
package logsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/xolan/timetracker/internal/logging"
	"github.com/xolan/timetracker/internal/osutil"
	"github.com/xolan/timetracker/internal/reconcile"
	"github.com/xolan/timetracker/internal/settings"
	"github.com/xolan/timetracker/internal/storage"
	"github.com/xolan/timetracker/internal/store"
)

// SyncState describes where the session reads and writes.
type SyncState struct {
	// LogPath is the configured log.
	LogPath string
	// ActivePath is where I/O currently goes: LogPath or the temporary log.
	ActivePath string
	Lost       bool
	UsingTemp  bool
	Pending    bool
	Phase      reconcile.Phase
	LastSync   time.Time
	LastHash   string
	LastError  error
}

// Options configure a Session.
type Options struct {
	// DataDir holds the default log, the temporary log and backups.
	DataDir  string
	Codec    storage.Codec
	Settings *settings.Settings
	Backups  *storage.BackupManager
	// Prompter is asked what to do when the log is lost and auto_temp_log
	// is off. Nil always uses the temporary log.
	Prompter Prompter
	Logger   *slog.Logger
	Now      func() time.Time
}

// Session is the single owner of the entry store. Every store access goes
// through it and is serialized by one mutex.
type Session struct {
	mu       sync.Mutex
	store    *store.Store
	engine   *reconcile.Engine
	state    SyncState
	dataDir  string
	codec    storage.Codec
	settings *settings.Settings
	backups  *storage.BackupManager
	prompter Prompter
	logger   *slog.Logger
	clock    func() time.Time
	events   hub
}

// NewSession builds a session around an empty store. Call Open to load the log.
func NewSession(opts Options) *Session {
	if opts.Settings == nil {
		opts.Settings = settings.New(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Backups == nil {
		opts.Backups = storage.NewBackupManager(filepath.Join(opts.DataDir, storage.BackupDir), 0)
	}
	logger := logging.Component(opts.Logger, "logsync")

	st := store.New()
	st.Now = opts.Now
	return &Session{
		store:    st,
		engine:   reconcile.New(reconcile.Options{AddProjects: opts.Settings.AddProjectsFromLog()}, opts.Logger),
		dataDir:  opts.DataDir,
		codec:    opts.Codec,
		settings: opts.Settings,
		backups:  opts.Backups,
		prompter: opts.Prompter,
		logger:   logger,
		clock:    opts.Now,
	}
}

func (s *Session) now() time.Time {
	return s.clock()
}

// Now returns the session clock's current time.
func (s *Session) Now() time.Time {
	return s.clock()
}

// Codec returns the log codec.
func (s *Session) Codec() storage.Codec {
	return s.codec
}

// DefaultLogPath is the log used when the log_file setting is empty.
func (s *Session) DefaultLogPath() string {
	return filepath.Join(s.dataDir, storage.LogFile)
}

// Subscribe returns a channel of sync events. It is closed by Close.
func (s *Session) Subscribe(buf int) <-chan Event {
	return s.events.subscribe(buf)
}

// State returns a copy of the sync state.
func (s *Session) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Pending = s.store.Pending()
	st.Phase = s.engine.Phase()
	return st
}

// View runs fn with the store locked. fn must not mutate it.
func (s *Session) View(fn func(st *store.Store)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.store)
}

// Update runs fn with the store locked. Mutations made through the store's
// user methods are flushed by the next cycle.
func (s *Session) Update(fn func(st *store.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.store.Projects().Encode()
	err := fn(s.store)
	s.persistProjects(before)
	return err
}

// Apply runs a store command under the session lock.
func (s *Session) Apply(cmd store.Command) (store.Delta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cmd.Now.IsZero() {
		cmd.Now = s.now()
	}
	return s.store.Apply(cmd)
}

// Open resolves the configured log and loads it. A missing log whose
// directory exists is created; a missing directory means the log is lost.
// A temporary log left by an earlier lost session is merged back.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.open(ctx); err != nil {
		return err
	}
	s.loadHistory()
	return nil
}

func (s *Session) open(ctx context.Context) error {
	s.store.SetProjects(store.DecodeProjects(s.settings.Projects()))

	path, err := osutil.Expand(s.settings.LogFile(s.DefaultLogPath()))
	if err != nil {
		return fmt.Errorf("resolve log path: %w", err)
	}
	s.state.LogPath = path
	s.state.ActivePath = path
	s.logger.Debug("opening log", slog.String("path", path))

	if storage.Exists(s.tempPath()) {
		s.logger.Warn("temporary log left from a previous session", slog.String("path", s.tempPath()))
		s.state.Lost = true
		if err := s.useTemp(); err != nil {
			return err
		}
		if storage.Exists(path) {
			_, err := s.recover()
			return err
		}
		if storage.DirExists(path) {
			return s.adoptTemp()
		}
		s.events.publish(Event{Kind: EventLost, Path: path, At: s.now()})
		return nil
	}

	switch {
	case storage.Exists(path):
		return s.load(ctx)
	case storage.DirExists(path):
		s.logger.Info("creating log", slog.String("path", path))
		s.store.MarkPending()
		return s.flush()
	default:
		return s.enterLost(ctx, "open", &storage.FileError{Op: "open", Path: path, Kind: storage.ErrFileMissing})
	}
}

// adoptTemp writes the temporary log's content to a missing original whose
// directory exists, then drops the temporary log. Caller holds s.mu.
func (s *Session) adoptTemp() error {
	s.state.ActivePath = s.state.LogPath
	s.store.MarkPending()
	if err := s.flush(); err != nil {
		return err
	}
	return s.dropTemp()
}

// Cycle runs one scheduler step: flush when local writes are pending,
// otherwise read and reconcile. Only ErrQuit is fatal.
func (s *Session) Cycle(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch {
	case s.state.Lost && !s.state.UsingTemp:
		var back bool
		back, err = s.reattach()
		if err == nil && !back {
			return s.enterLost(ctx, "retry", &storage.FileError{Op: "open", Path: s.state.LogPath, Kind: storage.ErrFileMissing})
		}
	case s.store.Pending():
		err = s.flushOrLose(ctx)
	default:
		err = s.load(ctx)
	}
	if err != nil && !errors.Is(err, ErrQuit) {
		s.state.LastError = err
		s.events.publish(Event{Kind: EventError, Path: s.state.ActivePath, Err: err, At: s.now()})
		return nil
	}
	return err
}

// Flush writes pending changes now. Used by one-shot commands and on shutdown.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.Pending() {
		return nil
	}
	if s.state.Lost && !s.state.UsingTemp {
		back, err := s.reattach()
		if err != nil || back {
			return err
		}
	}
	return s.flushOrLose(ctx)
}

// Load reads and reconciles the active log now.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// CheckRecovery merges the original log back if it has reappeared while
// lost. It reports whether recovery happened.
func (s *Session) CheckRecovery() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.recover()
	if err != nil {
		s.logger.Warn("recovery failed", slog.Any("error", err))
	}
	return ok, err
}

// SwitchLog makes path the configured log.
func (s *Session) SwitchLog(path string) error {
	expanded, err := osutil.Expand(path)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.switchLog(abs)
}

// Backup snapshots the active log and prunes old snapshots. Failures are
// logged and returned but never change sync state.
func (s *Session) Backup() (string, []string, error) {
	s.mu.Lock()
	path := s.state.ActivePath
	s.mu.Unlock()

	snap, removed, err := s.backups.Run(path)
	if err != nil {
		s.logger.Warn("backup failed", slog.String("log", path), slog.Any("error", err))
		return "", nil, err
	}
	if snap != "" {
		s.logger.Info("backup written", slog.String("path", snap), slog.Int("pruned", len(removed)))
		s.events.publish(Event{Kind: EventBackup, Path: snap, At: s.now()})
	}
	return snap, removed, nil
}

// Backups returns the backup manager.
func (s *Session) Backups() *storage.BackupManager {
	return s.backups
}

// Restore replaces the configured log with a snapshot and reloads it from
// scratch. The current log is snapshotted first.
func (s *Session) Restore(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Lost {
		return &storage.FileError{Op: "restore", Path: s.state.LogPath, Kind: storage.ErrFileMissing}
	}
	if err := s.backups.Restore(name, s.state.LogPath); err != nil {
		return err
	}
	s.engine.Reset()
	s.store.ClearPending()
	s.store.ChangeLog().Clear()
	s.state.LastHash = ""
	return s.load(ctx)
}

// Close flushes pending writes, saves the undo history and closes
// subscriber channels.
func (s *Session) Close(ctx context.Context) error {
	err := s.Flush(ctx)
	s.mu.Lock()
	s.saveHistory()
	s.mu.Unlock()
	s.events.close()
	return err
}

// loadHistory restores the undo history saved by an earlier run. A history
// that no longer parses is dropped. Caller holds s.mu.
func (s *Session) loadHistory() {
	h, err := store.DecodeHistory(s.settings.History())
	if err == nil {
		err = s.store.ChangeLog().Restore(h)
	}
	if err != nil {
		s.logger.Warn("discarding saved undo history", slog.Any("error", err))
		_ = s.settings.SetHistory("")
	}
}

// saveHistory persists the newest change records. Caller holds s.mu.
func (s *Session) saveHistory() {
	text, err := store.EncodeHistory(s.store.ChangeLog().Snapshot(store.MaxHistory))
	if err == nil {
		err = s.settings.SetHistory(text)
	}
	if err != nil {
		s.logger.Warn("failed to save undo history", slog.Any("error", err))
	}
}

// load reads the active log and reconciles it. Caller holds s.mu.
func (s *Session) load(ctx context.Context) error {
	path := s.state.ActivePath
	text, err := storage.ReadLog(path)
	if err != nil {
		if errors.Is(err, storage.ErrFileMissing) {
			return s.enterLost(ctx, "read", err)
		}
		s.logger.Warn("read failed", slog.String("path", path), slog.Any("error", err))
		return err
	}

	if storage.Hash(text) == s.state.LastHash && s.engine.Phase() != reconcile.PhaseInit {
		return nil
	}
	s.reconcileText(path, text)
	return nil
}

// reconcileText folds the content of the log at path into the store.
// Caller holds s.mu.
func (s *Session) reconcileText(path, text string) {
	s.engine.SetOptions(reconcile.Options{AddProjects: s.settings.AddProjectsFromLog()})
	before := s.store.Projects().Encode()
	now := s.now()
	res := s.engine.Reconcile(s.store, s.codec.Read(text, s.store, now), now)
	s.persistProjects(before)

	s.state.LastHash = storage.Hash(text)
	s.state.LastSync = now
	s.state.LastError = nil
	if res.Changed() || res.Dirty || res.Phase == reconcile.PhaseFirstLoad {
		s.events.publish(Event{Kind: EventSynced, Path: path, Result: res, At: now})
	}
}

// flushOrLose writes pending changes, switching to the lost flow when the
// destination is unreachable. Caller holds s.mu.
func (s *Session) flushOrLose(ctx context.Context) error {
	err := s.flush()
	if err != nil && errors.Is(err, storage.ErrFileMissing) && !s.state.UsingTemp {
		return s.enterLost(ctx, "write", err)
	}
	return err
}

// flush encodes the store to the active path. Caller holds s.mu.
func (s *Session) flush() error {
	s.store.PruneTombstones(s.now())
	content := s.encode()
	path := s.state.ActivePath
	if err := storage.WriteLog(path, content); err != nil {
		s.logger.Warn("write failed", slog.String("path", path), slog.Any("error", err))
		return err
	}
	s.store.ClearPending()
	s.state.LastHash = storage.Hash(content)
	s.state.LastSync = s.now()
	s.state.LastError = nil
	s.logger.Debug("flushed", slog.String("path", path), slog.Int("entries", s.store.Len()))
	s.events.publish(Event{Kind: EventFlushed, Path: path, At: s.state.LastSync})
	return nil
}

func (s *Session) encode() string {
	return s.codec.Encode(s.store.Entries(), s.store.Tombstones(), s.store.ExtraColumns())
}

func (s *Session) dropTemp() error {
	s.state.Lost = false
	s.state.UsingTemp = false
	s.state.ActivePath = s.state.LogPath
	if err := removeIfExists(s.tempPath()); err != nil {
		s.logger.Warn("remove temporary log", slog.Any("error", err))
	}
	s.events.publish(Event{Kind: EventRecovered, Path: s.state.LogPath, At: s.now()})
	return nil
}

// persistProjects saves the registry when it differs from before. Caller holds s.mu.
func (s *Session) persistProjects(before string) {
	after := s.store.Projects().Encode()
	if after == before {
		return
	}
	if err := s.settings.SetProjects(after); err != nil {
		s.logger.Warn("persist projects", slog.Any("error", err))
	}
}
