package logsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xolan/timetracker/internal/reconcile"
	"github.com/xolan/timetracker/internal/settings"
	"github.com/xolan/timetracker/internal/storage"
)

// ErrQuit is returned when the user chooses to quit from the lost log prompt.
var ErrQuit = errors.New("quit requested while the log file was unreachable")

// Action is a choice made when the log file is lost.
type Action int

const (
	// ActionRetry tries the original path again at once and, while it is
	// still unreachable, on every cycle.
	ActionRetry Action = iota
	// ActionUsePath switches to another log file.
	ActionUsePath
	// ActionUseTemp keeps working in the temporary log until the original returns.
	ActionUseTemp
	// ActionQuit stops the session with ErrQuit.
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionRetry:
		return "retry"
	case ActionUsePath:
		return "use-path"
	case ActionUseTemp:
		return "use-temp"
	case ActionQuit:
		return "quit"
	}
	return "unknown"
}

// Decision is a Prompter's answer.
type Decision struct {
	Action Action
	Path   string
}

// Retry builds an ActionRetry decision.
func Retry() Decision {
	return Decision{Action: ActionRetry}
}

// UsePath builds an ActionUsePath decision for p.
func UsePath(p string) Decision {
	return Decision{Action: ActionUsePath, Path: p}
}

// UseTemp builds an ActionUseTemp decision.
func UseTemp() Decision {
	return Decision{Action: ActionUseTemp}
}

// Quit builds an ActionQuit decision.
func Quit() Decision {
	return Decision{Action: ActionQuit}
}

// LostInfo describes the failure that made the log unreachable.
type LostInfo struct {
	Path     string
	TempPath string
	Op       string
	Err      error
}

// Prompter asks the user what to do about a lost log.
type Prompter interface {
	PromptLost(ctx context.Context, info LostInfo) (Decision, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, info LostInfo) (Decision, error)

// PromptLost calls f.
func (f PrompterFunc) PromptLost(ctx context.Context, info LostInfo) (Decision, error) {
	return f(ctx, info)
}

// maxPrompts bounds the prompt loop when every answer fails.
const maxPrompts = 10

// enterLost handles an unreachable log. Caller holds s.mu.
func (s *Session) enterLost(ctx context.Context, op string, cause error) error {
	wasLost := s.state.Lost
	s.state.Lost = true
	s.state.LastError = cause
	if !wasLost {
		s.logger.Warn("log file lost", slog.String("path", s.state.LogPath), slog.String("op", op), slog.Any("error", cause))
		s.events.publish(Event{Kind: EventLost, Path: s.state.LogPath, Err: cause, At: s.now()})
	}

	if s.prompter == nil || s.settings.AutoTempLog() {
		return s.useTemp()
	}

	info := LostInfo{Path: s.state.LogPath, TempPath: s.tempPath(), Op: op, Err: cause}
	for i := 0; i < maxPrompts; i++ {
		d, err := s.prompter.PromptLost(ctx, info)
		if err != nil {
			return fmt.Errorf("lost log prompt: %w", err)
		}
		s.logger.Info("lost log decision", slog.String("action", d.Action.String()), slog.String("path", d.Path))

		switch d.Action {
		case ActionQuit:
			return ErrQuit
		case ActionRetry:
			s.state.UsingTemp = false
			s.state.ActivePath = s.state.LogPath
			if _, err := s.reattach(); err != nil {
				info.Err = err
				continue
			}
			return nil
		case ActionUseTemp:
			return s.useTemp()
		case ActionUsePath:
			if err := s.switchLog(d.Path); err != nil {
				info.Err = err
				continue
			}
			return nil
		default:
			return fmt.Errorf("lost log prompt: unknown action %d", d.Action)
		}
	}
	return s.useTemp()
}

func (s *Session) tempPath() string {
	return filepath.Join(s.dataDir, storage.TempLogFile)
}

// useTemp redirects reads and writes to the temporary log. An existing
// temporary log is merged in first so a previous lost session is not
// overwritten. Caller holds s.mu.
func (s *Session) useTemp() error {
	temp := s.tempPath()
	if storage.Exists(temp) {
		text, err := storage.ReadLog(temp)
		if err != nil {
			return fmt.Errorf("read temporary log: %w", err)
		}
		now := s.now()
		s.engine.Merge(s.store, s.codec.Read(text, s.store, now), false, now)
	}
	s.state.UsingTemp = true
	s.state.ActivePath = temp
	s.store.MarkPending()
	if err := s.flush(); err != nil {
		return fmt.Errorf("seed temporary log: %w", err)
	}
	s.logger.Info("using temporary log", slog.String("path", temp))
	return nil
}

// switchLog makes path the configured log. An existing file is merged into
// the store with local entries winning; a missing one is created from the
// store. Caller holds s.mu.
func (s *Session) switchLog(path string) error {
	if path == "" {
		return errors.New("no log path given")
	}
	if !storage.DirExists(path) {
		return &storage.FileError{Op: "open", Path: path, Kind: storage.ErrFileMissing}
	}

	s.engine.Reset()
	if storage.Exists(path) {
		text, err := storage.ReadLog(path)
		if err != nil {
			return err
		}
		now := s.now()
		parsed := s.codec.Read(text, s.store, now)
		if s.store.Len() == 0 {
			s.engine.Reconcile(s.store, parsed, now)
		} else {
			s.engine.Merge(s.store, parsed, false, now)
		}
	}
	s.store.MarkPending()

	s.state.LogPath = path
	s.state.ActivePath = path
	s.state.Lost = false
	s.state.UsingTemp = false
	s.state.LastHash = ""
	if err := s.flush(); err != nil {
		return err
	}
	if err := s.settings.SetString(settings.KeyLogFile, path); err != nil {
		s.logger.Warn("persist log path", slog.Any("error", err))
	}
	s.events.publish(Event{Kind: EventSwitched, Path: path, At: s.now()})
	return nil
}

// recover merges the reappeared original log and leaves the temporary log
// behind. The original is snapshotted first. Caller holds s.mu.
func (s *Session) recover() (bool, error) {
	if !s.state.Lost {
		return false, nil
	}
	orig := s.state.LogPath
	if !storage.Exists(orig) {
		return false, nil
	}

	text, err := storage.ReadLog(orig)
	if err != nil {
		return false, err
	}
	if path, err := s.backups.Snapshot(text); err != nil {
		s.logger.Warn("snapshot before recovery", slog.Any("error", err))
	} else {
		s.logger.Info("snapshot before recovery", slog.String("path", path))
	}

	now := s.now()
	res := s.engine.Merge(s.store, s.codec.Read(text, s.store, now), false, now)
	content := s.encode()
	if err := storage.WriteLog(orig, content); err != nil {
		return false, err
	}
	s.store.ClearPending()

	if s.state.UsingTemp {
		if err := removeIfExists(s.tempPath()); err != nil {
			s.logger.Warn("remove temporary log", slog.Any("error", err))
		}
	}
	s.state.Lost = false
	s.state.UsingTemp = false
	s.state.ActivePath = orig
	s.state.LastHash = storage.Hash(content)
	s.state.LastError = nil
	s.state.LastSync = s.now()

	s.logger.Info("log file recovered", slog.String("path", orig), slog.Int("merged", len(res.Added)))
	s.events.publish(Event{Kind: EventRecovered, Path: orig, Result: res, At: s.now()})
	return true, nil
}

// reattach reconnects a lost session that is not using the temporary log.
// An original log that exists is always read before anything is written to
// it: a session that has loaded nothing takes it as a first load, any other
// goes through recover. A missing log whose directory is back is created
// from the store. It reports whether the original is in use again. Caller
// holds s.mu.
func (s *Session) reattach() (bool, error) {
	orig := s.state.LogPath
	switch {
	case storage.Exists(orig):
		if s.engine.Phase() != reconcile.PhaseInit || s.store.Len() > 0 || s.store.Pending() {
			return s.recover()
		}
		text, err := storage.ReadLog(orig)
		if err != nil {
			return false, err
		}
		s.state.Lost = false
		s.state.ActivePath = orig
		s.state.LastHash = ""
		s.reconcileText(orig, text)
		s.events.publish(Event{Kind: EventRecovered, Path: orig, At: s.now()})
		return true, nil
	case storage.DirExists(orig):
		s.state.Lost = false
		s.state.ActivePath = orig
		s.store.MarkPending()
		if err := s.flush(); err != nil {
			return false, err
		}
		s.events.publish(Event{Kind: EventRecovered, Path: orig, At: s.now()})
		return true, nil
	}
	return false, nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
