package logsync

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xolan/timetracker/internal/entry"
	"github.com/xolan/timetracker/internal/settings"
	"github.com/xolan/timetracker/internal/storage"
	"github.com/xolan/timetracker/internal/store"
)

var (
	t0    = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	codec = storage.NewCodec(time.UTC)
	ctx   = context.Background()
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	dataDir  string
	logPath  string
	settings *settings.Settings
	clock    *fakeClock
}

// newFixture puts the log in its own directory so tests can make it vanish
// the way a removable drive does.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		dataDir:  filepath.Join(root, "data"),
		logPath:  filepath.Join(root, "usb", storage.LogFile),
		settings: settings.New(settings.NewMemoryStore()),
		clock:    &fakeClock{t: t0},
	}
	require.NoError(t, os.MkdirAll(f.dataDir, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(f.logPath), 0o755))
	require.NoError(t, f.settings.SetString(settings.KeyLogFile, f.logPath))
	return f
}

func (f *fixture) session(prompter Prompter) *Session {
	backups := storage.NewBackupManager(filepath.Join(f.dataDir, storage.BackupDir), 7)
	backups.Now = f.clock.Now
	return NewSession(Options{
		DataDir:  f.dataDir,
		Codec:    codec,
		Settings: f.settings,
		Backups:  backups,
		Prompter: prompter,
		Now:      f.clock.Now,
	})
}

func span(id int64, project string, hour int) entry.Entry {
	start := t0.Add(time.Duration(hour) * time.Hour)
	return entry.Entry{ID: id, Project: project, Start: start, End: entry.Ptr(start.Add(30 * time.Minute))}
}

func writeLog(t *testing.T, path string, entries ...entry.Entry) {
	t.Helper()
	require.NoError(t, storage.WriteLog(path, codec.Encode(entries, nil, nil)))
}

func readIDs(t *testing.T, path string) []int64 {
	t.Helper()
	text, err := storage.ReadLog(path)
	require.NoError(t, err)
	var ids []int64
	for _, e := range codec.Read(text, storage.NoIDs{}, t0).Entries {
		ids = append(ids, e.ID)
	}
	return ids
}

func storeIDs(s *Session) []int64 {
	var ids []int64
	s.View(func(st *store.Store) {
		for _, e := range st.Entries() {
			ids = append(ids, e.ID)
		}
	})
	return ids
}

func add(t *testing.T, s *Session, e entry.Entry) {
	t.Helper()
	_, err := s.Apply(store.Command{Kind: store.CmdAdd, Entry: e})
	require.NoError(t, err)
}

func drain(ch <-chan Event) []EventKind {
	var kinds []EventKind
	for {
		select {
		case ev := <-ch:
			kinds = append(kinds, ev.Kind)
		default:
			return kinds
		}
	}
}

func TestOpen_CreatesMissingLog(t *testing.T) {
	f := newFixture(t)
	s := f.session(nil)

	require.NoError(t, s.Open(ctx))
	assert.FileExists(t, f.logPath)
	st := s.State()
	assert.False(t, st.Lost)
	assert.Equal(t, f.logPath, st.ActivePath)
	assert.False(t, st.Pending)

	text, err := storage.ReadLog(f.logPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Project,Start Time,End Time"))
}

func TestOpen_DefaultLogPath(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.settings.Unset(settings.KeyLogFile))
	s := f.session(nil)

	require.NoError(t, s.Open(ctx))
	assert.Equal(t, filepath.Join(f.dataDir, storage.LogFile), s.State().LogPath)
}

func TestOpen_LoadsExistingAndRegistersProjects(t *testing.T) {
	f := newFixture(t)
	writeLog(t, f.logPath, span(1, "Kevin", 0), span(2, "Acme", 1))
	s := f.session(nil)

	require.NoError(t, s.Open(ctx))
	assert.Equal(t, []int64{1, 2}, storeIDs(s))
	assert.Contains(t, f.settings.Projects(), "Kevin")
	assert.Contains(t, f.settings.Projects(), "Acme")
}

func TestCycle_PendingFlushesWithoutDecode(t *testing.T) {
	f := newFixture(t)
	writeLog(t, f.logPath, span(1, "a", 0))
	s := f.session(nil)
	require.NoError(t, s.Open(ctx))

	add(t, s, span(2, "local", 1))
	writeLog(t, f.logPath, span(1, "a", 0), span(99, "external", 2))

	require.NoError(t, s.Cycle(ctx))
	assert.Equal(t, []int64{1, 2}, readIDs(t, f.logPath), "the file is overwritten")
	assert.Equal(t, []int64{1, 2}, storeIDs(s), "nothing was decoded this cycle")
	assert.False(t, s.State().Pending)
}

func TestCycle_ReconcilesExternalEdits(t *testing.T) {
	f := newFixture(t)
	writeLog(t, f.logPath, span(1, "a", 0), span(2, "b", 1))
	s := f.session(nil)
	require.NoError(t, s.Open(ctx))
	events := s.Subscribe(8)

	require.NoError(t, s.Cycle(ctx))
	assert.Empty(t, drain(events), "unchanged file is skipped by hash")

	writeLog(t, f.logPath, span(2, "b", 1), span(3, "c", 2))
	require.NoError(t, s.Cycle(ctx))
	assert.Equal(t, []int64{2, 3}, storeIDs(s))
	assert.Equal(t, []EventKind{EventSynced}, drain(events))
}

func TestCycle_DirtyFileIsRewritten(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.logPath, []byte(
		"Project,Start Time,End Time,Description,ID\n"+
			"a,2024-01-01T09:00:00,2024-01-01T10:00:00,,7\n"+
			"b,2024-01-01T11:00:00,2024-01-01T12:00:00,,7\n"), 0o644))
	s := f.session(nil)

	require.NoError(t, s.Open(ctx))
	assert.True(t, s.State().Pending, "a reassigned id marks writes pending")
	require.NoError(t, s.Cycle(ctx))
	ids := readIDs(t, f.logPath)
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
}

func TestLostFile_DeletedMidRunRecoversByMerge(t *testing.T) {
	f := newFixture(t)
	writeLog(t, f.logPath, span(1, "a", 0))
	s := f.session(nil)
	require.NoError(t, s.Open(ctx))
	events := s.Subscribe(16)

	// The drive goes away.
	require.NoError(t, os.RemoveAll(filepath.Dir(f.logPath)))
	add(t, s, span(2, "while-lost", 1))
	require.NoError(t, s.Cycle(ctx))

	st := s.State()
	require.True(t, st.Lost)
	require.True(t, st.UsingTemp)
	temp := filepath.Join(f.dataDir, storage.TempLogFile)
	assert.Equal(t, temp, st.ActivePath)
	assert.Equal(t, []int64{1, 2}, readIDs(t, temp))

	add(t, s, span(3, "still-lost", 2))
	require.NoError(t, s.Cycle(ctx))
	assert.Equal(t, []int64{1, 2, 3}, readIDs(t, temp))

	ok, err := s.CheckRecovery()
	require.NoError(t, err)
	assert.False(t, ok, "original still missing")

	// The drive comes back with an edit made elsewhere.
	require.NoError(t, os.MkdirAll(filepath.Dir(f.logPath), 0o755))
	writeLog(t, f.logPath, span(1, "a", 0), span(4, "elsewhere", 3))
	f.clock.Advance(time.Minute)

	ok, err = s.CheckRecovery()
	require.NoError(t, err)
	require.True(t, ok)

	st = s.State()
	assert.False(t, st.Lost)
	assert.False(t, st.UsingTemp)
	assert.Equal(t, f.logPath, st.ActivePath)
	assert.NoFileExists(t, temp)
	assert.Equal(t, []int64{1, 2, 3, 4}, readIDs(t, f.logPath))
	assert.Equal(t, []int64{1, 2, 3, 4}, storeIDs(s))

	backups, err := s.Backups().List()
	require.NoError(t, err)
	assert.Len(t, backups, 1, "the original is snapshotted before merging")

	kinds := drain(events)
	assert.Contains(t, kinds, EventLost)
	assert.Contains(t, kinds, EventRecovered)

	// Back to normal: the next cycle reads the original and changes nothing.
	require.NoError(t, s.Cycle(ctx))
	assert.Equal(t, []int64{1, 2, 3, 4}, storeIDs(s))
}

func TestRecovery_TempEntriesWin(t *testing.T) {
	f := newFixture(t)
	writeLog(t, f.logPath, span(1, "a", 0))
	s := f.session(nil)
	require.NoError(t, s.Open(ctx))

	require.NoError(t, os.Remove(f.logPath))
	require.NoError(t, s.Cycle(ctx))
	require.True(t, s.State().Lost, "a vanished file is lost even if its directory remains")

	edited := span(1, "edited-while-lost", 0)
	_, err := s.Apply(store.Command{Kind: store.CmdEdit, Entry: edited})
	require.NoError(t, err)
	require.NoError(t, s.Cycle(ctx))

	writeLog(t, f.logPath, span(1, "stale", 0))
	ok, err := s.CheckRecovery()
	require.NoError(t, err)
	require.True(t, ok)

	s.View(func(st *store.Store) {
		got, _ := st.Get(1)
		assert.Equal(t, "edited-while-lost", got.Project)
	})
}

func TestOpen_LeftoverTempIsMergedBack(t *testing.T) {
	f := newFixture(t)
	writeLog(t, f.logPath, span(1, "a", 0))
	temp := filepath.Join(f.dataDir, storage.TempLogFile)
	writeLog(t, temp, span(2, "from-last-run", 1))

	s := f.session(nil)
	require.NoError(t, s.Open(ctx))

	assert.False(t, s.State().Lost)
	assert.NoFileExists(t, temp)
	assert.Equal(t, []int64{1, 2}, readIDs(t, f.logPath))
}

func TestOpen_LeftoverTempCreatesMissingOriginal(t *testing.T) {
	f := newFixture(t)
	temp := filepath.Join(f.dataDir, storage.TempLogFile)
	writeLog(t, temp, span(2, "from-last-run", 1))

	s := f.session(nil)
	require.NoError(t, s.Open(ctx))

	assert.False(t, s.State().Lost)
	assert.NoFileExists(t, temp)
	assert.Equal(t, []int64{2}, readIDs(t, f.logPath))
}

func TestOpen_DeletionWhileLostSurvivesRestart(t *testing.T) {
	f := newFixture(t)
	writeLog(t, f.logPath, span(1, "a", 0), span(2, "b", 1))
	s := f.session(nil)
	require.NoError(t, s.Open(ctx))

	usb := filepath.Dir(f.logPath)
	stash := filepath.Join(t.TempDir(), "stash")
	require.NoError(t, os.Rename(usb, stash))
	require.NoError(t, s.Cycle(ctx))
	require.True(t, s.State().UsingTemp)

	_, err := s.Apply(store.Command{Kind: store.CmdDelete, ID: 2})
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))

	// The drive is back with the log as it was before the deletion.
	require.NoError(t, os.Rename(stash, usb))
	again := f.session(nil)
	require.NoError(t, again.Open(ctx))

	assert.False(t, again.State().Lost)
	assert.Equal(t, []int64{1}, storeIDs(again))
	assert.Equal(t, []int64{1}, readIDs(t, f.logPath))
}

func TestRetry_ReadsReturnedLogBeforeWriting(t *testing.T) {
	lost := func(t *testing.T) (*fixture, *Session) {
		f := newFixture(t)
		require.NoError(t, f.settings.SetBool(settings.KeyAutoTempLog, false))
		usb := filepath.Dir(f.logPath)
		require.NoError(t, os.RemoveAll(usb))

		calls := 0
		s := f.session(PrompterFunc(func(context.Context, LostInfo) (Decision, error) {
			calls++
			if calls == 1 {
				// The user plugs the drive back in before answering.
				require.NoError(t, os.MkdirAll(usb, 0o755))
				writeLog(t, f.logPath, span(1, "a", 0), span(2, "b", 1))
			}
			return Retry(), nil
		}))
		return f, s
	}

	t.Run("open loads at once", func(t *testing.T) {
		f, s := lost(t)
		require.NoError(t, s.Open(ctx))

		assert.False(t, s.State().Lost)
		assert.Equal(t, []int64{1, 2}, storeIDs(s))

		add(t, s, span(3, "c", 2))
		require.NoError(t, s.Cycle(ctx))
		assert.Equal(t, []int64{1, 2, 3}, readIDs(t, f.logPath))
	})

	t.Run("log returns after local writes", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.settings.SetBool(settings.KeyAutoTempLog, false))
		usb := filepath.Dir(f.logPath)
		require.NoError(t, os.RemoveAll(usb))
		s := f.session(PrompterFunc(func(context.Context, LostInfo) (Decision, error) {
			return Retry(), nil
		}))
		require.NoError(t, s.Open(ctx))
		require.True(t, s.State().Lost)

		add(t, s, span(3, "c", 2))
		require.NoError(t, os.MkdirAll(usb, 0o755))
		writeLog(t, f.logPath, span(1, "a", 0), span(2, "b", 1))

		require.NoError(t, s.Cycle(ctx))
		assert.False(t, s.State().Lost)
		assert.Equal(t, []int64{1, 2, 3}, readIDs(t, f.logPath))
		assert.Equal(t, []int64{1, 2, 3}, storeIDs(s))

		backups, err := s.Backups().List()
		require.NoError(t, err)
		assert.Len(t, backups, 1, "the returned log is snapshotted before merging")
	})

	t.Run("shutdown flush merges", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.settings.SetBool(settings.KeyAutoTempLog, false))
		usb := filepath.Dir(f.logPath)
		require.NoError(t, os.RemoveAll(usb))
		s := f.session(PrompterFunc(func(context.Context, LostInfo) (Decision, error) {
			return Retry(), nil
		}))
		require.NoError(t, s.Open(ctx))

		add(t, s, span(3, "c", 2))
		require.NoError(t, os.MkdirAll(usb, 0o755))
		writeLog(t, f.logPath, span(1, "a", 0))

		require.NoError(t, s.Close(ctx))
		assert.Equal(t, []int64{1, 3}, readIDs(t, f.logPath))
	})
}

func TestPrompter(t *testing.T) {
	lostFixture := func(t *testing.T) *fixture {
		f := newFixture(t)
		require.NoError(t, f.settings.SetBool(settings.KeyAutoTempLog, false))
		require.NoError(t, os.RemoveAll(filepath.Dir(f.logPath)))
		return f
	}

	t.Run("quit", func(t *testing.T) {
		f := lostFixture(t)
		s := f.session(PrompterFunc(func(context.Context, LostInfo) (Decision, error) {
			return Quit(), nil
		}))
		assert.ErrorIs(t, s.Open(ctx), ErrQuit)
	})

	t.Run("use temp", func(t *testing.T) {
		f := lostFixture(t)
		var got LostInfo
		s := f.session(PrompterFunc(func(_ context.Context, info LostInfo) (Decision, error) {
			got = info
			return UseTemp(), nil
		}))
		require.NoError(t, s.Open(ctx))
		assert.Equal(t, f.logPath, got.Path)
		assert.Equal(t, "open", got.Op)
		assert.ErrorIs(t, got.Err, storage.ErrFileMissing)
		assert.True(t, s.State().UsingTemp)
	})

	t.Run("use path", func(t *testing.T) {
		f := lostFixture(t)
		other := filepath.Join(t.TempDir(), "other.csv")
		writeLog(t, other, span(5, "other", 0))
		s := f.session(PrompterFunc(func(context.Context, LostInfo) (Decision, error) {
			return UsePath(other), nil
		}))

		require.NoError(t, s.Open(ctx))
		st := s.State()
		assert.False(t, st.Lost)
		assert.Equal(t, other, st.LogPath)
		assert.Equal(t, other, f.settings.LogFile(""))
		assert.Equal(t, []int64{5}, storeIDs(s))
	})

	t.Run("bad path asks again", func(t *testing.T) {
		f := lostFixture(t)
		calls := 0
		s := f.session(PrompterFunc(func(context.Context, LostInfo) (Decision, error) {
			calls++
			if calls == 1 {
				return UsePath("/no/such/dir/log.csv"), nil
			}
			return UseTemp(), nil
		}))
		require.NoError(t, s.Open(ctx))
		assert.Equal(t, 2, calls)
		assert.True(t, s.State().UsingTemp)
	})

	t.Run("retry asks again each cycle", func(t *testing.T) {
		f := lostFixture(t)
		calls := 0
		s := f.session(PrompterFunc(func(context.Context, LostInfo) (Decision, error) {
			calls++
			return Retry(), nil
		}))
		require.NoError(t, s.Open(ctx))
		st := s.State()
		assert.True(t, st.Lost)
		assert.False(t, st.UsingTemp)

		require.NoError(t, s.Cycle(ctx))
		assert.Equal(t, 2, calls)

		require.NoError(t, os.MkdirAll(filepath.Dir(f.logPath), 0o755))
		add(t, s, span(1, "a", 0))
		require.NoError(t, s.Cycle(ctx))
		assert.Equal(t, 2, calls, "directory is back, no prompt")
		assert.False(t, s.State().Lost)
		assert.Equal(t, []int64{1}, readIDs(t, f.logPath))
	})
}

func TestBackupAndRestore(t *testing.T) {
	f := newFixture(t)
	writeLog(t, f.logPath, span(1, "a", 0))
	s := f.session(nil)
	require.NoError(t, s.Open(ctx))

	snap, _, err := s.Backup()
	require.NoError(t, err)
	require.FileExists(t, snap)

	add(t, s, span(2, "b", 1))
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, []int64{1, 2}, readIDs(t, f.logPath))

	require.NoError(t, s.Restore(ctx, filepath.Base(snap)))
	assert.Equal(t, []int64{1}, readIDs(t, f.logPath))
	assert.Equal(t, []int64{1}, storeIDs(s))

	backups, err := s.Backups().List()
	require.NoError(t, err)
	assert.Len(t, backups, 2, "restore snapshots the current log first")
}

func TestSwitchLog(t *testing.T) {
	f := newFixture(t)
	writeLog(t, f.logPath, span(1, "a", 0))
	s := f.session(nil)
	require.NoError(t, s.Open(ctx))

	fresh := filepath.Join(t.TempDir(), "new.csv")
	require.NoError(t, s.SwitchLog(fresh))
	assert.Equal(t, []int64{1}, readIDs(t, fresh), "a new log starts with the current entries")
	assert.Equal(t, fresh, s.State().ActivePath)

	assert.Error(t, s.SwitchLog("/no/such/dir/x.csv"))
}

func TestClose_FlushesAndClosesSubscribers(t *testing.T) {
	f := newFixture(t)
	s := f.session(nil)
	require.NoError(t, s.Open(ctx))
	events := s.Subscribe(8)

	add(t, s, span(1, "a", 0))
	require.NoError(t, s.Close(ctx))
	assert.Equal(t, []int64{1}, readIDs(t, f.logPath))

	for range events {
	}
}

func TestClose_UndoHistorySurvivesReopen(t *testing.T) {
	f := newFixture(t)
	s := f.session(nil)
	require.NoError(t, s.Open(ctx))
	add(t, s, span(1, "a", 0))
	add(t, s, span(2, "b", 1))
	require.NoError(t, s.Close(ctx))

	again := f.session(nil)
	require.NoError(t, again.Open(ctx))
	_, err := again.Apply(store.Command{Kind: store.CmdUndo})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, storeIDs(again))
	require.NoError(t, again.Close(ctx))
	assert.Equal(t, []int64{1}, readIDs(t, f.logPath))

	third := f.session(nil)
	require.NoError(t, third.Open(ctx))
	_, err = third.Apply(store.Command{Kind: store.CmdRedo})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, storeIDs(third))
}

func TestOpen_DropsUnreadableHistory(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.settings.SetHistory("cursor = ["))

	s := f.session(nil)
	require.NoError(t, s.Open(ctx))
	_, err := s.Apply(store.Command{Kind: store.CmdUndo})
	assert.ErrorIs(t, err, store.ErrNothingToUndo)
	assert.Empty(t, f.settings.History())
}
