package handlers

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/config"
	"github.com/xolan/timetracker/internal/logsync"
	"github.com/xolan/timetracker/internal/service"
	"github.com/xolan/timetracker/internal/settings"
	"github.com/xolan/timetracker/internal/storage"
)

func init() {
	color.NoColor = true
}

// Monday noon.
var t0 = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testDeps struct {
	*cli.Deps
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	exitCode *int
	clock    *testClock
	logPath  string
}

// reset clears captured output and the exit code between steps.
func (d *testDeps) reset() {
	d.stdout.Reset()
	d.stderr.Reset()
	*d.exitCode = 0
}

func setupTestDeps(t *testing.T) *testDeps {
	t.Helper()
	dir := t.TempDir()
	clock := &testClock{t: t0}
	st := settings.New(settings.NewMemoryStore())
	backups := storage.NewBackupManager(filepath.Join(dir, storage.BackupDir), 7)
	backups.Now = clock.Now

	session := logsync.NewSession(logsync.Options{
		DataDir:  dir,
		Codec:    storage.NewCodec(time.UTC),
		Settings: st,
		Backups:  backups,
		Now:      clock.Now,
	})
	require.NoError(t, session.Open(context.Background()))

	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	services := service.NewServicesWithSession(session, st, filepath.Join(dir, config.ConfigFile), cfg)

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	exitCode := 0
	deps := &cli.Deps{
		Stdout:   stdout,
		Stderr:   stderr,
		Stdin:    strings.NewReader(""),
		Exit:     func(code int) { exitCode = code },
		Services: services,
	}
	return &testDeps{
		Deps:     deps,
		stdout:   stdout,
		stderr:   stderr,
		exitCode: &exitCode,
		clock:    clock,
		logPath:  filepath.Join(dir, storage.LogFile),
	}
}

// seed logs three finished entries today:
// [1] acme 08:00-10:00 "build #code @globex", [2] beta 10:00-11:00 "call",
// [3] acme 11:00-11:30 "review #code".
func seed(t *testing.T, d *testDeps) {
	t.Helper()
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	add := func(project, meta string, from, to time.Duration) {
		_, err := d.Services.Entry.CreateSpan(project, meta, day.Add(from), day.Add(to))
		require.NoError(t, err)
	}
	add("acme", "build #code @globex", 8*time.Hour, 10*time.Hour)
	add("beta", "call", 10*time.Hour, 11*time.Hour)
	add("acme", "review #code", 11*time.Hour, 11*time.Hour+30*time.Minute)
}
