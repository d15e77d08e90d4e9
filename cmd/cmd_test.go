package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/xolan/timetracker/internal/config"
	"github.com/xolan/timetracker/internal/logging"
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

// testEnv runs commands the way separate processes would: every Open builds
// a fresh session over the same data directory and settings.
type testEnv struct {
	dir      string
	logPath  string
	settings *settings.Settings
	clock    *testClock
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	exitCode int
	modes    []Mode
	openErr  error
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		dir:      t.TempDir(),
		settings: settings.New(settings.NewMemoryStore()),
		clock:    &testClock{t: t0},
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
	}
	env.logPath = filepath.Join(env.dir, storage.LogFile)

	SetDeps(&Deps{
		Stdout: env.stdout,
		Stderr: env.stderr,
		Stdin:  strings.NewReader(""),
		Exit:   func(code int) { env.exitCode = code },
		Open:   env.open,
	})
	rootCmd.SetOut(env.stdout)
	rootCmd.SetErr(env.stderr)
	t.Cleanup(func() {
		ResetDeps()
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})
	return env
}

func (env *testEnv) open(ctx context.Context, mode Mode) (*Runtime, error) {
	env.modes = append(env.modes, mode)
	if env.openErr != nil {
		return nil, env.openErr
	}
	backups := storage.NewBackupManager(filepath.Join(env.dir, storage.BackupDir), 7)
	backups.Now = env.clock.Now
	session := logsync.NewSession(logsync.Options{
		DataDir:  env.dir,
		Codec:    storage.NewCodec(time.UTC),
		Settings: env.settings,
		Backups:  backups,
		Logger:   logging.Nop(),
		Now:      env.clock.Now,
	})
	if err := session.Open(ctx); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	services := service.NewServicesWithSession(session, env.settings, filepath.Join(env.dir, config.ConfigFile), cfg)
	return &Runtime{
		Services: services,
		Config:   cfg,
		Logger:   logging.Nop(),
		close: func(flush bool) error {
			if !flush {
				return nil
			}
			return session.Close(context.Background())
		},
	}, nil
}

// execute runs the root command with args after clearing output and flags
// left by the previous run.
func (env *testEnv) execute(t *testing.T, args ...string) error {
	t.Helper()
	return env.executeWithInput(t, "", args...)
}

func (env *testEnv) executeWithInput(t *testing.T, text string, args ...string) error {
	t.Helper()
	env.stdout.Reset()
	env.stderr.Reset()
	env.exitCode = 0
	deps.Stdin = strings.NewReader(text)
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// input runs args with text on stdin.
func (env *testEnv) input(t *testing.T, text string, args ...string) string {
	t.Helper()
	require.NoError(t, env.executeWithInput(t, text, args...))
	return env.stdout.String()
}

// run is execute for commands that must parse.
func (env *testEnv) run(t *testing.T, args ...string) string {
	t.Helper()
	require.NoError(t, env.execute(t, args...))
	return env.stdout.String()
}

func (env *testEnv) readLog(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile(env.logPath)
	require.NoError(t, err)
	return string(b)
}

// seed logs three finished entries today through the CLI:
// [1] acme 08:00-10:00 "build #code @globex", [2] beta 10:00-11:00 "call",
// [3] acme 11:00-11:30 "review #code".
func (env *testEnv) seed(t *testing.T) {
	t.Helper()
	env.run(t, "add", "acme", "build", "#code", "@globex", "--start", "08:00", "--end", "10:00")
	env.run(t, "add", "beta", "call", "--start", "10:00", "--end", "11:00")
	env.run(t, "add", "acme", "review", "#code", "--start", "11:00", "--end", "11:30")
	require.Zero(t, env.exitCode, env.stderr.String())
}

// resetFlags puts every flag of cmd and its subcommands back to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
