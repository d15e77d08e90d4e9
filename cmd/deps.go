package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/xolan/timetracker/internal/cli"
	"github.com/xolan/timetracker/internal/config"
	"github.com/xolan/timetracker/internal/logging"
	"github.com/xolan/timetracker/internal/logsync"
	"github.com/xolan/timetracker/internal/service"
)

// Mode selects how a command's runtime is opened.
type Mode int

const (
	// ModeOneShot logs warnings to stderr and asks about a lost log when
	// stdin is a terminal.
	ModeOneShot Mode = iota
	// ModeLongRunning logs JSON to tt.log at the configured level.
	ModeLongRunning
	// ModeInteractive is ModeLongRunning without the terminal prompter, for
	// commands that own the screen.
	ModeInteractive
)

// Runtime is an opened session with its services and logger.
type Runtime struct {
	Services *service.Services
	Config   config.Config
	Logger   *slog.Logger

	abandoned bool
	close     func(flush bool) error
}

// Abandon makes Close skip the final flush. Used after the user quits from
// the lost log prompt.
func (r *Runtime) Abandon() {
	r.abandoned = true
}

// Close flushes pending writes and releases the log file.
func (r *Runtime) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close(!r.abandoned)
}

// Deps holds external dependencies for CLI commands, enabling testability.
type Deps struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Exit   func(code int)
	// Open loads config and opens the session for a command.
	Open func(ctx context.Context, mode Mode) (*Runtime, error)
}

// DefaultDeps returns the default production dependencies.
func DefaultDeps() *Deps {
	d := &Deps{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stdin:  os.Stdin,
		Exit:   os.Exit,
	}
	d.Open = func(ctx context.Context, mode Mode) (*Runtime, error) {
		return openRuntime(ctx, d, mode)
	}
	return d
}

// deps is the global dependencies instance used by commands.
// In production, this is DefaultDeps(). Tests can replace it.
var deps = DefaultDeps()

// SetDeps sets the global dependencies (for testing).
func SetDeps(d *Deps) {
	deps = d
}

// ResetDeps resets dependencies to defaults (for testing cleanup).
func ResetDeps() {
	deps = DefaultDeps()
}

func openRuntime(ctx context.Context, d *Deps, mode Mode) (*Runtime, error) {
	cfgPath, err := config.GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config location: %w", err)
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}
	dataDir, err := service.DataDir(cfg)
	if err != nil {
		return nil, err
	}

	var logFile *os.File
	logger := logging.NewLogger(logging.Config{Level: config.DefaultLogLevel, Output: d.Stderr, Version: versionInfo.version})
	if mode != ModeOneShot {
		logFile, err = logging.OpenFile(dataDir)
		if err != nil {
			return nil, err
		}
		logger = logging.NewLogger(logging.Config{Level: cfg.LogLevel, JSON: true, Output: logFile, Version: versionInfo.version})
	}

	prompter := lostPrompter(d, mode)

	services, err := service.NewServices(service.Environment{
		Config:     cfg,
		ConfigPath: cfgPath,
		Logger:     logger,
		Prompter:   prompter,
	})
	if err == nil {
		err = services.Session.Open(ctx)
	}
	if err != nil {
		if logFile != nil {
			_ = logFile.Close()
		}
		return nil, err
	}

	return &Runtime{
		Services: services,
		Config:   cfg,
		Logger:   logger,
		close: func(flush bool) error {
			var err error
			if flush {
				err = services.Session.Close(context.Background())
			}
			if logFile != nil {
				err = errors.Join(err, logFile.Close())
			}
			return err
		},
	}, nil
}

// lostPrompter returns the terminal prompt asked when the log cannot be
// reached. The TUI and non-terminal input get none and fall back to the
// temporary log.
func lostPrompter(d *Deps, mode Mode) logsync.Prompter {
	if mode == ModeInteractive || !isTerminal(d.Stdin) {
		return nil
	}
	in, ok := d.Stdin.(io.ReadCloser)
	if !ok {
		in = io.NopCloser(d.Stdin)
	}
	out, ok := d.Stdout.(io.WriteCloser)
	if !ok {
		out = nopWriteCloser{d.Stdout}
	}
	return cli.NewLostPrompter(in, out)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// isTerminal is replaced in tests.
var isTerminal = func(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// withRuntime opens a runtime for mode, runs fn with CLI deps over its
// services and closes it. Exit codes requested by fn are applied only after
// pending writes are flushed.
func withRuntime(cmd *cobra.Command, mode Mode, fn func(ctx context.Context, d *cli.Deps, rt *Runtime)) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := deps.Open(ctx, mode)
	if err != nil {
		cli.Errorf(deps.Stderr, "Error: %v\n", err)
		switch {
		case errors.Is(err, logsync.ErrQuit):
		case errors.Is(err, config.ErrInvalidConfig):
			cli.Hintf(deps.Stderr, "Hint: Fix the file or recreate it with 'tt config init'\n")
		default:
			cli.Hintf(deps.Stderr, "Hint: Check that your home directory is accessible\n")
		}
		deps.Exit(1)
		return
	}

	code := 0
	d := &cli.Deps{
		Stdout: deps.Stdout,
		Stderr: deps.Stderr,
		Stdin:  deps.Stdin,
		Exit: func(c int) {
			if code == 0 {
				code = c
			}
		},
		Services: rt.Services,
	}
	fn(ctx, d, rt)

	if err := rt.Close(); err != nil {
		cli.Errorf(deps.Stderr, "Error: failed to save changes: %v\n", err)
		if code == 0 {
			code = 1
		}
	}
	if code != 0 {
		deps.Exit(code)
	}
}
