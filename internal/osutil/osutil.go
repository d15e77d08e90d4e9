// Package osutil resolves the application's directories behind a swappable
// provider so tests can point them at temporary locations.
package osutil

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
)

const (
	// AppDir names the data and config directories.
	AppDir = "time-tracker"
	// DirPerm is used for every directory the application creates.
	DirPerm os.FileMode = 0755
)

// PathProvider abstracts the OS lookups used for path resolution.
type PathProvider interface {
	UserConfigDir() (string, error)
	HomeDir() (string, error)
	MkdirAll(path string, perm os.FileMode) error
}

// DefaultPathProvider uses the real OS.
type DefaultPathProvider struct{}

// UserConfigDir returns the platform configuration root.
func (DefaultPathProvider) UserConfigDir() (string, error) {
	return os.UserConfigDir()
}

// HomeDir returns the user's home directory. go-homedir also works when
// $HOME is unset and falls back to the passwd entry.
func (DefaultPathProvider) HomeDir() (string, error) {
	return homedir.Dir()
}

// MkdirAll creates path with its parents.
func (DefaultPathProvider) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Provider is the package-level provider. Tests replace it.
var Provider PathProvider = DefaultPathProvider{}

// SetProvider sets a custom provider (for testing).
func SetProvider(p PathProvider) {
	Provider = p
}

// ResetProvider restores DefaultPathProvider.
func ResetProvider() {
	Provider = DefaultPathProvider{}
}

// Expand resolves a leading ~ against the provider's home directory.
func Expand(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	if len(path) > 1 && path[1] != '/' && path[1] != '\\' {
		return "", fmt.Errorf("cannot expand user-specific home dir in %q", path)
	}
	home, err := Provider.HomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// DataDir returns the data directory, creating it if needed. An empty
// override selects <home>/.local/share/time-tracker.
func DataDir(override string) (string, error) {
	dir := override
	if dir == "" {
		home, err := Provider.HomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "share", AppDir)
	} else {
		expanded, err := Expand(dir)
		if err != nil {
			return "", err
		}
		dir = expanded
	}
	if err := Provider.MkdirAll(dir, DirPerm); err != nil {
		return "", fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return dir, nil
}

// ConfigDir returns <UserConfigDir>/time-tracker, creating it if needed.
func ConfigDir() (string, error) {
	root, err := Provider.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	dir := filepath.Join(root, AppDir)
	if err := Provider.MkdirAll(dir, DirPerm); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	return dir, nil
}
