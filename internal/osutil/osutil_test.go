package osutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockPathProvider is a mock implementation for testing.
type MockPathProvider struct {
	UserConfigDirFn func() (string, error)
	HomeDirFn       func() (string, error)
	MkdirAllFn      func(path string, perm os.FileMode) error
}

func (m *MockPathProvider) UserConfigDir() (string, error) {
	if m.UserConfigDirFn != nil {
		return m.UserConfigDirFn()
	}
	return "", nil
}

func (m *MockPathProvider) HomeDir() (string, error) {
	if m.HomeDirFn != nil {
		return m.HomeDirFn()
	}
	return "", nil
}

func (m *MockPathProvider) MkdirAll(path string, perm os.FileMode) error {
	if m.MkdirAllFn != nil {
		return m.MkdirAllFn(path, perm)
	}
	return nil
}

func withProvider(t *testing.T, p PathProvider) {
	t.Helper()
	SetProvider(p)
	t.Cleanup(ResetProvider)
}

func TestDefaultPathProvider(t *testing.T) {
	p := DefaultPathProvider{}

	dir, err := p.HomeDir()
	require.NoError(t, err)
	assert.NotEmpty(t, dir)

	nested := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, p.MkdirAll(nested, DirPerm))
	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestResetProvider(t *testing.T) {
	SetProvider(&MockPathProvider{})
	ResetProvider()
	_, ok := Provider.(DefaultPathProvider)
	assert.True(t, ok)
}

func TestExpand(t *testing.T) {
	withProvider(t, &MockPathProvider{HomeDirFn: func() (string, error) { return "/home/kev", nil }})

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "/abs/log.csv", want: "/abs/log.csv"},
		{in: "rel/log.csv", want: "rel/log.csv"},
		{in: "~", want: "/home/kev"},
		{in: "~/usb/log.csv", want: "/home/kev/usb/log.csv"},
		{in: "~other/log.csv", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Expand(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestDataDir(t *testing.T) {
	home := t.TempDir()
	withProvider(t, &MockPathProvider{
		HomeDirFn:  func() (string, error) { return home, nil },
		MkdirAllFn: os.MkdirAll,
	})

	dir, err := DataDir("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local", "share", AppDir), dir)
	assert.DirExists(t, dir)

	dir, err = DataDir("~/elsewhere")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "elsewhere"), dir)
}

func TestDataDir_Errors(t *testing.T) {
	boom := errors.New("boom")

	withProvider(t, &MockPathProvider{HomeDirFn: func() (string, error) { return "", boom }})
	_, err := DataDir("")
	assert.ErrorIs(t, err, boom)

	withProvider(t, &MockPathProvider{
		HomeDirFn:  func() (string, error) { return "/h", nil },
		MkdirAllFn: func(string, os.FileMode) error { return boom },
	})
	_, err = DataDir("")
	assert.ErrorIs(t, err, boom)
}

func TestConfigDir(t *testing.T) {
	root := t.TempDir()
	withProvider(t, &MockPathProvider{
		UserConfigDirFn: func() (string, error) { return root, nil },
		MkdirAllFn:      os.MkdirAll,
	})

	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, AppDir), dir)

	boom := errors.New("no config dir")
	withProvider(t, &MockPathProvider{UserConfigDirFn: func() (string, error) { return "", boom }})
	_, err = ConfigDir()
	assert.ErrorIs(t, err, boom)
}
