package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLog_ReadLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), LogFile)

	require.NoError(t, WriteLog(path, "hello\n"))
	got, err := ReadLog(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", got)

	require.NoError(t, WriteLog(path, "replaced\n"))
	got, err = ReadLog(path)
	require.NoError(t, err)
	assert.Equal(t, "replaced\n", got)

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files left behind")
}

func TestReadLog_Missing(t *testing.T) {
	_, err := ReadLog(filepath.Join(t.TempDir(), "nope.csv"))

	assert.ErrorIs(t, err, ErrFileMissing)
	var fe *FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "read", fe.Op)
}

func TestReadLog_InvalidEncoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), LogFile)
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 'a', ',', 0xc3}, 0o644))

	_, err := ReadLog(path)
	assert.ErrorIs(t, err, ErrEncodingInvalid)
}

func TestWriteLog_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone", LogFile)

	err := WriteLog(path, "x")

	assert.ErrorIs(t, err, ErrFileMissing)
	assert.False(t, Exists(path))
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LogFile)

	assert.False(t, Exists(path))
	assert.True(t, DirExists(path))
	assert.False(t, Exists(dir), "directories are not log files")

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	assert.True(t, Exists(path))
	assert.False(t, DirExists(filepath.Join(dir, "missing", LogFile)))
}

func TestHash(t *testing.T) {
	assert.Equal(t, Hash("a"), Hash("a"))
	assert.NotEqual(t, Hash("a"), Hash("b"))
	assert.Len(t, Hash(""), 64)
}
