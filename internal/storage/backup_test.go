package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, keep int, now time.Time) *BackupManager {
	t.Helper()
	m := NewBackupManager(filepath.Join(t.TempDir(), BackupDir), keep)
	m.Now = func() time.Time { return now }
	return m
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func names(backups []BackupInfo) []string {
	var out []string
	for _, b := range backups {
		out = append(out, b.Name)
	}
	return out
}

func TestNewBackupManager_DefaultKeep(t *testing.T) {
	assert.Equal(t, DefaultBackupKeep, NewBackupManager(t.TempDir(), 0).Keep)
	assert.Equal(t, 3, NewBackupManager(t.TempDir(), 3).Keep)
}

func TestBackupManager_SnapshotNaming(t *testing.T) {
	now := time.Date(2024, 5, 6, 1, 0, 0, 0, time.Local)
	m := newTestManager(t, 7, now)

	first, err := m.Snapshot("one")
	require.NoError(t, err)
	second, err := m.Snapshot("two")
	require.NoError(t, err)
	third, err := m.Snapshot("three")
	require.NoError(t, err)

	assert.Equal(t, "backup_2024-05-06.csv", filepath.Base(first))
	assert.Equal(t, "backup_2024-05-06-1.csv", filepath.Base(second))
	assert.Equal(t, "backup_2024-05-06-2.csv", filepath.Base(third))

	content, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "two", string(content))
}

func TestBackupManager_SnapshotFile(t *testing.T) {
	now := time.Date(2024, 5, 6, 1, 0, 0, 0, time.Local)
	m := newTestManager(t, 7, now)
	logPath := filepath.Join(t.TempDir(), LogFile)

	path, err := m.SnapshotFile(logPath)
	require.NoError(t, err)
	assert.Empty(t, path, "missing log produces no snapshot")

	require.NoError(t, os.WriteFile(logPath, []byte("data"), 0o644))
	path, err = m.SnapshotFile(logPath)
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))
}

func TestBackupManager_ListOrderAndForeignFiles(t *testing.T) {
	m := newTestManager(t, 7, time.Now())
	for _, name := range []string{
		"backup_2024-01-02.csv",
		"backup_2024-01-03.csv",
		"backup_2024-01-03-1.csv",
		"backup_2024-01-01.csv",
		"notes.txt",
		"backup_latest.csv",
	} {
		touch(t, m.Dir, name)
	}

	backups, err := m.List()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"backup_2024-01-03-1.csv",
		"backup_2024-01-03.csv",
		"backup_2024-01-02.csv",
		"backup_2024-01-01.csv",
	}, names(backups))
}

func TestBackupManager_ListMissingDir(t *testing.T) {
	m := NewBackupManager(filepath.Join(t.TempDir(), "none"), 7)
	backups, err := m.List()
	assert.NoError(t, err)
	assert.Empty(t, backups)
}

func TestBackupManager_Prune(t *testing.T) {
	now := time.Date(2024, 1, 20, 1, 0, 0, 0, time.Local)
	m := newTestManager(t, 2, now)

	// keep=2: the two newest always stay, anything younger than 3 days stays.
	for _, name := range []string{
		"backup_2024-01-20.csv", // newest
		"backup_2024-01-19.csv", // second newest
		"backup_2024-01-18.csv", // 2 days + 1h old, young enough
		"backup_2024-01-17.csv", // 3 days + 1h old, pruned
		"backup_2024-01-01.csv", // pruned
		"keep-me.csv",
	} {
		touch(t, m.Dir, name)
	}

	removed, err := m.Prune()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"backup_2024-01-17.csv", "backup_2024-01-01.csv"}, removed)

	backups, err := m.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"backup_2024-01-20.csv", "backup_2024-01-19.csv", "backup_2024-01-18.csv"}, names(backups))
	assert.FileExists(t, filepath.Join(m.Dir, "keep-me.csv"))
}

func TestBackupManager_PruneKeepsNewestEvenIfOld(t *testing.T) {
	now := time.Date(2024, 6, 1, 1, 0, 0, 0, time.Local)
	m := newTestManager(t, 2, now)
	for _, name := range []string{"backup_2023-01-01.csv", "backup_2023-01-02.csv", "backup_2022-12-31.csv"} {
		touch(t, m.Dir, name)
	}

	removed, err := m.Prune()
	require.NoError(t, err)
	assert.Equal(t, []string{"backup_2022-12-31.csv"}, removed)
}

func TestBackupManager_Restore(t *testing.T) {
	now := time.Date(2024, 5, 6, 1, 0, 0, 0, time.Local)
	m := newTestManager(t, 7, now)
	logPath := filepath.Join(t.TempDir(), LogFile)

	snap, err := m.Snapshot("old content")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(logPath, []byte("current content"), 0o644))

	require.NoError(t, m.Restore(filepath.Base(snap), logPath))

	got, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "old content", string(got))

	backups, err := m.List()
	require.NoError(t, err)
	require.Len(t, backups, 2, "current log is snapshotted before restoring")
	pre, err := os.ReadFile(backups[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "current content", string(pre))
}

func TestBackupManager_RestoreErrors(t *testing.T) {
	m := newTestManager(t, 7, time.Now())
	logPath := filepath.Join(t.TempDir(), LogFile)

	assert.ErrorIs(t, m.Restore("backup_2024-01-01.csv", logPath), ErrBackupNotFound)
	assert.ErrorIs(t, m.Restore("../log.csv", logPath), ErrBackupNotFound)
}

func TestBackupManager_Run(t *testing.T) {
	now := time.Date(2024, 1, 20, 1, 0, 0, 0, time.Local)
	m := newTestManager(t, 1, now)
	touch(t, m.Dir, "backup_2024-01-01.csv")
	logPath := filepath.Join(t.TempDir(), LogFile)
	require.NoError(t, os.WriteFile(logPath, []byte("log"), 0o644))

	path, removed, err := m.Run(logPath)
	require.NoError(t, err)
	assert.Equal(t, "backup_2024-01-20.csv", filepath.Base(path))
	assert.Equal(t, []string{"backup_2024-01-01.csv"}, removed)
}
