package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"
)

const (
	// BackupDir is the snapshot directory name inside the data directory
	BackupDir = "backups"
	// DefaultBackupKeep is how many snapshots are always retained
	DefaultBackupKeep = 7
)

// ErrBackupNotFound is returned when restoring a snapshot that does not exist
var ErrBackupNotFound = errors.New("backup not found")

var backupPattern = regexp.MustCompile(`^backup_(\d{4}-\d{2}-\d{2})(?:-(\d+))?\.csv$`)

// BackupInfo describes one snapshot file.
type BackupInfo struct {
	Name string
	Path string
	Date time.Time // calendar date from the file name, local midnight
	Seq  int       // 0 for the first snapshot of a day, then 1, 2, ...
}

// BackupManager writes dated snapshots of the log and prunes old ones.
type BackupManager struct {
	Dir  string
	Keep int
	Now  func() time.Time
}

// NewBackupManager returns a manager for dir. keep <= 0 uses DefaultBackupKeep.
func NewBackupManager(dir string, keep int) *BackupManager {
	if keep <= 0 {
		keep = DefaultBackupKeep
	}
	return &BackupManager{Dir: dir, Keep: keep, Now: time.Now}
}

func (m *BackupManager) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

// Snapshot writes content as a new snapshot for today and returns its path.
// A second snapshot on the same day gets a -1, -2, ... suffix.
func (m *BackupManager) Snapshot(content string) (string, error) {
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return "", &FileError{Op: "backup", Path: m.Dir, Kind: ErrWriteFailure, Err: err}
	}
	path := m.nextPath(m.now())
	if err := WriteLog(path, content); err != nil {
		return "", err
	}
	return path, nil
}

// SnapshotFile copies the log at logPath into a new snapshot. A missing log
// is not an error and produces no snapshot.
func (m *BackupManager) SnapshotFile(logPath string) (string, error) {
	if !Exists(logPath) {
		return "", nil
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		return "", &FileError{Op: "backup", Path: logPath, Kind: ErrFileMissing, Err: err}
	}
	return m.Snapshot(string(data))
}

func (m *BackupManager) nextPath(now time.Time) string {
	date := now.Format("2006-01-02")
	path := filepath.Join(m.Dir, "backup_"+date+".csv")
	for n := 1; fileExists(path); n++ {
		path = filepath.Join(m.Dir, fmt.Sprintf("backup_%s-%d.csv", date, n))
	}
	return path
}

// List returns the snapshots in Dir, newest first. Files that do not follow
// the snapshot naming scheme are ignored.
func (m *BackupManager) List() ([]BackupInfo, error) {
	dirEntries, err := os.ReadDir(m.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var backups []BackupInfo
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		info, ok := parseBackupName(de.Name())
		if !ok {
			continue
		}
		info.Path = filepath.Join(m.Dir, de.Name())
		backups = append(backups, info)
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].Date.Equal(backups[j].Date) {
			return backups[i].Date.After(backups[j].Date)
		}
		return backups[i].Seq > backups[j].Seq
	})
	return backups, nil
}

func parseBackupName(name string) (BackupInfo, bool) {
	m := backupPattern.FindStringSubmatch(name)
	if m == nil {
		return BackupInfo{}, false
	}
	date, err := time.ParseInLocation("2006-01-02", m[1], time.Local)
	if err != nil {
		return BackupInfo{}, false
	}
	seq := 0
	if m[2] != "" {
		seq, err = strconv.Atoi(m[2])
		if err != nil {
			return BackupInfo{}, false
		}
	}
	return BackupInfo{Name: name, Date: date, Seq: seq}, true
}

// Prune deletes snapshots beyond the Keep most recent that are also at least
// Keep+1 days old. It returns the names of removed files.
func (m *BackupManager) Prune() ([]string, error) {
	backups, err := m.List()
	if err != nil {
		return nil, err
	}

	now := m.now()
	maxAge := time.Duration(m.Keep+1) * 24 * time.Hour
	var removed []string
	var errs []error
	for i, b := range backups {
		if i < m.Keep || now.Sub(b.Date) < maxAge {
			continue
		}
		if err := os.Remove(b.Path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, b.Name)
	}
	return removed, errors.Join(errs...)
}

// Run takes a snapshot of the log at logPath and prunes. It is what the
// scheduler calls at the daily boundary.
func (m *BackupManager) Run(logPath string) (string, []string, error) {
	path, err := m.SnapshotFile(logPath)
	if err != nil {
		return "", nil, err
	}
	removed, err := m.Prune()
	return path, removed, err
}

// Restore replaces the log at logPath with the named snapshot. The current
// log is snapshotted first so the restore can itself be undone.
func (m *BackupManager) Restore(name, logPath string) error {
	if _, ok := parseBackupName(name); !ok {
		return fmt.Errorf("%w: %q is not a snapshot name", ErrBackupNotFound, name)
	}
	src := filepath.Join(m.Dir, name)
	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrBackupNotFound, name)
		}
		return err
	}

	if _, err := m.SnapshotFile(logPath); err != nil {
		return fmt.Errorf("snapshot current log before restore: %w", err)
	}
	return WriteLog(logPath, string(data))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
