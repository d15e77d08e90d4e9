package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"
)

const (
	// LogFile is the default log file name inside the data directory
	LogFile = "log.csv"
	// TempLogFile holds entries while the configured log is unreachable
	TempLogFile = "temporary_log.csv"
)

// ReadLog returns the content of the log at path. A missing or unreadable
// file yields ErrFileMissing; content that is not UTF-8 yields
// ErrEncodingInvalid.
func ReadLog(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Permission and I/O errors on removable media look the same to the
		// caller as a vanished file.
		return "", &FileError{Op: "read", Path: path, Kind: ErrFileMissing, Err: err}
	}
	if !utf8.Valid(data) {
		return "", &FileError{Op: "read", Path: path, Kind: ErrEncodingInvalid}
	}
	return string(data), nil
}

// WriteLog replaces the log at path with content using a temp file and an
// atomic rename. The parent directory must already exist; if it does not the
// error wraps ErrFileMissing so the caller can switch to the lost-file flow.
func WriteLog(path, content string) error {
	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return &FileError{Op: "write", Path: path, Kind: ErrFileMissing, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &FileError{Op: "write", Path: path, Kind: ErrWriteFailure, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &FileError{Op: "write", Path: path, Kind: ErrWriteFailure, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &FileError{Op: "write", Path: path, Kind: ErrWriteFailure, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return &FileError{Op: "write", Path: path, Kind: ErrWriteFailure, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		if errors.Is(err, fs.ErrNotExist) {
			return &FileError{Op: "write", Path: path, Kind: ErrFileMissing, Err: err}
		}
		return &FileError{Op: "write", Path: path, Kind: ErrWriteFailure, Err: err}
	}
	return nil
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DirExists reports whether the parent directory of path exists.
func DirExists(path string) bool {
	info, err := os.Stat(filepath.Dir(path))
	return err == nil && info.IsDir()
}

// Hash fingerprints log content so unchanged files can skip reconciliation.
func Hash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
