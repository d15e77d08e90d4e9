package storage

import (
	"errors"
	"fmt"
)

// Error taxonomy for log file handling. Callers match with errors.Is.
var (
	// ErrFileMissing means the log file (or its directory) is unreachable.
	ErrFileMissing = errors.New("log file missing")
	// ErrMalformedRow marks a row that was skipped or repaired while parsing.
	ErrMalformedRow = errors.New("malformed row")
	// ErrDuplicateID marks a row whose ID was already used and got reassigned.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrWriteFailure wraps I/O errors while writing a log or snapshot.
	ErrWriteFailure = errors.New("write failure")
	// ErrEncodingInvalid means the file content is not valid UTF-8.
	ErrEncodingInvalid = errors.New("invalid encoding")
)

// FileError records a failed file operation against a path.
type FileError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *FileError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Unwrap exposes both the taxonomy kind and the underlying cause.
func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ParseWarning represents a non-fatal problem found while decoding or parsing
type ParseWarning struct {
	Line    int    // Line number in the file (1-indexed), 0 if unknown
	Content string // Raw content of the offending row
	Err     error  // ErrMalformedRow or ErrDuplicateID, wrapped with detail
}

func (w ParseWarning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %v", w.Line, w.Err)
	}
	return w.Err.Error()
}
