package store

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// MaxHistory is how many change records are kept when the log is saved.
const MaxHistory = 50

// History is the saved form of a ChangeLog.
type History struct {
	Cursor  int            `toml:"cursor"`
	Records []ChangeRecord `toml:"records"`
}

// Snapshot returns at most limit of the newest records with the cursor
// shifted to match. A limit of 0 keeps everything.
func (l *ChangeLog) Snapshot(limit int) History {
	h := History{Cursor: l.cursor, Records: l.Records()}
	if limit > 0 && len(h.Records) > limit {
		drop := len(h.Records) - limit
		h.Records = h.Records[drop:]
		h.Cursor = max(h.Cursor-drop, 0)
	}
	return h
}

// Restore replaces the log with h. Records that cannot be replayed are
// rejected and leave the log unchanged.
func (l *ChangeLog) Restore(h History) error {
	if h.Cursor < 0 || h.Cursor > len(h.Records) {
		return fmt.Errorf("history cursor %d out of range", h.Cursor)
	}
	for i, r := range h.Records {
		switch {
		case r.Kind == KindAdd && r.New == nil,
			r.Kind == KindEdit && (r.New == nil || r.Old == nil),
			r.Kind == KindDelete && r.Old == nil:
			return fmt.Errorf("history record %d: incomplete %s", i, r.Kind)
		case r.Kind < KindAdd || r.Kind > KindDelete:
			return fmt.Errorf("history record %d: unknown kind %d", i, r.Kind)
		}
		if i >= h.Cursor {
			h.Records[i].Undone = true
		}
	}
	l.records = h.Records
	l.cursor = h.Cursor
	return nil
}

// EncodeHistory renders h as TOML.
func EncodeHistory(h History) (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(h); err != nil {
		return "", fmt.Errorf("encode history: %w", err)
	}
	return buf.String(), nil
}

// DecodeHistory parses what EncodeHistory wrote. Empty text is an empty
// history.
func DecodeHistory(text string) (History, error) {
	var h History
	if strings.TrimSpace(text) == "" {
		return h, nil
	}
	if _, err := toml.Decode(text, &h); err != nil {
		return History{}, fmt.Errorf("decode history: %w", err)
	}
	return h, nil
}
