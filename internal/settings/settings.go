// Package settings is the key/value store for runtime user settings.
package settings

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"
)

// Setting keys.
const (
	KeyLogFile         = "log_file"
	KeySyncInterval    = "sync_interval"
	KeyAutoTempLog     = "auto_temp_log"
	KeyAddProjects     = "add_projects_from_log"
	KeyProjects        = "projects"
	KeyReports         = "reports"
	// KeyHistory holds the undo history between runs. It is not user-settable.
	KeyHistory         = "history"
	DefaultSyncSeconds = 1
)

// Dir is the settings directory name inside the data directory
const Dir = "settings"

// ErrUnknownKey is returned when setting a key outside the known set
var ErrUnknownKey = errors.New("unknown setting")

// Keys lists every known setting in display order.
var Keys = []string{KeyLogFile, KeySyncInterval, KeyAutoTempLog, KeyAddProjects, KeyProjects, KeyReports}

// Backend stores raw string values.
type Backend interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// DiskStore persists settings as one small file per key.
type DiskStore struct {
	d *diskv.Diskv
}

// NewDiskStore opens (creating lazily) a settings directory at dir.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{d: diskv.New(diskv.Options{
		BasePath:     dir,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 64 * 1024,
	})}
}

// Get returns the value for key.
func (s *DiskStore) Get(key string) (string, bool) {
	if !s.d.Has(key) {
		return "", false
	}
	v, err := s.d.Read(key)
	if err != nil {
		return "", false
	}
	return string(v), true
}

// Set writes key.
func (s *DiskStore) Set(key, value string) error {
	if err := s.d.Write(key, []byte(value)); err != nil {
		return fmt.Errorf("settings: write %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *DiskStore) Delete(key string) error {
	if !s.d.Has(key) {
		return nil
	}
	return s.d.Erase(key)
}

// Keys returns the stored keys in sorted order.
func (s *DiskStore) Keys() []string {
	cancel := make(chan struct{})
	defer close(cancel)
	var keys []string
	for k := range s.d.Keys(cancel) {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MemoryStore keeps settings in memory. Used by tests and one-shot runs.
type MemoryStore struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemoryStore returns an empty in-memory backend.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]string)}
}

// Get returns the value for key.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

// Set writes key.
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

// Delete removes key.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// Settings wraps a Backend with typed accessors.
type Settings struct {
	backend Backend
}

// New wraps backend. A nil backend uses a MemoryStore.
func New(backend Backend) *Settings {
	if backend == nil {
		backend = NewMemoryStore()
	}
	return &Settings{backend: backend}
}

// GetString returns key or def when unset.
func (s *Settings) GetString(key, def string) string {
	if v, ok := s.backend.Get(key); ok {
		return v
	}
	return def
}

// SetString stores key.
func (s *Settings) SetString(key, value string) error {
	return s.backend.Set(key, value)
}

// GetInt returns key as an int, or def when unset or unparseable.
func (s *Settings) GetInt(key string, def int) int {
	v, ok := s.backend.Get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// SetInt stores key as a decimal string.
func (s *Settings) SetInt(key string, value int) error {
	return s.backend.Set(key, strconv.Itoa(value))
}

// GetBool returns key as a bool, or def when unset or unparseable.
func (s *Settings) GetBool(key string, def bool) bool {
	v, ok := s.backend.Get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// SetBool stores key as true or false.
func (s *Settings) SetBool(key string, value bool) error {
	return s.backend.Set(key, strconv.FormatBool(value))
}

// Unset removes key.
func (s *Settings) Unset(key string) error {
	return s.backend.Delete(key)
}

// LogFile returns the configured log path, or def.
func (s *Settings) LogFile(def string) string {
	return s.GetString(KeyLogFile, def)
}

// SyncInterval returns the scheduler tick, at least one second.
func (s *Settings) SyncInterval() time.Duration {
	n := s.GetInt(KeySyncInterval, DefaultSyncSeconds)
	if n < 1 {
		n = DefaultSyncSeconds
	}
	return time.Duration(n) * time.Second
}

// AutoTempLog reports whether a lost log switches to the temporary log
// without asking.
func (s *Settings) AutoTempLog() bool {
	return s.GetBool(KeyAutoTempLog, true)
}

// AddProjectsFromLog reports whether project names read from the log join
// the registry.
func (s *Settings) AddProjectsFromLog() bool {
	return s.GetBool(KeyAddProjects, true)
}

// Projects returns the persisted project registry string.
func (s *Settings) Projects() string {
	return s.GetString(KeyProjects, "")
}

// SetProjects persists the project registry string.
func (s *Settings) SetProjects(encoded string) error {
	return s.SetString(KeyProjects, encoded)
}

// History returns the saved undo history.
func (s *Settings) History() string {
	return s.GetString(KeyHistory, "")
}

// SetHistory saves the undo history.
func (s *Settings) SetHistory(encoded string) error {
	return s.SetString(KeyHistory, encoded)
}

// Set validates and stores a value given as text, as the CLI does.
func (s *Settings) Set(key, value string) error {
	switch key {
	case KeyLogFile, KeyProjects, KeyReports:
		return s.SetString(key, value)
	case KeySyncInterval:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 1 {
			return fmt.Errorf("%s must be a positive number of seconds, got %q", key, value)
		}
		return s.SetInt(key, n)
	case KeyAutoTempLog, KeyAddProjects:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s must be true or false, got %q", key, value)
		}
		return s.SetBool(key, b)
	}
	return fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Dump returns every known key with its effective value.
func (s *Settings) Dump(defaultLog string) map[string]string {
	return map[string]string{
		KeyLogFile:      s.LogFile(defaultLog),
		KeySyncInterval: strconv.Itoa(int(s.SyncInterval() / time.Second)),
		KeyAutoTempLog:  strconv.FormatBool(s.AutoTempLog()),
		KeyAddProjects:  strconv.FormatBool(s.AddProjectsFromLog()),
		KeyProjects:     s.Projects(),
		KeyReports:      s.GetString(KeyReports, ""),
	}
}
