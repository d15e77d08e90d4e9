// Package config loads the TOML application configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/xolan/timetracker/internal/logging"
	"github.com/xolan/timetracker/internal/osutil"
)

// ConfigFile is the name of the TOML configuration file
const ConfigFile = "config.toml"

// Defaults
const (
	DefaultBackupKeep      = 7
	DefaultLostPollSeconds = 5
	DefaultLogLevel        = "warn"
	DefaultTheme           = "default"
)

// Config represents the application configuration
type Config struct {
	// DataDir overrides <home>/.local/share/time-tracker. A leading ~ is expanded.
	DataDir string `toml:"data_dir"`
	// Timezone is the IANA name used to read and write log timestamps, or "Local".
	Timezone string `toml:"timezone"`
	// BackupKeep is how many daily snapshots are always retained.
	BackupKeep int `toml:"backup_keep"`
	// LostPollSeconds is how often a lost log's original path is checked.
	LostPollSeconds int `toml:"lost_poll_seconds"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `toml:"log_level"`
	// Theme names the TUI color theme.
	Theme string `toml:"theme"`
	// WeekStartDay defines which day starts the week (monday or sunday)
	WeekStartDay string `toml:"week_start_day"`
}

// DefaultConfig returns a Config with the built-in defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:         "",
		Timezone:        "Local",
		BackupKeep:      DefaultBackupKeep,
		LostPollSeconds: DefaultLostPollSeconds,
		LogLevel:        DefaultLogLevel,
		Theme:           DefaultTheme,
		WeekStartDay:    "monday",
	}
}

// Normalize lowercases enumerated fields and fills zero values with defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()
	c.WeekStartDay = strings.ToLower(strings.TrimSpace(c.WeekStartDay))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Timezone = strings.TrimSpace(c.Timezone)
	c.Theme = strings.TrimSpace(c.Theme)
	if c.WeekStartDay == "" {
		c.WeekStartDay = def.WeekStartDay
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.Theme == "" {
		c.Theme = def.Theme
	}
	if c.BackupKeep == 0 {
		c.BackupKeep = def.BackupKeep
	}
	if c.LostPollSeconds == 0 {
		c.LostPollSeconds = def.LostPollSeconds
	}
}

// Validate checks every field. Call Normalize first.
func (c Config) Validate() error {
	var errs []error
	if c.WeekStartDay != "monday" && c.WeekStartDay != "sunday" {
		errs = append(errs, fmt.Errorf("invalid week_start_day %q: must be \"monday\" or \"sunday\"", c.WeekStartDay))
	}
	if _, err := loadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err))
	}
	if c.BackupKeep < 1 {
		errs = append(errs, fmt.Errorf("invalid backup_keep %d: must be at least 1", c.BackupKeep))
	}
	if c.LostPollSeconds < 1 {
		errs = append(errs, fmt.Errorf("invalid lost_poll_seconds %d: must be at least 1", c.LostPollSeconds))
	}
	if !logging.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("invalid log_level %q: must be debug, info, warn or error", c.LogLevel))
	}
	return errors.Join(errs...)
}

// Location returns the configured time zone, or time.Local when it cannot be loaded.
func (c Config) Location() *time.Location {
	loc, err := loadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// LostPoll returns the lost-file poll interval.
func (c Config) LostPoll() time.Duration {
	if c.LostPollSeconds < 1 {
		return DefaultLostPollSeconds * time.Second
	}
	return time.Duration(c.LostPollSeconds) * time.Second
}

// WeekStart returns the configured first day of the week.
func (c Config) WeekStart() time.Weekday {
	if c.WeekStartDay == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// ErrInvalidConfig is returned by Load for files that do not parse or validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads, normalizes and validates the config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := DefaultConfig()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: failed to parse %s: %w", ErrInvalidConfig, path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w in %s: %w", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// LoadOrDefault returns DefaultConfig when path does not exist and Load otherwise.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("failed to access config file: %w", err)
	}
	return Load(path)
}

// Save writes cfg to path as TOML.
func Save(path string, cfg Config) error {
	var buf bytes.Buffer
	buf.WriteString("# tt configuration file\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateSampleConfig returns a commented config file listing every option.
func GenerateSampleConfig() string {
	return `# tt configuration file
# Uncomment and edit the values you want to change.

# Directory holding log.csv, backups/ and settings/.
# Default: ~/.local/share/time-tracker
# data_dir = "~/Dropbox/time-tracker"

# Timezone used for log timestamps: "Local" or an IANA name
# such as "America/New_York", "Europe/London" or "Asia/Tokyo".
# timezone = "Local"

# Number of daily backups always kept. Older ones are pruned.
# backup_keep = 7

# Seconds between checks for a lost log file coming back.
# lost_poll_seconds = 5

# Log level for tt.log: "debug", "info", "warn" or "error".
# log_level = "warn"

# TUI color theme.
# theme = "default"

# First day of the week for reports: "monday" or "sunday".
# week_start_day = "monday"
`
}

// GetConfigPath returns <UserConfigDir>/time-tracker/config.toml, creating
// the directory if needed.
func GetConfigPath() (string, error) {
	dir, err := osutil.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFile), nil
}
