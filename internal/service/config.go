package service

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xolan/timetracker/internal/config"
	"github.com/xolan/timetracker/internal/settings"
)

// ErrConfigExists is returned by Init when the config file is already there
var ErrConfigExists = errors.New("config file already exists")

// ConfigService provides operations for managing configuration and the
// runtime settings store
type ConfigService struct {
	configPath string
	config     config.Config
	settings   *settings.Settings
}

// NewConfigService creates a new ConfigService
func NewConfigService(configPath string, cfg config.Config, st *settings.Settings) *ConfigService {
	return &ConfigService{
		configPath: configPath,
		config:     cfg,
		settings:   st,
	}
}

// Get returns the current configuration
func (s *ConfigService) Get() config.Config {
	return s.config
}

// GetPath returns the path to the config file
func (s *ConfigService) GetPath() string {
	return s.configPath
}

// Exists checks if the config file exists
func (s *ConfigService) Exists() bool {
	_, err := os.Stat(s.configPath)
	return err == nil
}

// Update normalizes, validates and writes cfg.
func (s *ConfigService) Update(cfg config.Config) error {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.Save(s.configPath, cfg); err != nil {
		return err
	}
	s.config = cfg
	return nil
}

// Init creates a sample config file
func (s *ConfigService) Init() error {
	if s.Exists() {
		return fmt.Errorf("%w at %s", ErrConfigExists, s.configPath)
	}
	if err := os.WriteFile(s.configPath, []byte(config.GenerateSampleConfig()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Reload reloads the configuration from disk
func (s *ConfigService) Reload() error {
	cfg, err := config.LoadOrDefault(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	s.config = cfg
	return nil
}

// Settings returns every runtime setting with its effective value.
func (s *ConfigService) Settings(defaultLog string) map[string]string {
	return s.settings.Dump(defaultLog)
}

// Set changes a runtime setting or a config file key. Settings keys take
// effect immediately; config keys are written to config.toml.
func (s *ConfigService) Set(key, value string) error {
	for _, k := range settings.Keys {
		if k == key {
			return s.settings.Set(key, value)
		}
	}

	cfg := s.config
	value = strings.TrimSpace(value)
	switch key {
	case "data_dir":
		cfg.DataDir = value
	case "timezone":
		cfg.Timezone = value
	case "log_level":
		cfg.LogLevel = value
	case "theme":
		cfg.Theme = value
	case "week_start_day":
		cfg.WeekStartDay = value
	case "backup_keep", "lost_poll_seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be a number, got %q", key, value)
		}
		if key == "backup_keep" {
			cfg.BackupKeep = n
		} else {
			cfg.LostPollSeconds = n
		}
	default:
		return fmt.Errorf("%w: %s", settings.ErrUnknownKey, key)
	}
	return s.Update(cfg)
}
