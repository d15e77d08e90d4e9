package service

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/xolan/timetracker/internal/config"
	"github.com/xolan/timetracker/internal/logsync"
	"github.com/xolan/timetracker/internal/osutil"
	"github.com/xolan/timetracker/internal/settings"
	"github.com/xolan/timetracker/internal/storage"
)

// Services holds all service instances used by the application
type Services struct {
	Session  *logsync.Session
	Settings *settings.Settings
	Entry    *EntryService
	Timer    *TimerService
	Project  *ProjectService
	Report   *ReportService
	Search   *SearchService
	Stats    *StatsService
	Sync     *SyncService
	Config   *ConfigService
}

// Environment is what NewServices needs from the caller.
type Environment struct {
	Config     config.Config
	ConfigPath string
	Logger     *slog.Logger
	// Prompter answers lost-log questions. Nil switches to the temporary log.
	Prompter logsync.Prompter
}

// NewServices resolves the data directory, opens the settings store and
// builds an unopened session with every service on top of it. Call
// Session.Open before use.
func NewServices(env Environment) (*Services, error) {
	dataDir, err := DataDir(env.Config)
	if err != nil {
		return nil, err
	}
	st := settings.New(settings.NewDiskStore(filepath.Join(dataDir, settings.Dir)))
	session := logsync.NewSession(logsync.Options{
		DataDir:  dataDir,
		Codec:    storage.NewCodec(env.Config.Location()),
		Settings: st,
		Backups:  storage.NewBackupManager(filepath.Join(dataDir, storage.BackupDir), env.Config.BackupKeep),
		Prompter: env.Prompter,
		Logger:   env.Logger,
	})
	return NewServicesWithSession(session, st, env.ConfigPath, env.Config), nil
}

// NewServicesWithSession builds the services over an existing session (useful for testing)
func NewServicesWithSession(session *logsync.Session, st *settings.Settings, configPath string, cfg config.Config) *Services {
	if st == nil {
		st = settings.New(nil)
	}
	return &Services{
		Session:  session,
		Settings: st,
		Entry:    NewEntryService(session, cfg),
		Timer:    NewTimerService(session),
		Project:  NewProjectService(session),
		Report:   NewReportService(session, st, cfg),
		Search:   NewSearchService(session),
		Stats:    NewStatsService(session, cfg),
		Sync:     NewSyncService(session),
		Config:   NewConfigService(configPath, cfg, st),
	}
}

// DataDir returns the directory holding the default log and backups.
func DataDir(cfg config.Config) (string, error) {
	dir, err := osutil.DataDir(cfg.DataDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve data directory: %w", err)
	}
	return dir, nil
}
