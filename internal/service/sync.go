package service

import (
	"context"

	"github.com/xolan/timetracker/internal/logsync"
	"github.com/xolan/timetracker/internal/storage"
)

// SyncService exposes the log location, backups and manual sync steps.
type SyncService struct {
	session *logsync.Session
}

// NewSyncService creates a new SyncService
func NewSyncService(session *logsync.Session) *SyncService {
	return &SyncService{session: session}
}

// Status reports where entries are read from and written to.
func (s *SyncService) Status() SyncStatus {
	st := s.session.State()
	return SyncStatus{
		LogPath:    st.LogPath,
		ActivePath: st.ActivePath,
		Lost:       st.Lost,
		UsingTemp:  st.UsingTemp,
		Pending:    st.Pending,
		Phase:      st.Phase.String(),
		LastSync:   st.LastSync,
		LastError:  st.LastError,
	}
}

// Now runs one sync cycle: flush pending changes or reload the log.
func (s *SyncService) Now(ctx context.Context) error {
	return s.session.Cycle(ctx)
}

// SwitchLog points tt at another log file and persists the choice.
func (s *SyncService) SwitchLog(path string) error {
	return s.session.SwitchLog(path)
}

// Backup snapshots the log now. It returns the snapshot path and the names
// of pruned snapshots.
func (s *SyncService) Backup() (string, []string, error) {
	return s.session.Backup()
}

// Backups lists snapshots, newest first.
func (s *SyncService) Backups() ([]storage.BackupInfo, error) {
	return s.session.Backups().List()
}

// Validate reads the log file and reports what a sync would make of it,
// without changing anything.
func (s *SyncService) Validate() (*ValidateResult, error) {
	path := s.session.State().ActivePath
	text, err := storage.ReadLog(path)
	if err != nil {
		return nil, err
	}
	res := s.session.Codec().Read(text, storage.NoIDs{}, s.session.Now())
	return &ValidateResult{
		Path:       path,
		Entries:    len(res.Entries),
		Tombstones: len(res.Tombstones),
		Extra:      res.ExtraColumns,
		Warnings:   res.Warnings,
		Dirty:      res.Dirty,
	}, nil
}

// Restore replaces the log with a snapshot and reloads it.
func (s *SyncService) Restore(ctx context.Context, name string) error {
	return s.session.Restore(ctx, name)
}
