package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xolan/timetracker/internal/entry"
	"github.com/xolan/timetracker/internal/logsync"
	"github.com/xolan/timetracker/internal/store"
)

// Project registry errors
var (
	ErrEmptyProjectName = errors.New("project name cannot be empty")
	ErrProjectExists    = errors.New("project already registered")
	ErrProjectUnknown   = errors.New("project not registered")
	ErrProjectReserved  = errors.New("the placeholder project cannot be removed")
	ErrProjectNameChars = fmt.Errorf("project name cannot contain %q", store.ProjectDelimiter)
)

// ProjectService manages the project registry. Changes are persisted
// through the settings store by the session.
type ProjectService struct {
	session *logsync.Session
}

// NewProjectService creates a new ProjectService
func NewProjectService(session *logsync.Session) *ProjectService {
	return &ProjectService{session: session}
}

// List returns the registered project names, placeholder first.
func (s *ProjectService) List() []string {
	var names []string
	s.session.View(func(st *store.Store) {
		names = st.Projects().Names()
	})
	return names
}

// Add registers name. Names are case-sensitive.
func (s *ProjectService) Add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyProjectName
	}
	if !store.Registrable(name) {
		return fmt.Errorf("%w: %s", ErrProjectNameChars, name)
	}
	return s.session.Update(func(st *store.Store) error {
		if !st.Projects().Add(name) {
			return fmt.Errorf("%w: %s", ErrProjectExists, name)
		}
		return nil
	})
}

// Remove unregisters name. Entries using it are left alone.
func (s *ProjectService) Remove(name string) error {
	if name == entry.NoProject {
		return ErrProjectReserved
	}
	return s.session.Update(func(st *store.Store) error {
		if !st.Projects().Remove(name) {
			return fmt.Errorf("%w: %s", ErrProjectUnknown, name)
		}
		return nil
	})
}
