package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xolan/timetracker/internal/entry"
)

func TestProjectService(t *testing.T) {
	env := newTestServices(t)
	projects := env.svc.Project

	assert.Equal(t, []string{entry.NoProject}, projects.List())

	require.NoError(t, projects.Add("Kevin"))
	require.NoError(t, projects.Add("kevin"), "names are case-sensitive")
	assert.ErrorIs(t, projects.Add("Kevin"), ErrProjectExists)
	assert.ErrorIs(t, projects.Add("  "), ErrEmptyProjectName)
	assert.ErrorIs(t, projects.Add("a;;b"), ErrProjectNameChars)
	assert.Equal(t, []string{entry.NoProject, "Kevin", "kevin"}, projects.List())
	assert.Equal(t, entry.NoProject+";;Kevin;;kevin", env.svc.Settings.Projects(), "registry is persisted")

	require.NoError(t, projects.Remove("kevin"))
	assert.ErrorIs(t, projects.Remove("kevin"), ErrProjectUnknown)
	assert.ErrorIs(t, projects.Remove(entry.NoProject), ErrProjectReserved)
	assert.Equal(t, []string{entry.NoProject, "Kevin"}, projects.List())
}

func TestProjectService_TimerRegistersNothing(t *testing.T) {
	env := newTestServices(t)
	_, _, err := env.svc.Timer.Start("fresh", "", false)
	require.NoError(t, err)
	assert.NotContains(t, env.svc.Project.List(), "fresh", "only log reads and explicit adds register projects")
}
