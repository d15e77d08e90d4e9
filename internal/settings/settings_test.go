package settings

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Backend {
	return map[string]Backend{
		"memory": NewMemoryStore(),
		"disk":   NewDiskStore(filepath.Join(t.TempDir(), Dir)),
	}
}

func TestBackends(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok := b.Get("missing")
			assert.False(t, ok)

			require.NoError(t, b.Set(KeyLogFile, "/tmp/log.csv"))
			v, ok := b.Get(KeyLogFile)
			assert.True(t, ok)
			assert.Equal(t, "/tmp/log.csv", v)

			require.NoError(t, b.Set(KeyLogFile, "/other.csv"))
			v, _ = b.Get(KeyLogFile)
			assert.Equal(t, "/other.csv", v)

			require.NoError(t, b.Delete(KeyLogFile))
			_, ok = b.Get(KeyLogFile)
			assert.False(t, ok)
			assert.NoError(t, b.Delete(KeyLogFile), "deleting twice is fine")
		})
	}
}

func TestDiskStore_Persists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), Dir)
	require.NoError(t, NewDiskStore(dir).Set(KeyProjects, "(no project);;a"))
	require.NoError(t, NewDiskStore(dir).Set(KeyAutoTempLog, "false"))

	reopened := NewDiskStore(dir)
	v, ok := reopened.Get(KeyProjects)
	require.True(t, ok)
	assert.Equal(t, "(no project);;a", v)
	assert.Equal(t, []string{KeyAutoTempLog, KeyProjects}, reopened.Keys())
}

func TestSettings_Typed(t *testing.T) {
	s := New(nil)

	assert.Equal(t, "def", s.GetString("k", "def"))
	assert.Equal(t, 5, s.GetInt("n", 5))
	assert.True(t, s.GetBool("b", true))

	require.NoError(t, s.SetString("k", "v"))
	require.NoError(t, s.SetInt("n", 12))
	require.NoError(t, s.SetBool("b", false))
	assert.Equal(t, "v", s.GetString("k", "def"))
	assert.Equal(t, 12, s.GetInt("n", 5))
	assert.False(t, s.GetBool("b", true))

	require.NoError(t, s.SetString("n", "twelve"))
	assert.Equal(t, 5, s.GetInt("n", 5), "unparseable falls back to default")
	require.NoError(t, s.SetString("b", "maybe"))
	assert.True(t, s.GetBool("b", true))

	require.NoError(t, s.Unset("k"))
	assert.Equal(t, "def", s.GetString("k", "def"))
}

func TestSettings_Defaults(t *testing.T) {
	s := New(NewMemoryStore())

	assert.Equal(t, "/d/log.csv", s.LogFile("/d/log.csv"))
	assert.Equal(t, time.Second, s.SyncInterval())
	assert.True(t, s.AutoTempLog())
	assert.True(t, s.AddProjectsFromLog())
	assert.Empty(t, s.Projects())

	require.NoError(t, s.SetInt(KeySyncInterval, 0))
	assert.Equal(t, time.Second, s.SyncInterval(), "interval is at least one second")
	require.NoError(t, s.SetInt(KeySyncInterval, 3))
	assert.Equal(t, 3*time.Second, s.SyncInterval())

	require.NoError(t, s.SetProjects("(no project);;x"))
	assert.Equal(t, "(no project);;x", s.Projects())
}

func TestSettings_Set(t *testing.T) {
	s := New(nil)

	require.NoError(t, s.Set(KeySyncInterval, " 4 "))
	assert.Equal(t, 4*time.Second, s.SyncInterval())
	require.NoError(t, s.Set(KeyAutoTempLog, "false"))
	assert.False(t, s.AutoTempLog())
	require.NoError(t, s.Set(KeyLogFile, "/x.csv"))

	assert.Error(t, s.Set(KeySyncInterval, "0"))
	assert.Error(t, s.Set(KeySyncInterval, "soon"))
	assert.Error(t, s.Set(KeyAddProjects, "sometimes"))
	assert.ErrorIs(t, s.Set("colour", "blue"), ErrUnknownKey)

	dump := s.Dump("/default.csv")
	assert.Equal(t, "/x.csv", dump[KeyLogFile])
	assert.Equal(t, "4", dump[KeySyncInterval])
	assert.Equal(t, "false", dump[KeyAutoTempLog])
	assert.Equal(t, "true", dump[KeyAddProjects])
	assert.Len(t, dump, len(Keys))
}
