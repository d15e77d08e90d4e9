package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xolan/timetracker/internal/entry"
)

func TestApply(t *testing.T) {
	s := newTestStore()

	d, err := s.Apply(Command{Kind: CmdAdd, Entry: closed(1, "a", 0)})
	require.NoError(t, err)
	assert.Equal(t, Delta{Added: []int64{1}}, d)

	e := closed(1, "renamed", 0)
	d, err = s.Apply(Command{Kind: CmdEdit, Entry: e})
	require.NoError(t, err)
	assert.Equal(t, Delta{Updated: []int64{1}}, d)

	d, err = s.Apply(Command{Kind: CmdDelete, ID: 1})
	require.NoError(t, err)
	assert.Equal(t, Delta{Removed: []int64{1}}, d)

	d, err = s.Apply(Command{Kind: CmdUndo})
	require.NoError(t, err)
	assert.Equal(t, Delta{Added: []int64{1}}, d)

	d, err = s.Apply(Command{Kind: CmdUndo})
	require.NoError(t, err)
	assert.Equal(t, Delta{Updated: []int64{1}}, d)

	d, err = s.Apply(Command{Kind: CmdUndo})
	require.NoError(t, err)
	assert.Equal(t, Delta{Removed: []int64{1}}, d)

	d, err = s.Apply(Command{Kind: CmdRedo})
	require.NoError(t, err)
	assert.Equal(t, Delta{Added: []int64{1}}, d)
}

func TestApply_StartStop(t *testing.T) {
	s := newTestStore()
	now := base.Add(time.Hour)

	d, err := s.Apply(Command{Kind: CmdStart, Entry: entry.Entry{Project: "p", Meta: "m"}, Now: now})
	require.NoError(t, err)
	require.Len(t, d.Added, 1)
	first := d.Added[0]

	d, err = s.Apply(Command{Kind: CmdStart, Entry: entry.Entry{Project: "q"}, Now: now.Add(time.Hour), Force: true})
	require.NoError(t, err)
	assert.Equal(t, []int64{first}, d.Updated)
	require.Len(t, d.Added, 1)

	d, err = s.Apply(Command{Kind: CmdStop, Now: now.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Len(t, d.Updated, 1)
	assert.False(t, d.Empty())
}

func TestApply_Errors(t *testing.T) {
	s := newTestStore()

	_, err := s.Apply(Command{Kind: CmdUndo})
	assert.ErrorIs(t, err, ErrNothingToUndo)
	_, err = s.Apply(Command{Kind: CmdRedo})
	assert.ErrorIs(t, err, ErrNothingToRedo)
	_, err = s.Apply(Command{Kind: CmdStop, Now: base})
	assert.ErrorIs(t, err, ErrNoTimer)
	_, err = s.Apply(Command{Kind: CmdDelete, ID: 5})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Apply(Command{Kind: CommandKind(42)})
	assert.Error(t, err)
	assert.True(t, Delta{}.Empty())
}

func TestDelta_Summary(t *testing.T) {
	assert.Equal(t, "no changes", Delta{}.Summary())
	assert.Equal(t, "1 restored", Delta{Added: []int64{4}}.Summary())
	assert.Equal(t, "2 changed, 1 removed", Delta{Updated: []int64{1, 2}, Removed: []int64{3}}.Summary())
}
