package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xolan/timetracker/internal/entry"
)

var base = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func TestResolve(t *testing.T) {
	tests := []struct {
		name             string
		entries          []entry.Entry
		wantOK           bool
		wantActive       int64
		wantInconsistent []int64
	}{
		{
			name: "none running",
			entries: []entry.Entry{
				{ID: 1, Start: base, End: entry.Ptr(base.Add(time.Hour))},
			},
		},
		{
			name: "single running",
			entries: []entry.Entry{
				{ID: 1, Start: base, End: entry.Ptr(base.Add(time.Hour))},
				{ID: 2, Start: base.Add(2 * time.Hour)},
			},
			wantOK:     true,
			wantActive: 2,
		},
		{
			name: "latest start wins",
			entries: []entry.Entry{
				{ID: 5, Start: base.Add(3 * time.Hour)},
				{ID: 3, Start: base},
				{ID: 4, Start: base.Add(time.Hour)},
			},
			wantOK:           true,
			wantActive:       5,
			wantInconsistent: []int64{3, 4},
		},
		{
			name: "tie broken by id",
			entries: []entry.Entry{
				{ID: 9, Start: base},
				{ID: 8, Start: base},
			},
			wantOK:           true,
			wantActive:       9,
			wantInconsistent: []int64{8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			active, inconsistent, ok := Resolve(tt.entries)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantActive, active.ID)
			var ids []int64
			for _, e := range inconsistent {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantInconsistent, ids)
		})
	}
}

func TestBinding(t *testing.T) {
	var b Binding
	_, ok := b.ID()
	assert.False(t, ok)
	assert.False(t, b.Is(0))

	b.Bind(42)
	id, ok := b.ID()
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
	assert.True(t, b.Is(42))
	assert.False(t, b.Is(41))

	b.Clear()
	_, ok = b.ID()
	assert.False(t, ok)
}

func TestState(t *testing.T) {
	s := FromEntry(entry.Entry{ID: 7, Project: "p", Meta: "m", Start: base})
	assert.Equal(t, State{ID: 7, StartedAt: base, Project: "p", Meta: "m"}, s)
	assert.Equal(t, 90*time.Minute, s.Elapsed(base.Add(90*time.Minute)))
	assert.Zero(t, s.Elapsed(base.Add(-time.Minute)))
}
