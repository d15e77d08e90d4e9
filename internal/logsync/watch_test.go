package logsync

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xolan/timetracker/internal/logging"
)

func TestWatcher_ReportsTrackedFiles(t *testing.T) {
	dir := t.TempDir()
	tracked := filepath.Join(dir, "log.csv")
	other := filepath.Join(dir, "notes.txt")

	w, err := NewWatcher(logging.Nop())
	require.NoError(t, err)
	require.NoError(t, w.Track(tracked))
	require.NoError(t, w.Track(tracked), "tracking twice is a no-op")
	assert.True(t, w.Tracked(tracked))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(tracked, []byte("a"), 0o644))

	select {
	case path := <-w.Events():
		assert.Equal(t, tracked, path)
	case <-time.After(2 * time.Second):
		t.Fatal("no event for the tracked file")
	}

	cancel()
	for range w.Events() {
	}
}

func TestWatcher_Untrack(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")

	w, err := NewWatcher(logging.Nop())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Track(a))
	require.NoError(t, w.Track(b))
	assert.Equal(t, 2, w.dirs[dir])

	w.Untrack(a)
	assert.False(t, w.Tracked(a))
	assert.Equal(t, 1, w.dirs[dir])
	w.Untrack(b)
	assert.NotContains(t, w.dirs, dir)
	w.Untrack(b)

	assert.Error(t, w.Track(filepath.Join(dir, "missing", "c.csv")))
}

func TestPathThrottle_Coalesces(t *testing.T) {
	th := newPathThrottle(20 * time.Millisecond)
	var mu sync.Mutex
	got := map[string]int{}
	send := func(p string) {
		mu.Lock()
		defer mu.Unlock()
		got[p]++
	}

	for i := 0; i < 5; i++ {
		th.Enqueue("a", send)
	}
	th.Enqueue("b", send)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	assert.Equal(t, map[string]int{"a": 1, "b": 1}, got)
	mu.Unlock()

	th.Enqueue("c", send)
	th.Stop()
	time.Sleep(40 * time.Millisecond)
	mu.Lock()
	assert.NotContains(t, got, "c")
	mu.Unlock()
}
