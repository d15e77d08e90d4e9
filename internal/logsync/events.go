package logsync

import (
	"sync"
	"time"

	"github.com/xolan/timetracker/internal/reconcile"
)

// EventKind identifies what a sync Event reports.
type EventKind int

const (
	// EventSynced means the file was read and folded into the store.
	EventSynced EventKind = iota
	// EventFlushed means pending store changes were written.
	EventFlushed
	// EventLost means the log became unreachable.
	EventLost
	// EventRecovered means the original log came back and was merged.
	EventRecovered
	// EventSwitched means the session now uses a different log path.
	EventSwitched
	// EventBackup means a daily snapshot was taken.
	EventBackup
	// EventReportRefresh asks report views to recompute at the day boundary.
	EventReportRefresh
	// EventError reports a failed cycle. The scheduler keeps running unless
	// Err is ErrQuit.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventSynced:
		return "synced"
	case EventFlushed:
		return "flushed"
	case EventLost:
		return "lost"
	case EventRecovered:
		return "recovered"
	case EventSwitched:
		return "switched"
	case EventBackup:
		return "backup"
	case EventReportRefresh:
		return "report-refresh"
	case EventError:
		return "error"
	}
	return "unknown"
}

// Event is published to subscribers of a Session.
type Event struct {
	Kind   EventKind
	Path   string
	Err    error
	Result reconcile.Result
	At     time.Time
}

// hub fans events out to subscribers. Slow subscribers miss events rather
// than stall the scheduler.
type hub struct {
	mu     sync.Mutex
	subs   []chan Event
	closed bool
}

func (h *hub) subscribe(buf int) <-chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan Event, buf)
	if h.closed {
		close(ch)
		return ch
	}
	h.subs = append(h.subs, ch)
	return ch
}

func (h *hub) publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, ch := range h.subs {
		close(ch)
	}
	h.subs = nil
}
