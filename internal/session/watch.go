package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"switchboard/internal/logging"
)

// WatchEvent is one settled change to a session state file.
type WatchEvent struct {
	Key string // session key derived from the file name
	Op  string // create, modify, delete, rename
	At  time.Time
}

// Watcher watches a sessions directory and emits one WatchEvent per settled
// change. The store writes via temp file and rename, which surfaces as a
// burst of raw events; the debounce window collapses each burst into a
// single notification.
type Watcher struct {
	mu       sync.Mutex
	fw       *fsnotify.Watcher
	dir      string
	debounce time.Duration
	pending  map[string]WatchEvent // raw path -> latest event
	events   chan WatchEvent
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewWatcher creates a watcher for the given sessions directory. Events do
// not flow until Start is called.
func NewWatcher(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:       fw,
		dir:      dir,
		debounce: 250 * time.Millisecond,
		pending:  make(map[string]WatchEvent),
		events:   make(chan WatchEvent, 16),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Events returns the channel of settled changes. The channel closes when
// the watcher stops.
func (w *Watcher) Events() <-chan WatchEvent {
	return w.events
}

// Start attaches the watch and launches the event loop. Non-blocking. The
// directory is created first so the watch can attach before the store's
// lazy mkdir; failure to attach is logged, not fatal, since the monitor
// still works as a plain viewer.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		logging.MonitorWarn("could not create watch dir %s: %v", w.dir, err)
	}
	if err := w.fw.Add(w.dir); err != nil {
		logging.MonitorWarn("watch failed for %s: %v", w.dir, err)
	} else {
		logging.Monitor("watching %s", w.dir)
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the loop to exit. Safe to call more
// than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.fw.Close(); err != nil {
		logging.MonitorWarn("error closing watcher: %v", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer close(w.events)

	flush := time.NewTicker(100 * time.Millisecond)
	defer flush.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.note(event, time.Now())

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logging.MonitorWarn("watch error: %v", err)

		case now := <-flush.C:
			for _, ev := range w.settled(now) {
				select {
				case w.events <- ev:
				default:
					// Slow consumer; drop rather than stall the loop.
				}
			}
		}
	}
}

// note records a raw filesystem event for debouncing. Only session state
// files count; temp files and strangers are ignored.
func (w *Watcher) note(event fsnotify.Event, now time.Time) {
	name := filepath.Base(event.Name)
	if !strings.HasPrefix(name, stateFilePrefix) || !strings.HasSuffix(name, ".json") {
		return
	}

	var op string
	switch {
	case event.Op&fsnotify.Create != 0:
		op = "create"
	case event.Op&fsnotify.Write != 0:
		op = "modify"
	case event.Op&fsnotify.Remove != 0:
		op = "delete"
	case event.Op&fsnotify.Rename != 0:
		op = "rename"
	default:
		return
	}

	key := strings.TrimSuffix(strings.TrimPrefix(name, stateFilePrefix), ".json")

	w.mu.Lock()
	w.pending[event.Name] = WatchEvent{Key: key, Op: op, At: now}
	w.mu.Unlock()
}

// settled returns and clears pending events older than the debounce window.
func (w *Watcher) settled(now time.Time) []WatchEvent {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []WatchEvent
	for path, ev := range w.pending {
		if now.Sub(ev.At) >= w.debounce {
			out = append(out, ev)
			delete(w.pending, path)
		}
	}
	return out
}
