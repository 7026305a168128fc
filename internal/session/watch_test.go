package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debounce and filtering are tested against the struct directly; only the
// lifecycle test touches a real fsnotify handle.

func TestWatcherNoteFiltersForeignFiles(t *testing.T) {
	w := &Watcher{debounce: time.Second, pending: make(map[string]WatchEvent)}
	now := time.Now()

	cases := []struct {
		name string
		path string
		op   fsnotify.Op
		want bool
	}{
		{"state file create", "/s/session-abc.json", fsnotify.Create, true},
		{"state file write", "/s/session-abc.json", fsnotify.Write, true},
		{"temp file from atomic save", "/s/session-1234.tmp", fsnotify.Create, false},
		{"unrelated file", "/s/notes.txt", fsnotify.Write, false},
		{"chmod only", "/s/session-abc.json", fsnotify.Chmod, false},
	}

	for _, tc := range cases {
		w.pending = make(map[string]WatchEvent)
		w.note(fsnotify.Event{Name: tc.path, Op: tc.op}, now)
		if got := len(w.pending) == 1; got != tc.want {
			t.Errorf("%s: recorded=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestWatcherNoteDerivesKeyAndOp(t *testing.T) {
	w := &Watcher{debounce: time.Second, pending: make(map[string]WatchEvent)}
	path := "/tmp/sessions/session-s4242-123456.json"

	w.note(fsnotify.Event{Name: path, Op: fsnotify.Write}, time.Now())

	ev, ok := w.pending[path]
	if !ok {
		t.Fatal("event not recorded")
	}
	if ev.Key != "s4242-123456" {
		t.Errorf("Key = %q, want s4242-123456", ev.Key)
	}
	if ev.Op != "modify" {
		t.Errorf("Op = %q, want modify", ev.Op)
	}
}

func TestWatcherDebounceCollapsesBursts(t *testing.T) {
	w := &Watcher{debounce: 250 * time.Millisecond, pending: make(map[string]WatchEvent)}
	path := "/s/session-burst.json"
	t0 := time.Now()

	w.note(fsnotify.Event{Name: path, Op: fsnotify.Create}, t0)
	w.note(fsnotify.Event{Name: path, Op: fsnotify.Write}, t0.Add(50*time.Millisecond))

	if got := w.settled(t0.Add(100 * time.Millisecond)); len(got) != 0 {
		t.Fatalf("settled inside the window: %+v", got)
	}

	got := w.settled(t0.Add(400 * time.Millisecond))
	if len(got) != 1 {
		t.Fatalf("expected 1 settled event, got %d", len(got))
	}
	if got[0].Op != "modify" {
		t.Errorf("Op = %q, want modify (latest event wins)", got[0].Op)
	}
	if len(w.pending) != 0 {
		t.Errorf("pending not cleared: %+v", w.pending)
	}
}

func TestWatcherStartStop(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")

	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	store := NewFileStore(dir, 0)
	st := NewState("watched")
	st.Activate("planning", 0.9, "initial activation")
	if err := store.Save(st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	select {
	case ev, ok := <-w.Events():
		if !ok {
			t.Fatal("events channel closed before delivering anything")
		}
		if ev.Key != "watched" {
			t.Errorf("Key = %q, want watched", ev.Key)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no watch event within 5s")
	}

	w.Stop()
	w.Stop() // idempotent

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-w.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("events channel did not close after Stop")
		}
	}
}
