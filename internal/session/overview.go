package session

import (
	"errors"
	"time"
)

// Entry status labels, as shown by listing commands and the monitor.
const (
	StatusActive  = "active"
	StatusIdle    = "idle"
	StatusExpired = "expired"
	StatusCorrupt = "corrupt"
)

// Entry is one stored session as seen by a listing: the loaded state when
// readable, otherwise the reason it was not.
type Entry struct {
	Key    string
	State  *State // nil unless Status is active or idle
	Status string
	Err    error
}

// Age returns how long ago the session was last touched, zero when the
// state could not be read.
func (e *Entry) Age(now time.Time) time.Duration {
	if e.State == nil {
		return 0
	}
	return now.Sub(e.State.UpdatedAt)
}

// Entries loads every stored session in key order. Loads go through the
// normal TTL path, so expired sessions are removed from disk here and
// reported as expired exactly once. Corrupt files are reported but left in
// place for Sweep.
func (fs *FileStore) Entries() ([]Entry, error) {
	keys, err := fs.List()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		st, err := fs.Load(key)
		switch {
		case err == nil && st.IsIdle():
			entries = append(entries, Entry{Key: key, State: st, Status: StatusIdle})
		case err == nil:
			entries = append(entries, Entry{Key: key, State: st, Status: StatusActive})
		case errors.Is(err, ErrExpired):
			entries = append(entries, Entry{Key: key, Status: StatusExpired, Err: err})
		case errors.Is(err, ErrNotFound):
			// Removed between List and Load.
		default:
			entries = append(entries, Entry{Key: key, Status: StatusCorrupt, Err: err})
		}
	}
	return entries, nil
}
