package session

import (
	"errors"

	"switchboard/internal/logging"
)

// FailopenStore wraps a FileStore so persistence trouble degrades routing
// instead of breaking it. Loads that fail for any reason hand back a fresh
// idle state; saves that fail are logged and swallowed. The routing path
// never sees a store error.
type FailopenStore struct {
	inner *FileStore
}

// NewFailopenStore wraps a file store.
func NewFailopenStore(inner *FileStore) *FailopenStore {
	return &FailopenStore{inner: inner}
}

// Inner exposes the wrapped store for maintenance paths (sweep, list)
// that do want real errors.
func (f *FailopenStore) Inner() *FileStore {
	return f.inner
}

// Load returns the persisted state for key, or a fresh idle state when the
// file is missing, expired, corrupt, or unreadable. The second return
// reports whether persisted state was actually found.
func (f *FailopenStore) Load(key string) (*State, bool) {
	st, err := f.inner.Load(key)
	if err == nil {
		return st, true
	}

	switch {
	case errors.Is(err, ErrNotFound):
		// First sighting of this session, nothing to report.
	case errors.Is(err, ErrExpired):
		logging.Session("state for %s expired, starting idle", key)
	case errors.Is(err, ErrCorruptState):
		logging.SessionWarn("state for %s unreadable, starting idle", key)
	default:
		logging.SessionWarn("cannot load state for %s, starting idle: %v", key, err)
	}
	return NewState(key), false
}

// Save persists the state, logging and swallowing any failure. Routing has
// already decided by the time this runs; losing one write costs at most a
// little hysteresis on the next request.
func (f *FailopenStore) Save(st *State) {
	if err := f.inner.Save(st); err != nil {
		logging.StoreError("cannot persist state for %s, continuing without: %v", st.SessionKey, err)
	}
}
