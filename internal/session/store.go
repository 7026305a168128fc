package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"switchboard/internal/logging"
)

// Sentinel errors for the file store. Callers branch on these to decide
// between "start fresh" and "real I/O trouble".
var (
	// ErrNotFound means no state file exists for the session key.
	ErrNotFound = errors.New("session state not found")
	// ErrCorruptState means the file exists but cannot be trusted:
	// unparseable JSON, an empty file, or a schema we do not speak.
	ErrCorruptState = errors.New("session state corrupt")
	// ErrExpired means the state existed but its TTL had lapsed.
	ErrExpired = errors.New("session state expired")
)

const stateFilePrefix = "session-"

// FileStore persists session state as one JSON file per session under a
// sessions directory. Writes go through a temp file and rename so a crash
// mid-write never leaves a truncated record behind.
type FileStore struct {
	dir string
	ttl time.Duration
}

// NewFileStore creates a store rooted at dir. The directory is created
// lazily on first save, not here, so read-only callers never mkdir.
func NewFileStore(dir string, ttl time.Duration) *FileStore {
	return &FileStore{dir: dir, ttl: ttl}
}

// Dir returns the sessions directory the store reads and writes.
func (fs *FileStore) Dir() string {
	return fs.dir
}

func (fs *FileStore) pathFor(key string) string {
	return filepath.Join(fs.dir, stateFilePrefix+sanitizeKey(key)+".json")
}

// sanitizeKey maps a session key to something safe in a filename. Resolver
// keys are already clean; explicit keys arrive from the command line and
// can contain anything.
func sanitizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

// Load reads the state for a session key. Returns ErrNotFound when no file
// exists, ErrCorruptState when the file cannot be parsed or carries a
// different schema version, and ErrExpired (after deleting the file) when
// the TTL has lapsed. All three mean "treat the session as idle".
func (fs *FileStore) Load(key string) (*State, error) {
	path := fs.pathFor(key)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read session state: %w", err)
	}

	if len(data) == 0 {
		logging.Store("empty state file %s, treating as corrupt", filepath.Base(path))
		return nil, ErrCorruptState
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		logging.Store("unparseable state file %s: %v", filepath.Base(path), err)
		return nil, ErrCorruptState
	}

	if st.SchemaVersion != SchemaVersion {
		logging.Store("state file %s has schema v%d, want v%d, treating as corrupt",
			filepath.Base(path), st.SchemaVersion, SchemaVersion)
		return nil, ErrCorruptState
	}

	if fs.ttl > 0 && st.Expired(fs.ttl, time.Now().UTC()) {
		logging.Store("state for %s expired (last update %s), discarding",
			key, st.UpdatedAt.Format(time.RFC3339))
		_ = os.Remove(path)
		return nil, ErrExpired
	}

	return &st, nil
}

// Save writes the state atomically: temp file in the same directory, write,
// fsync, close, rename. The sessions directory is created with owner-only
// permissions because state files carry request-derived history.
func (fs *FileStore) Save(st *State) error {
	if st == nil || st.SessionKey == "" {
		return fmt.Errorf("refusing to save state without a session key")
	}

	if err := os.MkdirAll(fs.dir, 0700); err != nil {
		return fmt.Errorf("create sessions directory: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}

	dest := fs.pathFor(st.SessionKey)

	// Temp file lives in the target directory so the rename stays on one
	// filesystem and is atomic.
	tmp, err := os.CreateTemp(fs.dir, stateFilePrefix+"*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath) // no-op after a successful rename
	}()

	if err := tmp.Chmod(0600); err != nil {
		return fmt.Errorf("chmod temp state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("rename temp state file: %w", err)
	}

	logging.StoreDebug("saved state for %s (domain=%q conf=%.2f)",
		st.SessionKey, st.ActiveDomain, st.Confidence)
	return nil
}

// Delete removes the state file for a key. Missing files are not an error.
func (fs *FileStore) Delete(key string) error {
	err := os.Remove(fs.pathFor(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete session state: %w", err)
	}
	return nil
}

// List returns the session keys that currently have state files, sorted.
// Keys are recovered from filenames; a missing sessions directory yields
// an empty list.
func (fs *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list sessions directory: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, stateFilePrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		key := strings.TrimSuffix(strings.TrimPrefix(name, stateFilePrefix), ".json")
		if key != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
