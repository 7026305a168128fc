package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"switchboard/internal/config"
	"switchboard/internal/logging"
)

// ErrAncestryUnsupported is returned on platforms where process ancestry
// cannot be read. The resolver falls back to the direct parent PID.
var ErrAncestryUnsupported = errors.New("process ancestry not supported on this platform")

// ErrNoAnchor means the walk completed without meeting an anchor process.
var ErrNoAnchor = errors.New("no anchor process in ancestry")

// Identity source labels.
const (
	SourceExplicit = "explicit" // key supplied by the caller
	SourceAnchor   = "anchor"   // nearest anchor in the process ancestry
	SourceParent   = "parent"   // fallback: direct parent PID
)

// Identity is a resolved session key plus where it came from.
type Identity struct {
	Key    string `json:"key"`
	Source string `json:"source"`
	Anchor string `json:"anchor,omitempty"` // anchor command name when Source is "anchor"
}

// procEntry is one process in an ancestry chain. StartTicks is the kernel's
// process start time, which disambiguates PID reuse.
type procEntry struct {
	PID        int
	PPID       int
	Comm       string
	StartTicks uint64
}

// Resolver maps the current process to a stable session key by walking up
// the process tree to the nearest anchor (typically the interactive shell).
// Every invocation launched from the same shell resolves to the same key,
// which is what lets short-lived CLI runs share routing state.
type Resolver struct {
	cfg     config.SessionConfig
	anchors map[string]bool

	// readEntry fetches one process record. Defaults to the platform
	// reader; tests swap in a fake tree.
	readEntry func(pid int) (*procEntry, error)

	resolved *Identity // memoized; one process resolves once
}

// NewResolver builds a resolver from session config.
func NewResolver(cfg config.SessionConfig) *Resolver {
	anchors := make(map[string]bool, len(cfg.AnchorProcesses))
	for _, name := range cfg.AnchorProcesses {
		anchors[normalizeComm(name)] = true
	}
	r := &Resolver{
		cfg:     cfg,
		anchors: anchors,
	}
	r.readEntry = platformReadEntry
	return r
}

// Resolve returns the session identity for the current process. It never
// fails: an explicit key bypasses the walk entirely, and any trouble
// reading ancestry degrades to the direct parent PID with a warning.
func (r *Resolver) Resolve() Identity {
	if r.resolved != nil {
		return *r.resolved
	}

	id := r.resolve(os.Getpid())
	r.resolved = &id
	return id
}

func (r *Resolver) resolve(pid int) Identity {
	if key := strings.TrimSpace(r.cfg.ExplicitKey); key != "" {
		logging.SessionDebug("using explicit session key %q", key)
		return Identity{Key: key, Source: SourceExplicit}
	}

	anchor, err := r.nearestAnchor(pid)
	if err == nil {
		id := Identity{
			Key:    fmt.Sprintf("s%d-%d", anchor.PID, anchor.StartTicks),
			Source: SourceAnchor,
			Anchor: anchor.Comm,
		}
		logging.SessionDebug("session anchored to %s (pid %d)", anchor.Comm, anchor.PID)
		return id
	}

	ppid := os.Getppid()
	switch {
	case errors.Is(err, ErrAncestryUnsupported):
		logging.SessionWarn("process ancestry unavailable on this platform, keying on parent pid %d", ppid)
	case errors.Is(err, ErrNoAnchor):
		logging.SessionWarn("no anchor process found in ancestry, keying on parent pid %d", ppid)
	default:
		logging.SessionWarn("cannot walk process ancestry (%v), keying on parent pid %d", err, ppid)
	}
	return Identity{Key: fmt.Sprintf("p%d", ppid), Source: SourceParent}
}

// nearestAnchor walks from pid toward init looking for the closest process
// whose command matches the anchor set. The hop limit bounds the walk even
// if the parent chain loops.
func (r *Resolver) nearestAnchor(pid int) (*procEntry, error) {
	maxHops := r.cfg.MaxAncestryHops
	if maxHops <= 0 {
		maxHops = 64
	}

	current := pid
	for hop := 0; hop < maxHops; hop++ {
		entry, err := r.readEntry(current)
		if err != nil {
			return nil, err
		}
		if r.anchors[normalizeComm(entry.Comm)] {
			return entry, nil
		}
		if entry.PPID <= 1 {
			return nil, ErrNoAnchor
		}
		current = entry.PPID
	}
	return nil, ErrNoAnchor
}

// readProcfsEntry parses <root>/<pid>/stat. Portable string handling; only
// the Linux resolver points it at a real /proc.
func readProcfsEntry(root string, pid int) (*procEntry, error) {
	data, err := os.ReadFile(filepath.Join(root, strconv.Itoa(pid), "stat"))
	if err != nil {
		return nil, fmt.Errorf("read process %d: %w", pid, err)
	}
	return parseStat(string(data))
}

// parseStat extracts pid, comm, ppid, and start time from a procfs stat
// line. The comm field is parenthesized and may itself contain spaces and
// parentheses, so fields are split only after the last ')'.
func parseStat(line string) (*procEntry, error) {
	open := strings.IndexByte(line, '(')
	closing := strings.LastIndexByte(line, ')')
	if open < 0 || closing < open {
		return nil, fmt.Errorf("malformed stat line")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(line[:open]))
	if err != nil {
		return nil, fmt.Errorf("malformed stat pid: %w", err)
	}
	comm := line[open+1 : closing]

	// After ')': state ppid pgrp session tty_nr ... starttime is the 20th
	// of these post-comm fields (field 22 overall).
	rest := strings.Fields(line[closing+1:])
	if len(rest) < 20 {
		return nil, fmt.Errorf("truncated stat line (%d fields after comm)", len(rest))
	}

	ppid, err := strconv.Atoi(rest[1])
	if err != nil {
		return nil, fmt.Errorf("malformed stat ppid: %w", err)
	}
	start, err := strconv.ParseUint(rest[19], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed stat starttime: %w", err)
	}

	return &procEntry{PID: pid, PPID: ppid, Comm: comm, StartTicks: start}, nil
}

// normalizeComm canonicalizes a process name for anchor comparison: strip
// any path, drop the login-shell dash prefix, lowercase.
func normalizeComm(comm string) string {
	name := filepath.Base(strings.TrimSpace(comm))
	name = strings.TrimPrefix(name, "-")
	return strings.ToLower(name)
}
