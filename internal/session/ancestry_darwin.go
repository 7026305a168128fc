//go:build darwin

package session

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// platformReadEntry reads a process record via ps, since macOS has no
// procfs. Start time comes from lstart and is truncated to whole seconds,
// which is stable enough to tell apart reused PIDs.
func platformReadEntry(pid int) (*procEntry, error) {
	out, err := exec.Command("ps", "-o", "ppid=,lstart=,comm=", "-p", strconv.Itoa(pid)).Output()
	if err != nil {
		return nil, fmt.Errorf("read process %d: %w", pid, err)
	}

	fields := strings.Fields(strings.TrimSpace(string(out)))
	// ppid + five lstart words (Mon Jan 2 15:04:05 2006) + comm
	if len(fields) < 7 {
		return nil, fmt.Errorf("unexpected ps output for pid %d: %q", pid, string(out))
	}

	ppid, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("malformed ppid for pid %d: %w", pid, err)
	}

	started, err := time.ParseInLocation("Mon Jan 2 15:04:05 2006", strings.Join(fields[1:6], " "), time.Local)
	if err != nil {
		return nil, fmt.Errorf("malformed start time for pid %d: %w", pid, err)
	}

	// comm can contain spaces (it is the full executable path on macOS).
	comm := strings.Join(fields[6:], " ")

	return &procEntry{
		PID:        pid,
		PPID:       ppid,
		Comm:       comm,
		StartTicks: uint64(started.Unix()),
	}, nil
}
