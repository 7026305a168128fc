//go:build linux

package session

// platformReadEntry reads a process record from procfs.
func platformReadEntry(pid int) (*procEntry, error) {
	return readProcfsEntry("/proc", pid)
}
