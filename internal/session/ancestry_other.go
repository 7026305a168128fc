//go:build !linux && !darwin

package session

// platformReadEntry has no ancestry source on this platform; the resolver
// falls back to the parent PID.
func platformReadEntry(pid int) (*procEntry, error) {
	return nil, ErrAncestryUnsupported
}
