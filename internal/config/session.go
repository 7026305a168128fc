package config

import (
	"fmt"
	"time"
)

// SessionConfig configures session identity resolution and state retention.
type SessionConfig struct {
	// How long an untouched session survives before sweep/expiry.
	TTL string `yaml:"ttl"`

	// Process names treated as session anchors during the ancestry walk.
	// The nearest matching ancestor becomes the session key, so two shells
	// in the same terminal stay separate sessions.
	AnchorProcesses []string `yaml:"anchor_processes"`

	// Hard bound on the ancestry walk.
	MaxAncestryHops int `yaml:"max_ancestry_hops"`

	// ExplicitKey bypasses the ancestry walk entirely. Set by the --session
	// flag or SWITCHBOARD_SESSION_KEY; never persisted.
	ExplicitKey string `yaml:"-"`
}

// DefaultAnchorProcesses returns the built-in anchor set: interactive shells
// first, then multiplexers and login chains reached when no shell sits below
// them.
func DefaultAnchorProcesses() []string {
	return []string{
		"bash", "zsh", "fish", "sh", "dash", "ksh",
		"tmux", "screen",
		"sshd", "login",
	}
}

// GetSessionTTL returns the session TTL as a duration.
func (s *SessionConfig) GetSessionTTL() time.Duration {
	d, err := time.ParseDuration(s.TTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

func (s *SessionConfig) validate() error {
	if s.TTL != "" {
		if _, err := time.ParseDuration(s.TTL); err != nil {
			return fmt.Errorf("session.ttl: %w", err)
		}
	}
	if s.MaxAncestryHops < 1 {
		return fmt.Errorf("session.max_ancestry_hops must be >= 1, got %d", s.MaxAncestryHops)
	}
	return nil
}
