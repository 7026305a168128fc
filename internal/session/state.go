// Package session owns everything keyed by "who is asking": resolving a
// stable session identity from process ancestry, persisting per-session
// routing state across short-lived invocations, and expiring state that has
// outlived its TTL. The file store is the only component that touches the
// on-disk records; everyone else works on in-memory copies.
package session

import (
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current on-disk state schema. Files carrying any
// other version are treated as absent and rebuilt from scratch.
const SchemaVersion = 2

// HandoffEvent is one entry of the append-only handoff chain. From is ""
// for the initial activation.
type HandoffEvent struct {
	ID     string    `json:"id"`
	From   string    `json:"from,omitempty"`
	To     string    `json:"to"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// State is the persisted per-session record. ActiveDomain "" means idle.
type State struct {
	SchemaVersion int            `json:"schema_version"`
	SessionKey    string         `json:"session_key"`
	ActiveDomain  string         `json:"active_domain,omitempty"`
	Confidence    float64        `json:"confidence,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Handoffs      []HandoffEvent `json:"handoffs,omitempty"`
}

// NewState returns a fresh idle state for a session key.
func NewState(key string) *State {
	now := time.Now().UTC()
	return &State{
		SchemaVersion: SchemaVersion,
		SessionKey:    key,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsIdle reports whether no domain is active.
func (s *State) IsIdle() bool {
	return s.ActiveDomain == ""
}

// Activate sets the active domain and confidence and records the handoff.
// It is the only mutation path that grows the chain, so append-only ordering
// holds by construction.
func (s *State) Activate(domain string, confidence float64, reason string) {
	event := HandoffEvent{
		ID:     uuid.NewString(),
		From:   s.ActiveDomain,
		To:     domain,
		Reason: reason,
		At:     time.Now().UTC(),
	}
	s.Handoffs = append(s.Handoffs, event)
	s.ActiveDomain = domain
	s.Confidence = confidence
	s.Touch()
}

// UpdateConfidence refreshes the stored confidence without a handoff.
func (s *State) UpdateConfidence(confidence float64) {
	s.Confidence = confidence
	s.Touch()
}

// Touch bumps the update timestamp, which is what the TTL clock reads.
func (s *State) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// Expired reports whether the state's last update is older than ttl.
func (s *State) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(s.UpdatedAt) > ttl
}

// HandoffChain returns a copy of the handoff history in append order.
// Callers get their own slice; the chain itself cannot be reordered or
// truncated from outside.
func (s *State) HandoffChain() []HandoffEvent {
	out := make([]HandoffEvent, len(s.Handoffs))
	copy(out, s.Handoffs)
	return out
}
