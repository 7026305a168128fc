// Package route holds the domain-change decision engine and the coordinator
// that drives one request through classification, decision, and persistence.
// The engine is a pure function over small values; everything stateful sits
// in the coordinator so the switch rule stays trivially testable.
package route

import (
	"time"
)

// Decision reasons. These strings are part of the output contract: they show
// up verbatim in JSON output, the journal, and handoff chains, so tests pin
// them and they must not drift.
const (
	ReasonInitialActivation = "initial activation"
	ReasonConfidenceDelta   = "confidence delta"
	ReasonAmbiguousHigh     = "ambiguous high confidence — selected higher score"
	ReasonHysteresisHold    = "hysteresis hold"
	ReasonBelowActivation   = "below activation threshold"
	ReasonNoCandidates      = "no candidates"
	ReasonSameDomain        = "same domain"
	ReasonManualOverride    = "manual override"
	ReasonUnknownOverride   = "unknown domain override ignored"
)

// Decision is the record returned for every routing call, in both output
// modes. SelectedDomain is nil while no domain is active.
type Decision struct {
	ID             string    `json:"id"`
	SessionKey     string    `json:"session_key"`
	SelectedDomain *string   `json:"selected_domain"`
	Confidence     float64   `json:"confidence"`
	Switched       bool      `json:"switched"`
	Reason         string    `json:"reason"`
	Complexity     int       `json:"complexity,omitempty"`
	DecidedAt      time.Time `json:"decided_at"`
}

// Domain returns the selected domain or "" when none is active.
func (d *Decision) Domain() string {
	if d.SelectedDomain == nil {
		return ""
	}
	return *d.SelectedDomain
}
