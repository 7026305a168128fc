package route

import (
	"switchboard/internal/classify"
	"switchboard/internal/config"
	"switchboard/internal/logging"
)

// Outcome is the engine's verdict before persistence concerns. Domain "" means
// the session stays (or remains) idle. Switched covers initial activation as
// well as domain-to-domain handoffs.
type Outcome struct {
	Domain     string
	Confidence float64
	Switched   bool
	Reason     string
	Complexity int
}

// Engine applies the domain-change rule with hysteresis. It holds only
// thresholds; all session state is passed in per call.
type Engine struct {
	cfg config.RoutingConfig
}

// NewEngine returns an engine using the given thresholds.
func NewEngine(cfg config.RoutingConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Decide takes the session's active domain ("" when idle) with its stored
// confidence and the ranked candidates for the current request, and returns
// the outcome.
//
// The switch rule, with A = activation threshold, S = switch delta, H = high
// confidence and (top, c) the best candidate:
//
//	idle:              activate iff c >= A
//	active(D, C), top == D:  stay, confidence becomes c
//	active(D, C), top != D:  switch iff c-C >= S, or both c >= H and C >= H
//	otherwise:         hold the current domain unchanged (hysteresis)
//
// Candidates must already be sorted; only the first is consulted.
func (e *Engine) Decide(active string, activeConf float64, candidates []classify.Candidate) Outcome {
	if len(candidates) == 0 {
		return Outcome{
			Domain:     active,
			Confidence: activeConf,
			Reason:     ReasonNoCandidates,
		}
	}
	top := candidates[0]

	if active == "" {
		if top.Confidence >= e.cfg.ActivationThreshold {
			logging.Routing("activating %s at %.2f", top.Domain, top.Confidence)
			return Outcome{
				Domain:     top.Domain,
				Confidence: top.Confidence,
				Switched:   true,
				Reason:     ReasonInitialActivation,
				Complexity: top.Complexity,
			}
		}
		logging.RoutingDebug("%s at %.2f below activation %.2f, staying idle",
			top.Domain, top.Confidence, e.cfg.ActivationThreshold)
		return Outcome{
			Confidence: top.Confidence,
			Reason:     ReasonBelowActivation,
			Complexity: top.Complexity,
		}
	}

	if top.Domain == active {
		return Outcome{
			Domain:     active,
			Confidence: top.Confidence,
			Reason:     ReasonSameDomain,
			Complexity: top.Complexity,
		}
	}

	delta := top.Confidence - activeConf
	switch {
	case delta >= e.cfg.SwitchDelta:
		logging.Routing("switching %s -> %s (delta %.2f)", active, top.Domain, delta)
		return Outcome{
			Domain:     top.Domain,
			Confidence: top.Confidence,
			Switched:   true,
			Reason:     ReasonConfidenceDelta,
			Complexity: top.Complexity,
		}
	case top.Confidence >= e.cfg.HighConfidence && activeConf >= e.cfg.HighConfidence:
		logging.Routing("switching %s -> %s (both above %.2f)", active, top.Domain, e.cfg.HighConfidence)
		return Outcome{
			Domain:     top.Domain,
			Confidence: top.Confidence,
			Switched:   true,
			Reason:     ReasonAmbiguousHigh,
			Complexity: top.Complexity,
		}
	default:
		logging.RoutingDebug("holding %s against %s (delta %.2f < %.2f)",
			active, top.Domain, delta, e.cfg.SwitchDelta)
		return Outcome{
			Domain:     active,
			Confidence: activeConf,
			Reason:     ReasonHysteresisHold,
			Complexity: top.Complexity,
		}
	}
}
