package config

import (
	"fmt"
	"time"
)

// RoutingConfig configures the decision engine and the confidence scorer.
// Every threshold that gates a domain change lives here; none are hardcoded
// in the engine.
type RoutingConfig struct {
	// Minimum top-candidate confidence to leave the idle state.
	ActivationThreshold float64 `yaml:"activation_threshold"`

	// Minimum confidence gain over the active domain to switch away from it.
	SwitchDelta float64 `yaml:"switch_delta"`

	// When both the active domain and the challenger sit at or above this
	// value, the higher score wins even without the delta.
	HighConfidence float64 `yaml:"high_confidence"`

	// Added to the normalized score per distinct signal category beyond the
	// first, rewarding requests that touch a profile from several angles.
	ComplexityBoost float64 `yaml:"complexity_boost"`

	// How many of a profile's strongest signals make up "full confidence".
	SaturationDepth int `yaml:"saturation_depth"`

	// Wall-clock budget for the persistence phase. When classification and
	// the decision already spent more than this, state writes are skipped.
	PersistBudget string `yaml:"persist_budget"`
}

// GetPersistBudget returns the persistence budget as a duration.
func (r *RoutingConfig) GetPersistBudget() time.Duration {
	d, err := time.ParseDuration(r.PersistBudget)
	if err != nil {
		return 150 * time.Millisecond
	}
	return d
}

func (r *RoutingConfig) validate() error {
	if r.ActivationThreshold < 0 || r.ActivationThreshold > 1 {
		return fmt.Errorf("routing.activation_threshold must be in [0,1], got %v", r.ActivationThreshold)
	}
	if r.SwitchDelta <= 0 || r.SwitchDelta > 1 {
		return fmt.Errorf("routing.switch_delta must be in (0,1], got %v", r.SwitchDelta)
	}
	if r.HighConfidence < 0 || r.HighConfidence > 1 {
		return fmt.Errorf("routing.high_confidence must be in [0,1], got %v", r.HighConfidence)
	}
	if r.ComplexityBoost < 0 {
		return fmt.Errorf("routing.complexity_boost must be >= 0, got %v", r.ComplexityBoost)
	}
	if r.SaturationDepth < 1 {
		return fmt.Errorf("routing.saturation_depth must be >= 1, got %d", r.SaturationDepth)
	}
	if _, err := time.ParseDuration(r.PersistBudget); r.PersistBudget != "" && err != nil {
		return fmt.Errorf("routing.persist_budget: %w", err)
	}
	return nil
}
