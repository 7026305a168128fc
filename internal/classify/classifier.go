// Package classify scores request text against the profile catalog. The
// classifier is deterministic signal matching, not a statistical model: the
// same text against the same catalog always yields the same result, which is
// what makes the decision engine's behavior reproducible in tests.
package classify

import (
	"strings"

	"switchboard/internal/logging"
	"switchboard/internal/registry"
)

// MatchedSignal records one signal that fired, for reason reporting.
type MatchedSignal struct {
	Category string
	Pattern  string
	Weight   float64
}

// Match is the raw evidence for one domain.
type Match struct {
	Raw     float64
	Signals []MatchedSignal
}

// Classification maps domain ID to its match. Domains with no matched signal
// are omitted, consistently, so downstream code can treat presence as
// evidence.
type Classification map[string]Match

// Classifier matches text against the catalog.
type Classifier struct {
	registry *registry.Registry
}

// NewClassifier returns a classifier over the given catalog.
func NewClassifier(r *registry.Registry) *Classifier {
	return &Classifier{registry: r}
}

// Classify scores the text against every profile. Empty or whitespace-only
// input yields an empty classification; that is a valid outcome, not an
// error. Each signal counts at most once no matter how often its pattern
// repeats in the text.
func (c *Classifier) Classify(text string) Classification {
	result := Classification{}
	if strings.TrimSpace(text) == "" {
		return result
	}

	timer := logging.StartTimer(logging.CategoryClassify, "classify")
	defer timer.Stop()

	lowered := strings.ToLower(text)
	for _, p := range c.registry.All() {
		var m Match
		for i := range p.Signals {
			s := &p.Signals[i]
			if s.Matches(text, lowered) {
				m.Raw += s.Weight
				m.Signals = append(m.Signals, MatchedSignal{
					Category: s.Category,
					Pattern:  s.Pattern,
					Weight:   s.Weight,
				})
			}
		}
		if m.Raw > 0 {
			result[p.ID] = m
			logging.ClassifyDebug("%s: raw=%.2f signals=%d", p.ID, m.Raw, len(m.Signals))
		}
	}
	return result
}
