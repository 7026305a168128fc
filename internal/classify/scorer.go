package classify

import (
	"sort"

	"switchboard/internal/registry"
)

// Candidate is a scored domain, confidence normalized into [0,1].
type Candidate struct {
	Domain     string
	Confidence float64
	Complexity int
	Raw        float64
}

// ScorerConfig holds the scoring constants. These moved between revisions of
// the scoring formula often enough that they are configuration, not code.
type ScorerConfig struct {
	// Added per distinct matched signal category beyond the first.
	ComplexityBoost float64

	// How many of a profile's strongest signals amount to full confidence.
	SaturationDepth int
}

// DefaultScorerConfig returns the default scoring constants.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		ComplexityBoost: 0.05,
		SaturationDepth: 4,
	}
}

// Scorer normalizes raw classification evidence into ranked candidates.
type Scorer struct {
	registry *registry.Registry
	cfg      ScorerConfig
}

// NewScorer returns a scorer over the given catalog.
func NewScorer(r *registry.Registry, cfg ScorerConfig) *Scorer {
	if cfg.SaturationDepth < 1 {
		cfg = DefaultScorerConfig()
	}
	return &Scorer{registry: r, cfg: cfg}
}

// Score converts a classification into candidates sorted by confidence
// descending. The formula per domain:
//
//	base       = raw / saturationMass(profile)
//	complexity = distinct matched categories, clamped to [1,5]
//	confidence = clamp01(base + boost*(complexity-1))
//
// Ties break toward activeDomain first, then ascending domain ID, so ranking
// is total and deterministic. Domains absent from the catalog (stale state)
// are dropped.
func (s *Scorer) Score(cls Classification, activeDomain string) []Candidate {
	out := make([]Candidate, 0, len(cls))
	for domain, m := range cls {
		p, ok := s.registry.Get(domain)
		if !ok {
			continue
		}
		mass := p.SaturationMass(s.cfg.SaturationDepth)
		var base float64
		if mass > 0 {
			base = m.Raw / mass
		}
		complexity := complexityOf(m.Signals)
		conf := clamp01(base + s.cfg.ComplexityBoost*float64(complexity-1))
		out = append(out, Candidate{
			Domain:     domain,
			Confidence: conf,
			Complexity: complexity,
			Raw:        m.Raw,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		iActive := out[i].Domain == activeDomain
		jActive := out[j].Domain == activeDomain
		if iActive != jActive {
			return iActive
		}
		return out[i].Domain < out[j].Domain
	})
	return out
}

// complexityOf estimates request complexity as the number of distinct signal
// categories that fired, clamped to [1,5].
func complexityOf(signals []MatchedSignal) int {
	cats := make(map[string]struct{}, len(signals))
	for _, s := range signals {
		cats[s.Category] = struct{}{}
	}
	n := len(cats)
	if n < 1 {
		n = 1
	}
	if n > 5 {
		n = 5
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
