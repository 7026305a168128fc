package route

import (
	"time"

	"github.com/google/uuid"

	"switchboard/internal/classify"
	"switchboard/internal/config"
	"switchboard/internal/journal"
	"switchboard/internal/logging"
	"switchboard/internal/registry"
	"switchboard/internal/session"
)

// Request is one routing request.
type Request struct {
	Text      string // the raw request text to classify
	Override  string // non-empty forces this domain, bypassing classification
	NoPersist bool   // evaluate only, leave session state untouched
}

// Coordinator runs the full routing pipeline: resolve the session, load its
// state, classify and score the request, decide, persist, journal. Route
// never returns an error; every failure on the way degrades to a usable
// decision plus a logged warning.
type Coordinator struct {
	cfg        *config.Config
	registry   *registry.Registry
	classifier *classify.Classifier
	scorer     *classify.Scorer
	engine     *Engine
	resolver   *session.Resolver
	store      *session.FailopenStore
	journal    *journal.Journal // nil when journaling is disabled
}

// NewCoordinator wires the routing pipeline from config. Legacy session
// state is migrated on construction, matching where schema upgrades run
// for the journal database.
func NewCoordinator(cfg *config.Config, reg *registry.Registry, j *journal.Journal) *Coordinator {
	fileStore := session.NewFileStore(cfg.SessionsDir(), cfg.Session.GetSessionTTL())

	if result, err := session.MigrateLegacyStates(cfg.SessionsDir(), fileStore); err != nil {
		logging.StoreWarn("legacy state migration failed: %v", err)
	} else if result.Migrated > 0 {
		logging.Store("migrated %d legacy session state files", result.Migrated)
	}

	return &Coordinator{
		cfg:        cfg,
		registry:   reg,
		classifier: classify.NewClassifier(reg),
		scorer: classify.NewScorer(reg, classify.ScorerConfig{
			ComplexityBoost: cfg.Routing.ComplexityBoost,
			SaturationDepth: cfg.Routing.SaturationDepth,
		}),
		engine:   NewEngine(cfg.Routing),
		resolver: session.NewResolver(cfg.Session),
		store:    session.NewFailopenStore(fileStore),
		journal:  j,
	}
}

// Identity returns the resolved session identity without routing anything.
func (c *Coordinator) Identity() session.Identity {
	return c.resolver.Resolve()
}

// CurrentState loads the session's persisted state, or a fresh idle state
// when none exists.
func (c *Coordinator) CurrentState() (*session.State, bool) {
	return c.store.Load(c.resolver.Resolve().Key)
}

// Route runs one request through the pipeline and returns the decision.
func (c *Coordinator) Route(req Request) Decision {
	timer := logging.StartTimer(logging.CategoryRouting, "Route")
	defer timer.Stop()
	started := time.Now()

	identity := c.resolver.Resolve()
	st, found := c.store.Load(identity.Key)
	chainLen := len(st.Handoffs)

	var outcome Outcome
	if req.Override != "" {
		outcome = c.applyOverride(st, req.Override)
	} else {
		classification := c.classifier.Classify(req.Text)
		candidates := c.scorer.Score(classification, st.ActiveDomain)
		outcome = c.engine.Decide(st.ActiveDomain, st.Confidence, candidates)
	}

	// Fold the outcome back into session state. Holds on a live session
	// still touch it so the TTL tracks use, not just change.
	dirty := false
	switch {
	case outcome.Switched:
		st.Activate(outcome.Domain, outcome.Confidence, outcome.Reason)
		dirty = true
	case outcome.Reason == ReasonSameDomain:
		st.UpdateConfidence(outcome.Confidence)
		dirty = true
	case found && !st.IsIdle():
		st.Touch()
		dirty = true
	}

	if dirty && !req.NoPersist {
		if elapsed := time.Since(started); elapsed > c.cfg.Routing.GetPersistBudget() {
			logging.Get(logging.CategoryPerf).Warnf(
				"routing took %s, over the %s persist budget; skipping state write",
				elapsed.Round(time.Millisecond), c.cfg.Routing.GetPersistBudget())
		} else {
			c.store.Save(st)
		}
	}

	decision := Decision{
		ID:         uuid.NewString(),
		SessionKey: identity.Key,
		Confidence: outcome.Confidence,
		Switched:   outcome.Switched,
		Reason:     outcome.Reason,
		Complexity: outcome.Complexity,
		DecidedAt:  time.Now().UTC(),
	}
	if outcome.Domain != "" {
		domain := outcome.Domain
		decision.SelectedDomain = &domain
	}

	c.record(decision, req, st, chainLen)
	return decision
}

// applyOverride forces a known domain at full confidence. Unknown domains
// leave the session exactly as it was.
func (c *Coordinator) applyOverride(st *session.State, domain string) Outcome {
	if _, ok := c.registry.Get(domain); !ok {
		logging.RoutingWarn("override domain %q not in catalog, ignoring", domain)
		return Outcome{
			Domain:     st.ActiveDomain,
			Confidence: st.Confidence,
			Switched:   false,
			Reason:     ReasonUnknownOverride,
		}
	}

	logging.Routing("manual override to %s", domain)
	return Outcome{
		Domain:     domain,
		Confidence: 1.0,
		Switched:   st.ActiveDomain != domain,
		Reason:     ReasonManualOverride,
	}
}

// record journals the decision and any handoffs this call appended.
// Journal trouble is logged and dropped; the decision already stands.
func (c *Coordinator) record(d Decision, req Request, st *session.State, chainLenBefore int) {
	if c.journal == nil || req.NoPersist {
		return
	}

	err := c.journal.RecordDecision(journal.DecisionRecord{
		ID:             d.ID,
		SessionKey:     d.SessionKey,
		Request:        req.Text,
		SelectedDomain: d.Domain(),
		Confidence:     d.Confidence,
		Switched:       d.Switched,
		Reason:         d.Reason,
		DecidedAt:      d.DecidedAt,
	})
	if err != nil {
		logging.JournalWarn("cannot journal decision: %v", err)
		return
	}

	for _, ev := range st.Handoffs[chainLenBefore:] {
		if err := c.journal.RecordHandoff(d.SessionKey, ev); err != nil {
			logging.JournalWarn("cannot journal handoff %s: %v", ev.ID, err)
		}
	}
}
