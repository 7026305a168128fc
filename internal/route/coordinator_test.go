package route

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"switchboard/internal/config"
	"switchboard/internal/journal"
	"switchboard/internal/registry"
	"switchboard/internal/session"
)

// The test catalog gives both profiles a saturation mass of 9 at the
// default depth, so expected confidences are plain fractions of 9.
func coordCatalog(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New([]registry.Profile{
		{ID: "rocketry", Title: "Rocketry", Signals: []registry.Signal{
			{Category: "core", Pattern: "rocket", Weight: 3},
			{Category: "core", Pattern: "propellant", Weight: 2.5},
			{Category: "tools", Pattern: "telemetry", Weight: 2},
			{Category: "actions", Pattern: "launch", Weight: 1.5},
			{Category: "context", Pattern: "orbit", Weight: 1},
		}},
		{ID: "sailing", Title: "Sailing", Signals: []registry.Signal{
			{Category: "core", Pattern: "sail", Weight: 3},
			{Category: "core", Pattern: "rigging", Weight: 2.5},
			{Category: "tools", Pattern: "winch", Weight: 2},
			{Category: "actions", Pattern: "tack", Weight: 1.5},
			{Category: "context", Pattern: "harbor", Weight: 1},
		}},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return reg
}

func coordConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.StateDir = t.TempDir()
	cfg.Session.ExplicitKey = "coord-test"
	return cfg
}

func newTestCoordinator(t *testing.T, cfg *config.Config) *Coordinator {
	t.Helper()
	return NewCoordinator(cfg, coordCatalog(t), nil)
}

// seedState persists an active session the way a previous invocation
// would have left it.
func seedState(t *testing.T, cfg *config.Config, domain string, conf float64) {
	t.Helper()
	fs := session.NewFileStore(cfg.SessionsDir(), 0)
	st := session.NewState(cfg.Session.ExplicitKey)
	st.Activate(domain, conf, ReasonInitialActivation)
	if err := fs.Save(st); err != nil {
		t.Fatalf("seed state: %v", err)
	}
}

func loadState(t *testing.T, cfg *config.Config) *session.State {
	t.Helper()
	st, err := session.NewFileStore(cfg.SessionsDir(), 0).Load(cfg.Session.ExplicitKey)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	return st
}

func TestRouteActivatesFromIdle(t *testing.T) {
	cfg := coordConfig(t)
	c := newTestCoordinator(t, cfg)

	d := c.Route(Request{Text: "the rocket needs fresh propellant telemetry"})

	if d.Domain() != "rocketry" {
		t.Fatalf("domain = %q, want rocketry", d.Domain())
	}
	if !d.Switched {
		t.Error("activation from idle should report switched")
	}
	if d.Reason != ReasonInitialActivation {
		t.Errorf("reason = %q, want %q", d.Reason, ReasonInitialActivation)
	}
	if want := 7.5/9 + 0.05; d.Confidence != want {
		t.Errorf("confidence = %v, want %v", d.Confidence, want)
	}
	if d.SessionKey != "coord-test" {
		t.Errorf("session key = %q", d.SessionKey)
	}
	if d.ID == "" || d.DecidedAt.IsZero() {
		t.Error("decision should carry an ID and timestamp")
	}

	st := loadState(t, cfg)
	if st.ActiveDomain != "rocketry" {
		t.Errorf("persisted domain = %q", st.ActiveDomain)
	}
	if len(st.Handoffs) != 1 || st.Handoffs[0].From != "" || st.Handoffs[0].To != "rocketry" {
		t.Errorf("persisted chain = %+v", st.Handoffs)
	}

	t.Logf("✓ activated %s at %.4f", d.Domain(), d.Confidence)
}

func TestRouteStaysIdleBelowThreshold(t *testing.T) {
	cfg := coordConfig(t)
	c := newTestCoordinator(t, cfg)

	d := c.Route(Request{Text: "check the telemetry"})

	if d.SelectedDomain != nil {
		t.Errorf("selected domain = %q, want null", *d.SelectedDomain)
	}
	if d.Switched {
		t.Error("idle session must not report switched")
	}
	if d.Reason != ReasonBelowActivation {
		t.Errorf("reason = %q, want %q", d.Reason, ReasonBelowActivation)
	}
	// The observed score is still reported so callers can see how close
	// the request came.
	if want := 2.0 / 9.0; d.Confidence != want {
		t.Errorf("confidence = %v, want %v", d.Confidence, want)
	}

	// Nothing was activated, so nothing should have been written.
	if _, err := os.Stat(cfg.SessionsDir()); !os.IsNotExist(err) {
		t.Error("an untouched idle session must not create state files")
	}
}

func TestRouteSameDomainRefreshes(t *testing.T) {
	cfg := coordConfig(t)
	seedState(t, cfg, "rocketry", 0.88)
	c := newTestCoordinator(t, cfg)

	d := c.Route(Request{Text: "rocket telemetry looks noisy"})

	if d.Domain() != "rocketry" || d.Switched {
		t.Fatalf("decision = %+v, want unswitched rocketry", d)
	}
	if d.Reason != ReasonSameDomain {
		t.Errorf("reason = %q, want %q", d.Reason, ReasonSameDomain)
	}
	if want := 5.0/9 + 0.05; d.Confidence != want {
		t.Errorf("confidence = %v, want refreshed %v", d.Confidence, want)
	}

	st := loadState(t, cfg)
	if st.Confidence != d.Confidence {
		t.Errorf("persisted confidence = %v, want %v", st.Confidence, d.Confidence)
	}
	if len(st.Handoffs) != 1 {
		t.Errorf("chain = %d events, a refresh is not a handoff", len(st.Handoffs))
	}
}

func TestRouteSwitchesOnConfidenceDelta(t *testing.T) {
	cfg := coordConfig(t)
	seedState(t, cfg, "rocketry", 0.60)
	c := newTestCoordinator(t, cfg)

	d := c.Route(Request{Text: "hoist the sail and check the rigging on the winch"})

	if d.Domain() != "sailing" || !d.Switched {
		t.Fatalf("decision = %+v, want switch to sailing", d)
	}
	if d.Reason != ReasonConfidenceDelta {
		t.Errorf("reason = %q, want %q", d.Reason, ReasonConfidenceDelta)
	}

	st := loadState(t, cfg)
	if st.ActiveDomain != "sailing" {
		t.Errorf("persisted domain = %q", st.ActiveDomain)
	}
	if len(st.Handoffs) != 2 {
		t.Fatalf("chain = %d events, want 2", len(st.Handoffs))
	}
	last := st.Handoffs[1]
	if last.From != "rocketry" || last.To != "sailing" || last.Reason != ReasonConfidenceDelta {
		t.Errorf("handoff = %+v", last)
	}
}

func TestRouteAmbiguousHighSwitch(t *testing.T) {
	cfg := coordConfig(t)
	seedState(t, cfg, "rocketry", 0.82)
	c := newTestCoordinator(t, cfg)

	// Challenger scores ~0.883: the delta (0.063) is under the switch
	// threshold but both sides clear the high-confidence bar.
	d := c.Route(Request{Text: "hoist the sail and check the rigging on the winch"})

	if d.Domain() != "sailing" || !d.Switched {
		t.Fatalf("decision = %+v, want switch to sailing", d)
	}
	if d.Reason != ReasonAmbiguousHigh {
		t.Errorf("reason = %q, want %q", d.Reason, ReasonAmbiguousHigh)
	}
}

func TestRouteHysteresisHolds(t *testing.T) {
	cfg := coordConfig(t)
	seedState(t, cfg, "rocketry", 0.80)
	c := newTestCoordinator(t, cfg)

	d := c.Route(Request{Text: "hoist the sail"})

	if d.Domain() != "rocketry" {
		t.Fatalf("domain = %q, hysteresis should retain rocketry", d.Domain())
	}
	if d.Switched {
		t.Error("hold must not report switched")
	}
	if d.Reason != ReasonHysteresisHold {
		t.Errorf("reason = %q, want %q", d.Reason, ReasonHysteresisHold)
	}
	if d.Confidence != 0.80 {
		t.Errorf("confidence = %v, want the stored 0.80", d.Confidence)
	}

	st := loadState(t, cfg)
	if st.ActiveDomain != "rocketry" || len(st.Handoffs) != 1 {
		t.Errorf("state = %+v, hold must not mutate domain or chain", st)
	}
}

func TestRoutePersistsAcrossInvocations(t *testing.T) {
	cfg := coordConfig(t)

	// Each coordinator stands in for one short-lived CLI run.
	first := newTestCoordinator(t, cfg)
	d1 := first.Route(Request{Text: "launch the rocket with propellant and telemetry"})
	if d1.Domain() != "rocketry" || !d1.Switched {
		t.Fatalf("first invocation = %+v", d1)
	}

	second := newTestCoordinator(t, cfg)
	d2 := second.Route(Request{Text: "rocket telemetry looks noisy"})
	if d2.Domain() != "rocketry" {
		t.Fatalf("second invocation domain = %q, want rocketry from persisted state", d2.Domain())
	}
	if d2.Switched {
		t.Error("second invocation should continue, not re-activate")
	}
	if d2.Reason != ReasonSameDomain {
		t.Errorf("reason = %q, want %q", d2.Reason, ReasonSameDomain)
	}

	t.Logf("✓ state carried across invocations: %s", d2.Domain())
}

func TestRouteExpiredStateStartsIdle(t *testing.T) {
	cfg := coordConfig(t)

	fs := session.NewFileStore(cfg.SessionsDir(), 0)
	st := session.NewState(cfg.Session.ExplicitKey)
	st.Activate("rocketry", 0.9, ReasonInitialActivation)
	st.UpdatedAt = time.Now().UTC().Add(-25 * time.Hour)
	if err := fs.Save(st); err != nil {
		t.Fatal(err)
	}

	c := newTestCoordinator(t, cfg)
	d := c.Route(Request{Text: "hoist the sail"})

	// With the stale activation discarded the weak request is judged
	// against the activation threshold, not hysteresis.
	if d.Reason != ReasonBelowActivation {
		t.Errorf("reason = %q, want %q after TTL expiry", d.Reason, ReasonBelowActivation)
	}
	if d.SelectedDomain != nil {
		t.Errorf("domain = %q, want null", *d.SelectedDomain)
	}
}

func TestRouteManualOverride(t *testing.T) {
	cfg := coordConfig(t)
	c := newTestCoordinator(t, cfg)

	d := c.Route(Request{Text: "anything at all", Override: "sailing"})
	if d.Domain() != "sailing" || !d.Switched {
		t.Fatalf("decision = %+v, want switch to sailing", d)
	}
	if d.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0 on override", d.Confidence)
	}
	if d.Reason != ReasonManualOverride {
		t.Errorf("reason = %q, want %q", d.Reason, ReasonManualOverride)
	}

	// Overriding to the already-active domain is not a switch.
	again := c.Route(Request{Text: "more of the same", Override: "sailing"})
	if again.Switched {
		t.Error("override to the active domain must not switch")
	}
}

func TestRouteUnknownOverrideIgnored(t *testing.T) {
	cfg := coordConfig(t)
	seedState(t, cfg, "rocketry", 0.80)
	c := newTestCoordinator(t, cfg)

	d := c.Route(Request{Text: "whatever", Override: "quilting"})

	if d.Domain() != "rocketry" || d.Switched {
		t.Fatalf("decision = %+v, unknown override must not change anything", d)
	}
	if d.Confidence != 0.80 {
		t.Errorf("confidence = %v, want stored 0.80", d.Confidence)
	}
	if d.Reason != ReasonUnknownOverride {
		t.Errorf("reason = %q, want %q", d.Reason, ReasonUnknownOverride)
	}

	st := loadState(t, cfg)
	if st.ActiveDomain != "rocketry" || len(st.Handoffs) != 1 {
		t.Errorf("state mutated by unknown override: %+v", st)
	}
}

func TestRouteNoPersistLeavesNoTrace(t *testing.T) {
	cfg := coordConfig(t)
	c := newTestCoordinator(t, cfg)

	d := c.Route(Request{Text: "launch the rocket with propellant and telemetry", NoPersist: true})
	if d.Domain() != "rocketry" || !d.Switched {
		t.Fatalf("dry-run decision = %+v", d)
	}

	if _, err := os.Stat(cfg.SessionsDir()); !os.IsNotExist(err) {
		t.Error("no-persist run must not write state")
	}
}

func TestRouteStoreFailureDegrades(t *testing.T) {
	cfg := coordConfig(t)
	// Make the state dir path pass through a regular file so every
	// filesystem operation under it fails.
	blocker := filepath.Join(cfg.StateDir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg.StateDir = blocker

	c := newTestCoordinator(t, cfg)
	d := c.Route(Request{Text: "the rocket needs fresh propellant telemetry"})

	if d.Domain() != "rocketry" || !d.Switched {
		t.Fatalf("decision = %+v, routing must survive a dead store", d)
	}
	if d.Reason != ReasonInitialActivation {
		t.Errorf("reason = %q", d.Reason)
	}

	t.Log("✓ routed despite unusable state directory")
}

func TestRoutePersistBudgetSkipsWrite(t *testing.T) {
	cfg := coordConfig(t)
	cfg.Routing.PersistBudget = "0s"
	c := newTestCoordinator(t, cfg)

	d := c.Route(Request{Text: "the rocket needs fresh propellant telemetry"})
	if d.Domain() != "rocketry" || !d.Switched {
		t.Fatalf("decision = %+v", d)
	}

	// The decision stands but the write was shed.
	if _, err := os.Stat(cfg.SessionsDir()); !os.IsNotExist(err) {
		t.Error("state write should be skipped when over the persist budget")
	}
}

func TestRouteEmptyTextKeepsState(t *testing.T) {
	cfg := coordConfig(t)
	seedState(t, cfg, "rocketry", 0.80)
	c := newTestCoordinator(t, cfg)

	d := c.Route(Request{Text: "   "})

	if d.Domain() != "rocketry" || d.Switched {
		t.Fatalf("decision = %+v, want unchanged rocketry", d)
	}
	if d.Reason != ReasonNoCandidates {
		t.Errorf("reason = %q, want %q", d.Reason, ReasonNoCandidates)
	}
}

func TestRouteJournalsDecisions(t *testing.T) {
	cfg := coordConfig(t)
	j, err := journal.Open(cfg.JournalPath())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer j.Close()

	c := NewCoordinator(cfg, coordCatalog(t), j)
	d := c.Route(Request{Text: "the rocket needs fresh propellant telemetry"})

	decisions, err := j.RecentDecisions("coord-test", 10)
	if err != nil {
		t.Fatalf("RecentDecisions: %v", err)
	}
	if len(decisions) != 1 {
		t.Fatalf("journaled decisions = %d, want 1", len(decisions))
	}
	if decisions[0].ID != d.ID {
		t.Errorf("journaled ID = %q, want %q", decisions[0].ID, d.ID)
	}
	if decisions[0].SelectedDomain != "rocketry" {
		t.Errorf("journaled domain = %q", decisions[0].SelectedDomain)
	}

	handoffs, err := j.HandoffHistory("coord-test", 10)
	if err != nil {
		t.Fatalf("HandoffHistory: %v", err)
	}
	if len(handoffs) != 1 || handoffs[0].To != "rocketry" {
		t.Errorf("journaled handoffs = %+v", handoffs)
	}
}
