package journal

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"switchboard/internal/session"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func decisionAt(id, key, domain string, at time.Time) DecisionRecord {
	return DecisionRecord{
		ID:             id,
		SessionKey:     key,
		Request:        "scan the cluster for vulnerabilities",
		SelectedDomain: domain,
		Confidence:     0.82,
		Switched:       domain != "",
		Reason:         "initial activation",
		DecidedAt:      at,
	}
}

func TestRecordAndQueryDecisions(t *testing.T) {
	j := openTestJournal(t)
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	records := []DecisionRecord{
		decisionAt("d1", "s100-1", "security", base),
		decisionAt("d2", "s100-1", "database", base.Add(time.Minute)),
		decisionAt("d3", "s200-9", "security", base.Add(2*time.Minute)),
	}
	for _, rec := range records {
		if err := j.RecordDecision(rec); err != nil {
			t.Fatalf("RecordDecision(%s): %v", rec.ID, err)
		}
	}

	got, err := j.RecentDecisions("s100-1", 10)
	if err != nil {
		t.Fatalf("RecentDecisions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d decisions for s100-1, want 2", len(got))
	}
	// Newest first.
	if got[0].ID != "d2" || got[1].ID != "d1" {
		t.Errorf("order = [%s %s], want [d2 d1]", got[0].ID, got[1].ID)
	}
	if got[0].SelectedDomain != "database" {
		t.Errorf("domain = %q, want database", got[0].SelectedDomain)
	}
	if got[0].Reason != "initial activation" {
		t.Errorf("reason = %q", got[0].Reason)
	}

	all, err := j.RecentDecisions("", 10)
	if err != nil {
		t.Fatalf("RecentDecisions(all): %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d decisions across sessions, want 3", len(all))
	}

	t.Logf("✓ journaled and queried %d decisions", len(all))
}

func TestRecordDecisionIdempotent(t *testing.T) {
	j := openTestJournal(t)
	rec := decisionAt("dup", "k", "security", time.Now().UTC())

	if err := j.RecordDecision(rec); err != nil {
		t.Fatal(err)
	}
	rec.SelectedDomain = "database" // replay with drifted payload
	if err := j.RecordDecision(rec); err != nil {
		t.Fatal(err)
	}

	got, err := j.RecentDecisions("k", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1 (same ID must not duplicate)", len(got))
	}
	if got[0].SelectedDomain != "security" {
		t.Errorf("domain = %q, first write must win", got[0].SelectedDomain)
	}
}

func TestIdleDecisionHasNoDomain(t *testing.T) {
	j := openTestJournal(t)

	rec := decisionAt("idle1", "k", "", time.Now().UTC())
	rec.Switched = false
	rec.Reason = "below activation threshold"
	if err := j.RecordDecision(rec); err != nil {
		t.Fatal(err)
	}

	got, err := j.RecentDecisions("k", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatal("missing idle decision")
	}
	if got[0].SelectedDomain != "" {
		t.Errorf("domain = %q, want empty for idle decision", got[0].SelectedDomain)
	}
	if got[0].Switched {
		t.Error("idle decision must not read back as switched")
	}

	totals, err := j.DomainTotals()
	if err != nil {
		t.Fatal(err)
	}
	if len(totals) != 0 {
		t.Errorf("totals = %v, idle decisions must not be counted", totals)
	}
}

func TestLongRequestTruncated(t *testing.T) {
	j := openTestJournal(t)

	rec := decisionAt("big", "k", "security", time.Now().UTC())
	rec.Request = strings.Repeat("x", maxRequestLen*2)
	if err := j.RecordDecision(rec); err != nil {
		t.Fatal(err)
	}

	got, err := j.RecentDecisions("k", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got[0].Request) != maxRequestLen {
		t.Errorf("stored request length = %d, want %d", len(got[0].Request), maxRequestLen)
	}
}

func TestHandoffHistory(t *testing.T) {
	j := openTestJournal(t)
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	events := []session.HandoffEvent{
		{ID: "h1", To: "security", Reason: "initial activation", At: base},
		{ID: "h2", From: "security", To: "database", Reason: "confidence delta", At: base.Add(time.Minute)},
	}
	for _, ev := range events {
		if err := j.RecordHandoff("s1", ev); err != nil {
			t.Fatalf("RecordHandoff(%s): %v", ev.ID, err)
		}
	}
	// Replaying the whole chain must not duplicate rows.
	for _, ev := range events {
		if err := j.RecordHandoff("s1", ev); err != nil {
			t.Fatal(err)
		}
	}

	got, err := j.HandoffHistory("s1", 10)
	if err != nil {
		t.Fatalf("HandoffHistory: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d handoffs, want 2", len(got))
	}
	// Chronological order.
	if got[0].ID != "h1" || got[1].ID != "h2" {
		t.Errorf("order = [%s %s], want [h1 h2]", got[0].ID, got[1].ID)
	}
	if got[0].From != "" {
		t.Errorf("From = %q, want empty on the first handoff", got[0].From)
	}
	if got[1].From != "security" || got[1].To != "database" {
		t.Errorf("second handoff = %+v", got[1])
	}
}

func TestDomainTotals(t *testing.T) {
	j := openTestJournal(t)
	base := time.Now().UTC()

	for i, domain := range []string{"security", "security", "database"} {
		rec := decisionAt(
			string(rune('a'+i)), "k", domain, base.Add(time.Duration(i)*time.Second))
		if err := j.RecordDecision(rec); err != nil {
			t.Fatal(err)
		}
	}

	totals, err := j.DomainTotals()
	if err != nil {
		t.Fatal(err)
	}
	if totals["security"] != 2 || totals["database"] != 1 {
		t.Errorf("totals = %v, want security:2 database:1", totals)
	}
}

func TestPrune(t *testing.T) {
	j := openTestJournal(t)
	now := time.Now().UTC()

	if err := j.RecordDecision(decisionAt("old", "k", "security", now.Add(-48*time.Hour))); err != nil {
		t.Fatal(err)
	}
	if err := j.RecordDecision(decisionAt("new", "k", "database", now)); err != nil {
		t.Fatal(err)
	}
	if err := j.RecordHandoff("k", session.HandoffEvent{
		ID: "oldh", To: "security", Reason: "initial activation", At: now.Add(-48 * time.Hour),
	}); err != nil {
		t.Fatal(err)
	}

	removed, err := j.Prune(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	got, err := j.RecentDecisions("k", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("surviving decisions = %+v, want only 'new'", got)
	}

	handoffs, err := j.HandoffHistory("k", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(handoffs) != 0 {
		t.Errorf("handoffs = %d, want 0 after prune", len(handoffs))
	}
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "journal.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	if j.Path() != path {
		t.Errorf("Path() = %q, want %q", j.Path(), path)
	}
}
