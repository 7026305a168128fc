package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"switchboard/internal/route"
	"switchboard/internal/session"
)

func TestInitCmd(t *testing.T) {
	dir := testConfig(t)
	cmd := &cobra.Command{}

	output := captureOutput(t, func() {
		if err := runInit(cmd, []string{}); err != nil {
			t.Fatalf("runInit failed: %v", err)
		}
	})

	if !strings.Contains(output, "switchboard is ready") {
		t.Errorf("missing ready line in output: %s", output)
	}
	for _, p := range []string{"config.yaml", "sessions", "profiles"} {
		if _, err := os.Stat(filepath.Join(dir, p)); err != nil {
			t.Errorf("%s not created: %v", p, err)
		}
	}

	// Second run must not fail, and must not clobber without --force.
	output = captureOutput(t, func() {
		if err := runInit(cmd, []string{}); err != nil {
			t.Fatalf("runInit second run failed: %v", err)
		}
	})
	if !strings.Contains(output, "already exists") {
		t.Errorf("expected already-exists notice, got: %s", output)
	}
}

func TestInitCmdWriteProfiles(t *testing.T) {
	dir := testConfig(t)
	initWriteProfiles = true
	defer func() { initWriteProfiles = false }()

	if err := runInit(&cobra.Command{}, []string{}); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "profiles"))
	if err != nil {
		t.Fatalf("profiles dir unreadable: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no profile files exported")
	}
	found := false
	for _, e := range entries {
		if e.Name() == "kubernetes.yaml" {
			found = true
		}
	}
	if !found {
		t.Error("kubernetes.yaml missing from exported catalog")
	}
}

func TestRouteCmdJSON(t *testing.T) {
	testConfig(t)
	routeJSON = true
	defer func() { routeJSON = false }()

	output := captureOutput(t, func() {
		if err := runRoute(&cobra.Command{}, []string{"kubectl", "rollout", "restart", "for", "the", "payments", "deployment"}); err != nil {
			t.Fatalf("runRoute failed: %v", err)
		}
	})

	var d route.Decision
	if err := json.Unmarshal([]byte(output), &d); err != nil {
		t.Fatalf("output is not a decision: %v\n%s", err, output)
	}
	if d.SelectedDomain == nil || *d.SelectedDomain != "kubernetes" {
		t.Fatalf("expected kubernetes activation, got %+v", d)
	}
	if !d.Switched || d.Reason != "initial activation" {
		t.Errorf("expected initial activation switch, got switched=%v reason=%q", d.Switched, d.Reason)
	}
	if d.SessionKey != "cli-test" {
		t.Errorf("SessionKey = %q, want cli-test", d.SessionKey)
	}
	if d.Confidence < 0.7 || d.Confidence > 1 {
		t.Errorf("confidence out of expected range: %v", d.Confidence)
	}
}

func TestRouteCmdHumanOutput(t *testing.T) {
	testConfig(t)

	output := captureOutput(t, func() {
		if err := runRoute(&cobra.Command{}, []string{"the", "grafana", "dashboard", "shows", "prometheus", "alert", "noise"}); err != nil {
			t.Fatalf("runRoute failed: %v", err)
		}
	})

	if !strings.Contains(output, "observability") {
		t.Errorf("expected observability in output:\n%s", output)
	}
	if !strings.Contains(output, "confidence") {
		t.Errorf("expected confidence line in output:\n%s", output)
	}
}

func TestRouteCmdOverride(t *testing.T) {
	testConfig(t)
	routeJSON = true
	routeDomain = "database"
	defer func() {
		routeJSON = false
		routeDomain = ""
	}()

	output := captureOutput(t, func() {
		if err := runRoute(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runRoute failed: %v", err)
		}
	})

	var d route.Decision
	if err := json.Unmarshal([]byte(output), &d); err != nil {
		t.Fatalf("output is not a decision: %v\n%s", err, output)
	}
	if d.SelectedDomain == nil || *d.SelectedDomain != "database" {
		t.Fatalf("expected database override, got %+v", d)
	}
	if d.Reason != "manual override" || d.Confidence != 1.0 {
		t.Errorf("override decision wrong: %+v", d)
	}
}

func TestSessionsCmdFlow(t *testing.T) {
	testConfig(t)

	// Seed one active session under the explicit key.
	store := sessionStore()
	st := session.NewState("cli-test")
	st.Activate("networking", 0.84, "initial activation")
	if err := store.Save(st); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	output := captureOutput(t, func() {
		if err := runSessionsList(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runSessionsList failed: %v", err)
		}
	})
	if !strings.Contains(output, "cli-test") || !strings.Contains(output, "networking") {
		t.Errorf("list missing session row:\n%s", output)
	}

	output = captureOutput(t, func() {
		if err := runSessionsShow(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runSessionsShow failed: %v", err)
		}
	})
	if !strings.Contains(output, "networking") || !strings.Contains(output, "Handoffs (1)") {
		t.Errorf("show missing state detail:\n%s", output)
	}

	sessionsClearAll = true
	defer func() { sessionsClearAll = false }()
	output = captureOutput(t, func() {
		if err := runSessionsClear(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runSessionsClear failed: %v", err)
		}
	})
	if !strings.Contains(output, "Removed 1 sessions") {
		t.Errorf("clear output wrong:\n%s", output)
	}

	output = captureOutput(t, func() {
		if err := runSessionsList(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runSessionsList after clear failed: %v", err)
		}
	})
	if !strings.Contains(output, "No stored sessions.") {
		t.Errorf("expected empty list after clear:\n%s", output)
	}
}

func TestSessionsShowMissing(t *testing.T) {
	testConfig(t)

	err := runSessionsShow(&cobra.Command{}, []string{"never-routed"})
	if err == nil {
		t.Fatal("expected error for missing session")
	}
}

func TestSessionsHistoryCmd(t *testing.T) {
	testConfig(t)

	// Route once so the journal has a row.
	captureOutput(t, func() {
		if err := runRoute(&cobra.Command{}, []string{"tcpdump", "shows", "the", "firewall", "dropping", "dns"}); err != nil {
			t.Fatalf("runRoute failed: %v", err)
		}
	})

	output := captureOutput(t, func() {
		if err := runSessionsHistory(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runSessionsHistory failed: %v", err)
		}
	})
	if !strings.Contains(output, "networking") {
		t.Errorf("history missing journaled decision:\n%s", output)
	}
	if !strings.Contains(output, "Total: 1 decisions") {
		t.Errorf("history count wrong:\n%s", output)
	}
}

func TestProfilesCmdList(t *testing.T) {
	testConfig(t)

	output := captureOutput(t, func() {
		if err := runProfilesList(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runProfilesList failed: %v", err)
		}
	})

	if !strings.Contains(output, "kubernetes") || !strings.Contains(output, "security") {
		t.Errorf("list missing builtin profiles:\n%s", output)
	}
	if !strings.Contains(output, "Total: 8 profiles") {
		t.Errorf("list total wrong:\n%s", output)
	}
}

func TestProfilesCmdShow(t *testing.T) {
	testConfig(t)

	output := captureOutput(t, func() {
		if err := runProfilesShow(&cobra.Command{}, []string{"security"}); err != nil {
			t.Fatalf("runProfilesShow failed: %v", err)
		}
	})
	if !strings.Contains(output, "Security Engineering") {
		t.Errorf("show missing profile title:\n%s", output)
	}

	if err := runProfilesShow(&cobra.Command{}, []string{"no-such"}); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestStatusCmdJSON(t *testing.T) {
	dir := testConfig(t)
	statusJSON = true
	defer func() { statusJSON = false }()

	output := captureOutput(t, func() {
		if err := runStatus(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runStatus failed: %v", err)
		}
	})

	var info statusInfo
	if err := json.Unmarshal([]byte(output), &info); err != nil {
		t.Fatalf("output is not status JSON: %v\n%s", err, output)
	}
	if info.StateDir != dir {
		t.Errorf("StateDir = %q, want %q", info.StateDir, dir)
	}
	if info.SessionKey != "cli-test" || info.KeySource != session.SourceExplicit {
		t.Errorf("identity wrong: %+v", info)
	}
	if info.Profiles != 8 || info.CatalogSource != "builtin" {
		t.Errorf("catalog wrong: %+v", info)
	}
}

func TestSweepCmd(t *testing.T) {
	dir := testConfig(t)

	store := sessionStore()
	stale := session.NewState("stale")
	stale.UpdatedAt = time.Now().UTC().Add(-25 * time.Hour)
	if err := store.Save(stale); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	output := captureOutput(t, func() {
		if err := runSweep(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runSweep failed: %v", err)
		}
	})

	if !strings.Contains(output, "expired:  1") {
		t.Errorf("sweep did not report the stale session:\n%s", output)
	}
	if _, err := os.Stat(filepath.Join(dir, "last-sweep")); err != nil {
		t.Errorf("sweep marker not written: %v", err)
	}

	// With a fresh marker, --if-due becomes a no-op.
	sweepIfDue = true
	defer func() { sweepIfDue = false }()
	output = captureOutput(t, func() {
		if err := runSweep(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runSweep --if-due failed: %v", err)
		}
	})
	if !strings.Contains(output, "Sweep not due yet.") {
		t.Errorf("expected if-due short circuit:\n%s", output)
	}
}
