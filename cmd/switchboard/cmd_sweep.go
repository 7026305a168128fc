// Package main implements the sweep command: TTL maintenance for stored
// sessions and optional journal pruning.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"switchboard/internal/session"
)

var (
	sweepPruneJournal string
	sweepIfDue        bool
)

// sweepCmd removes expired and corrupt session state
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove expired and corrupt session state",
	Long: `Walks every stored session and removes the ones past their TTL, along
with unreadable state files. Routing already does this lazily on access;
sweep exists for cron and for reclaiming space in one pass.

--if-due makes the command a no-op unless a full sweep interval has passed
since the last one, so it can run on every shell startup without cost.
--prune-journal additionally deletes archive rows older than the given
age, e.g. --prune-journal 720h.`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().BoolVar(&sweepIfDue, "if-due", false, "Only sweep when the sweep interval has elapsed")
	sweepCmd.Flags().StringVar(&sweepPruneJournal, "prune-journal", "", "Also prune journal rows older than this duration")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	now := time.Now().UTC()
	marker := filepath.Join(stateDir, "last-sweep")

	if sweepIfDue && !session.ShouldSweep(readSweepMarker(marker), now) {
		fmt.Println("Sweep not due yet.")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	res, err := session.Sweep(ctx, sessionStore())
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	writeSweepMarker(marker, now)

	fmt.Println("🧹 Session Sweep")
	fmt.Println(strings.Repeat("─", 50))
	fmt.Printf("  examined: %d\n", res.Examined)
	fmt.Printf("  expired:  %d\n", res.Expired)
	fmt.Printf("  corrupt:  %d\n", res.Corrupt)
	for _, msg := range res.Errors {
		fmt.Printf("  ⚠️  %s\n", msg)
	}

	if sweepPruneJournal != "" {
		age, err := time.ParseDuration(sweepPruneJournal)
		if err != nil {
			return fmt.Errorf("invalid --prune-journal duration: %w", err)
		}
		j := openJournal()
		if j == nil {
			fmt.Println("  journal:  disabled or unavailable, nothing to prune")
			return nil
		}
		defer j.Close()
		removed, err := j.Prune(now.Add(-age))
		if err != nil {
			return fmt.Errorf("journal prune failed: %w", err)
		}
		fmt.Printf("  journal:  pruned %d decisions older than %s\n", removed, sweepPruneJournal)
	}
	return nil
}

// readSweepMarker returns the recorded time of the last sweep, or the zero
// time when none is recorded.
func readSweepMarker(path string) time.Time {
	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}
	}
	return t
}

// writeSweepMarker records a completed sweep. Failures are ignored; the
// worst case is an extra sweep next time.
func writeSweepMarker(path string, t time.Time) {
	_ = os.WriteFile(path, []byte(t.Format(time.RFC3339)+"\n"), 0o644)
}
