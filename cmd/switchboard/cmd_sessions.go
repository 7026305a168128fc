// Package main implements session management commands: listing stored
// sessions, showing one session's state and handoff chain, and clearing.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"switchboard/internal/session"
)

var (
	sessionsShowJSON     bool
	sessionsClearAll     bool
	sessionsHistoryAll   bool
	sessionsHistoryLimit int
)

// sessionsCmd manages stored sessions
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored sessions",
	Long: `List and manage the per-terminal session state files.

Subcommands:
  list  - List all stored sessions
  show  - Show one session's state and handoff chain
  clear - Remove one session, or all of them`,
	RunE: runSessionsList,
}

// sessionsListCmd lists stored sessions
var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored sessions",
	RunE:  runSessionsList,
}

// sessionsShowCmd shows one session in detail
var sessionsShowCmd = &cobra.Command{
	Use:   "show [session-key]",
	Short: "Show a session's state and handoff chain",
	Long: `Shows one session's full state: active domain, confidence, timestamps,
and the append-only handoff chain. Without an argument the current
session is resolved and shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSessionsShow,
}

// sessionsClearCmd removes session state
var sessionsClearCmd = &cobra.Command{
	Use:   "clear [session-key]",
	Short: "Remove a session's state (or --all)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionsClear,
}

// sessionsHistoryCmd lists journaled decisions
var sessionsHistoryCmd = &cobra.Command{
	Use:   "history [session-key]",
	Short: "Show journaled routing decisions",
	Long: `Lists recent routing decisions from the journal, newest first. This
outlives session TTL expiry: a cleared or expired session still has its
history. Without an argument the current session is resolved; pass --all
for every session.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSessionsHistory,
}

func init() {
	sessionsShowCmd.Flags().BoolVar(&sessionsShowJSON, "json", false, "Print the state as JSON")
	sessionsClearCmd.Flags().BoolVar(&sessionsClearAll, "all", false, "Remove every stored session")
	sessionsHistoryCmd.Flags().BoolVar(&sessionsHistoryAll, "all", false, "Show decisions from every session")
	sessionsHistoryCmd.Flags().IntVar(&sessionsHistoryLimit, "limit", 20, "Maximum decisions to show")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsClearCmd, sessionsHistoryCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func sessionStore() *session.FileStore {
	return session.NewFileStore(cfg.SessionsDir(), cfg.Session.GetSessionTTL())
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	entries, err := sessionStore().Entries()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No stored sessions.")
		return nil
	}

	now := time.Now().UTC()

	fmt.Println("📡 Stored Sessions")
	fmt.Println(strings.Repeat("─", 72))
	for _, e := range entries {
		icon := statusIcon(e.Status)
		domain := "-"
		conf := "    "
		age := "   -"
		handoffs := 0
		if e.State != nil {
			if e.State.ActiveDomain != "" {
				domain = e.State.ActiveDomain
				conf = fmt.Sprintf("%.2f", e.State.Confidence)
			}
			age = formatAge(e.Age(now))
			handoffs = len(e.State.Handoffs)
		}
		fmt.Printf("  %s %-24s %-14s %s  %6s ago  %d handoffs\n",
			icon, e.Key, domain, conf, age, handoffs)
	}
	fmt.Println(strings.Repeat("─", 72))
	fmt.Printf("Total: %d sessions\n", len(entries))
	fmt.Println("\nUse: switchboard sessions show <session-key>")
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	key := ""
	if len(args) == 1 {
		key = args[0]
	} else {
		resolver := session.NewResolver(cfg.Session)
		id := resolver.Resolve()
		key = id.Key
	}

	st, err := sessionStore().Load(key)
	if err != nil {
		return fmt.Errorf("session '%s': %w", key, err)
	}

	if sessionsShowJSON {
		return printJSON(st)
	}

	fmt.Printf("📡 Session %s\n", st.SessionKey)
	fmt.Println(strings.Repeat("─", 50))
	if st.IsIdle() {
		fmt.Println("  domain:     (idle)")
	} else {
		fmt.Printf("  domain:     %s\n", st.ActiveDomain)
		fmt.Printf("  confidence: %.2f\n", st.Confidence)
	}
	fmt.Printf("  created:    %s\n", st.CreatedAt.Format(time.RFC3339))
	fmt.Printf("  updated:    %s (%s ago)\n", st.UpdatedAt.Format(time.RFC3339), formatAge(time.Now().UTC().Sub(st.UpdatedAt)))

	chain := st.HandoffChain()
	if len(chain) > 0 {
		fmt.Printf("\n  Handoffs (%d):\n", len(chain))
		for _, ev := range chain {
			from := ev.From
			if from == "" {
				from = "(idle)"
			}
			fmt.Printf("    %s  %s → %s  (%s)\n", ev.At.Format("01-02 15:04"), from, ev.To, ev.Reason)
		}
	}
	return nil
}

func runSessionsClear(cmd *cobra.Command, args []string) error {
	store := sessionStore()

	if sessionsClearAll {
		keys, err := store.List()
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		for _, key := range keys {
			if err := store.Delete(key); err != nil {
				return fmt.Errorf("failed to remove session '%s': %w", key, err)
			}
		}
		fmt.Printf("✅ Removed %d sessions.\n", len(keys))
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("pass a session key or --all")
	}
	if err := store.Delete(args[0]); err != nil {
		return fmt.Errorf("failed to remove session '%s': %w", args[0], err)
	}
	fmt.Printf("✅ Removed session '%s'.\n", args[0])
	return nil
}

func runSessionsHistory(cmd *cobra.Command, args []string) error {
	j := openJournal()
	if j == nil {
		return fmt.Errorf("journal is disabled or unavailable")
	}
	defer j.Close()

	key := ""
	switch {
	case sessionsHistoryAll:
		// empty key queries every session
	case len(args) == 1:
		key = args[0]
	default:
		resolver := session.NewResolver(cfg.Session)
		key = resolver.Resolve().Key
	}

	decisions, err := j.RecentDecisions(key, sessionsHistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}
	if len(decisions) == 0 {
		fmt.Println("No journaled decisions.")
		return nil
	}

	scope := key
	if scope == "" {
		scope = "all sessions"
	}
	fmt.Printf("📜 Decision History (%s)\n", scope)
	fmt.Println(strings.Repeat("─", 72))
	for _, d := range decisions {
		domain := d.SelectedDomain
		if domain == "" {
			domain = "(idle)"
		}
		mark := " "
		if d.Switched {
			mark = "⇄"
		}
		request := d.Request
		if request == "" {
			request = "(override)"
		}
		fmt.Printf("  %s %s %-14s %.2f  %-24s %s\n",
			d.DecidedAt.Local().Format("01-02 15:04"), mark, domain, d.Confidence,
			truncate(request, 24), d.Reason)
	}
	fmt.Println(strings.Repeat("─", 72))
	fmt.Printf("Total: %d decisions\n", len(decisions))
	return nil
}

// statusIcon maps an entry status to its list glyph.
func statusIcon(status string) string {
	switch status {
	case session.StatusActive:
		return "🟢"
	case session.StatusIdle:
		return "⚪"
	case session.StatusExpired:
		return "🟡"
	case session.StatusCorrupt:
		return "🔴"
	default:
		return "  "
	}
}

// formatAge renders a duration the way a human reads a session list: the
// two most significant units at most.
func formatAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	default:
		return fmt.Sprintf("%dd%dh", int(d.Hours())/24, int(d.Hours())%24)
	}
}
