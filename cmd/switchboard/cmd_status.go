// Package main implements the status command: one screen answering "who am
// I, what is active, and where does state live".
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"switchboard/cmd/switchboard/ui"
	"switchboard/internal/session"
)

var statusJSON bool

// statusCmd shows switchboard status
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session identity, active domain, and catalog state",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the status as JSON")
	rootCmd.AddCommand(statusCmd)
}

// statusInfo is the JSON shape of the status command.
type statusInfo struct {
	Version       string         `json:"version"`
	StateDir      string         `json:"state_dir"`
	ConfigFile    bool           `json:"config_file"`
	SessionKey    string         `json:"session_key"`
	KeySource     string         `json:"key_source"`
	Anchor        string         `json:"anchor,omitempty"`
	ActiveDomain  string         `json:"active_domain,omitempty"`
	Confidence    float64        `json:"confidence,omitempty"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
	Handoffs      int            `json:"handoffs"`
	Profiles      int            `json:"profiles"`
	CatalogSource string         `json:"catalog_source"`
	JournalPath   string         `json:"journal_path,omitempty"`
	JournalTotals map[string]int `json:"journal_totals,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	info := statusInfo{
		Version:  rootCmd.Version,
		StateDir: stateDir,
	}
	if _, err := os.Stat(filepath.Join(stateDir, "config.yaml")); err == nil {
		info.ConfigFile = true
	}

	resolver := session.NewResolver(cfg.Session)
	id := resolver.Resolve()
	info.SessionKey = id.Key
	info.KeySource = id.Source
	info.Anchor = id.Anchor

	store := session.NewFileStore(cfg.SessionsDir(), cfg.Session.GetSessionTTL())
	st, err := store.Load(id.Key)
	switch {
	case err == nil:
		info.ActiveDomain = st.ActiveDomain
		info.Confidence = st.Confidence
		updated := st.UpdatedAt
		info.UpdatedAt = &updated
		info.Handoffs = len(st.Handoffs)
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		// Fresh session; nothing stored yet.
	default:
		fmt.Fprintf(os.Stderr, "warning: session state unreadable: %v\n", err)
	}

	reg, err := openRegistry()
	if err != nil {
		return err
	}
	info.Profiles = reg.Len()
	info.CatalogSource = reg.Source()

	if cfg.Journal.Enabled {
		info.JournalPath = cfg.JournalPath()
		if j := openJournal(); j != nil {
			if totals, err := j.DomainTotals(); err == nil {
				info.JournalTotals = totals
			}
			j.Close()
		}
	}

	if statusJSON {
		return printJSON(info)
	}
	printStatus(info)
	return nil
}

func printStatus(info statusInfo) {
	s := ui.DefaultStyles()

	fmt.Println(s.Title.Render("switchboard " + info.Version))
	fmt.Println(s.RenderDivider(50))

	fmt.Printf("%s %s\n", s.Key.Render("state dir"), info.StateDir)
	configNote := "defaults (no config.yaml)"
	if info.ConfigFile {
		configNote = "config.yaml"
	}
	fmt.Printf("%s %s\n", s.Key.Render("config"), configNote)

	sessionLine := fmt.Sprintf("%s (%s)", info.SessionKey, info.KeySource)
	if info.Anchor != "" {
		sessionLine += " anchor=" + info.Anchor
	}
	fmt.Printf("%s %s\n", s.Key.Render("session"), sessionLine)

	if info.ActiveDomain != "" {
		conf := s.Confidence(info.Confidence).Render(fmt.Sprintf("%.2f", info.Confidence))
		fmt.Printf("%s %s %s\n", s.Key.Render("domain"), s.Badge.Render(info.ActiveDomain), conf)
	} else {
		fmt.Printf("%s %s\n", s.Key.Render("domain"), s.IdleBadge.Render("idle"))
	}
	if info.UpdatedAt != nil {
		fmt.Printf("%s %s ago, %d handoffs\n", s.Key.Render("updated"), formatAge(time.Now().UTC().Sub(*info.UpdatedAt)), info.Handoffs)
	}

	fmt.Printf("%s %d profiles (%s)\n", s.Key.Render("catalog"), info.Profiles, info.CatalogSource)

	if info.JournalPath != "" {
		total := 0
		for _, n := range info.JournalTotals {
			total += n
		}
		fmt.Printf("%s %s (%d routed decisions)\n", s.Key.Render("journal"), info.JournalPath, total)
	}
}
