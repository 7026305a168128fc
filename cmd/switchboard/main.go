package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"switchboard/internal/config"
	"switchboard/internal/journal"
	"switchboard/internal/logging"
	"switchboard/internal/registry"
)

var (
	// Global flags
	stateDirFlag string
	sessionFlag  string
	verbose      bool

	// Resolved in PersistentPreRunE, shared by every subcommand
	cfg      *config.Config
	stateDir string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "switchboard",
	Short: "switchboard - session-aware intent routing",
	Long: `switchboard routes free-text requests to domain expert profiles.

Each request is scored against a catalog of weighted signal profiles. The
winner is then compared with the session's currently active domain under a
hysteresis rule, so control only changes hands on clear evidence: a modest
challenger never unseats a working domain, while a decisive one switches
immediately. Sessions are keyed by terminal (process ancestry), persist
across invocations, and expire after a quiet day.

Run 'switchboard route "your request"' for a decision, or
'switchboard monitor' for a live view of session state.`,
	Version: "1.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		stateDir = config.ResolveStateDir(stateDirFlag)

		var err error
		cfg, err = config.Load(stateDir)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		if sessionFlag != "" {
			cfg.Session.ExplicitKey = sessionFlag
		}

		opts := logging.Options{
			Level:    cfg.Logging.Level,
			Format:   cfg.Logging.Format,
			ToStderr: cfg.Logging.ToStderr,
			ToFile:   cfg.Logging.ToFile,
		}
		if verbose {
			opts.Level = "debug"
			opts.ToStderr = true
		}
		// The monitor owns the terminal; stderr records would tear its UI.
		if cmd.Name() == "monitor" {
			opts.ToStderr = false
		}
		if err := logging.Initialize(stateDir, opts); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&stateDirFlag, "state-dir", "", "State directory (default: $SWITCHBOARD_STATE_DIR or ~/.switchboard)")
	rootCmd.PersistentFlags().StringVarP(&sessionFlag, "session", "s", "", "Explicit session key (skips the process ancestry walk)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openRegistry loads the profile catalog for the resolved configuration.
func openRegistry() (*registry.Registry, error) {
	reg, err := registry.Load(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile catalog: %w", err)
	}
	return reg, nil
}

// openJournal opens the decision archive, or returns nil when it is disabled
// or unavailable. A broken journal must never block routing.
func openJournal() *journal.Journal {
	if !cfg.Journal.Enabled {
		return nil
	}
	j, err := journal.Open(cfg.JournalPath())
	if err != nil {
		logging.JournalWarn("journal unavailable: %v", err)
		return nil
	}
	return j
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// joinArgs joins command arguments back into the original request text.
func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
