// Package main implements the route command, the core switchboard operation:
// one request in, one domain decision out.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"switchboard/cmd/switchboard/ui"
	"switchboard/internal/route"
)

var (
	routeJSON      bool
	routeDomain    string
	routeNoPersist bool
)

// routeCmd routes a single request
var routeCmd = &cobra.Command{
	Use:   "route [request]",
	Short: "Route a request to the best-fitting domain",
	Long: `Classifies the request against the profile catalog, applies the
hysteresis switch rule to the session's active domain, and prints the
decision. The request is read from stdin when no argument is given, so the
command slots into shell pipelines and editor hooks.

The exit code is 0 even when no domain activates; automation should parse
the JSON output instead.

Examples:
  switchboard route "refactor the auth middleware"
  echo "why is the build red" | switchboard route --json
  switchboard route --domain planning      # manual override`,
	Args: cobra.ArbitraryArgs,
	RunE: runRoute,
}

func init() {
	routeCmd.Flags().BoolVar(&routeJSON, "json", false, "Print the decision as JSON")
	routeCmd.Flags().StringVarP(&routeDomain, "domain", "d", "", "Skip classification and activate this domain")
	routeCmd.Flags().BoolVar(&routeNoPersist, "no-persist", false, "Decide without writing session state or the journal")
	rootCmd.AddCommand(routeCmd)
}

func runRoute(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(joinArgs(args))
	if text == "" && routeDomain == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read request from stdin: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}

	reg, err := openRegistry()
	if err != nil {
		return err
	}

	j := openJournal()
	if j != nil {
		defer j.Close()
	}

	coord := route.NewCoordinator(cfg, reg, j)
	decision := coord.Route(route.Request{
		Text:      text,
		Override:  routeDomain,
		NoPersist: routeNoPersist,
	})

	if routeJSON {
		return printJSON(decision)
	}
	printDecision(decision)
	return nil
}

// printDecision renders a decision for a human terminal.
func printDecision(d route.Decision) {
	s := ui.DefaultStyles()

	badge := s.IdleBadge.Render("idle")
	if d.SelectedDomain != nil {
		badge = s.Badge.Render(*d.SelectedDomain)
	}
	line := badge
	if d.Switched {
		line += " " + s.Success.Render("⇄ switched")
	}
	fmt.Println(line)

	conf := s.Confidence(d.Confidence).Render(fmt.Sprintf("%.2f", d.Confidence))
	fmt.Printf("  %s %s\n", s.Key.Render("confidence"), conf)
	fmt.Printf("  %s %s\n", s.Key.Render("reason"), d.Reason)
	fmt.Printf("  %s %s\n", s.Key.Render("session"), s.Muted.Render(d.SessionKey))
}
