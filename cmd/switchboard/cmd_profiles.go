// Package main implements profile catalog inspection commands.
package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"switchboard/internal/registry"
)

// profilesCmd inspects the profile catalog
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Inspect the profile catalog",
	Long: `List and inspect the domain profiles the classifier scores against.

Subcommands:
  list - List all profiles with signal counts
  show - Show one profile's signals in detail`,
	RunE: runProfilesList,
}

// profilesListCmd lists the loaded profiles
var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE:  runProfilesList,
}

// profilesShowCmd shows one profile in detail
var profilesShowCmd = &cobra.Command{
	Use:   "show <profile-id>",
	Short: "Show one profile's signals",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesShow,
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	if reg.Len() == 0 {
		fmt.Println("Profile catalog is empty.")
		return nil
	}

	depth := cfg.Routing.SaturationDepth

	fmt.Printf("🗂  Profile Catalog (%s)\n", reg.Source())
	fmt.Println(strings.Repeat("─", 72))
	for _, p := range reg.All() {
		categories := make(map[string]struct{})
		for _, sig := range p.Signals {
			categories[sig.Category] = struct{}{}
		}
		fmt.Printf("  %-16s %-34s %2d signals  %d categories  mass %.1f\n",
			p.ID, truncate(p.Title, 34), len(p.Signals), len(categories), p.SaturationMass(depth))
	}
	fmt.Println(strings.Repeat("─", 72))
	fmt.Printf("Total: %d profiles\n", reg.Len())
	fmt.Println("\nUse: switchboard profiles show <profile-id>")
	return nil
}

func runProfilesShow(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	p, ok := reg.Get(args[0])
	if !ok {
		return fmt.Errorf("profile '%s' not found. Use 'switchboard profiles list' to see the catalog", args[0])
	}

	md := profileMarkdown(p, cfg.Routing.SaturationDepth)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		fmt.Println(md)
		return nil
	}
	out, err := renderer.Render(md)
	if err != nil {
		fmt.Println(md)
		return nil
	}
	fmt.Print(out)
	return nil
}

// profileMarkdown renders a profile as a markdown document for the terminal
// renderer.
func profileMarkdown(p *registry.Profile, depth int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s (`%s`)\n\n", p.Title, p.ID)
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Description)
	}

	fmt.Fprintf(&b, "## Signals\n\n")
	fmt.Fprintf(&b, "| Category | Pattern | Weight | Kind |\n")
	fmt.Fprintf(&b, "|----------|---------|--------|------|\n")
	for _, sig := range p.Signals {
		kind := "keyword"
		if sig.Regex {
			kind = "regex"
		}
		fmt.Fprintf(&b, "| %s | `%s` | %.1f | %s |\n", sig.Category, sig.Pattern, sig.Weight, kind)
	}

	fmt.Fprintf(&b, "\nSaturation mass at depth %d: **%.1f** (matching this much weight scores full confidence).\n", depth, p.SaturationMass(depth))
	return b.String()
}

// truncate shortens s to max runes, ellipsizing when needed.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}

func init() {
	profilesCmd.AddCommand(profilesListCmd, profilesShowCmd)
	rootCmd.AddCommand(profilesCmd)
}
