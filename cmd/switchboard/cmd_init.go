// Package main implements first-run initialization of the state directory.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"switchboard/internal/registry"
)

var (
	initForce         bool
	initWriteProfiles bool
)

// initCmd initializes the switchboard state directory
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the state directory",
	Long: `Creates the state directory layout and writes a default config.yaml.

With --write-profiles the built-in profile catalog is exported as editable
YAML files under <state-dir>/profiles/. Edit or delete them to shape the
catalog; once any profile file exists, the built-ins no longer apply.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
	initCmd.Flags().BoolVar(&initWriteProfiles, "write-profiles", false, "Export the built-in catalog as profile files")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := filepath.Join(stateDir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil && !initForce {
		fmt.Printf("⚠️  %s already exists (use --force to overwrite)\n", configPath)
	} else {
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("✅ Wrote %s\n", configPath)
	}

	if err := os.MkdirAll(cfg.SessionsDir(), 0o700); err != nil {
		return fmt.Errorf("failed to create sessions dir: %w", err)
	}
	fmt.Printf("✅ Created %s\n", cfg.SessionsDir())

	profilesDir := cfg.ProfileDirs()[0]
	if err := os.MkdirAll(profilesDir, 0o755); err != nil {
		return fmt.Errorf("failed to create profiles dir: %w", err)
	}
	fmt.Printf("✅ Created %s\n", profilesDir)

	if initWriteProfiles {
		written := 0
		for i := range registry.DefaultProfileData {
			p := registry.DefaultProfileData[i]
			path := filepath.Join(profilesDir, p.ID+".yaml")
			if _, err := os.Stat(path); err == nil && !initForce {
				continue
			}
			data, err := yaml.Marshal(&p)
			if err != nil {
				return fmt.Errorf("failed to marshal profile %s: %w", p.ID, err)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			written++
		}
		fmt.Printf("✅ Exported %d built-in profiles\n", written)
	}

	fmt.Println("\nswitchboard is ready. Try: switchboard route \"check the firewall rules\"")
	return nil
}
