package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all switchboard configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// StateDir is resolved at startup (flag > env > default) and never
	// persisted; config.yaml lives inside it.
	StateDir string `yaml:"-"`

	// Decision engine thresholds
	Routing RoutingConfig `yaml:"routing"`

	// Session identity and persistence
	Session SessionConfig `yaml:"session"`

	// Profile catalog
	Registry RegistryConfig `yaml:"registry"`

	// Decision archive
	Journal JournalConfig `yaml:"journal"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "switchboard",
		Version: "1.1.0",

		Routing: RoutingConfig{
			ActivationThreshold: 0.70,
			SwitchDelta:         0.09,
			HighConfidence:      0.70,
			ComplexityBoost:     0.05,
			SaturationDepth:     4,
			PersistBudget:       "150ms",
		},

		Session: SessionConfig{
			TTL:             "24h",
			AnchorProcesses: DefaultAnchorProcesses(),
			MaxAncestryHops: 64,
		},

		Registry: RegistryConfig{},

		Journal: JournalConfig{
			Enabled: true,
		},

		Logging: LoggingConfig{
			Level:    "warn",
			Format:   "console",
			ToStderr: true,
		},
	}
}

// DefaultStateDir returns the state directory used when neither the flag nor
// the environment names one. Sessions are keyed by process ancestry, not by
// working directory, so state lives under the user's home.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".switchboard"
	}
	return filepath.Join(home, ".switchboard")
}

// ResolveStateDir applies the flag > env > default precedence.
func ResolveStateDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if dir := os.Getenv("SWITCHBOARD_STATE_DIR"); dir != "" {
		return dir
	}
	return DefaultStateDir()
}

// Load loads configuration from <stateDir>/config.yaml. A missing file is not
// an error; defaults apply. Environment overrides are applied last.
func Load(stateDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.StateDir = stateDir

	data, err := os.ReadFile(filepath.Join(stateDir, "config.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to <stateDir>/config.yaml.
func (c *Config) Save() error {
	if c.StateDir == "" {
		return fmt.Errorf("state directory not resolved")
	}
	if err := os.MkdirAll(c.StateDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(c.StateDir, "config.yaml"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides. Invalid numeric
// values are ignored rather than fatal; the tool must keep routing.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SWITCHBOARD_ACTIVATION_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Routing.ActivationThreshold = f
		}
	}
	if v := os.Getenv("SWITCHBOARD_SWITCH_DELTA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Routing.SwitchDelta = f
		}
	}
	if v := os.Getenv("SWITCHBOARD_HIGH_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Routing.HighConfidence = f
		}
	}
	if v := os.Getenv("SWITCHBOARD_SESSION_TTL"); v != "" {
		c.Session.TTL = v
	}
	if v := os.Getenv("SWITCHBOARD_SESSION_KEY"); v != "" {
		c.Session.ExplicitKey = v
	}
	if v := os.Getenv("SWITCHBOARD_PROFILE_DIR"); v != "" {
		c.Registry.ProfileDirs = append(c.Registry.ProfileDirs, v)
	}
	if v := os.Getenv("SWITCHBOARD_JOURNAL_PATH"); v != "" {
		c.Journal.Path = v
	}
	if v := os.Getenv("SWITCHBOARD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// SessionsDir returns the directory holding per-session state files.
func (c *Config) SessionsDir() string {
	return filepath.Join(c.StateDir, "sessions")
}

// JournalPath returns the decision archive path, defaulting into the state dir.
func (c *Config) JournalPath() string {
	if c.Journal.Path != "" {
		return c.Journal.Path
	}
	return filepath.Join(c.StateDir, "journal.db")
}

// ProfileDirs returns the catalog directories, defaulting into the state dir.
func (c *Config) ProfileDirs() []string {
	if len(c.Registry.ProfileDirs) > 0 {
		return c.Registry.ProfileDirs
	}
	return []string{filepath.Join(c.StateDir, "profiles")}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Routing.validate(); err != nil {
		return err
	}
	if err := c.Session.validate(); err != nil {
		return err
	}
	return nil
}
