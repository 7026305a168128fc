package config

// RegistryConfig configures the profile catalog.
type RegistryConfig struct {
	// Directories scanned for profile YAML files. Empty means
	// <state-dir>/profiles.
	ProfileDirs []string `yaml:"profile_dirs"`

	// DisableBuiltins turns off the compiled-in default catalog, leaving
	// only on-disk profiles. With no on-disk profiles either, the catalog
	// is empty and every request resolves to no candidates.
	DisableBuiltins bool `yaml:"disable_builtins"`
}
