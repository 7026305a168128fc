package config

// JournalConfig configures the SQLite decision archive. The journal is an
// audit supplement: it outlives session TTL expiry, and its failures never
// block a decision.
type JournalConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path overrides the default <state-dir>/journal.db.
	Path string `yaml:"path"`
}
