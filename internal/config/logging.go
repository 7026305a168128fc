package config

// LoggingConfig configures logging. Decision output owns stdout, so logs go
// to stderr and optionally to dated files under <state-dir>/logs/.
type LoggingConfig struct {
	Level    string `yaml:"level"`     // debug, info, warn, error
	Format   string `yaml:"format"`    // console, json
	ToStderr bool   `yaml:"to_stderr"` // mirror records to stderr
	ToFile   bool   `yaml:"to_file"`   // write dated files under the state dir
}
