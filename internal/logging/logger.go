// Package logging provides categorized logging for switchboard, backed by zap.
// Log files are written to <state-dir>/logs/ with one dated file per run day.
// Decision output is reserved for stdout, so every diagnostic message in the
// tree goes through this package and lands on stderr and/or the log file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup, config resolution
	CategoryRouting  Category = "routing"  // Decision engine activity
	CategoryClassify Category = "classify" // Classifier and scorer
	CategoryRegistry Category = "registry" // Profile catalog loading
	CategorySession  Category = "session"  // Identity resolution, state lifecycle
	CategoryStore    Category = "store"    // State file reads/writes
	CategoryJournal  Category = "journal"  // SQLite decision archive
	CategoryMonitor  Category = "monitor"  // Live session monitor
	CategoryPerf     Category = "perf"     // Timing, budget overruns
)

// Options controls logger construction. Zero value means stderr-only at warn
// level, which is the safe default for a tool whose stdout is machine-read.
type Options struct {
	Level    string // debug, info, warn, error (default warn)
	Format   string // console or json (default console)
	ToStderr bool   // mirror records to stderr
	ToFile   bool   // write records under <state-dir>/logs/
}

var (
	mu      sync.RWMutex
	root    *zap.Logger
	sugared = make(map[Category]*zap.SugaredLogger)
	level   = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	logFile *os.File
)

// Initialize builds the shared zap core. stateDir is the switchboard state
// directory; the logs subdirectory is created on demand. Safe to call once at
// startup; before it runs every Get returns a no-op logger, so library-style
// use (and tests) need no setup.
func Initialize(stateDir string, opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	level.SetLevel(parseLevel(opts.Level))

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var enc zapcore.Encoder
	if opts.Format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	var cores []zapcore.Core
	if opts.ToStderr {
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level))
	}
	if opts.ToFile && stateDir != "" {
		logsDir := filepath.Join(stateDir, "logs")
		if err := os.MkdirAll(logsDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "[logging] could not create %s: %v\n", logsDir, err)
		} else {
			name := fmt.Sprintf("switchboard_%s.log", time.Now().Format("2006-01-02"))
			f, err := os.OpenFile(filepath.Join(logsDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				fmt.Fprintf(os.Stderr, "[logging] could not open log file: %v\n", err)
			} else {
				logFile = f
				cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(f), level))
			}
		}
	}
	if len(cores) == 0 {
		root = zap.NewNop()
		sugared = make(map[Category]*zap.SugaredLogger)
		return nil
	}

	root = zap.New(zapcore.NewTee(cores...))
	sugared = make(map[Category]*zap.SugaredLogger)
	return nil
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// SetLevel adjusts the shared level at runtime (used by --verbose).
func SetLevel(s string) {
	level.SetLevel(parseLevel(s))
}

// Get returns (or creates) the sugared logger for a category. Before
// Initialize it returns a no-op logger, never nil.
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	if l, ok := sugared[category]; ok {
		mu.RUnlock()
		return l
	}
	r := root
	mu.RUnlock()

	if r == nil {
		return zap.NewNop().Sugar()
	}

	mu.Lock()
	defer mu.Unlock()
	if l, ok := sugared[category]; ok {
		return l
	}
	if root == nil {
		return zap.NewNop().Sugar()
	}
	l := root.Named(string(category)).Sugar()
	sugared[category] = l
	return l
}

// CloseAll flushes and closes the underlying sinks. Sync errors on stderr are
// expected on some platforms and ignored.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	if root != nil {
		_ = root.Sync()
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	root = nil
	sugared = make(map[Category]*zap.SugaredLogger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - quick logging without getting a logger first
// =============================================================================

// Boot logs to the boot category.
func Boot(format string, args ...interface{}) { Get(CategoryBoot).Infof(format, args...) }

// BootWarn logs a warning to the boot category.
func BootWarn(format string, args ...interface{}) { Get(CategoryBoot).Warnf(format, args...) }

// Routing logs to the routing category.
func Routing(format string, args ...interface{}) { Get(CategoryRouting).Infof(format, args...) }

// RoutingDebug logs debug to the routing category.
func RoutingDebug(format string, args ...interface{}) { Get(CategoryRouting).Debugf(format, args...) }

// RoutingWarn logs a warning to the routing category.
func RoutingWarn(format string, args ...interface{}) { Get(CategoryRouting).Warnf(format, args...) }

// Classify logs to the classify category.
func Classify(format string, args ...interface{}) { Get(CategoryClassify).Infof(format, args...) }

// ClassifyDebug logs debug to the classify category.
func ClassifyDebug(format string, args ...interface{}) {
	Get(CategoryClassify).Debugf(format, args...)
}

// Registry logs to the registry category.
func Registry(format string, args ...interface{}) { Get(CategoryRegistry).Infof(format, args...) }

// RegistryWarn logs a warning to the registry category.
func RegistryWarn(format string, args ...interface{}) { Get(CategoryRegistry).Warnf(format, args...) }

// Session logs to the session category.
func Session(format string, args ...interface{}) { Get(CategorySession).Infof(format, args...) }

// SessionDebug logs debug to the session category.
func SessionDebug(format string, args ...interface{}) { Get(CategorySession).Debugf(format, args...) }

// SessionWarn logs a warning to the session category.
func SessionWarn(format string, args ...interface{}) { Get(CategorySession).Warnf(format, args...) }

// Store logs to the store category.
func Store(format string, args ...interface{}) { Get(CategoryStore).Infof(format, args...) }

// StoreDebug logs debug to the store category.
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debugf(format, args...) }

// StoreWarn logs a warning to the store category.
func StoreWarn(format string, args ...interface{}) { Get(CategoryStore).Warnf(format, args...) }

// StoreError logs an error to the store category.
func StoreError(format string, args ...interface{}) { Get(CategoryStore).Errorf(format, args...) }

// Journal logs to the journal category.
func Journal(format string, args ...interface{}) { Get(CategoryJournal).Infof(format, args...) }

// JournalDebug logs debug to the journal category.
func JournalDebug(format string, args ...interface{}) { Get(CategoryJournal).Debugf(format, args...) }

// JournalWarn logs a warning to the journal category.
func JournalWarn(format string, args ...interface{}) { Get(CategoryJournal).Warnf(format, args...) }

// Monitor logs to the monitor category.
func Monitor(format string, args ...interface{}) { Get(CategoryMonitor).Infof(format, args...) }

// MonitorWarn logs a warning to the monitor category.
func MonitorWarn(format string, args ...interface{}) { Get(CategoryMonitor).Warnf(format, args...) }

// =============================================================================
// TIMING HELPERS - for performance logging
// =============================================================================

// Timer helps measure operation duration.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debugf("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning through the perf category when the
// duration exceeds the threshold, debug otherwise.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(CategoryPerf).Warnf("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debugf("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
