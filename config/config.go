// Package config holds engine-level configuration for embedders of the
// launch engine: where state lives, where the audit trail goes, and how
// chatty the logs are. Sale parameters live with each sale, not here.
package config

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/openlaunch/liblaunch-go/sale"
)

// Config is the engine configuration.
type Config struct {
	// DataDir is the directory for the snapshot database.
	DataDir string

	// AuditTrail is the JSONL audit trail path. Empty disables auditing.
	AuditTrail string

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string

	// FeeRateBps is the protocol fee in basis points, at most 10000.
	FeeRateBps uint64
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		DataDir:    "launchdata",
		LogLevel:   "info",
		FeeRateBps: sale.FeeRateBps,
	}
}

// logLevels maps accepted log level strings to zerolog levels.
var logLevels = map[string]zerolog.Level{
	"debug": zerolog.DebugLevel,
	"info":  zerolog.InfoLevel,
	"warn":  zerolog.WarnLevel,
	"error": zerolog.ErrorLevel,
}

// Level returns the configured zerolog level. Call ValidateConfig first;
// unknown strings fall back to info.
func (c Config) Level() zerolog.Level {
	if lvl, ok := logLevels[strings.ToLower(c.LogLevel)]; ok {
		return lvl
	}
	return zerolog.InfoLevel
}
