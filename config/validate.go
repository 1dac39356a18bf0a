package config

import "strings"

// maxFeeRateBps caps the protocol fee at the full pool.
const maxFeeRateBps = 10000

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}
	if _, ok := logLevels[strings.ToLower(cfg.LogLevel)]; !ok {
		return ErrInvalidLogLevel
	}
	if cfg.FeeRateBps > maxFeeRateBps {
		return ErrInvalidFeeRate
	}
	return nil
}
