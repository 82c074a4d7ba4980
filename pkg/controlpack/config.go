package controlpack

import (
	"os"
)

// DefaultAssignmentReason is recorded when the well-known default pack is
// attached during issue creation.
const DefaultAssignmentReason = "Default CP assignment on issue creation"

// Config identifies the well-known control pack applied to new issues.
type Config struct {
	DefaultPackID   string
	DefaultPackName string
	DefaultReason   string
}

// DefaultConfig returns the default control pack configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultPackID:   "cp-default",
		DefaultPackName: "Default Control Pack",
		DefaultReason:   DefaultAssignmentReason,
	}
}

// ConfigFromEnv loads config from environment variables.
// CONTROLPACK_DEFAULT_ID, CONTROLPACK_DEFAULT_NAME
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("CONTROLPACK_DEFAULT_ID"); v != "" {
		cfg.DefaultPackID = v
	}

	if v := os.Getenv("CONTROLPACK_DEFAULT_NAME"); v != "" {
		cfg.DefaultPackName = v
	}

	return cfg
}
