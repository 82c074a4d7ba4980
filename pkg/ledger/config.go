package ledger

import (
	"os"
)

// Config identifies the database this process points at. The store only
// reports these values; connection setup belongs to the caller.
type Config struct {
	Host     string
	Port     string
	Database string
}

// DefaultConfig returns the default database identity.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     "5432",
		Database: "afu9",
	}
}

// ConfigFromEnv loads config from environment variables.
// AFU9_DB_HOST, AFU9_DB_PORT, AFU9_DB_NAME
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("AFU9_DB_HOST"); v != "" {
		cfg.Host = v
	}

	if v := os.Getenv("AFU9_DB_PORT"); v != "" {
		cfg.Port = v
	}

	if v := os.Getenv("AFU9_DB_NAME"); v != "" {
		cfg.Database = v
	}

	return cfg
}
