package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/afu9/controlplane/pkg/controlpack"
	"github.com/afu9/controlplane/pkg/ledger"
)

var outputFmt string

var rootCmd = &cobra.Command{
	Use:   "cpctl",
	Short: "CLI for the control-plane database",
	Long: `cpctl manages control pack assignments attached to issues and inspects
the schema-migration ledger.

It connects directly to the control-plane database. Connection settings come
from AFU9_DB_HOST, AFU9_DB_PORT, AFU9_DB_NAME, AFU9_DB_USER, AFU9_DB_PASSWORD
and AFU9_DB_SSLMODE.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")

	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(assignDefaultCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(revokeCmd)
	rootCmd.AddCommand(setStatusCmd)
	rootCmd.AddCommand(migrationsCmd)
	rootCmd.AddCommand(healthCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// openDatabase dials postgres using the AFU9_DB_* environment.
// TranslateError lets the stores map duplicate-key violations to conflicts.
func openDatabase() (*gorm.DB, error) {
	cfg := ledger.ConfigFromEnv()
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port,
		envOr("AFU9_DB_USER", "postgres"), os.Getenv("AFU9_DB_PASSWORD"),
		cfg.Database, envOr("AFU9_DB_SSLMODE", "disable"))

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s:%s/%s: %w", cfg.Host, cfg.Port, cfg.Database, err)
	}
	return db, nil
}

func newAssignmentStore() (*controlpack.AssignmentStore, error) {
	db, err := openDatabase()
	if err != nil {
		return nil, err
	}
	return controlpack.NewAssignmentStore(db, controlpack.ConfigFromEnv(), slog.Default()), nil
}

func newLedgerStore() (*ledger.LedgerStore, error) {
	db, err := openDatabase()
	if err != nil {
		return nil, err
	}
	return ledger.NewLedgerStore(db, ledger.ConfigFromEnv(), slog.Default()), nil
}
