// Package ledger provides read-only inspection of the schema_migrations
// ledger table. The table is owned by the migration tooling; this package
// never writes to it.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"
)

const (
	ledgerTable = "schema_migrations"

	// DefaultListLimit caps ListApplied when the caller passes no limit.
	DefaultListLimit = 500
)

// LedgerStore provides read-only reporting against the migration ledger.
// The filename-column probe runs once and is cached for the store's
// lifetime, so a store must not outlive a schema change to the ledger table.
type LedgerStore struct {
	db     *gorm.DB
	cfg    *Config
	logger *slog.Logger

	probeOnce sync.Once
	nameCol   string
	probeErr  error
}

// NewLedgerStore creates a new LedgerStore. A nil cfg falls back to
// DefaultConfig and a nil logger to slog.Default.
func NewLedgerStore(db *gorm.DB, cfg *Config, logger *slog.Logger) *LedgerStore {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerStore{db: db, cfg: cfg, logger: logger}
}

// Ping probes database liveness and reports the configured connection
// identity. It never returns a Go error; failures are carried in the report.
func (s *LedgerStore) Ping(ctx context.Context) ReachabilityReport {
	report := ReachabilityReport{
		Host:     s.cfg.Host,
		Port:     s.cfg.Port,
		Database: s.cfg.Database,
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		s.logger.Error("database reachability probe failed", "op", "ping", "error", err)
		report.Error = err.Error()
		return report
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		s.logger.Error("database reachability probe failed", "op", "ping", "error", err)
		report.Error = err.Error()
		return report
	}

	report.Reachable = true
	return report
}

// TableExists reports whether the ledger table is present. It returns false
// both when the table is absent and when the check itself fails; callers
// that need the distinction must query the database directly.
func (s *LedgerStore) TableExists(ctx context.Context) bool {
	return s.db.WithContext(ctx).Migrator().HasTable(ledgerTable)
}

// filenameColumn resolves the ledger's name column, preferring the current
// "filename" column over the legacy "migration_id" one. The result is cached.
func (s *LedgerStore) filenameColumn(ctx context.Context) (string, error) {
	s.probeOnce.Do(func() {
		m := s.db.WithContext(ctx).Migrator()
		switch {
		case m.HasColumn(ledgerTable, "filename"):
			s.nameCol = "filename"
		case m.HasColumn(ledgerTable, "migration_id"):
			s.nameCol = "migration_id"
		default:
			s.probeErr = fmt.Errorf("table %s has neither a filename nor a migration_id column", ledgerTable)
		}
	})
	return s.nameCol, s.probeErr
}

// ListApplied returns up to limit ledger entries ordered ascending by
// filename. A limit <= 0 means DefaultListLimit. Missing hashes normalize
// to ""; null applied timestamps stay nil.
func (s *LedgerStore) ListApplied(ctx context.Context, limit int) ([]AppliedMigration, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	col, err := s.filenameColumn(ctx)
	if err != nil {
		s.logger.Error("list applied migrations failed", "op", "list_applied", "error", err)
		return nil, err
	}

	var rows []AppliedMigration
	query := fmt.Sprintf(
		"SELECT %s AS filename, COALESCE(sha256, '') AS sha256, applied_at FROM %s ORDER BY %s ASC LIMIT ?",
		col, ledgerTable, col)
	if err := s.db.WithContext(ctx).Raw(query, limit).Scan(&rows).Error; err != nil {
		s.logger.Error("list applied migrations failed", "op", "list_applied", "error", err)
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	return rows, nil
}

// LastApplied returns the most recently applied migration, breaking ties on
// filename descending and sorting null timestamps last. It returns (nil, nil)
// on an empty ledger.
func (s *LedgerStore) LastApplied(ctx context.Context) (*AppliedMigration, error) {
	col, err := s.filenameColumn(ctx)
	if err != nil {
		s.logger.Error("get last applied migration failed", "op", "last_applied", "error", err)
		return nil, err
	}

	var rows []AppliedMigration
	// (applied_at IS NULL) ASC is the portable spelling of NULLS LAST.
	query := fmt.Sprintf(
		"SELECT %s AS filename, COALESCE(sha256, '') AS sha256, applied_at FROM %s "+
			"ORDER BY (applied_at IS NULL) ASC, applied_at DESC, %s DESC LIMIT 1",
		col, ledgerTable, col)
	if err := s.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		s.logger.Error("get last applied migration failed", "op", "last_applied", "error", err)
		return nil, fmt.Errorf("get last applied migration: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// AppliedCount returns the number of ledger entries.
func (s *LedgerStore) AppliedCount(ctx context.Context) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", ledgerTable)
	if err := s.db.WithContext(ctx).Raw(query).Scan(&count).Error; err != nil {
		s.logger.Error("count applied migrations failed", "op", "applied_count", "error", err)
		return 0, fmt.Errorf("count applied migrations: %w", err)
	}
	return count, nil
}
