package ledger

import (
	"time"
)

// AppliedMigration is one row of the externally-owned schema_migrations
// ledger. AppliedAt is nil when the stored timestamp is null; no substitute
// value is fabricated on read.
type AppliedMigration struct {
	Filename  string     `gorm:"column:filename" json:"filename"`
	SHA256    string     `gorm:"column:sha256" json:"sha256"`
	AppliedAt *time.Time `gorm:"column:applied_at" json:"appliedAt,omitempty"`
}

// ReachabilityReport describes the outcome of a database liveness probe.
// Host, Port and Database come from process configuration, not from the pool.
type ReachabilityReport struct {
	Reachable bool   `json:"reachable"`
	Host      string `json:"host"`
	Port      string `json:"port"`
	Database  string `json:"database"`
	Error     string `json:"error,omitempty"`
}
