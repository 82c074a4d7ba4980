// Package controlpack provides the data-access store for control pack
// assignments attached to issues. The store operates on an externally
// supplied gorm connection pool and never opens or closes it.
package controlpack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/afu9/controlplane/pkg/storeerr"
)

// AssignmentStore provides CRUD operations for control pack assignments.
type AssignmentStore struct {
	db       *gorm.DB
	cfg      *Config
	validate Validator
	logger   *slog.Logger
}

// AssignmentStoreOption configures an AssignmentStore.
type AssignmentStoreOption func(*AssignmentStore)

// WithValidator replaces the default input validator.
func WithValidator(v Validator) AssignmentStoreOption {
	return func(s *AssignmentStore) {
		s.validate = v
	}
}

// NewAssignmentStore creates a new AssignmentStore. A nil cfg falls back to
// DefaultConfig and a nil logger to slog.Default.
func NewAssignmentStore(db *gorm.DB, cfg *Config, logger *slog.Logger, opts ...AssignmentStoreOption) *AssignmentStore {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &AssignmentStore{
		db:       db,
		cfg:      cfg,
		validate: ValidateInput,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AutoMigrate creates or updates the control_pack_assignments table,
// including the active-pair unique index.
func (s *AssignmentStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&ControlPackAssignment{}); err != nil {
		return fmt.Errorf("auto-migrate control_pack_assignments: %w", err)
	}
	return nil
}

// Assign validates the input and creates a new assignment. The insert is a
// single atomic statement; a duplicate-key error from the active-pair index
// is reported as storeerr.ErrConflict. AssignedBy defaults to "system" and
// Status to StatusActive when omitted.
func (s *AssignmentStore) Assign(ctx context.Context, in AssignmentInput) (*ControlPackAssignment, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	assignedBy := strings.TrimSpace(in.AssignedBy)
	if assignedBy == "" {
		assignedBy = "system"
	}
	status := in.Status
	if status == "" {
		status = StatusActive
	}

	now := time.Now().UTC()
	row := &ControlPackAssignment{
		ID:               uuid.New().String(),
		IssueID:          in.IssueID,
		ControlPackID:    in.PackID,
		ControlPackName:  in.PackName,
		AssignedBy:       assignedBy,
		AssignmentReason: in.Reason,
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: issue %s already has an active assignment for control pack %s",
				storeerr.ErrConflict, in.IssueID, in.PackID)
		}
		s.logger.Error("create assignment failed",
			"op", "assign", "issue_id", in.IssueID, "control_pack_id", in.PackID, "error", err)
		return nil, fmt.Errorf("assign control pack: %w", err)
	}
	return row, nil
}

// AssignDefault attaches the configured well-known control pack to an issue.
// An empty assignedBy records "system".
func (s *AssignmentStore) AssignDefault(ctx context.Context, issueID, assignedBy string) (*ControlPackAssignment, error) {
	return s.Assign(ctx, AssignmentInput{
		IssueID:    issueID,
		PackID:     s.cfg.DefaultPackID,
		PackName:   s.cfg.DefaultPackName,
		AssignedBy: assignedBy,
		Reason:     s.cfg.DefaultReason,
	})
}

// ListActive returns the issue's active assignments, newest first.
func (s *AssignmentStore) ListActive(ctx context.Context, issueID string) ([]ControlPackAssignment, error) {
	var rows []ControlPackAssignment
	err := s.db.WithContext(ctx).
		Where("issue_id = ? AND status = ?", issueID, StatusActive).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		s.logger.Error("list active assignments failed",
			"op", "list_active", "issue_id", issueID, "error", err)
		return nil, fmt.Errorf("list active assignments: %w", err)
	}
	return rows, nil
}

// ListAll returns all of the issue's assignments regardless of status,
// newest first.
func (s *AssignmentStore) ListAll(ctx context.Context, issueID string) ([]ControlPackAssignment, error) {
	var rows []ControlPackAssignment
	err := s.db.WithContext(ctx).
		Where("issue_id = ?", issueID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		s.logger.Error("list assignments failed",
			"op", "list_all", "issue_id", issueID, "error", err)
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return rows, nil
}

// Revoke transitions an assignment to StatusRevoked.
func (s *AssignmentStore) Revoke(ctx context.Context, assignmentID string) error {
	return s.UpdateStatus(ctx, assignmentID, StatusRevoked)
}

// UpdateStatus sets an assignment's status and refreshes its update
// timestamp. Unrecognized statuses are rejected. Re-activating a pair that
// already has an active assignment trips the active-pair index and is
// reported as storeerr.ErrConflict.
func (s *AssignmentStore) UpdateStatus(ctx context.Context, assignmentID string, status AssignmentStatus) error {
	if !status.Recognized() {
		return fmt.Errorf("%w: unrecognized status %q", storeerr.ErrInvalidInput, status)
	}

	res := s.db.WithContext(ctx).
		Model(&ControlPackAssignment{}).
		Where("id = ?", assignmentID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return fmt.Errorf("%w: another active assignment exists for this control pack",
				storeerr.ErrConflict)
		}
		s.logger.Error("update assignment status failed",
			"op", "update_status", "assignment_id", assignmentID, "status", string(status), "error", res.Error)
		return fmt.Errorf("update assignment status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: assignment %s", storeerr.ErrNotFound, assignmentID)
	}
	return nil
}

// isDuplicateKey reports whether err is a unique-constraint violation.
// SQLite surfaces raw constraint errors when the dialector has no error
// translator configured, so the message check backs up gorm's sentinel.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
