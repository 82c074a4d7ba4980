package controlpack

import (
	"time"
)

// AssignmentStatus represents the lifecycle state of a control pack assignment.
type AssignmentStatus string

const (
	StatusActive    AssignmentStatus = "active"
	StatusRevoked   AssignmentStatus = "revoked"
	StatusSuspended AssignmentStatus = "suspended"
)

// Recognized returns true if the status is one of the known lifecycle states.
func (s AssignmentStatus) Recognized() bool {
	switch s {
	case StatusActive, StatusRevoked, StatusSuspended:
		return true
	}
	return false
}

// ControlPackAssignment is the GORM model for one application of a control
// pack to an issue. The partial unique index on (issue_id, control_pack_id)
// guarantees at most one active assignment per pair; the duplicate-key error
// it raises is the conflict signal for concurrent assigns.
type ControlPackAssignment struct {
	ID               string           `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	IssueID          string           `gorm:"column:issue_id;index:idx_cpa_issue;uniqueIndex:uidx_cpa_active_pair,priority:1,where:status = 'active';not null" json:"issueId"`
	ControlPackID    string           `gorm:"column:control_pack_id;uniqueIndex:uidx_cpa_active_pair,priority:2;not null" json:"controlPackId"`
	ControlPackName  string           `gorm:"column:control_pack_name;not null" json:"controlPackName"`
	AssignedBy       string           `gorm:"column:assigned_by;not null;default:system" json:"assignedBy"`
	AssignmentReason string           `gorm:"column:assignment_reason" json:"assignmentReason,omitempty"`
	Status           AssignmentStatus `gorm:"column:status;index:idx_cpa_status;not null;default:active" json:"status"`
	CreatedAt        time.Time        `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;not null" json:"updatedAt"`
}

// TableName returns the GORM table name.
func (ControlPackAssignment) TableName() string { return "control_pack_assignments" }
