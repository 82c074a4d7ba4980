package controlpack

import (
	"fmt"
	"strings"

	"github.com/afu9/controlplane/pkg/storeerr"
)

// AssignmentInput carries the caller-supplied fields for a new assignment.
// AssignedBy and Status are optional; the store fills in "system" and
// StatusActive when they are blank.
type AssignmentInput struct {
	IssueID    string
	PackID     string
	PackName   string
	AssignedBy string
	Reason     string
	Status     AssignmentStatus
}

// Validator checks an AssignmentInput before it reaches the database.
// Validation failures must wrap storeerr.ErrInvalidInput.
type Validator func(AssignmentInput) error

// ValidateInput is the default Validator: issue, pack ID and pack name are
// required; an explicit status must be one of the recognized values.
func ValidateInput(in AssignmentInput) error {
	if strings.TrimSpace(in.IssueID) == "" {
		return fmt.Errorf("%w: issue id is required", storeerr.ErrInvalidInput)
	}
	if strings.TrimSpace(in.PackID) == "" {
		return fmt.Errorf("%w: control pack id is required", storeerr.ErrInvalidInput)
	}
	if strings.TrimSpace(in.PackName) == "" {
		return fmt.Errorf("%w: control pack name is required", storeerr.ErrInvalidInput)
	}
	if in.Status != "" && !in.Status.Recognized() {
		return fmt.Errorf("%w: unrecognized status %q", storeerr.ErrInvalidInput, in.Status)
	}
	return nil
}
