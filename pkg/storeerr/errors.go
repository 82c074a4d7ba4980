// Package storeerr defines the failure kinds shared by the control-plane
// data-access stores. Callers branch on these with errors.Is rather than
// inspecting error strings or success flags.
package storeerr

import "errors"

var (
	// ErrNotFound indicates the referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the operation would violate a uniqueness rule,
	// such as a second active assignment for the same control pack.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates caller-supplied input failed validation
	// before reaching the database.
	ErrInvalidInput = errors.New("invalid input")
)
