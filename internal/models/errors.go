package models

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned for missing sessions and for sessions whose
// last activity is past the TTL.
var ErrSessionNotFound = errors.New("session not found")

// ValidationError is a user-correctable document rejection. The reason is
// safe to show verbatim in chat.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a document validation failure as
// opposed to an internal or collaborator fault.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// CollaboratorError marks a transient failure talking to an external
// collaborator (messaging, extraction, reasoning). The core does not retry
// these; they surface as a failure message to the user.
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s collaborator failed: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

func NewCollaboratorError(collaborator string, err error) *CollaboratorError {
	return &CollaboratorError{Collaborator: collaborator, Err: err}
}
