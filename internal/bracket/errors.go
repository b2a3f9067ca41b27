package bracket

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError reports input the caller can correct: a malformed result,
// an unsupported team count, an illegal status transition.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Msg
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Msg)
}

func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// ConflictError is returned when a write would silently change history, e.g.
// editing a match whose downstream consumer has already started.
type ConflictError struct {
	MatchID uuid.UUID
	Msg     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on match %s: %s", e.MatchID, e.Msg)
}

func NewConflictError(matchID uuid.UUID, format string, args ...any) error {
	return &ConflictError{MatchID: matchID, Msg: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NewNotFoundError(resource string, id any) error {
	return &NotFoundError{Resource: resource, ID: fmt.Sprint(id)}
}

// InvariantViolation means the persisted schedule and the topology have
// diverged. It is never the caller's fault and cannot be retried.
type InvariantViolation struct {
	Msg string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Msg
}

func NewInvariantViolation(format string, args ...any) error {
	return &InvariantViolation{Msg: fmt.Sprintf(format, args...)}
}
