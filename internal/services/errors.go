package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// ValidationError reports caller-supplied data that violates a field
// constraint. The operation is rejected before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// ConflictError reports a unique-constraint violation at persistence time,
// typically a generated identifier losing a race or a duplicate transaction
// reference. It is retryable: the caller re-runs the operation under a
// fresh read; the service never regenerates and retries on its own.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: duplicate value", e.Field)
}

// ReferentialError reports a missing foreign-key reference or a RESTRICT
// rule blocking a delete. Never auto-cascaded.
type ReferentialError struct {
	Entity  string
	Message string
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("referential integrity on %s: %s", e.Entity, e.Message)
}

// InvariantViolation reports an internal consistency failure, e.g. a
// receipt bound to neither target or a PAID payment without a receipt
// number. A defect, not a recoverable condition.
type InvariantViolation struct {
	Message string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Message
}

// translateDBError maps GORM's translated driver errors onto the service
// error taxonomy. field names the unique surface for conflicts; entity
// names the relation for referential failures.
func translateDBError(err error, field, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &ConflictError{Field: field}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &ReferentialError{Entity: entity, Message: "reference violates a foreign key constraint"}
	}
	return err
}
