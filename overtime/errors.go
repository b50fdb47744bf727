/*
errors.go - Error taxonomy for the overtime board

ERROR CATEGORIES:
  1. Validation   - malformed/missing input, out-of-range month or quarter
  2. Roster       - login not present in the roster (strict mode only)
  3. Uniqueness   - entry already exists for (login, date)

Deleting a row that does not exist is NOT an error anywhere in this package.

USAGE:

	if errors.Is(err, overtime.ErrDuplicateEntry) {
	    // 409
	}

SEE ALSO:
  - api/errors.go: maps these errors to HTTP status codes
*/
package overtime

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidArgument is returned for enum values outside their range
	// (quarter not in 1..4, month not in 1..12).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownEmployee is returned when a login is not in the roster.
	ErrUnknownEmployee = errors.New("unknown employee")

	// ErrDuplicateEntry is returned when (login, work date) already has an entry.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field   string
	Message string
	Err     error // optional cause, e.g. ErrInvalidArgument
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Invalid builds a ValidationError for field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// OutOfRange builds a ValidationError wrapping ErrInvalidArgument.
func OutOfRange(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: ErrInvalidArgument}
}

// UnknownEmployeeError names the login that failed the roster check.
type UnknownEmployeeError struct {
	Login string
}

func (e *UnknownEmployeeError) Error() string {
	return fmt.Sprintf("unknown login %q", e.Login)
}

func (e *UnknownEmployeeError) Unwrap() error {
	return ErrUnknownEmployee
}

// DuplicateEntryError carries the conflicting key.
type DuplicateEntryError struct {
	Login    string
	WorkDate time.Time
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("login %s is already scheduled on %s", e.Login, e.WorkDate.Format(DateLayout))
}

func (e *DuplicateEntryError) Unwrap() error {
	return ErrDuplicateEntry
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrUnknownEmployee) ||
		errors.Is(err, ErrDuplicateEntry)
}
