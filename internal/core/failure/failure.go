// Package failure defines the error taxonomy shared by the order engine.
// Every failure returned by a command wraps exactly one of the sentinel kinds
// below so callers can classify it with errors.Is.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates a referenced hotel, department, location, item,
	// user, order or spare part does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidationFailed indicates malformed or out-of-range input.
	ErrValidationFailed = errors.New("validation failed")
	// ErrInvalidStateTransition indicates a disallowed status edge.
	ErrInvalidStateTransition = errors.New("invalid state transition")
	// ErrPermissionDenied indicates the actor may not perform the command.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrAlreadyTerminal indicates the command was already applied or the
	// order can no longer take it (double cancel, double completion).
	ErrAlreadyTerminal = errors.New("already terminal")
	// ErrConcurrencyConflict indicates a version mismatch or order-number
	// collision; the command may be retried.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	// ErrInfrastructure indicates persistence was unavailable or failed.
	ErrInfrastructure = errors.New("infrastructure failure")
)

var kinds = []error{
	ErrNotFound,
	ErrValidationFailed,
	ErrInvalidStateTransition,
	ErrPermissionDenied,
	ErrAlreadyTerminal,
	ErrConcurrencyConflict,
	ErrInfrastructure,
}

// Violation is a single field-level validation problem.
type Violation struct {
	Field   string
	Message string
}

func (v Violation) String() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + ": " + v.Message
}

// ValidationError aggregates the violations found for one command.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match ErrValidationFailed.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// Validation returns a *ValidationError for the given violations, or nil when
// there are none.
func Validation(violations ...Violation) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

// NotFound builds an ErrNotFound failure for an entity.
func NotFound(entity string, id any) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, entity, id)
}

// Conflict builds an ErrConcurrencyConflict failure.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConcurrencyConflict, fmt.Sprintf(format, args...))
}

// Infrastructure wraps a driver or I/O error. Domain failures pass through
// unchanged so adapters can call this on every error path.
func Infrastructure(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != nil {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrInfrastructure, op, err)
}

// KindOf returns the sentinel kind wrapped by err, or nil if err carries none.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// IsDomain reports whether err is a domain-rule rejection rather than an
// infrastructure fault.
func IsDomain(err error) bool {
	k := KindOf(err)
	return k != nil && k != ErrInfrastructure
}
