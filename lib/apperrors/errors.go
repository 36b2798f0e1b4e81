package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an operation outcome so handlers can map it to an HTTP
// status without string-matching error messages.
type Kind int

const (
	// KindNotFound means a referenced entity does not exist.
	KindNotFound Kind = iota + 1
	// KindInvalidOperation means the request is well-formed but violates a
	// business rule (move to current location, assign to current parent).
	KindInvalidOperation
	// KindConflict means a deletion was blocked by live or historical
	// dependents, or a concurrent write lost a race.
	KindConflict
	// KindForbidden means the caller lacks the required permission.
	KindForbidden
	// KindStorageFailure means the underlying transaction could not commit.
	KindStorageFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidOperation:
		return "invalid_operation"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindStorageFailure:
		return "storage_failure"
	default:
		return "unknown"
	}
}

// Error is a typed business error. Wrapped causes stay reachable through
// errors.Unwrap.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NotFound reports a missing entity, e.g. NotFound("location", 42).
func NotFound(entity string, id int64) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %d not found", entity, id)}
}

// InvalidOperation reports a business-rule violation.
func InvalidOperation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidOperation, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a blocked deletion or a lost write race. The message
// should name the blocking dependents.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Forbidden reports a missing permission.
func Forbidden(permission string) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf("missing permission %q", permission)}
}

// StorageFailure wraps an infrastructure error from the database layer.
func StorageFailure(message string, cause error) *Error {
	return &Error{Kind: KindStorageFailure, Message: message, cause: cause}
}

// KindOf extracts the Kind from err, walking the wrap chain. Errors that
// are not *Error are treated as storage failures.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStorageFailure
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
