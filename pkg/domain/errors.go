package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is a stable, machine-readable error category.
type ErrorKind string

const (
	KindInvalidRange      ErrorKind = "INVALID_RANGE"
	KindRoleForbidden     ErrorKind = "ROLE_FORBIDDEN"
	KindCapacityExceeded  ErrorKind = "CAPACITY_EXCEEDED"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindInvalidState      ErrorKind = "INVALID_STATE"
	KindInvalidStatus     ErrorKind = "INVALID_STATUS"
	KindTransientConflict ErrorKind = "TRANSIENT_CONFLICT"
	KindValidation        ErrorKind = "VALIDATION"
	KindForbidden         ErrorKind = "FORBIDDEN"
	KindUnauthorized      ErrorKind = "UNAUTHORIZED"
)

// AppError is a typed business error carrying a kind and a human-readable message.
type AppError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any *AppError of the same kind, so errors.Is(err, &AppError{Kind: k}) works.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// KindOf returns the kind of the first AppError in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// NewInvalidRangeError reports a malformed or past date range.
func NewInvalidRangeError(message string) *AppError {
	return &AppError{Kind: KindInvalidRange, Message: message}
}

// NewRoleForbiddenError reports a caller whose role may not perform the operation.
func NewRoleForbiddenError(message string) *AppError {
	return &AppError{Kind: KindRoleForbidden, Message: message}
}

// NewCapacityExceededError reports an admission denied for lack of capacity.
func NewCapacityExceededError(message string) *AppError {
	return &AppError{Kind: KindCapacityExceeded, Message: message}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewInvalidStateError reports an illegal status transition.
func NewInvalidStateError(from, to string) *AppError {
	return &AppError{Kind: KindInvalidState, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewInvalidStateMessage reports an illegal transition with a custom message.
func NewInvalidStateMessage(message string) *AppError {
	return &AppError{Kind: KindInvalidState, Message: message}
}

// NewInvalidStatusError reports an unknown target status.
func NewInvalidStatusError(message string) *AppError {
	return &AppError{Kind: KindInvalidStatus, Message: message}
}

// NewConflictError reports a persistence conflict the caller may retry once.
func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindTransientConflict, Message: message}
}

// NewValidationError reports malformed input.
func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// NewForbiddenError reports an authenticated caller lacking access.
func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

// NewUnauthorizedError reports a missing or invalid identity.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}
