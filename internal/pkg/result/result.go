// Package result provides Result, a discriminated outcome returned by request
// handlers. Exactly one status is active per value, and a value never changes
// after construction.
package result

import (
	"reflect"
	"slices"
)

// Status identifies which outcome a Result carries.
type Status int

const (
	// StatusOk carries a successful value.
	StatusOk Status = iota
	// StatusCreated carries a value that was newly created.
	StatusCreated
	// StatusInvalid carries validation findings.
	StatusInvalid
	// StatusNotFound means the requested entity does not exist.
	StatusNotFound
	// StatusError carries unexpected failures.
	StatusError
	// StatusConflict means the request collides with existing state.
	StatusConflict
	// StatusForbidden means the caller is not allowed to perform the request.
	StatusForbidden
	// StatusUnauthorized means the caller is not authenticated.
	StatusUnauthorized
	// StatusUnavailable means a dependency could not serve the request.
	StatusUnavailable
)

// String returns a lower-case label usable in logs and metric attributes.
func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusCreated:
		return "created"
	case StatusInvalid:
		return "invalid"
	case StatusNotFound:
		return "not_found"
	case StatusError:
		return "error"
	case StatusConflict:
		return "conflict"
	case StatusForbidden:
		return "forbidden"
	case StatusUnauthorized:
		return "unauthorized"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Severity grades a ValidationError.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

// ValidationError is a single validation finding. Identifier names the
// offending field and may be empty for request-wide findings.
type ValidationError struct {
	Identifier   string
	ErrorMessage string
	ErrorCode    string
	Severity     Severity
}

// NewValidationError builds an error-severity finding for a field.
func NewValidationError(identifier, message string) ValidationError {
	return ValidationError{Identifier: identifier, ErrorMessage: message}
}

// InvalidFactory is implemented by response types that know how to describe a
// validation failure of their own type. The dispatch pipeline relies on it to
// short-circuit without knowing the concrete response.
type InvalidFactory[Self any] interface {
	NewInvalid(errs []ValidationError) Self
}

// Resulter is the type-erased view of a Result used by transports.
type Resulter interface {
	Status() Status
	Payload() any
	ValidationErrors() []ValidationError
	Errors() []string
}

// Result is the outcome of a handler.
type Result[T any] struct {
	value            T
	status           Status
	errors           []string
	validationErrors []ValidationError
}

// Success returns an Ok result holding value.
func Success[T any](value T) Result[T] {
	return Result[T]{value: value, status: StatusOk}
}

// Created returns a Created result holding value.
func Created[T any](value T) Result[T] {
	return Result[T]{value: value, status: StatusCreated}
}

// Invalid returns an Invalid result carrying the given findings in order.
func Invalid[T any](errs ...ValidationError) Result[T] {
	return Result[T]{status: StatusInvalid, validationErrors: clone(errs)}
}

// NotFound returns a NotFound result with optional messages.
func NotFound[T any](msgs ...string) Result[T] {
	return Result[T]{status: StatusNotFound, errors: clone(msgs)}
}

// Error returns an Error result with optional messages.
func Error[T any](msgs ...string) Result[T] {
	return Result[T]{status: StatusError, errors: clone(msgs)}
}

// Conflict returns a Conflict result with optional messages.
func Conflict[T any](msgs ...string) Result[T] {
	return Result[T]{status: StatusConflict, errors: clone(msgs)}
}

// Forbidden returns a Forbidden result with optional messages.
func Forbidden[T any](msgs ...string) Result[T] {
	return Result[T]{status: StatusForbidden, errors: clone(msgs)}
}

// Unauthorized returns an Unauthorized result with optional messages.
func Unauthorized[T any](msgs ...string) Result[T] {
	return Result[T]{status: StatusUnauthorized, errors: clone(msgs)}
}

// Unavailable returns an Unavailable result with optional messages.
func Unavailable[T any](msgs ...string) Result[T] {
	return Result[T]{status: StatusUnavailable, errors: clone(msgs)}
}

// NewInvalid implements InvalidFactory. The receiver is ignored.
func (Result[T]) NewInvalid(errs []ValidationError) Result[T] {
	return Invalid[T](errs...)
}

// Status returns the active status.
func (r Result[T]) Status() Status { return r.status }

// Value returns the carried value. It is the zero value unless the result is
// successful.
func (r Result[T]) Value() T { return r.value }

// Payload returns the carried value as any.
func (r Result[T]) Payload() any { return r.value }

// IsSuccess reports whether the result is Ok or Created.
func (r Result[T]) IsSuccess() bool {
	return r.status == StatusOk || r.status == StatusCreated
}

// ValidationErrors returns a copy of the validation findings.
func (r Result[T]) ValidationErrors() []ValidationError { return clone(r.validationErrors) }

// Errors returns a copy of the error messages.
func (r Result[T]) Errors() []string { return clone(r.errors) }

// Equal reports structural equality.
func (r Result[T]) Equal(other Result[T]) bool {
	return r.status == other.status &&
		slices.Equal(r.errors, other.errors) &&
		slices.Equal(r.validationErrors, other.validationErrors) &&
		reflect.DeepEqual(r.value, other.value)
}

// Map projects a successful value into another result type. Non-successful
// results keep their status and findings.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	out := Result[U]{status: r.status, errors: r.errors, validationErrors: r.validationErrors}
	if r.IsSuccess() {
		out.value = fn(r.value)
	}
	return out
}

func clone[S ~[]E, E any](s S) S {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}
