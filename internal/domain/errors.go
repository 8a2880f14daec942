// Package domain provides the shared error taxonomy for the service layer.
//
// Every failure the service layer raises is a *Error with a Kind drawn from
// the fixed set below. The HTTP adapter is the only place these are turned
// into transport responses.
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain error.
type Kind int

const (
	KindNotFound Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindForbidden
	KindInternal
)

// statusByKind is the fixed transport mapping for each kind.
var statusByKind = map[Kind]int{
	KindNotFound:     http.StatusNotFound,
	KindValidation:   http.StatusUnprocessableEntity,
	KindConflict:     http.StatusConflict,
	KindUnauthorized: http.StatusUnauthorized,
	KindForbidden:    http.StatusForbidden,
	KindInternal:     http.StatusInternalServerError,
}

// typeByKind is the stable machine-readable type string for each kind,
// exposed as "type" in error response bodies.
var typeByKind = map[Kind]string{
	KindNotFound:     "NotFoundError",
	KindValidation:   "ValidationError",
	KindConflict:     "ConflictError",
	KindUnauthorized: "UnauthorizedError",
	KindForbidden:    "ForbiddenError",
	KindInternal:     "InternalServerError",
}

// Error is a domain failure with a kind, a human-readable message, an
// optional offending field and a bag of structured details.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Status returns the HTTP status the kind maps to.
func (e *Error) Status() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Type returns the stable machine-readable type string for the kind.
func (e *Error) Type() string {
	if t, ok := typeByKind[e.Kind]; ok {
		return t
	}
	return typeByKind[KindInternal]
}

// WithDetails returns e with the given details attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// NotFound reports that the identified resource does not exist.
func NotFound(resource, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s with id '%s' not found", resource, id),
	}
}

// Validation reports invalid input. When field is non-empty the message is
// prefixed with the field name.
func Validation(message, field string) *Error {
	if field != "" {
		message = fmt.Sprintf("Validation error in field '%s': %s", field, message)
	}
	return &Error{Kind: KindValidation, Message: message, Field: field}
}

// Conflict reports a state conflict, e.g. a duplicate uniqueness key.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Unauthorized reports missing or invalid credentials.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "Unauthorized"
	}
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden reports insufficient permission.
func Forbidden(message string) *Error {
	if message == "" {
		message = "Forbidden"
	}
	return &Error{Kind: KindForbidden, Message: message}
}

// Internal reports an unexpected failure inside the service.
func Internal(message string) *Error {
	return &Error{Kind: KindInternal, Message: message}
}

// AsError unwraps err into a *Error when it is (or wraps) one.
func AsError(err error) (*Error, bool) {
	var de *Error
	ok := errors.As(err, &de)
	return de, ok
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	de, ok := AsError(err)
	return ok && de.Kind == kind
}
