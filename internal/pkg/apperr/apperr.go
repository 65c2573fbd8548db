package apperr

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Kind classifies an error for the HTTP boundary.
type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindUnauthenticated    Kind = "unauthenticated"
	KindPermissionDenied   Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindInvariantViolation Kind = "invariant_violation"
	KindConflict           Kind = "conflict"
	KindStorage            Kind = "storage_error"
	KindInternal           Kind = "internal_server_error"
)

// Error is the error type returned by the service layer.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, apperr.NotFound("")) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, message)
}

func PermissionDenied(message string) *Error {
	return New(KindPermissionDenied, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func InvariantViolation(message string) *Error {
	return New(KindInvariantViolation, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

func Storage(message string, err error) *Error {
	return Wrap(KindStorage, message, err)
}

func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf reports the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Lookup translates a repository error: record-not-found becomes NotFound
// naming what, anything else becomes Internal.
func Lookup(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(what + " not found")
	}
	return Internal("failed to load "+strings.ToLower(what), err)
}
