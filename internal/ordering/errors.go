package ordering

import (
	"errors"
	"fmt"
)

// Kind classifies a reorder failure.
type Kind string

const (
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
	KindOutOfScope   Kind = "out_of_scope"
	KindValidation   Kind = "validation"
)

// Error is returned for any rejected reorder request. No ranks are written
// when a reorder fails with an Error.
type Error struct {
	Kind Kind
	// ID is the offending entity id, zero when the failure is not tied to one.
	ID  int64
	Msg string
}

func (e *Error) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s: %s (id %d)", e.Kind, e.Msg, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is matches another *Error by Kind, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Msg: "not allowed"}
	ErrNotFound     = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrOutOfScope   = &Error{Kind: KindOutOfScope, Msg: "out of scope"}
	ErrValidation   = &Error{Kind: KindValidation, Msg: "invalid request"}
)

func newError(kind Kind, id int64, format string, args ...any) *Error {
	return &Error{Kind: kind, ID: id, Msg: fmt.Sprintf(format, args...)}
}

// Validation builds a validation error, for callers that reject a payload
// before it reaches the coordinator.
func Validation(format string, args ...any) *Error {
	return newError(KindValidation, 0, format, args...)
}

// KindOf returns the Kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
