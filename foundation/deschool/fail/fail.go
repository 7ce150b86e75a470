// Package fail provides the set of rejection kinds produced by the engine.
// Every rejection carries the descriptive reason a caller sees and can be
// matched against its kind with errors.Is.
package fail

import (
	"errors"
	"fmt"
)

// Kind represents a class of rejection.
type Kind string

// Set of rejection kinds.
const (
	InvalidInput      Kind = "invalid-input"
	NotFound          Kind = "not-found"
	Duplicate         Kind = "duplicate"
	InsufficientFunds Kind = "insufficient-funds"
	NotYetEligible    Kind = "not-yet-eligible"
	AlreadySettled    Kind = "already-settled"
	NotParticipant    Kind = "not-a-participant"
	Uninitialised     Kind = "uninitialised"
	Reentrant         Kind = "reentrant"
	Unauthorized      Kind = "unauthorized"
)

// Error implements the error interface so a Kind can be used as the target
// of errors.Is.
func (k Kind) Error() string {
	return string(k)
}

// Error is a rejection with the reason reported to the caller.
type Error struct {
	Kind Kind
	Msg  string
}

// New constructs a rejection of the specified kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf constructs a rejection of the specified kind with a formatted reason.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Msg
}

// Is matches the rejection against a Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the kind of the rejection or an empty kind when the error
// is not a rejection.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
