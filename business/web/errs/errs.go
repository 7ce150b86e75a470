// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/deschool/foundation/deschool/fail"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Kind   string            `json:"kind,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (re *Trusted) Error() string {
	return re.Err.Error()
}

// Unwrap exposes the wrapped error so rejections can be matched by kind.
func (re *Trusted) Unwrap() error {
	return re.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var re *Trusted
	return errors.As(err, &re)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var re *Trusted
	if !errors.As(err, &re) {
		return nil
	}
	return re
}

// =============================================================================

// statuses maps each rejection kind to the status the client receives.
var statuses = map[fail.Kind]int{
	fail.InvalidInput:      http.StatusBadRequest,
	fail.NotFound:          http.StatusNotFound,
	fail.Duplicate:         http.StatusConflict,
	fail.InsufficientFunds: http.StatusUnprocessableEntity,
	fail.NotYetEligible:    http.StatusConflict,
	fail.AlreadySettled:    http.StatusConflict,
	fail.NotParticipant:    http.StatusForbidden,
	fail.Uninitialised:     http.StatusConflict,
	fail.Reentrant:         http.StatusConflict,
	fail.Unauthorized:      http.StatusUnauthorized,
}

// FromRejection converts an engine rejection into a trusted error. Errors
// that are not rejections are returned unchanged and end up as a 500.
func FromRejection(err error) error {
	status, exists := statuses[fail.KindOf(err)]
	if !exists {
		return err
	}
	return NewTrusted(err, status)
}

// Status returns the status code mapped to the rejection kind.
func Status(kind fail.Kind) int {
	status, exists := statuses[kind]
	if !exists {
		return http.StatusInternalServerError
	}
	return status
}
