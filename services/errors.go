package services

import (
	"errors"
	"fmt"

	"hotel-pms/models"
	"hotel-pms/repository"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindInvalidTransition
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidTransition:
		return "invalid_transition"
	default:
		return "internal"
	}
}

// Error is the structured failure every service operation returns for
// client-visible problems. Code is a stable machine key ("error.roomNotFound").
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func validationError(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func notFoundError(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func conflictError(code, message string, details map[string]interface{}) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message, Details: details}
}

func transitionError(from, to models.ReservationStatus, message string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Code:    "error.invalidTransition",
		Message: message,
		Details: map[string]interface{}{"from": from, "to": to},
	}
}

func internalError(op string, err error) *Error {
	return &Error{Kind: KindInternal, Code: "error.internal", Message: op + " failed", Err: err}
}

// KindOf reports the kind of err; errors not produced by this package are
// internal.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// lookupError turns a repository error into a not-found or internal error.
func lookupError(err error, code, message, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFoundError(code, message)
	}
	return internalError(op, err)
}

// passThrough keeps *Error values intact and wraps anything else as
// internal. Used on errors returned from inside transactions.
func passThrough(err error, op string) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return internalError(op, err)
}
