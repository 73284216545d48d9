// Package apperr carries the billing error taxonomy and its HTTP mapping.
package apperr

import (
	"errors"
	"fmt"
)

// Kind groups error codes by how callers must react to them.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
	KindGateway
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindGateway:
		return "gateway"
	default:
		return "internal"
	}
}

// Code is a machine-readable reason returned to clients.
type Code string

const (
	CodeInternal      Code = "INTERNAL"
	CodeInvalidInput  Code = "INVALID_INPUT"
	CodeInvalidAmount Code = "INVALID_AMOUNT"
	CodeNotFound      Code = "NOT_FOUND"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeConflict      Code = "CONFLICT"
	CodeAlreadyPaid   Code = "ALREADY_PAID"
	CodeNoInstrument  Code = "NO_INSTRUMENT"
	CodeRejected      Code = "PAYMENT_REJECTED"
	CodeInProgress    Code = "CONFIRMATION_IN_PROGRESS"
	CodeGateway       Code = "GATEWAY_ERROR"
)

// Error is the domain error type shared by every billing package.
type Error struct {
	Kind    Kind
	Code    Code
	Message string // safe to show to clients
	Cause   error  // kept for logs only
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error by code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func New(kind Kind, code Code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(kind Kind, code Code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Cause: cause}
}

func Validation(message string) *Error {
	return New(KindValidation, CodeInvalidInput, message)
}

func InvalidAmount(message string) *Error {
	return New(KindValidation, CodeInvalidAmount, message)
}

func NotFound(what string) *Error {
	return New(KindNotFound, CodeNotFound, what+" not found")
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, CodeUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, CodeForbidden, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, CodeConflict, message)
}

func AlreadyPaid(what string) *Error {
	return New(KindConflict, CodeAlreadyPaid, what+" already paid")
}

func NoInstrument() *Error {
	return New(KindValidation, CodeNoInstrument, "no stored payment card")
}

// Gateway wraps an upstream failure. The message keeps the upstream text so
// operators can diagnose it; callers must not put credentials in cause.
func Gateway(message string, cause error) *Error {
	return Wrap(KindGateway, CodeGateway, message, cause)
}

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
