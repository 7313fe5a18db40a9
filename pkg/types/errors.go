package types

import (
	"errors"
	"fmt"
)

// ErrorKind represents the named failure conditions of a ledger operation
type ErrorKind string

const (
	KindAlreadyExists       ErrorKind = "AlreadyExists"
	KindNotFound            ErrorKind = "NotFound"
	KindAccessDenied        ErrorKind = "AccessDenied"
	KindNoActiveConsent     ErrorKind = "NoActiveConsent"
	KindActiveConsentExists ErrorKind = "ActiveConsentExists"
	KindInvalidAmount       ErrorKind = "InvalidAmount"
	KindInvalidArgument     ErrorKind = "InvalidArgument"
	KindInternal            ErrorKind = "Internal"
)

// Error codes surfaced to chaincode clients
const (
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAccessDenied        = "ACCESS_DENIED"
	ErrCodeNoActiveConsent     = "NO_ACTIVE_CONSENT"
	ErrCodeActiveConsentExists = "ACTIVE_CONSENT_EXISTS"
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
	ErrCodeInvalidArgument     = "INVALID_ARGUMENT"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

var kindCodes = map[ErrorKind]string{
	KindAlreadyExists:       ErrCodeAlreadyExists,
	KindNotFound:            ErrCodeNotFound,
	KindAccessDenied:        ErrCodeAccessDenied,
	KindNoActiveConsent:     ErrCodeNoActiveConsent,
	KindActiveConsentExists: ErrCodeActiveConsentExists,
	KindInvalidAmount:       ErrCodeInvalidAmount,
	KindInvalidArgument:     ErrCodeInvalidArgument,
	KindInternal:            ErrCodeInternalError,
}

// Sentinels for errors.Is matching on the failure kind
var (
	ErrAlreadyExists       = &LedgerError{Kind: KindAlreadyExists}
	ErrNotFound            = &LedgerError{Kind: KindNotFound}
	ErrAccessDenied        = &LedgerError{Kind: KindAccessDenied}
	ErrNoActiveConsent     = &LedgerError{Kind: KindNoActiveConsent}
	ErrActiveConsentExists = &LedgerError{Kind: KindActiveConsentExists}
	ErrInvalidAmount       = &LedgerError{Kind: KindInvalidAmount}
	ErrInvalidArgument     = &LedgerError{Kind: KindInvalidArgument}
	ErrInternal            = &LedgerError{Kind: KindInternal}
)

// LedgerError represents a structured failure of a ledger operation
type LedgerError struct {
	Kind    ErrorKind              `json:"kind"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *LedgerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *LedgerError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for this error's kind.
func (e *LedgerError) Is(target error) bool {
	t, ok := target.(*LedgerError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// KindOf returns the kind of the first LedgerError in err's chain, or
// KindInternal when there is none.
func KindOf(err error) ErrorKind {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindInternal
}

// CodeOf returns the client-facing code for err.
func CodeOf(err error) string {
	return kindCodes[KindOf(err)]
}

func newError(kind ErrorKind, format string, args ...interface{}) *LedgerError {
	return &LedgerError{
		Kind:    kind,
		Code:    kindCodes[kind],
		Message: fmt.Sprintf(format, args...),
	}
}

// NewAlreadyExistsError creates an error for a duplicate key or nested identifier
func NewAlreadyExistsError(format string, args ...interface{}) *LedgerError {
	return newError(KindAlreadyExists, format, args...)
}

// NewNotFoundError creates an error for an absent entity
func NewNotFoundError(format string, args ...interface{}) *LedgerError {
	return newError(KindNotFound, format, args...)
}

// NewAccessDeniedError creates an error for a failed consent check
func NewAccessDeniedError(format string, args ...interface{}) *LedgerError {
	return newError(KindAccessDenied, format, args...)
}

// NewNoActiveConsentError creates an error for a revoke with nothing to revoke
func NewNoActiveConsentError(format string, args ...interface{}) *LedgerError {
	return newError(KindNoActiveConsent, format, args...)
}

// NewActiveConsentExistsError creates an error for a duplicate active research consent
func NewActiveConsentExistsError(format string, args ...interface{}) *LedgerError {
	return newError(KindActiveConsentExists, format, args...)
}

// NewInvalidAmountError creates an error for an unusable monetary amount
func NewInvalidAmountError(amount string) *LedgerError {
	e := newError(KindInvalidAmount, "invalid amount provided: %q", amount)
	e.Details = map[string]interface{}{"amount": amount}
	return e
}

// NewInvalidArgumentError creates an error for a malformed invocation
func NewInvalidArgumentError(format string, args ...interface{}) *LedgerError {
	return newError(KindInvalidArgument, format, args...)
}

// NewInternalError creates an error wrapping a ledger, codec or clock failure
func NewInternalError(message string, cause error) *LedgerError {
	e := newError(KindInternal, "%s", message)
	e.Cause = cause
	return e
}
