package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrMissingReceiver  = fmt.Errorf("missing receiver")
	ErrMissingIdentity  = fmt.Errorf("missing identity")
	ErrEmptyPayload     = fmt.Errorf("empty payload: body or mediaRef required")
	ErrConnectionClosed = fmt.Errorf("connection closed")
	ErrSendBufferFull   = fmt.Errorf("send buffer full")
	ErrSecretMismatch   = fmt.Errorf("shared secret mismatch")
)

// ValidationError marks a malformed or incomplete request.
// A request failing validation is rejected whole; it is never partially routed.
type ValidationError struct {
	Reason error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation: %v", e.Reason)
}

func (e ValidationError) Unwrap() error {
	return e.Reason
}

func NewValidation(reason error) error {
	return ValidationError{Reason: reason}
}

// AuthorizationError marks a trigger request carrying a bad shared secret.
// No registry access happens for a request that fails authorization.
type AuthorizationError struct {
	Reason error
}

func (e AuthorizationError) Error() string {
	return fmt.Sprintf("authorization: %v", e.Reason)
}

func (e AuthorizationError) Unwrap() error {
	return e.Reason
}

func NewAuthorization(reason error) error {
	return AuthorizationError{Reason: reason}
}

func IsValidation(err error) bool {
	var v ValidationError
	return stderrors.As(err, &v)
}

func IsAuthorization(err error) bool {
	var a AuthorizationError
	return stderrors.As(err, &a)
}
