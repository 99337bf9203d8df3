// Package errs contains the domain error taxonomy shared by every layer.
//
// All expected failures are represented by a single concrete type, *Error,
// distinguished by a stable Code. errors.Is matches on Code, so callers can
// test against the sentinels in sentinels.go regardless of the message or
// cause carried by a particular instance.
package errs

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-readable error identifier.
type Code string

// Codes of the closed taxonomy.
const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeDatabase           Code = "DATABASE_ERROR"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeInvalidToken       Code = "INVALID_TOKEN"
	CodeEmailAlreadyExists Code = "EMAIL_ALREADY_EXISTS"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeInternal           Code = "INTERNAL_ERROR"
)

// RootField is the details key used for failures not tied to a single field.
const RootField = "_root"

// Error is a domain error. Code and Message are never empty for values
// built by the constructors of this package.
type Error struct {
	Code    Code
	Message string
	// Details maps dotted field paths (or RootField) to messages. Only set
	// for validation failures.
	Details map[string][]string
	// Resource and ID identify the missing entity of a NOT_FOUND error.
	Resource string
	ID       string
	// Email is the conflicting address of EMAIL_ALREADY_EXISTS.
	Email string
	// Cause is the lower-level failure, if any. It is never rendered to clients.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap exposes the cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NotFound reports a missing resource.
func NotFound(resource string, id any) *Error {
	sid := fmt.Sprint(id)
	return &Error{
		Code:     CodeNotFound,
		Message:  fmt.Sprintf("%s with id '%s' not found", resource, sid),
		Resource: resource,
		ID:       sid,
	}
}

// Validation reports invalid input. An empty message gets a default and a
// nil details map is replaced by an empty one.
func Validation(message string, details map[string][]string) *Error {
	if message == "" {
		message = "validation failed"
	}
	if details == nil {
		details = map[string][]string{}
	}
	return &Error{Code: CodeValidation, Message: message, Details: details}
}

// Database wraps a storage failure. cause may be nil.
func Database(message string, cause error) *Error {
	if message == "" {
		message = "database error"
	}
	return &Error{Code: CodeDatabase, Message: message, Cause: cause}
}

// InvalidCredentials is returned for unknown emails and wrong passwords alike.
func InvalidCredentials() *Error {
	return &Error{Code: CodeInvalidCredentials, Message: "invalid email or password"}
}

// TokenExpired reports a well-formed token past its expiry.
func TokenExpired() *Error {
	return &Error{Code: CodeTokenExpired, Message: "token has expired"}
}

// InvalidToken reports a malformed, forged, revoked or superseded token.
func InvalidToken() *Error {
	return &Error{Code: CodeInvalidToken, Message: "invalid token"}
}

// EmailAlreadyExists reports a sign-up with a registered email.
func EmailAlreadyExists(email string) *Error {
	return &Error{
		Code:    CodeEmailAlreadyExists,
		Message: fmt.Sprintf("user with email '%s' already exists", email),
		Email:   email,
	}
}

// RateLimited reports a temporarily blocked sign-in.
func RateLimited() *Error {
	return &Error{Code: CodeRateLimited, Message: "too many attempts, try again later"}
}

// Internal reports a failure that is neither a business outcome nor a storage error.
func Internal(cause error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", Cause: cause}
}

// From returns err as a domain error. Non-domain errors are treated as
// storage failures, the only unexpected failures the services can meet.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return Database("", err)
}
