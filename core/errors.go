package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is returned for bad input: unsupported file types, missing required fields, malformed rows...
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// NotFoundError is returned when a user, classroom, student, project or team document does not exist.
type NotFoundError struct {
	Message string
}

func NewNotFoundError(msg string) error {
	return &NotFoundError{Message: msg}
}

func (err NotFoundError) Error() string { return err.Message }

// ConflictError is returned when a key is already taken (course ids, team names).
type ConflictError struct {
	Message string
}

func NewConflictError(msg string) error {
	return &ConflictError{Message: msg}
}

func (err ConflictError) Error() string { return err.Message }

// RepositoryError wraps any failure of the document store.
// Message is safe to show to end users, Err keeps the cause for logs.
type RepositoryError struct {
	Message string
	Err     error
}

func NewRepositoryError(msg string, err error) error {
	return &RepositoryError{Message: msg, Err: err}
}

func (err RepositoryError) Error() string {
	if err.Err == nil {
		return err.Message
	}
	return err.Message + ": " + err.Err.Error()
}

func (err RepositoryError) Unwrap() error { return err.Err }

// AuthError is returned when the identity provider rejects a sign in, or when a user has no usable role.
type AuthError struct {
	Message string
	Err     error
}

func NewAuthError(msg string, err ...error) error {
	ae := &AuthError{Message: msg}
	if len(err) > 0 {
		ae.Err = err[0]
	}
	return ae
}

func (err AuthError) Error() string { return err.Message }

func (err AuthError) Unwrap() error { return err.Err }

// PermissionError is returned when an authenticated user reaches for somebody else's classroom or team.
type PermissionError struct {
	Message string
}

func NewPermissionError(msg string) error {
	return &PermissionError{Message: msg}
}

func (err PermissionError) Error() string { return err.Message }

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

func IsConflict(err error) bool {
	_, ok := errors.Cause(err).(*ConflictError)
	return ok
}

func IsValidation(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

func IsRepository(err error) bool {
	_, ok := errors.Cause(err).(*RepositoryError)
	return ok
}

func IsAuth(err error) bool {
	_, ok := errors.Cause(err).(*AuthError)
	return ok
}

func IsPermission(err error) bool {
	_, ok := errors.Cause(err).(*PermissionError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
