package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidInput         = errors.New("invalid input")
	ErrConflict             = errors.New("resource conflict")
	ErrMalformedProfile     = errors.New("malformed provider profile")
	ErrTokenSigning         = errors.New("token signing failed")
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// ValidationError represents a field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// StorageError reports a failed user directory operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
