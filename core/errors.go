package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// ExternalServiceError is returned when an outbound service call fails.
// StatusCode carries the HTTP-style status returned by the service (0 when
// the request never reached it).
type ExternalServiceError struct {
	Service    string
	StatusCode int
	Err        error
}

func NewExternalServiceError(service string, statusCode int, err error) error {
	return &ExternalServiceError{Service: service, StatusCode: statusCode, Err: err}
}

func (e ExternalServiceError) Error() string {
	if e.Err == nil {
		return e.Service + " request failed"
	}
	return e.Service + ": " + e.Err.Error()
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
