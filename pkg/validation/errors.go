// Package validation provides common validation utilities and the error types
// shared across the forecasting pipeline.
package validation

import "fmt"

// ValidationError indicates malformed or insufficient input data. Callers can
// recover by supplying more or better data.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// NewValidationError constructs a ValidationError for the given field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvalidArgumentError indicates an out-of-range or otherwise unusable
// parameter. This is a programmer error and is never retried.
type InvalidArgumentError struct {
	Param  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Param, e.Reason)
}

// NewInvalidArgumentError constructs an InvalidArgumentError for the given
// parameter.
func NewInvalidArgumentError(param, format string, args ...interface{}) *InvalidArgumentError {
	return &InvalidArgumentError{Param: param, Reason: fmt.Sprintf(format, args...)}
}
