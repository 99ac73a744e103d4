package application

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when an edit references a session id the owner does not have.
	ErrNotFound = errors.New("application: not found")
	// ErrMissingField marks a validation failure caused by absent required input.
	ErrMissingField = errors.New("application: missing field")
	// ErrInvalidTimeRange marks a session whose end is not strictly after its start.
	ErrInvalidTimeRange = errors.New("application: invalid time range")
	// ErrInvalidValue marks input that is present but malformed or unknown.
	ErrInvalidValue = errors.New("application: invalid value")
	// ErrNotificationFailed wraps dispatch errors. It is only logged, never returned from Submit.
	ErrNotificationFailed = errors.New("application: notification failed")
	// ErrUnsupported is returned when the configured store lacks an optional capability.
	ErrUnsupported = errors.New("application: unsupported by store")
)

// ValidationError captures field level validation issues that callers can surface to users.
// Kind is one of ErrMissingField, ErrInvalidTimeRange or ErrInvalidValue.
type ValidationError struct {
	Kind        error
	FieldErrors map[string]string
}

func newValidationError(kind error) *ValidationError {
	return &ValidationError{Kind: kind}
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	msg := "validation failed"
	if v.Kind != nil {
		msg = v.Kind.Error()
	}
	if len(v.FieldErrors) == 0 {
		return msg
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return msg + ": " + strings.Join(fields, ", ")
}

// Unwrap exposes Kind so errors.Is matches the failure category.
func (v *ValidationError) Unwrap() error {
	if v == nil {
		return nil
	}
	return v.Kind
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
