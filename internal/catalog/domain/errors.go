package domain

import (
	"fmt"
	"strings"
)

// FieldError describes one violated input constraint
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ValidationError lists every violated constraint of a request, not just the first
type ValidationError struct {
	Errors []FieldError
}

// Add records a violation
func (e *ValidationError) Add(field, message, value string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message, Value: value})
}

// HasErrors reports whether any violation was recorded
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// Fields returns the names of the violated fields in order
func (e *ValidationError) Fields() []string {
	fields := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		fields[i] = fe.Field
	}
	return fields
}

// ErrOrNil returns the error when violations exist, nil otherwise
func (e *ValidationError) ErrOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NotFoundError is returned when a well-formed identity has no record
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// MalformedIdentityError is returned when an identity cannot represent a store id
type MalformedIdentityError struct {
	ID string
}

func (e *MalformedIdentityError) Error() string {
	return fmt.Sprintf("malformed identity %q", e.ID)
}

// InternalError wraps store or cache faults not attributable to caller input
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}
