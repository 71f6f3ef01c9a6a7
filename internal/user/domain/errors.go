package domain

import "strings"

// FieldError describes one rejected request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every rejected field of a request
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Check records message for field when ok is false
func (e *ValidationError) Check(ok bool, field, message string) {
	if !ok {
		e.add(field, message)
	}
}

// ErrOrNil returns the error when violations exist, nil otherwise
func (e *ValidationError) ErrOrNil() error {
	if len(e.Errors) > 0 {
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
