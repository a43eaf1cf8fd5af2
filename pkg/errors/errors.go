// pkg/errors/errors.go
package errors

import "strings"

// FieldError is a single inline message attached to a form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field error found by one validation pass,
// in form order. Alert holds a blocking, non-inline message (terms agreement).
type ValidationError struct {
	Fields []FieldError
	Alert  string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields)+1)
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	if e.Alert != "" {
		msgs = append(msgs, e.Alert)
	}
	if len(msgs) == 0 {
		return "validation failed"
	}
	return strings.Join(msgs, "; ")
}

// Message returns the message recorded for field, if any.
func (e *ValidationError) Message(field string) (string, bool) {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message, true
		}
	}
	return "", false
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Empty reports whether nothing was recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0 && e.Alert == ""
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

func NewAuthenticationError(message string) *AuthenticationError {
	return &AuthenticationError{Message: message}
}

// SubmissionError reports a failed remote call made on behalf of a form.
type SubmissionError struct {
	Message string
}

func (e *SubmissionError) Error() string {
	return e.Message
}

func NewSubmissionError(message string) *SubmissionError {
	return &SubmissionError{Message: message}
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	if e.Message == "" {
		return "internal server error"
	}
	return e.Message
}

func NewInternalError() *InternalError {
	return &InternalError{}
}

type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return e.Message
}

func NewBadRequestError(message string) *BadRequestError {
	return &BadRequestError{Message: message}
}
