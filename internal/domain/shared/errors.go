package shared

import "fmt"

// Error codes shared by every layer
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeNotFound    = "NOT_FOUND"
	CodePersistence = "PERSISTENCE_ERROR"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Summary is the short status line shown to call-center clients.
	Summary string `json:"summary,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches domain errors by code, so errors.Is(err, ErrNotFound) holds for
// any not-found fault regardless of its message
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

// WithSummary returns a copy of the error carrying a caller-facing summary
func (e *DomainError) WithSummary(summary string) *DomainError {
	c := *e
	c.Summary = summary
	return &c
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationFault reports missing or structurally malformed input
func NewValidationFault(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewNotFoundFault reports a referenced record that does not exist
func NewNotFoundFault(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// NewPersistenceFault wraps a store failure. The cause is kept for logging
// and never rendered to callers.
func NewPersistenceFault(cause error) *DomainError {
	return &DomainError{
		Code:    CodePersistence,
		Message: "Failed to persist changes",
		cause:   cause,
	}
}

// Common domain errors
var (
	ErrNotFound    = NewDomainError(CodeNotFound, "Resource not found")
	ErrValidation  = NewDomainError(CodeValidation, "Validation failed")
	ErrPersistence = NewDomainError(CodePersistence, "Failed to persist changes")
)
