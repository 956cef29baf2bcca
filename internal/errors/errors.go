// Package errors provides a lightweight structured error type (DocWeaverError)
// for category-based classification across the generation pipeline and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a DocWeaver error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// External system integration errors
	CategoryTranslate ErrorCategory = "translate"
	CategoryGenerate  ErrorCategory = "generate"
	CategoryGit       ErrorCategory = "git"
	CategoryNetwork   ErrorCategory = "network"

	// Extraction and persistence errors
	CategoryExtract    ErrorCategory = "extract"
	CategoryCache      ErrorCategory = "cache"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// DocWeaverError is a structured error with category, retryability, and context
type DocWeaverError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for DocWeaverError
type ContextFields map[string]any

// Error implements the error interface
func (e *DocWeaverError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *DocWeaverError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *DocWeaverError) WithContext(key string, value any) *DocWeaverError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new DocWeaverError
func New(category ErrorCategory, severity ErrorSeverity, message string) *DocWeaverError {
	return &DocWeaverError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new DocWeaverError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *DocWeaverError {
	return &DocWeaverError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}

// WrapRetryable creates a new retryable DocWeaverError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *DocWeaverError {
	return &DocWeaverError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if dwe, ok := err.(*DocWeaverError); ok {
		return dwe.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if dwe, ok := err.(*DocWeaverError); ok {
		return dwe.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a DocWeaverError
func GetCategory(err error) ErrorCategory {
	if dwe, ok := err.(*DocWeaverError); ok {
		return dwe.Category
	}
	return CategoryInternal
}

// ValidationError creates a new validation error
func ValidationError(message string) *DocWeaverError {
	return &DocWeaverError{
		Category:  CategoryValidation,
		Severity:  SeverityWarning,
		Message:   message,
		Retryable: false,
	}
}

// WrapError wraps an existing error with a new DocWeaverError at SeverityError
func WrapError(err error, category ErrorCategory, message string) *DocWeaverError {
	return &DocWeaverError{
		Category:  category,
		Severity:  SeverityError,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}
