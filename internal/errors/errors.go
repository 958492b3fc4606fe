// Package errors provides a lightweight structured error type (RushError)
// for category-based classification of workspace, plugin and lockfile failures.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a RushError for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Plugin resolution and activation errors
	CategoryPlugin ErrorCategory = "plugin"

	// Lockfile inspection and rule evaluation errors
	CategoryLockfile ErrorCategory = "lockfile"
	CategoryRule     ErrorCategory = "rule"

	// Runtime and infrastructure errors
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// Kind identifies a programmatically detectable failure. Kinds are comparable
// sentinels: errors.Is(err, ErrNeedsUpdate) reports whether any RushError in
// err's chain carries that kind.
type Kind string

func (k Kind) Error() string { return string(k) }

const (
	ErrConfigNotFound        Kind = "config not found"
	ErrNeedsUpdate           Kind = "plugin manifest needs update"
	ErrManifestEntryNotFound Kind = "plugin manifest entry not found"
	ErrPackageNotFound       Kind = "package not found"
	ErrPluginLoad            Kind = "plugin load failed"
	ErrInvalidPlugin         Kind = "invalid plugin"
	ErrOptionsFileNotFound   Kind = "plugin options file not found"
	ErrOptionsValidation     Kind = "plugin options invalid"
	ErrSchemaValidation      Kind = "schema validation failed"
	ErrUnsupportedRule       Kind = "unsupported rule"
	ErrProjectNotFound       Kind = "project not found"
	ErrVersionInconsistency  Kind = "inconsistent versions"
	ErrLockfile              Kind = "lockfile invalid"
)

// RushError is a structured error with category, kind and context
type RushError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Kind     Kind          `json:"kind,omitempty"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for RushError
type ContextFields map[string]any

// Error implements the error interface
func (e *RushError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *RushError) Unwrap() error {
	return e.Cause
}

// Is matches Kind sentinels against the error's kind.
func (e *RushError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && e.Kind != "" && e.Kind == k
}

// WithContext adds context information to the error
func (e *RushError) WithContext(key string, value any) *RushError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// WithKind tags the error with a detectable kind.
func (e *RushError) WithKind(kind Kind) *RushError {
	e.Kind = kind
	return e
}

// New creates a new RushError
func New(category ErrorCategory, severity ErrorSeverity, message string) *RushError {
	return &RushError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new RushError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *RushError {
	return &RushError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// AsRushError returns the first RushError in err's chain.
func AsRushError(err error) (*RushError, bool) {
	var re *RushError
	if stdErrors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if re, ok := AsRushError(err); ok {
		return re.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a RushError
func GetCategory(err error) ErrorCategory {
	if re, ok := AsRushError(err); ok {
		return re.Category
	}
	return CategoryInternal
}

// ValidationError creates a new validation error
func ValidationError(message string) *RushError {
	return &RushError{
		Category: CategoryValidation,
		Severity: SeverityError,
		Message:  message,
	}
}

// WrapError wraps an existing error with a new RushError
func WrapError(err error, category ErrorCategory, message string) *RushError {
	return &RushError{
		Category: category,
		Severity: SeverityError,
		Message:  message,
		Cause:    err,
	}
}
