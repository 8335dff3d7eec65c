package errors

import (
	stderrors "errors"
	"sort"
	"strings"

	"github.com/louisbranch/backoffice/internal/platform/errors/i18n"
)

// fieldPrefix namespaces per-field validation messages inside Metadata so
// they never collide with template variables.
const fieldPrefix = "field:"

// Error is the console error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs/telemetry)
	Metadata map[string]string // Additional context for templating
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithMetadata creates an error with metadata for i18n templating.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates an error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithMetadata creates an error with both metadata and a cause.
func WrapWithMetadata(code Code, message string, metadata map[string]string, cause error) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
		Cause:    cause,
	}
}

// Validation builds a VALIDATION error carrying per-field messages.
func Validation(message string, fields map[string]string) *Error {
	metadata := make(map[string]string, len(fields))
	for field, msg := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		metadata[fieldPrefix+field] = msg
	}
	return &Error{Code: CodeValidation, Message: message, Metadata: metadata}
}

// As returns the first *Error in the chain.
func As(err error) (*Error, bool) {
	var target *Error
	if err == nil || !stderrors.As(err, &target) {
		return nil, false
	}
	return target, true
}

// CodeOf returns the code of the first *Error in the chain, or CodeUnknown.
func CodeOf(err error) Code {
	if target, ok := As(err); ok {
		return target.Code
	}
	return CodeUnknown
}

// FieldErrors returns the per-field validation messages carried by err.
func FieldErrors(err error) map[string]string {
	target, ok := As(err)
	if !ok {
		return nil
	}
	out := map[string]string{}
	for key, value := range target.Metadata {
		if field, ok := strings.CutPrefix(key, fieldPrefix); ok {
			out[field] = value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// FieldNames returns the sorted names of fields with validation messages.
func FieldNames(err error) []string {
	fields := FieldErrors(err)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LocalizedMessage renders the user-facing message for locale.
// Templates may reference {{.Message}} for the upstream explanation.
func (e *Error) LocalizedMessage(locale string) string {
	metadata := make(map[string]string, len(e.Metadata)+1)
	for key, value := range e.Metadata {
		metadata[key] = value
	}
	if _, ok := metadata["Message"]; !ok {
		metadata["Message"] = e.Message
	}
	return i18n.GetCatalog(locale).Format(string(e.Code), metadata)
}

// PublicMessage returns a user-safe message for any error. Errors outside
// this package render as UNKNOWN so internal details never reach the page.
func PublicMessage(err error, locale string) string {
	if err == nil {
		return ""
	}
	if target, ok := As(err); ok {
		return target.LocalizedMessage(locale)
	}
	return i18n.GetCatalog(locale).Format(string(CodeUnknown), nil)
}
