// Package errors provides structured error handling with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unclassified failure.
	CodeUnknown Code = "UNKNOWN"

	// Upstream failures
	CodeTransport         Code = "TRANSPORT"
	CodeMalformedResponse Code = "MALFORMED_RESPONSE"
	CodeUnavailable       Code = "UNAVAILABLE"
	CodeRejected          Code = "REJECTED"

	// Input failures
	CodeValidation           Code = "VALIDATION"
	CodeInvalidInput         Code = "INVALID_INPUT"
	CodeConfirmationRequired Code = "CONFIRMATION_REQUIRED"

	// Access failures
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeCSRFInvalid      Code = "CSRF_INVALID"

	// Lookup failures
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps codes to the status the console answers with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation, CodeInvalidInput, CodeRejected:
		return http.StatusUnprocessableEntity
	case CodeConfirmationRequired:
		return http.StatusConflict
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodePermissionDenied, CodeCSRFInvalid:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTransport, CodeMalformedResponse:
		return http.StatusBadGateway
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether a failure with this code may succeed when the
// same request is sent again.
func (c Code) Retryable() bool {
	switch c {
	case CodeTransport, CodeUnavailable:
		return true
	default:
		return false
	}
}

// HTTPStatus maps any error to an HTTP status code.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return CodeOf(err).HTTPStatus()
}
