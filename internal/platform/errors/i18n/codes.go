package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// They are duplicated as strings so catalogs can be validated without
// importing the errors package.
const (
	CodeUnknown              = "UNKNOWN"
	CodeTransport            = "TRANSPORT"
	CodeMalformedResponse    = "MALFORMED_RESPONSE"
	CodeUnavailable          = "UNAVAILABLE"
	CodeRejected             = "REJECTED"
	CodeValidation           = "VALIDATION"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	CodeUnauthenticated      = "UNAUTHENTICATED"
	CodePermissionDenied     = "PERMISSION_DENIED"
	CodeCSRFInvalid          = "CSRF_INVALID"
	CodeNotFound             = "NOT_FOUND"
)

// AllCodes lists every code a catalog is expected to translate.
var AllCodes = []Code{
	CodeUnknown,
	CodeTransport,
	CodeMalformedResponse,
	CodeUnavailable,
	CodeRejected,
	CodeValidation,
	CodeInvalidInput,
	CodeConfirmationRequired,
	CodeUnauthenticated,
	CodePermissionDenied,
	CodeCSRFInvalid,
	CodeNotFound,
}
