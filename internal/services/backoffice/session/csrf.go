package session

import (
	"crypto/subtle"
	"net/http"
	"strings"

	apperrors "github.com/louisbranch/backoffice/internal/platform/errors"
	"github.com/louisbranch/backoffice/internal/platform/requestctx"
	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
)

// CheckCSRF compares the submitted csrf_token form field (or X-CSRF-Token
// header) with the operator's session token.
func CheckCSRF(r *http.Request, operator requestctx.Operator) error {
	expected := strings.TrimSpace(operator.CSRFToken)
	if expected == "" {
		return apperrors.New(apperrors.CodeCSRFInvalid, "session has no csrf token")
	}
	submitted := strings.TrimSpace(r.Header.Get(apiclient.CSRFHeader))
	if submitted == "" {
		submitted = strings.TrimSpace(r.FormValue(apiclient.CSRFField))
	}
	if submitted == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(expected)) != 1 {
		return apperrors.New(apperrors.CodeCSRFInvalid, "csrf token mismatch")
	}
	return nil
}
