package backoffice

import (
	"log"
	"net/http"
	"strings"

	apperrors "github.com/louisbranch/backoffice/internal/platform/errors"
	"github.com/louisbranch/backoffice/internal/platform/requestctx"
	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
	"github.com/louisbranch/backoffice/internal/services/backoffice/session"
	"github.com/louisbranch/backoffice/internal/services/backoffice/templates"
	"github.com/louisbranch/backoffice/internal/services/shared/flash"
	"github.com/louisbranch/backoffice/internal/services/shared/httpx"
	"github.com/louisbranch/backoffice/internal/services/shared/i18nhttp"
	"github.com/louisbranch/backoffice/internal/services/shared/requestmeta"
)

// requireOperator resolves the signed session into the request operator.
//
// Only static assets, the health probe and the login handoff stay public.
// Mutating requests must also prove same origin and echo the session CSRF
// token. The operator's credentials ride along in context so every upstream
// call made for this request is authenticated as the operator.
func (h *Handler) requireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAuthExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token := session.TokenFromRequest(r)
		operator, err := h.sessions.Verify(token)
		if err != nil {
			if token != "" {
				log.Printf("backoffice auth: %v", err)
			}
			h.writeUnauthenticated(w, r, err)
			return
		}

		if !isSafeMethod(r.Method) {
			if err := requestmeta.CheckSameOrigin(r, h.policy); err != nil {
				h.writeFailure(w, r, err)
				return
			}
			if err := session.CheckCSRF(r, operator); err != nil {
				h.writeFailure(w, r, err)
				return
			}
		}

		ctx := requestctx.WithOperator(r.Context(), operator)
		ctx = apiclient.WithCredentials(ctx, apiclient.Credentials{
			Cookies:   upstreamCookies(r),
			CSRFToken: operator.CSRFToken,
			Bearer:    token,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// writeUnauthenticated sends htmx requests to the login page and renders
// the 401 page for everything else.
func (h *Handler) writeUnauthenticated(w http.ResponseWriter, r *http.Request, err error) {
	if httpx.IsHTMXRequest(r) {
		httpx.WriteHXRedirect(w, h.loginURL)
		return
	}
	if apperrors.CodeOf(err) != apperrors.CodeUnauthenticated {
		err = apperrors.Wrap(apperrors.CodeUnauthenticated, "session rejected", err)
	}
	lang := h.language(r)
	loc := h.table(lang, nil)
	page := h.publicPageContext(r, loc)
	title := loc.T(templates.ErrorTitleKey(string(apperrors.CodeUnauthenticated)), "")
	body := templates.LoginRequired(loc, h.loginURL, apperrors.PublicMessage(err, lang))
	h.renderPage(w, r, http.StatusUnauthorized, page, title, body)
}

// handleLogin is the public landing for operators without a session. The
// session itself is issued upstream.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	lang := h.language(r)
	loc := h.table(lang, nil)
	loginURL := h.loginURL
	if loginURL == routepath.Login {
		loginURL = ""
	}
	body := templates.LoginRequired(loc, loginURL, "")
	h.renderPage(w, r, http.StatusOK, h.publicPageContext(r, loc), loc.T("auth.login_required", ""), body)
}

// isAuthExempt returns true for paths that should bypass authentication.
func isAuthExempt(path string) bool {
	return strings.HasPrefix(path, routepath.StaticPrefix) || path == routepath.Healthz || path == routepath.Login
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// upstreamCookies forwards the browser cookies the upstream may need, minus
// the console's own UI state.
func upstreamCookies(r *http.Request) []*http.Cookie {
	var cookies []*http.Cookie
	for _, cookie := range r.Cookies() {
		switch cookie.Name {
		case flash.CookieName, i18nhttp.LangCookieName:
			continue
		}
		cookies = append(cookies, cookie)
	}
	return cookies
}
