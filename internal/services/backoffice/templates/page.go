package templates

import (
	"encoding/json"
	"net/url"

	"github.com/a-h/templ"

	"github.com/louisbranch/backoffice/internal/platform/errors/i18n"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
	"github.com/louisbranch/backoffice/internal/services/shared/flash"
	"github.com/louisbranch/backoffice/internal/services/shared/i18nhttp"
)

// htmxScript is the pinned htmx build loaded by every page.
const htmxScript = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"

// htmxConfig swaps 4xx/5xx bodies too, so validation forms and error
// fragments reach the page.
const htmxConfig = `{"responseHandling":[{"code":"204","swap":false},{"code":"[23]..","swap":true},{"code":"[45]..","swap":true,"error":true}]}`

// NavItem is one sidebar link.
type NavItem struct {
	Label  string
	URL    string
	Active bool
}

// PageContext carries the shared layout state of a full page render.
type PageContext struct {
	Loc          Localizer
	CurrentPath  string
	CurrentQuery string
	OperatorName string
	CSRFToken    string
	Languages    []i18nhttp.LanguageOption
	Nav          []NavItem
	Notice       *flash.Notice
}

// Layout wraps body in the console shell. The body element carries the CSRF
// header so every htmx request is accepted by the mutation guard.
func Layout(page PageContext, title string, body templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		loc := page.Loc
		appTitle := label(loc, "app.title", "Back Office")
		h.raw("<!doctype html><html")
		h.attr("lang", locale(loc))
		h.attr("dir", direction(loc))
		h.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><meta name="htmx-config"`)
		h.attr("content", htmxConfig)
		h.raw("><title>")
		if title != "" {
			h.text(title + " - ")
		}
		h.text(appTitle)
		h.raw(`</title><link rel="stylesheet"`)
		h.attr("href", routepath.StaticPrefix+"app.css")
		h.raw("><script defer")
		h.attr("src", htmxScript)
		h.raw("></script></head><body")
		h.attr("hx-headers", csrfHeaders(page.CSRFToken))
		h.raw(`><header class="topbar"><a class="brand"`)
		h.attr("href", routepath.Root)
		h.raw(">")
		h.text(appTitle)
		h.raw("</a>")
		renderLanguages(h, loc, page.Languages)
		if page.OperatorName != "" {
			h.raw(`<span class="operator">`)
			h.text(T(loc, "app.signed_in_as", page.OperatorName))
			h.raw("</span>")
		}
		h.raw(`</header><div class="shell"><nav class="sidebar"`)
		h.attr("aria-label", label(loc, "app.resources", "Resources"))
		h.raw("><ul>")
		for _, item := range page.Nav {
			h.raw("<li><a")
			h.attr("href", item.URL)
			if item.Active {
				h.raw(` aria-current="page" class="active"`)
			}
			h.raw(">")
			h.text(item.Label)
			h.raw("</a></li>")
		}
		h.raw(`</ul></nav><main id="main">`)
		h.render(body)
		h.raw(`</main></div><div id="modal"></div><div id="toasts" aria-live="polite">`)
		if page.Notice != nil {
			renderToast(h, loc, *page.Notice)
		}
		h.raw("</div></body></html>")
	})
}

func renderLanguages(h *htmlWriter, loc Localizer, options []i18nhttp.LanguageOption) {
	if len(options) == 0 {
		return
	}
	h.raw(`<nav class="languages"`)
	h.attr("aria-label", label(loc, "app.language", "Language"))
	h.raw("><ul>")
	for _, option := range options {
		h.raw("<li><a")
		h.attr("href", option.URL)
		h.attr("hreflang", option.Tag)
		if option.Active {
			h.raw(` aria-current="true" class="active"`)
		}
		h.raw(">")
		h.text(option.Label)
		h.raw("</a></li>")
	}
	h.raw("</ul></nav>")
}

func csrfHeaders(token string) string {
	if token == "" {
		return "{}"
	}
	encoded, err := json.Marshal(map[string]string{"X-CSRF-Token": token})
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

// csrfInput renders the hidden token field for plain form posts.
func csrfInput(h *htmlWriter, token string) {
	if token == "" {
		return
	}
	h.raw(`<input type="hidden" name="csrf_token"`)
	h.attr("value", token)
	h.raw(">")
}

// ErrorPage renders a full-width error message body.
func ErrorPage(loc Localizer, titleKey string, message string) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section class="error-page" role="alert"><h1>`)
		h.text(label(loc, titleKey, label(loc, "error.title", "Something went wrong")))
		h.raw("</h1>")
		if message != "" {
			h.raw("<p>")
			h.text(message)
			h.raw("</p>")
		}
		h.raw("<p><a")
		h.attr("href", routepath.Root)
		h.raw(">")
		h.text(label(loc, "app.dashboard", "Dashboard"))
		h.raw("</a></p></section>")
	})
}

// ErrorTitleKey maps an error code to the title shown on error pages.
func ErrorTitleKey(code string) string {
	switch code {
	case i18n.CodeNotFound:
		return "error.not_found"
	case i18n.CodePermissionDenied:
		return "error.forbidden"
	case i18n.CodeUnauthenticated:
		return "error.unauthorized"
	default:
		return "error.title"
	}
}

// withQuery appends params to base.
func withQuery(base string, params url.Values) string {
	return routepath.WithQuery(base, params)
}

// LoginRequired asks the visitor to sign in. loginURL may be blank when the
// console has no sign-in page of its own.
func LoginRequired(loc Localizer, loginURL string, message string) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section class="error-page login-required"><h1>`)
		h.text(label(loc, "auth.login_required", "Please sign in to continue"))
		h.raw("</h1>")
		if message != "" {
			h.raw(`<p role="alert">`)
			h.text(message)
			h.raw("</p>")
		}
		if safeURL(loginURL) {
			h.raw(`<p><a class="button primary"`)
			h.attr("href", loginURL)
			h.raw(">")
			h.text(label(loc, "auth.sign_in", "Sign in"))
			h.raw("</a></p>")
		}
		h.raw("</section>")
	})
}
