// Package i18nhttp negotiates the console language per request.
package i18nhttp

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/louisbranch/backoffice/internal/platform/i18n/catalog"
	"github.com/louisbranch/backoffice/internal/platform/requestctx"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the operator's language preference.
	LangCookieName = "bo_lang"
)

// LanguageOption is one entry of the language switcher.
type LanguageOption struct {
	Tag    string
	Label  string
	URL    string
	Active bool
}

// Negotiator picks one of the catalog locales for each request.
type Negotiator struct {
	supported []language.Tag
	matcher   language.Matcher
	fallback  language.Tag
}

// NewNegotiator builds a negotiator over the bundle locales. fallback is used
// when nothing the client asks for is supported; a blank or unsupported
// fallback becomes the catalog base locale.
func NewNegotiator(bundle *catalog.Bundle, fallback string) *Negotiator {
	if bundle == nil {
		bundle = catalog.Default()
	}
	base := language.Make(catalog.BaseLocale)
	supported := []language.Tag{base}
	for _, locale := range bundle.Locales() {
		tag, err := language.Parse(locale)
		if err != nil || tag == base {
			continue
		}
		supported = append(supported, tag)
	}
	n := &Negotiator{supported: supported, matcher: language.NewMatcher(supported), fallback: base}
	if tag, ok := n.Parse(fallback); ok {
		n.fallback = tag
	}
	return n
}

// Supported returns the supported tags, base locale first.
func (n *Negotiator) Supported() []language.Tag {
	return append([]language.Tag(nil), n.supported...)
}

// Parse maps value to a supported tag.
func (n *Negotiator) Parse(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Und, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return language.Und, false
	}
	matched, _, confidence := n.matcher.Match(tag)
	if confidence < language.High {
		return language.Und, false
	}
	return n.supportedBase(matched), true
}

// Resolve determines the language for r: query param, then cookie, then
// Accept-Language, then the fallback. The bool reports whether the query
// param chose it and should be persisted.
func (n *Negotiator) Resolve(r *http.Request) (language.Tag, bool) {
	if r == nil {
		return n.fallback, false
	}
	if tag, ok := n.Parse(r.URL.Query().Get(LangParam)); ok {
		return tag, true
	}
	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := n.Parse(cookie.Value); ok {
			return tag, false
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			matched, _, confidence := n.matcher.Match(tags...)
			if confidence >= language.Low {
				return n.supportedBase(matched), false
			}
		}
	}
	return n.fallback, false
}

// Middleware stores the negotiated language in the request context and
// persists an explicit choice as a cookie.
func (n *Negotiator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag, persist := n.Resolve(r)
		if persist {
			SetLanguageCookie(w, tag)
		}
		next.ServeHTTP(w, r.WithContext(requestctx.WithLanguage(r.Context(), tag.String())))
	})
}

// Options returns the language switcher entries for the current URL.
func (n *Negotiator) Options(activeLang string, path string, rawQuery string) []LanguageOption {
	active, ok := n.Parse(activeLang)
	if !ok {
		active = n.fallback
	}
	options := make([]LanguageOption, 0, len(n.supported))
	for _, tag := range n.supported {
		label := display.Self.Name(tag)
		if strings.TrimSpace(label) == "" {
			label = tag.String()
		}
		options = append(options, LanguageOption{
			Tag:    tag.String(),
			Label:  label,
			URL:    LanguageURL(path, rawQuery, tag.String()),
			Active: tag == active,
		})
	}
	return options
}

// supportedBase maps a matcher result, which may carry -u- extensions, back
// to the supported tag it came from.
func (n *Negotiator) supportedBase(tag language.Tag) language.Tag {
	base, _ := tag.Base()
	for _, candidate := range n.supported {
		if candidate == tag {
			return candidate
		}
		if candidateBase, _ := candidate.Base(); candidateBase == base {
			return candidate
		}
	}
	return n.fallback
}

// SetLanguageCookie persists the selected language on the response.
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// LanguageURL returns path with the language param replaced.
func LanguageURL(path string, rawQuery string, tag string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "/"
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}
	query.Set(LangParam, tag)
	return (&url.URL{Path: path, RawQuery: query.Encode()}).String()
}
