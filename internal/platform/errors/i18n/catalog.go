// Package i18n renders localized messages for error codes.
package i18n

import (
	"strings"
	"sync"
	"text/template"

	"github.com/louisbranch/backoffice/internal/platform/i18n/catalog"
)

// Code is an error code string. It mirrors errors.Code without importing it.
type Code = string

const errorsNamespace = "errors"

// Catalog holds the compiled error messages of one locale.
type Catalog struct {
	locale string
	// compiled is nil for messages whose template did not parse; those render
	// verbatim.
	compiled map[Code]*template.Template
	raw      map[Code]string
}

var (
	mu      sync.RWMutex
	source  *catalog.Bundle
	byLocal = map[string]*Catalog{}
)

// UseBundle switches the message source, such as an overlay loaded from a
// strings directory. Cached catalogs are dropped; registered ones too.
func UseBundle(bundle *catalog.Bundle) {
	mu.Lock()
	defer mu.Unlock()
	source = bundle
	byLocal = map[string]*Catalog{}
}

// GetCatalog returns the catalog for locale, falling back to the closest
// loaded locale and then the base locale.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = catalog.BaseLocale
	}
	mu.RLock()
	cat, ok := byLocal[requested]
	bundle := source
	mu.RUnlock()
	if ok {
		return cat
	}
	if bundle == nil {
		bundle = catalog.Default()
	}
	resolved, messages := bundle.NamespaceMessagesWithFallback(requested, errorsNamespace)

	mu.Lock()
	defer mu.Unlock()
	if cat, ok := byLocal[resolved]; ok {
		byLocal[requested] = cat
		return cat
	}
	cat = NewCatalog(resolved, messages)
	byLocal[resolved] = cat
	byLocal[requested] = cat
	return cat
}

// RegisterCatalog pins cat for locale until the next UseBundle.
func RegisterCatalog(locale string, cat *Catalog) {
	mu.Lock()
	defer mu.Unlock()
	byLocal[locale] = cat
}

// NewCatalog compiles messages for locale.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	cat := &Catalog{
		locale:   locale,
		compiled: make(map[Code]*template.Template, len(messages)),
		raw:      make(map[Code]string, len(messages)),
	}
	for code, text := range messages {
		cat.raw[code] = text
		tmpl, err := template.New(code).Option("missingkey=zero").Parse(text)
		if err != nil {
			cat.compiled[code] = nil
			continue
		}
		cat.compiled[code] = tmpl
	}
	return cat
}

// Locale returns the locale the messages were resolved from.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for code with metadata. Unknown codes render as
// the code itself; missing metadata keys render empty.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	text, ok := c.raw[code]
	if !ok {
		return code
	}
	tmpl := c.compiled[code]
	if tmpl == nil {
		return text
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, metadata); err != nil {
		return text
	}
	return strings.TrimSpace(b.String())
}
