package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/message"
)

// Direction values carried by the "direction" key of a table.
const (
	DirectionLTR = "ltr"
	DirectionRTL = "rtl"
)

// Table is a merged, read-only view over one or more string sources for a
// locale. Earlier sources win over later ones, and every source in the
// requested locale wins over the base-locale fallback.
type Table struct {
	locale string
	layers []map[string]string
}

// Table builds a lookup table for locale from the named sources. A source is
// either a namespace ("core") or a namespace plus subtree
// ("resources.vendors"), whose keys are exposed without the subtree prefix.
func (b *Bundle) Table(locale string, sources ...string) Table {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = BaseLocale
	}
	if len(sources) == 0 {
		sources = []string{CoreNamespace}
	}
	table := Table{locale: locale}
	if b == nil {
		return table
	}
	chain := []string{locale}
	if base := baseLanguage(locale); base != "" && base != locale {
		chain = append(chain, base)
	}
	if locale != BaseLocale {
		chain = append(chain, BaseLocale)
	}
	for _, candidate := range chain {
		cat, ok := b.locales[candidate]
		if !ok || cat == nil {
			continue
		}
		for _, source := range sources {
			namespace, prefix := splitSource(source)
			messages, ok := cat.Namespaces[namespace]
			if !ok {
				continue
			}
			table.layers = append(table.layers, subtree(messages, prefix))
		}
	}
	return table
}

// FromMaps builds a table directly from flattened layers, earliest first.
func FromMaps(locale string, layers ...map[string]string) Table {
	return Table{locale: locale, layers: layers}
}

// Locale returns the locale the table was requested for.
func (t Table) Locale() string {
	return t.locale
}

// Lookup resolves a dot-separated key.
func (t Table) Lookup(key string) (string, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false
	}
	for _, layer := range t.layers {
		if value, ok := layer[key]; ok {
			return value, true
		}
	}
	return "", false
}

// T resolves key, returning fallback when the key is missing or is not a
// string leaf, and the key itself when fallback is also empty.
func (t Table) T(key string, fallback string) string {
	if value, ok := t.Lookup(key); ok {
		return value
	}
	if fallback != "" {
		return fallback
	}
	return key
}

// Sprintf satisfies the templates Localizer contract.
func (t Table) Sprintf(key message.Reference, args ...any) string {
	keyString, ok := key.(string)
	if !ok {
		return ""
	}
	value := t.T(keyString, "")
	if len(args) == 0 {
		return value
	}
	return fmt.Sprintf(value, args...)
}

// Direction returns the text direction declared by the table, "ltr" unless
// the table says "rtl".
func (t Table) Direction() string {
	if strings.EqualFold(strings.TrimSpace(t.T("direction", DirectionLTR)), DirectionRTL) {
		return DirectionRTL
	}
	return DirectionLTR
}

func splitSource(source string) (string, string) {
	source = strings.TrimSpace(source)
	namespace, prefix, found := strings.Cut(source, ".")
	if !found {
		return source, ""
	}
	return namespace, prefix + "."
}

func subtree(messages map[string]string, prefix string) map[string]string {
	if prefix == "" {
		return messages
	}
	out := map[string]string{}
	for key, value := range messages {
		if rest, ok := strings.CutPrefix(key, prefix); ok {
			out[rest] = value
		}
	}
	return out
}
