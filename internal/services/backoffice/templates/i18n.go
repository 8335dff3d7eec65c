package templates

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Localizer provides translated strings for components.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
	T(key string, fallback string) string
	Direction() string
	Locale() string
}

// T returns a translated string or the key if no localizer is available.
func T(loc Localizer, key message.Reference, args ...any) string {
	if loc == nil {
		if keyString, ok := key.(string); ok {
			return keyString
		}
		return ""
	}
	return loc.Sprintf(key, args...)
}

// label resolves key with a fallback, tolerating a nil localizer.
func label(loc Localizer, key string, fallback string) string {
	if loc == nil {
		if fallback != "" {
			return fallback
		}
		return key
	}
	return loc.T(key, fallback)
}

// fieldLabel resolves "fields.<name>" falling back to a humanized name.
func fieldLabel(loc Localizer, name string) string {
	return label(loc, "fields."+name, humanize(name))
}

// humanize turns "country_id" into "Country Id".
func humanize(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	if name == "" {
		return ""
	}
	return cases.Title(language.English).String(name)
}

func direction(loc Localizer) string {
	if loc == nil {
		return "ltr"
	}
	return loc.Direction()
}

func locale(loc Localizer) string {
	if loc == nil {
		return "en"
	}
	return loc.Locale()
}
