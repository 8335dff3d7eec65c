package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// BaseLocale is the canonical source locale for catalogs.
	BaseLocale = "en"
	// CoreNamespace holds the bootstrap strings shared by every page.
	CoreNamespace = "core"
)

// LocaleCatalog stores all flattened strings for one locale, grouped by namespace.
type LocaleCatalog struct {
	Locale     string
	Namespaces map[string]map[string]string
}

// Bundle contains all locale catalogs loaded from disk.
type Bundle struct {
	locales map[string]*LocaleCatalog
}

//go:embed locales/*/*.json
var embeddedCatalogFS embed.FS

var defaultBundle = mustLoadAndRegisterEmbedded()

// Default returns the process-wide embedded catalog bundle.
func Default() *Bundle {
	return defaultBundle
}

// LoadEmbedded loads catalog files embedded in this package.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedCatalogFS)
}

// LoadFromFS loads `locales/<locale>/<namespace>.json` files. Each file is a
// JSON object whose nested keys are flattened into dot paths.
func LoadFromFS(catalogFS fs.FS) (*Bundle, error) {
	bundle, err := loadFiles(catalogFS)
	if err != nil {
		return nil, err
	}
	if !bundle.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	return bundle, nil
}

// LoadOverlay loads the embedded bundle and lays the files found in dir over
// it. A blank dir returns the embedded bundle unchanged.
func LoadOverlay(dir string) (*Bundle, error) {
	base, err := LoadEmbedded()
	if err != nil {
		return nil, err
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return base, nil
	}
	overlay, err := loadFiles(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("load overlay %s: %w", dir, err)
	}
	return base.Overlay(overlay), nil
}

func loadFiles(catalogFS fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(catalogFS, "locales/*/*.json")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	bundle := &Bundle{locales: map[string]*LocaleCatalog{}}
	for _, path := range paths {
		data, err := fs.ReadFile(catalogFS, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		if err := bundle.addFile(path, data); err != nil {
			return nil, err
		}
	}
	return bundle, nil
}

func (b *Bundle) addFile(path string, data []byte) error {
	locale := filepath.Base(filepath.Dir(path))
	namespace := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if _, err := language.Parse(locale); err != nil {
		return fmt.Errorf("catalog %s: invalid locale %q: %w", path, locale, err)
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("catalog %s: invalid json", path)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return fmt.Errorf("catalog %s: top level must be an object", path)
	}

	messages := map[string]string{}
	flatten("", root, messages)

	localeCatalog, ok := b.locales[locale]
	if !ok {
		localeCatalog = &LocaleCatalog{Locale: locale, Namespaces: map[string]map[string]string{}}
		b.locales[locale] = localeCatalog
	}
	if _, exists := localeCatalog.Namespaces[namespace]; exists {
		return fmt.Errorf("catalog %s: namespace %q already defined for locale %q", path, namespace, locale)
	}
	localeCatalog.Namespaces[namespace] = messages
	return nil
}

// flatten walks nested objects and keeps string leaves only; other leaf
// types never resolve.
func flatten(prefix string, value gjson.Result, out map[string]string) {
	if value.IsObject() {
		value.ForEach(func(key, child gjson.Result) bool {
			name := key.String()
			if prefix != "" {
				name = prefix + "." + name
			}
			flatten(name, child, out)
			return true
		})
		return
	}
	if value.Type == gjson.String && prefix != "" {
		out[prefix] = value.Str
	}
}

// Overlay returns a new bundle where keys from other replace keys in b.
func (b *Bundle) Overlay(other *Bundle) *Bundle {
	out := &Bundle{locales: map[string]*LocaleCatalog{}}
	for _, source := range []*Bundle{b, other} {
		if source == nil {
			continue
		}
		for locale, cat := range source.locales {
			target, ok := out.locales[locale]
			if !ok {
				target = &LocaleCatalog{Locale: locale, Namespaces: map[string]map[string]string{}}
				out.locales[locale] = target
			}
			for namespace, messages := range cat.Namespaces {
				merged, ok := target.Namespaces[namespace]
				if !ok {
					merged = map[string]string{}
					target.Namespaces[namespace] = merged
				}
				for key, value := range messages {
					merged[key] = value
				}
			}
		}
	}
	return out
}

// Register registers catalog strings with x/text/message. Core keys are
// registered as-is; other namespaces are prefixed with "<namespace>.".
func (b *Bundle) Register() error {
	if b == nil {
		return nil
	}
	for _, locale := range b.Locales() {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		cat := b.locales[locale]
		for _, namespace := range b.Namespaces(locale) {
			messages := cat.Namespaces[namespace]
			keys := make([]string, 0, len(messages))
			for key := range messages {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				registered := key
				if namespace != CoreNamespace {
					registered = namespace + "." + key
				}
				if err := message.SetString(tag, registered, messages[key]); err != nil {
					return fmt.Errorf("register %s %s: %w", locale, registered, err)
				}
			}
		}
	}
	return nil
}

// HasLocale reports whether the locale exists in this bundle.
func (b *Bundle) HasLocale(locale string) bool {
	if b == nil {
		return false
	}
	_, ok := b.locales[strings.TrimSpace(locale)]
	return ok
}

// Locales returns all available locale identifiers.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, len(b.locales))
	for locale := range b.locales {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Namespaces returns sorted namespace names for a locale.
func (b *Bundle) Namespaces(locale string) []string {
	if b == nil {
		return nil
	}
	cat, ok := b.locales[strings.TrimSpace(locale)]
	if !ok || cat == nil {
		return nil
	}
	out := make([]string, 0, len(cat.Namespaces))
	for namespace := range cat.Namespaces {
		out = append(out, namespace)
	}
	sort.Strings(out)
	return out
}

// NamespaceMessages returns an exact namespace message map copy for a locale.
func (b *Bundle) NamespaceMessages(locale string, namespace string) map[string]string {
	if b == nil {
		return map[string]string{}
	}
	cat, ok := b.locales[strings.TrimSpace(locale)]
	if !ok || cat == nil {
		return map[string]string{}
	}
	messages, ok := cat.Namespaces[strings.TrimSpace(namespace)]
	if !ok {
		return map[string]string{}
	}
	return copyMap(messages)
}

// NamespaceMessagesWithFallback returns namespace messages and the locale that satisfied the lookup.
func (b *Bundle) NamespaceMessagesWithFallback(locale string, namespace string) (string, map[string]string) {
	trimmedLocale := strings.TrimSpace(locale)
	trimmedNamespace := strings.TrimSpace(namespace)
	if messages := b.NamespaceMessages(trimmedLocale, trimmedNamespace); len(messages) > 0 {
		return trimmedLocale, messages
	}
	if base := baseLanguage(trimmedLocale); base != "" && base != trimmedLocale {
		if messages := b.NamespaceMessages(base, trimmedNamespace); len(messages) > 0 {
			return base, messages
		}
	}
	return BaseLocale, b.NamespaceMessages(BaseLocale, trimmedNamespace)
}

// Message returns one core message value with base-locale fallback.
func (b *Bundle) Message(locale string, key string) (string, bool) {
	value, ok := b.Table(locale, CoreNamespace).Lookup(key)
	return value, ok
}

func baseLanguage(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}

func copyMap(source map[string]string) map[string]string {
	out := make(map[string]string, len(source))
	for key, value := range source {
		out[key] = value
	}
	return out
}

func mustLoadAndRegisterEmbedded() *Bundle {
	bundle, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	if err := bundle.Register(); err != nil {
		panic(err)
	}
	return bundle
}
