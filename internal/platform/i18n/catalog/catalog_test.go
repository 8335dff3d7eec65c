package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	for _, locale := range []string{"en", "ar"} {
		if !bundle.HasLocale(locale) {
			t.Fatalf("expected locale %s", locale)
		}
		for _, namespace := range []string{"core", "errors", "resources"} {
			if got := len(bundle.NamespaceMessages(locale, namespace)); got == 0 {
				t.Fatalf("expected %s %s messages", locale, namespace)
			}
		}
	}
}

func TestEmbeddedArabicCoversEnglishCore(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	arabic := bundle.NamespaceMessages("ar", "core")
	for key := range bundle.NamespaceMessages("en", "core") {
		if strings.HasPrefix(key, "fields.") || strings.HasPrefix(key, "options.") {
			continue
		}
		if _, ok := arabic[key]; !ok {
			t.Errorf("ar core missing %q", key)
		}
	}
}

func TestLoadFromFSFlattensNestedKeys(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en/core.json"), `{
		"direction": "ltr",
		"action": {"save": "Save", "count": 3},
		"list": ["a", "b"]
	}`)

	bundle, err := LoadFromFS(os.DirFS(tempDir))
	if err != nil {
		t.Fatalf("LoadFromFS() error = %v", err)
	}
	messages := bundle.NamespaceMessages("en", "core")
	if messages["action.save"] != "Save" {
		t.Fatalf("action.save = %q", messages["action.save"])
	}
	if _, ok := messages["action.count"]; ok {
		t.Fatal("numeric leaves must not resolve")
	}
	if _, ok := messages["list"]; ok {
		t.Fatal("array leaves must not resolve")
	}
}

func TestLoadFromFSRequiresBaseLocale(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/ar/core.json"), `{"direction":"rtl"}`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected missing base locale error")
	}
}

func TestLoadFromFSRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
	}{
		{name: "invalid json", path: "locales/en/core.json", content: `{"a":`},
		{name: "array root", path: "locales/en/core.json", content: `["a"]`},
		{name: "bad locale", path: "locales/not_a_locale!/core.json", content: `{}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tempDir := t.TempDir()
			mustWriteFile(t, filepath.Join(tempDir, tc.path), tc.content)
			if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNamespaceMessagesWithFallback(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	resolved, messages := bundle.NamespaceMessagesWithFallback("fr-FR", "errors")
	if resolved != BaseLocale {
		t.Fatalf("resolved locale = %q, want %s", resolved, BaseLocale)
	}
	if len(messages) == 0 {
		t.Fatal("expected fallback errors namespace messages")
	}

	resolved, _ = bundle.NamespaceMessagesWithFallback("ar-JO", "errors")
	if resolved != "ar" {
		t.Fatalf("resolved locale = %q, want ar", resolved)
	}
}

func TestTablePageSourceWinsOverCore(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en/core.json"), `{
		"direction": "ltr",
		"title": "Back Office",
		"fields": {"name": "Name", "email": "Email"}
	}`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/en/resources.json"), `{
		"vendors": {"title": "Vendors", "fields": {"name": "Store name"}}
	}`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/ar/core.json"), `{"direction": "rtl", "fields": {"email": "البريد"}}`)

	bundle, err := LoadFromFS(os.DirFS(tempDir))
	if err != nil {
		t.Fatalf("LoadFromFS() error = %v", err)
	}

	table := bundle.Table("en", "resources.vendors", CoreNamespace)
	if got := table.T("title", ""); got != "Vendors" {
		t.Fatalf("title = %q, want Vendors", got)
	}
	if got := table.T("fields.name", ""); got != "Store name" {
		t.Fatalf("fields.name = %q, want Store name", got)
	}
	if got := table.T("fields.email", ""); got != "Email" {
		t.Fatalf("fields.email = %q, want Email", got)
	}

	arabic := bundle.Table("ar", "resources.vendors", CoreNamespace)
	if got := arabic.T("fields.email", ""); got != "البريد" {
		t.Fatalf("ar fields.email = %q", got)
	}
	if got := arabic.T("fields.name", ""); got != "Store name" {
		t.Fatalf("ar fields.name fallback = %q", got)
	}
	if arabic.Direction() != DirectionRTL {
		t.Fatalf("ar direction = %q", arabic.Direction())
	}
	if table.Direction() != DirectionLTR {
		t.Fatalf("en direction = %q", table.Direction())
	}
}

func TestTableTFallbacks(t *testing.T) {
	table := FromMaps("en", map[string]string{"known": "Known"})

	if got := table.T("known", "fallback"); got != "Known" {
		t.Fatalf("T(known) = %q", got)
	}
	if got := table.T("missing", "fallback"); got != "fallback" {
		t.Fatalf("T(missing) = %q", got)
	}
	if got := table.T("missing.key", ""); got != "missing.key" {
		t.Fatalf("T(missing.key) = %q", got)
	}
	if got := table.Sprintf("missing"); got != "missing" {
		t.Fatalf("Sprintf(missing) = %q", got)
	}
}

func TestTableSprintfFormatsArgs(t *testing.T) {
	table := FromMaps("en", map[string]string{"pagination.showing": "Showing %d-%d of %d"})

	if got := table.Sprintf("pagination.showing", 1, 25, 237); got != "Showing 1-25 of 237" {
		t.Fatalf("Sprintf() = %q", got)
	}
}

func TestOverlayReplacesKeys(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en/core.json"), `{"action": {"save": "Store"}}`)

	bundle, err := LoadOverlay(tempDir)
	if err != nil {
		t.Fatalf("LoadOverlay() error = %v", err)
	}
	table := bundle.Table("en", CoreNamespace)
	if got := table.T("action.save", ""); got != "Store" {
		t.Fatalf("action.save = %q, want Store", got)
	}
	if got := table.T("action.delete", ""); got != "Delete" {
		t.Fatalf("action.delete = %q, want Delete", got)
	}
}

func TestLoadOverlayBlankDirReturnsEmbedded(t *testing.T) {
	bundle, err := LoadOverlay("  ")
	if err != nil {
		t.Fatalf("LoadOverlay() error = %v", err)
	}
	if !bundle.HasLocale("ar") {
		t.Fatal("expected embedded ar locale")
	}
}

func TestDefaultMessage(t *testing.T) {
	value, ok := Default().Message("ar", "action.save")
	if !ok || value != "حفظ" {
		t.Fatalf("Message(ar, action.save) = %q, %v", value, ok)
	}
}

func mustWriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
