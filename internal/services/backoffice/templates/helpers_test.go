package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"golang.org/x/net/html"

	"github.com/louisbranch/backoffice/internal/platform/i18n/catalog"
)

func englishTable(res string) catalog.Table {
	return catalog.Default().Table("en", "resources."+res, catalog.CoreNamespace)
}

func renderString(t *testing.T, component templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := component.Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	return b.String()
}

func parseFragment(t *testing.T, markup string) *html.Node {
	t.Helper()
	trimmed := strings.TrimSpace(markup)
	switch {
	case strings.HasPrefix(trimmed, "<!doctype"):
	case strings.HasPrefix(trimmed, "<tr"):
		markup = "<!doctype html><html><body><table><tbody>" + markup + "</tbody></table></body></html>"
	case strings.HasPrefix(trimmed, "<option"):
		markup = "<!doctype html><html><body><select>" + markup + "</select></body></html>"
	default:
		markup = "<!doctype html><html><body>" + markup + "</body></html>"
	}
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func attr(node *html.Node, key string) (string, bool) {
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func byTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == tag }
}

func byAttr(key string, value string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		got, ok := attr(n, key)
		return ok && got == value
	}
}

func byClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		got, _ := attr(n, "class")
		for _, part := range strings.Fields(got) {
			if part == class {
				return true
			}
		}
		return false
	}
}

func textOf(node *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return strings.TrimSpace(b.String())
}

func isHiddenNamed(n *html.Node, name string) bool {
	typ, _ := attr(n, "type")
	got, _ := attr(n, "name")
	return n.Data == "input" && typ == "hidden" && got == name
}
