// Package htmx writes page and fragment responses for htmx and plain
// browser requests.
package htmx

import (
	"bytes"
	"context"
	"html"
	"log"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/louisbranch/backoffice/internal/services/shared/httpx"
)

const (
	// TriggerHeader asks htmx to dispatch client events after the swap.
	TriggerHeader = "HX-Trigger"
	// ReswapHeader overrides the hx-swap of the triggering element.
	ReswapHeader = "HX-Reswap"
	// RefreshTableEvent makes every table region re-request its rows.
	RefreshTableEvent = "refresh-table"
)

const htmlContentType = "text/html; charset=utf-8"

// TitleTag formats an escaped `<title>` element.
func TitleTag(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	return "<title>" + html.EscapeString(title) + "</title>"
}

// Trigger adds client events to the response.
func Trigger(w http.ResponseWriter, events ...string) {
	var names []string
	for _, event := range events {
		if event = strings.TrimSpace(event); event != "" {
			names = append(names, event)
		}
	}
	if len(names) == 0 {
		return
	}
	if existing := w.Header().Get(TriggerHeader); existing != "" {
		names = append([]string{existing}, names...)
	}
	w.Header().Set(TriggerHeader, strings.Join(names, ", "))
}

// Fragment renders components back to back with status. The first component
// is the primary swap; the rest are usually out-of-band fragments. Rendering
// is buffered so a failing component never leaves a half-written body.
func Fragment(w http.ResponseWriter, r *http.Request, status int, components ...templ.Component) {
	var body bytes.Buffer
	ctx := requestContext(r)
	for _, component := range components {
		if component == nil {
			continue
		}
		if err := component.Render(ctx, &body); err != nil {
			log.Printf("htmx: render fragment: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", htmlContentType)
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(body.Bytes())
}

// RenderPage renders a page for normal or htmx requests.
//
// htmx navigations receive fragment, or the <main> content of full when
// fragment is nil, prefixed with htmxTitle when the body has no title.
// Plain requests receive full, or fragment when full is nil.
func RenderPage(w http.ResponseWriter, r *http.Request, status int, fragment templ.Component, full templ.Component, htmxTitle string) {
	ctx := requestContext(r)
	if httpx.IsHTMXRequest(r) {
		target := fragment
		if target == nil {
			target = full
		}
		if target == nil {
			return
		}
		var capture bytes.Buffer
		if err := target.Render(ctx, &capture); err != nil {
			log.Printf("htmx: render page fragment: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		body := capture.Bytes()
		if fragment == nil {
			if mainContent, ok := extractMainContent(body); ok {
				body = mainContent
			}
		}
		writeBody(w, status, addTitleIfMissing(body, htmxTitle))
		return
	}

	if full == nil {
		full = fragment
	}
	if full == nil {
		return
	}
	var page bytes.Buffer
	if err := full.Render(ctx, &page); err != nil {
		log.Printf("htmx: render page: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeBody(w, status, page.Bytes())
}

func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", htmlContentType)
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func requestContext(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}
	return r.Context()
}

func addTitleIfMissing(body []byte, title string) []byte {
	if strings.TrimSpace(title) == "" {
		return body
	}
	if bytes.Contains(bytes.ToLower(body), []byte("<title")) {
		return body
	}
	return append([]byte(title), body...)
}

func extractMainContent(body []byte) ([]byte, bool) {
	start := bytes.Index(body, []byte("<main"))
	if start < 0 {
		return nil, false
	}
	openClose := bytes.Index(body[start:], []byte(">"))
	if openClose < 0 {
		return nil, false
	}
	contentStart := start + openClose + 1
	end := bytes.Index(body[contentStart:], []byte("</main>"))
	if end < 0 {
		return nil, false
	}
	return body[contentStart : contentStart+end], true
}
