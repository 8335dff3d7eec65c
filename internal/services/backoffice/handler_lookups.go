package backoffice

import (
	"log"
	"net/http"
	"strings"

	apperrors "github.com/louisbranch/backoffice/internal/platform/errors"
	"github.com/louisbranch/backoffice/internal/services/backoffice/templates"
	"github.com/louisbranch/backoffice/internal/services/shared/htmx"
)

// Lookup query parameters.
const (
	lookupParentParam   = "parent"
	lookupFromParam     = "from"
	lookupSelectedParam = "selected"
)

// handleLookupOptions renders <option> elements for a lookup kind. The parent
// comes from "parent", or from the parameter named by "from" when a parent
// select posts itself. Upstream failures still render a selectable list.
func (h *Handler) handleLookupOptions(w http.ResponseWriter, r *http.Request, kind string) {
	query := r.URL.Query()
	parent := strings.TrimSpace(query.Get(lookupParentParam))
	if parent == "" {
		if from := strings.TrimSpace(query.Get(lookupFromParam)); from != "" {
			parent = strings.TrimSpace(query.Get(from))
		}
	}
	lang := h.language(r)
	loc := h.table(lang, nil)

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	result, err := h.lookups.Options(ctx, h.lookupRequest(ctx, kind, parent, lang))
	if err != nil {
		log.Printf("lookup %s: %v", kind, err)
		status := http.StatusOK
		if apperrors.CodeOf(err) == apperrors.CodeNotFound {
			status = http.StatusNotFound
		}
		htmx.Fragment(w, r, status, templates.LookupUnavailable(loc))
		return
	}
	htmx.Fragment(w, r, http.StatusOK, templates.LookupOptions(loc, result, query.Get(lookupSelectedParam)))
}
