package backoffice

import (
	"net/http"
	"net/url"

	"github.com/a-h/templ"

	apperrors "github.com/louisbranch/backoffice/internal/platform/errors"
	"github.com/louisbranch/backoffice/internal/platform/i18n/catalog"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
	"github.com/louisbranch/backoffice/internal/services/backoffice/templates"
	"github.com/louisbranch/backoffice/internal/services/shared/flash"
	"github.com/louisbranch/backoffice/internal/services/shared/htmx"
	"github.com/louisbranch/backoffice/internal/services/shared/httpx"
)

// hxCurrentURLHeader carries the browser URL of an htmx request.
const hxCurrentURLHeader = "HX-Current-URL"

// pageContext builds the shell state for a signed-in page and consumes the
// pending flash notice.
func (h *Handler) pageContext(w http.ResponseWriter, r *http.Request, loc catalog.Table, activeRes string) templates.PageContext {
	operator := operatorFrom(r)
	page := h.publicPageContext(r, loc)
	page.OperatorName = operator.Name
	page.CSRFToken = operator.CSRFToken
	page.Nav = h.navigation(r, loc.Locale(), activeRes)
	if notice, ok := flash.ReadAndClear(w, r, h.policy); ok {
		page.Notice = &notice
	}
	return page
}

func (h *Handler) publicPageContext(r *http.Request, loc catalog.Table) templates.PageContext {
	return templates.PageContext{
		Loc:          loc,
		CurrentPath:  r.URL.Path,
		CurrentQuery: r.URL.RawQuery,
		Languages:    h.negotiator.Options(loc.Locale(), r.URL.Path, r.URL.RawQuery),
	}
}

// navigation lists the resources the operator may open.
func (h *Handler) navigation(r *http.Request, lang string, activeRes string) []templates.NavItem {
	caps := capabilitiesFrom(r)
	var items []templates.NavItem
	for _, def := range h.catalog.All() {
		if !caps.CanView(def) {
			continue
		}
		items = append(items, templates.NavItem{
			Label:  h.bundle.Table(lang, def.TranslationSource()).T("title", def.ID),
			URL:    routepath.Resource(def.ID),
			Active: def.ID == activeRes,
		})
	}
	return items
}

// renderPage renders body inside the layout; htmx navigations get the main
// content only.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, page templates.PageContext, title string, body templ.Component) {
	appTitle := page.Loc.T("app.title", "Back Office")
	htmxTitle := appTitle
	if title != "" {
		htmxTitle = title + " - " + appTitle
	}
	htmx.RenderPage(w, r, status, nil, templates.Layout(page, title, body), htmx.TitleTag(htmxTitle))
}

// writeFailure reports err as a toast to htmx callers and as an error page
// otherwise. The status follows the error code.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	lang := h.language(r)
	status := apperrors.HTTPStatus(err)
	message := apperrors.PublicMessage(err, lang)
	if httpx.IsHTMXRequest(r) {
		w.Header().Set(htmx.ReswapHeader, "none")
		htmx.Fragment(w, r, status, templates.ToastMessage(flash.KindError, message))
		return
	}
	loc := h.table(lang, nil)
	titleKey := templates.ErrorTitleKey(string(apperrors.CodeOf(err)))
	page := h.pageContext(w, r, loc, "")
	h.renderPage(w, r, status, page, loc.T(titleKey, ""), templates.ErrorPage(loc, titleKey, message))
}

func (h *Handler) writeNotFound(w http.ResponseWriter, r *http.Request, what string) {
	h.writeFailure(w, r, apperrors.WithMetadata(apperrors.CodeNotFound, "not found: "+what, map[string]string{"Resource": what}))
}

func (h *Handler) writeForbidden(w http.ResponseWriter, r *http.Request, def resource.Definition) {
	h.writeFailure(w, r, errForbidden(def))
}

func errForbidden(def resource.Definition) error {
	return apperrors.New(apperrors.CodePermissionDenied, "operator may not access "+def.ID)
}

// mutationReply is the response to a successful mutation.
type mutationReply struct {
	notice flash.Notice
	// message is the upstream confirmation; it replaces the notice text in
	// htmx toasts.
	message string
	// closeModal clears the modal container out of band.
	closeModal bool
	// leaving is the page that no longer exists after the mutation, such as
	// the detail page of a deleted record.
	leaving string
	extra   []templ.Component
}

// writeMutationSuccess refreshes the table and toasts the outcome for htmx
// callers. Plain form posts get a flash notice and a redirect to the list.
func (h *Handler) writeMutationSuccess(w http.ResponseWriter, r *http.Request, loc catalog.Table, def resource.Definition, reply mutationReply) {
	listURL := routepath.Resource(def.ID)
	if !httpx.IsHTMXRequest(r) {
		flash.Write(w, r, reply.notice, h.policy)
		httpx.WriteRedirect(w, r, listURL)
		return
	}
	if reply.leaving != "" && currentPath(r) == reply.leaving {
		flash.Write(w, r, reply.notice, h.policy)
		httpx.WriteHXRedirect(w, listURL)
		return
	}
	htmx.Trigger(w, htmx.RefreshTableEvent)
	components := append([]templ.Component{}, reply.extra...)
	if reply.closeModal {
		components = append(components, templates.CloseModal())
	}
	if reply.message != "" {
		components = append(components, templates.ToastMessage(reply.notice.Kind, reply.message))
	} else {
		components = append(components, templates.Toast(loc, reply.notice))
	}
	htmx.Fragment(w, r, http.StatusOK, components...)
}

// currentPath returns the browser path an htmx request was issued from.
func currentPath(r *http.Request) string {
	raw := r.Header.Get(hxCurrentURLHeader)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.Path
}
