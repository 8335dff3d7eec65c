package templates

import (
	"net/url"

	"github.com/a-h/templ"

	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
)

// ActionParam names the custom action posted by toolbar and row controls.
const ActionParam = "op"

// ListView is the list page of one resource.
type ListView struct {
	Def       resource.Definition
	CanCreate bool
	CanUpload bool
	// Toolbar lists the resource-wide actions the operator may run.
	Toolbar   []resource.Action
	Filters   FiltersView
	Table     TableView
	CSRFToken string
}

// ResourcePage renders the toolbar, filters and table of a resource.
func ResourcePage(loc Localizer, view ListView) templ.Component {
	return component(func(h *htmlWriter) {
		def := view.Def
		h.raw(`<section class="resource"`)
		h.attr("data-resource", def.ID)
		h.raw(`><header class="resource-header"><h1>`)
		h.text(label(loc, "title", humanize(def.ID)))
		h.raw(`</h1><div class="toolbar">`)
		if view.CanCreate {
			h.raw(`<button type="button" class="button primary" hx-target="#modal" hx-swap="innerHTML"`)
			h.attr("hx-get", routepath.ResourceNewURL(def.ID))
			h.raw(">")
			h.text(label(loc, "action.new", "New"))
			h.raw("</button>")
		}
		exportURL := routepath.ResourceExportURL(def.ID)
		h.raw(`<a class="button" download`)
		h.attr("href", withQuery(exportURL, view.Filters.Values))
		h.attr("data-href", exportURL)
		h.attr("hx-on:click", "event.preventDefault(); window.location = this.dataset.href + '?' + new URLSearchParams(new FormData(document.getElementById('"+FiltersID(def.ID)+"'))).toString()")
		h.raw(">")
		h.text(label(loc, "action.export", "Export"))
		h.raw("</a>")
		for _, action := range view.Toolbar {
			renderToolbarAction(h, loc, def, action, view.CSRFToken)
		}
		h.raw("</div></header>")
		if view.CanUpload && def.Upload != nil {
			renderUpload(h, loc, def, view.CSRFToken)
		}
		renderFilters(h, loc, view.Filters)
		renderTable(h, loc, view.Table)
		h.raw("</section>")
	})
}

func renderToolbarAction(h *htmlWriter, loc Localizer, def resource.Definition, action resource.Action, csrfToken string) {
	target := routepath.ResourceActionURL(def.ID)
	h.raw(`<form class="toolbar-action" method="post" hx-swap="none"`)
	h.attr("action", target)
	h.attr("hx-post", target)
	if action.Confirm {
		h.attr("hx-confirm", label(loc, "action.confirm_action", "Are you sure?"))
	}
	h.raw(">")
	csrfInput(h, csrfToken)
	h.raw(`<input type="hidden"`)
	h.attr("name", ActionParam)
	h.attr("value", action.Name)
	h.raw(">")
	inputs := FormView{Def: def, Values: url.Values{}}
	for _, field := range action.Inputs {
		renderField(h, loc, inputs, field, resource.Field{})
	}
	h.raw(`<button type="submit" class="button">`)
	h.text(actionLabel(loc, action))
	h.raw("</button></form>")
}

func renderUpload(h *htmlWriter, loc Localizer, def resource.Definition, csrfToken string) {
	target := routepath.ResourceUploadURL(def.ID)
	h.raw(`<form class="upload" method="post" enctype="multipart/form-data" hx-encoding="multipart/form-data" hx-trigger="change" hx-target="#upload-results" hx-swap="innerHTML"`)
	h.attr("action", target)
	h.attr("hx-post", target)
	h.raw("><label>")
	h.text(label(loc, "upload", label(loc, "action.upload", "Upload")))
	h.raw(` <input type="file" multiple`)
	h.attr("name", def.Upload.Field)
	h.attr("accept", "image/*")
	h.raw("></label>")
	csrfInput(h, csrfToken)
	h.raw(`<noscript><button type="submit" class="button">`)
	h.text(label(loc, "action.upload", "Upload"))
	h.raw(`</button></noscript></form><div id="upload-results" aria-live="polite"></div>`)
}

// UploadResults lists the URLs returned for an immediate upload.
func UploadResults(loc Localizer, urls []string) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section class="upload-results"><h3>`)
		h.text(label(loc, "upload.title", "Uploaded files"))
		h.raw("</h3>")
		if len(urls) == 0 {
			h.raw("<p>")
			h.text(label(loc, "upload.none", "No files selected"))
			h.raw("</p></section>")
			return
		}
		h.raw("<ul>")
		for _, link := range urls {
			h.raw("<li>")
			if safeURL(link) {
				h.raw(`<img class="thumb" alt=""`)
				h.attr("src", link)
				h.raw("><a")
				h.attr("href", link)
				h.raw(` target="_blank" rel="noopener">`)
				h.text(link)
				h.raw("</a>")
			} else {
				h.text(link)
			}
			h.raw("</li>")
		}
		h.raw("</ul></section>")
	})
}
