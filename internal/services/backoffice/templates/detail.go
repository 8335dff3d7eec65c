package templates

import (
	"github.com/a-h/templ"

	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/authz"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
)

// DetailView is the read-only view of one record.
type DetailView struct {
	Def     resource.Definition
	Record  apiclient.Record
	Actions authz.RowActions
}

// Detail renders the columns and form fields of a record as a description
// list.
func Detail(loc Localizer, view DetailView) templ.Component {
	return component(func(h *htmlWriter) {
		def := view.Def
		id := view.Record.ID()
		h.raw(`<section class="record-detail"><header><h1>`)
		h.text(label(loc, "singular", humanize(def.ID)))
		h.raw(" #")
		h.text(id)
		h.raw(`</h1><nav class="toolbar"><a class="button link"`)
		h.attr("href", routepath.Resource(def.ID))
		h.raw(">")
		h.text(label(loc, "title", humanize(def.ID)))
		h.raw("</a>")
		if view.Actions.Edit {
			h.raw(`<button type="button" class="button" hx-target="#modal" hx-swap="innerHTML"`)
			h.attr("hx-get", routepath.RecordEdit(def.ID, id))
			h.raw(">")
			h.text(label(loc, "action.edit", "Edit"))
			h.raw("</button>")
		}
		if view.Actions.Delete {
			h.raw(`<button type="button" class="button danger" hx-target="#modal" hx-swap="innerHTML"`)
			h.attr("hx-get", routepath.RecordDelete(def.ID, id))
			h.raw(">")
			h.text(label(loc, "action.delete", "Delete"))
			h.raw("</button>")
		}
		h.raw("</nav></header><dl>")
		seen := map[string]bool{}
		for _, col := range def.Columns {
			seen[firstPath(col)] = true
			h.raw("<dt>")
			h.text(columnLabel(loc, col))
			h.raw("</dt><dd>")
			renderCell(h, loc, col, view.Record)
			h.raw("</dd>")
		}
		for _, field := range def.Fields {
			if seen[field.Name] || field.Kind == resource.FieldPassword || field.Kind == resource.FieldFile {
				continue
			}
			if !view.Record.Exists(field.Name) {
				continue
			}
			h.raw("<dt>")
			h.text(fieldLabel(loc, field.Name))
			h.raw("</dt><dd>")
			h.text(view.Record.String(field.Name))
			h.raw("</dd>")
		}
		h.raw("</dl></section>")
	})
}
