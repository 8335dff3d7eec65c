package templates

import (
	"github.com/a-h/templ"

	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
)

// CloseModal empties the modal container out of band.
func CloseModal() templ.Component {
	return templ.Raw(`<div id="modal" hx-swap-oob="innerHTML"></div>`)
}

// ConfirmDelete renders the delete confirmation dialog. The form posts
// confirm=yes; deletes without it are refused before reaching the upstream.
func ConfirmDelete(loc Localizer, def resource.Definition, id string, csrfToken string) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div class="dialog" role="alertdialog" aria-modal="true" aria-labelledby="confirm-title"><h2 id="confirm-title">`)
		h.text(label(loc, "action.delete", "Delete"))
		h.raw("</h2><p>")
		h.text(label(loc, "action.confirm_delete", "Are you sure you want to delete this record?"))
		h.raw(`</p><form method="post" hx-swap="none"`)
		h.attr("action", routepath.RecordDelete(def.ID, id))
		h.attr("hx-post", routepath.RecordDelete(def.ID, id))
		h.raw(">")
		csrfInput(h, csrfToken)
		h.raw(`<input type="hidden" name="confirm" value="yes"><div class="form-actions"><button type="submit" class="button danger">`)
		h.text(label(loc, "action.confirm", "Confirm"))
		h.raw(`</button><button type="button" class="button" hx-on:click="document.getElementById('modal').innerHTML=''">`)
		h.text(label(loc, "action.cancel", "Cancel"))
		h.raw("</button></div></form></div>")
	})
}
