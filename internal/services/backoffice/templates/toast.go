package templates

import (
	"github.com/a-h/templ"

	"github.com/louisbranch/backoffice/internal/services/shared/flash"
)

// Toast renders an out-of-band notice appended to the toast stack.
func Toast(loc Localizer, notice flash.Notice) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div id="toasts" hx-swap-oob="beforeend">`)
		renderToast(h, loc, notice)
		h.raw("</div>")
	})
}

// ToastMessage renders an out-of-band notice with literal text, used when
// the message comes from the upstream rather than the catalog.
func ToastMessage(kind flash.Kind, message string) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div id="toasts" hx-swap-oob="beforeend">`)
		renderToastText(h, kind, message)
		h.raw("</div>")
	})
}

func renderToast(h *htmlWriter, loc Localizer, notice flash.Notice) {
	if notice.Count > 0 {
		renderToastText(h, notice.Kind, T(loc, notice.Key, notice.Count))
		return
	}
	renderToastText(h, notice.Kind, label(loc, notice.Key, ""))
}

func renderToastText(h *htmlWriter, kind flash.Kind, message string) {
	role := "status"
	if kind == flash.KindError || kind == flash.KindWarning {
		role = "alert"
	}
	h.raw("<div")
	h.attr("class", "toast toast-"+string(kind))
	h.attr("role", role)
	h.raw(` hx-on:click="this.remove()">`)
	h.text(message)
	h.raw("</div>")
}
