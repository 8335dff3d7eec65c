package templates

import (
	"github.com/a-h/templ"

	"github.com/louisbranch/backoffice/internal/services/backoffice/lookups"
)

// LookupOptions renders the <option> list of a lookup select. A scoped lookup
// without a parent renders a single disabled prompt; stale snapshots carry a
// disabled warning option ahead of the choices.
func LookupOptions(loc Localizer, result lookups.Result, selected string) templ.Component {
	return component(func(h *htmlWriter) {
		renderLookupOptions(h, loc, result, selected, label(loc, "form.select", "Select..."))
	})
}

func renderLookupOptions(h *htmlWriter, loc Localizer, result lookups.Result, selected string, blank string) {
	if result.NeedsParent {
		h.raw(`<option value="" disabled selected>`)
		h.text(label(loc, "lookup.select_parent", "Select parent first"))
		h.raw("</option>")
		return
	}
	h.raw(`<option value="">`)
	h.text(blank)
	h.raw("</option>")
	if result.Stale {
		h.raw(`<option value="" disabled class="stale">`)
		h.text(label(loc, "lookup.stale", "Showing cached options"))
		h.raw("</option>")
	}
	for _, option := range result.Options {
		renderOption(h, option.Value, option.Label, option.Value == selected && selected != "")
	}
}

// LookupUnavailable renders the option list shown when a lookup failed and no
// snapshot exists.
func LookupUnavailable(loc Localizer) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<option value="" disabled selected>`)
		h.text(label(loc, "lookup.unavailable", "Options unavailable"))
		h.raw("</option>")
	})
}

func renderOption(h *htmlWriter, value string, text string, selected bool) {
	h.raw("<option")
	h.attr("value", value)
	h.flag("selected", selected)
	h.raw(">")
	h.text(text)
	h.raw("</option>")
}
