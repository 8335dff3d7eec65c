package templates

import (
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/louisbranch/backoffice/internal/platform/timeouts"
	"github.com/louisbranch/backoffice/internal/services/backoffice/lookups"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
)

// searchDelay is the htmx debounce of the search box.
var searchDelay = strconv.FormatInt(timeouts.SearchDebounce.Milliseconds(), 10) + "ms"

// FiltersView is the filter form of a resource list.
type FiltersView struct {
	Def    resource.Definition
	Values url.Values
	// Lookups holds the options of lookup filters keyed by lookup kind.
	Lookups map[string]lookups.Result
}

// Filters renders the filter form. Selects and dates refresh on change; the
// search box waits for a 300ms pause, and a newer request replaces any
// in-flight one.
func Filters(loc Localizer, view FiltersView) templ.Component {
	return component(func(h *htmlWriter) {
		renderFilters(h, loc, view)
	})
}

func renderFilters(h *htmlWriter, loc Localizer, view FiltersView) {
	def := view.Def
	rows := routepath.ResourceRowsURL(def.ID)
	target := "#" + TableID(def.ID)
	h.raw(`<form class="filters" role="search" hx-swap="outerHTML" hx-sync="this:replace"`)
	h.attr("id", FiltersID(def.ID))
	h.attr("action", routepath.Resource(def.ID))
	h.attr("hx-get", rows)
	h.attr("hx-target", target)
	h.attr("hx-vals", generationVals)
	h.raw(` hx-trigger="change[event.target.type!=='search'], submit">`)
	for _, filter := range def.Filters {
		value := view.Values.Get(filter.Name)
		h.raw(`<div class="filter">`)
		switch filter.Kind {
		case resource.FilterSearch:
			h.raw(`<input type="search" autocomplete="off" hx-trigger="input changed delay:` + searchDelay + `, search" hx-include="closest form" hx-sync="closest form:replace" hx-swap="outerHTML"`)
			h.attr("name", filter.Name)
			h.attr("value", value)
			h.attr("aria-label", label(loc, "action.search", "Search"))
			h.attr("placeholder", label(loc, "filter.search_placeholder", "Search..."))
			h.attr("hx-get", rows)
			h.attr("hx-target", target)
			h.attr("hx-vals", generationVals)
			h.raw(">")
		case resource.FilterText:
			filterLabel(h, loc, filter.Name, "flt-"+filter.Name)
			h.raw(`<input type="text"`)
			h.attr("id", "flt-"+filter.Name)
			h.attr("name", filter.Name)
			h.attr("value", value)
			h.raw(">")
		case resource.FilterSelect:
			filterLabel(h, loc, filter.Name, "flt-"+filter.Name)
			openFilterSelect(h, loc, filter.Name)
			for _, option := range filter.Options {
				renderOption(h, option.Value, optionLabel(loc, option), option.Value == value)
			}
			h.raw("</select>")
		case resource.FilterBool:
			filterLabel(h, loc, filter.Name, "flt-"+filter.Name)
			openFilterSelect(h, loc, filter.Name)
			yes, no := label(loc, "status.yes", "Yes"), label(loc, "status.no", "No")
			if filter.Name == "is_active" {
				yes, no = label(loc, "status.active", "Active"), label(loc, "status.inactive", "Inactive")
			}
			renderOption(h, "1", yes, value == "1")
			renderOption(h, "0", no, value == "0")
			h.raw("</select>")
		case resource.FilterDateRange:
			h.raw("<fieldset><legend>")
			h.text(fieldLabel(loc, filter.Name))
			h.raw("</legend>")
			for _, bound := range []struct{ suffix, key, fallback string }{
				{"_from", "filter.from", "From"},
				{"_to", "filter.to", "To"},
			} {
				name := filter.Name + bound.suffix
				h.raw("<label>")
				h.text(label(loc, bound.key, bound.fallback))
				h.raw(` <input type="date"`)
				h.attr("name", name)
				h.attr("value", view.Values.Get(name))
				h.raw("></label>")
			}
			h.raw("</fieldset>")
		case resource.FilterLookup:
			filterLabel(h, loc, filter.Name, "flt-"+filter.Name)
			h.raw("<select")
			h.attr("id", "flt-"+filter.Name)
			h.attr("name", filter.Name)
			h.raw(">")
			renderLookupOptions(h, loc, view.Lookups[filter.Lookup], value, label(loc, "filter.all", "All"))
			h.raw("</select>")
		}
		h.raw("</div>")
	}
	h.raw(`<div class="filter-actions"><noscript><button type="submit">`)
	h.text(label(loc, "action.filter", "Filter"))
	h.raw("</button></noscript><a class=\"button link\"")
	h.attr("href", routepath.Resource(def.ID))
	h.raw(">")
	h.text(label(loc, "action.reset", "Reset filters"))
	h.raw("</a></div></form>")
}

func filterLabel(h *htmlWriter, loc Localizer, name string, id string) {
	h.raw("<label")
	h.attr("for", id)
	h.raw(">")
	h.text(fieldLabel(loc, name))
	h.raw("</label>")
}

func openFilterSelect(h *htmlWriter, loc Localizer, name string) {
	h.raw("<select")
	h.attr("id", "flt-"+name)
	h.attr("name", name)
	h.raw(`><option value="">`)
	h.text(label(loc, "filter.all", "All"))
	h.raw("</option>")
}
