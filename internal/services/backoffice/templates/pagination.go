package templates

import (
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/louisbranch/backoffice/internal/services/backoffice/listing"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
)

// paginationNav renders the page controls of a resource table. Each control
// re-requests the table region with the current filter form included.
func paginationNav(loc Localizer, res string, p listing.Pagination) templ.Component {
	return component(func(h *htmlWriter) {
		renderPagination(h, loc, res, p)
	})
}

func renderPagination(h *htmlWriter, loc Localizer, res string, p listing.Pagination) {
	h.raw(`<nav class="pagination" aria-label="pagination"><p class="summary">`)
	h.text(T(loc, "pagination.showing", p.From, p.To, p.Total))
	h.raw("</p>")
	if p.TotalPages <= 1 {
		h.raw("</nav>")
		return
	}
	h.raw("<ul>")
	pageButton(h, res, p.Page-1, label(loc, "pagination.previous", "Previous"), !p.HasPrev(), false)
	for _, item := range p.Items {
		if item.Ellipsis {
			h.raw(`<li><span class="ellipsis">&hellip;</span></li>`)
			continue
		}
		pageButton(h, res, item.Page, strconv.Itoa(item.Page), false, item.Current)
	}
	pageButton(h, res, p.Page+1, label(loc, "pagination.next", "Next"), !p.HasNext(), false)
	h.raw("</ul></nav>")
}

func pageButton(h *htmlWriter, res string, page int, text string, disabled bool, current bool) {
	h.raw(`<li><button type="button" class="page" hx-swap="outerHTML"`)
	if !disabled && !current {
		h.attr("hx-get", PageURL(res, page))
		h.attr("hx-target", "#"+TableID(res))
		h.attr("hx-include", "#"+FiltersID(res))
		h.attr("hx-vals", generationVals)
	}
	h.flag("disabled", disabled || current)
	if current {
		h.raw(` aria-current="page"`)
	}
	h.raw(">")
	h.text(text)
	h.raw("</button></li>")
}

// PageURL returns the rows URL for page. Filters travel with the request
// through hx-include of the filter form.
func PageURL(res string, page int) string {
	return withQuery(routepath.ResourceRowsURL(res), url.Values{listing.PageParam: {strconv.Itoa(page)}})
}
