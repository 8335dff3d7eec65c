package templates

import (
	"github.com/a-h/templ"
)

// DashboardCard links to one resource the operator may view.
type DashboardCard struct {
	Title string
	URL   string
	// Total is nil when the count could not be loaded.
	Total *int
}

// Dashboard renders the landing page cards.
func Dashboard(loc Localizer, cards []DashboardCard) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section class="dashboard"><h1>`)
		h.text(label(loc, "app.dashboard", "Dashboard"))
		h.raw(`</h1><ul class="cards">`)
		for _, card := range cards {
			h.raw(`<li class="card"><a`)
			h.attr("href", card.URL)
			h.raw("><strong>")
			h.text(card.Title)
			h.raw("</strong>")
			if card.Total != nil {
				h.raw(`<span class="count">`)
				h.text(FormatCount(locale(loc), *card.Total))
				h.raw("</span>")
			}
			h.raw("</a></li>")
		}
		h.raw("</ul></section>")
	})
}
