package backoffice

import (
	"log"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/louisbranch/backoffice/internal/services/backoffice/listing"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
	"github.com/louisbranch/backoffice/internal/services/backoffice/templates"
)

// dashboardWorkers bounds concurrent count requests.
const dashboardWorkers = 4

// handleDashboard renders one card per viewable resource with its record
// count. A failed count leaves the card without a total.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	lang := h.language(r)
	loc := h.table(lang, nil)
	caps := capabilitiesFrom(r)

	var defs []resource.Definition
	for _, def := range h.catalog.All() {
		if caps.CanView(def) {
			defs = append(defs, def)
		}
	}
	cards := make([]templates.DashboardCard, len(defs))
	totals := make([]*int, len(defs))

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	var g errgroup.Group
	g.SetLimit(dashboardWorkers)
	for i, def := range defs {
		cards[i] = templates.DashboardCard{
			Title: h.bundle.Table(lang, def.TranslationSource()).T("title", def.ID),
			URL:   routepath.Resource(def.ID),
		}
		params := listing.Params{Page: 1, PerPage: 1, Language: lang}
		if caps.ScopedToOwner(def) {
			params.OwnerID = caps.UserID
		}
		g.Go(func() error {
			list, err := h.api.List(ctx, def.Endpoint, listing.Query(def, params))
			if err != nil {
				log.Printf("count %s: %v", def.ID, err)
				return nil
			}
			total := list.Total
			totals[i] = &total
			return nil
		})
	}
	_ = g.Wait()
	for i := range cards {
		cards[i].Total = totals[i]
	}

	page := h.pageContext(w, r, loc, "")
	h.renderPage(w, r, http.StatusOK, page, loc.T("app.dashboard", ""), templates.Dashboard(loc, cards))
}
