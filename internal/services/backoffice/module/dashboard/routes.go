// Package dashboard registers the console landing page.
package dashboard

import (
	"net/http"

	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
)

// Service defines dashboard route handlers consumed by this route module.
type Service interface {
	HandleDashboard(w http.ResponseWriter, r *http.Request)
}

// RegisterRoutes wires dashboard routes into the provided mux.
func RegisterRoutes(mux *http.ServeMux, service Service) {
	if mux == nil || service == nil {
		return
	}
	mux.HandleFunc(routepath.Dashboard, service.HandleDashboard)
}
