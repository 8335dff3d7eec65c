// Package lookups registers the lookup option fragment route.
package lookups

import (
	"net/http"
	"strings"

	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
)

// Service defines lookup route handlers consumed by this route module.
type Service interface {
	HandleLookupOptions(w http.ResponseWriter, r *http.Request, kind string)
}

// RegisterRoutes wires lookup routes into the provided mux.
func RegisterRoutes(mux *http.ServeMux, service Service) {
	if mux == nil || service == nil {
		return
	}
	mux.HandleFunc(routepath.LookupOptions, func(w http.ResponseWriter, r *http.Request) {
		service.HandleLookupOptions(w, r, strings.TrimSpace(r.PathValue("kind")))
	})
}
