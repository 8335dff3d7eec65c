// Package resources registers the generic resource routes: list page, table
// fragment, forms, mutations, custom actions, uploads and exports.
package resources

import (
	"net/http"
	"strings"

	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
)

// Service defines resource route handlers consumed by this route module.
type Service interface {
	HandleResourcePage(w http.ResponseWriter, r *http.Request, res string)
	HandleResourceRows(w http.ResponseWriter, r *http.Request, res string)
	HandleResourceNew(w http.ResponseWriter, r *http.Request, res string)
	HandleResourceExport(w http.ResponseWriter, r *http.Request, res string)
	HandleTranslationPanel(w http.ResponseWriter, r *http.Request, res string)
	HandleResourceCreate(w http.ResponseWriter, r *http.Request, res string)
	HandleResourceUpload(w http.ResponseWriter, r *http.Request, res string)
	HandleResourceAction(w http.ResponseWriter, r *http.Request, res string)
	HandleRecordDetail(w http.ResponseWriter, r *http.Request, res string, id string)
	HandleRecordEdit(w http.ResponseWriter, r *http.Request, res string, id string)
	HandleRecordConfirmDelete(w http.ResponseWriter, r *http.Request, res string, id string)
	HandleRecordUpdate(w http.ResponseWriter, r *http.Request, res string, id string)
	HandleRecordToggle(w http.ResponseWriter, r *http.Request, res string, id string)
	HandleRecordDelete(w http.ResponseWriter, r *http.Request, res string, id string)
	HandleRecordAction(w http.ResponseWriter, r *http.Request, res string, id string)
}

// RegisterRoutes wires resource routes into the provided mux.
func RegisterRoutes(mux *http.ServeMux, service Service) {
	if mux == nil || service == nil {
		return
	}
	resourceRoutes := map[string]func(http.ResponseWriter, *http.Request, string){
		routepath.ResourcePage:        service.HandleResourcePage,
		routepath.ResourceRows:        service.HandleResourceRows,
		routepath.ResourceNew:         service.HandleResourceNew,
		routepath.ResourceExport:      service.HandleResourceExport,
		routepath.ResourceTranslation: service.HandleTranslationPanel,
		routepath.ResourceCreate:      service.HandleResourceCreate,
		routepath.ResourceUpload:      service.HandleResourceUpload,
		routepath.ResourceBulkAction:  service.HandleResourceAction,
	}
	for pattern, handle := range resourceRoutes {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			handle(w, r, pathValue(r, "res"))
		})
	}
	recordRoutes := map[string]func(http.ResponseWriter, *http.Request, string, string){
		routepath.ResourceDetail:    service.HandleRecordDetail,
		routepath.ResourceEdit:      service.HandleRecordEdit,
		routepath.ResourceConfirm:   service.HandleRecordConfirmDelete,
		routepath.ResourceUpdate:    service.HandleRecordUpdate,
		routepath.ResourceToggle:    service.HandleRecordToggle,
		routepath.ResourceDelete:    service.HandleRecordDelete,
		routepath.ResourceRowAction: service.HandleRecordAction,
	}
	for pattern, handle := range recordRoutes {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			handle(w, r, pathValue(r, "res"), pathValue(r, "id"))
		})
	}
}

func pathValue(r *http.Request, name string) string {
	return strings.TrimSpace(r.PathValue(name))
}
