package backoffice

import (
	"net/http"

	dashboardmodule "github.com/louisbranch/backoffice/internal/services/backoffice/module/dashboard"
	lookupsmodule "github.com/louisbranch/backoffice/internal/services/backoffice/module/lookups"
	resourcesmodule "github.com/louisbranch/backoffice/internal/services/backoffice/module/resources"
)

type dashboardModuleService struct {
	handler *Handler
}

func newDashboardModuleService(h *Handler) dashboardmodule.Service {
	if h == nil {
		return nil
	}
	return dashboardModuleService{handler: h}
}

func (s dashboardModuleService) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	s.handler.handleDashboard(w, r)
}

type lookupsModuleService struct {
	handler *Handler
}

func newLookupsModuleService(h *Handler) lookupsmodule.Service {
	if h == nil {
		return nil
	}
	return lookupsModuleService{handler: h}
}

func (s lookupsModuleService) HandleLookupOptions(w http.ResponseWriter, r *http.Request, kind string) {
	s.handler.handleLookupOptions(w, r, kind)
}

type resourcesModuleService struct {
	handler *Handler
}

func newResourcesModuleService(h *Handler) resourcesmodule.Service {
	if h == nil {
		return nil
	}
	return resourcesModuleService{handler: h}
}

func (s resourcesModuleService) HandleResourcePage(w http.ResponseWriter, r *http.Request, res string) {
	s.handler.handleResourcePage(w, r, res)
}

func (s resourcesModuleService) HandleResourceRows(w http.ResponseWriter, r *http.Request, res string) {
	s.handler.handleResourceRows(w, r, res)
}

func (s resourcesModuleService) HandleResourceNew(w http.ResponseWriter, r *http.Request, res string) {
	s.handler.handleResourceNew(w, r, res)
}

func (s resourcesModuleService) HandleResourceExport(w http.ResponseWriter, r *http.Request, res string) {
	s.handler.handleResourceExport(w, r, res)
}

func (s resourcesModuleService) HandleTranslationPanel(w http.ResponseWriter, r *http.Request, res string) {
	s.handler.handleTranslationPanel(w, r, res)
}

func (s resourcesModuleService) HandleResourceCreate(w http.ResponseWriter, r *http.Request, res string) {
	s.handler.handleResourceCreate(w, r, res)
}

func (s resourcesModuleService) HandleResourceUpload(w http.ResponseWriter, r *http.Request, res string) {
	s.handler.handleResourceUpload(w, r, res)
}

func (s resourcesModuleService) HandleResourceAction(w http.ResponseWriter, r *http.Request, res string) {
	s.handler.handleResourceAction(w, r, res)
}

func (s resourcesModuleService) HandleRecordDetail(w http.ResponseWriter, r *http.Request, res string, id string) {
	s.handler.handleRecordDetail(w, r, res, id)
}

func (s resourcesModuleService) HandleRecordEdit(w http.ResponseWriter, r *http.Request, res string, id string) {
	s.handler.handleRecordEdit(w, r, res, id)
}

func (s resourcesModuleService) HandleRecordConfirmDelete(w http.ResponseWriter, r *http.Request, res string, id string) {
	s.handler.handleRecordConfirmDelete(w, r, res, id)
}

func (s resourcesModuleService) HandleRecordUpdate(w http.ResponseWriter, r *http.Request, res string, id string) {
	s.handler.handleRecordUpdate(w, r, res, id)
}

func (s resourcesModuleService) HandleRecordToggle(w http.ResponseWriter, r *http.Request, res string, id string) {
	s.handler.handleRecordToggle(w, r, res, id)
}

func (s resourcesModuleService) HandleRecordDelete(w http.ResponseWriter, r *http.Request, res string, id string) {
	s.handler.handleRecordDelete(w, r, res, id)
}

func (s resourcesModuleService) HandleRecordAction(w http.ResponseWriter, r *http.Request, res string, id string) {
	s.handler.handleRecordAction(w, r, res, id)
}
