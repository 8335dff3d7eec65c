package backoffice

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	apperrors "github.com/louisbranch/backoffice/internal/platform/errors"
	"github.com/louisbranch/backoffice/internal/platform/i18n/catalog"
	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/authz"
	"github.com/louisbranch/backoffice/internal/services/backoffice/export"
	"github.com/louisbranch/backoffice/internal/services/backoffice/listing"
	"github.com/louisbranch/backoffice/internal/services/backoffice/lookups"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
	"github.com/louisbranch/backoffice/internal/services/backoffice/templates"
	"github.com/louisbranch/backoffice/internal/services/shared/htmx"
	"github.com/louisbranch/backoffice/internal/services/shared/httpx"
)

// handleResourcePage renders the list page of one resource. The table and
// the filter options load concurrently.
func (h *Handler) handleResourcePage(w http.ResponseWriter, r *http.Request, res string) {
	def, ok := h.definition(res)
	if !ok {
		h.writeNotFound(w, r, res)
		return
	}
	caps := capabilitiesFrom(r)
	if !caps.CanView(def) {
		h.writeForbidden(w, r, def)
		return
	}
	lang := h.language(r)
	loc := h.table(lang, &def)
	params := listing.ParseParams(def, r.URL.Query(), h.perPage)

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	var (
		table   templates.TableView
		options map[string]lookups.Result
	)
	var g errgroup.Group
	g.Go(func() error {
		table = h.loadTable(ctx, def, caps, params, lang)
		return nil
	})
	g.Go(func() error {
		options = h.filterLookups(ctx, def, lang)
		return nil
	})
	_ = g.Wait()

	operator := operatorFrom(r)
	view := templates.ListView{
		Def:       def,
		CanCreate: caps.CanCreate(def),
		CanUpload: def.Upload != nil && caps.CanCreate(def),
		Toolbar:   toolbarActions(def, caps),
		Filters:   templates.FiltersView{Def: def, Values: r.URL.Query(), Lookups: options},
		Table:     table,
		CSRFToken: operator.CSRFToken,
	}
	page := h.pageContext(w, r, loc, def.ID)
	h.renderPage(w, r, http.StatusOK, page, loc.T("title", def.ID), templates.ResourcePage(loc, view))
}

// handleResourceRows renders the table region for the current filters. An
// upstream failure becomes an inline error row, never an error status.
func (h *Handler) handleResourceRows(w http.ResponseWriter, r *http.Request, res string) {
	def, ok := h.definition(res)
	if !ok {
		h.writeNotFound(w, r, res)
		return
	}
	caps := capabilitiesFrom(r)
	if !caps.CanView(def) {
		h.writeForbidden(w, r, def)
		return
	}
	lang := h.language(r)
	loc := h.table(lang, &def)
	params := listing.ParseParams(def, r.URL.Query(), h.perPage)

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	view := h.loadTable(ctx, def, caps, params, lang)
	htmx.Fragment(w, r, http.StatusOK, templates.Table(loc, view))
}

// loadTable fetches one page of def and evaluates the row controls.
func (h *Handler) loadTable(ctx context.Context, def resource.Definition, caps authz.Capabilities, params listing.Params, lang string) templates.TableView {
	params.Language = lang
	if caps.ScopedToOwner(def) {
		params.OwnerID = caps.UserID
	}
	view := templates.TableView{Def: def, Generation: params.Generation}

	list, err := h.api.List(ctx, def.Endpoint, listing.Query(def, params))
	if err != nil {
		log.Printf("list %s: %v", def.ID, err)
		view.Error = apperrors.PublicMessage(err, lang)
		view.Pagination = listing.Paginate(0, 1, params.PerPage)
		return view
	}

	rowActions := def.ActionsFor(resource.ScopeRow)
	view.Rows = make([]templates.Row, 0, len(list.Rows))
	for _, record := range list.Rows {
		owner := ownerOf(def, record)
		row := templates.Row{
			ID:      record.ID(),
			Record:  record,
			Actions: caps.Row(def, owner),
		}
		for _, action := range rowActions {
			if caps.CanAction(def, action, owner) {
				row.Custom = append(row.Custom, action)
			}
		}
		view.Rows = append(view.Rows, row)
	}
	view.Pagination = listing.Paginate(list.Total, params.Page, params.PerPage)
	return view
}

// filterLookups resolves the options of lookup filters, keyed by kind.
func (h *Handler) filterLookups(ctx context.Context, def resource.Definition, lang string) map[string]lookups.Result {
	out := map[string]lookups.Result{}
	for _, filter := range def.Filters {
		if filter.Kind != resource.FilterLookup || filter.Lookup == "" {
			continue
		}
		if _, done := out[filter.Lookup]; done {
			continue
		}
		result, err := h.lookups.Options(ctx, h.lookupRequest(ctx, filter.Lookup, "", lang))
		if err != nil {
			log.Printf("filter lookup %s: %v", filter.Lookup, err)
			continue
		}
		out[filter.Lookup] = result
	}
	return out
}

// formLookups resolves lookup fields in declaration order, so a dependent
// field (city) is resolved after its parent (country) with the parent's
// current value. Failures leave the select with only its blank option.
func (h *Handler) formLookups(ctx context.Context, def resource.Definition, values url.Values, lang string) map[string]lookups.Result {
	out := map[string]lookups.Result{}
	for _, field := range def.Fields {
		if field.Kind != resource.FieldLookup {
			continue
		}
		parent := ""
		if field.DependsOn != "" {
			parent = values.Get(field.DependsOn)
		}
		result, err := h.lookups.Options(ctx, h.lookupRequest(ctx, field.Lookup, parent, lang))
		if err != nil {
			log.Printf("form lookup %s: %v", field.Lookup, err)
			continue
		}
		out[field.Name] = result
	}
	return out
}

func toolbarActions(def resource.Definition, caps authz.Capabilities) []resource.Action {
	var out []resource.Action
	for _, action := range def.ActionsFor(resource.ScopeToolbar) {
		if caps.CanAction(def, action, "") {
			out = append(out, action)
		}
	}
	return out
}

// handleResourceNew renders an empty record form.
func (h *Handler) handleResourceNew(w http.ResponseWriter, r *http.Request, res string) {
	def, ok := h.definition(res)
	if !ok {
		h.writeNotFound(w, r, res)
		return
	}
	if !capabilitiesFrom(r).CanCreate(def) {
		h.writeForbidden(w, r, def)
		return
	}
	lang := h.language(r)
	loc := h.table(lang, &def)

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	values := url.Values{}
	if def.ActiveField != "" {
		values.Set(def.ActiveField, "1")
	}
	view := templates.FormView{
		Def:          def,
		Values:       values,
		Lookups:      h.formLookups(ctx, def, values, lang),
		Translations: h.defaultPanels(def, lang),
		CSRFToken:    operatorFrom(r).CSRFToken,
	}
	h.renderForm(w, r, loc, http.StatusOK, view)
}

// handleRecordEdit renders the form for an existing record. The record is
// fetched first, then the lookups it selects.
func (h *Handler) handleRecordEdit(w http.ResponseWriter, r *http.Request, res string, id string) {
	def, ok := h.definition(res)
	if !ok {
		h.writeNotFound(w, r, res)
		return
	}
	lang := h.language(r)
	loc := h.table(lang, &def)

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	record, err := h.api.Get(ctx, def.Endpoint, id, langQuery(lang))
	if err != nil {
		log.Printf("get %s %s: %v", def.ID, id, err)
		h.writeFailure(w, r, err)
		return
	}
	if !capabilitiesFrom(r).Row(def, ownerOf(def, record)).Edit {
		h.writeForbidden(w, r, def)
		return
	}
	values := recordValues(def, record)
	view := templates.FormView{
		Def:          def,
		RecordID:     id,
		Values:       values,
		Previews:     previews(def, record),
		Lookups:      h.formLookups(ctx, def, values, lang),
		Translations: recordTranslations(def, record),
		CSRFToken:    operatorFrom(r).CSRFToken,
	}
	h.renderForm(w, r, loc, http.StatusOK, view)
}

// renderForm sends the form as a modal fragment to htmx and as a page to
// plain requests.
func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, loc catalog.Table, status int, view templates.FormView) {
	form := templates.Form(loc, view)
	if httpx.IsHTMXRequest(r) {
		htmx.Fragment(w, r, status, form)
		return
	}
	page := h.pageContext(w, r, loc, view.Def.ID)
	h.renderPage(w, r, status, page, loc.T("title", view.Def.ID), form)
}

// defaultPanels opens one translation panel per supported language other
// than the UI language.
func (h *Handler) defaultPanels(def resource.Definition, lang string) []templates.TranslationPanel {
	if len(def.Translatable) == 0 {
		return nil
	}
	var panels []templates.TranslationPanel
	for _, tag := range h.negotiator.Supported() {
		if tag.String() == lang {
			continue
		}
		panels = append(panels, templates.TranslationPanel{Lang: tag.String(), Values: map[string]string{}})
	}
	return panels
}

// handleRecordDetail renders one record.
func (h *Handler) handleRecordDetail(w http.ResponseWriter, r *http.Request, res string, id string) {
	def, ok := h.definition(res)
	if !ok {
		h.writeNotFound(w, r, res)
		return
	}
	caps := capabilitiesFrom(r)
	if !caps.CanView(def) {
		h.writeForbidden(w, r, def)
		return
	}
	lang := h.language(r)
	loc := h.table(lang, &def)

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	record, err := h.api.Get(ctx, def.Endpoint, id, langQuery(lang))
	if err != nil {
		log.Printf("get %s %s: %v", def.ID, id, err)
		h.writeFailure(w, r, err)
		return
	}
	owner := ownerOf(def, record)
	if caps.ScopedToOwner(def) && !caps.Can(def.PermissionFor(resource.VerbView), owner) {
		h.writeForbidden(w, r, def)
		return
	}
	view := templates.DetailView{Def: def, Record: record, Actions: caps.Row(def, owner)}
	page := h.pageContext(w, r, loc, def.ID)
	h.renderPage(w, r, http.StatusOK, page, loc.T("title", def.ID), templates.Detail(loc, view))
}

// handleRecordConfirmDelete renders the delete confirmation dialog.
func (h *Handler) handleRecordConfirmDelete(w http.ResponseWriter, r *http.Request, res string, id string) {
	def, ok := h.definition(res)
	if !ok {
		h.writeNotFound(w, r, res)
		return
	}
	lang := h.language(r)
	loc := h.table(lang, &def)

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	if _, err := h.authorizeRow(ctx, def, capabilitiesFrom(r), id, lang, canDelete); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	dialog := templates.ConfirmDelete(loc, def, id, operatorFrom(r).CSRFToken)
	if httpx.IsHTMXRequest(r) {
		htmx.Fragment(w, r, http.StatusOK, dialog)
		return
	}
	page := h.pageContext(w, r, loc, def.ID)
	h.renderPage(w, r, http.StatusOK, page, loc.T("title", def.ID), dialog)
}

// handleTranslationPanel renders one empty translation panel for the
// language code typed into the form.
func (h *Handler) handleTranslationPanel(w http.ResponseWriter, r *http.Request, res string) {
	def, ok := h.definition(res)
	if !ok || len(def.Translatable) == 0 {
		h.writeNotFound(w, r, res)
		return
	}
	lang := h.language(r)
	loc := h.table(lang, &def)
	raw := strings.TrimSpace(r.URL.Query().Get(templates.NewLanguageParam))
	tag, err := language.Parse(raw)
	if raw == "" || err != nil {
		h.writeFailure(w, r, apperrors.Validation(loc.T(errInvalidLanguage, ""), map[string]string{templates.NewLanguageParam: errInvalidLanguage}))
		return
	}
	panel := templates.TranslationPanel{Lang: tag.String(), Values: map[string]string{}}
	htmx.Fragment(w, r, http.StatusOK, templates.TranslationPanelFragment(loc, def, panel))
}

// handleResourceExport streams the filtered list as an XLSX workbook,
// following upstream pages up to export.MaxRows records.
func (h *Handler) handleResourceExport(w http.ResponseWriter, r *http.Request, res string) {
	def, ok := h.definition(res)
	if !ok {
		h.writeNotFound(w, r, res)
		return
	}
	caps := capabilitiesFrom(r)
	if !caps.CanView(def) {
		h.writeForbidden(w, r, def)
		return
	}
	lang := h.language(r)
	loc := h.table(lang, &def)
	params := listing.ParseParams(def, r.URL.Query(), listing.ExportPerPage)
	params.Language = lang
	if caps.ScopedToOwner(def) {
		params.OwnerID = caps.UserID
	}

	records, err := CollectRecords(r.Context(), h.api, def, params, export.MaxRows)
	if err != nil {
		log.Printf("export %s: %v", def.ID, err)
		h.writeFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(def)+`"`)
	if err := export.Write(w, loc, def, records); err != nil {
		log.Printf("export %s: write workbook: %v", def.ID, err)
	}
}

// Lister is the listing slice of the upstream client.
type Lister interface {
	List(ctx context.Context, ep apiclient.Endpoint, query url.Values) (apiclient.List, error)
}

// CollectRecords pages through def from params.Page until limit records or
// the last page.
func CollectRecords(ctx context.Context, api Lister, def resource.Definition, params listing.Params, limit int) ([]apiclient.Record, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	var records []apiclient.Record
	for len(records) < limit {
		list, err := api.List(ctx, def.Endpoint, listing.Query(def, params))
		if err != nil {
			return nil, err
		}
		records = append(records, list.Rows...)
		pages := listing.Paginate(list.Total, params.Page, params.PerPage)
		if len(list.Rows) == 0 || !pages.HasNext() {
			break
		}
		params.Page++
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
