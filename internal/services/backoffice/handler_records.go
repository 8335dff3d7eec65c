package backoffice

import (
	"context"
	"log"
	"net/http"
	"strings"

	apperrors "github.com/louisbranch/backoffice/internal/platform/errors"
	"github.com/louisbranch/backoffice/internal/platform/i18n/catalog"
	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/authz"
	"github.com/louisbranch/backoffice/internal/services/backoffice/lookups"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
	"github.com/louisbranch/backoffice/internal/services/backoffice/templates"
	"github.com/louisbranch/backoffice/internal/services/shared/flash"
	"github.com/louisbranch/backoffice/internal/services/shared/httpx"
)

// confirmParam must be "yes" before a delete is forwarded upstream.
const confirmParam = "confirm"

func canEdit(actions authz.RowActions) bool   { return actions.Edit }
func canDelete(actions authz.RowActions) bool { return actions.Delete }

// authorizeRow checks allowed against the operator's row controls for id.
// The record is fetched only when the answer depends on its owner; it is
// returned when fetched.
func (h *Handler) authorizeRow(ctx context.Context, def resource.Definition, caps authz.Capabilities, id string, lang string, allowed func(authz.RowActions) bool) (apiclient.Record, error) {
	if allowed(caps.Row(def, "")) {
		return apiclient.Record{}, nil
	}
	if def.OwnerField == "" || def.ReadOnly {
		return apiclient.Record{}, errForbidden(def)
	}
	record, err := h.api.Get(ctx, def.Endpoint, id, langQuery(lang))
	if err != nil {
		return apiclient.Record{}, err
	}
	if !allowed(caps.Row(def, ownerOf(def, record))) {
		return record, errForbidden(def)
	}
	return record, nil
}

// handleResourceCreate validates and forwards a new record.
func (h *Handler) handleResourceCreate(w http.ResponseWriter, r *http.Request, res string) {
	def, ok := h.definition(res)
	if !ok {
		h.writeNotFound(w, r, res)
		return
	}
	if !capabilitiesFrom(r).CanCreate(def) {
		h.writeForbidden(w, r, def)
		return
	}
	h.saveRecord(w, r, def, "", apiclient.Record{})
}

// handleRecordUpdate validates and forwards changes to an existing record.
func (h *Handler) handleRecordUpdate(w http.ResponseWriter, r *http.Request, res string, id string) {
	def, ok := h.definition(res)
	if !ok {
		h.writeNotFound(w, r, res)
		return
	}
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	record, err := h.authorizeRow(ctx, def, capabilitiesFrom(r), id, h.language(r), canEdit)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	h.saveRecord(w, r, def, id, record)
}

// saveRecord creates (id == "") or updates a record. Local validation
// failures never reach the upstream; upstream field errors re-render the
// form with the entered values.
func (h *Handler) saveRecord(w http.ResponseWriter, r *http.Request, def resource.Definition, id string, current apiclient.Record) {
	lang := h.language(r)
	loc := h.table(lang, &def)
	creating := id == ""

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	input, err := parseRecordForm(r, def, creating)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	view := templates.FormView{
		Def:          def,
		RecordID:     id,
		Values:       input.Values,
		Translations: input.Panels,
		CSRFToken:    operatorFrom(r).CSRFToken,
	}
	if !current.IsZero() {
		view.Previews = previews(def, current)
	}
	if len(input.Errors) > 0 {
		view.Errors = localizeErrors(loc, input.Errors)
		view.Error = loc.T("form.has_errors", "")
		view.Lookups = h.formLookups(ctx, def, input.Values, lang)
		h.renderForm(w, r, loc, http.StatusUnprocessableEntity, view)
		return
	}

	var mutation apiclient.Mutation
	notice := flash.NoticeSuccess("toast.created")
	if creating {
		mutation, err = h.api.Create(ctx, def.Endpoint, input.Payload)
	} else {
		mutation, err = h.api.Update(ctx, def.Endpoint, id, input.Payload)
		notice = flash.NoticeSuccess("toast.updated")
	}
	if err != nil {
		log.Printf("save %s %s: %v", def.ID, id, err)
		if fields := apperrors.FieldErrors(err); len(fields) > 0 {
			view.Errors = fields
			view.Error = loc.T("form.has_errors", "")
		} else {
			view.Error = apperrors.PublicMessage(err, lang)
		}
		view.Lookups = h.formLookups(ctx, def, input.Values, lang)
		h.renderForm(w, r, loc, apperrors.HTTPStatus(err), view)
		return
	}
	h.lookups.Invalidate(lookups.ParentsPrefix + def.ID)
	h.writeMutationSuccess(w, r, loc, def, mutationReply{notice: notice, message: mutation.Message})
}

// handleRecordToggle flips the active flag of a record.
func (h *Handler) handleRecordToggle(w http.ResponseWriter, r *http.Request, res string, id string) {
	def, ok := h.definition(res)
	if !ok || def.ActiveField == "" {
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
	if !capabilitiesFrom(r).Row(def, ownerOf(def, record)).Toggle {
		h.writeForbidden(w, r, def)
		return
	}
	mutation, err := h.api.SetFlag(ctx, def.Endpoint, id, def.ActiveField, !record.Bool(def.ActiveField))
	if err != nil {
		log.Printf("toggle %s %s: %v", def.ID, id, err)
		h.writeFailure(w, r, err)
		return
	}
	h.writeMutationSuccess(w, r, loc, def, mutationReply{
		notice:  flash.NoticeSuccess("toast.status_changed"),
		message: mutation.Message,
	})
}

// handleRecordDelete deletes a record once the request carries confirm=yes.
// Unconfirmed deletes never reach the upstream.
func (h *Handler) handleRecordDelete(w http.ResponseWriter, r *http.Request, res string, id string) {
	def, ok := h.definition(res)
	if !ok {
		h.writeNotFound(w, r, res)
		return
	}
	if strings.TrimSpace(r.FormValue(confirmParam)) != "yes" {
		h.writeFailure(w, r, apperrors.New(apperrors.CodeConfirmationRequired, "delete not confirmed"))
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
	mutation, err := h.api.Delete(ctx, def.Endpoint, id)
	if err != nil {
		log.Printf("delete %s %s: %v", def.ID, id, err)
		h.writeFailure(w, r, err)
		return
	}
	h.lookups.Invalidate(lookups.ParentsPrefix + def.ID)
	h.writeMutationSuccess(w, r, loc, def, mutationReply{
		notice:     flash.NoticeSuccess("toast.deleted"),
		message:    mutation.Message,
		closeModal: true,
		leaving:    routepath.Record(def.ID, id),
	})
}

// handleRecordAction runs a custom row action.
func (h *Handler) handleRecordAction(w http.ResponseWriter, r *http.Request, res string, id string) {
	def, ok := h.definition(res)
	if !ok {
		h.writeNotFound(w, r, res)
		return
	}
	action, ok := def.Action(strings.TrimSpace(r.FormValue(templates.ActionParam)), resource.ScopeRow)
	if !ok {
		h.writeNotFound(w, r, res+" action")
		return
	}
	lang := h.language(r)

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	caps := capabilitiesFrom(r)
	if !caps.CanAction(def, action, "") {
		if def.OwnerField == "" {
			h.writeForbidden(w, r, def)
			return
		}
		record, err := h.api.Get(ctx, def.Endpoint, id, langQuery(lang))
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}
		if !caps.CanAction(def, action, ownerOf(def, record)) {
			h.writeForbidden(w, r, def)
			return
		}
	}
	h.runAction(ctx, w, r, def, action, id)
}

// handleResourceAction runs a custom toolbar action.
func (h *Handler) handleResourceAction(w http.ResponseWriter, r *http.Request, res string) {
	def, ok := h.definition(res)
	if !ok {
		h.writeNotFound(w, r, res)
		return
	}
	action, ok := def.Action(strings.TrimSpace(r.FormValue(templates.ActionParam)), resource.ScopeToolbar)
	if !ok {
		h.writeNotFound(w, r, res+" action")
		return
	}
	if !capabilitiesFrom(r).CanAction(def, action, "") {
		h.writeForbidden(w, r, def)
		return
	}
	ctx, cancel := h.withTimeout(r)
	defer cancel()
	h.runAction(ctx, w, r, def, action, "")
}

func (h *Handler) runAction(ctx context.Context, w http.ResponseWriter, r *http.Request, def resource.Definition, action resource.Action, id string) {
	lang := h.language(r)
	loc := h.table(lang, &def)
	payload, errs, err := actionInput(r, action)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	if len(errs) > 0 {
		h.writeFailure(w, r, apperrors.Validation(loc.T("form.has_errors", ""), localizeErrors(loc, errs)))
		return
	}
	mutation, err := h.api.Action(ctx, def.ActionEndpoint(action, id), action.Name, id, payload)
	if err != nil {
		log.Printf("action %s %s %s: %v", def.ID, action.Name, id, err)
		h.writeFailure(w, r, err)
		return
	}
	h.writeMutationSuccess(w, r, loc, def, mutationReply{
		notice:  flash.NoticeSuccess("toast.action_done"),
		message: mutation.Message,
	})
}

// handleResourceUpload uploads each selected file on its own request so one
// rejected file does not block the others.
func (h *Handler) handleResourceUpload(w http.ResponseWriter, r *http.Request, res string) {
	def, ok := h.definition(res)
	if !ok || def.Upload == nil {
		h.writeNotFound(w, r, res)
		return
	}
	if !capabilitiesFrom(r).CanCreate(def) {
		h.writeForbidden(w, r, def)
		return
	}
	lang := h.language(r)
	loc := h.table(lang, &def)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		h.writeFailure(w, r, apperrors.Wrap(apperrors.CodeInvalidInput, "parse upload form", err))
		return
	}
	headers := r.MultipartForm.File[def.Upload.Field]
	if len(headers) == 0 {
		h.writeFailure(w, r, apperrors.Validation(loc.T("upload.none", ""), map[string]string{def.Upload.Field: "upload.none"}))
		return
	}

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	ep := def.Endpoint
	ep.Path = def.Upload.Path
	var (
		urls    []string
		failed  int
		lastErr error
	)
	for _, header := range headers {
		file, err := readUpload(header, def.Upload.Field)
		if err == nil {
			var uploaded []string
			uploaded, err = h.api.Upload(ctx, ep, []apiclient.File{file})
			urls = append(urls, uploaded...)
		}
		if err != nil {
			log.Printf("upload %s %s: %v", def.ID, header.Filename, err)
			failed++
			lastErr = err
		}
	}
	if len(urls) == 0 && lastErr != nil {
		h.writeFailure(w, r, lastErr)
		return
	}
	notice := flash.NoticeSuccess("toast.uploaded")
	if lastErr != nil {
		notice = flash.Notice{Kind: flash.KindWarning, Key: "toast.upload_partial", Count: failed}
	}
	reply := mutationReply{notice: notice}
	if httpx.IsHTMXRequest(r) {
		reply.extra = append(reply.extra, templates.UploadResults(loc, urls))
	}
	h.writeMutationSuccess(w, r, loc, def, reply)
}

// localizeErrors resolves message keys against the resource table.
func localizeErrors(loc catalog.Table, errs map[string]string) map[string]string {
	out := make(map[string]string, len(errs))
	for field, key := range errs {
		out[field] = loc.T(key, key)
	}
	return out
}
