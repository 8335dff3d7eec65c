package templates

import (
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/louisbranch/backoffice/internal/services/backoffice/lookups"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
	"github.com/louisbranch/backoffice/internal/services/backoffice/routepath"
)

// NewLanguageParam is the query parameter naming the language of an added
// translation panel.
const NewLanguageParam = "new_lang"

// TranslationPanel holds the values of one language block.
type TranslationPanel struct {
	Lang   string
	Values map[string]string
}

// FormView is the create or edit form of a record.
type FormView struct {
	Def resource.Definition
	// RecordID is empty for new records.
	RecordID string
	Values   url.Values
	// Previews maps file fields to the current upstream URL.
	Previews map[string]string
	// Errors maps field names to messages.
	Errors map[string]string
	// Error is the form-level message.
	Error string
	// Lookups holds the options of lookup fields keyed by field name.
	Lookups      map[string]lookups.Result
	Translations []TranslationPanel
	CSRFToken    string
}

// Form renders the record form as a modal dialog. Submissions swap the modal
// content, so validation failures re-render the form in place.
func Form(loc Localizer, view FormView) templ.Component {
	return component(func(h *htmlWriter) {
		renderForm(h, loc, view)
	})
}

func renderForm(h *htmlWriter, loc Localizer, view FormView) {
	def := view.Def
	action := routepath.Resource(def.ID)
	titleKey := "form.new_title"
	if view.RecordID != "" {
		action = routepath.Record(def.ID, view.RecordID)
		titleKey = "form.edit_title"
	}
	singular := label(loc, "singular", humanize(def.ID))
	h.raw(`<div class="dialog" role="dialog" aria-modal="true" aria-labelledby="form-title"><h2 id="form-title">`)
	h.text(T(loc, titleKey, singular))
	h.raw(`</h2><form id="record-form" method="post" enctype="multipart/form-data" hx-encoding="multipart/form-data" hx-target="#modal" hx-swap="innerHTML"`)
	h.attr("action", action)
	h.attr("hx-post", action)
	h.raw(">")
	csrfInput(h, view.CSRFToken)
	if view.Error != "" || len(view.Errors) > 0 {
		message := view.Error
		if message == "" {
			message = label(loc, "form.has_errors", "Please fix the highlighted fields")
		}
		h.raw(`<div class="form-error" role="alert">`)
		h.text(message)
		h.raw("</div>")
	}
	children := dependentFields(def)
	for _, field := range def.Fields {
		if field.CreateOnly && view.RecordID != "" {
			continue
		}
		renderField(h, loc, view, field, children[field.Name])
	}
	if len(def.Translatable) > 0 {
		renderTranslations(h, loc, view)
	}
	h.raw(`<div class="form-actions"><button type="submit" class="button primary">`)
	h.text(label(loc, "action.save", "Save"))
	h.raw(`</button><button type="button" class="button" hx-on:click="document.getElementById('modal').innerHTML=''">`)
	h.text(label(loc, "action.cancel", "Cancel"))
	h.raw("</button></div></form></div>")
}

// dependentFields maps a parent field to the first lookup that depends on it.
func dependentFields(def resource.Definition) map[string]resource.Field {
	out := map[string]resource.Field{}
	for _, field := range def.Fields {
		if field.DependsOn == "" {
			continue
		}
		if _, exists := out[field.DependsOn]; !exists {
			out[field.DependsOn] = field
		}
	}
	return out
}

func fieldID(name string) string {
	return "f-" + name
}

func renderField(h *htmlWriter, loc Localizer, view FormView, field resource.Field, child resource.Field) {
	id := fieldID(field.Name)
	value := view.Values.Get(field.Name)
	message := view.Errors[field.Name]
	if field.Kind == resource.FieldHidden {
		h.raw(`<input type="hidden"`)
		h.attr("name", field.Name)
		h.attr("value", value)
		h.raw(">")
		return
	}
	h.raw("<div")
	h.attr("class", "field field-"+string(field.Kind))
	h.raw(">")
	if field.Kind == resource.FieldCheckbox {
		h.raw(`<input type="hidden" value="0"`)
		h.attr("name", field.Name)
		h.raw(`><label><input type="checkbox" value="1"`)
		h.attr("id", id)
		h.attr("name", field.Name)
		h.flag("checked", truthy(value))
		h.raw("> ")
		h.text(fieldLabel(loc, field.Name))
		h.raw("</label>")
		renderFieldError(h, field.Name, message)
		h.raw("</div>")
		return
	}
	h.raw("<label")
	h.attr("for", id)
	h.raw(">")
	h.text(fieldLabel(loc, field.Name))
	if field.Required {
		h.raw(` <span class="required" aria-hidden="true">*</span>`)
	}
	h.raw("</label>")
	switch field.Kind {
	case resource.FieldTextarea:
		h.raw("<textarea rows=\"4\"")
		fieldAttrs(h, loc, field, id, message)
		h.raw(">")
		h.text(value)
		h.raw("</textarea>")
	case resource.FieldSelect:
		h.raw("<select")
		fieldAttrs(h, loc, field, id, message)
		h.raw(`><option value="">`)
		h.text(label(loc, "form.select", "Select..."))
		h.raw("</option>")
		for _, option := range field.Options {
			renderOption(h, option.Value, optionLabel(loc, option), option.Value == value)
		}
		h.raw("</select>")
	case resource.FieldLookup:
		h.raw("<select")
		fieldAttrs(h, loc, field, id, message)
		if child.Name != "" {
			h.attr("hx-get", withQuery(routepath.Lookup(child.Lookup), url.Values{"from": {field.Name}}))
			h.raw(` hx-trigger="change" hx-include="this" hx-swap="innerHTML"`)
			h.attr("hx-target", "#"+fieldID(child.Name))
			h.attr("hx-indicator", "#loading-"+child.Name)
		}
		h.raw(">")
		renderLookupOptions(h, loc, view.Lookups[field.Name], value, label(loc, "form.select", "Select..."))
		h.raw("</select>")
		if field.DependsOn != "" {
			h.raw(`<span class="htmx-indicator"`)
			h.attr("id", "loading-"+field.Name)
			h.raw(">")
			h.text(label(loc, "lookup.loading", "Loading..."))
			h.raw("</span>")
		}
	case resource.FieldFile:
		h.raw(`<input type="file"`)
		h.attr("id", id)
		h.attr("name", field.Name)
		if field.Accept != "" {
			h.attr("accept", field.Accept)
		}
		h.flag("required", field.Required && view.Previews[field.Name] == "")
		h.raw(">")
		if preview := view.Previews[field.Name]; safeURL(preview) {
			h.raw(`<figure class="preview"><img alt=""`)
			h.attr("src", preview)
			h.raw("><figcaption>")
			h.text(label(loc, "form.current_file", "Current file"))
			h.raw("</figcaption></figure>")
		}
	case resource.FieldPassword:
		h.raw(`<input type="password" autocomplete="new-password"`)
		fieldAttrs(h, loc, field, id, message)
		h.raw(">")
	case resource.FieldDecimal:
		h.raw(`<input type="text" inputmode="decimal"`)
		fieldAttrs(h, loc, field, id, message)
		h.attr("value", FormatDecimal(value))
		h.raw(">")
	default:
		h.raw("<input")
		h.attr("type", inputType(field.Kind))
		fieldAttrs(h, loc, field, id, message)
		h.attr("value", value)
		h.raw(">")
	}
	renderFieldError(h, field.Name, message)
	h.raw("</div>")
}

func fieldAttrs(h *htmlWriter, loc Localizer, field resource.Field, id string, message string) {
	h.attr("id", id)
	h.attr("name", field.Name)
	h.flag("required", field.Required)
	if field.Placeholder != "" {
		h.attr("placeholder", label(loc, field.Placeholder, ""))
	}
	if message != "" {
		h.raw(` aria-invalid="true"`)
		h.attr("aria-describedby", "err-"+field.Name)
	}
}

func renderFieldError(h *htmlWriter, name string, message string) {
	if message == "" {
		return
	}
	h.raw(`<p class="field-error"`)
	h.attr("id", "err-"+name)
	h.raw(">")
	h.text(message)
	h.raw("</p>")
}

func inputType(kind resource.FieldKind) string {
	switch kind {
	case resource.FieldNumber:
		return "number"
	case resource.FieldEmail:
		return "email"
	case resource.FieldURL:
		return "url"
	case resource.FieldDate:
		return "date"
	case resource.FieldDateTime:
		return "datetime-local"
	default:
		return "text"
	}
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func renderTranslations(h *htmlWriter, loc Localizer, view FormView) {
	def := view.Def
	h.raw(`<section class="translations"><h3>`)
	h.text(label(loc, "form.translations", "Translations"))
	h.raw(`</h3><div id="translation-panels">`)
	for _, panel := range view.Translations {
		renderTranslationPanel(h, loc, def, panel)
	}
	h.raw(`</div><div class="add-translation"><input id="new-lang" type="text" maxlength="16" size="6"`)
	h.attr("name", NewLanguageParam)
	h.attr("aria-label", label(loc, "form.language_code", "Language code"))
	h.attr("placeholder", label(loc, "form.language_code", "Language code"))
	h.raw(`><button type="button" class="button" hx-include="#new-lang" hx-target="#translation-panels" hx-swap="beforeend"`)
	h.attr("hx-get", routepath.TranslationPanelURL(def.ID))
	h.raw(">")
	h.text(label(loc, "action.add_translation", "Add translation"))
	h.raw("</button></div></section>")
}

// TranslationPanelFragment renders one language block of translatable fields.
func TranslationPanelFragment(loc Localizer, def resource.Definition, panel TranslationPanel) templ.Component {
	return component(func(h *htmlWriter) {
		renderTranslationPanel(h, loc, def, panel)
	})
}

func renderTranslationPanel(h *htmlWriter, loc Localizer, def resource.Definition, panel TranslationPanel) {
	h.raw(`<fieldset class="translation-panel"`)
	h.attr("data-lang", panel.Lang)
	h.raw("><legend>")
	h.text(panel.Lang)
	h.raw("</legend>")
	for _, name := range def.Translatable {
		inputName := "translations[" + panel.Lang + "][" + name + "]"
		id := "tr-" + panel.Lang + "-" + name
		h.raw("<label")
		h.attr("for", id)
		h.raw(">")
		h.text(fieldLabel(loc, name))
		h.raw("</label>")
		field, _ := def.Field(name)
		if field.Kind == resource.FieldTextarea || name == "description" {
			h.raw(`<textarea rows="3"`)
			h.attr("id", id)
			h.attr("name", inputName)
			h.attr("lang", panel.Lang)
			h.raw(">")
			h.text(panel.Values[name])
			h.raw("</textarea>")
			continue
		}
		h.raw(`<input type="text"`)
		h.attr("id", id)
		h.attr("name", inputName)
		h.attr("lang", panel.Lang)
		h.attr("value", panel.Values[name])
		h.raw(">")
	}
	h.raw(`<button type="button" class="button link" hx-on:click="this.closest('fieldset').remove()">`)
	h.text(label(loc, "action.remove", "Remove"))
	h.raw("</button></fieldset>")
}
