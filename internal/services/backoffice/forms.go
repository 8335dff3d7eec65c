package backoffice

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/mail"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/sjson"
	"golang.org/x/text/language"

	apperrors "github.com/louisbranch/backoffice/internal/platform/errors"
	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
	"github.com/louisbranch/backoffice/internal/services/backoffice/templates"
)

const (
	// maxFormMemory bounds the in-memory part of multipart forms.
	maxFormMemory = 32 << 20
	// maxFileSize bounds one uploaded file.
	maxFileSize = 16 << 20

	translationsPrefix = "translations["

	dateTimeLocalLayout = "2006-01-02T15:04"
	upstreamDateTime    = "2006-01-02 15:04:05"
)

// Form error keys, resolved against the resource table.
const (
	errRequired        = "form.required"
	errInvalidNumber   = "form.invalid_number"
	errInvalidEmail    = "form.invalid_email"
	errInvalidURL      = "form.invalid_url"
	errInvalidLanguage = "form.invalid_language"
	errInvalidOption   = "form.invalid_option"
)

// recordInput is one parsed record form.
type recordInput struct {
	// Values echo what the operator entered, for re-rendering.
	Values  url.Values
	Panels  []templates.TranslationPanel
	Payload apiclient.Payload
	// Errors maps field names to message keys.
	Errors map[string]string
}

// parseRecordForm validates the submitted form against def and builds the
// upstream payload. Only declared fields are forwarded. A blank password on
// edit keeps the current one.
func parseRecordForm(r *http.Request, def resource.Definition, creating bool) (recordInput, error) {
	input := recordInput{Values: url.Values{}, Errors: map[string]string{}}
	if err := parseForm(r); err != nil {
		return input, apperrors.Wrap(apperrors.CodeInvalidInput, "parse record form", err)
	}

	fields := url.Values{}
	for _, field := range def.Fields {
		if field.CreateOnly && !creating {
			continue
		}
		name := field.Name
		switch field.Kind {
		case resource.FieldFile:
			file, ok, err := formFile(r, name)
			if err != nil {
				return input, err
			}
			if ok {
				input.Payload.Files = append(input.Payload.Files, file)
			} else if field.Required && creating {
				input.Errors[name] = errRequired
			}
			continue
		case resource.FieldCheckbox:
			value := "0"
			if truthy(lastValue(r.Form[name])) {
				value = "1"
			}
			input.Values.Set(name, value)
			fields.Set(name, value)
			continue
		}

		value := strings.TrimSpace(r.FormValue(name))
		if field.Kind != resource.FieldPassword {
			input.Values.Set(name, value)
		}
		if value == "" {
			if field.Required && (creating || field.Kind != resource.FieldPassword) {
				input.Errors[name] = errRequired
			}
			if field.Kind != resource.FieldPassword {
				fields.Set(name, "")
			}
			continue
		}
		normalized, errKey := normalizeValue(field, value)
		if errKey != "" {
			input.Errors[name] = errKey
			continue
		}
		fields.Set(name, normalized)
	}

	panels, translations, errKey := parseTranslations(r.PostForm, def)
	input.Panels = panels
	if errKey != "" {
		input.Errors[apiclient.TranslationsField] = errKey
	}
	input.Payload.Fields = fields
	input.Payload.Translations = translations
	return input, nil
}

// normalizeValue checks value against the field kind and returns the form
// the upstream expects, or a message key.
func normalizeValue(field resource.Field, value string) (string, string) {
	switch field.Kind {
	case resource.FieldNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return "", errInvalidNumber
		}
	case resource.FieldDecimal:
		parsed, ok := templates.ParseDecimal(value)
		if !ok {
			return "", errInvalidNumber
		}
		return strconv.FormatFloat(parsed, 'f', -1, 64), ""
	case resource.FieldEmail:
		address, err := mail.ParseAddress(value)
		if err != nil || address.Address != value {
			return "", errInvalidEmail
		}
	case resource.FieldURL:
		parsed, err := url.ParseRequestURI(value)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return "", errInvalidURL
		}
	case resource.FieldDateTime:
		if parsed, err := time.Parse(dateTimeLocalLayout, value); err == nil {
			return parsed.Format(upstreamDateTime), ""
		}
	case resource.FieldSelect:
		for _, option := range field.Options {
			if option.Value == value {
				return value, ""
			}
		}
		return "", errInvalidOption
	}
	return value, ""
}

// parseTranslations collects translations[<lang>][<field>] inputs into
// panels for re-rendering and a JSON object keyed by language. Panels whose
// fields are all blank are left out of the JSON.
func parseTranslations(form url.Values, def resource.Definition) ([]templates.TranslationPanel, string, string) {
	if len(def.Translatable) == 0 {
		return nil, "", ""
	}
	allowed := make(map[string]bool, len(def.Translatable))
	for _, name := range def.Translatable {
		allowed[name] = true
	}
	byLang := map[string]map[string]string{}
	errKey := ""
	for key, values := range form {
		lang, field, ok := splitTranslationKey(key)
		if !ok || !allowed[field] {
			continue
		}
		tag, err := language.Parse(lang)
		if err != nil {
			errKey = errInvalidLanguage
			continue
		}
		lang = tag.String()
		if byLang[lang] == nil {
			byLang[lang] = map[string]string{}
		}
		byLang[lang][field] = strings.TrimSpace(lastValue(values))
	}
	if len(byLang) == 0 {
		return nil, "", errKey
	}

	langs := make([]string, 0, len(byLang))
	for lang := range byLang {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	panels := make([]templates.TranslationPanel, 0, len(langs))
	doc := ""
	for _, lang := range langs {
		values := byLang[lang]
		panels = append(panels, templates.TranslationPanel{Lang: lang, Values: values})
		for _, field := range def.Translatable {
			value := values[field]
			if value == "" {
				continue
			}
			next, err := sjson.Set(orEmptyObject(doc), lang+"."+field, value)
			if err != nil {
				errKey = errInvalidLanguage
				continue
			}
			doc = next
		}
	}
	return panels, doc, errKey
}

func orEmptyObject(doc string) string {
	if doc == "" {
		return "{}"
	}
	return doc
}

// splitTranslationKey reads "translations[ar][name]".
func splitTranslationKey(key string) (string, string, bool) {
	rest, ok := strings.CutPrefix(key, translationsPrefix)
	if !ok {
		return "", "", false
	}
	lang, rest, ok := strings.Cut(rest, "][")
	if !ok {
		return "", "", false
	}
	field, ok := strings.CutSuffix(rest, "]")
	if !ok || lang == "" || field == "" || strings.ContainsAny(field, "[]") {
		return "", "", false
	}
	return lang, field, true
}

// actionInput validates the inputs of a custom action.
func actionInput(r *http.Request, action resource.Action) (apiclient.Payload, map[string]string, error) {
	if err := parseForm(r); err != nil {
		return apiclient.Payload{}, nil, apperrors.Wrap(apperrors.CodeInvalidInput, "parse action form", err)
	}
	fields := url.Values{}
	errs := map[string]string{}
	for _, field := range action.Inputs {
		if field.Kind == resource.FieldCheckbox {
			value := "0"
			if truthy(lastValue(r.Form[field.Name])) {
				value = "1"
			}
			fields.Set(field.Name, value)
			continue
		}
		value := strings.TrimSpace(r.FormValue(field.Name))
		if value == "" {
			if field.Required {
				errs[field.Name] = errRequired
			}
			continue
		}
		normalized, errKey := normalizeValue(field, value)
		if errKey != "" {
			errs[field.Name] = errKey
			continue
		}
		fields.Set(field.Name, normalized)
	}
	return apiclient.Payload{Fields: fields}, errs, nil
}

// recordValues maps an upstream record onto form values.
func recordValues(def resource.Definition, record apiclient.Record) url.Values {
	values := url.Values{}
	for _, field := range def.Fields {
		switch field.Kind {
		case resource.FieldFile, resource.FieldPassword:
			continue
		case resource.FieldCheckbox:
			if record.Bool(field.Name) {
				values.Set(field.Name, "1")
			} else {
				values.Set(field.Name, "0")
			}
		case resource.FieldDate:
			values.Set(field.Name, templates.FormatDate(record.String(field.Name)))
		case resource.FieldDateTime:
			values.Set(field.Name, dateTimeLocal(record.String(field.Name)))
		default:
			values.Set(field.Name, record.String(field.Name))
		}
	}
	return values
}

// previews returns the current file URL of each file field.
func previews(def resource.Definition, record apiclient.Record) map[string]string {
	out := map[string]string{}
	for _, field := range def.FileFields() {
		path := field.Preview
		if path == "" {
			path = field.Name
		}
		if value := strings.TrimSpace(record.String(path)); value != "" {
			out[field.Name] = value
		}
	}
	return out
}

// recordTranslations reads the record's translations object into panels.
func recordTranslations(def resource.Definition, record apiclient.Record) []templates.TranslationPanel {
	if len(def.Translatable) == 0 {
		return nil
	}
	langs := record.Keys(apiclient.TranslationsField)
	sort.Strings(langs)
	panels := make([]templates.TranslationPanel, 0, len(langs))
	for _, lang := range langs {
		translated := record.Get(apiclient.TranslationsField).Get(lang)
		values := make(map[string]string, len(def.Translatable))
		for _, field := range def.Translatable {
			values[field] = translated.String(field)
		}
		panels = append(panels, templates.TranslationPanel{Lang: lang, Values: values})
	}
	return panels
}

func ownerOf(def resource.Definition, record apiclient.Record) string {
	if def.OwnerField == "" {
		return ""
	}
	return record.String(def.OwnerField)
}

func dateTimeLocal(value string) string {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339, upstreamDateTime, dateTimeLocalLayout} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format(dateTimeLocalLayout)
		}
	}
	return value
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if r.MultipartForm != nil {
			return nil
		}
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}

// formFile reads the first file submitted under name.
func formFile(r *http.Request, name string) (apiclient.File, bool, error) {
	if r.MultipartForm == nil {
		return apiclient.File{}, false, nil
	}
	headers := r.MultipartForm.File[name]
	if len(headers) == 0 || headers[0].Filename == "" {
		return apiclient.File{}, false, nil
	}
	file, err := readUpload(headers[0], name)
	if err != nil {
		return apiclient.File{}, false, err
	}
	return file, true, nil
}

func readUpload(header *multipart.FileHeader, field string) (apiclient.File, error) {
	if header.Size > maxFileSize {
		return apiclient.File{}, apperrors.WithMetadata(apperrors.CodeInvalidInput, "file too large: "+header.Filename, map[string]string{"File": header.Filename})
	}
	src, err := header.Open()
	if err != nil {
		return apiclient.File{}, apperrors.Wrap(apperrors.CodeInvalidInput, "open upload "+header.Filename, err)
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxFileSize+1))
	if err != nil {
		return apiclient.File{}, apperrors.Wrap(apperrors.CodeInvalidInput, "read upload "+header.Filename, err)
	}
	if len(data) > maxFileSize {
		return apiclient.File{}, apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf("file too large: %s", header.Filename))
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return apiclient.File{Field: field, Name: header.Filename, ContentType: contentType, Data: data}, nil
}

func lastValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}
