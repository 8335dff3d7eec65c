// Package routepath holds the console URL patterns and builders.
package routepath

import (
	"net/url"
	"strings"
)

const (
	Root         = "/"
	Login        = "/login"
	Healthz      = "/healthz"
	StaticPrefix = "/static/"
)

// Patterns registered on the ServeMux.
const (
	ResourcePage        = "GET /r/{res}"
	ResourceRows        = "GET /r/{res}/rows"
	ResourceNew         = "GET /r/{res}/new"
	ResourceExport      = "GET /r/{res}/export.xlsx"
	ResourceTranslation = "GET /r/{res}/translations/panel"
	ResourceDetail      = "GET /r/{res}/{id}"
	ResourceEdit        = "GET /r/{res}/{id}/edit"
	ResourceConfirm     = "GET /r/{res}/{id}/delete"
	ResourceCreate      = "POST /r/{res}"
	ResourceUpload      = "POST /r/{res}/upload"
	ResourceBulkAction  = "POST /r/{res}/action"
	ResourceUpdate      = "POST /r/{res}/{id}"
	ResourceToggle      = "POST /r/{res}/{id}/toggle"
	ResourceDelete      = "POST /r/{res}/{id}/delete"
	ResourceRowAction   = "POST /r/{res}/{id}/action"
	LookupOptions       = "GET /lookups/{kind}"
	Dashboard           = "GET /{$}"
)

// Resource returns the list page of a resource.
func Resource(res string) string {
	return "/r/" + escapeSegment(res)
}

// ResourceRowsURL returns the table fragment URL.
func ResourceRowsURL(res string) string {
	return Resource(res) + "/rows"
}

// ResourceNewURL returns the new-record form URL.
func ResourceNewURL(res string) string {
	return Resource(res) + "/new"
}

// ResourceExportURL returns the spreadsheet export URL.
func ResourceExportURL(res string) string {
	return Resource(res) + "/export.xlsx"
}

// ResourceUploadURL returns the immediate upload URL.
func ResourceUploadURL(res string) string {
	return Resource(res) + "/upload"
}

// TranslationPanelURL returns the URL of an empty translation panel.
func TranslationPanelURL(res string) string {
	return Resource(res) + "/translations/panel"
}

// ResourceActionURL returns the toolbar action URL.
func ResourceActionURL(res string) string {
	return Resource(res) + "/action"
}

// Record returns the detail URL of a record; it is also the update target.
func Record(res string, id string) string {
	return Resource(res) + "/" + escapeSegment(id)
}

// RecordEdit returns the edit form URL.
func RecordEdit(res string, id string) string {
	return Record(res, id) + "/edit"
}

// RecordToggle returns the toggle-active URL.
func RecordToggle(res string, id string) string {
	return Record(res, id) + "/toggle"
}

// RecordDelete returns the delete URL; GET shows the confirmation.
func RecordDelete(res string, id string) string {
	return Record(res, id) + "/delete"
}

// RecordAction returns the row action URL.
func RecordAction(res string, id string) string {
	return Record(res, id) + "/action"
}

// Lookup returns the options fragment URL of a lookup kind.
func Lookup(kind string) string {
	return "/lookups/" + escapeSegment(kind)
}

// WithQuery appends query to path.
func WithQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

func escapeSegment(raw string) string {
	return url.PathEscape(strings.TrimSpace(raw))
}
