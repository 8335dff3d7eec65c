package apiclient

import (
	"bytes"
	"strings"

	apperrors "github.com/louisbranch/backoffice/internal/platform/errors"
	"github.com/tidwall/gjson"
)

// snippetLimit caps how much of an unparsable body is kept for logs.
const snippetLimit = 120

// Envelope is a decoded upstream response. Upstream endpoints answer with
// `{success, data, message, errors}`, `{data, total}` or bare arrays; this is
// the only place that probes those shapes.
type Envelope struct {
	OK      bool
	Message string
	Errors  map[string]string
	Data    gjson.Result
	root    gjson.Result
}

// Decode parses a response body into an Envelope. Non-JSON and scalar
// bodies are MALFORMED_RESPONSE errors.
func Decode(body []byte) (Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Envelope{}, apperrors.New(apperrors.CodeMalformedResponse, "empty response body")
	}
	if !gjson.ValidBytes(trimmed) {
		return Envelope{}, apperrors.WithMetadata(apperrors.CodeMalformedResponse, "response is not json", map[string]string{
			"Snippet": snippet(trimmed),
		})
	}
	root := gjson.ParseBytes(trimmed)
	env := Envelope{OK: true, Data: root, root: root}
	if root.IsArray() {
		return env, nil
	}
	if !root.IsObject() {
		return Envelope{}, apperrors.WithMetadata(apperrors.CodeMalformedResponse, "response is not an object or array", map[string]string{
			"Snippet": snippet(trimmed),
		})
	}
	if data := root.Get("data"); data.Exists() {
		env.Data = data
	}
	env.Message = firstString(root, "message", "msg", "error")
	env.Errors = decodeFieldErrors(root.Get("errors"))
	if success := root.Get("success"); success.Exists() {
		env.OK = success.Bool()
	} else if failed := root.Get("error"); failed.Type == gjson.True || (failed.Type == gjson.String && strings.TrimSpace(failed.Str) != "") || failed.IsObject() {
		env.OK = false
	}
	return env, nil
}

// DecodeList decodes a list response body. A failed or malformed body is
// an error; every other shape yields rows, possibly none.
func DecodeList(body []byte) (List, error) {
	env, err := Decode(body)
	if err != nil {
		return List{}, err
	}
	if err := env.Err(); err != nil {
		return List{}, err
	}
	return env.List(), nil
}

// List returns the rows and paging metadata of a list response.
func (e Envelope) List() List {
	rows := e.Rows()
	page, perPage, totalPages := e.Page()
	return List{
		Rows:       rows,
		Total:      e.Total(len(rows)),
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}
}

// Err converts a failed envelope into a typed error. Field errors become a
// VALIDATION error; anything else is REJECTED with the upstream message.
func (e Envelope) Err() error {
	if e.OK {
		return nil
	}
	message := e.Message
	if message == "" {
		message = "request rejected by upstream"
	}
	if len(e.Errors) > 0 {
		return apperrors.Validation(message, e.Errors)
	}
	return apperrors.WithMetadata(apperrors.CodeRejected, message, map[string]string{"Message": e.Message})
}

// Rows returns list rows from the first array-shaped candidate, or an empty
// slice when the payload carries none.
func (e Envelope) Rows() []Record {
	candidates := []gjson.Result{
		e.Data,
		e.Data.Get("items"),
		e.Data.Get("data"),
		e.Data.Get("rows"),
		e.Data.Get("records"),
		e.root.Get("items"),
	}
	for _, candidate := range candidates {
		if candidate.IsArray() {
			return recordsOf(candidate)
		}
	}
	return []Record{}
}

// Total returns the reported total count, falling back to rowCount.
func (e Envelope) Total(rowCount int) int {
	if value, ok := e.metaInt("total"); ok {
		return value
	}
	return rowCount
}

// Page returns the paging metadata the upstream reported, if any.
func (e Envelope) Page() (page int, perPage int, totalPages int) {
	page, _ = e.metaInt("page")
	if page == 0 {
		page, _ = e.metaInt("current_page")
	}
	perPage, _ = e.metaInt("per_page")
	if perPage == 0 {
		perPage, _ = e.metaInt("limit")
	}
	totalPages, _ = e.metaInt("total_pages")
	if totalPages == 0 {
		totalPages, _ = e.metaInt("last_page")
	}
	return page, perPage, totalPages
}

// Record returns the payload as a single record. `{data: {...}}`,
// `{data: [{...}]}` and bare objects are accepted.
func (e Envelope) Record() Record {
	data := e.Data
	if data.IsArray() {
		first := data.Get("0")
		return Record{value: first}
	}
	if item := data.Get("item"); item.IsObject() {
		return Record{value: item}
	}
	return Record{value: data}
}

// ID returns the identifier of a created or updated record.
func (e Envelope) ID() string {
	for _, candidate := range []gjson.Result{e.Data.Get("id"), e.root.Get("id"), e.root.Get("insert_id")} {
		if candidate.Exists() && candidate.Type != gjson.Null {
			return candidate.String()
		}
	}
	if e.Data.Type == gjson.Number || e.Data.Type == gjson.String {
		return e.Data.String()
	}
	return ""
}

// Raw returns the original JSON text.
func (e Envelope) Raw() string {
	return e.root.Raw
}

func (e Envelope) metaInt(name string) (int, bool) {
	candidates := []gjson.Result{
		e.Data.Get("meta." + name),
		e.root.Get("meta." + name),
		e.root.Get(name),
		e.Data.Get(name),
		e.Data.Get("pagination." + name),
		e.root.Get("pagination." + name),
	}
	for _, candidate := range candidates {
		switch candidate.Type {
		case gjson.Number:
			return int(candidate.Int()), true
		case gjson.String:
			if number := gjson.Parse(strings.TrimSpace(candidate.Str)); number.Type == gjson.Number {
				return int(number.Int()), true
			}
		}
	}
	return 0, false
}

func decodeFieldErrors(value gjson.Result) map[string]string {
	if !value.Exists() || value.Type == gjson.Null {
		return nil
	}
	out := map[string]string{}
	switch {
	case value.IsObject():
		value.ForEach(func(key, message gjson.Result) bool {
			if text := messageText(message); text != "" {
				out[key.String()] = text
			}
			return true
		})
	case value.IsArray():
		parts := []string{}
		value.ForEach(func(_, message gjson.Result) bool {
			if text := messageText(message); text != "" {
				parts = append(parts, text)
			}
			return true
		})
		if len(parts) > 0 {
			out["_"] = strings.Join(parts, "; ")
		}
	case value.Type == gjson.String && strings.TrimSpace(value.Str) != "":
		out["_"] = strings.TrimSpace(value.Str)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func messageText(value gjson.Result) string {
	if value.IsArray() {
		return strings.TrimSpace(value.Get("0").String())
	}
	if value.IsObject() {
		return strings.TrimSpace(firstString(value, "message", "msg"))
	}
	return strings.TrimSpace(value.String())
}

func firstString(value gjson.Result, names ...string) string {
	for _, name := range names {
		if candidate := value.Get(name); candidate.Type == gjson.String {
			if text := strings.TrimSpace(candidate.Str); text != "" {
				return text
			}
		}
	}
	return ""
}

func recordsOf(array gjson.Result) []Record {
	items := array.Array()
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if item.IsObject() {
			out = append(out, Record{value: item})
		}
	}
	return out
}

func snippet(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > snippetLimit {
		text = text[:snippetLimit]
	}
	return text
}
