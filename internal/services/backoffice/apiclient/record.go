package apiclient

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Record is one upstream row. Values are read by gjson path ("country.name",
// "translations.ar.description"), so the console never needs per-resource
// structs.
type Record struct {
	value gjson.Result
}

// NewRecord parses raw JSON into a Record.
func NewRecord(raw string) Record {
	return Record{value: gjson.Parse(raw)}
}

// IsZero reports whether the record holds no object.
func (r Record) IsZero() bool {
	return !r.value.IsObject()
}

// ID returns the record identifier.
func (r Record) ID() string {
	return r.String("id")
}

// Exists reports whether path resolves to a non-null value.
func (r Record) Exists(path string) bool {
	value := r.value.Get(path)
	return value.Exists() && value.Type != gjson.Null
}

// String returns the value at path as text; null and missing values are "".
func (r Record) String(path string) string {
	value := r.value.Get(path)
	if !value.Exists() || value.Type == gjson.Null {
		return ""
	}
	return value.String()
}

// Bool interprets 1/0, "1"/"0", true/false and "true"/"false".
func (r Record) Bool(path string) bool {
	value := r.value.Get(path)
	if value.Type == gjson.String {
		parsed, err := strconv.ParseBool(strings.TrimSpace(value.Str))
		return err == nil && parsed
	}
	return value.Bool()
}

// Float returns the numeric value at path. Strings with a decimal comma are
// accepted.
func (r Record) Float(path string) (float64, bool) {
	value := r.value.Get(path)
	switch value.Type {
	case gjson.Number:
		return value.Float(), true
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(value.Str), ",", "."), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// Get returns the nested record at path.
func (r Record) Get(path string) Record {
	return Record{value: r.value.Get(path)}
}

// Array returns the object elements of the array at path.
func (r Record) Array(path string) []Record {
	value := r.value.Get(path)
	if !value.IsArray() {
		return nil
	}
	return recordsOf(value)
}

// Keys returns the sorted keys of the object at path ("" for the record itself).
func (r Record) Keys(path string) []string {
	value := r.value
	if path != "" {
		value = r.value.Get(path)
	}
	if !value.IsObject() {
		return nil
	}
	keys := []string{}
	value.ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	sort.Strings(keys)
	return keys
}

// Raw returns the record's JSON text.
func (r Record) Raw() string {
	return r.value.Raw
}
