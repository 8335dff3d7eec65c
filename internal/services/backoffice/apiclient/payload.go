package apiclient

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// TranslationsField is the form field carrying serialized translation panels.
const TranslationsField = "translations"

// File is one uploaded file forwarded upstream.
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// Payload is the body of a create, update or custom action request.
type Payload struct {
	Fields url.Values
	// Translations is a JSON object keyed by language code; "" when none.
	Translations string
	Files        []File
}

// HasFiles reports whether the payload must be sent as multipart.
func (p Payload) HasFiles() bool {
	return len(p.Files) > 0
}

func (p Payload) sortedKeys() []string {
	keys := make([]string, 0, len(p.Fields))
	for key := range p.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// JSON encodes the payload as a flat JSON object. Multi-valued fields become
// arrays and translations are embedded as an object.
func (p Payload) JSON() ([]byte, error) {
	body := []byte("{}")
	var err error
	for _, key := range p.sortedKeys() {
		values := p.Fields[key]
		path := escapePath(strings.TrimSuffix(key, "[]"))
		switch {
		case len(values) == 1 && !strings.HasSuffix(key, "[]"):
			body, err = sjson.SetBytes(body, path, values[0])
		default:
			body, err = sjson.SetBytes(body, path, values)
		}
		if err != nil {
			return nil, fmt.Errorf("encode field %s: %w", key, err)
		}
	}
	if translations := strings.TrimSpace(p.Translations); translations != "" {
		if !gjson.Valid(translations) {
			return nil, fmt.Errorf("encode translations: invalid json")
		}
		body, err = sjson.SetRawBytes(body, TranslationsField, []byte(translations))
		if err != nil {
			return nil, fmt.Errorf("encode translations: %w", err)
		}
	}
	return body, nil
}

// Multipart encodes the payload as multipart/form-data and returns the body
// together with its content type.
func (p Payload) Multipart() ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, key := range p.sortedKeys() {
		for _, value := range p.Fields[key] {
			if err := writer.WriteField(key, value); err != nil {
				return nil, "", fmt.Errorf("write field %s: %w", key, err)
			}
		}
	}
	if translations := strings.TrimSpace(p.Translations); translations != "" {
		if err := writer.WriteField(TranslationsField, translations); err != nil {
			return nil, "", fmt.Errorf("write translations: %w", err)
		}
	}
	for _, file := range p.Files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Name))
		contentType := strings.TrimSpace(file.ContentType)
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", file.Name, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", file.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

// escapePath protects characters sjson treats as path syntax.
func escapePath(key string) string {
	replacer := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)
	return replacer.Replace(key)
}
