// Package resource declares the back-office resources the console manages.
// Each Definition drives one generic list, filter, form and row-action
// surface, so adding an admin area is a table entry rather than a page.
package resource

import (
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
)

// FieldKind selects how a form field is rendered and parsed.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldTextarea FieldKind = "textarea"
	FieldNumber   FieldKind = "number"
	// FieldDecimal accepts a decimal comma and is formatted with two decimals.
	FieldDecimal  FieldKind = "decimal"
	FieldEmail    FieldKind = "email"
	FieldURL      FieldKind = "url"
	FieldCheckbox FieldKind = "checkbox"
	FieldSelect   FieldKind = "select"
	// FieldLookup is a select whose options come from the lookups service.
	FieldLookup   FieldKind = "lookup"
	FieldFile     FieldKind = "file"
	FieldHidden   FieldKind = "hidden"
	FieldDate     FieldKind = "date"
	FieldDateTime FieldKind = "datetime"
	FieldPassword FieldKind = "password"
)

// ColumnKind selects how a table cell is rendered.
type ColumnKind string

const (
	ColumnText ColumnKind = "text"
	// ColumnTruncate cuts text at 60 characters.
	ColumnTruncate ColumnKind = "truncate"
	// ColumnBadge renders an active/inactive badge from a boolean.
	ColumnBadge ColumnKind = "badge"
	// ColumnStatus renders an enumerated status as a neutral badge.
	ColumnStatus ColumnKind = "status"
	// ColumnBool renders yes/no.
	ColumnBool  ColumnKind = "bool"
	ColumnMoney ColumnKind = "money"
	ColumnDate  ColumnKind = "date"
	ColumnImage ColumnKind = "image"
	// ColumnComposite joins the values of several paths with " / ".
	ColumnComposite ColumnKind = "composite"
)

// FilterKind selects how a list filter is rendered and encoded.
type FilterKind string

const (
	FilterSearch FilterKind = "search"
	FilterSelect FilterKind = "select"
	// FilterBool is a tri-state select: all, 1, 0.
	FilterBool FilterKind = "bool"
	// FilterDateRange emits <name>_from and <name>_to.
	FilterDateRange FilterKind = "date_range"
	FilterLookup    FilterKind = "lookup"
	FilterText      FilterKind = "text"
)

// Option is one static select choice. Label is a translation key resolved
// against the resource table, falling back to Value.
type Option struct {
	Value string
	Label string
}

// Field is one form input.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
	Options  []Option
	// Lookup names the lookup kind for FieldLookup fields.
	Lookup string
	// DependsOn names the field whose value scopes this lookup (city on country).
	DependsOn string
	// Accept is the file input accept list.
	Accept string
	// Preview is the record path holding the current file URL.
	Preview string
	// Placeholder is a translation key.
	Placeholder string
	// CreateOnly fields are rendered on new records only.
	CreateOnly bool
}

// Column is one table column. Label is a translation key.
type Column struct {
	Label string
	Kind  ColumnKind
	// Paths are record paths; composite columns join all of them.
	Paths []string
}

// Filter is one list filter.
type Filter struct {
	Name    string
	Kind    FilterKind
	Options []Option
	Lookup  string
}

// ActionScope says where a custom action is offered.
type ActionScope int

const (
	// ScopeRow actions apply to one record.
	ScopeRow ActionScope = iota
	// ScopeToolbar actions apply to the whole resource.
	ScopeToolbar
)

// Action is a custom upstream operation beyond CRUD (queue retry, purge,
// word check, vendor verification).
type Action struct {
	Name  string
	Scope ActionScope
	// Path is appended to the resource endpoint; "{id}" is replaced with the
	// record id. Empty posts to the endpoint itself.
	Path string
	// Permission overrides the default "<name>_<resource>" permission.
	Permission string
	Confirm    bool
	// Inputs are rendered as a small form before the action is sent.
	Inputs []Field
	// JSON sends the action body as JSON.
	JSON bool
}

// Upload describes a resource that accepts immediate multi-file uploads.
type Upload struct {
	Path  string
	Field string
}

// Definition describes one managed resource.
type Definition struct {
	// ID is the URL slug and translation subtree ("vendors").
	ID       string
	Endpoint apiclient.Endpoint
	Filters  []Filter
	Columns  []Column
	Fields   []Field
	// Translatable fields get per-language panels on the form.
	Translatable []string
	// OwnerField is the record path compared to the operator id; owner-scoped
	// resources also filter lists by user_id for non-admin operators.
	OwnerField string
	// ActiveField is toggled by the row toggle action; "" disables toggling.
	ActiveField string
	// ReadOnly resources offer no create, edit or delete.
	ReadOnly bool
	Actions  []Action
	Upload   *Upload
	// Permission is the suffix of the permission names (edit_<Permission>).
	Permission string
	// ExtraQuery is sent with every list request.
	ExtraQuery map[string]string
}

// Permission verbs.
const (
	VerbView    = "view"
	VerbCreate  = "create"
	VerbEdit    = "edit"
	VerbDelete  = "delete"
	VerbApprove = "approve"
)

// PermissionFor returns the permission name for verb, such as edit_vendors.
func (d Definition) PermissionFor(verb string) string {
	suffix := d.Permission
	if suffix == "" {
		suffix = d.ID
	}
	return verb + "_" + suffix
}

// ActionPermission returns the permission guarding a custom action.
func (d Definition) ActionPermission(action Action) string {
	if action.Permission != "" {
		return action.Permission
	}
	return d.PermissionFor(action.Name)
}

// TranslationSource returns the catalog source for the resource strings.
func (d Definition) TranslationSource() string {
	return "resources." + d.ID
}

// Field returns the named field.
func (d Definition) Field(name string) (Field, bool) {
	for _, field := range d.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// SearchFilter returns the name of the first free-text search filter, or ""
// when the resource has none.
func (d Definition) SearchFilter() string {
	for _, filter := range d.Filters {
		if filter.Kind == FilterSearch {
			return filter.Name
		}
	}
	return ""
}

// FileFields returns the file inputs of the form.
func (d Definition) FileFields() []Field {
	var out []Field
	for _, field := range d.Fields {
		if field.Kind == FieldFile {
			out = append(out, field)
		}
	}
	return out
}

// Action returns the named custom action for scope.
func (d Definition) Action(name string, scope ActionScope) (Action, bool) {
	for _, action := range d.Actions {
		if action.Name == name && action.Scope == scope {
			return action, true
		}
	}
	return Action{}, false
}

// ActionsFor returns the custom actions offered in scope.
func (d Definition) ActionsFor(scope ActionScope) []Action {
	var out []Action
	for _, action := range d.Actions {
		if action.Scope == scope {
			out = append(out, action)
		}
	}
	return out
}

// ActionEndpoint resolves the upstream endpoint for a custom action.
func (d Definition) ActionEndpoint(action Action, id string) apiclient.Endpoint {
	ep := d.Endpoint
	if action.Path != "" {
		path := strings.ReplaceAll(action.Path, "{id}", id)
		ep.Path = strings.TrimSuffix(ep.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	ep.JSONBody = action.JSON
	return ep
}

// Validate reports definition mistakes that would break rendering.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.New("resource id is required")
	}
	if strings.TrimSpace(d.Endpoint.Path) == "" {
		return fmt.Errorf("resource %s: endpoint path is required", d.ID)
	}
	if d.Endpoint.Style == apiclient.StyleAction && d.Endpoint.Entity == "" {
		return fmt.Errorf("resource %s: action-style endpoint needs an entity", d.ID)
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("resource %s: at least one column is required", d.ID)
	}
	seen := map[string]bool{}
	for _, field := range d.Fields {
		if field.Name == "" {
			return fmt.Errorf("resource %s: field without name", d.ID)
		}
		if seen[field.Name] {
			return fmt.Errorf("resource %s: duplicate field %s", d.ID, field.Name)
		}
		seen[field.Name] = true
		if field.Kind == FieldLookup && field.Lookup == "" {
			return fmt.Errorf("resource %s: lookup field %s needs a lookup kind", d.ID, field.Name)
		}
		if field.Kind == FieldSelect && len(field.Options) == 0 {
			return fmt.Errorf("resource %s: select field %s needs options", d.ID, field.Name)
		}
	}
	for _, field := range d.Fields {
		if field.DependsOn != "" && !seen[field.DependsOn] {
			return fmt.Errorf("resource %s: field %s depends on unknown field %s", d.ID, field.Name, field.DependsOn)
		}
	}
	if d.ActiveField != "" && d.ReadOnly {
		return fmt.Errorf("resource %s: read-only resources cannot toggle %s", d.ID, d.ActiveField)
	}
	return nil
}
