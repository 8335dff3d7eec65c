package lookups

import (
	"sort"
	"strings"

	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
)

// ParentsPrefix prefixes lookups that list records of another resource.
const ParentsPrefix = "parents."

// Kind describes where one option list comes from.
type Kind struct {
	Name string
	// Path is fetched with the client's generic GET unless Endpoint is set.
	Path string
	// Endpoint lists the records of a managed resource.
	Endpoint *apiclient.Endpoint
	// ParentParam names the query parameter scoping this lookup; a kind with
	// a ParentParam returns nothing until a parent is chosen.
	ParentParam string
	// Value is the record path used as option value ("id" when blank).
	Value string
	// Label renders the option text.
	Label func(apiclient.Record) string
	// OwnerScoped kinds list records of an owner-scoped resource, so their
	// contents depend on who asks.
	OwnerScoped bool
}

// NeedsParent reports whether the kind is scoped by a parent value.
func (k Kind) NeedsParent() bool {
	return k.ParentParam != ""
}

// Registry maps lookup names to kinds.
type Registry struct {
	kinds map[string]Kind
}

// Paths overrides the upstream helpers used by the country/city cascade.
type Paths struct {
	Countries string
	Cities    string
}

// NewRegistry builds the registry of built-in lookups plus one parents.<id>
// kind for every resource the catalog names in a lookup field.
func NewRegistry(catalog *resource.Catalog, paths Paths) *Registry {
	countries := strings.TrimSpace(paths.Countries)
	if countries == "" {
		countries = "helpers/countries"
	}
	cities := strings.TrimSpace(paths.Cities)
	if cities == "" {
		cities = "helpers/cities"
	}
	kinds := []Kind{
		{Name: "countries", Path: countries, Label: countryLabel},
		{Name: "cities", Path: cities, ParentParam: "country_id", Label: nameLabel},
		{Name: "languages", Path: "languages", Value: "code", Label: nameLabel},
		{Name: "roles", Path: "roles", Label: nameLabel},
		{Name: "timezones", Path: "helpers/timezones", Value: "name", Label: nameLabel},
		{Name: "entities", Path: "entities", Label: nameLabel},
		{Name: "payment_methods", Path: "payment_methods", Label: nameLabel},
		{Name: "image_types", Path: "image_types", Label: nameLabel},
		{Name: "brands", Path: "brands", Label: nameLabel},
		{Name: "categories", Path: "categories", Label: nameLabel},
		{Name: "currencies", Path: "currencies", Value: "code", Label: currencyLabel},
		{Name: "queue_names", Path: "jobs/queues", Value: "name", Label: nameLabel},
	}
	r := &Registry{kinds: make(map[string]Kind, len(kinds))}
	for _, kind := range kinds {
		r.kinds[kind.Name] = kind
	}
	if catalog != nil {
		for _, def := range catalog.All() {
			for _, name := range lookupNames(def) {
				id, ok := strings.CutPrefix(name, ParentsPrefix)
				if !ok {
					continue
				}
				target, found := catalog.Lookup(id)
				if !found {
					continue
				}
				ep := target.Endpoint
				r.kinds[name] = Kind{Name: name, Endpoint: &ep, Label: nameLabel, OwnerScoped: target.OwnerField != ""}
			}
		}
	}
	return r
}

// Kind returns the named lookup.
func (r *Registry) Kind(name string) (Kind, bool) {
	kind, ok := r.kinds[strings.TrimSpace(name)]
	return kind, ok
}

// Names returns the registered lookup names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupNames(def resource.Definition) []string {
	var names []string
	for _, field := range def.Fields {
		if field.Lookup != "" {
			names = append(names, field.Lookup)
		}
	}
	for _, filter := range def.Filters {
		if filter.Lookup != "" {
			names = append(names, filter.Lookup)
		}
	}
	return names
}

func nameLabel(record apiclient.Record) string {
	for _, path := range []string{"name", "title", "name_local", "label"} {
		if value := strings.TrimSpace(record.String(path)); value != "" {
			return value
		}
	}
	if id := record.ID(); id != "" {
		return "#" + id
	}
	return ""
}

func countryLabel(record apiclient.Record) string {
	label := nameLabel(record)
	if iso := strings.TrimSpace(record.String("iso2")); iso != "" {
		return label + " (" + iso + ")"
	}
	return label
}

func currencyLabel(record apiclient.Record) string {
	code := strings.TrimSpace(record.String("code"))
	name := nameLabel(record)
	if code == "" || name == "" || name == "#"+record.ID() {
		return firstNonEmpty(code, name)
	}
	return code + " - " + name
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
