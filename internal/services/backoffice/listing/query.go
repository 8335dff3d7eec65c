// Package listing turns filter state into upstream list queries and computes
// pagination windows.
package listing

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
)

const (
	// DefaultPerPage is the fixed list page size.
	DefaultPerPage = 25
	// ExportPerPage is the page size used when following every page.
	ExportPerPage = 100
	// PageParam is the query parameter carrying the requested page.
	PageParam = "page"
	// GenerationParam is echoed back so out-of-order swaps are detectable.
	GenerationParam = "gen"
)

// Params is the filter and paging state of one list request.
type Params struct {
	// Filters holds raw filter values keyed by parameter name. Date ranges use
	// <name>_from and <name>_to.
	Filters    map[string]string
	Page       int
	PerPage    int
	Language   string
	OwnerID    string
	Generation int
}

// ParseParams reads the filters declared by def from values.
func ParseParams(def resource.Definition, values url.Values, perPage int) Params {
	params := Params{
		Filters: map[string]string{},
		Page:    positiveInt(values.Get(PageParam), 1),
		PerPage: perPage,
	}
	if params.PerPage <= 0 {
		params.PerPage = DefaultPerPage
	}
	params.Generation = positiveInt(values.Get(GenerationParam), 0)
	for _, filter := range def.Filters {
		for _, name := range FilterParams(filter) {
			if value := strings.TrimSpace(values.Get(name)); value != "" {
				params.Filters[name] = value
			}
		}
	}
	return params
}

// FilterParams returns the query parameter names a filter occupies.
func FilterParams(filter resource.Filter) []string {
	if filter.Kind == resource.FilterDateRange {
		return []string{filter.Name + "_from", filter.Name + "_to"}
	}
	return []string{filter.Name}
}

// Query builds the upstream list query. Blank filters are omitted and the
// page becomes page, limit and offset.
func Query(def resource.Definition, params Params) url.Values {
	query := url.Values{}
	for key, value := range def.ExtraQuery {
		query.Set(key, value)
	}
	for _, filter := range def.Filters {
		for _, name := range FilterParams(filter) {
			value := strings.TrimSpace(params.Filters[name])
			if value == "" {
				continue
			}
			if filter.Kind == resource.FilterBool && value != "0" && value != "1" {
				continue
			}
			query.Set(name, value)
		}
	}
	page := params.Page
	if page < 1 {
		page = 1
	}
	perPage := params.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(perPage))
	query.Set("offset", strconv.Itoa((page-1)*perPage))
	if lang := strings.TrimSpace(params.Language); lang != "" {
		query.Set("lang", lang)
	}
	if owner := strings.TrimSpace(params.OwnerID); owner != "" {
		query.Set("user_id", owner)
	}
	return query
}

// Values re-encodes the filter state for links that must keep it (pagination
// buttons, export).
func (p Params) Values() url.Values {
	values := url.Values{}
	for key, value := range p.Filters {
		values.Set(key, value)
	}
	if p.Page > 1 {
		values.Set(PageParam, strconv.Itoa(p.Page))
	}
	return values
}

func positiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
