package resource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
)

// Catalog is an ordered, validated set of resource definitions.
type Catalog struct {
	ordered []Definition
	byID    map[string]Definition
}

// NewCatalog validates defs and indexes them by id.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	catalog := &Catalog{byID: make(map[string]Definition, len(defs))}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, exists := catalog.byID[def.ID]; exists {
			return nil, fmt.Errorf("resource %s: duplicate id", def.ID)
		}
		if def.Endpoint.Name == "" {
			def.Endpoint.Name = def.ID
		}
		catalog.byID[def.ID] = def
		catalog.ordered = append(catalog.ordered, def)
	}
	return catalog, nil
}

// Lookup returns the definition for id.
func (c *Catalog) Lookup(id string) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	def, ok := c.byID[strings.TrimSpace(id)]
	return def, ok
}

// All returns every definition in declaration order.
func (c *Catalog) All() []Definition {
	if c == nil {
		return nil
	}
	return append([]Definition(nil), c.ordered...)
}

// IDs returns the sorted resource ids.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.ordered))
	for _, def := range c.ordered {
		ids = append(ids, def.ID)
	}
	sort.Strings(ids)
	return ids
}

// Default returns the built-in back-office catalogue.
func Default() *Catalog {
	catalog, err := NewCatalog(Builtin()...)
	if err != nil {
		panic(err)
	}
	return catalog
}

const imageAccept = "image/png,image/jpeg,image/webp,image/gif"

func searchFilter() Filter {
	return Filter{Name: "search", Kind: FilterSearch}
}

func activeFilter() Filter {
	return Filter{Name: "is_active", Kind: FilterBool}
}

func activeColumn() Column {
	return Column{Label: "fields.is_active", Kind: ColumnBadge, Paths: []string{"is_active"}}
}

func activeField() Field {
	return Field{Name: "is_active", Kind: FieldCheckbox}
}

func text(name string, paths ...string) Column {
	if len(paths) == 0 {
		paths = []string{name}
	}
	return Column{Label: "fields." + name, Kind: ColumnText, Paths: paths}
}

func column(kind ColumnKind, name string, paths ...string) Column {
	if len(paths) == 0 {
		paths = []string{name}
	}
	return Column{Label: "fields." + name, Kind: kind, Paths: paths}
}

func options(values ...string) []Option {
	out := make([]Option, 0, len(values))
	for _, value := range values {
		out = append(out, Option{Value: value, Label: "options." + value})
	}
	return out
}

// Builtin returns the resource definitions managed by the console.
func Builtin() []Definition {
	return []Definition{
		{
			ID:       "delivery_companies",
			Endpoint: apiclient.Endpoint{Path: "routes/DeliveryCompany.php", Style: apiclient.StyleAction, Entity: "company"},
			Filters: []Filter{
				searchFilter(),
				{Name: "country_id", Kind: FilterLookup, Lookup: "countries"},
				activeFilter(),
			},
			Columns: []Column{
				text("name"),
				text("phone"),
				text("email"),
				column(ColumnComposite, "location", "country_name", "city_name"),
				text("rating"),
				activeColumn(),
			},
			Fields: []Field{
				{Name: "name", Kind: FieldText, Required: true},
				{Name: "slug", Kind: FieldText},
				{Name: "phone", Kind: FieldText, Required: true},
				{Name: "email", Kind: FieldEmail},
				{Name: "website_url", Kind: FieldURL},
				{Name: "country_id", Kind: FieldLookup, Lookup: "countries", Required: true},
				{Name: "city_id", Kind: FieldLookup, Lookup: "cities", DependsOn: "country_id"},
				{Name: "parent_id", Kind: FieldLookup, Lookup: "parents.delivery_companies"},
				{Name: "rating", Kind: FieldDecimal},
				{Name: "logo", Kind: FieldFile, Accept: imageAccept, Preview: "logo_url"},
				activeField(),
			},
			Translatable: []string{"name", "description"},
			OwnerField:   "user_id",
			ActiveField:  "is_active",
		},
		{
			ID:       "drivers",
			Endpoint: apiclient.Endpoint{Path: "routes/independent_drivers.php", Style: apiclient.StyleAction, Entity: "driver"},
			Filters: []Filter{
				searchFilter(),
				{Name: "status", Kind: FilterSelect, Options: options("active", "inactive", "suspended")},
				{Name: "vehicle_type", Kind: FilterSelect, Options: options("motorcycle", "car", "van", "truck")},
			},
			Columns: []Column{
				text("name"),
				text("phone"),
				column(ColumnStatus, "vehicle_type"),
				text("license_number"),
				column(ColumnStatus, "status"),
			},
			Fields: []Field{
				{Name: "name", Kind: FieldText, Required: true},
				{Name: "phone", Kind: FieldText, Required: true},
				{Name: "email", Kind: FieldEmail},
				{Name: "vehicle_type", Kind: FieldSelect, Options: options("motorcycle", "car", "van", "truck"), Required: true},
				{Name: "vehicle_number", Kind: FieldText},
				{Name: "license_number", Kind: FieldText, Required: true},
				{Name: "status", Kind: FieldSelect, Options: options("active", "inactive", "suspended")},
				{Name: "photo", Kind: FieldFile, Accept: imageAccept, Preview: "photo_url"},
			},
			OwnerField: "user_id",
		},
		{
			ID:       "addresses",
			Endpoint: apiclient.Endpoint{Path: "addresses"},
			Filters: []Filter{
				searchFilter(),
				{Name: "owner_type", Kind: FilterSelect, Options: options("user", "vendor", "company")},
				{Name: "country_id", Kind: FilterLookup, Lookup: "countries"},
			},
			Columns: []Column{
				column(ColumnComposite, "owner", "owner_type", "owner_id"),
				column(ColumnTruncate, "address_line1"),
				column(ColumnComposite, "location", "country_name", "city_name"),
				text("postal_code"),
				column(ColumnBool, "is_default"),
			},
			Fields: []Field{
				{Name: "owner_type", Kind: FieldSelect, Options: options("user", "vendor", "company"), Required: true},
				{Name: "owner_id", Kind: FieldNumber, Required: true},
				{Name: "address_line1", Kind: FieldText, Required: true},
				{Name: "address_line2", Kind: FieldText},
				{Name: "country_id", Kind: FieldLookup, Lookup: "countries", Required: true},
				{Name: "city_id", Kind: FieldLookup, Lookup: "cities", DependsOn: "country_id"},
				{Name: "postal_code", Kind: FieldText},
				{Name: "latitude", Kind: FieldDecimal},
				{Name: "longitude", Kind: FieldDecimal},
				{Name: "is_default", Kind: FieldCheckbox},
			},
		},
		{
			ID:       "bad_words",
			Endpoint: apiclient.Endpoint{Path: "bad_words", JSONBody: true},
			Filters: []Filter{
				searchFilter(),
				{Name: "severity", Kind: FilterSelect, Options: options("low", "medium", "high")},
				activeFilter(),
			},
			Columns: []Column{
				text("word"),
				column(ColumnStatus, "severity"),
				column(ColumnBool, "is_regex"),
				activeColumn(),
			},
			Fields: []Field{
				{Name: "word", Kind: FieldText, Required: true},
				{Name: "severity", Kind: FieldSelect, Options: options("low", "medium", "high"), Required: true},
				{Name: "is_regex", Kind: FieldCheckbox},
				activeField(),
			},
			Translatable: []string{"word"},
			ActiveField:  "is_active",
			Actions: []Action{
				{
					Name:       "check",
					Scope:      ScopeToolbar,
					Path:       "check",
					Permission: "view_bad_words",
					JSON:       true,
					Inputs:     []Field{{Name: "text", Kind: FieldTextarea, Required: true}},
				},
			},
		},
		{
			ID:       "banners",
			Endpoint: apiclient.Endpoint{Path: "banners"},
			Filters:  []Filter{searchFilter(), {Name: "position", Kind: FilterText}, activeFilter()},
			Columns: []Column{
				column(ColumnImage, "image", "image_url"),
				text("title"),
				text("position"),
				column(ColumnTruncate, "link_url"),
				activeColumn(),
			},
			Fields: []Field{
				{Name: "title", Kind: FieldText, Required: true},
				{Name: "link_url", Kind: FieldURL},
				{Name: "position", Kind: FieldNumber},
				{Name: "image_file", Kind: FieldFile, Accept: imageAccept, Preview: "image_url"},
				{Name: "mobile_image_file", Kind: FieldFile, Accept: imageAccept, Preview: "mobile_image_url"},
				activeField(),
			},
			Translatable: []string{"title", "subtitle"},
			ActiveField:  "is_active",
		},
		{
			ID:       "carts",
			Endpoint: apiclient.Endpoint{Path: "carts"},
			Filters: []Filter{
				searchFilter(),
				{Name: "status", Kind: FilterSelect, Options: options("active", "abandoned", "converted", "expired")},
				{Name: "entity_id", Kind: FilterLookup, Lookup: "entities"},
			},
			Columns: []Column{
				text("id"),
				column(ColumnComposite, "customer", "user_name", "user_email"),
				column(ColumnStatus, "status"),
				text("items_count"),
				column(ColumnMoney, "total"),
				column(ColumnDate, "updated_at"),
			},
			ReadOnly: true,
		},
		{
			ID:         "payment_methods",
			Endpoint:   apiclient.Endpoint{Path: "entity_payment_methods"},
			Permission: "payment_methods",
			Filters: []Filter{
				searchFilter(),
				{Name: "entity_id", Kind: FilterLookup, Lookup: "entities"},
				activeFilter(),
				{Name: "created", Kind: FilterDateRange},
			},
			Columns: []Column{
				text("entity_name"),
				text("method_name"),
				text("account_email"),
				activeColumn(),
				column(ColumnDate, "created_at"),
			},
			Fields: []Field{
				{Name: "entity_id", Kind: FieldLookup, Lookup: "entities", Required: true},
				{Name: "payment_method_id", Kind: FieldLookup, Lookup: "payment_methods", Required: true},
				{Name: "account_email", Kind: FieldEmail},
				{Name: "account_id", Kind: FieldText},
				activeField(),
			},
			ActiveField: "is_active",
		},
		{
			ID:       "flash_sales",
			Endpoint: apiclient.Endpoint{Path: "flash_sales"},
			Filters: []Filter{
				searchFilter(),
				{Name: "status", Kind: FilterSelect, Options: options("upcoming", "running", "ended")},
				activeFilter(),
			},
			Columns: []Column{
				image("banner_image_url"),
				text("sale_name", "sale_name"),
				column(ColumnComposite, "discount", "discount_value", "discount_type"),
				column(ColumnDate, "start_date"),
				column(ColumnDate, "end_date"),
				activeColumn(),
			},
			Fields: []Field{
				{Name: "sale_name", Kind: FieldText, Required: true},
				{Name: "description", Kind: FieldTextarea},
				{Name: "entity_id", Kind: FieldLookup, Lookup: "entities"},
				{Name: "discount_type", Kind: FieldSelect, Options: options("percentage", "fixed"), Required: true},
				{Name: "discount_value", Kind: FieldDecimal, Required: true},
				{Name: "max_discount_amount", Kind: FieldDecimal},
				{Name: "start_date", Kind: FieldDateTime, Required: true},
				{Name: "end_date", Kind: FieldDateTime, Required: true},
				{Name: "banner_image", Kind: FieldFile, Accept: imageAccept, Preview: "banner_image_url"},
				activeField(),
			},
			Translatable: []string{"sale_name", "description"},
			ActiveField:  "is_active",
		},
		{
			ID:         "media",
			Endpoint:   apiclient.Endpoint{Path: "images"},
			Permission: "images",
			Filters: []Filter{
				{Name: "filename", Kind: FilterSearch},
				{Name: "image_type_id", Kind: FilterLookup, Lookup: "image_types"},
				{Name: "visibility", Kind: FilterSelect, Options: options("public", "private")},
			},
			Columns: []Column{
				column(ColumnImage, "preview", "thumb_url", "url"),
				column(ColumnTruncate, "filename"),
				text("image_type", "image_type_name"),
				column(ColumnStatus, "visibility"),
				column(ColumnBool, "is_main"),
				column(ColumnDate, "created_at"),
			},
			Fields: []Field{
				{Name: "image_type_id", Kind: FieldLookup, Lookup: "image_types", Required: true},
				{Name: "owner_id", Kind: FieldNumber},
				{Name: "filename", Kind: FieldText},
				{Name: "url", Kind: FieldURL, Required: true},
				{Name: "visibility", Kind: FieldSelect, Options: options("public", "private")},
				{Name: "sort_order", Kind: FieldNumber},
				{Name: "is_main", Kind: FieldCheckbox},
			},
			Upload: &Upload{Path: "upload_image.php", Field: "files[]"},
		},
		{
			ID:       "job_categories",
			Endpoint: apiclient.Endpoint{Path: "job_categories"},
			Filters: []Filter{
				searchFilter(),
				{Name: "parent_id", Kind: FilterLookup, Lookup: "parents.job_categories"},
				activeFilter(),
			},
			Columns: []Column{
				image("icon_url"),
				text("name"),
				text("slug"),
				text("parent", "parent_name"),
				text("sort_order"),
				activeColumn(),
			},
			Fields: []Field{
				{Name: "slug", Kind: FieldText, Required: true},
				{Name: "parent_id", Kind: FieldLookup, Lookup: "parents.job_categories"},
				{Name: "sort_order", Kind: FieldNumber},
				{Name: "icon_url", Kind: FieldURL},
				{Name: "image_url", Kind: FieldURL},
				activeField(),
			},
			Translatable: []string{"name", "description"},
			ActiveField:  "is_active",
		},
		{
			ID:       "menus",
			Endpoint: apiclient.Endpoint{Path: "categories"},
			Filters: []Filter{
				searchFilter(),
				{Name: "type", Kind: FilterSelect, Options: options("product", "service", "job")},
				activeFilter(),
			},
			Columns: []Column{
				text("name"),
				text("slug"),
				column(ColumnStatus, "type"),
				text("sort_order"),
				column(ColumnBool, "is_featured"),
				activeColumn(),
			},
			Fields: []Field{
				{Name: "name", Kind: FieldText, Required: true},
				{Name: "slug", Kind: FieldText, Required: true},
				{Name: "type", Kind: FieldSelect, Options: options("product", "service", "job")},
				{Name: "parent_id", Kind: FieldLookup, Lookup: "parents.menus"},
				{Name: "sort_order", Kind: FieldNumber},
				{Name: "description", Kind: FieldTextarea},
				{Name: "is_featured", Kind: FieldCheckbox},
				activeField(),
			},
			Translatable: []string{"name", "description"},
			ActiveField:  "is_active",
		},
		{
			ID:       "products",
			Endpoint: apiclient.Endpoint{Path: "products"},
			Filters: []Filter{
				searchFilter(),
				{Name: "brand_id", Kind: FilterLookup, Lookup: "brands"},
				{Name: "category_id", Kind: FilterLookup, Lookup: "categories"},
				activeFilter(),
			},
			Columns: []Column{
				image("main_image_url"),
				text("sku"),
				column(ColumnTruncate, "name"),
				text("brand", "brand_name"),
				column(ColumnMoney, "price"),
				text("stock_quantity"),
				activeColumn(),
			},
			Fields: []Field{
				{Name: "sku", Kind: FieldText, Required: true},
				{Name: "name", Kind: FieldText, Required: true},
				{Name: "brand_id", Kind: FieldLookup, Lookup: "brands"},
				{Name: "category_id", Kind: FieldLookup, Lookup: "categories"},
				{Name: "currency_code", Kind: FieldLookup, Lookup: "currencies"},
				{Name: "price", Kind: FieldDecimal, Required: true},
				{Name: "stock_quantity", Kind: FieldNumber},
				{Name: "description", Kind: FieldTextarea},
				{Name: "main_image", Kind: FieldFile, Accept: imageAccept, Preview: "main_image_url"},
				activeField(),
			},
			Translatable: []string{"name", "description"},
			OwnerField:   "user_id",
			ActiveField:  "is_active",
		},
		{
			ID:       "queues",
			Endpoint: apiclient.Endpoint{Path: "queues"},
			Filters: []Filter{
				searchFilter(),
				{Name: "queue", Kind: FilterLookup, Lookup: "queue_names"},
				{Name: "status", Kind: FilterSelect, Options: options("pending", "processing", "done", "failed")},
			},
			Columns: []Column{
				text("id"),
				text("queue"),
				column(ColumnStatus, "status"),
				text("attempts"),
				column(ColumnTruncate, "payload"),
				column(ColumnDate, "created_at"),
			},
			ReadOnly: true,
			Actions: []Action{
				{Name: "retry", Scope: ScopeRow, Path: "retry", JSON: true},
				{
					Name:    "purge",
					Scope:   ScopeToolbar,
					Path:    "purge",
					JSON:    true,
					Confirm: true,
					Inputs: []Field{
						{Name: "status", Kind: FieldSelect, Options: options("done", "failed"), Required: true},
						{Name: "days", Kind: FieldNumber, Required: true},
					},
				},
				{Name: "archive", Scope: ScopeToolbar, Path: "archive", JSON: true, Confirm: true},
			},
		},
		{
			ID:       "seo_meta",
			Endpoint: apiclient.Endpoint{Path: "seo_meta", JSONBody: true},
			Filters: []Filter{
				searchFilter(),
				{Name: "entity_type", Kind: FilterSelect, Options: options("product", "category", "vendor", "page")},
			},
			Columns: []Column{
				column(ColumnComposite, "entity", "entity_type", "entity_id"),
				column(ColumnTruncate, "canonical_url"),
				text("robots"),
				column(ColumnDate, "updated_at"),
			},
			Fields: []Field{
				{Name: "entity_type", Kind: FieldSelect, Options: options("product", "category", "vendor", "page"), Required: true},
				{Name: "entity_id", Kind: FieldNumber, Required: true},
				{Name: "canonical_url", Kind: FieldURL},
				{Name: "robots", Kind: FieldSelect, Options: options("index,follow", "noindex,follow", "index,nofollow", "noindex,nofollow")},
				{Name: "schema_markup", Kind: FieldTextarea},
			},
			Translatable: []string{"meta_title", "meta_description", "meta_keywords", "og_title", "og_description", "og_image"},
		},
		{
			ID:       "stock_movements",
			Endpoint: apiclient.Endpoint{Path: "product_stock_movements"},
			Filters: []Filter{
				searchFilter(),
				{Name: "movement_type", Kind: FilterSelect, Options: options("sale", "restock", "return", "adjustment")},
				{Name: "created", Kind: FilterDateRange},
			},
			Columns: []Column{
				text("product", "product_name"),
				text("sku"),
				column(ColumnStatus, "movement_type"),
				text("change_quantity"),
				text("reference_id"),
				column(ColumnDate, "created_at"),
			},
			ReadOnly: true,
		},
		{
			ID:       "users",
			Endpoint: apiclient.Endpoint{Path: "users_account"},
			Filters: []Filter{
				searchFilter(),
				{Name: "role_id", Kind: FilterLookup, Lookup: "roles"},
				activeFilter(),
			},
			Columns: []Column{
				text("username"),
				text("email"),
				text("role", "role_name"),
				column(ColumnComposite, "location", "country_name", "city_name"),
				activeColumn(),
				column(ColumnDate, "created_at"),
			},
			Fields: []Field{
				{Name: "username", Kind: FieldText, Required: true},
				{Name: "email", Kind: FieldEmail, Required: true},
				{Name: "password", Kind: FieldPassword, Required: true, CreateOnly: true},
				{Name: "phone", Kind: FieldText},
				{Name: "role_id", Kind: FieldLookup, Lookup: "roles"},
				{Name: "preferred_language", Kind: FieldLookup, Lookup: "languages"},
				{Name: "timezone", Kind: FieldLookup, Lookup: "timezones"},
				{Name: "country_id", Kind: FieldLookup, Lookup: "countries"},
				{Name: "city_id", Kind: FieldLookup, Lookup: "cities", DependsOn: "country_id"},
				activeField(),
			},
			ActiveField: "is_active",
		},
		{
			ID:       "vendors",
			Endpoint: apiclient.Endpoint{Path: "vendors", Retry: true},
			Filters: []Filter{
				searchFilter(),
				{Name: "status", Kind: FilterSelect, Options: options("pending", "approved", "suspended", "rejected")},
				{Name: "is_verified", Kind: FilterBool},
				{Name: "country_id", Kind: FilterLookup, Lookup: "countries"},
			},
			Columns: []Column{
				image("logo_url"),
				text("store_name"),
				column(ColumnComposite, "location", "country_name", "city_name"),
				column(ColumnStatus, "status"),
				column(ColumnBool, "is_verified"),
				activeColumn(),
			},
			Fields: []Field{
				{Name: "store_name", Kind: FieldText, Required: true},
				{Name: "slug", Kind: FieldText},
				{Name: "email", Kind: FieldEmail},
				{Name: "phone", Kind: FieldText},
				{Name: "country_id", Kind: FieldLookup, Lookup: "countries", Required: true},
				{Name: "city_id", Kind: FieldLookup, Lookup: "cities", DependsOn: "country_id"},
				{Name: "is_branch", Kind: FieldCheckbox},
				{Name: "parent_id", Kind: FieldLookup, Lookup: "parents.vendors"},
				{Name: "status", Kind: FieldSelect, Options: options("pending", "approved", "suspended", "rejected")},
				{Name: "commission_rate", Kind: FieldDecimal},
				{Name: "logo", Kind: FieldFile, Accept: imageAccept, Preview: "logo_url"},
				{Name: "cover", Kind: FieldFile, Accept: imageAccept, Preview: "cover_url"},
				{Name: "banner", Kind: FieldFile, Accept: imageAccept, Preview: "banner_url"},
				activeField(),
			},
			Translatable: []string{"store_name", "description"},
			OwnerField:   "user_id",
			ActiveField:  "is_active",
			Actions: []Action{
				{Name: "toggle_verify", Scope: ScopeRow, Path: "{id}", Permission: "approve_vendors"},
			},
		},
	}
}

func image(path string) Column {
	return Column{Label: "fields.image", Kind: ColumnImage, Paths: []string{path}}
}
