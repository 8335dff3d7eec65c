package resource

import (
	"strings"
	"testing"

	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
)

func TestDefaultCatalogHasEveryResource(t *testing.T) {
	t.Parallel()

	want := []string{
		"addresses", "bad_words", "banners", "carts", "delivery_companies", "drivers",
		"flash_sales", "job_categories", "media", "menus", "payment_methods", "products",
		"queues", "seo_meta", "stock_movements", "users", "vendors",
	}
	got := Default().IDs()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
}

func TestOnlyVendorsRetry(t *testing.T) {
	t.Parallel()

	for _, def := range Default().All() {
		if def.Endpoint.Retry != (def.ID == "vendors") {
			t.Fatalf("%s retry = %v", def.ID, def.Endpoint.Retry)
		}
		if def.Endpoint.Name != def.ID {
			t.Fatalf("%s endpoint name = %q", def.ID, def.Endpoint.Name)
		}
	}
}

func TestSearchFilter(t *testing.T) {
	t.Parallel()

	catalog := Default()
	for id, want := range map[string]string{"media": "filename", "vendors": "search"} {
		def, ok := catalog.Lookup(id)
		if !ok {
			t.Fatalf("missing %s", id)
		}
		if got := def.SearchFilter(); got != want {
			t.Fatalf("%s SearchFilter() = %q, want %q", id, got, want)
		}
	}
	if got := (Definition{ID: "plain"}).SearchFilter(); got != "" {
		t.Fatalf("SearchFilter() without filters = %q", got)
	}
}

func TestReadOnlyResources(t *testing.T) {
	t.Parallel()

	catalog := Default()
	for _, id := range []string{"carts", "queues", "stock_movements"} {
		def, ok := catalog.Lookup(id)
		if !ok {
			t.Fatalf("missing %s", id)
		}
		if !def.ReadOnly {
			t.Fatalf("%s should be read-only", id)
		}
	}
}

func TestNewCatalogRejectsInvalidDefinitions(t *testing.T) {
	t.Parallel()

	valid := Definition{ID: "things", Endpoint: apiclient.Endpoint{Path: "things"}, Columns: []Column{text("name")}}
	tests := []struct {
		name string
		defs []Definition
	}{
		{name: "duplicate id", defs: []Definition{valid, valid}},
		{name: "missing endpoint", defs: []Definition{{ID: "x", Columns: valid.Columns}}},
		{name: "action style without entity", defs: []Definition{{ID: "x", Endpoint: apiclient.Endpoint{Path: "x.php", Style: apiclient.StyleAction}, Columns: valid.Columns}}},
		{name: "no columns", defs: []Definition{{ID: "x", Endpoint: apiclient.Endpoint{Path: "x"}}}},
		{name: "lookup without kind", defs: []Definition{{ID: "x", Endpoint: apiclient.Endpoint{Path: "x"}, Columns: valid.Columns, Fields: []Field{{Name: "a", Kind: FieldLookup}}}}},
		{name: "unknown dependency", defs: []Definition{{ID: "x", Endpoint: apiclient.Endpoint{Path: "x"}, Columns: valid.Columns, Fields: []Field{{Name: "city_id", Kind: FieldLookup, Lookup: "cities", DependsOn: "country_id"}}}}},
		{name: "read-only toggle", defs: []Definition{{ID: "x", Endpoint: apiclient.Endpoint{Path: "x"}, Columns: valid.Columns, ReadOnly: true, ActiveField: "is_active"}}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewCatalog(tc.defs...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestPermissionNames(t *testing.T) {
	t.Parallel()

	catalog := Default()
	vendors, _ := catalog.Lookup("vendors")
	if got := vendors.PermissionFor(VerbEdit); got != "edit_vendors" {
		t.Fatalf("PermissionFor(edit) = %q", got)
	}
	verify, ok := vendors.Action("toggle_verify", ScopeRow)
	if !ok {
		t.Fatal("missing toggle_verify")
	}
	if got := vendors.ActionPermission(verify); got != "approve_vendors" {
		t.Fatalf("ActionPermission() = %q", got)
	}

	media, _ := catalog.Lookup("media")
	if got := media.PermissionFor(VerbDelete); got != "delete_images" {
		t.Fatalf("media delete permission = %q", got)
	}
}

func TestActionEndpoint(t *testing.T) {
	t.Parallel()

	catalog := Default()
	vendors, _ := catalog.Lookup("vendors")
	verify, _ := vendors.Action("toggle_verify", ScopeRow)
	ep := vendors.ActionEndpoint(verify, "42")
	if ep.Path != "vendors/42" || !ep.Retry {
		t.Fatalf("endpoint = %+v", ep)
	}

	queues, _ := catalog.Lookup("queues")
	purge, ok := queues.Action("purge", ScopeToolbar)
	if !ok {
		t.Fatal("missing purge")
	}
	ep = queues.ActionEndpoint(purge, "")
	if ep.Path != "queues/purge" || !ep.JSONBody {
		t.Fatalf("endpoint = %+v", ep)
	}
	if _, ok := queues.Action("purge", ScopeRow); ok {
		t.Fatal("purge is a toolbar action")
	}
}
