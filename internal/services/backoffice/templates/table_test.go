package templates

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/authz"
	"github.com/louisbranch/backoffice/internal/services/backoffice/listing"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
)

func vendorsDefinition(t *testing.T) resource.Definition {
	t.Helper()
	def, ok := resource.Default().Lookup("vendors")
	if !ok {
		t.Fatal("vendors definition missing")
	}
	return def
}

func TestTableEscapesRecordText(t *testing.T) {
	t.Parallel()

	def := vendorsDefinition(t)
	record := apiclient.NewRecord(`{"id":7,"store_name":"<script>alert(1)</script>","country_name":"Jordan","city_name":"Amman","status":"approved","is_verified":1,"is_active":true,"logo_url":"javascript:alert(1)"}`)
	view := TableView{
		Def:        def,
		Rows:       []Row{{ID: "7", Record: record, Actions: authz.RowActions{Edit: true}}},
		Pagination: listing.Paginate(1, 1, listing.DefaultPerPage),
		Generation: 42,
	}
	markup := renderString(t, Table(englishTable("vendors"), view))
	if strings.Contains(markup, "<script>") {
		t.Fatalf("markup contains raw script: %s", markup)
	}
	doc := parseFragment(t, markup)
	if scripts := findAll(doc, byTag("script")); len(scripts) != 0 {
		t.Fatalf("script elements = %d", len(scripts))
	}
	if imgs := findAll(doc, byTag("img")); len(imgs) != 0 {
		t.Fatalf("unsafe image rendered: %d", len(imgs))
	}
	cells := findAll(doc, byTag("td"))
	if got := textOf(cells[1]); got != "<script>alert(1)</script>" {
		t.Fatalf("store name cell = %q", got)
	}
	if got := textOf(cells[2]); got != "Jordan / Amman" {
		t.Fatalf("location cell = %q", got)
	}
	regions := findAll(doc, byAttr("id", "table-vendors"))
	if len(regions) != 1 {
		t.Fatalf("table regions = %d", len(regions))
	}
	if gen, _ := attr(regions[0], "data-gen"); gen != "42" {
		t.Fatalf("data-gen = %q", gen)
	}
	if edits := findAll(doc, byAttr("hx-get", "/r/vendors/7/edit")); len(edits) != 1 {
		t.Fatalf("edit buttons = %d", len(edits))
	}
	if deletes := findAll(doc, byAttr("hx-post", "/r/vendors/7/delete")); len(deletes) != 0 {
		t.Fatalf("delete buttons = %d, want none", len(deletes))
	}
	muted := findAll(doc, byClass("toggle-disabled"))
	if len(muted) != 1 || textOf(muted[0]) != "Active" {
		t.Fatalf("disabled toggle = %v", muted)
	}
}

func TestTableRowActionsFollowCapabilities(t *testing.T) {
	t.Parallel()

	def := vendorsDefinition(t)
	record := apiclient.NewRecord(`{"id":3,"store_name":"Acme","is_active":false}`)
	verify, _ := def.Action("toggle_verify", resource.ScopeRow)
	view := TableView{
		Def: def,
		Rows: []Row{{
			ID:      "3",
			Record:  record,
			Actions: authz.RowActions{Edit: true, Delete: true, Toggle: true},
			Custom:  []resource.Action{verify},
		}},
		Pagination: listing.Paginate(1, 1, listing.DefaultPerPage),
	}
	doc := parseFragment(t, renderString(t, Table(englishTable("vendors"), view)))

	toggles := findAll(doc, byAttr("hx-post", "/r/vendors/3/toggle"))
	if len(toggles) != 1 || textOf(toggles[0]) != "Activate" {
		t.Fatalf("toggle = %v", toggles)
	}
	deletes := findAll(doc, byAttr("hx-post", "/r/vendors/3/delete"))
	if len(deletes) != 1 {
		t.Fatalf("delete buttons = %d", len(deletes))
	}
	if vals, _ := attr(deletes[0], "hx-vals"); vals != `{"confirm":"yes"}` {
		t.Fatalf("delete hx-vals = %q", vals)
	}
	if _, ok := attr(deletes[0], "hx-confirm"); !ok {
		t.Fatal("delete without hx-confirm")
	}
	actions := findAll(doc, byAttr("hx-post", "/r/vendors/3/action"))
	if len(actions) != 1 {
		t.Fatalf("row actions = %d", len(actions))
	}
	if vals, _ := attr(actions[0], "hx-vals"); vals != `{"op":"toggle_verify"}` {
		t.Fatalf("row action hx-vals = %q", vals)
	}
}

func TestTableEmptyAndErrorRows(t *testing.T) {
	t.Parallel()

	def := vendorsDefinition(t)
	span := "7"
	tests := []struct {
		name  string
		view  TableView
		class string
		want  string
	}{
		{
			name:  "no records",
			view:  TableView{Def: def, Pagination: listing.Paginate(0, 1, listing.DefaultPerPage)},
			class: "empty-row",
			want:  "No records found",
		},
		{
			name:  "load failure",
			view:  TableView{Def: def, Error: "upstream down"},
			class: "error-row",
			want:  "Failed to load records: upstream down",
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			doc := parseFragment(t, renderString(t, Table(englishTable("vendors"), tc.view)))
			rows := findAll(doc, byClass(tc.class))
			if len(rows) != 1 {
				t.Fatalf("%s rows = %d", tc.class, len(rows))
			}
			cell := findAll(rows[0], byTag("td"))[0]
			if got, _ := attr(cell, "colspan"); got != span {
				t.Fatalf("colspan = %q, want %s", got, span)
			}
			if got := textOf(cell); got != tc.want {
				t.Fatalf("text = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCellKinds(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 70)
	record := apiclient.NewRecord(`{"id":1,"note":"` + long + `","when":"2024-03-05 10:11:12","price":"12.5","flag":"1","state":"approved","active":0,"country":"Jordan","city":null,"img":"https://cdn.example.com/a.png"}`)
	tests := []struct {
		name   string
		column resource.Column
		want   string
	}{
		{name: "truncate", column: resource.Column{Kind: resource.ColumnTruncate, Paths: []string{"note"}}, want: strings.Repeat("a", 60) + "..."},
		{name: "date", column: resource.Column{Kind: resource.ColumnDate, Paths: []string{"when"}}, want: "2024-03-05"},
		{name: "money", column: resource.Column{Kind: resource.ColumnMoney, Paths: []string{"price"}}, want: "12.50"},
		{name: "bool", column: resource.Column{Kind: resource.ColumnBool, Paths: []string{"flag"}}, want: "Yes"},
		{name: "status", column: resource.Column{Kind: resource.ColumnStatus, Paths: []string{"state"}}, want: "Approved"},
		{name: "badge", column: resource.Column{Kind: resource.ColumnBadge, Paths: []string{"active"}}, want: "Inactive"},
		{name: "composite skips blanks", column: resource.Column{Kind: resource.ColumnComposite, Paths: []string{"country", "city"}}, want: "Jordan"},
		{name: "text", column: resource.Column{Kind: resource.ColumnText, Paths: []string{"country"}}, want: "Jordan"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			def := resource.Definition{ID: "things", Columns: []resource.Column{tc.column}}
			view := TableView{Def: def, Rows: []Row{{ID: "1", Record: record}}}
			doc := parseFragment(t, renderString(t, tableRows(englishTable("things"), view)))
			cells := findAll(doc, byTag("td"))
			if got := textOf(cells[0]); got != tc.want {
				t.Fatalf("cell = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestImageCellRendersSafeURL(t *testing.T) {
	t.Parallel()

	record := apiclient.NewRecord(`{"id":1,"thumb":"","url":"https://cdn.example.com/a.png"}`)
	def := resource.Definition{ID: "media", Columns: []resource.Column{{Kind: resource.ColumnImage, Paths: []string{"thumb", "url"}}}}
	doc := parseFragment(t, renderString(t, tableRows(englishTable("media"), TableView{Def: def, Rows: []Row{{ID: "1", Record: record}}})))
	imgs := findAll(doc, byTag("img"))
	if len(imgs) != 1 {
		t.Fatalf("images = %d", len(imgs))
	}
	if src, _ := attr(imgs[0], "src"); src != "https://cdn.example.com/a.png" {
		t.Fatalf("src = %q", src)
	}
}

func TestPaginationWindow(t *testing.T) {
	t.Parallel()

	p := listing.Paginate(237, 5, 25)
	doc := parseFragment(t, renderString(t, paginationNav(englishTable("vendors"), "vendors", p)))

	var labels []string
	for _, button := range findAll(doc, byTag("button")) {
		labels = append(labels, textOf(button))
	}
	want := []string{"Previous", "1", "3", "4", "5", "6", "7", "10", "Next"}
	if strings.Join(labels, " ") != strings.Join(want, " ") {
		t.Fatalf("buttons = %v, want %v", labels, want)
	}
	if ellipses := findAll(doc, byClass("ellipsis")); len(ellipses) != 2 {
		t.Fatalf("ellipses = %d", len(ellipses))
	}
	current := findAll(doc, byAttr("aria-current", "page"))
	if len(current) != 1 || textOf(current[0]) != "5" {
		t.Fatalf("current = %v", current)
	}
	var six *html.Node
	for _, button := range findAll(doc, byTag("button")) {
		if textOf(button) == "6" {
			six = button
		}
	}
	if six == nil {
		t.Fatal("missing page 6 control")
	}
	if get, _ := attr(six, "hx-get"); get != "/r/vendors/rows?page=6" {
		t.Fatalf("page 6 hx-get = %q", get)
	}
	if include, _ := attr(six, "hx-include"); include != "#filters-vendors" {
		t.Fatalf("hx-include = %q", include)
	}
	buttons := findAll(doc, byTag("button"))
	if get, _ := attr(buttons[len(buttons)-1], "hx-get"); get != "/r/vendors/rows?page=6" {
		t.Fatalf("next hx-get = %q", get)
	}
	summary := findAll(doc, byClass("summary"))
	if got := textOf(summary[0]); got != "Showing 101-125 of 237" {
		t.Fatalf("summary = %q", got)
	}
}

func TestPaginationDisablesEdges(t *testing.T) {
	t.Parallel()

	doc := parseFragment(t, renderString(t, paginationNav(englishTable("vendors"), "vendors", listing.Paginate(60, 1, 25))))
	buttons := findAll(doc, byTag("button"))
	first, last := buttons[0], buttons[len(buttons)-1]
	if _, ok := attr(first, "disabled"); !ok {
		t.Fatal("previous should be disabled on page 1")
	}
	if _, ok := attr(last, "disabled"); ok {
		t.Fatal("next should be enabled on page 1 of 3")
	}
	if _, ok := attr(first, "hx-get"); ok {
		t.Fatal("disabled control must not request")
	}
}

func TestPaginationSinglePageHasNoControls(t *testing.T) {
	t.Parallel()

	doc := parseFragment(t, renderString(t, paginationNav(englishTable("vendors"), "vendors", listing.Paginate(3, 1, 25))))
	if buttons := findAll(doc, func(n *html.Node) bool { return n.Data == "button" }); len(buttons) != 0 {
		t.Fatalf("buttons = %d", len(buttons))
	}
}
