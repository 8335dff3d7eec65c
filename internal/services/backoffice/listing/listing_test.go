package listing

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"testing"

	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
)

func renderItems(items []PageItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item.Ellipsis {
			parts = append(parts, "…")
			continue
		}
		parts = append(parts, fmt.Sprint(item.Page))
	}
	return strings.Join(parts, " ")
}

func TestPaginateWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		total     int
		page      int
		perPage   int
		wantPages int
		wantItems string
		wantPage  int
		wantFrom  int
		wantTo    int
	}{
		{name: "middle page", total: 237, page: 5, perPage: 25, wantPages: 10, wantItems: "1 … 3 4 5 6 7 … 10", wantPage: 5, wantFrom: 101, wantTo: 125},
		{name: "first page", total: 237, page: 1, perPage: 25, wantPages: 10, wantItems: "1 2 3 … 10", wantPage: 1, wantFrom: 1, wantTo: 25},
		{name: "last page", total: 237, page: 10, perPage: 25, wantPages: 10, wantItems: "1 … 8 9 10", wantPage: 10, wantFrom: 226, wantTo: 237},
		{name: "clamped high", total: 237, page: 99, perPage: 25, wantPages: 10, wantItems: "1 … 8 9 10", wantPage: 10, wantFrom: 226, wantTo: 237},
		{name: "clamped low", total: 30, page: -3, perPage: 25, wantPages: 2, wantItems: "1 2", wantPage: 1, wantFrom: 1, wantTo: 25},
		{name: "adjacent window", total: 237, page: 4, perPage: 25, wantPages: 10, wantItems: "1 2 3 4 5 6 … 10", wantPage: 4, wantFrom: 76, wantTo: 100},
		{name: "single page", total: 3, page: 1, perPage: 25, wantPages: 1, wantItems: "1", wantPage: 1, wantFrom: 1, wantTo: 3},
		{name: "empty", total: 0, page: 3, perPage: 25, wantPages: 0, wantItems: "", wantPage: 1, wantFrom: 0, wantTo: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Paginate(tc.total, tc.page, tc.perPage)
			if got.TotalPages != tc.wantPages {
				t.Fatalf("TotalPages = %d, want %d", got.TotalPages, tc.wantPages)
			}
			if items := renderItems(got.Items); items != tc.wantItems {
				t.Fatalf("items = %q, want %q", items, tc.wantItems)
			}
			if got.Page != tc.wantPage {
				t.Fatalf("Page = %d, want %d", got.Page, tc.wantPage)
			}
			if got.From != tc.wantFrom || got.To != tc.wantTo {
				t.Fatalf("From/To = %d/%d, want %d/%d", got.From, got.To, tc.wantFrom, tc.wantTo)
			}
		})
	}
}

func TestPaginateEdges(t *testing.T) {
	t.Parallel()

	first := Paginate(100, 1, 25)
	if first.HasPrev() || !first.HasNext() {
		t.Fatalf("first page prev/next = %v/%v", first.HasPrev(), first.HasNext())
	}
	last := Paginate(100, 4, 25)
	if !last.HasPrev() || last.HasNext() {
		t.Fatalf("last page prev/next = %v/%v", last.HasPrev(), last.HasNext())
	}
	for _, item := range Paginate(237, 5, 25).Items {
		if item.Current && item.Page != 5 {
			t.Fatalf("current item = %d", item.Page)
		}
	}
}

func TestPaginateHugeTotals(t *testing.T) {
	t.Parallel()

	huge := Paginate(1<<40, 5, 25)
	wantPages := (1<<40)/25 + 1
	if huge.TotalPages != wantPages {
		t.Fatalf("TotalPages = %d, want %d", huge.TotalPages, wantPages)
	}
	if got, want := renderItems(huge.Items), fmt.Sprintf("1 … 3 4 5 6 7 … %d", wantPages); got != want {
		t.Fatalf("items = %q, want %q", got, want)
	}

	top := Paginate(math.MaxInt, 1, 25)
	if top.TotalPages <= 0 || top.TotalPages != math.MaxInt/25+1 {
		t.Fatalf("TotalPages = %d", top.TotalPages)
	}
	if len(top.Items) != 5 {
		t.Fatalf("items = %q, want first pages plus last", renderItems(top.Items))
	}

	end := Paginate(math.MaxInt, math.MaxInt, 1)
	if end.Page != math.MaxInt || end.To != math.MaxInt || end.From != math.MaxInt {
		t.Fatalf("last page = %+v", end)
	}
	if got, want := renderItems(end.Items), fmt.Sprintf("1 … %d %d %d", math.MaxInt-2, math.MaxInt-1, math.MaxInt); got != want {
		t.Fatalf("items = %q, want %q", got, want)
	}
}

func testDefinition() resource.Definition {
	return resource.Definition{
		ID:         "vendors",
		Endpoint:   apiclient.Endpoint{Path: "vendors"},
		OwnerField: "user_id",
		Filters: []resource.Filter{
			{Name: "search", Kind: resource.FilterSearch},
			{Name: "status", Kind: resource.FilterSelect},
			{Name: "is_active", Kind: resource.FilterBool},
			{Name: "created", Kind: resource.FilterDateRange},
		},
	}
}

func TestQuery(t *testing.T) {
	t.Parallel()

	def := testDefinition()
	params := ParseParams(def, url.Values{
		"search":       {"  acme "},
		"status":       {""},
		"is_active":    {"1"},
		"created_from": {"2026-01-01"},
		"created_to":   {""},
		"page":         {"3"},
		"gen":          {"7"},
		"unknown":      {"x"},
	}, 25)
	params.Language = "ar"
	params.OwnerID = "12"

	query := Query(def, params)
	want := url.Values{
		"search":       {"acme"},
		"is_active":    {"1"},
		"created_from": {"2026-01-01"},
		"page":         {"3"},
		"limit":        {"25"},
		"offset":       {"50"},
		"lang":         {"ar"},
		"user_id":      {"12"},
	}
	if query.Encode() != want.Encode() {
		t.Fatalf("Query() = %s, want %s", query.Encode(), want.Encode())
	}
	if params.Generation != 7 {
		t.Fatalf("Generation = %d, want 7", params.Generation)
	}
}

func TestQueryDefaultsAndBoolFilter(t *testing.T) {
	t.Parallel()

	def := testDefinition()
	params := ParseParams(def, url.Values{"page": {"nope"}, "is_active": {"maybe"}}, 0)
	query := Query(def, params)
	if query.Get("page") != "1" || query.Get("offset") != "0" || query.Get("limit") != "25" {
		t.Fatalf("paging = %s", query.Encode())
	}
	if query.Has("is_active") {
		t.Fatal("invalid bool filter must be omitted")
	}
	if query.Has("user_id") || query.Has("lang") {
		t.Fatalf("unexpected params %s", query.Encode())
	}
}

func TestParamsValuesKeepFilters(t *testing.T) {
	t.Parallel()

	params := ParseParams(testDefinition(), url.Values{"search": {"a"}, "page": {"2"}}, 25)
	values := params.Values()
	if values.Get("search") != "a" || values.Get("page") != "2" {
		t.Fatalf("Values() = %s", values.Encode())
	}
}
