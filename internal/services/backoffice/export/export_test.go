package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/louisbranch/backoffice/internal/platform/i18n/catalog"
	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
)

func TestWriteHeaderAndRows(t *testing.T) {
	t.Parallel()

	def := resource.Definition{
		ID: "products",
		Columns: []resource.Column{
			{Label: "fields.name", Kind: resource.ColumnText, Paths: []string{"name"}},
			{Label: "fields.price", Kind: resource.ColumnMoney, Paths: []string{"price"}},
			{Label: "fields.is_active", Kind: resource.ColumnBadge, Paths: []string{"is_active"}},
		},
	}
	loc := catalog.FromMaps("en", map[string]string{
		"title":            "Products",
		"fields.name":      "Name",
		"fields.price":     "Price",
		"fields.is_active": "Status",
		"status.active":    "Active",
		"status.inactive":  "Inactive",
	})
	records := []apiclient.Record{
		apiclient.NewRecord(`{"id":1,"name":"Tea","price":"2.5","is_active":1}`),
		apiclient.NewRecord(`{"id":2,"name":"Coffee","price":3,"is_active":0}`),
	}

	var buf bytes.Buffer
	if err := Write(&buf, loc, def, records); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Products")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	want := [][]string{
		{"Name", "Price", "Status"},
		{"Tea", "2.5", "Active"},
		{"Coffee", "3", "Inactive"},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %v", rows)
	}
	for i := range want {
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Fatalf("cell %d,%d = %q, want %q", i, j, rows[i][j], want[i][j])
			}
		}
	}
}

func TestSheetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "Vendors", want: "Vendors"},
		{in: "Jobs [queue]: retry?", want: "Jobs queue retry"},
		{in: "  ", want: "Sheet1"},
		{in: "An extremely long resource title that overflows", want: "An extremely long resource titl"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			if got := SheetName(tc.in); got != tc.want {
				t.Fatalf("SheetName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
