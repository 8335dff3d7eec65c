package templates

import (
	"strings"

	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
)

// ColumnLabel returns the translated header of col.
func ColumnLabel(loc Localizer, col resource.Column) string {
	return columnLabel(loc, col)
}

// CellText renders the plain-text value of one cell, as used by spreadsheet
// export and the terminal browser. Images export their URL.
func CellText(loc Localizer, col resource.Column, record apiclient.Record) string {
	first := record.String(firstPath(col))
	switch col.Kind {
	case resource.ColumnBadge:
		if record.Bool(firstPath(col)) {
			return label(loc, "status.active", "Active")
		}
		return label(loc, "status.inactive", "Inactive")
	case resource.ColumnStatus:
		if first == "" {
			return ""
		}
		return optionLabel(loc, resource.Option{Value: first, Label: "options." + first})
	case resource.ColumnBool:
		if record.Bool(firstPath(col)) {
			return label(loc, "status.yes", "Yes")
		}
		return label(loc, "status.no", "No")
	case resource.ColumnMoney:
		if amount, ok := record.Float(firstPath(col)); ok && first != "" {
			return FormatMoney(locale(loc), amount)
		}
		return first
	case resource.ColumnDate:
		return FormatDate(first)
	case resource.ColumnImage:
		for _, path := range col.Paths {
			if src := record.String(path); src != "" {
				return src
			}
		}
		return ""
	case resource.ColumnComposite:
		parts := make([]string, 0, len(col.Paths))
		for _, path := range col.Paths {
			if value := record.String(path); value != "" {
				parts = append(parts, value)
			}
		}
		return strings.Join(parts, " / ")
	default:
		return first
	}
}
