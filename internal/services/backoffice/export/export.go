// Package export writes resource list views to XLSX workbooks for the
// console's export link and the operator CLI.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/louisbranch/backoffice/internal/platform/i18n/catalog"
	"github.com/louisbranch/backoffice/internal/services/backoffice/apiclient"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
	"github.com/louisbranch/backoffice/internal/services/backoffice/templates"
)

const (
	// ContentType is the XLSX media type.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// MaxRows bounds one export.
	MaxRows = 10000
	// maxSheetName is the Excel sheet name limit.
	maxSheetName = 31
	defaultSheet = "Sheet1"
)

// Filename returns the attachment name for def.
func Filename(def resource.Definition) string {
	return def.ID + ".xlsx"
}

// Write renders records as one sheet with a header row of column labels.
// Money columns stay numeric; everything else is written as displayed.
func Write(w io.Writer, loc templates.Localizer, def resource.Definition, records []apiclient.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(loc.T("title", def.ID))
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	header := make([]any, len(def.Columns))
	for i, col := range def.Columns {
		header[i] = templates.ColumnLabel(loc, col)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	for i, record := range records {
		if i >= MaxRows {
			break
		}
		row := make([]any, len(def.Columns))
		for j, col := range def.Columns {
			row[j] = cellValue(loc, col, record)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	if loc.Direction() == catalog.DirectionRTL {
		rtl := true
		if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
			return fmt.Errorf("sheet direction: %w", err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SheetName strips characters Excel rejects and applies the length limit.
func SheetName(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	cleaned = strings.Trim(cleaned, "'")
	if runes := []rune(cleaned); len(runes) > maxSheetName {
		cleaned = string(runes[:maxSheetName])
	}
	if cleaned == "" {
		return defaultSheet
	}
	return cleaned
}

func cellValue(loc templates.Localizer, col resource.Column, record apiclient.Record) any {
	if col.Kind == resource.ColumnMoney && len(col.Paths) > 0 {
		if amount, ok := record.Float(col.Paths[0]); ok {
			return amount
		}
	}
	return templates.CellText(loc, col, record)
}
